package dataset

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/receipts-insights/internal/common"
	"github.com/joseph-ayodele/receipts-insights/internal/entity"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const salesCSV = `Receipt Date,Product Name,Chain,Age Group,Gender,Value,question_01,proposition_01
2024-03-01 14:30:00,Milk,Walmart,25-34,F,2.50,Why?,Price;Taste
2024-03-02,Bread,Kroger,65+,M,1.25,Why?,Taste
`

func TestReadCSVAndLoad(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader(salesCSV))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Milk", rows[0]["product_name"])

	records, err := Load(rows)
	require.NoError(t, err)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, entity.RecordKindSales, first.Kind)
	assert.Equal(t, "2024-03-01", first.DateKey())
	assert.Equal(t, "2024-03", first.Month)
	assert.Equal(t, int(time.Friday), first.DayOfWeek)
	assert.Equal(t, 14, first.HourOfDay)
	assert.True(t, first.HasHour)
	assert.False(t, records[1].HasHour, "a bare date carries no hour")
	assert.Equal(t, "Walmart", first.RetailerChain)
	assert.Equal(t, "25-34", first.AgeGroup)
	require.NotNil(t, first.Value)
	assert.InDelta(t, 2.5, *first.Value, 1e-9)
	assert.Equal(t, entity.Answer{Question: "Why?", Proposition: "Price;Taste"}, first.Answer(1))
}

func TestLoadHourOfDayColumn(t *testing.T) {
	records, err := Load([]Row{
		{"date": "2024-03-01", "product_name": "Milk", "chain": "Kroger", "hour_of_day": "9"},
		{"date": "2024-03-01", "product_name": "Milk", "chain": "Kroger", "hour_of_day": "25"},
	})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.True(t, records[0].HasHour)
	assert.Equal(t, 9, records[0].HourOfDay)
	assert.False(t, records[1].HasHour)
}

func TestLoadEventRows(t *testing.T) {
	records, err := Load([]Row{
		{"hit_id": "h-1", "created_at": "2024-05-06T08:15:00Z", "gender": "F"},
		{"hit_id": "h-2"},
	})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, entity.RecordKindEvent, records[0].Kind)
	require.NotNil(t, records[0].CreatedAt)
	assert.Equal(t, "2024-05-06", records[0].DateKey())
	assert.Nil(t, records[1].CreatedAt)
	assert.True(t, records[1].Date.IsZero())
}

func TestLoadReportsEveryInvalidRow(t *testing.T) {
	_, err := Load([]Row{
		{"date": "2024-03-01", "product_name": "Milk"},
		{"date": "not a date", "product_name": "Milk", "chain": "Kroger"},
		{"gender": "F"},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrValidation))

	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Message, "row 1: chain")
	assert.Contains(t, appErr.Message, "row 2: date")
	assert.Contains(t, appErr.Message, "row 3: hit_id")
}

func TestStoreRejectedLoadKeepsDataset(t *testing.T) {
	store := NewStore(quietLogger())
	assert.Zero(t, store.Current().Len())

	ds, err := store.LoadRows([]Row{{"date": "2024-03-01", "product_name": "Milk", "chain": "Kroger"}}, "first.csv")
	require.NoError(t, err)
	assert.Same(t, ds, store.Current())

	_, err = store.LoadRows([]Row{{"date": "2024-03-01"}}, "bad.csv")
	require.Error(t, err)
	assert.Same(t, ds, store.Current())
	assert.Equal(t, "first.csv", store.Current().Source())
}

func TestNewDiscoversQuestionsAndCopies(t *testing.T) {
	records := []entity.Record{{
		ProductName: "Milk",
		Answers:     map[int]entity.Answer{2: {Question: "Q2", Proposition: "A"}},
	}}
	ds := New(records, "mem")
	require.Len(t, ds.Questions(), 1)
	assert.Equal(t, 2, ds.Questions()[0].Number)

	records[0].ProductName = "Bread"
	records[0].Answers[2] = entity.Answer{}
	assert.Equal(t, "Milk", ds.Records()[0].ProductName)
	assert.Equal(t, "A", ds.Records()[0].Answer(2).Proposition)
}

func TestReadXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "upload.xlsx")
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]any{"date", "product_name", "chain"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]any{"2024-03-01", "Milk", "Walmart"}))
	require.NoError(t, f.SetSheetRow(sheet, "A3", &[]any{"2024-03-02", "Eggs"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	rows, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Walmart", rows[0]["chain"])
	assert.Empty(t, rows[1]["chain"])
}

func TestReadFileUnsupported(t *testing.T) {
	_, err := ReadFile("receipt.pdf")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestNormalizeColumn(t *testing.T) {
	assert.Equal(t, "receipt_date", NormalizeColumn(" Receipt Date "))
	assert.Equal(t, "question_01", NormalizeColumn("Question-01"))
	assert.Equal(t, "hit_id", NormalizeColumn("\ufeffhit_id"))
}

func TestWatchReloadsOnUpload(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, store, WatchConfig{Dir: dir, Debounce: 50 * time.Millisecond}) }()

	// give the watcher time to register the directory
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "upload.csv"), []byte(salesCSV), 0o644))

	require.Eventually(t, func() bool { return store.Current().Len() == 2 }, 5*time.Second, 20*time.Millisecond)
	assert.Equal(t, filepath.Join(dir, "upload.csv"), store.Current().Source())

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestLoadFileSkipsUnchangedContent(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "march.csv")
	copyOf := filepath.Join(dir, "march-copy.csv")
	require.NoError(t, os.WriteFile(first, []byte(salesCSV), 0o644))
	require.NoError(t, os.WriteFile(copyOf, []byte(salesCSV), 0o644))

	store := NewStore(quietLogger())
	ds, err := store.LoadFile(context.Background(), first)
	require.NoError(t, err)
	assert.Len(t, ds.Hash(), 64)

	again, err := store.LoadFile(context.Background(), copyOf)
	require.NoError(t, err)
	assert.Same(t, ds, again, "identical content keeps the current dataset")
	assert.Equal(t, first, store.Current().Source())

	changed := strings.Replace(salesCSV, "Bread", "Eggs", 1)
	require.NoError(t, os.WriteFile(copyOf, []byte(changed), 0o644))
	next, err := store.LoadFile(context.Background(), copyOf)
	require.NoError(t, err)
	assert.NotSame(t, ds, next)
	assert.Equal(t, copyOf, store.Current().Source())
}

func TestLoadFileRejectsUnsupportedBeforeOpening(t *testing.T) {
	store := NewStore(quietLogger())
	_, err := store.LoadFile(context.Background(), filepath.Join(t.TempDir(), "missing.pdf"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestAllowedSkipsHiddenFiles(t *testing.T) {
	assert.True(t, allowed("/uploads/march.xlsx"))
	assert.False(t, allowed("/uploads/.~lock.march.xlsx"))
	assert.False(t, allowed("/uploads/notes.txt"))
}
