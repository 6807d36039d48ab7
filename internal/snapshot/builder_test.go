package snapshot

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/receipts-insights/internal/common"
	"github.com/joseph-ayodele/receipts-insights/internal/dataset"
	"github.com/joseph-ayodele/receipts-insights/internal/entity"
)

var fixedNow = time.Date(2024, 4, 10, 9, 0, 0, 0, time.UTC)

func newTestBuilder(opts ...Option) *Builder {
	base := []Option{
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(func() string { return "share-1" }),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	return NewBuilder(append(base, opts...)...)
}

func record(date, product, retailer, age, proposition string) entity.Record {
	d, _ := time.Parse("2006-01-02", date)
	return entity.Record{
		Kind:          entity.RecordKindSales,
		Date:          d,
		Month:         d.Format("2006-01"),
		DayOfWeek:     int(d.Weekday()),
		ProductName:   product,
		RetailerChain: retailer,
		AgeGroup:      age,
		Gender:        "F",
		HitID:         "hit-" + date,
		Answers: map[int]entity.Answer{
			1: {Question: "Why?", Proposition: proposition},
		},
	}
}

func testDataset() *dataset.Dataset {
	return dataset.New([]entity.Record{
		record("2024-03-01", "Milk", "Walmart", "25-34", "Price;Taste"),
		record("2024-03-02", "Milk", "Walmart", "16-24", "Taste"),
		record("2024-03-02", "Bread", "Kroger", "65+", "Price"),
		record("2024-02-15", "Milk", "Kroger", "25-34", "Price"),
	}, "test")
}

func TestBuild(t *testing.T) {
	cfg := entity.DefaultShareConfig()
	cfg.Filters.DateMode = entity.DateModeMonth
	cfg.Filters.Month = "2024-03"
	cfg.HideRetailers = true
	cfg.Branding.BrandNames = []string{"Acme", " ", "Globex"}

	snap, err := newTestBuilder().Build(testDataset(), cfg)
	require.NoError(t, err)

	assert.Equal(t, "share-1", snap.ID)
	assert.Equal(t, "share-1", snap.Metadata.ID)
	assert.Equal(t, fixedNow, snap.Metadata.CreatedAt)
	assert.Equal(t, 4, snap.Metadata.DatasetSize)
	assert.Equal(t, "Acme, Globex", snap.Metadata.ClientName)
	assert.Nil(t, snap.ExpiresAt)

	view := snap.Precomputed.View
	assert.True(t, snap.Precomputed.Redacted)
	assert.Equal(t, entity.Figure("3"), view.Metrics.TotalRecords)
	assert.Equal(t, "Retailer 1", view.RetailerDistribution[0].Name)
	require.Len(t, view.Demographics, 1)
	assert.Equal(t, map[string]int{"Price": 2, "Taste": 2}, view.Demographics[0].ResponseCounts)

	require.Len(t, snap.Precomputed.FilteredRecords, 3)
	for _, r := range snap.Precomputed.FilteredRecords {
		assert.Contains(t, []string{"Retailer 1", "Retailer 2"}, r.RetailerChain)
		assert.Empty(t, r.AgeGroup)
		assert.Nil(t, r.Answers)
	}
}

func TestWithNilLoggerKeepsDefault(t *testing.T) {
	b := newTestBuilder(WithLogger(nil))
	require.NotNil(t, b.logger)

	cfg := entity.DefaultShareConfig()
	cfg.AllowedTabs = []string{"sales"}
	cfg.ActiveTab = "summary"
	snap, err := b.Build(testDataset(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "sales", snap.Config.ActiveTab)
}

func TestBuildCorrectsTabs(t *testing.T) {
	cfg := entity.DefaultShareConfig()
	cfg.AllowedTabs = []string{"sales", "demographics"}
	cfg.ActiveTab = "summary"

	snap, err := newTestBuilder().Build(testDataset(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "sales", snap.Config.ActiveTab)
	assert.Equal(t, "sales", snap.Precomputed.View.ActiveTab)

	cfg.AllowedTabs = nil
	snap, err = newTestBuilder().Build(testDataset(), cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"summary", "sales", "demographics"}, snap.Config.AllowedTabs)
}

func TestBuildOmitsRecordsWithoutSalesTab(t *testing.T) {
	cfg := entity.DefaultShareConfig().WithAllowedTabs([]string{"summary"})

	snap, err := newTestBuilder().Build(testDataset(), cfg)
	require.NoError(t, err)
	assert.Nil(t, snap.Precomputed.FilteredRecords)
	assert.Nil(t, snap.Precomputed.View.Demographics)
}

func TestBuildEmptyResult(t *testing.T) {
	cfg := entity.DefaultShareConfig()
	cfg.Filters.Products = entity.SelectOnly("Caviar")

	snap, err := newTestBuilder().Build(testDataset(), cfg)
	require.NoError(t, err)
	assert.Equal(t, entity.Figure("0"), snap.Precomputed.View.Metrics.TotalRecords)
	assert.Empty(t, snap.Precomputed.FilteredRecords)
	assert.Equal(t, "Shared Dashboard", snap.Metadata.ClientName)
}

func TestBuildExpiry(t *testing.T) {
	cfg := entity.DefaultShareConfig()
	snap, err := newTestBuilder(WithDefaultTTL(24 * time.Hour)).Build(testDataset(), cfg)
	require.NoError(t, err)
	require.NotNil(t, snap.ExpiresAt)
	assert.Equal(t, fixedNow.Add(24*time.Hour), *snap.ExpiresAt)
	assert.Equal(t, *snap.ExpiresAt, *snap.Metadata.ExpiresAt)

	past := fixedNow.Add(-time.Hour)
	cfg.ExpiryDate = &past
	_, err = newTestBuilder().Build(testDataset(), cfg)
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrValidation))
}

func TestBuildRejectsMalformedConfig(t *testing.T) {
	cfg := entity.DefaultShareConfig()
	cfg.Filters.DateMode = entity.DateModeMonth
	cfg.Filters.Month = "March"
	cfg.CustomExcludedDates = []string{"2024-13-01"}

	_, err := newTestBuilder().Build(testDataset(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "filters.month")
	assert.Contains(t, err.Error(), "customExcludedDates")
}

func TestBuildIsIndependentOfLiveState(t *testing.T) {
	ds := testDataset()
	expiry := fixedNow.Add(48 * time.Hour)
	cfg := entity.DefaultShareConfig()
	cfg.Branding.BrandNames = []string{"Acme"}
	cfg.HiddenCharts = []string{"daily-trend"}
	cfg.CustomExcludedDates = []string{"2024-02-15"}
	cfg.ExpiryDate = &expiry

	snap, err := newTestBuilder().Build(ds, cfg)
	require.NoError(t, err)
	captured := snap.Clone()

	cfg.AllowedTabs[0] = "trends"
	cfg.ActiveTab = "trends"
	cfg.Branding.BrandNames[0] = "Changed"
	cfg.HiddenCharts[0] = "changed"
	cfg.CustomExcludedDates[0] = "2024-03-01"
	*cfg.ExpiryDate = fixedNow
	cfg.Filters.Products = cfg.Filters.Products.Select("Bread")

	live := ds.Records()
	live[0].ProductName = "Tampered"
	live[0].Answers[1] = entity.Answer{Question: "Tampered", Proposition: "X"}

	opts := cmp.AllowUnexported(entity.Selection{})
	if diff := cmp.Diff(captured, snap, opts); diff != "" {
		t.Fatalf("snapshot changed after live mutation (-want +got):\n%s", diff)
	}
}

func TestDefaultIDIsUUID(t *testing.T) {
	snap, err := NewBuilder(WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))).
		Build(testDataset(), entity.DefaultShareConfig())
	require.NoError(t, err)
	_, err = uuid.Parse(snap.ID)
	assert.NoError(t, err)
}

func TestResolveClientName(t *testing.T) {
	assert.Equal(t, "Client", ResolveClientName(entity.Branding{ClientName: " Client ", BrandNames: []string{"Acme"}}))
	assert.Equal(t, "Acme", ResolveClientName(entity.Branding{BrandNames: []string{"Acme"}}))
	assert.Equal(t, "Shared Dashboard", ResolveClientName(entity.Branding{}))
}

func TestBuildHidesRetailersInPublishedConfig(t *testing.T) {
	cfg := entity.DefaultShareConfig()
	cfg.HideRetailers = true
	cfg.Filters.Retailers = entity.SelectOnly("Kroger", "Costco")

	snap, err := newTestBuilder().Build(testDataset(), cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"Retailer 1", "Retailer 2"}, snap.Config.Filters.Retailers.Values())
	assert.Equal(t, []string{"Kroger", "Costco"}, cfg.Filters.Retailers.Values(), "caller config untouched")

	raw, err := json.Marshal(snap)
	require.NoError(t, err)
	for _, name := range []string{"Kroger", "Costco", "Walmart"} {
		assert.NotContains(t, string(raw), name)
	}

	cfg.HideRetailers = false
	snap, err = newTestBuilder().Build(testDataset(), cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"Kroger", "Costco"}, snap.Config.Filters.Retailers.Values())
}
