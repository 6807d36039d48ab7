package filter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/receipts-insights/internal/entity"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

func rec(t *testing.T, date, product, retailer string) entity.Record {
	d := day(t, date)
	return entity.Record{
		Kind:          entity.RecordKindSales,
		Date:          d,
		Month:         d.Format("2006-01"),
		ProductName:   product,
		RetailerChain: retailer,
	}
}

func sample(t *testing.T) []entity.Record {
	return []entity.Record{
		rec(t, "2024-02-28", "Milk", "Walmart"),
		rec(t, "2024-03-01", "Milk", "Kroger"),
		rec(t, "2024-03-15", "Bread", "Walmart"),
		rec(t, "2024-03-31", "Eggs", "Target"),
		rec(t, "2024-04-01", "Bread", "Kroger"),
	}
}

func TestApplyAllSelectorsReturnsDataset(t *testing.T) {
	records := sample(t)
	got := Apply(records, entity.DefaultFilterSpec())
	assert.ElementsMatch(t, records, got)
}

func TestApplyIsSubsetAndIdempotent(t *testing.T) {
	records := sample(t)
	start, end := day(t, "2024-03-01"), day(t, "2024-03-31")
	specs := []entity.FilterSpec{
		{Products: entity.SelectOnly("Milk"), Retailers: entity.SelectAll(), DateMode: entity.DateModeAll},
		{Products: entity.SelectAll(), Retailers: entity.SelectOnly("Walmart", "Kroger"), DateMode: entity.DateModeMonth, Month: "2024-03"},
		{Products: entity.SelectOnly("Bread", "Eggs"), Retailers: entity.SelectAll(), DateMode: entity.DateModeCustom, StartDate: &start, EndDate: &end},
	}
	for _, spec := range specs {
		once := Apply(records, spec)
		for _, r := range once {
			assert.Contains(t, records, r)
		}
		assert.Equal(t, once, Apply(once, spec))
	}
}

func TestApplyMonthMode(t *testing.T) {
	spec := entity.DefaultFilterSpec()
	spec.DateMode = entity.DateModeMonth
	spec.Month = "2024-03"

	got := Apply(sample(t), spec)
	require.Len(t, got, 3)
	for _, r := range got {
		assert.Equal(t, "2024-03", r.Month)
	}
}

func TestApplyCustomRangeIsInclusive(t *testing.T) {
	start, end := day(t, "2024-03-01"), day(t, "2024-03-31")
	spec := entity.DefaultFilterSpec()
	spec.DateMode = entity.DateModeCustom
	spec.StartDate = &start
	spec.EndDate = &end

	got := Apply(sample(t), spec)
	require.Len(t, got, 3)
	assert.Equal(t, "2024-03-01", got[0].DateKey())
	assert.Equal(t, "2024-03-31", got[2].DateKey())
}

func TestApplyPreservesInputOrder(t *testing.T) {
	records := sample(t)
	records[0], records[4] = records[4], records[0]
	spec := entity.DefaultFilterSpec()
	spec.Retailers = entity.SelectOnly("Kroger")

	got := Apply(records, spec)
	require.Len(t, got, 2)
	assert.Equal(t, "2024-04-01", got[0].DateKey())
	assert.Equal(t, "2024-03-01", got[1].DateKey())
}

func TestApplyNoMatchIsEmptyNotNil(t *testing.T) {
	spec := entity.DefaultFilterSpec()
	spec.Products = entity.SelectOnly("Caviar")

	got := Apply(sample(t), spec)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	assert.Empty(t, Apply(nil, spec))
}

func TestComparisonWindowLeapYear(t *testing.T) {
	start, end := ComparisonWindow(day(t, "2024-03-01"), day(t, "2024-03-31"))
	assert.Equal(t, "2024-01-30", start.Format("2006-01-02"))
	assert.Equal(t, "2024-02-29", end.Format("2006-01-02"))
}

func TestComparisonSpecForMonth(t *testing.T) {
	primary := entity.DefaultFilterSpec()
	primary.Products = entity.SelectOnly("Milk")
	primary.DateMode = entity.DateModeMonth
	primary.Month = "2024-03"

	got, ok := ComparisonSpec(primary, nil)
	require.True(t, ok)
	assert.Equal(t, entity.DateModeCustom, got.DateMode)
	assert.Equal(t, "2024-01-30", got.StartDate.Format("2006-01-02"))
	assert.Equal(t, "2024-02-29", got.EndDate.Format("2006-01-02"))
	assert.Equal(t, []string{"Milk"}, got.Products.Values())
	assert.Equal(t, entity.DateModeMonth, primary.DateMode)
}

func TestComparisonSpecForAllUsesDataBounds(t *testing.T) {
	got, ok := ComparisonSpec(entity.DefaultFilterSpec(), sample(t))
	require.True(t, ok)
	// data spans 2024-02-28..2024-04-01, 34 days
	assert.Equal(t, "2024-01-25", got.StartDate.Format("2006-01-02"))
	assert.Equal(t, "2024-02-27", got.EndDate.Format("2006-01-02"))

	_, ok = ComparisonSpec(entity.DefaultFilterSpec(), nil)
	assert.False(t, ok)
}

func TestBuildOptions(t *testing.T) {
	opts := BuildOptions(sample(t))
	assert.Equal(t, []string{"Bread", "Eggs", "Milk"}, opts.Products)
	assert.Equal(t, []string{"Kroger", "Target", "Walmart"}, opts.Retailers)
	assert.Equal(t, []string{"2024-02", "2024-03", "2024-04"}, opts.Months)
}
