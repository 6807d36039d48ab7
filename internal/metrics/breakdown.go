package metrics

import (
	"sort"
	"strconv"
	"time"

	"github.com/joseph-ayodele/receipts-insights/internal/entity"
)

// BuildBreakdown computes the chart series for subset: retailer and product
// distributions, the daily trend, totals and, for sales rows, weekday and
// hour-of-day distributions. Only rows with a known hour feed the hour
// distribution, which stays nil when none do.
func BuildBreakdown(subset []entity.Record) entity.Breakdown {
	b := entity.Breakdown{
		RetailerDistribution: []entity.Share{},
		ProductDistribution:  []entity.Share{},
		Trend:                []entity.TrendPoint{},
	}

	retailers := make(map[string]int)
	products := make(map[string]int)
	days := make(map[string]int)
	weekdays := make(map[string]int)
	hours := make(map[string]int)
	sales, timed := 0, 0

	for _, r := range subset {
		b.Totals.Records++
		if r.Units != nil {
			b.Totals.Units += *r.Units
		}
		if r.Value != nil {
			b.Totals.Value += *r.Value
		}
		if r.RetailerChain != "" {
			retailers[r.RetailerChain]++
		}
		if r.ProductName != "" {
			products[r.ProductName]++
		}
		if key := r.DateKey(); key != "" {
			days[key]++
		}
		if r.Kind == entity.RecordKindSales {
			sales++
			weekdays[time.Weekday(r.DayOfWeek).String()]++
			if r.HasHour {
				timed++
				hours[strconv.Itoa(r.HourOfDay)]++
			}
		}
	}

	b.RetailerDistribution = Distribution(retailers, b.Totals.Records)
	b.ProductDistribution = Distribution(products, b.Totals.Records)
	if sales > 0 {
		b.WeekdayDistribution = orderedDistribution(weekdays, sales, weekdayOrder())
	}
	if timed > 0 {
		b.HourDistribution = orderedDistribution(hours, timed, hourOrder())
	}

	for d, n := range days {
		b.Trend = append(b.Trend, entity.TrendPoint{Date: d, Count: n})
	}
	sort.Slice(b.Trend, func(i, j int) bool { return b.Trend[i].Date < b.Trend[j].Date })
	return b
}

// Distribution turns counts into shares of total, ordered by count
// descending then name.
func Distribution(counts map[string]int, total int) []entity.Share {
	out := make([]entity.Share, 0, len(counts))
	for name, n := range counts {
		out = append(out, entity.Share{Name: name, Count: n, Percentage: Percent(n, total)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// orderedDistribution keeps calendar order instead of ranking by count.
func orderedDistribution(counts map[string]int, total int, order []string) []entity.Share {
	out := make([]entity.Share, 0, len(counts))
	for _, name := range order {
		n, ok := counts[name]
		if !ok {
			continue
		}
		out = append(out, entity.Share{Name: name, Count: n, Percentage: Percent(n, total)})
	}
	return out
}

func weekdayOrder() []string {
	out := make([]string, 0, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		out = append(out, d.String())
	}
	return out
}

func hourOrder() []string {
	out := make([]string, 0, 24)
	for h := 0; h < 24; h++ {
		out = append(out, strconv.Itoa(h))
	}
	return out
}

// BuildView bundles metrics and chart series for subset.
func BuildView(subset []entity.Record) entity.ComputedView {
	return entity.ComputedView{
		Metrics:   Aggregate(subset),
		Breakdown: BuildBreakdown(subset),
	}
}
