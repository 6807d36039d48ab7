// Package metrics derives summary statistics and chart series from a
// filtered record subset. Everything here is a pure function of its input.
package metrics

import (
	"math"
	"time"

	"github.com/joseph-ayodele/receipts-insights/internal/entity"
	"github.com/joseph-ayodele/receipts-insights/internal/utils"
)

// Aggregate computes the scalar metrics of subset. An empty subset yields
// zero counts, nil dates and an AveragePerDay of 0.
func Aggregate(subset []entity.Record) entity.Metrics {
	var m entity.Metrics
	retailers := make(map[string]struct{})
	products := make(map[string]struct{})
	var minDate, maxDate time.Time

	for _, r := range subset {
		m.TotalRecords++
		if r.RetailerChain != "" {
			retailers[r.RetailerChain] = struct{}{}
		}
		if r.ProductName != "" {
			products[r.ProductName] = struct{}{}
		}
		if r.Units != nil {
			m.TotalUnits += *r.Units
		}
		if r.Value != nil {
			m.TotalValue += *r.Value
		}
		if r.Date.IsZero() {
			continue
		}
		d := utils.TruncateDay(r.Date)
		if minDate.IsZero() || d.Before(minDate) {
			minDate = d
		}
		if maxDate.IsZero() || d.After(maxDate) {
			maxDate = d
		}
	}

	m.DistinctRetailers = len(retailers)
	m.DistinctProducts = len(products)
	if !minDate.IsZero() {
		m.MinDate = &minDate
		m.MaxDate = &maxDate
	}
	m.AveragePerDay = AveragePerDay(m.TotalRecords, minDate, maxDate)
	return m
}

// AveragePerDay divides total by the inclusive day span of [min, max],
// rounded to the nearest integer. A zero or unknown span divides by 1.
func AveragePerDay(total int, min, max time.Time) int {
	days := 1
	if !min.IsZero() && !max.IsZero() {
		days = utils.DaysInclusive(min, max)
	}
	if days < 1 {
		days = 1
	}
	return int(math.Round(float64(total) / float64(days)))
}

// Compare reports the change from previous to primary. Percentages are 0
// when the previous figure is 0.
func Compare(primary, previous entity.Metrics) entity.Comparison {
	return entity.Comparison{
		Primary:       primary.Clone(),
		Previous:      previous.Clone(),
		RecordsDelta:  primary.TotalRecords - previous.TotalRecords,
		RecordsChange: percentChange(float64(primary.TotalRecords), float64(previous.TotalRecords)),
		ValueDelta:    primary.TotalValue - previous.TotalValue,
		ValueChange:   percentChange(primary.TotalValue, previous.TotalValue),
	}
}

func percentChange(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return Round1((current - previous) / previous * 100)
}

// Percent returns part/whole as a percentage rounded to one decimal, or 0
// when whole is 0.
func Percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return Round1(float64(part) / float64(whole) * 100)
}

// Round1 rounds v to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
