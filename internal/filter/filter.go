// Package filter slices a record set by product, retailer and date.
package filter

import (
	"sort"
	"time"

	"github.com/joseph-ayodele/receipts-insights/internal/entity"
	"github.com/joseph-ayodele/receipts-insights/internal/utils"
)

// Apply returns the records passing every predicate of spec, in input order.
// Product, retailer and date predicates are AND-combined; an "all" selector
// passes unconditionally. Zero matches yields an empty, non-nil slice.
func Apply(records []entity.Record, spec entity.FilterSpec) []entity.Record {
	out := make([]entity.Record, 0, len(records))
	if spec.IsUnrestricted() {
		return append(out, records...)
	}

	for _, r := range records {
		if !spec.Products.Contains(r.ProductName) {
			continue
		}
		if !spec.Retailers.Contains(r.RetailerChain) {
			continue
		}
		if !MatchDate(r, spec) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// MatchDate applies the date predicate of spec to r.
func MatchDate(r entity.Record, spec entity.FilterSpec) bool {
	switch spec.DateMode {
	case entity.DateModeMonth:
		return monthKey(r) == spec.Month
	case entity.DateModeCustom:
		if r.Date.IsZero() {
			return false
		}
		day := utils.TruncateDay(r.Date)
		if spec.StartDate != nil && day.Before(utils.TruncateDay(*spec.StartDate)) {
			return false
		}
		if spec.EndDate != nil && day.After(utils.TruncateDay(*spec.EndDate)) {
			return false
		}
		return true
	default:
		return true
	}
}

func monthKey(r entity.Record) string {
	if r.Month != "" {
		return r.Month
	}
	if r.Date.IsZero() {
		return ""
	}
	return r.Date.Format("2006-01")
}

// Options lists the distinct values the pickers offer, sorted.
type Options struct {
	Products  []string `json:"products"`
	Retailers []string `json:"retailers"`
	Months    []string `json:"months"`
}

// BuildOptions lists the distinct filter values present in records, sorted.
func BuildOptions(records []entity.Record) Options {
	products := map[string]struct{}{}
	retailers := map[string]struct{}{}
	months := map[string]struct{}{}
	for _, r := range records {
		if r.ProductName != "" {
			products[r.ProductName] = struct{}{}
		}
		if r.RetailerChain != "" {
			retailers[r.RetailerChain] = struct{}{}
		}
		if m := monthKey(r); m != "" {
			months[m] = struct{}{}
		}
	}
	return Options{
		Products:  sortedKeys(products),
		Retailers: sortedKeys(retailers),
		Months:    sortedKeys(months),
	}
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// DateBounds returns the earliest and latest record day; ok is false for an
// empty or undated set.
func DateBounds(records []entity.Record) (min, max time.Time, ok bool) {
	for _, r := range records {
		if r.Date.IsZero() {
			continue
		}
		d := utils.TruncateDay(r.Date)
		if !ok || d.Before(min) {
			min = d
		}
		if !ok || d.After(max) {
			max = d
		}
		ok = true
	}
	return min, max, ok
}
