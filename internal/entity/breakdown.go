package entity

import "slices"

// Share is one category of a distribution.
type Share struct {
	Name       string  `json:"name"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// TrendPoint is one day of the record trend.
type TrendPoint struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Count int    `json:"count"`
}

// Totals are the absolute figures hidden by hideTotals.
type Totals struct {
	Records int     `json:"records"`
	Units   float64 `json:"units"`
	Value   float64 `json:"value"`
}

// Breakdown is the chartable view of a filtered subset.
type Breakdown struct {
	Totals               Totals       `json:"totals"`
	RetailerDistribution []Share      `json:"retailerDistribution"`
	ProductDistribution  []Share      `json:"productDistribution"`
	WeekdayDistribution  []Share      `json:"weekdayDistribution,omitempty"`
	HourDistribution     []Share      `json:"hourDistribution,omitempty"`
	Trend                []TrendPoint `json:"trend"`
}

// Clone deep-copies every series.
func (b Breakdown) Clone() Breakdown {
	out := b
	out.RetailerDistribution = slices.Clone(b.RetailerDistribution)
	out.ProductDistribution = slices.Clone(b.ProductDistribution)
	out.WeekdayDistribution = slices.Clone(b.WeekdayDistribution)
	out.HourDistribution = slices.Clone(b.HourDistribution)
	out.Trend = slices.Clone(b.Trend)
	return out
}

// ComputedView bundles everything derived from one filtered subset, before
// redaction.
type ComputedView struct {
	Metrics      Metrics                `json:"metrics"`
	Breakdown    Breakdown              `json:"breakdown"`
	Demographics []DemographicBreakdown `json:"demographics,omitempty"`
}

// Clone returns a copy sharing no slices with v.
func (v ComputedView) Clone() ComputedView {
	out := ComputedView{
		Metrics:   v.Metrics.Clone(),
		Breakdown: v.Breakdown.Clone(),
	}
	if v.Demographics != nil {
		out.Demographics = make([]DemographicBreakdown, len(v.Demographics))
		for i, d := range v.Demographics {
			out.Demographics[i] = d.Clone()
		}
	}
	return out
}
