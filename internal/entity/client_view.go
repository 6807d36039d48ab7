package entity

import (
	"slices"
	"strconv"

	"github.com/joseph-ayodele/receipts-insights/constants"
)

// Figure is a rendered absolute number, or the redaction placeholder.
type Figure string

// Hidden is the placeholder emitted for redacted figures.
const Hidden Figure = constants.RedactedPlaceholder

func CountFigure(n int) Figure {
	return Figure(strconv.Itoa(n))
}

func AmountFigure(v float64) Figure {
	return Figure(strconv.FormatFloat(v, 'f', 2, 64))
}

func QuantityFigure(v float64) Figure {
	return Figure(strconv.FormatFloat(v, 'f', -1, 64))
}

func (f Figure) IsHidden() bool {
	return f == Hidden
}

// ClientShare is a distribution entry as shown to external clients.
type ClientShare struct {
	Name       string  `json:"name"`
	Count      Figure  `json:"count"`
	Percentage float64 `json:"percentage"`
}

type ClientTotals struct {
	Records Figure `json:"records"`
	Units   Figure `json:"units"`
	Value   Figure `json:"value"`
}

type ClientMetrics struct {
	TotalRecords      Figure `json:"totalRecords"`
	DistinctRetailers int    `json:"distinctRetailers"`
	DistinctProducts  int    `json:"distinctProducts"`
	MinDate           string `json:"minDate,omitempty"`
	MaxDate           string `json:"maxDate,omitempty"`
	AveragePerDay     Figure `json:"averagePerDay"`
}

// ClientView is the redacted, client-safe rendering of a ComputedView.
type ClientView struct {
	AllowedTabs          []string               `json:"allowedTabs"`
	ActiveTab            string                 `json:"activeTab"`
	HiddenCharts         []string               `json:"hiddenCharts,omitempty"`
	Branding             Branding               `json:"branding"`
	ClientNote           string                 `json:"clientNote,omitempty"`
	Metrics              ClientMetrics          `json:"metrics"`
	Totals               ClientTotals           `json:"totals"`
	RetailerDistribution []ClientShare          `json:"retailerDistribution"`
	ProductDistribution  []ClientShare          `json:"productDistribution"`
	WeekdayDistribution  []ClientShare          `json:"weekdayDistribution,omitempty"`
	HourDistribution     []ClientShare          `json:"hourDistribution,omitempty"`
	Trend                []TrendPoint           `json:"trend"`
	Demographics         []DemographicBreakdown `json:"demographics,omitempty"`
	Redacted             bool                   `json:"redacted"`
}

// Clone deep-copies the client view.
func (v ClientView) Clone() ClientView {
	out := v
	out.AllowedTabs = slices.Clone(v.AllowedTabs)
	out.HiddenCharts = slices.Clone(v.HiddenCharts)
	out.Branding = v.Branding.Clone()
	out.RetailerDistribution = slices.Clone(v.RetailerDistribution)
	out.ProductDistribution = slices.Clone(v.ProductDistribution)
	out.WeekdayDistribution = slices.Clone(v.WeekdayDistribution)
	out.HourDistribution = slices.Clone(v.HourDistribution)
	out.Trend = slices.Clone(v.Trend)
	if v.Demographics != nil {
		out.Demographics = make([]DemographicBreakdown, len(v.Demographics))
		for i, d := range v.Demographics {
			out.Demographics[i] = d.Clone()
		}
	}
	return out
}
