package entity

import "time"

// Metrics are the summary statistics of a filtered subset. They are derived
// and only persisted inside a snapshot.
type Metrics struct {
	TotalRecords      int        `json:"totalRecords"`
	DistinctRetailers int        `json:"distinctRetailers"`
	DistinctProducts  int        `json:"distinctProducts"`
	MinDate           *time.Time `json:"minDate,omitempty"`
	MaxDate           *time.Time `json:"maxDate,omitempty"`
	AveragePerDay     int        `json:"averagePerDay"`
	TotalUnits        float64    `json:"totalUnits"`
	TotalValue        float64    `json:"totalValue"`
}

// Clone copies m and its date bounds.
func (m Metrics) Clone() Metrics {
	out := m
	if m.MinDate != nil {
		t := *m.MinDate
		out.MinDate = &t
	}
	if m.MaxDate != nil {
		t := *m.MaxDate
		out.MaxDate = &t
	}
	return out
}

// Comparison is the period-over-period delta between two Metrics.
type Comparison struct {
	Primary       Metrics `json:"primary"`
	Previous      Metrics `json:"previous"`
	RecordsDelta  int     `json:"recordsDelta"`
	RecordsChange float64 `json:"recordsChangePercent"`
	ValueDelta    float64 `json:"valueDelta"`
	ValueChange   float64 `json:"valueChangePercent"`
}
