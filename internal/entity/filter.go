package entity

import (
	"time"
)

// DateMode selects how FilterSpec constrains record dates.
type DateMode string

const (
	DateModeAll    DateMode = "all"
	DateModeMonth  DateMode = "month"
	DateModeCustom DateMode = "custom"
)

// FilterSpec is the product/retailer/date slice that defines a view.
type FilterSpec struct {
	Products  Selection  `json:"selectedProducts"`
	Retailers Selection  `json:"selectedRetailers"`
	DateMode  DateMode   `json:"dateMode"`
	Month     string     `json:"month,omitempty"` // YYYY-MM
	StartDate *time.Time `json:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty"`
}

// DefaultFilterSpec passes every record.
func DefaultFilterSpec() FilterSpec {
	return FilterSpec{
		Products:  SelectAll(),
		Retailers: SelectAll(),
		DateMode:  DateModeAll,
	}
}

// Clone returns a copy whose selections and exclusions are independent of f.
func (f FilterSpec) Clone() FilterSpec {
	out := f
	out.Products = f.Products.Clone()
	out.Retailers = f.Retailers.Clone()
	if f.StartDate != nil {
		t := *f.StartDate
		out.StartDate = &t
	}
	if f.EndDate != nil {
		t := *f.EndDate
		out.EndDate = &t
	}
	return out
}

// IsUnrestricted is true when all three selectors are "all".
func (f FilterSpec) IsUnrestricted() bool {
	return f.Products.IsAll() && f.Retailers.IsAll() && (f.DateMode == DateModeAll || f.DateMode == "")
}
