package filter

import (
	"time"

	"github.com/joseph-ayodele/receipts-insights/internal/entity"
	"github.com/joseph-ayodele/receipts-insights/internal/utils"
)

// ComparisonWindow returns the equal-length window immediately preceding
// [start, end]: [start - (end-start+1) days, start - 1 day].
func ComparisonWindow(start, end time.Time) (time.Time, time.Time) {
	days := utils.DaysInclusive(start, end)
	return utils.AddDays(start, -days), utils.AddDays(start, -1)
}

// PrimaryWindow resolves the calendar window a spec covers. Month mode spans
// the whole month; custom mode uses its bounds, falling back to the data
// bounds for an open side; all mode spans the data. ok is false when no
// window can be derived.
func PrimaryWindow(spec entity.FilterSpec, records []entity.Record) (time.Time, time.Time, bool) {
	switch spec.DateMode {
	case entity.DateModeMonth:
		first, last, err := utils.MonthBounds(spec.Month)
		if err != nil {
			return time.Time{}, time.Time{}, false
		}
		return first, last, true
	case entity.DateModeCustom:
		start, end, _ := DateBounds(records)
		if spec.StartDate != nil {
			start = utils.TruncateDay(*spec.StartDate)
		}
		if spec.EndDate != nil {
			end = utils.TruncateDay(*spec.EndDate)
		}
		if start.IsZero() || end.IsZero() {
			return time.Time{}, time.Time{}, false
		}
		return start, end, true
	default:
		return DateBounds(records)
	}
}

// ComparisonSpec derives the default comparison-period spec: the same
// product and retailer selectors over the preceding equal-length window.
// ok is false when primary has no derivable window.
func ComparisonSpec(primary entity.FilterSpec, records []entity.Record) (entity.FilterSpec, bool) {
	start, end, ok := PrimaryWindow(primary, records)
	if !ok {
		return entity.FilterSpec{}, false
	}
	prevStart, prevEnd := ComparisonWindow(start, end)
	out := primary.Clone()
	out.DateMode = entity.DateModeCustom
	out.Month = ""
	out.StartDate = &prevStart
	out.EndDate = &prevEnd
	return out, true
}
