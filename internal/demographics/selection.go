package demographics

import (
	"slices"
	"strings"

	"github.com/joseph-ayodele/receipts-insights/constants"
	"github.com/joseph-ayodele/receipts-insights/internal/entity"
)

// ResponseSelection is the set of responses picked for cross-tabulation.
// The zero value is empty. Methods return new values.
type ResponseSelection struct {
	responses []string
}

func NewResponseSelection(responses ...string) ResponseSelection {
	var s ResponseSelection
	for _, r := range responses {
		if r = strings.TrimSpace(r); r != "" && !slices.Contains(s.responses, r) {
			s.responses = append(s.responses, r)
		}
	}
	return s
}

// Toggle adds response when absent and removes it when present.
func (s ResponseSelection) Toggle(response string) ResponseSelection {
	if i := slices.Index(s.responses, response); i >= 0 {
		return ResponseSelection{responses: slices.Delete(slices.Clone(s.responses), i, i+1)}
	}
	return NewResponseSelection(append(slices.Clone(s.responses), response)...)
}

func (s ResponseSelection) Clear() ResponseSelection {
	return ResponseSelection{}
}

func (s ResponseSelection) Contains(response string) bool {
	return slices.Contains(s.responses, response)
}

func (s ResponseSelection) Values() []string {
	return slices.Clone(s.responses)
}

func (s ResponseSelection) Len() int {
	return len(s.responses)
}

// GroupFilter narrows records by age group and gender before analysis.
// An empty set for a dimension means every group.
type GroupFilter struct {
	selected map[string][]string
}

// Select adds group to dimension. Selecting "all" clears the dimension.
func (f GroupFilter) Select(dimension, group string) GroupFilter {
	out := f.clone()
	group = strings.TrimSpace(group)
	if group == "" {
		return out
	}
	if strings.EqualFold(group, entity.AllSentinel) {
		delete(out.selected, dimension)
		return out
	}
	if !slices.Contains(out.selected[dimension], group) {
		out.selected[dimension] = append(out.selected[dimension], group)
	}
	return out
}

// Toggle removes group from dimension if selected, otherwise adds it.
func (f GroupFilter) Toggle(dimension, group string) GroupFilter {
	cur := f.selected[dimension]
	i := slices.Index(cur, group)
	if i < 0 {
		return f.Select(dimension, group)
	}
	out := f.clone()
	out.selected[dimension] = slices.Delete(slices.Clone(cur), i, i+1)
	if len(out.selected[dimension]) == 0 {
		delete(out.selected, dimension)
	}
	return out
}

// Selected returns the groups picked for dimension, nil meaning all.
func (f GroupFilter) Selected(dimension string) []string {
	return slices.Clone(f.selected[dimension])
}

// Apply keeps the records matching every restricted dimension.
func (f GroupFilter) Apply(records []entity.Record) []entity.Record {
	out := make([]entity.Record, 0, len(records))
	for _, r := range records {
		if f.matches(r) {
			out = append(out, r)
		}
	}
	return out
}

func (f GroupFilter) matches(r entity.Record) bool {
	for _, dim := range constants.CrossTabDimensions {
		want := f.selected[dim]
		if len(want) > 0 && !slices.Contains(want, groupValue(r, dim)) {
			return false
		}
	}
	return true
}

func (f GroupFilter) clone() GroupFilter {
	out := GroupFilter{selected: make(map[string][]string, len(f.selected))}
	for k, v := range f.selected {
		out.selected[k] = slices.Clone(v)
	}
	return out
}
