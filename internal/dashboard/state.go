// Package dashboard holds the analyst's working state and the query
// operations the UI calls: filtered views, demographics, redaction preview
// and publishing.
package dashboard

import (
	"sync"
	"time"

	"github.com/joseph-ayodele/receipts-insights/internal/demographics"
	"github.com/joseph-ayodele/receipts-insights/internal/entity"
)

// State is one immutable revision of the dashboard. Reducers return a new
// State and never modify the one they receive.
type State struct {
	Filters    entity.FilterSpec
	Comparison *entity.FilterSpec // nil derives the preceding window
	Share      entity.ShareConfig
	Question   int
	Responses  demographics.ResponseSelection
	Groups     demographics.GroupFilter
}

func InitialState() State {
	return State{
		Filters: entity.DefaultFilterSpec(),
		Share:   entity.DefaultShareConfig(),
	}
}

// Clone returns a copy sharing no mutable memory with s.
func (s State) Clone() State {
	out := s
	out.Filters = s.Filters.Clone()
	if s.Comparison != nil {
		c := s.Comparison.Clone()
		out.Comparison = &c
	}
	out.Share = s.Share.Clone()
	return out
}

// Action is a pure state transition.
type Action func(State) State

func ToggleProduct(name string) Action {
	return func(s State) State {
		s = s.Clone()
		s.Filters.Products = s.Filters.Products.Toggle(name)
		return s
	}
}

func ToggleRetailer(name string) Action {
	return func(s State) State {
		s = s.Clone()
		s.Filters.Retailers = s.Filters.Retailers.Toggle(name)
		return s
	}
}

func SelectAllProducts() Action {
	return func(s State) State {
		s = s.Clone()
		s.Filters.Products = entity.SelectAll()
		return s
	}
}

func SelectAllRetailers() Action {
	return func(s State) State {
		s = s.Clone()
		s.Filters.Retailers = entity.SelectAll()
		return s
	}
}

// SetMonth switches to month mode for a YYYY-MM key.
func SetMonth(month string) Action {
	return func(s State) State {
		s = s.Clone()
		s.Filters.DateMode = entity.DateModeMonth
		s.Filters.Month = month
		s.Filters.StartDate, s.Filters.EndDate = nil, nil
		return s
	}
}

// SetCustomRange switches to an inclusive custom range. A nil bound is open.
func SetCustomRange(start, end *time.Time) Action {
	return func(s State) State {
		s = s.Clone()
		s.Filters.DateMode = entity.DateModeCustom
		s.Filters.Month = ""
		s.Filters.StartDate, s.Filters.EndDate = copyTime(start), copyTime(end)
		return s
	}
}

func ClearDates() Action {
	return func(s State) State {
		s = s.Clone()
		s.Filters.DateMode = entity.DateModeAll
		s.Filters.Month = ""
		s.Filters.StartDate, s.Filters.EndDate = nil, nil
		return s
	}
}

func SetFilters(f entity.FilterSpec) Action {
	return func(s State) State {
		s = s.Clone()
		s.Filters = f.Clone()
		return s
	}
}

// SetComparison pins the comparison period; nil restores the default.
func SetComparison(f *entity.FilterSpec) Action {
	return func(s State) State {
		s = s.Clone()
		if f == nil {
			s.Comparison = nil
			return s
		}
		c := f.Clone()
		s.Comparison = &c
		return s
	}
}

// SetShareConfig replaces the share settings as a whole, correcting the
// active tab if needed.
func SetShareConfig(cfg entity.ShareConfig) Action {
	return func(s State) State {
		s = s.Clone()
		s.Share, _ = cfg.Normalize()
		return s
	}
}

func SetAllowedTabs(tabs []string) Action {
	return func(s State) State {
		s = s.Clone()
		s.Share = s.Share.WithAllowedTabs(tabs)
		return s
	}
}

func SetActiveTab(tab string) Action {
	return func(s State) State {
		s = s.Clone()
		s.Share = s.Share.WithActiveTab(tab)
		return s
	}
}

// SelectQuestion picks the survey question under analysis and clears the
// response selection made for the previous one.
func SelectQuestion(n int) Action {
	return func(s State) State {
		s = s.Clone()
		if s.Question != n {
			s.Responses = s.Responses.Clear()
		}
		s.Question = n
		return s
	}
}

func ToggleResponse(response string) Action {
	return func(s State) State {
		s = s.Clone()
		s.Responses = s.Responses.Toggle(response)
		return s
	}
}

func ClearResponses() Action {
	return func(s State) State {
		s = s.Clone()
		s.Responses = s.Responses.Clear()
		return s
	}
}

// SelectGroup narrows a demographic dimension; "all" clears it.
func SelectGroup(dimension, group string) Action {
	return func(s State) State {
		s = s.Clone()
		s.Groups = s.Groups.Select(dimension, group)
		return s
	}
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// Store serialises dispatches and hands out copies of the current State.
type Store struct {
	mu    sync.RWMutex
	state State
}

func NewStore(initial State) *Store {
	return &Store{state: initial.Clone()}
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Dispatch applies actions in order and returns the resulting State.
func (s *Store) Dispatch(actions ...Action) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range actions {
		s.state = a(s.state)
	}
	return s.state.Clone()
}
