package entity

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// AllSentinel is the wire value meaning "no restriction".
const AllSentinel = "all"

// Selection is a set of explicit values or the "all" sentinel. It is never an
// empty explicit set: dropping the last value reverts to all.
// Values are immutable; every mutator returns a new Selection.
type Selection struct {
	values []string
}

// SelectAll returns the sentinel selection.
func SelectAll() Selection {
	return Selection{}
}

// SelectOnly builds an explicit selection. Blank and duplicate values are
// dropped, and "all" anywhere in the input yields the sentinel.
func SelectOnly(values ...string) Selection {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if strings.EqualFold(v, AllSentinel) {
			return SelectAll()
		}
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return SelectAll()
	}
	return Selection{values: out}
}

// IsAll reports whether s is the "all" sentinel.
func (s Selection) IsAll() bool {
	return len(s.values) == 0
}

// Values returns a copy of the explicit values, nil for the sentinel.
func (s Selection) Values() []string {
	if s.IsAll() {
		return nil
	}
	return slices.Clone(s.values)
}

// Contains reports whether v passes the selection.
func (s Selection) Contains(v string) bool {
	if s.IsAll() {
		return true
	}
	return slices.Contains(s.values, v)
}

// Toggle adds v when absent and removes it when present.
func (s Selection) Toggle(v string) Selection {
	if strings.EqualFold(strings.TrimSpace(v), AllSentinel) {
		return SelectAll()
	}
	if !s.IsAll() && slices.Contains(s.values, v) {
		return s.Remove(v)
	}
	return SelectOnly(append(s.Values(), v)...)
}

// Remove drops v; removing the last explicit value reverts to all.
func (s Selection) Remove(v string) Selection {
	if s.IsAll() {
		return s
	}
	out := make([]string, 0, len(s.values))
	for _, x := range s.values {
		if x != v {
			out = append(out, x)
		}
	}
	return SelectOnly(out...)
}

// Select adds v, or clears every explicit value when v is "all".
func (s Selection) Select(v string) Selection {
	if strings.EqualFold(strings.TrimSpace(v), AllSentinel) {
		return SelectAll()
	}
	return SelectOnly(append(s.Values(), v)...)
}

// Clone returns an independent copy of s.
func (s Selection) Clone() Selection {
	return Selection{values: s.Values()}
}

func (s Selection) String() string {
	if s.IsAll() {
		return AllSentinel
	}
	return strings.Join(s.values, ",")
}

// MarshalJSON encodes the sentinel as "all" and explicit sets as arrays.
func (s Selection) MarshalJSON() ([]byte, error) {
	if s.IsAll() {
		return json.Marshal(AllSentinel)
	}
	return json.Marshal(s.values)
}

func (s *Selection) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = SelectAll()
		return nil
	}
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*s = SelectOnly(one)
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("selection must be %q or a list of strings: %w", AllSentinel, err)
	}
	*s = SelectOnly(many...)
	return nil
}
