package entity

import (
	"slices"
	"time"

	"github.com/joseph-ayodele/receipts-insights/constants"
)

// Branding carries the client-facing identity of a share.
type Branding struct {
	ClientName   string   `json:"clientName,omitempty"`
	BrandNames   []string `json:"brandNames,omitempty"`
	LogoURL      string   `json:"logoUrl,omitempty"`
	PrimaryColor string   `json:"primaryColor,omitempty"`
}

// Clone copies b and its brand names.
func (b Branding) Clone() Branding {
	out := b
	out.BrandNames = slices.Clone(b.BrandNames)
	return out
}

// ShareConfig governs what a published snapshot exposes.
// ActiveTab must always be a member of AllowedTabs.
type ShareConfig struct {
	AllowedTabs         []string   `json:"allowedTabs"`
	ActiveTab           string     `json:"activeTab"`
	HideRetailers       bool       `json:"hideRetailers"`
	HideTotals          bool       `json:"hideTotals"`
	ShowOnlyPercent     bool       `json:"showOnlyPercent"`
	CustomExcludedDates []string   `json:"customExcludedDates,omitempty"` // YYYY-MM-DD
	HiddenCharts        []string   `json:"hiddenCharts,omitempty"`
	Branding            Branding   `json:"branding"`
	ClientNote          string     `json:"clientNote,omitempty"`
	ExpiryDate          *time.Time `json:"expiryDate,omitempty"`
	Filters             FilterSpec `json:"filters"`
}

// DefaultShareConfig exposes the default tabs with nothing hidden.
func DefaultShareConfig() ShareConfig {
	tabs := constants.TabsAsStringSlice(constants.DefaultTabs)
	return ShareConfig{
		AllowedTabs: tabs,
		ActiveTab:   tabs[0],
		Filters:     DefaultFilterSpec(),
	}
}

// Clone returns a structurally independent copy.
func (c ShareConfig) Clone() ShareConfig {
	out := c
	out.AllowedTabs = slices.Clone(c.AllowedTabs)
	out.CustomExcludedDates = slices.Clone(c.CustomExcludedDates)
	out.HiddenCharts = slices.Clone(c.HiddenCharts)
	out.Branding = c.Branding.Clone()
	if c.ExpiryDate != nil {
		t := *c.ExpiryDate
		out.ExpiryDate = &t
	}
	out.Filters = c.Filters.Clone()
	return out
}

// Normalize canonicalizes tab names, drops unknown and duplicate tabs, falls
// back to the default tabs when none survive, and resets ActiveTab to the
// first allowed tab when it is not a member. The bool reports whether
// anything had to be corrected.
func (c ShareConfig) Normalize() (ShareConfig, bool) {
	out := c.Clone()
	corrected := false

	tabs := make([]string, 0, len(c.AllowedTabs))
	for _, raw := range c.AllowedTabs {
		t, ok := constants.CanonicalTab(raw)
		if !ok || slices.Contains(tabs, string(t)) {
			corrected = true
			continue
		}
		if string(t) != raw {
			corrected = true
		}
		tabs = append(tabs, string(t))
	}
	if len(tabs) == 0 {
		tabs = constants.TabsAsStringSlice(constants.DefaultTabs)
		corrected = true
	}
	out.AllowedTabs = tabs

	active := c.ActiveTab
	if t, ok := constants.CanonicalTab(active); ok {
		active = string(t)
	}
	if !slices.Contains(tabs, active) {
		active = tabs[0]
	}
	if active != c.ActiveTab {
		corrected = true
	}
	out.ActiveTab = active
	return out, corrected
}

// WithAllowedTabs replaces the allowed tabs, resetting ActiveTab when it
// would no longer be a member.
func (c ShareConfig) WithAllowedTabs(tabs []string) ShareConfig {
	out := c.Clone()
	out.AllowedTabs = slices.Clone(tabs)
	if len(out.AllowedTabs) > 0 && !slices.Contains(out.AllowedTabs, out.ActiveTab) {
		out.ActiveTab = out.AllowedTabs[0]
	}
	return out
}

// WithActiveTab switches tab; a tab outside AllowedTabs resolves to the first
// allowed tab.
func (c ShareConfig) WithActiveTab(tab string) ShareConfig {
	out := c.Clone()
	out.ActiveTab = tab
	if len(out.AllowedTabs) > 0 && !slices.Contains(out.AllowedTabs, tab) {
		out.ActiveTab = out.AllowedTabs[0]
	}
	return out
}

// WithFilters replaces the embedded filter spec.
func (c ShareConfig) WithFilters(f FilterSpec) ShareConfig {
	out := c.Clone()
	out.Filters = f.Clone()
	return out
}

// ExcludedDateSet indexes CustomExcludedDates for membership tests.
func (c ShareConfig) ExcludedDateSet() map[string]struct{} {
	set := make(map[string]struct{}, len(c.CustomExcludedDates))
	for _, d := range c.CustomExcludedDates {
		set[d] = struct{}{}
	}
	return set
}

// AllowsTab reports whether tab is allowed.
func (c ShareConfig) AllowsTab(tab constants.Tab) bool {
	return slices.Contains(c.AllowedTabs, string(tab))
}

// Redacts is true when any rule changes what the client sees.
func (c ShareConfig) Redacts() bool {
	return c.HideRetailers || c.HideTotals || len(c.CustomExcludedDates) > 0
}
