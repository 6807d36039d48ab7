package constants

import (
	"strings"
)

// Tab is a dashboard section that a share can expose.
type Tab string

const (
	TabSummary      Tab = "summary"
	TabSales        Tab = "sales"
	TabRetailers    Tab = "retailers"
	TabProducts     Tab = "products"
	TabTrends       Tab = "trends"
	TabDemographics Tab = "demographics"
)

var allTabs = []Tab{
	TabSummary,
	TabSales,
	TabRetailers,
	TabProducts,
	TabTrends,
	TabDemographics,
}

// DefaultTabs is used when a share config arrives without any allowed tab.
var DefaultTabs = []Tab{TabSummary, TabSales, TabDemographics}

// RecordTabs need record-level rows to render.
var RecordTabs = map[Tab]struct{}{
	TabSales: {},
}

func TabsAsStringSlice(tabs []Tab) []string {
	result := make([]string, len(tabs))
	for i, t := range tabs {
		result[i] = string(t)
	}
	return result
}

func AllTabs() []string {
	return TabsAsStringSlice(allTabs)
}

// CanonicalTab maps loose UI names onto a known tab.
func CanonicalTab(input string) (Tab, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return "", false
	}

	synonyms := map[string]Tab{
		"overview":   TabSummary,
		"home":       TabSummary,
		"receipts":   TabSales,
		"chains":     TabRetailers,
		"retailer":   TabRetailers,
		"product":    TabProducts,
		"trend":      TabTrends,
		"timeline":   TabTrends,
		"survey":     TabDemographics,
		"demography": TabDemographics,
	}
	if t, ok := synonyms[normalized]; ok {
		return t, true
	}

	for _, t := range allTabs {
		if normalized == string(t) {
			return t, true
		}
	}
	return "", false
}
