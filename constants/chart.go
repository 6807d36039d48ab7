package constants

// Chart identifiers understood by the client UI. Share configs carry them
// opaquely in hiddenCharts; only the XLSX exporter maps them to sheets.
const (
	ChartRetailerDistribution = "retailer-distribution"
	ChartProductDistribution  = "product-distribution"
	ChartDailyTrend           = "daily-trend"
	ChartWeekday              = "weekday-distribution"
	ChartHourOfDay            = "hour-distribution"
	ChartDemographics         = "demographics"
)

// RedactedPlaceholder replaces hidden absolute figures.
const RedactedPlaceholder = "—"

// FallbackClientName is used when a share names neither a client nor a brand.
const FallbackClientName = "Shared Dashboard"
