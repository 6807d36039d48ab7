// Package redact turns a computed dashboard view into the client-safe view
// carried by a share, applying the visibility rules of a ShareConfig.
package redact

import (
	"fmt"
	"slices"

	"github.com/joseph-ayodele/receipts-insights/internal/entity"
	"github.com/joseph-ayodele/receipts-insights/internal/utils"
)

// Apply builds the client view of view under cfg. Neither input is
// modified and the result shares no memory with them.
//
// Rules compose independently: HideRetailers relabels retailers by their
// position in the retailer distribution, HideTotals blanks absolute totals,
// ShowOnlyPercent (effective only together with HideTotals) blanks
// per-category counts, CustomExcludedDates drops trend points, and
// HiddenCharts is forwarded untouched.
func Apply(view entity.ComputedView, cfg entity.ShareConfig) entity.ClientView {
	cfg, _ = NormalizeTabs(cfg)

	out := entity.ClientView{
		AllowedTabs:  slices.Clone(cfg.AllowedTabs),
		ActiveTab:    cfg.ActiveTab,
		HiddenCharts: slices.Clone(cfg.HiddenCharts),
		Branding:     cfg.Branding.Clone(),
		ClientNote:   cfg.ClientNote,
		Redacted:     cfg.Redacts(),
	}

	hideCounts := cfg.HideTotals && cfg.ShowOnlyPercent
	b := view.Breakdown

	out.Metrics = clientMetrics(view.Metrics, cfg.HideTotals)
	out.Totals = clientTotals(b.Totals, cfg.HideTotals)

	labels := RetailerLabels(b.RetailerDistribution)
	out.RetailerDistribution = clientShares(b.RetailerDistribution, hideCounts)
	if cfg.HideRetailers {
		for i := range out.RetailerDistribution {
			out.RetailerDistribution[i].Name = labels[out.RetailerDistribution[i].Name]
		}
	}
	out.ProductDistribution = clientShares(b.ProductDistribution, hideCounts)
	if b.WeekdayDistribution != nil {
		out.WeekdayDistribution = clientShares(b.WeekdayDistribution, hideCounts)
	}
	if b.HourDistribution != nil {
		out.HourDistribution = clientShares(b.HourDistribution, hideCounts)
	}

	out.Trend = Trend(b.Trend, cfg.ExcludedDateSet())

	if view.Demographics != nil {
		out.Demographics = make([]entity.DemographicBreakdown, len(view.Demographics))
		for i, d := range view.Demographics {
			out.Demographics[i] = d.Clone()
		}
	}
	return out
}

// NormalizeTabs drops unknown tabs, restores the default tab list when none
// remain and keeps ActiveTab a member of AllowedTabs.
func NormalizeTabs(cfg entity.ShareConfig) (entity.ShareConfig, bool) {
	return cfg.Normalize()
}

// RetailerLabels maps each retailer name to "Retailer N", N being its
// 1-based position in dist.
func RetailerLabels(dist []entity.Share) map[string]string {
	labels := make(map[string]string, len(dist))
	for i, s := range dist {
		if _, ok := labels[s.Name]; !ok {
			labels[s.Name] = fmt.Sprintf("Retailer %d", i+1)
		}
	}
	return labels
}

// RetailerSelection relabels an explicit retailer selection. Retailers with
// no label take the next free numbers in selection order.
func RetailerSelection(sel entity.Selection, labels map[string]string) entity.Selection {
	if sel.IsAll() {
		return sel
	}
	next := len(labels)
	values := sel.Values()
	out := make([]string, 0, len(values))
	for _, name := range values {
		label, ok := labels[name]
		if !ok {
			next++
			label = fmt.Sprintf("Retailer %d", next)
		}
		out = append(out, label)
	}
	return entity.SelectOnly(out...)
}

// Trend copies points, skipping dates in excluded.
func Trend(points []entity.TrendPoint, excluded map[string]struct{}) []entity.TrendPoint {
	out := make([]entity.TrendPoint, 0, len(points))
	for _, p := range points {
		if _, skip := excluded[p.Date]; skip {
			continue
		}
		out = append(out, p)
	}
	return out
}

func clientShares(in []entity.Share, hideCounts bool) []entity.ClientShare {
	out := make([]entity.ClientShare, len(in))
	for i, s := range in {
		count := entity.CountFigure(s.Count)
		if hideCounts {
			count = entity.Hidden
		}
		out[i] = entity.ClientShare{Name: s.Name, Count: count, Percentage: s.Percentage}
	}
	return out
}

func clientTotals(t entity.Totals, hide bool) entity.ClientTotals {
	if hide {
		return entity.ClientTotals{Records: entity.Hidden, Units: entity.Hidden, Value: entity.Hidden}
	}
	return entity.ClientTotals{
		Records: entity.CountFigure(t.Records),
		Units:   entity.QuantityFigure(t.Units),
		Value:   entity.AmountFigure(t.Value),
	}
}

func clientMetrics(m entity.Metrics, hideTotals bool) entity.ClientMetrics {
	out := entity.ClientMetrics{
		TotalRecords:      entity.CountFigure(m.TotalRecords),
		DistinctRetailers: m.DistinctRetailers,
		DistinctProducts:  m.DistinctProducts,
		AveragePerDay:     entity.CountFigure(m.AveragePerDay),
	}
	if m.MinDate != nil {
		out.MinDate = utils.FormatYMD(*m.MinDate)
	}
	if m.MaxDate != nil {
		out.MaxDate = utils.FormatYMD(*m.MaxDate)
	}
	if hideTotals {
		out.TotalRecords = entity.Hidden
		out.AveragePerDay = entity.Hidden
	}
	return out
}
