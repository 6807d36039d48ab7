package demographics

import (
	"sort"
	"strings"

	"github.com/joseph-ayodele/receipts-insights/constants"
	"github.com/joseph-ayodele/receipts-insights/internal/entity"
	"github.com/joseph-ayodele/receipts-insights/internal/metrics"
)

// Analyze computes the response distribution of question n over records.
// Counting is per distinct token: a record answering "A;B" adds one to A
// and one to B, and "A;A" adds one to A. Records with no response to n are
// ignored.
func Analyze(records []entity.Record, n int) entity.DemographicBreakdown {
	out := entity.DemographicBreakdown{
		QuestionNumber: n,
		Responses:      []string{},
		ResponseCounts: make(map[string]int),
		CrossTab:       make(map[string][]entity.GroupStats, len(constants.CrossTabDimensions)),
	}

	type acc struct {
		total       int
		perResponse map[string]int
	}
	groups := make(map[string]map[string]*acc, len(constants.CrossTabDimensions))
	for _, dim := range constants.CrossTabDimensions {
		groups[dim] = make(map[string]*acc)
	}

	for _, r := range records {
		distinct := responsesOf(r, n)
		if len(distinct) == 0 {
			continue
		}
		if out.QuestionText == "" {
			out.QuestionText = strings.TrimSpace(r.Answer(n).Question)
		}
		out.Respondents++
		for _, t := range distinct {
			out.ResponseCounts[t]++
			out.TotalResponses++
		}

		for _, dim := range constants.CrossTabDimensions {
			g := groupValue(r, dim)
			if g == "" {
				continue
			}
			a, ok := groups[dim][g]
			if !ok {
				a = &acc{perResponse: make(map[string]int)}
				groups[dim][g] = a
			}
			a.total++
			for _, t := range distinct {
				a.perResponse[t]++
			}
		}
	}

	for resp := range out.ResponseCounts {
		out.Responses = append(out.Responses, resp)
	}
	sort.Slice(out.Responses, func(i, j int) bool {
		ci, cj := out.ResponseCounts[out.Responses[i]], out.ResponseCounts[out.Responses[j]]
		if ci != cj {
			return ci > cj
		}
		return out.Responses[i] < out.Responses[j]
	})

	for _, dim := range constants.CrossTabDimensions {
		names := make([]string, 0, len(groups[dim]))
		for g := range groups[dim] {
			names = append(names, g)
		}
		names = SortGroups(dim, names)
		stats := make([]entity.GroupStats, 0, len(names))
		for _, g := range names {
			a := groups[dim][g]
			stats = append(stats, entity.GroupStats{Group: g, Total: a.total, PerResponse: a.perResponse})
		}
		out.CrossTab[dim] = stats
	}
	return out
}

// AnalyzeAll analyses every discovered question.
func AnalyzeAll(records []entity.Record, fields []entity.QuestionField) []entity.DemographicBreakdown {
	out := make([]entity.DemographicBreakdown, 0, len(fields))
	for _, f := range fields {
		out = append(out, Analyze(records, f.Number))
	}
	return out
}

// CrossTabulate expands the cross-tab of question n into rows for each
// selected response, dimension and group. GroupPercent is the share of the
// group's respondents choosing the response; PercentOfTotal is the group's
// share of everyone in that dimension who chose it. An empty selection
// means every response, in distribution order.
func CrossTabulate(records []entity.Record, n int, selected []string) []entity.CrossTabRow {
	b := Analyze(records, n)
	if len(selected) == 0 {
		selected = b.Responses
	}

	rows := make([]entity.CrossTabRow, 0)
	for _, resp := range selected {
		for _, dim := range constants.CrossTabDimensions {
			groups := b.CrossTab[dim]
			chose := 0
			for _, g := range groups {
				chose += g.PerResponse[resp]
			}
			for _, g := range groups {
				count := g.PerResponse[resp]
				rows = append(rows, entity.CrossTabRow{
					Response:       resp,
					Dimension:      dim,
					Group:          g.Group,
					Count:          count,
					GroupTotal:     g.Total,
					GroupPercent:   metrics.Percent(count, g.Total),
					PercentOfTotal: metrics.Percent(count, chose),
				})
			}
		}
	}
	return rows
}

// Summary counts records per age group and per gender, keyed by dimension.
// Records without a value for a dimension are not counted there.
func Summary(records []entity.Record) map[string][]entity.Share {
	out := make(map[string][]entity.Share, len(constants.CrossTabDimensions))
	for _, dim := range constants.CrossTabDimensions {
		counts := make(map[string]int)
		total := 0
		for _, r := range records {
			if g := groupValue(r, dim); g != "" {
				counts[g]++
				total++
			}
		}
		names := make([]string, 0, len(counts))
		for g := range counts {
			names = append(names, g)
		}
		shares := make([]entity.Share, 0, len(names))
		for _, g := range SortGroups(dim, names) {
			shares = append(shares, entity.Share{Name: g, Count: counts[g], Percentage: metrics.Percent(counts[g], total)})
		}
		out[dim] = shares
	}
	return out
}
