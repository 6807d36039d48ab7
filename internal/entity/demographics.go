package entity

import (
	"fmt"
	"maps"
	"slices"
)

// QuestionField names the record keys backing one survey question.
type QuestionField struct {
	Number         int    `json:"number"`
	QuestionKey    string `json:"questionKey"`
	PropositionKey string `json:"propositionKey"`
}

// NewQuestionField builds the question_NN / proposition_NN keys for n.
func NewQuestionField(n int) QuestionField {
	return QuestionField{
		Number:         n,
		QuestionKey:    fmt.Sprintf("question_%02d", n),
		PropositionKey: fmt.Sprintf("proposition_%02d", n),
	}
}

// GroupStats is one demographic group of a cross-tab.
type GroupStats struct {
	Group       string         `json:"group"`
	Total       int            `json:"total"`
	PerResponse map[string]int `json:"perResponse"`
}

// DemographicBreakdown is the response distribution of one question.
// CrossTab maps a dimension to its groups in display order.
type DemographicBreakdown struct {
	QuestionNumber int                     `json:"questionNumber"`
	QuestionText   string                  `json:"questionText"`
	Responses      []string                `json:"responses"` // by count desc
	ResponseCounts map[string]int          `json:"responseCounts"`
	TotalResponses int                     `json:"totalResponses"`
	Respondents    int                     `json:"respondents"`
	CrossTab       map[string][]GroupStats `json:"crossTab"`
}

// Clone copies the counts and cross-tab of d.
func (d DemographicBreakdown) Clone() DemographicBreakdown {
	out := d
	out.Responses = slices.Clone(d.Responses)
	out.ResponseCounts = maps.Clone(d.ResponseCounts)
	if d.CrossTab != nil {
		out.CrossTab = make(map[string][]GroupStats, len(d.CrossTab))
		for dim, groups := range d.CrossTab {
			cp := make([]GroupStats, len(groups))
			for i, g := range groups {
				cp[i] = GroupStats{Group: g.Group, Total: g.Total, PerResponse: maps.Clone(g.PerResponse)}
			}
			out.CrossTab[dim] = cp
		}
	}
	return out
}

// CrossTabRow is one (response, dimension, group) cell with its percentages.
type CrossTabRow struct {
	Response       string  `json:"response"`
	Dimension      string  `json:"dimension"`
	Group          string  `json:"group"`
	Count          int     `json:"count"`
	GroupTotal     int     `json:"groupTotal"`
	GroupPercent   float64 `json:"groupPercent"`
	PercentOfTotal float64 `json:"percentOfTotal"`
}
