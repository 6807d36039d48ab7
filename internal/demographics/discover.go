// Package demographics analyses the survey side of a record set: which
// questions were asked, how responses distribute, and how they split by age
// group and gender.
package demographics

import (
	"strings"

	"github.com/joseph-ayodele/receipts-insights/constants"
	"github.com/joseph-ayodele/receipts-insights/internal/entity"
)

// Discover returns the question numbers for which at least one record has
// both a question text and a proposition, in ascending order.
func Discover(records []entity.Record) []entity.QuestionField {
	fields := make([]entity.QuestionField, 0)
	for n := constants.MinQuestionNumber; n <= constants.MaxQuestionNumber; n++ {
		for _, r := range records {
			a := r.Answer(n)
			if strings.TrimSpace(a.Question) != "" && strings.TrimSpace(a.Proposition) != "" {
				fields = append(fields, entity.NewQuestionField(n))
				break
			}
		}
	}
	return fields
}

// SplitResponses splits a semicolon-delimited proposition into trimmed,
// non-empty tokens.
func SplitResponses(raw string) []string {
	parts := strings.Split(raw, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// responsesOf returns the distinct tokens record r gave to question n.
func responsesOf(r entity.Record, n int) []string {
	tokens := SplitResponses(r.Answer(n).Proposition)
	if len(tokens) < 2 {
		return tokens
	}
	seen := make(map[string]struct{}, len(tokens))
	out := tokens[:0]
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

// groupValue reads a record's value for a cross-tab dimension.
func groupValue(r entity.Record, dimension string) string {
	switch dimension {
	case constants.DimensionAgeGroup:
		return strings.TrimSpace(r.AgeGroup)
	case constants.DimensionGender:
		return strings.TrimSpace(r.Gender)
	default:
		return ""
	}
}
