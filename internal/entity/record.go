package entity

import (
	"time"
)

// RecordKind tells sales rows (receipts) from event rows (offer hits).
type RecordKind string

const (
	RecordKindSales RecordKind = "sales"
	RecordKindEvent RecordKind = "event"
)

// Answer is one question_NN / proposition_NN pair. Proposition keeps the raw
// semicolon-separated tokens.
type Answer struct {
	Question    string `json:"question"`
	Proposition string `json:"proposition"`
}

// Record represents one ingested receipt or survey line.
type Record struct {
	Kind          RecordKind     `json:"kind"`
	Date          time.Time      `json:"date"`
	Month         string         `json:"month"`
	DayOfWeek     int            `json:"day_of_week"`
	HourOfDay     int            `json:"hour_of_day"`
	HasHour       bool           `json:"has_hour,omitempty"`
	ProductName   string         `json:"product_name,omitempty"`
	RetailerChain string         `json:"retailer_chain,omitempty"`
	HitID         string         `json:"hit_id,omitempty"`
	CreatedAt     *time.Time     `json:"created_at,omitempty"`
	AgeGroup      string         `json:"age_group,omitempty"`
	Gender        string         `json:"gender,omitempty"`
	Units         *float64       `json:"units,omitempty"`
	Value         *float64       `json:"value,omitempty"`
	Answers       map[int]Answer `json:"answers,omitempty"`
}

// DateKey is the record's calendar day as YYYY-MM-DD.
func (r Record) DateKey() string {
	if r.Date.IsZero() {
		return ""
	}
	return r.Date.Format("2006-01-02")
}

// Answer returns the pair for question n, empty when absent.
func (r Record) Answer(n int) Answer {
	if r.Answers == nil {
		return Answer{}
	}
	return r.Answers[n]
}

// Clone returns a copy that shares no pointers or maps with r.
func (r Record) Clone() Record {
	out := r
	if r.CreatedAt != nil {
		t := *r.CreatedAt
		out.CreatedAt = &t
	}
	if r.Units != nil {
		v := *r.Units
		out.Units = &v
	}
	if r.Value != nil {
		v := *r.Value
		out.Value = &v
	}
	if r.Answers != nil {
		out.Answers = make(map[int]Answer, len(r.Answers))
		for k, v := range r.Answers {
			out.Answers[k] = v
		}
	}
	return out
}

// CloneRecords deep-copies a record slice. A nil input yields an empty slice.
func CloneRecords(in []Record) []Record {
	out := make([]Record, len(in))
	for i, r := range in {
		out[i] = r.Clone()
	}
	return out
}
