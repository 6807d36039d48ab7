package dataset

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/receipts-insights/constants"
	"github.com/joseph-ayodele/receipts-insights/internal/common"
	"github.com/joseph-ayodele/receipts-insights/internal/entity"
	"github.com/joseph-ayodele/receipts-insights/internal/utils"
)

// Row is one parsed input line keyed by normalized column name.
type Row map[string]string

// Get returns the first non-empty value among keys.
func (r Row) Get(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(r[k]); v != "" {
			return v
		}
	}
	return ""
}

var (
	dateKeys     = []string{"receipt_date", "date"}
	productKeys  = []string{"product_name"}
	retailerKeys = []string{"chain", "retailer_chain"}
	unitKeys     = []string{"units", "quantity"}
	valueKeys    = []string{"value", "amount", "total"}
)

// Load converts rows into records. Rows carrying any sales column must
// supply a date, product_name and chain; other rows must supply hit_id.
// Every invalid row is reported in a single validation error and no records
// are returned in that case.
func Load(rows []Row) ([]entity.Record, error) {
	v := common.NewValidator()
	out := make([]entity.Record, 0, len(rows))
	for i, row := range rows {
		rec, ok := loadRow(v, i+1, row)
		if ok {
			out = append(out, rec)
		}
	}
	if err := v.Error(); err != nil {
		return nil, err
	}
	return out, nil
}

func isSalesRow(row Row) bool {
	return row.Get(dateKeys...) != "" || row.Get(productKeys...) != "" || row.Get(retailerKeys...) != ""
}

func loadRow(v *common.Validator, line int, row Row) (entity.Record, bool) {
	field := func(name string) string { return fmt.Sprintf("row %d: %s", line, name) }
	before := len(v.Errors())

	var rec entity.Record
	if isSalesRow(row) {
		rec.Kind = entity.RecordKindSales
		rawDate := row.Get(dateKeys...)
		v.Field(field("date"), rawDate, common.Required)
		v.Field(field("product_name"), row.Get(productKeys...), common.Required)
		v.Field(field("chain"), row.Get(retailerKeys...), common.Required)
		if rawDate != "" {
			ts, hasTime, err := utils.ParseTimestamp(rawDate)
			if err != nil {
				v.Add(field("date"), rawDate, "must be a date")
			} else {
				rec.Date = utils.TruncateDay(ts)
				rec.Month = rec.Date.Format("2006-01")
				rec.DayOfWeek = int(rec.Date.Weekday())
				if hasTime {
					rec.HourOfDay = ts.Hour()
					rec.HasHour = true
				}
				if h := row.Get("hour_of_day"); h != "" && !hasTime {
					if n, err := strconv.Atoi(h); err == nil && n >= 0 && n < 24 {
						rec.HourOfDay = n
						rec.HasHour = true
					}
				}
			}
		}
		rec.ProductName = row.Get(productKeys...)
		rec.RetailerChain = row.Get(retailerKeys...)
	} else {
		rec.Kind = entity.RecordKindEvent
		rec.HitID = row.Get("hit_id")
		v.Field(field("hit_id"), rec.HitID, common.Required)
		if raw := row.Get("created_at"); raw != "" {
			ts, _, err := utils.ParseTimestamp(raw)
			if err != nil {
				v.Add(field("created_at"), raw, "must be a timestamp")
			} else {
				rec.CreatedAt = &ts
				rec.Date = utils.TruncateDay(ts)
				rec.Month = rec.Date.Format("2006-01")
			}
		}
	}

	rec.AgeGroup = row.Get("age_group", "age")
	rec.Gender = row.Get("gender")
	rec.Units = parseMeasure(v, field("units"), row.Get(unitKeys...))
	rec.Value = parseMeasure(v, field("value"), row.Get(valueKeys...))
	rec.Answers = parseAnswers(row)

	return rec, len(v.Errors()) == before
}

func parseMeasure(v *common.Validator, field, raw string) *float64 {
	if raw == "" {
		return nil
	}
	n, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", ""), 64)
	if err != nil {
		v.Add(field, raw, "must be a number")
		return nil
	}
	return &n
}

func parseAnswers(row Row) map[int]entity.Answer {
	var answers map[int]entity.Answer
	for n := constants.MinQuestionNumber; n <= constants.MaxQuestionNumber; n++ {
		f := entity.NewQuestionField(n)
		a := entity.Answer{
			Question:    row.Get(f.QuestionKey),
			Proposition: row.Get(f.PropositionKey),
		}
		if a.Question == "" && a.Proposition == "" {
			continue
		}
		if answers == nil {
			answers = make(map[int]entity.Answer)
		}
		answers[n] = a
	}
	return answers
}
