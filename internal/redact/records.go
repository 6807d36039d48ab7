package redact

import (
	"github.com/joseph-ayodele/receipts-insights/internal/entity"
)

// Records prepares already-filtered records for inclusion in a share. The
// copies drop per-person survey fields, skip excluded dates, carry ordinal
// retailer names when retailers are hidden and lose their measures when
// totals are hidden. labels comes from RetailerLabels over the same view.
func Records(filtered []entity.Record, cfg entity.ShareConfig, labels map[string]string) []entity.Record {
	excluded := cfg.ExcludedDateSet()
	out := make([]entity.Record, 0, len(filtered))
	for _, r := range filtered {
		if _, skip := excluded[r.DateKey()]; skip {
			continue
		}
		c := r.Clone()
		c.AgeGroup = ""
		c.Gender = ""
		c.HitID = ""
		c.Answers = nil
		if cfg.HideRetailers {
			if label, ok := labels[c.RetailerChain]; ok {
				c.RetailerChain = label
			} else {
				c.RetailerChain = ""
			}
		}
		if cfg.HideTotals {
			c.Units = nil
			c.Value = nil
		}
		out = append(out, c)
	}
	return out
}
