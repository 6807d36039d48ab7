// Package snapshot assembles the immutable bundle published for a share:
// filtered, aggregated, analysed and redacted in one pass.
package snapshot

import (
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/receipts-insights/constants"
	"github.com/joseph-ayodele/receipts-insights/internal/common"
	"github.com/joseph-ayodele/receipts-insights/internal/dataset"
	"github.com/joseph-ayodele/receipts-insights/internal/demographics"
	"github.com/joseph-ayodele/receipts-insights/internal/entity"
	"github.com/joseph-ayodele/receipts-insights/internal/filter"
	"github.com/joseph-ayodele/receipts-insights/internal/metrics"
	"github.com/joseph-ayodele/receipts-insights/internal/redact"
)

// Builder produces snapshots. The zero value is not usable; use NewBuilder.
type Builder struct {
	now        func() time.Time
	newID      func() string
	defaultTTL time.Duration
	logger     *slog.Logger
}

type Option func(*Builder)

// WithClock sets the time source used for CreatedAt and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) { b.now = now }
}

// WithIDGenerator sets the share id source. Ids must be URL-safe.
func WithIDGenerator(gen func() string) Option {
	return func(b *Builder) { b.newID = gen }
}

// WithDefaultTTL expires shares after ttl when the config has no expiry
// date. Zero means shares never expire by default.
func WithDefaultTTL(ttl time.Duration) Option {
	return func(b *Builder) { b.defaultTTL = ttl }
}

func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		if logger != nil {
			b.logger = logger
		}
	}
}

func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build snapshots ds under cfg. Tab inconsistencies in cfg are corrected
// silently; malformed filters, excluded dates or an expiry already in the
// past are returned as a validation error. The result shares no memory
// with ds or cfg.
func (b *Builder) Build(ds *dataset.Dataset, cfg entity.ShareConfig) (entity.Snapshot, error) {
	cfg, corrected := redact.NormalizeTabs(cfg)
	if corrected {
		b.logger.Debug("share config corrected", "allowed_tabs", cfg.AllowedTabs, "active_tab", cfg.ActiveTab)
	}

	now := b.now()
	if err := validate(cfg, now); err != nil {
		return entity.Snapshot{}, err
	}

	filtered := filter.Apply(ds.Records(), cfg.Filters)
	view := metrics.BuildView(filtered)
	if cfg.AllowsTab(constants.TabDemographics) {
		view.Demographics = demographics.AnalyzeAll(filtered, ds.Questions())
	}

	labels := redact.RetailerLabels(view.Breakdown.RetailerDistribution)
	pre := entity.Precomputed{View: redact.Apply(view, cfg)}
	pre.Redacted = pre.View.Redacted
	if includesRecords(cfg) {
		pre.FilteredRecords = redact.Records(filtered, cfg, labels)
	}

	expiresAt := cfg.ExpiryDate
	if expiresAt == nil && b.defaultTTL > 0 {
		t := now.Add(b.defaultTTL)
		expiresAt = &t
		cfg.ExpiryDate = &t
	}

	published := cfg.Clone()
	if cfg.HideRetailers {
		published.Filters.Retailers = redact.RetailerSelection(cfg.Filters.Retailers, labels)
	}

	id := b.newID()
	snap := entity.Snapshot{
		ID:          id,
		Config:      published,
		Precomputed: pre,
		Metadata: entity.SnapshotMetadata{
			ID:          id,
			CreatedAt:   now,
			DatasetSize: ds.Len(),
			ClientName:  ResolveClientName(cfg.Branding),
		},
	}
	if expiresAt != nil {
		t := *expiresAt
		snap.ExpiresAt = &t
		m := t
		snap.Metadata.ExpiresAt = &m
	}

	b.logger.Info("snapshot built",
		"share_id", id,
		"records", len(filtered),
		"dataset_size", ds.Len(),
		"redacted", pre.Redacted,
		"tabs", cfg.AllowedTabs)
	return snap, nil
}

// ResolveClientName prefers the explicit client name, then the joined brand
// names, then a generic label.
func ResolveClientName(b entity.Branding) string {
	if name := strings.TrimSpace(b.ClientName); name != "" {
		return name
	}
	brands := make([]string, 0, len(b.BrandNames))
	for _, n := range b.BrandNames {
		if n = strings.TrimSpace(n); n != "" {
			brands = append(brands, n)
		}
	}
	if len(brands) > 0 {
		return strings.Join(brands, ", ")
	}
	return constants.FallbackClientName
}

func includesRecords(cfg entity.ShareConfig) bool {
	for t := range constants.RecordTabs {
		if cfg.AllowsTab(t) {
			return true
		}
	}
	return false
}

func validate(cfg entity.ShareConfig, now time.Time) error {
	v := common.NewValidator()
	f := cfg.Filters
	switch f.DateMode {
	case "", entity.DateModeAll:
	case entity.DateModeMonth:
		v.Field("filters.month", f.Month, common.Required, common.Month)
	case entity.DateModeCustom:
		if f.StartDate != nil && f.EndDate != nil && f.EndDate.Before(*f.StartDate) {
			v.Add("filters.endDate", f.EndDate.Format(time.DateOnly), "must not be before startDate")
		}
	default:
		v.Add("filters.dateMode", f.DateMode, "must be all, month or custom")
	}
	for _, d := range cfg.CustomExcludedDates {
		v.Field("customExcludedDates", d, common.Date)
	}
	v.Field("clientNote", cfg.ClientNote, common.MaxLength(2000))
	if cfg.ExpiryDate != nil && !cfg.ExpiryDate.After(now) {
		v.Add("expiryDate", cfg.ExpiryDate.Format(time.RFC3339), "must be in the future")
	}
	return v.Error()
}
