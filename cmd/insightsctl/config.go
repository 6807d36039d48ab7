package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/receipts-insights/internal/entity"
	"github.com/joseph-ayodele/receipts-insights/internal/utils"
)

// shareFile is the YAML form of a share config.
//
//	allowed_tabs: [sales, demographics]
//	hide_retailers: true
//	expires: 72h            # duration from now, or a date / timestamp
//	filters:
//	  products: [Milk]
//	  month: 2024-03
type shareFile struct {
	AllowedTabs     []string    `yaml:"allowed_tabs"`
	ActiveTab       string      `yaml:"active_tab"`
	HideRetailers   bool        `yaml:"hide_retailers"`
	HideTotals      bool        `yaml:"hide_totals"`
	ShowOnlyPercent bool        `yaml:"show_only_percent"`
	ExcludedDates   []string    `yaml:"excluded_dates"`
	HiddenCharts    []string    `yaml:"hidden_charts"`
	ClientName      string      `yaml:"client_name"`
	BrandNames      []string    `yaml:"brand_names"`
	LogoURL         string      `yaml:"logo_url"`
	PrimaryColor    string      `yaml:"primary_color"`
	ClientNote      string      `yaml:"client_note"`
	Expires         string      `yaml:"expires"`
	Filters         filtersFile `yaml:"filters"`
}

type filtersFile struct {
	Products  []string `yaml:"products"`
	Retailers []string `yaml:"retailers"`
	Month     string   `yaml:"month"`
	Start     string   `yaml:"start"`
	End       string   `yaml:"end"`
}

func readShareFile(path string) (shareFile, error) {
	var f shareFile
	if path == "" {
		return f, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return f, fmt.Errorf("read share config: %w", err)
	}
	if err := yaml.Unmarshal(b, &f); err != nil {
		return f, fmt.Errorf("parse share config %s: %w", path, err)
	}
	return f, nil
}

func (f shareFile) toShareConfig(now time.Time) (entity.ShareConfig, error) {
	cfg := entity.DefaultShareConfig()
	if len(f.AllowedTabs) > 0 {
		cfg = cfg.WithAllowedTabs(f.AllowedTabs)
	}
	if f.ActiveTab != "" {
		cfg = cfg.WithActiveTab(f.ActiveTab)
	}
	cfg.HideRetailers = f.HideRetailers
	cfg.HideTotals = f.HideTotals
	cfg.ShowOnlyPercent = f.ShowOnlyPercent
	cfg.CustomExcludedDates = f.ExcludedDates
	cfg.HiddenCharts = f.HiddenCharts
	cfg.ClientNote = f.ClientNote
	cfg.Branding = entity.Branding{
		ClientName:   f.ClientName,
		BrandNames:   f.BrandNames,
		LogoURL:      f.LogoURL,
		PrimaryColor: f.PrimaryColor,
	}

	filters, err := f.Filters.toFilterSpec()
	if err != nil {
		return entity.ShareConfig{}, err
	}
	cfg.Filters = filters

	if exp := strings.TrimSpace(f.Expires); exp != "" {
		at, err := parseExpiry(exp, now)
		if err != nil {
			return entity.ShareConfig{}, err
		}
		cfg.ExpiryDate = &at
	}
	return cfg, nil
}

func (f filtersFile) toFilterSpec() (entity.FilterSpec, error) {
	spec := entity.DefaultFilterSpec()
	if len(f.Products) > 0 {
		spec.Products = entity.SelectOnly(f.Products...)
	}
	if len(f.Retailers) > 0 {
		spec.Retailers = entity.SelectOnly(f.Retailers...)
	}
	switch {
	case f.Month != "":
		spec.DateMode = entity.DateModeMonth
		spec.Month = f.Month
	case f.Start != "" || f.End != "":
		spec.DateMode = entity.DateModeCustom
		var err error
		if spec.StartDate, err = optionalDay(f.Start); err != nil {
			return spec, fmt.Errorf("filters.start: %w", err)
		}
		if spec.EndDate, err = optionalDay(f.End); err != nil {
			return spec, fmt.Errorf("filters.end: %w", err)
		}
	}
	return spec, nil
}

func optionalDay(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := utils.ParseYMD(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// parseExpiry accepts a duration relative to now or an absolute date.
func parseExpiry(s string, now time.Time) (time.Time, error) {
	if d, err := time.ParseDuration(s); err == nil {
		return now.Add(d), nil
	}
	t, _, err := utils.ParseTimestamp(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("expires: %w", err)
	}
	return t, nil
}
