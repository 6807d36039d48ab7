package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joseph-ayodele/receipts-insights/constants"
	"github.com/joseph-ayodele/receipts-insights/internal/entity"
)

// ShareGetter loads a stored share.
type ShareGetter interface {
	Get(ctx context.Context, id string) (entity.Snapshot, error)
}

// Service renders shares as XLSX workbooks. It only ever sees the client
// view of a share, so a workbook carries exactly what the link shows.
type Service struct {
	shares  ShareGetter
	printer *message.Printer
	logger  *slog.Logger
}

func NewService(shares ShareGetter, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		shares:  shares,
		printer: message.NewPrinter(language.English),
		logger:  logger,
	}
}

// ExportShareXLSX loads share id and renders it.
func (s *Service) ExportShareXLSX(ctx context.Context, id string) ([]byte, error) {
	snap, err := s.shares.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load share: %w", err)
	}
	return s.RenderXLSX(snap)
}

// ExportToDir writes share id to dir/<id>.xlsx and returns the path.
func (s *Service) ExportToDir(ctx context.Context, id, dir string) (string, error) {
	data, err := s.ExportShareXLSX(ctx, id)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	path := filepath.Join(dir, FileName(id))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}
	s.logger.Info("export.file.ok", "share_id", id, "path", path, "bytes", len(data))
	return path, nil
}

// FileName is the workbook name used for share id.
func FileName(id string) string {
	return "share-" + id + ".xlsx"
}

// RenderXLSX returns the workbook bytes for snap. Sheets for charts the
// share hides are left out.
func (s *Service) RenderXLSX(snap entity.Snapshot) ([]byte, error) {
	start := time.Now()
	view := snap.Precomputed.View
	hidden := func(chart string) bool { return slices.Contains(view.HiddenCharts, chart) }

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const summary = "Summary"
	if err := f.SetSheetName(f.GetSheetName(0), summary); err != nil {
		return nil, err
	}
	s.writeSummary(f, summary, snap)

	if !hidden(constants.ChartRetailerDistribution) {
		if err := writeShares(f, "Retailers", "Retailer", view.RetailerDistribution); err != nil {
			return nil, err
		}
	}
	if !hidden(constants.ChartProductDistribution) {
		if err := writeShares(f, "Products", "Product", view.ProductDistribution); err != nil {
			return nil, err
		}
	}
	if !hidden(constants.ChartWeekday) && len(view.WeekdayDistribution) > 0 {
		if err := writeShares(f, "Weekdays", "Weekday", view.WeekdayDistribution); err != nil {
			return nil, err
		}
	}
	if !hidden(constants.ChartHourOfDay) && len(view.HourDistribution) > 0 {
		if err := writeShares(f, "Hours", "Hour", view.HourDistribution); err != nil {
			return nil, err
		}
	}
	if !hidden(constants.ChartDailyTrend) {
		if err := writeTrend(f, view.Trend); err != nil {
			return nil, err
		}
	}
	if !hidden(constants.ChartDemographics) && len(view.Demographics) > 0 {
		if err := writeDemographics(f, view.Demographics); err != nil {
			return nil, err
		}
	}
	if len(snap.Precomputed.FilteredRecords) > 0 {
		if err := writeRecords(f, snap.Precomputed.FilteredRecords); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"share_id", snap.ID,
		"sheets", len(f.GetSheetList()),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func (s *Service) writeSummary(f *excelize.File, sheet string, snap entity.Snapshot) {
	view := snap.Precomputed.View
	m := view.Metrics
	expires := "never"
	if snap.ExpiresAt != nil {
		expires = snap.ExpiresAt.UTC().Format(time.RFC3339)
	}

	rows := [][2]string{
		{"Client", snap.Metadata.ClientName},
		{"Share ID", snap.ID},
		{"Created", snap.Metadata.CreatedAt.UTC().Format(time.RFC3339)},
		{"Expires", expires},
		{"Records", s.figure(m.TotalRecords)},
		{"Retailers", s.printer.Sprintf("%d", m.DistinctRetailers)},
		{"Products", s.printer.Sprintf("%d", m.DistinctProducts)},
		{"First day", m.MinDate},
		{"Last day", m.MaxDate},
		{"Average per day", s.figure(m.AveragePerDay)},
		{"Total units", s.figure(view.Totals.Units)},
		{"Total value", s.figure(view.Totals.Value)},
	}
	if view.ClientNote != "" {
		rows = append(rows, [2]string{"Note", truncate(view.ClientNote, 500)})
	}
	for i, r := range rows {
		_ = f.SetSheetRow(sheet, cell(1, i+1), &[]any{r[0], r[1]})
	}
	_ = f.SetColWidth(sheet, "A", "A", 18)
	_ = f.SetColWidth(sheet, "B", "B", 48)
}

// figure formats numeric figures with grouping; placeholders pass through.
func (s *Service) figure(fig entity.Figure) string {
	if fig.IsHidden() {
		return string(fig)
	}
	if n, err := strconv.ParseInt(string(fig), 10, 64); err == nil {
		return s.printer.Sprintf("%d", n)
	}
	if v, err := strconv.ParseFloat(string(fig), 64); err == nil {
		return s.printer.Sprintf("%.2f", v)
	}
	return string(fig)
}

func writeShares(f *excelize.File, sheet, label string, shares []entity.ClientShare) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	_ = f.SetSheetRow(sheet, "A1", &[]any{label, "Count", "Percentage"})
	for i, sh := range shares {
		_ = f.SetSheetRow(sheet, cell(1, i+2), &[]any{sh.Name, figureValue(sh.Count), sh.Percentage})
	}
	_ = f.SetColWidth(sheet, "A", "A", 28)
	return nil
}

func writeTrend(f *excelize.File, points []entity.TrendPoint) error {
	const sheet = "Trend"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	_ = f.SetSheetRow(sheet, "A1", &[]any{"Date", "Records"})
	for i, p := range points {
		_ = f.SetSheetRow(sheet, cell(1, i+2), &[]any{p.Date, p.Count})
	}
	_ = f.SetColWidth(sheet, "A", "A", 14)
	return nil
}

func writeDemographics(f *excelize.File, breakdowns []entity.DemographicBreakdown) error {
	const sheet = "Demographics"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	_ = f.SetSheetRow(sheet, "A1", &[]any{"Question", "Text", "Response", "Count", "Share of responses"})
	row := 2
	for _, b := range breakdowns {
		for _, resp := range b.Responses {
			n := b.ResponseCounts[resp]
			share := 0.0
			if b.TotalResponses > 0 {
				share = float64(n) / float64(b.TotalResponses) * 100
			}
			_ = f.SetSheetRow(sheet, cell(1, row), &[]any{b.QuestionNumber, b.QuestionText, resp, n, share})
			row++
		}
	}
	_ = f.SetColWidth(sheet, "B", "B", 40)
	_ = f.SetColWidth(sheet, "C", "C", 28)
	return nil
}

func writeRecords(f *excelize.File, records []entity.Record) error {
	const sheet = "Records"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	_ = f.SetSheetRow(sheet, "A1", &[]any{"Date", "Product", "Retailer", "Units", "Value"})
	for i, r := range records {
		row := []any{r.DateKey(), r.ProductName, r.RetailerChain, "", ""}
		if r.Units != nil {
			row[3] = *r.Units
		}
		if r.Value != nil {
			row[4] = *r.Value
		}
		_ = f.SetSheetRow(sheet, cell(1, i+2), &row)
	}
	_ = f.SetColWidth(sheet, "A", "A", 14)
	_ = f.SetColWidth(sheet, "B", "C", 28)
	return nil
}

// figureValue writes numbers as numbers so spreadsheets can sum them.
func figureValue(fig entity.Figure) any {
	if n, err := strconv.Atoi(string(fig)); err == nil {
		return n
	}
	return string(fig)
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
