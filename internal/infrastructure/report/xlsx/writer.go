// Package xlsx writes the per-run outcome report as a spreadsheet.
package xlsx

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/pension-intake/internal/core/domain"
)

const (
	outcomeSheet = "Outcomes"
	totalsSheet  = "Totals"
)

var outcomeHeaders = []string{"File", "State", "Reason", "Artifact", "Quarantine Key", "Error"}

type Writer struct {
	path string
	now  func() time.Time
}

func New(path string) *Writer {
	return &Writer{path: path, now: time.Now}
}

func (w *Writer) WriteReport(ctx context.Context, summary domain.BatchSummary) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", outcomeSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for i, h := range outcomeHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(outcomeSheet, cell, h)
	}

	row := 2
	write := func(sheet string, col int, v any) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
	for _, item := range summary.Items {
		write(outcomeSheet, 1, item.File)
		write(outcomeSheet, 2, string(item.State))
		write(outcomeSheet, 3, string(item.Reason))
		write(outcomeSheet, 4, item.ArtifactName)
		write(outcomeSheet, 5, item.QuarantineKey)
		write(outcomeSheet, 6, item.Error)
		row++
	}
	for _, name := range summary.Skipped {
		write(outcomeSheet, 1, name)
		write(outcomeSheet, 2, "skipped")
		row++
	}
	_ = f.SetColWidth(outcomeSheet, "A", "A", 28)
	_ = f.SetColWidth(outcomeSheet, "D", "E", 44)
	_ = f.SetColWidth(outcomeSheet, "F", "F", 60)

	if _, err := f.NewSheet(totalsSheet); err != nil {
		return fmt.Errorf("create totals sheet: %w", err)
	}
	counts := summary.Counts()
	totals := [][2]any{
		{"Generated", w.now().UTC().Format(time.RFC3339)},
		{"Inputs", counts.Inputs},
		{"Persisted", counts.Persisted},
		{"Quarantined (invalid)", counts.QuarantinedInvalid},
		{"Quarantined (failed)", counts.QuarantinedFailed},
		{"Extraction failed", counts.ExtractFailed},
		{"Unfinished", counts.Unfinished},
		{"Skipped", len(summary.Skipped)},
	}
	for i, pair := range totals {
		row = i + 1
		write(totalsSheet, 1, pair[0])
		write(totalsSheet, 2, pair[1])
	}
	_ = f.SetColWidth(totalsSheet, "A", "A", 24)

	if err := os.MkdirAll(filepath.Dir(w.path), 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	if err := f.SaveAs(w.path); err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	return nil
}
