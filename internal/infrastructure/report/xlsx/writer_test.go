package xlsx

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/pension-intake/internal/core/domain"
)

func TestWriteReportRowsAndTotals(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	w := New(path)
	w.now = func() time.Time { return time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC) }

	summary := domain.BatchSummary{
		Items: []domain.ItemOutcome{
			{File: "a.jpg", State: domain.StateDone, ArtifactName: "AON_1_x.pdf"},
			{File: "b.jpg", State: domain.StateQuarantined, Reason: domain.QuarantineInvalid, QuarantineKey: "b.jpg"},
		},
		Skipped: []string{"notes.txt"},
	}
	if err := w.WriteReport(context.Background(), summary); err != nil {
		t.Fatalf("WriteReport() error = %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open report: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(outcomeSheet)
	if err != nil {
		t.Fatalf("read rows: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected header plus 3 rows, got %v", rows)
	}
	if rows[1][0] != "a.jpg" || rows[1][1] != "done" || rows[1][3] != "AON_1_x.pdf" {
		t.Fatalf("unexpected first row %v", rows[1])
	}
	if rows[2][2] != "invalid" || rows[2][4] != "b.jpg" {
		t.Fatalf("unexpected second row %v", rows[2])
	}
	if rows[3][0] != "notes.txt" || rows[3][1] != "skipped" {
		t.Fatalf("unexpected skipped row %v", rows[3])
	}

	persisted, err := f.GetCellValue(totalsSheet, "B3")
	if err != nil {
		t.Fatalf("read totals: %v", err)
	}
	if persisted != "1" {
		t.Fatalf("expected 1 persisted, got %q", persisted)
	}
	generated, _ := f.GetCellValue(totalsSheet, "B1")
	if generated != "2024-05-06T07:08:09Z" {
		t.Fatalf("unexpected generated timestamp %q", generated)
	}
}
