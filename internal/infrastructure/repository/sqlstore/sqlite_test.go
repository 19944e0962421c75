package sqlstore

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/kirillkom/pension-intake/internal/core/domain"
)

func TestSQLiteRoundTrip(t *testing.T) {
	db, err := OpenDB(DriverSQLite, filepath.Join(t.TempDir(), "records.db"))
	if err != nil {
		t.Fatalf("OpenDB() error = %v", err)
	}
	defer db.Close()

	dialect, _ := DialectFor(DriverSQLite)
	store, err := NewRecordStore(db, dialect, "")
	if err != nil {
		t.Fatalf("NewRecordStore() error = %v", err)
	}
	ctx := context.Background()
	if err := store.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema() error = %v", err)
	}
	if err := store.EnsureSchema(ctx); err != nil {
		t.Fatalf("EnsureSchema() must be idempotent, got %v", err)
	}

	if err := store.Insert(ctx, []domain.CanonicalRecord{sampleRecord()}); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	var (
		pensionID, eircode, email, pdfName string
		city                               sql.NullString
	)
	err = db.QueryRowContext(ctx, `SELECT pensionID, eircode, emailId, pdfName, city FROM pensioner_records`).
		Scan(&pensionID, &eircode, &email, &pdfName, &city)
	if err != nil {
		t.Fatalf("select record: %v", err)
	}
	if pensionID != "12345" || eircode != "D02X285" || email != "mary@example.com" || pdfName != "AON_12345_x.pdf" {
		t.Fatalf("unexpected row %q %q %q %q", pensionID, eircode, email, pdfName)
	}
	if city.Valid {
		t.Fatalf("absent city must be stored as NULL, got %q", city.String)
	}
}
