package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"github.com/kirillkom/pension-intake/internal/core/domain"
	"github.com/kirillkom/pension-intake/internal/core/normalize"
)

const DefaultTable = "pensioner_records"

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

var recordColumns = []string{
	"pensionID", "fName", "lName", "pensionProvider", "companyName",
	"addr1", "addr2", "addr3", "city", "county", "eircode", "ppsn",
	"dob", "phone", "emailId", "pdfName", "uploadType", "uploadDate", "docType",
}

type RecordStore struct {
	db      *sql.DB
	dialect Dialect
	table   string
	insert  string
}

func NewRecordStore(db *sql.DB, dialect Dialect, table string) (*RecordStore, error) {
	if table == "" {
		table = DefaultTable
	}
	if !identifier.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	placeholders := make([]string, len(recordColumns))
	for i := range recordColumns {
		placeholders[i] = dialect.Placeholder(i + 1)
	}
	insert := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(recordColumns, ", "), strings.Join(placeholders, ", "))

	return &RecordStore{db: db, dialect: dialect, table: table, insert: insert}, nil
}

// EnsureSchema creates the records table when it is missing.
func (s *RecordStore) EnsureSchema(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if s.dialect.advisoryLock {
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2024061101)); err != nil {
			return fmt.Errorf("acquire schema lock: %w", err)
		}
	}

	query := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	pensionID VARCHAR(50),
	fName VARCHAR(100),
	lName VARCHAR(100),
	pensionProvider VARCHAR(50),
	companyName VARCHAR(50),
	addr1 VARCHAR(255),
	addr2 VARCHAR(255),
	addr3 VARCHAR(255),
	city VARCHAR(50),
	county VARCHAR(50),
	eircode VARCHAR(10),
	ppsn VARCHAR(20),
	dob DATE,
	phone VARCHAR(20),
	emailId VARCHAR(255),
	pdfName VARCHAR(255) NOT NULL,
	uploadType VARCHAR(10) NOT NULL,
	uploadDate %s NOT NULL,
	docType VARCHAR(50) NOT NULL
)`, s.table, s.dialect.timestampType)
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

// Insert writes records on one dedicated connection inside a single transaction.
// The connection goes back to the pool on every exit path.
func (s *RecordStore) Insert(ctx context.Context, records []domain.CanonicalRecord) error {
	if len(records) == 0 {
		return nil
	}

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, rec := range records {
		if _, err := tx.ExecContext(ctx, s.insert, recordArgs(rec)...); err != nil {
			return fmt.Errorf("insert record %s: %w", rec.ArchivalArtifactName, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert tx: %w", err)
	}
	return nil
}

func recordArgs(rec domain.CanonicalRecord) []any {
	return []any{
		rec.PensionID,
		rec.FirstName,
		rec.LastName,
		rec.PensionProvider,
		rec.CompanyName,
		rec.Addr1,
		rec.Addr2,
		rec.Addr3,
		rec.City,
		rec.County,
		normalize.Eircode(rec.Eircode),
		rec.PPSN,
		rec.DateOfBirth,
		rec.Phone,
		normalize.Email(rec.Email),
		rec.ArchivalArtifactName,
		rec.UploadType,
		rec.UploadTimestamp,
		rec.DocumentType,
	}
}
