package library

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	jsoniter "github.com/json-iterator/go"
	_ "github.com/mattn/go-sqlite3"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Journal entry kinds.
const (
	KindBorrow = "borrow"
	KindLoan   = "loan"
	KindExtend = "extend"
	KindReturn = "return"
)

// Recorder receives one entry per successful mutation. The tables stay the
// source of truth; a recorder only keeps an audit trail.
type Recorder interface {
	Record(entry JournalEntry, detail any) error
}

// JournalEntry is one row of the circulation journal.
type JournalEntry struct {
	ID          string `db:"id"`
	Kind        string `db:"kind"`
	RecordedAt  string `db:"recorded_at"`
	MemberID    string `db:"member_id"`
	BookID      string `db:"book_id"`
	LoanID      string `db:"loan_id"`
	TableDigest string `db:"table_digest"`
	Detail      string `db:"detail"`
}

// Journal is an append-only SQLite audit trail of circulation events. The
// database file is created on the first Record, never on construction.
type Journal struct {
	path string
	db   *sqlx.DB
	now  func() time.Time
}

// NewJournal returns a journal backed by the SQLite file at path.
func NewJournal(path string) *Journal {
	return &Journal{path: path, now: time.Now}
}

// Close closes the database if it was ever opened.
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	err := j.db.Close()
	j.db = nil
	return err
}

func (j *Journal) open() error {
	if j.db != nil {
		return nil
	}
	if dir := filepath.Dir(j.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create journal dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000", j.path)
	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	if err := applyJournalMigrations(db); err != nil {
		db.Close()
		return err
	}
	j.db = db
	return nil
}

// ---------------------------------------------------------------------------
// Schema migration
// ---------------------------------------------------------------------------

const journalSchemaVersion = 1

func applyJournalMigrations(db *sqlx.DB) error {
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return fmt.Errorf("enable WAL: %w", err)
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT);`); err != nil {
		return err
	}

	var current int
	_ = db.QueryRow(`SELECT value FROM meta WHERE key='schema_version';`).Scan(&current)
	if current >= journalSchemaVersion {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS journal (
            seq INTEGER PRIMARY KEY AUTOINCREMENT,
            id TEXT NOT NULL UNIQUE,
            kind TEXT NOT NULL,
            recorded_at TEXT NOT NULL,
            member_id TEXT NOT NULL DEFAULT '',
            book_id TEXT NOT NULL DEFAULT '',
            loan_id TEXT NOT NULL DEFAULT '',
            table_digest TEXT NOT NULL DEFAULT '',
            detail TEXT NOT NULL DEFAULT '{}'
        );`,
		`CREATE INDEX IF NOT EXISTS idx_journal_member ON journal(member_id);`,
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}
	if _, err := tx.Exec(`INSERT INTO meta(key,value) VALUES('schema_version',?)
            ON CONFLICT(key) DO UPDATE SET value=excluded.value;`, journalSchemaVersion); err != nil {
		return fmt.Errorf("apply migration: %w", err)
	}

	return tx.Commit()
}

// ---------------------------------------------------------------------------
// Writes and reads
// ---------------------------------------------------------------------------

// Record stores entry with a fresh id and timestamp. detail is stored as JSON.
func (j *Journal) Record(entry JournalEntry, detail any) error {
	if err := j.open(); err != nil {
		return err
	}

	entry.ID = uuid.NewString()
	entry.RecordedAt = j.now().UTC().Format(time.RFC3339)
	entry.Detail = "{}"
	if detail != nil {
		payload, err := json.MarshalToString(detail)
		if err != nil {
			return fmt.Errorf("encode journal detail: %w", err)
		}
		entry.Detail = payload
	}

	_, err := j.db.NamedExec(`INSERT INTO journal(id,kind,recorded_at,member_id,book_id,loan_id,table_digest,detail)
        VALUES(:id,:kind,:recorded_at,:member_id,:book_id,:loan_id,:table_digest,:detail)`, entry)
	if err != nil {
		return fmt.Errorf("record %s: %w", entry.Kind, err)
	}
	slog.Debug("journal entry recorded", "kind", entry.Kind, "id", entry.ID, "loan", entry.LoanID)
	return nil
}

// Entries lists journal entries oldest first, restricted to memberID when it
// is not empty. A journal that was never written has no entries.
func (j *Journal) Entries(memberID string) ([]*JournalEntry, error) {
	if j.db == nil {
		if _, err := os.Stat(j.path); errors.Is(err, os.ErrNotExist) {
			return []*JournalEntry{}, nil
		}
	}
	if err := j.open(); err != nil {
		return nil, err
	}

	ds := goqu.Dialect("sqlite3").
		From("journal").
		Select("id", "kind", "recorded_at", "member_id", "book_id", "loan_id", "table_digest", "detail").
		Order(goqu.C("seq").Asc())
	if memberID != "" {
		ds = ds.Where(goqu.C("member_id").Eq(memberID))
	}
	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build journal query: %w", err)
	}

	entries := []*JournalEntry{}
	if err := j.db.Select(&entries, query, args...); err != nil {
		return nil, fmt.Errorf("query journal: %w", err)
	}
	return entries, nil
}
