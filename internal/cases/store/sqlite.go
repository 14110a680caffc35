package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"casetriage/internal/cases/models"
	"casetriage/pkg/platform/clock"
	"casetriage/pkg/platform/sentinel"
	normalize "casetriage/pkg/platform/strings"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS cases (
  id                  TEXT PRIMARY KEY,
  reported_at         TEXT NOT NULL,
  subject_name        TEXT NOT NULL DEFAULT '',
  subject_age         INTEGER CHECK (subject_age >= 0),
  last_known_location TEXT NOT NULL DEFAULT '',
  status              TEXT NOT NULL,
  jurisdiction        TEXT NOT NULL DEFAULT '',
  jurisdiction_key    TEXT NOT NULL DEFAULT '',
  updated_at          TEXT NOT NULL,
  version             INTEGER NOT NULL DEFAULT 1
);
CREATE INDEX IF NOT EXISTS idx_cases_jurisdiction_key ON cases(jurisdiction_key);
CREATE TABLE IF NOT EXISTS case_status_history (
  id          INTEGER PRIMARY KEY AUTOINCREMENT,
  case_id     TEXT NOT NULL REFERENCES cases(id),
  from_status TEXT NOT NULL,
  to_status   TEXT NOT NULL,
  changed_at  TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS viewers (
  id           TEXT PRIMARY KEY,
  jurisdiction TEXT NOT NULL DEFAULT ''
);
`

// SQLiteStore persists cases in a local SQLite file. It backs the operator
// CLI when no server-side database is configured.
type SQLiteStore struct {
	db     *sql.DB
	clock  clock.Clock
	logger *slog.Logger
}

// errMalformedRow marks a row whose stored values cannot be decoded.
var errMalformedRow = errors.New("malformed case row")

// OpenSQLite opens (creating if needed) the database at path and applies the
// schema. Use ":memory:" for a throwaway database.
func OpenSQLite(path string, opts ...Option) (*SQLiteStore, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_txlock=immediate", path)
	if path == ":memory:" {
		dsn = "file::memory:?_txlock=immediate"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one writer; also keeps a :memory: database on a single connection
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply sqlite schema: %w", err)
	}
	o := buildOptions(opts)
	return &SQLiteStore{db: db, clock: o.clock, logger: o.logger}, nil
}

// Create inserts a new case. A duplicate id is sentinel.ErrConflict.
func (s *SQLiteStore) Create(ctx context.Context, c *models.Case) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO cases(`+caseColumns+`, jurisdiction_key) VALUES(?,?,?,?,?,?,?,?,?,?)`,
		string(c.ID), formatTime(c.ReportedAt), c.SubjectName, nullableAge(c.SubjectAge),
		c.LastKnownLocation, string(c.Status), c.Jurisdiction, formatTime(c.UpdatedAt), c.Version,
		normalize.NormalizeLabel(c.Jurisdiction),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert case: %w", err)
	}
	return nil
}

// FindByID returns the case or sentinel.ErrNotFound.
func (s *SQLiteStore) FindByID(ctx context.Context, id models.CaseID) (*models.Case, error) {
	c, err := scanSQLiteCase(s.db.QueryRowContext(ctx, `SELECT `+caseColumns+` FROM cases WHERE id = ?`, string(id)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find case: %w", err)
	}
	return c, nil
}

// FetchByScope returns the cases in label, ordered by id.
func (s *SQLiteStore) FetchByScope(ctx context.Context, label string) ([]models.Case, error) {
	return s.query(ctx, `SELECT `+caseColumns+` FROM cases WHERE jurisdiction_key = ? ORDER BY id`,
		normalize.NormalizeLabel(label))
}

// FetchAll returns every case, ordered by id.
func (s *SQLiteStore) FetchAll(ctx context.Context) ([]models.Case, error) {
	return s.query(ctx, `SELECT `+caseColumns+` FROM cases ORDER BY id`)
}

func (s *SQLiteStore) query(ctx context.Context, query string, args ...any) ([]models.Case, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query cases: %w", err)
	}
	defer rows.Close()

	out := []models.Case{}
	for rows.Next() {
		c, err := scanSQLiteCase(rows)
		if errors.Is(err, errMalformedRow) {
			s.logger.WarnContext(ctx, "skipping unreadable case row", "error", err)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("scan case: %w", err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cases: %w", err)
	}
	return out, nil
}

// UpdateStatus runs check and the write inside one immediate transaction, so
// the write lock is held from the read onwards.
func (s *SQLiteStore) UpdateStatus(ctx context.Context, id models.CaseID, check func(*models.Case) error, target models.Status) (*models.Case, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin status update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	c, err := scanSQLiteCase(tx.QueryRowContext(ctx, `SELECT `+caseColumns+` FROM cases WHERE id = ?`, string(id)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load case: %w", err)
	}
	if check != nil {
		if err := check(c.Clone()); err != nil {
			return nil, err
		}
	}

	from := c.Status
	c.ApplyStatus(target, s.clock.Now())
	if _, err := tx.ExecContext(ctx, `UPDATE cases SET status = ?, updated_at = ?, version = ? WHERE id = ?`,
		string(c.Status), formatTime(c.UpdatedAt), c.Version, string(c.ID)); err != nil {
		return nil, fmt.Errorf("update case status: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO case_status_history(case_id, from_status, to_status, changed_at) VALUES(?,?,?,?)`,
		string(c.ID), string(from), string(c.Status), formatTime(c.UpdatedAt)); err != nil {
		return nil, fmt.Errorf("record status history: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit status update: %w", err)
	}
	return c, nil
}

// SaveViewer upserts a viewer profile.
func (s *SQLiteStore) SaveViewer(ctx context.Context, v models.Viewer) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO viewers(id, jurisdiction) VALUES(?, ?) ON CONFLICT(id) DO UPDATE SET jurisdiction = excluded.jurisdiction`,
		v.ID, v.Jurisdiction)
	if err != nil {
		return fmt.Errorf("save viewer: %w", err)
	}
	return nil
}

// FindViewer returns the viewer or sentinel.ErrNotFound.
func (s *SQLiteStore) FindViewer(ctx context.Context, viewerID string) (*models.Viewer, error) {
	v := &models.Viewer{}
	err := s.db.QueryRowContext(ctx, `SELECT id, jurisdiction FROM viewers WHERE id = ?`, viewerID).
		Scan(&v.ID, &v.Jurisdiction)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find viewer: %w", err)
	}
	return v, nil
}

// StatusHistory returns the recorded transitions of a case, oldest first.
func (s *SQLiteStore) StatusHistory(ctx context.Context, id models.CaseID) ([]models.StatusChange, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT from_status, to_status, changed_at FROM case_status_history WHERE case_id = ? ORDER BY id`, string(id))
	if err != nil {
		return nil, fmt.Errorf("query status history: %w", err)
	}
	defer rows.Close()

	var out []models.StatusChange
	for rows.Next() {
		var from, to, at string
		if err := rows.Scan(&from, &to, &at); err != nil {
			return nil, fmt.Errorf("scan status history: %w", err)
		}
		changedAt, err := parseTime(at)
		if err != nil {
			return nil, err
		}
		out = append(out, models.StatusChange{CaseID: id, From: models.Status(from), To: models.Status(to), ChangedAt: changedAt})
	}
	return out, rows.Err()
}

// Ping checks the database file is still reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func scanSQLiteCase(row rowScanner) (*models.Case, error) {
	var (
		c                     models.Case
		id, status            string
		reportedAt, updatedAt string
		age                   sql.NullInt64
	)
	if err := row.Scan(&id, &reportedAt, &c.SubjectName, &age, &c.LastKnownLocation,
		&status, &c.Jurisdiction, &updatedAt, &c.Version); err != nil {
		return nil, err
	}
	var err error
	if c.ReportedAt, err = parseTime(reportedAt); err != nil {
		return nil, fmt.Errorf("case %s reported_at: %w: %w", id, errMalformedRow, err)
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("case %s updated_at: %w: %w", id, errMalformedRow, err)
	}
	c.ID = models.CaseID(id)
	c.Status = models.Status(status)
	if age.Valid {
		c.SubjectAge = models.Age(int(age.Int64))
	}
	return &c, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// parseTime accepts RFC3339 and the CURRENT_TIMESTAMP layout, for rows
// written by hand.
func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02 15:04:05", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}
