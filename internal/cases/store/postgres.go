package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"casetriage/internal/cases/models"
	"casetriage/pkg/platform/clock"
	"casetriage/pkg/platform/sentinel"
	normalize "casetriage/pkg/platform/strings"
	txcontext "casetriage/pkg/platform/tx"
)

// PostgresSchema creates the case tables. jurisdiction_key holds the
// normalised label so scope lookups hit an index.
const PostgresSchema = `
CREATE TABLE IF NOT EXISTS cases (
	id                  TEXT PRIMARY KEY,
	reported_at         TIMESTAMPTZ NOT NULL,
	subject_name        TEXT NOT NULL DEFAULT '',
	subject_age         INTEGER CHECK (subject_age >= 0),
	last_known_location TEXT NOT NULL DEFAULT '',
	status              TEXT NOT NULL,
	jurisdiction        TEXT NOT NULL DEFAULT '',
	jurisdiction_key    TEXT NOT NULL DEFAULT '',
	updated_at          TIMESTAMPTZ NOT NULL,
	version             BIGINT NOT NULL DEFAULT 1
);
CREATE INDEX IF NOT EXISTS idx_cases_jurisdiction_key ON cases (jurisdiction_key);

CREATE TABLE IF NOT EXISTS case_status_history (
	id          BIGSERIAL PRIMARY KEY,
	case_id     TEXT NOT NULL REFERENCES cases (id),
	from_status TEXT NOT NULL,
	to_status   TEXT NOT NULL,
	changed_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_case_status_history_case ON case_status_history (case_id, changed_at);

CREATE TABLE IF NOT EXISTS viewers (
	id           TEXT PRIMARY KEY,
	jurisdiction TEXT NOT NULL DEFAULT ''
);
`

const caseColumns = `id, reported_at, subject_name, subject_age, last_known_location, status, jurisdiction, updated_at, version`

// dbtx is the subset of *sql.DB and *sql.Tx the stores use.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// PostgresStore persists cases in PostgreSQL.
type PostgresStore struct {
	db    *sql.DB
	clock clock.Clock
}

// NewPostgres builds a store over an open database handle.
func NewPostgres(db *sql.DB, opts ...Option) *PostgresStore {
	o := buildOptions(opts)
	return &PostgresStore{db: db, clock: o.clock}
}

// EnsureSchema creates the tables when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, PostgresSchema); err != nil {
		return fmt.Errorf("ensure case schema: %w", err)
	}
	return nil
}

// BeginTx starts a transaction callers can place in the context with
// tx.WithTx; the store then joins it instead of opening its own.
func (s *PostgresStore) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return s.db.BeginTx(ctx, nil)
}

func (s *PostgresStore) conn(ctx context.Context) dbtx {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

// Create inserts a new case. A duplicate id is sentinel.ErrConflict.
func (s *PostgresStore) Create(ctx context.Context, c *models.Case) error {
	query := `
		INSERT INTO cases (` + caseColumns + `, jurisdiction_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.conn(ctx).ExecContext(ctx, query,
		string(c.ID), c.ReportedAt, c.SubjectName, nullableAge(c.SubjectAge),
		c.LastKnownLocation, string(c.Status), c.Jurisdiction, c.UpdatedAt, c.Version,
		normalize.NormalizeLabel(c.Jurisdiction),
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert case: %w", err)
	}
	return nil
}

// FindByID returns the case or sentinel.ErrNotFound.
func (s *PostgresStore) FindByID(ctx context.Context, id models.CaseID) (*models.Case, error) {
	row := s.conn(ctx).QueryRowContext(ctx, `SELECT `+caseColumns+` FROM cases WHERE id = $1`, string(id))
	c, err := scanCase(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find case: %w", err)
	}
	return c, nil
}

// FetchByScope returns the cases in label, ordered by id.
func (s *PostgresStore) FetchByScope(ctx context.Context, label string) ([]models.Case, error) {
	return s.query(ctx, `SELECT `+caseColumns+` FROM cases WHERE jurisdiction_key = $1 ORDER BY id`,
		normalize.NormalizeLabel(label))
}

// FetchAll returns every case, ordered by id.
func (s *PostgresStore) FetchAll(ctx context.Context) ([]models.Case, error) {
	return s.query(ctx, `SELECT `+caseColumns+` FROM cases ORDER BY id`)
}

func (s *PostgresStore) query(ctx context.Context, query string, args ...any) ([]models.Case, error) {
	rows, err := s.conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query cases: %w", err)
	}
	defer rows.Close()
	return collectCases(rows)
}

// UpdateStatus locks the row with SELECT ... FOR UPDATE, runs check and
// writes target together with a history row. When the context carries a
// transaction the update joins it and the caller commits.
func (s *PostgresStore) UpdateStatus(ctx context.Context, id models.CaseID, check func(*models.Case) error, target models.Status) (*models.Case, error) {
	var updated *models.Case
	err := txcontext.Run(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		c, err := s.updateStatus(ctx, tx, id, check, target)
		updated = c
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *PostgresStore) updateStatus(ctx context.Context, tx *sql.Tx, id models.CaseID, check func(*models.Case) error, target models.Status) (*models.Case, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+caseColumns+` FROM cases WHERE id = $1 FOR UPDATE`, string(id))
	c, err := scanCase(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("lock case: %w", err)
	}
	if check != nil {
		if err := check(c.Clone()); err != nil {
			return nil, err
		}
	}

	from := c.Status
	c.ApplyStatus(target, s.clock.Now())
	if _, err := tx.ExecContext(ctx,
		`UPDATE cases SET status = $2, updated_at = $3, version = $4 WHERE id = $1`,
		string(c.ID), string(c.Status), c.UpdatedAt, c.Version,
	); err != nil {
		return nil, fmt.Errorf("update case status: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO case_status_history (case_id, from_status, to_status, changed_at) VALUES ($1, $2, $3, $4)`,
		string(c.ID), string(from), string(c.Status), c.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("record status history: %w", err)
	}
	return c, nil
}

// SaveViewer upserts a viewer profile.
func (s *PostgresStore) SaveViewer(ctx context.Context, v models.Viewer) error {
	_, err := s.conn(ctx).ExecContext(ctx, `
		INSERT INTO viewers (id, jurisdiction) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET jurisdiction = EXCLUDED.jurisdiction
	`, v.ID, v.Jurisdiction)
	if err != nil {
		return fmt.Errorf("save viewer: %w", err)
	}
	return nil
}

// FindViewer returns the viewer or sentinel.ErrNotFound.
func (s *PostgresStore) FindViewer(ctx context.Context, viewerID string) (*models.Viewer, error) {
	v := &models.Viewer{}
	err := s.conn(ctx).QueryRowContext(ctx, `SELECT id, jurisdiction FROM viewers WHERE id = $1`, viewerID).
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
func (s *PostgresStore) StatusHistory(ctx context.Context, id models.CaseID) ([]models.StatusChange, error) {
	rows, err := s.conn(ctx).QueryContext(ctx,
		`SELECT from_status, to_status, changed_at FROM case_status_history WHERE case_id = $1 ORDER BY id`, string(id))
	if err != nil {
		return nil, fmt.Errorf("query status history: %w", err)
	}
	defer rows.Close()

	var out []models.StatusChange
	for rows.Next() {
		var from, to string
		change := models.StatusChange{CaseID: id}
		if err := rows.Scan(&from, &to, &change.ChangedAt); err != nil {
			return nil, fmt.Errorf("scan status history: %w", err)
		}
		change.From = models.Status(from)
		change.To = models.Status(to)
		change.ChangedAt = change.ChangedAt.UTC()
		out = append(out, change)
	}
	return out, rows.Err()
}

// Close closes the database handle.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCase(row rowScanner) (*models.Case, error) {
	var (
		c      models.Case
		id     string
		status string
		age    sql.NullInt64
	)
	if err := row.Scan(&id, &c.ReportedAt, &c.SubjectName, &age, &c.LastKnownLocation,
		&status, &c.Jurisdiction, &c.UpdatedAt, &c.Version); err != nil {
		return nil, err
	}
	c.ID = models.CaseID(id)
	c.Status = models.Status(status)
	if age.Valid {
		c.SubjectAge = models.Age(int(age.Int64))
	}
	c.ReportedAt = c.ReportedAt.UTC()
	c.UpdatedAt = c.UpdatedAt.UTC()
	return &c, nil
}

func collectCases(rows *sql.Rows) ([]models.Case, error) {
	out := []models.Case{}
	for rows.Next() {
		c, err := scanCase(rows)
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

func nullableAge(age *int) sql.NullInt64 {
	if age == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*age), Valid: true}
}
