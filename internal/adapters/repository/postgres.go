package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/okian/tutormatch/internal/domain/model"
	"github.com/okian/tutormatch/pkg/metrics"
)

const (
	defaultQueryTimeout = 3 * time.Second
	maxOpenConns        = 20
	maxIdleConns        = 5
	connMaxLifetime     = 5 * time.Minute

	// integrity_constraint_violation
	pqClassIntegrity = "23"
)

const schema = `
CREATE TABLE IF NOT EXISTS profiles (
	id             TEXT PRIMARY KEY,
	display_name   TEXT NOT NULL DEFAULT '',
	bio            TEXT NOT NULL DEFAULT '',
	experience     TEXT NOT NULL DEFAULT '',
	skills_offered TEXT[] NOT NULL DEFAULT '{}',
	skills_wanted  TEXT[] NOT NULL DEFAULT '{}',
	institution    TEXT NOT NULL DEFAULT '',
	department     TEXT NOT NULL DEFAULT '',
	city           TEXT NOT NULL DEFAULT '',
	profile_public BOOLEAN NOT NULL DEFAULT FALSE,
	is_banned      BOOLEAN NOT NULL DEFAULT FALSE,
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS match_suggestions (
	owner_id      TEXT NOT NULL,
	position      INTEGER NOT NULL,
	target_id     TEXT NOT NULL,
	score         DOUBLE PRECISION NOT NULL,
	common_topics TEXT[] NOT NULL DEFAULT '{}',
	computed_at   TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (owner_id, position)
);`

const profileColumns = `id, display_name, bio, experience, skills_offered, skills_wanted,
	institution, department, city, profile_public, is_banned, updated_at`

const (
	upsertProfileSQL = `INSERT INTO profiles (` + profileColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (id) DO UPDATE SET
	display_name = EXCLUDED.display_name,
	bio = EXCLUDED.bio,
	experience = EXCLUDED.experience,
	skills_offered = EXCLUDED.skills_offered,
	skills_wanted = EXCLUDED.skills_wanted,
	institution = EXCLUDED.institution,
	department = EXCLUDED.department,
	city = EXCLUDED.city,
	profile_public = EXCLUDED.profile_public,
	is_banned = EXCLUDED.is_banned,
	updated_at = EXCLUDED.updated_at`
	getProfileSQL = `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	poolSQL       = `SELECT ` + profileColumns + ` FROM profiles WHERE profile_public AND NOT is_banned AND id <> $1 ORDER BY id`
	countSQL      = `SELECT COUNT(*) FROM profiles`
	deleteSuggSQL = `DELETE FROM match_suggestions WHERE owner_id = $1`
	insertSuggSQL = `INSERT INTO match_suggestions (owner_id, position, target_id, score, common_topics, computed_at) VALUES ($1, $2, $3, $4, $5, $6)`
	listSuggSQL   = `SELECT target_id, score, common_topics, computed_at FROM match_suggestions WHERE owner_id = $1 ORDER BY position`
)

// PostgresStore persists profiles and suggestions in PostgreSQL.
type PostgresStore struct {
	db           *sql.DB
	queryTimeout time.Duration
}

// OpenPostgres opens a pooled connection to dsn and verifies it.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open postgres: %w", ErrUnavailable, err)
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping postgres: %w", ErrUnavailable, err)
	}
	return db, nil
}

// NewPostgresStore wraps an open database handle.
func NewPostgresStore(db *sql.DB, opts ...PostgresOption) *PostgresStore {
	s := &PostgresStore{db: db, queryTimeout: defaultQueryTimeout}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Migrate creates the tables if they do not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return classify("migrate", err)
	}
	return nil
}

// Close releases the underlying pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func (s *PostgresStore) Upsert(ctx context.Context, p model.Profile) error {
	defer observe("upsert", time.Now())
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	updated := p.UpdatedAt
	if updated.IsZero() {
		updated = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, upsertProfileSQL,
		p.ID, p.DisplayName, p.Bio, p.Experience,
		pq.Array(nonNil(p.SkillsOffered)), pq.Array(nonNil(p.SkillsWanted)),
		p.Institution, p.Department, p.City, p.Public, p.Banned, updated,
	)
	if err != nil {
		return classify("upsert profile", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (model.Profile, error) {
	defer observe("get", time.Now())
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	p, err := scanProfile(s.db.QueryRowContext(ctx, getProfileSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Profile{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return model.Profile{}, classify("get profile", err)
	}
	return p, nil
}

func (s *PostgresStore) DiscoverablePool(ctx context.Context, excludeID string) ([]model.Profile, error) {
	defer observe("pool", time.Now())
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, poolSQL, excludeID)
	if err != nil {
		return nil, classify("pool", err)
	}
	defer rows.Close()

	pool := []model.Profile{}
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, classify("scan pool", err)
		}
		pool = append(pool, p)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("pool rows", err)
	}
	return pool, nil
}

func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	var n int
	if err := s.db.QueryRowContext(ctx, countSQL).Scan(&n); err != nil {
		return 0, classify("count", err)
	}
	return n, nil
}

func (s *PostgresStore) Save(ctx context.Context, ownerID string, suggestions []model.MatchSuggestion) (err error) {
	defer observe("save", time.Now())
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return classify("begin", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, deleteSuggSQL, ownerID); err != nil {
		return classify("clear suggestions", err)
	}
	for i, sg := range suggestions {
		if _, err = tx.ExecContext(ctx, insertSuggSQL,
			ownerID, i, sg.TargetID, sg.Score, pq.Array(nonNil(sg.CommonTopics)), sg.ComputedAt,
		); err != nil {
			return classify("insert suggestion", err)
		}
	}
	if err = tx.Commit(); err != nil {
		return classify("commit", err)
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context, ownerID string) ([]model.MatchSuggestion, error) {
	defer observe("list", time.Now())
	ctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, listSuggSQL, ownerID)
	if err != nil {
		return nil, classify("list suggestions", err)
	}
	defer rows.Close()

	out := []model.MatchSuggestion{}
	for rows.Next() {
		var sg model.MatchSuggestion
		var topics pq.StringArray
		if err := rows.Scan(&sg.TargetID, &sg.Score, &topics, &sg.ComputedAt); err != nil {
			return nil, classify("scan suggestion", err)
		}
		sg.CommonTopics = nonNil(topics)
		out = append(out, sg)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("suggestion rows", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(r rowScanner) (model.Profile, error) {
	var p model.Profile
	var offered, wanted pq.StringArray
	err := r.Scan(
		&p.ID, &p.DisplayName, &p.Bio, &p.Experience, &offered, &wanted,
		&p.Institution, &p.Department, &p.City, &p.Public, &p.Banned, &p.UpdatedAt,
	)
	if err != nil {
		return model.Profile{}, err
	}
	p.SkillsOffered = nonNil(offered)
	p.SkillsWanted = nonNil(wanted)
	return p, nil
}

// classify maps driver errors onto the package's sentinel kinds. Constraint
// violations are the caller's fault; everything else means the backend could
// not serve the request.
func classify(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Class() == pqClassIntegrity {
		return fmt.Errorf("%w: %s: %s", ErrInvalidProfile, op, pqErr.Message)
	}
	return fmt.Errorf("%w: %s: %w", ErrUnavailable, op, err)
}

func observe(op string, start time.Time) {
	metrics.RecordStoreLatency(op, float64(time.Since(start).Microseconds())/1000)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
