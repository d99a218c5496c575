package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// Postgres stores one entity kind in its own table. Entity fields live in a
// jsonb column; record metadata has dedicated columns and wins on read.
type Postgres[T any, P entity[T]] struct {
	pool  *pgxpool.Pool
	kind  string
	table string
	now   func() time.Time
}

// NewPostgres creates a PostgreSQL store for kind. Call EnsureTable before use.
func NewPostgres[T any, P entity[T]](pool *pgxpool.Pool, kind string, opts ...Option) *Postgres[T, P] {
	o := buildOptions(opts)
	return &Postgres[T, P]{
		pool:  pool,
		kind:  kind,
		table: TableName(kind),
		now:   o.now,
	}
}

// TableName returns the quoted table identifier for kind.
func TableName(kind string) string {
	return pq.QuoteIdentifier("balcao_" + kind)
}

// EnsureTable creates the kind's table and index if missing.
func (s *Postgres[T, P]) EnsureTable(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			seq        BIGSERIAL,
			id         TEXT PRIMARY KEY,
			created_by TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			data       JSONB NOT NULL
		)
	`, s.table)
	if _, err := s.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to create %s table: %w", s.kind, err)
	}

	index := fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s ON %s (seq)`,
		pq.QuoteIdentifier("balcao_"+s.kind+"_seq_idx"), s.table)
	if _, err := s.pool.Exec(ctx, index); err != nil {
		return fmt.Errorf("failed to create %s index: %w", s.kind, err)
	}
	return nil
}

// List implements Store.
func (s *Postgres[T, P]) List(ctx context.Context) ([]T, error) {
	query := fmt.Sprintf(`
		SELECT id, created_by, created_at, updated_at, data
		FROM %s
		ORDER BY seq
	`, s.table)

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.kind, err)
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		rec, err := s.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", s.kind, err)
	}
	return out, nil
}

// Get implements Store.
func (s *Postgres[T, P]) Get(ctx context.Context, id string) (T, error) {
	query := fmt.Sprintf(`
		SELECT id, created_by, created_at, updated_at, data
		FROM %s
		WHERE id = $1
	`, s.table)

	rec, err := s.scan(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		var zero T
		if errors.Is(err, pgx.ErrNoRows) {
			return zero, notFound(s.kind, id)
		}
		return zero, err
	}
	return rec, nil
}

// Add implements Store.
func (s *Postgres[T, P]) Add(ctx context.Context, createdBy string, fields T) (T, error) {
	var zero T

	now := s.now().UTC().Truncate(time.Microsecond)
	id, err := newID(now)
	if err != nil {
		return zero, err
	}

	rec := fields
	meta := P(&rec).Meta()
	meta.ID = id
	meta.CreatedBy = createdBy
	meta.CreatedAt = now
	meta.UpdatedAt = now

	data, err := json.Marshal(rec)
	if err != nil {
		return zero, fmt.Errorf("failed to encode %s: %w", s.kind, err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, created_by, created_at, updated_at, data)
		VALUES ($1, $2, $3, $4, $5)
	`, s.table)

	if _, err := s.pool.Exec(ctx, query, id, createdBy, now, now, data); err != nil {
		if isUniqueViolation(err) {
			return zero, fmt.Errorf("%w: %s %q", ErrDuplicateID, s.kind, id)
		}
		return zero, fmt.Errorf("failed to add %s: %w", s.kind, err)
	}
	return rec, nil
}

// Update implements Store.
func (s *Postgres[T, P]) Update(ctx context.Context, fields T) (T, error) {
	var zero T

	rec := fields
	meta := P(&rec).Meta()
	meta.UpdatedAt = s.now().UTC().Truncate(time.Microsecond)

	data, err := json.Marshal(rec)
	if err != nil {
		return zero, fmt.Errorf("failed to encode %s: %w", s.kind, err)
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET data = $2, updated_at = $3
		WHERE id = $1
		RETURNING created_by, created_at
	`, s.table)

	err = s.pool.QueryRow(ctx, query, meta.ID, data, meta.UpdatedAt).Scan(&meta.CreatedBy, &meta.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return zero, notFound(s.kind, meta.ID)
		}
		return zero, fmt.Errorf("failed to update %s: %w", s.kind, err)
	}
	meta.CreatedAt = meta.CreatedAt.UTC()
	return rec, nil
}

// Remove implements Store.
func (s *Postgres[T, P]) Remove(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, s.table)

	result, err := s.pool.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to remove %s: %w", s.kind, err)
	}
	if result.RowsAffected() == 0 {
		return notFound(s.kind, id)
	}
	return nil
}

func (s *Postgres[T, P]) scan(row pgx.Row) (T, error) {
	var (
		rec       T
		id        string
		createdBy string
		createdAt time.Time
		updatedAt time.Time
		data      []byte
	)

	if err := row.Scan(&id, &createdBy, &createdAt, &updatedAt, &data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return rec, err
		}
		return rec, fmt.Errorf("failed to scan %s: %w", s.kind, err)
	}
	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, fmt.Errorf("failed to decode %s %q: %w", s.kind, id, err)
	}

	meta := P(&rec).Meta()
	meta.ID = id
	meta.CreatedBy = createdBy
	meta.CreatedAt = createdAt.UTC()
	meta.UpdatedAt = updatedAt.UTC()
	return rec, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
