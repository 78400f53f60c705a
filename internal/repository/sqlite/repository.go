package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/mamadbah2/steelrolls/internal/domain/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS rolls (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	length REAL NOT NULL,
	weight REAL NOT NULL,
	added_at INTEGER NOT NULL,
	deleted_at INTEGER
);
CREATE INDEX IF NOT EXISTS idx_rolls_added_at ON rolls(added_at);
CREATE INDEX IF NOT EXISTS idx_rolls_deleted_at ON rolls(deleted_at);
`

const selectColumns = `SELECT id, length, weight, added_at, deleted_at FROM rolls`

// RollRepository stores rolls in SQLite. Timestamps are kept as UTC unix
// nanoseconds so range predicates compare numerically.
type RollRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewRollRepository opens (or creates) the database at dbPath.
func NewRollRepository(dbPath string, logger *zap.Logger) (*RollRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a single connection keeps ":memory:" databases shared and serialises writers
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	logger.Info("sqlite repository ready", zap.String("path", dbPath))
	return &RollRepository{db: db, logger: logger}, nil
}

// Add inserts a roll and returns it with the generated id.
func (r *RollRepository) Add(ctx context.Context, roll models.Roll) (models.Roll, error) {
	query := `INSERT INTO rolls (length, weight, added_at, deleted_at) VALUES (?, ?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query, roll.Length, roll.Weight, toNanos(roll.AddedDate), deletedColumn(roll))
	if err != nil {
		return models.Roll{}, fmt.Errorf("failed to insert roll: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return models.Roll{}, fmt.Errorf("failed to get insert id: %w", err)
	}

	roll.ID = id
	return roll, nil
}

// GetByID retrieves a roll by id.
func (r *RollRepository) GetByID(ctx context.Context, id int64) (models.Roll, error) {
	row := r.db.QueryRowContext(ctx, selectColumns+` WHERE id = ?`, id)

	roll, err := scanRoll(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Roll{}, fmt.Errorf("%w: id %d", models.ErrRollNotFound, id)
	}
	if err != nil {
		return models.Roll{}, fmt.Errorf("failed to query roll: %w", err)
	}
	return roll, nil
}

// Update writes every mutable column of an existing roll.
func (r *RollRepository) Update(ctx context.Context, roll models.Roll) (models.Roll, error) {
	query := `UPDATE rolls SET length = ?, weight = ?, added_at = ?, deleted_at = ? WHERE id = ?`

	result, err := r.db.ExecContext(ctx, query, roll.Length, roll.Weight, toNanos(roll.AddedDate), deletedColumn(roll), roll.ID)
	if err != nil {
		return models.Roll{}, fmt.Errorf("failed to update roll: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return models.Roll{}, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return models.Roll{}, fmt.Errorf("%w: id %d", models.ErrRollNotFound, roll.ID)
	}
	return roll, nil
}

// GetAll runs the filter as a WHERE clause, ordered by id.
func (r *RollRepository) GetAll(ctx context.Context, f *models.RollFilter) ([]models.Roll, error) {
	where, args := buildWhere(f)
	query := selectColumns + where + ` ORDER BY id ASC`

	r.logger.Debug("listing rolls", zap.String("where", where), zap.Int("args", len(args)))
	return r.query(ctx, query, args...)
}

// Snapshot returns every roll, ordered by id.
func (r *RollRepository) Snapshot(ctx context.Context) ([]models.Roll, error) {
	return r.query(ctx, selectColumns+` ORDER BY id ASC`)
}

// Close closes the database connection.
func (r *RollRepository) Close(ctx context.Context) error {
	return r.db.Close()
}

func (r *RollRepository) query(ctx context.Context, query string, args ...any) ([]models.Roll, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rolls: %w", err)
	}
	defer rows.Close()

	rolls := make([]models.Roll, 0)
	for rows.Next() {
		roll, err := scanRoll(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan roll: %w", err)
		}
		rolls = append(rolls, roll)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rolls: %w", err)
	}
	return rolls, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRoll(s scanner) (models.Roll, error) {
	var (
		roll      models.Roll
		addedAt   int64
		deletedAt sql.NullInt64
	)
	if err := s.Scan(&roll.ID, &roll.Length, &roll.Weight, &addedAt, &deletedAt); err != nil {
		return models.Roll{}, err
	}

	roll.AddedDate = fromNanos(addedAt)
	roll.State = models.Active()
	if deletedAt.Valid {
		roll.State = models.DeletedAt(fromNanos(deletedAt.Int64))
	}
	return roll, nil
}

// buildWhere translates each present constraint into a SQL predicate. NULL
// deleted_at never satisfies a comparison, so deleted-date bounds only match
// deleted rolls.
func buildWhere(f *models.RollFilter) (string, []any) {
	if f.IsEmpty() {
		return "", nil
	}

	var (
		clauses []string
		args    []any
	)
	add := func(c []string, a []any) {
		clauses = append(clauses, c...)
		args = append(args, a...)
	}

	add(rangeClauses("id", f.IDRange, func(v int64) any { return v }))
	add(rangeClauses("length", f.LengthRange, func(v float64) any { return v }))
	add(rangeClauses("weight", f.WeightRange, func(v float64) any { return v }))
	add(rangeClauses("added_at", f.AddedDateRange, func(v time.Time) any { return boundNanos(v) }))
	add(rangeClauses("deleted_at", f.DeletedDateRange, func(v time.Time) any { return boundNanos(v) }))

	if f.IsDeleted != nil {
		if *f.IsDeleted {
			clauses = append(clauses, "deleted_at IS NOT NULL")
		} else {
			clauses = append(clauses, "deleted_at IS NULL")
		}
	}

	return " WHERE " + strings.Join(clauses, " AND "), args
}

func rangeClauses[T any](column string, rng models.RangeFilter[T], bind func(T) any) ([]string, []any) {
	var (
		clauses []string
		args    []any
	)
	if from, ok := rng.From.Value(); ok {
		clauses = append(clauses, column+" >= ?")
		args = append(args, bind(from))
	}
	if to, ok := rng.To.Value(); ok {
		clauses = append(clauses, column+" <= ?")
		args = append(args, bind(to))
	}
	return clauses, args
}

func deletedColumn(roll models.Roll) any {
	if at, ok := roll.DeletedDate(); ok {
		return toNanos(at)
	}
	return nil
}

func toNanos(t time.Time) int64 { return t.UTC().UnixNano() }

var (
	minNanoTime = time.Unix(0, math.MinInt64).UTC()
	maxNanoTime = time.Unix(0, math.MaxInt64).UTC()
)

// boundNanos clamps a filter bound to the int64 nanosecond range. Stored
// timestamps always fit, so a clamped bound still matches everything or
// nothing.
func boundNanos(t time.Time) int64 {
	switch {
	case t.Before(minNanoTime):
		return math.MinInt64
	case t.After(maxNanoTime):
		return math.MaxInt64
	}
	return toNanos(t)
}

func fromNanos(n int64) time.Time { return time.Unix(0, n).UTC() }
