package discounts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound is returned when the requested table does not exist.
	ErrNotFound = errors.New("discount table not found")
	// ErrNicknameTaken indicates a unique-index violation on nickname.
	ErrNicknameTaken = errors.New("discount table nickname already exists")
	// ErrNoBaseTable indicates no fallback base table exists for cascade deletion.
	ErrNoBaseTable = errors.New("base discount table not found")
)

// UpdateFields carries a partial table update. Nil fields are left untouched.
type UpdateFields struct {
	Nickname *string
	Type     *string
	Ranges   []Range
}

// Empty reports whether the update carries no fields.
func (f UpdateFields) Empty() bool {
	return f.Nickname == nil && f.Type == nil && f.Ranges == nil
}

// DeleteResult describes the outcome of a cascade deletion.
type DeleteResult struct {
	DeletedTable       Table `json:"deletedTable"`
	ReassignedPartners int64 `json:"reassignedPartnerCount"`
	BaseTable          Table `json:"baseTable"`
}

// Store persists discount tables in PostgreSQL.
type Store struct {
	Pool *pgxpool.Pool
}

const tableColumns = `id, nickname, discount_type, ranges, created_at, updated_at`

// Insert persists a new table and returns it with generated fields populated.
func (s *Store) Insert(ctx context.Context, t Table) (Table, error) {
	rangesJSON, err := json.Marshal(t.Ranges)
	if err != nil {
		return Table{}, fmt.Errorf("encode ranges: %w", err)
	}
	row := s.Pool.QueryRow(ctx,
		`INSERT INTO discount_tables (nickname, discount_type, ranges)
		 VALUES ($1, $2, $3)
		 RETURNING `+tableColumns,
		strings.TrimSpace(t.Nickname), t.Type, rangesJSON)
	created, err := scanTable(row)
	if err != nil {
		if isUniqueViolation(err) {
			return Table{}, ErrNicknameTaken
		}
		return Table{}, err
	}
	return created, nil
}

// List returns all tables, optionally filtered by discount type.
func (s *Store) List(ctx context.Context, typeFilter string) ([]Table, error) {
	query := `SELECT ` + tableColumns + ` FROM discount_tables`
	args := []any{}
	if typeFilter != "" {
		query += ` WHERE discount_type = $1`
		args = append(args, typeFilter)
	}
	query += ` ORDER BY created_at`
	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tables := []Table{}
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

// GetByID loads a single table.
func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (Table, error) {
	row := s.Pool.QueryRow(ctx,
		`SELECT `+tableColumns+` FROM discount_tables WHERE id = $1`, pgUUID(id))
	t, err := scanTable(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Table{}, ErrNotFound
	}
	return t, err
}

// GetBase returns the oldest table carrying the base type.
func (s *Store) GetBase(ctx context.Context) (Table, error) {
	row := s.Pool.QueryRow(ctx,
		`SELECT `+tableColumns+` FROM discount_tables
		 WHERE discount_type = $1 ORDER BY created_at LIMIT 1`, TypeBase)
	t, err := scanTable(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Table{}, ErrNoBaseTable
	}
	return t, err
}

// Update applies a partial update and returns the resulting row.
func (s *Store) Update(ctx context.Context, id uuid.UUID, fields UpdateFields) (Table, error) {
	sets := []string{`updated_at = now()`}
	args := []any{pgUUID(id)}
	next := 2
	if fields.Nickname != nil {
		sets = append(sets, fmt.Sprintf("nickname = $%d", next))
		args = append(args, strings.TrimSpace(*fields.Nickname))
		next++
	}
	if fields.Type != nil {
		sets = append(sets, fmt.Sprintf("discount_type = $%d", next))
		args = append(args, *fields.Type)
		next++
	}
	if fields.Ranges != nil {
		rangesJSON, err := json.Marshal(fields.Ranges)
		if err != nil {
			return Table{}, fmt.Errorf("encode ranges: %w", err)
		}
		sets = append(sets, fmt.Sprintf("ranges = $%d", next))
		args = append(args, rangesJSON)
		next++
	}
	query := `UPDATE discount_tables SET ` + strings.Join(sets, ", ") +
		` WHERE id = $1 RETURNING ` + tableColumns
	t, err := scanTable(s.Pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return Table{}, ErrNotFound
	}
	if isUniqueViolation(err) {
		return Table{}, ErrNicknameTaken
	}
	return t, err
}

// DeleteWithCascade repoints every partner referencing the table to the base
// table and removes the table, all within one transaction. The table row is
// locked first so a concurrent partner creation referencing it cannot
// interleave between reassignment and deletion.
func (s *Store) DeleteWithCascade(ctx context.Context, id uuid.UUID) (DeleteResult, error) {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return DeleteResult{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	target, err := scanTable(tx.QueryRow(ctx,
		`SELECT `+tableColumns+` FROM discount_tables WHERE id = $1 FOR UPDATE`, pgUUID(id)))
	if errors.Is(err, pgx.ErrNoRows) {
		return DeleteResult{}, ErrNotFound
	}
	if err != nil {
		return DeleteResult{}, err
	}

	// The fallback must be a different row: reassigning partners to the table
	// being deleted would leave dangling references.
	base, err := scanTable(tx.QueryRow(ctx,
		`SELECT `+tableColumns+` FROM discount_tables
		 WHERE discount_type = $1 AND id <> $2
		 ORDER BY created_at LIMIT 1 FOR UPDATE`, TypeBase, pgUUID(id)))
	if errors.Is(err, pgx.ErrNoRows) {
		return DeleteResult{}, ErrNoBaseTable
	}
	if err != nil {
		return DeleteResult{}, err
	}

	tag, err := tx.Exec(ctx,
		`UPDATE partners
		 SET discounts_table_id = $1, discount_type = $2, updated_at = now()
		 WHERE discounts_table_id = $3`,
		pgUUID(base.ID), TypeBase, pgUUID(id))
	if err != nil {
		return DeleteResult{}, err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM discount_tables WHERE id = $1`, pgUUID(id)); err != nil {
		return DeleteResult{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return DeleteResult{}, err
	}
	return DeleteResult{
		DeletedTable:       target,
		ReassignedPartners: tag.RowsAffected(),
		BaseTable:          base,
	}, nil
}

func scanTable(row pgx.Row) (Table, error) {
	var (
		t          Table
		id         pgtype.UUID
		rangesJSON []byte
	)
	if err := row.Scan(&id, &t.Nickname, &t.Type, &rangesJSON, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return Table{}, err
	}
	t.ID = uuid.UUID(id.Bytes)
	if err := json.Unmarshal(rangesJSON, &t.Ranges); err != nil {
		return Table{}, fmt.Errorf("decode ranges: %w", err)
	}
	return t, nil
}

func pgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
