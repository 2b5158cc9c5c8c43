package partner

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when the requested partner does not exist.
	ErrNotFound = errors.New("partner not found")
	// ErrNameTaken indicates a unique-index violation on name.
	ErrNameTaken = errors.New("partner name already exists")
	// ErrTableNotFound indicates the referenced discount table does not exist.
	ErrTableNotFound = errors.New("discounts table not found")
)

// UpdateFields carries a partial partner update. Nil fields are left untouched.
type UpdateFields struct {
	Name             *string
	DailyPrice       *decimal.Decimal
	ClientsAmount    *int
	Type             *string
	DiscountsTableID *uuid.UUID
}

// Empty reports whether the update carries no fields.
func (f UpdateFields) Empty() bool {
	return f.Name == nil && f.DailyPrice == nil && f.ClientsAmount == nil &&
		f.Type == nil && f.DiscountsTableID == nil
}

// Store persists partners in PostgreSQL.
type Store struct {
	Pool *pgxpool.Pool
}

const partnerColumns = `id, name, daily_price::text, clients_amount, discount_type, discounts_table_id, created_at, updated_at`

// Create checks the referenced table, enforces name uniqueness, and inserts,
// all inside one transaction. The share lock on the table row blocks a
// concurrent cascade deletion from removing the table mid-flight.
func (s *Store) Create(ctx context.Context, p Partner) (Partner, error) {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Partner{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var one int
	err = tx.QueryRow(ctx,
		`SELECT 1 FROM discount_tables WHERE id = $1 FOR SHARE`,
		pgUUID(p.DiscountsTableID)).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return Partner{}, ErrTableNotFound
	}
	if err != nil {
		return Partner{}, err
	}

	row := tx.QueryRow(ctx,
		`INSERT INTO partners (name, daily_price, clients_amount, discount_type, discounts_table_id)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+partnerColumns,
		strings.TrimSpace(p.Name), p.DailyPrice.String(), p.ClientsAmount, p.Type, pgUUID(p.DiscountsTableID))
	created, err := scanPartner(row)
	if err != nil {
		return Partner{}, mapPgErr(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return Partner{}, err
	}
	return created, nil
}

// GetByID loads a single partner.
func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (Partner, error) {
	row := s.Pool.QueryRow(ctx,
		`SELECT `+partnerColumns+` FROM partners WHERE id = $1`, pgUUID(id))
	p, err := scanPartner(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Partner{}, ErrNotFound
	}
	return p, err
}

// List returns every partner ordered by creation time.
func (s *Store) List(ctx context.Context) ([]Partner, error) {
	rows, err := s.Pool.Query(ctx,
		`SELECT `+partnerColumns+` FROM partners ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	partners := []Partner{}
	for rows.Next() {
		p, err := scanPartner(rows)
		if err != nil {
			return nil, err
		}
		partners = append(partners, p)
	}
	return partners, rows.Err()
}

// Update applies a partial update and returns the resulting row.
func (s *Store) Update(ctx context.Context, id uuid.UUID, fields UpdateFields) (Partner, error) {
	sets := []string{`updated_at = now()`}
	args := []any{pgUUID(id)}
	next := 2
	addSet := func(column string, value any) {
		sets = append(sets, fmt.Sprintf("%s = $%d", column, next))
		args = append(args, value)
		next++
	}
	if fields.Name != nil {
		addSet("name", strings.TrimSpace(*fields.Name))
	}
	if fields.DailyPrice != nil {
		addSet("daily_price", fields.DailyPrice.String())
	}
	if fields.ClientsAmount != nil {
		addSet("clients_amount", *fields.ClientsAmount)
	}
	if fields.Type != nil {
		addSet("discount_type", *fields.Type)
	}
	if fields.DiscountsTableID != nil {
		addSet("discounts_table_id", pgUUID(*fields.DiscountsTableID))
	}
	query := `UPDATE partners SET ` + strings.Join(sets, ", ") +
		` WHERE id = $1 RETURNING ` + partnerColumns
	p, err := scanPartner(s.Pool.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return Partner{}, ErrNotFound
	}
	if err != nil {
		return Partner{}, mapPgErr(err)
	}
	return p, nil
}

// Delete removes a partner and returns the deleted row.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) (Partner, error) {
	row := s.Pool.QueryRow(ctx,
		`DELETE FROM partners WHERE id = $1 RETURNING `+partnerColumns, pgUUID(id))
	p, err := scanPartner(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Partner{}, ErrNotFound
	}
	return p, err
}

func scanPartner(row pgx.Row) (Partner, error) {
	var (
		p       Partner
		id      pgtype.UUID
		tableID pgtype.UUID
		price   string
	)
	if err := row.Scan(&id, &p.Name, &price, &p.ClientsAmount, &p.Type, &tableID, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return Partner{}, err
	}
	parsed, err := decimal.NewFromString(price)
	if err != nil {
		return Partner{}, fmt.Errorf("decode daily price: %w", err)
	}
	p.ID = uuid.UUID(id.Bytes)
	p.DiscountsTableID = uuid.UUID(tableID.Bytes)
	p.DailyPrice = parsed
	return p, nil
}

func pgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}

func mapPgErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return ErrNameTaken
		case "23503":
			return ErrTableNotFound
		}
	}
	return err
}
