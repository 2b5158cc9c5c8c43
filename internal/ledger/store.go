package ledger

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Store is the append-only ledger of calculation snapshots. No update or
// delete operation is exposed.
type Store struct {
	Pool *pgxpool.Pool
}

const logColumns = `id, partner_id, discount_table_id, daily_price_stamp::text,
	clients_amount_stamp, table_nickname_stamp, ranges_stamp, details,
	total_price::text, total_discount::text, total_after_discount::text, calculation_date`

// Append inserts one calculation log and returns it with generated fields.
func (s *Store) Append(ctx context.Context, log CalculationLog) (CalculationLog, error) {
	rangesJSON, err := json.Marshal(log.DiscountRangesStamp)
	if err != nil {
		return CalculationLog{}, fmt.Errorf("encode ranges stamp: %w", err)
	}
	detailsJSON, err := json.Marshal(log.Details)
	if err != nil {
		return CalculationLog{}, fmt.Errorf("encode details: %w", err)
	}
	row := s.Pool.QueryRow(ctx,
		`INSERT INTO calculation_logs
		 (partner_id, discount_table_id, daily_price_stamp, clients_amount_stamp,
		  table_nickname_stamp, ranges_stamp, details, total_price, total_discount, total_after_discount)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 RETURNING `+logColumns,
		pgUUID(log.PartnerID), pgUUID(log.DiscountTableID),
		log.PartnerDailyPriceStamp.String(), log.PartnerClientsAmountStamp,
		log.TableNicknameStamp, rangesJSON, detailsJSON,
		log.TotalPriceResult.String(), log.TotalDiscountResult.String(),
		log.TotalPriceAfterDiscountResult.String())
	return scanLog(row)
}

// ListByPartner returns the partner's computation history ordered by date.
func (s *Store) ListByPartner(ctx context.Context, partnerID uuid.UUID) ([]CalculationLog, error) {
	rows, err := s.Pool.Query(ctx,
		`SELECT `+logColumns+` FROM calculation_logs
		 WHERE partner_id = $1 ORDER BY calculation_date`, pgUUID(partnerID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := []CalculationLog{}
	for rows.Next() {
		log, err := scanLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}

func scanLog(row pgx.Row) (CalculationLog, error) {
	var (
		log                               CalculationLog
		id, partnerID, tableID            pgtype.UUID
		price, total, discount, afterDisc string
		rangesJSON, detailsJSON           []byte
	)
	err := row.Scan(&id, &partnerID, &tableID, &price, &log.PartnerClientsAmountStamp,
		&log.TableNicknameStamp, &rangesJSON, &detailsJSON,
		&total, &discount, &afterDisc, &log.CalculationDate)
	if err != nil {
		return CalculationLog{}, err
	}
	log.ID = uuid.UUID(id.Bytes)
	log.PartnerID = uuid.UUID(partnerID.Bytes)
	log.DiscountTableID = uuid.UUID(tableID.Bytes)
	if log.PartnerDailyPriceStamp, err = decimal.NewFromString(price); err != nil {
		return CalculationLog{}, fmt.Errorf("decode daily price stamp: %w", err)
	}
	if log.TotalPriceResult, err = decimal.NewFromString(total); err != nil {
		return CalculationLog{}, fmt.Errorf("decode total price: %w", err)
	}
	if log.TotalDiscountResult, err = decimal.NewFromString(discount); err != nil {
		return CalculationLog{}, fmt.Errorf("decode total discount: %w", err)
	}
	if log.TotalPriceAfterDiscountResult, err = decimal.NewFromString(afterDisc); err != nil {
		return CalculationLog{}, fmt.Errorf("decode total after discount: %w", err)
	}
	if err := json.Unmarshal(rangesJSON, &log.DiscountRangesStamp); err != nil {
		return CalculationLog{}, fmt.Errorf("decode ranges stamp: %w", err)
	}
	if err := json.Unmarshal(detailsJSON, &log.Details); err != nil {
		return CalculationLog{}, fmt.Errorf("decode details: %w", err)
	}
	return log, nil
}

func pgUUID(id uuid.UUID) pgtype.UUID {
	return pgtype.UUID{Bytes: id, Valid: true}
}
