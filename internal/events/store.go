package events

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore persists domain events in PostgreSQL.
type PGStore struct {
	Pool *pgxpool.Pool
}

// InsertEvent appends one event row and returns it.
func (s *PGStore) InsertEvent(ctx context.Context, topic string, aggregateID uuid.UUID, payload []byte) (Record, error) {
	row := s.Pool.QueryRow(ctx,
		`INSERT INTO domain_events (topic, aggregate_id, payload)
		 VALUES ($1, $2, $3)
		 RETURNING id, topic, aggregate_id, payload, created_at`,
		topic, pgtype.UUID{Bytes: aggregateID, Valid: true}, payload)

	var (
		record Record
		id     pgtype.UUID
		agg    pgtype.UUID
	)
	if err := row.Scan(&id, &record.Topic, &agg, &record.Payload, &record.CreatedAt); err != nil {
		return Record{}, err
	}
	record.ID = uuid.UUID(id.Bytes)
	record.AggregateID = uuid.UUID(agg.Bytes)
	return record, nil
}
