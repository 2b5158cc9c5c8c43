package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Record is a persisted domain event.
type Record struct {
	ID          uuid.UUID       `json:"id"`
	Topic       string          `json:"topic"`
	AggregateID uuid.UUID       `json:"aggregateId"`
	Payload     json.RawMessage `json:"payload"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// Store defines the persistence operations required by the event bus.
type Store interface {
	InsertEvent(ctx context.Context, topic string, aggregateID uuid.UUID, payload []byte) (Record, error)
}

// Notifier reacts to emitted events.
type Notifier interface {
	Notify(ctx context.Context, event Record) error
}

// Bus persists domain events and fans them out to downstream handlers.
type Bus struct {
	Store     Store
	Notifiers []Notifier
}

// Emit records the event and dispatches it to all configured notifiers.
// Notifier failures do not undo the persisted record.
func (b *Bus) Emit(ctx context.Context, topic string, aggregateID uuid.UUID, payload any) (Record, error) {
	if b == nil || b.Store == nil {
		return Record{}, errors.New("events: store not configured")
	}
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return Record{}, errors.New("events: topic is required")
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return Record{}, fmt.Errorf("events: encode payload: %w", err)
	}
	record, err := b.Store.InsertEvent(ctx, topic, aggregateID, encoded)
	if err != nil {
		return Record{}, fmt.Errorf("events: persist event: %w", err)
	}
	var notifyErrs []error
	for _, n := range b.Notifiers {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, record); err != nil {
			notifyErrs = append(notifyErrs, err)
		}
	}
	return record, errors.Join(notifyErrs...)
}
