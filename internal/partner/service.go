package partner

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/partner-discounts/internal/common"
	"github.com/noah-isme/partner-discounts/internal/discounts"
	"github.com/noah-isme/partner-discounts/internal/events"
)

// PartnerStore captures the persistence operations required by the service.
type PartnerStore interface {
	Create(ctx context.Context, p Partner) (Partner, error)
	GetByID(ctx context.Context, id uuid.UUID) (Partner, error)
	List(ctx context.Context) ([]Partner, error)
	Update(ctx context.Context, id uuid.UUID, fields UpdateFields) (Partner, error)
	Delete(ctx context.Context, id uuid.UUID) (Partner, error)
}

// Service enforces partner invariants on top of the store.
type Service struct {
	Store  PartnerStore
	Events *events.Bus
	Logger zerolog.Logger
}

// CreateInput carries the fields accepted when creating a partner.
type CreateInput struct {
	Name             string
	DailyPrice       decimal.Decimal
	ClientsAmount    int
	Type             string
	DiscountsTableID string
}

// UpdateInput carries a partial partner update.
type UpdateInput struct {
	Name             *string
	DailyPrice       *decimal.Decimal
	ClientsAmount    *int
	Type             *string
	DiscountsTableID *string
}

// Create validates the input and persists the partner. The table-existence
// check, name-uniqueness check, and insert run as one transaction in the
// store so a concurrent table deletion or duplicate creation cannot leave an
// inconsistent reference.
func (s *Service) Create(ctx context.Context, in CreateInput) (Partner, error) {
	if s == nil || s.Store == nil {
		return Partner{}, errors.New("partner service not configured")
	}
	if strings.TrimSpace(in.Name) == "" {
		return Partner{}, common.BadRequest("name is required")
	}
	if !in.DailyPrice.IsPositive() {
		return Partner{}, common.BadRequest("daily price must be a positive number")
	}
	if in.ClientsAmount <= 0 {
		return Partner{}, common.BadRequest("clients amount must be a positive number")
	}
	if !discounts.ValidType(in.Type) {
		return Partner{}, common.BadRequest("discount type must be 'base' or 'personal'")
	}
	tableID, err := uuid.Parse(strings.TrimSpace(in.DiscountsTableID))
	if err != nil {
		return Partner{}, common.BadRequest("invalid discounts table ID")
	}
	created, err := s.Store.Create(ctx, Partner{
		Name:             in.Name,
		DailyPrice:       in.DailyPrice,
		ClientsAmount:    in.ClientsAmount,
		Type:             in.Type,
		DiscountsTableID: tableID,
	})
	if err != nil {
		return Partner{}, s.mapStoreErr(err, in.Name)
	}
	if s.Events != nil {
		_, err := s.Events.Emit(ctx, events.TopicPartnerCreated, created.ID, map[string]any{
			"partnerId":        created.ID,
			"discountsTableId": created.DiscountsTableID,
		})
		if err != nil {
			s.Logger.Warn().Err(err).Msg("emit partner.created")
		}
	}
	return created, nil
}

// GetByID loads one partner by its identifier.
func (s *Service) GetByID(ctx context.Context, id string) (Partner, error) {
	if s == nil || s.Store == nil {
		return Partner{}, errors.New("partner service not configured")
	}
	partnerID, err := parseID(id)
	if err != nil {
		return Partner{}, err
	}
	p, err := s.Store.GetByID(ctx, partnerID)
	if err != nil {
		return Partner{}, s.mapStoreErr(err, "")
	}
	return p, nil
}

// List returns every partner.
func (s *Service) List(ctx context.Context) ([]Partner, error) {
	if s == nil || s.Store == nil {
		return nil, errors.New("partner service not configured")
	}
	return s.Store.List(ctx)
}

// Update applies a partial update. An empty update set is rejected.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Partner, error) {
	if s == nil || s.Store == nil {
		return Partner{}, errors.New("partner service not configured")
	}
	partnerID, err := parseID(id)
	if err != nil {
		return Partner{}, err
	}
	fields := UpdateFields{
		Name:          in.Name,
		DailyPrice:    in.DailyPrice,
		ClientsAmount: in.ClientsAmount,
		Type:          in.Type,
	}
	if in.DiscountsTableID != nil {
		tableID, err := uuid.Parse(strings.TrimSpace(*in.DiscountsTableID))
		if err != nil {
			return Partner{}, common.BadRequest("invalid discounts table ID")
		}
		fields.DiscountsTableID = &tableID
	}
	if fields.Empty() {
		return Partner{}, common.BadRequest("no valid fields provided for update")
	}
	if fields.Name != nil && strings.TrimSpace(*fields.Name) == "" {
		return Partner{}, common.BadRequest("name must not be empty")
	}
	if fields.DailyPrice != nil && !fields.DailyPrice.IsPositive() {
		return Partner{}, common.BadRequest("daily price must be a positive number")
	}
	if fields.ClientsAmount != nil && *fields.ClientsAmount <= 0 {
		return Partner{}, common.BadRequest("clients amount must be a positive number")
	}
	if fields.Type != nil && !discounts.ValidType(*fields.Type) {
		return Partner{}, common.BadRequest("discount type must be 'base' or 'personal'")
	}
	p, err := s.Store.Update(ctx, partnerID, fields)
	if err != nil {
		return Partner{}, s.mapStoreErr(err, "")
	}
	return p, nil
}

// Delete removes a partner. Calculation logs referencing it are kept.
func (s *Service) Delete(ctx context.Context, id string) (Partner, error) {
	if s == nil || s.Store == nil {
		return Partner{}, errors.New("partner service not configured")
	}
	partnerID, err := parseID(id)
	if err != nil {
		return Partner{}, err
	}
	p, err := s.Store.Delete(ctx, partnerID)
	if err != nil {
		return Partner{}, s.mapStoreErr(err, "")
	}
	return p, nil
}

func (s *Service) mapStoreErr(err error, name string) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return common.NotFound("partner not found")
	case errors.Is(err, ErrTableNotFound):
		return common.NotFound("discounts table not found")
	case errors.Is(err, ErrNameTaken):
		if name != "" {
			return common.Conflict(fmt.Sprintf("partner with name %q already exists", name))
		}
		return common.Conflict("partner name already exists")
	default:
		return err
	}
}

func parseID(value string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.UUID{}, common.BadRequest("invalid partner ID")
	}
	return id, nil
}
