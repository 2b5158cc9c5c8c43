package discounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/partner-discounts/internal/common"
	"github.com/noah-isme/partner-discounts/internal/events"
	"github.com/noah-isme/partner-discounts/internal/obs"
)

// TableStore captures the persistence operations required by the service.
type TableStore interface {
	Insert(ctx context.Context, t Table) (Table, error)
	List(ctx context.Context, typeFilter string) ([]Table, error)
	GetByID(ctx context.Context, id uuid.UUID) (Table, error)
	GetBase(ctx context.Context) (Table, error)
	Update(ctx context.Context, id uuid.UUID, fields UpdateFields) (Table, error)
	DeleteWithCascade(ctx context.Context, id uuid.UUID) (DeleteResult, error)
}

// Service enforces discount table invariants on top of the store.
type Service struct {
	Store        TableStore
	Cache        *Cache
	Events       *events.Bus
	Logger       zerolog.Logger
	StrictRanges bool
}

// CreateInput carries the fields accepted when creating a table.
type CreateInput struct {
	Nickname string
	Type     string
	Ranges   []Range
	Clone    bool
}

// UpdateInput carries a partial table update.
type UpdateInput struct {
	Nickname *string
	Type     *string
	Ranges   []Range
}

// Create validates and persists a new discount table. Duplicate nicknames and
// duplicate range sets are rejected with Conflict; the range-set check is
// skipped when the input is explicitly flagged as a clone.
func (s *Service) Create(ctx context.Context, in CreateInput) (Table, error) {
	if s == nil || s.Store == nil {
		return Table{}, errors.New("discounts service not configured")
	}
	if err := ValidateNickname(in.Nickname); err != nil {
		return Table{}, common.BadRequest(err.Error())
	}
	tableType := strings.TrimSpace(in.Type)
	if tableType == "" {
		tableType = TypePersonal
	}
	if !ValidType(tableType) {
		return Table{}, common.BadRequest("discount type must be 'base' or 'personal'")
	}
	if err := ValidateRanges(in.Ranges, s.StrictRanges); err != nil {
		return Table{}, common.BadRequest(err.Error())
	}
	if !in.Clone {
		existing, err := s.Store.List(ctx, "")
		if err != nil {
			return Table{}, err
		}
		for _, t := range existing {
			if RangesEqual(t.Ranges, in.Ranges) {
				return Table{}, common.Conflict(
					fmt.Sprintf("the discount table %q with these ranges already exists", t.Nickname))
			}
		}
	}
	created, err := s.Store.Insert(ctx, Table{
		Nickname: in.Nickname,
		Type:     tableType,
		Ranges:   in.Ranges,
	})
	if err != nil {
		s.countMutation("create", "error")
		return Table{}, mapStoreErr(err)
	}
	s.countMutation("create", "ok")
	s.invalidateCache(ctx)
	return created, nil
}

// List returns all tables, optionally filtered by discount type.
func (s *Service) List(ctx context.Context, typeFilter string) ([]Table, error) {
	if s == nil || s.Store == nil {
		return nil, errors.New("discounts service not configured")
	}
	typeFilter = strings.TrimSpace(typeFilter)
	if typeFilter != "" && !ValidType(typeFilter) {
		return nil, common.BadRequest("discount type filter must be 'base' or 'personal'")
	}
	cacheKey := cacheKeyList + typeFilter
	var cached []Table
	if hit, err := s.Cache.GetJSON(ctx, cacheKey, &cached); err == nil && hit {
		return cached, nil
	}
	tables, err := s.Store.List(ctx, typeFilter)
	if err != nil {
		return nil, err
	}
	if err := s.Cache.SetJSON(ctx, cacheKey, tables); err != nil {
		s.Logger.Warn().Err(err).Msg("cache discount table list")
	}
	return tables, nil
}

// GetByID loads one table by its identifier.
func (s *Service) GetByID(ctx context.Context, id string) (Table, error) {
	if s == nil || s.Store == nil {
		return Table{}, errors.New("discounts service not configured")
	}
	tableID, err := parseID(id, "discount table")
	if err != nil {
		return Table{}, err
	}
	cacheKey := cacheKeyPrefix + tableID.String()
	var cached Table
	if hit, err := s.Cache.GetJSON(ctx, cacheKey, &cached); err == nil && hit {
		return cached, nil
	}
	t, err := s.Store.GetByID(ctx, tableID)
	if err != nil {
		return Table{}, mapStoreErr(err)
	}
	if err := s.Cache.SetJSON(ctx, cacheKey, t); err != nil {
		s.Logger.Warn().Err(err).Msg("cache discount table")
	}
	return t, nil
}

// GetBase returns the current fallback base table.
func (s *Service) GetBase(ctx context.Context) (Table, error) {
	if s == nil || s.Store == nil {
		return Table{}, errors.New("discounts service not configured")
	}
	t, err := s.Store.GetBase(ctx)
	if err != nil {
		if errors.Is(err, ErrNoBaseTable) {
			return Table{}, common.NotFound("base discount table not found")
		}
		return Table{}, mapStoreErr(err)
	}
	return t, nil
}

// Update applies a partial update. An empty update set is rejected.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Table, error) {
	if s == nil || s.Store == nil {
		return Table{}, errors.New("discounts service not configured")
	}
	tableID, err := parseID(id, "discount table")
	if err != nil {
		return Table{}, err
	}
	fields := UpdateFields{Nickname: in.Nickname, Type: in.Type, Ranges: in.Ranges}
	if fields.Empty() {
		return Table{}, common.BadRequest("no valid fields provided for update")
	}
	if fields.Nickname != nil {
		if err := ValidateNickname(*fields.Nickname); err != nil {
			return Table{}, common.BadRequest(err.Error())
		}
	}
	if fields.Type != nil && !ValidType(*fields.Type) {
		return Table{}, common.BadRequest("discount type must be 'base' or 'personal'")
	}
	if fields.Ranges != nil {
		if err := ValidateRanges(fields.Ranges, s.StrictRanges); err != nil {
			return Table{}, common.BadRequest(err.Error())
		}
	}
	updated, err := s.Store.Update(ctx, tableID, fields)
	if err != nil {
		s.countMutation("update", "error")
		return Table{}, mapStoreErr(err)
	}
	s.countMutation("update", "ok")
	s.invalidateCache(ctx)
	return updated, nil
}

// DeleteWithCascade removes the table after repointing its partners to the
// base table. Fails NotFound when the table is absent or no other base table
// exists to receive the partners.
func (s *Service) DeleteWithCascade(ctx context.Context, id string) (DeleteResult, error) {
	if s == nil || s.Store == nil {
		return DeleteResult{}, errors.New("discounts service not configured")
	}
	tableID, err := parseID(id, "discount table")
	if err != nil {
		return DeleteResult{}, err
	}
	result, err := s.Store.DeleteWithCascade(ctx, tableID)
	if err != nil {
		s.countMutation("delete", "error")
		return DeleteResult{}, mapStoreErr(err)
	}
	s.countMutation("delete", "ok")
	if obs.CascadeReassignedPartners != nil {
		obs.CascadeReassignedPartners.Observe(float64(result.ReassignedPartners))
	}
	s.invalidateCache(ctx)
	if s.Events != nil {
		_, err := s.Events.Emit(ctx, events.TopicDiscountTableDeleted, result.DeletedTable.ID, map[string]any{
			"deletedTableId":         result.DeletedTable.ID,
			"baseTableId":            result.BaseTable.ID,
			"reassignedPartnerCount": result.ReassignedPartners,
		})
		if err != nil {
			s.Logger.Warn().Err(err).Msg("emit discount_table.deleted")
		}
	}
	return result, nil
}

func (s *Service) invalidateCache(ctx context.Context) {
	if err := s.Cache.Invalidate(ctx); err != nil {
		s.Logger.Warn().Err(err).Msg("invalidate discount table cache")
	}
}

func (s *Service) countMutation(op, result string) {
	if obs.TableMutationsTotal != nil {
		obs.TableMutationsTotal.WithLabelValues(op, result).Inc()
	}
}

func parseID(value, label string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.UUID{}, common.BadRequest(fmt.Sprintf("invalid %s ID", label))
	}
	return id, nil
}

func mapStoreErr(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return common.NotFound("discount table not found")
	case errors.Is(err, ErrNoBaseTable):
		return common.NotFound("base discount table not found, cannot delete table without a base table")
	case errors.Is(err, ErrNicknameTaken):
		return common.Conflict("discount table with this nickname already exists")
	default:
		return err
	}
}
