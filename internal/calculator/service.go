package calculator

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/noah-isme/partner-discounts/internal/common"
	"github.com/noah-isme/partner-discounts/internal/discounts"
	"github.com/noah-isme/partner-discounts/internal/events"
	"github.com/noah-isme/partner-discounts/internal/ledger"
	"github.com/noah-isme/partner-discounts/internal/obs"
	"github.com/noah-isme/partner-discounts/internal/partner"
)

// PartnerSource loads the partner under computation.
type PartnerSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (partner.Partner, error)
}

// TableSource loads the discount table under computation.
type TableSource interface {
	GetByID(ctx context.Context, id uuid.UUID) (discounts.Table, error)
}

// LogAppender persists the resulting snapshot.
type LogAppender interface {
	Append(ctx context.Context, log ledger.CalculationLog) (ledger.CalculationLog, error)
}

// Service orchestrates a computation: load both entities, run the engine,
// and append an immutable snapshot to the ledger.
type Service struct {
	Partners PartnerSource
	Tables   TableSource
	Logs     LogAppender
	Events   *events.Bus
	Logger   zerolog.Logger
}

// Compute runs the progressive allocation for the given partner and table.
// The numeric result is deterministic for unchanged stored state; every
// successful call still appends a new ledger entry.
func (s *Service) Compute(ctx context.Context, partnerID, discountTableID string) (ledger.CalculationLog, error) {
	if s == nil || s.Partners == nil || s.Tables == nil || s.Logs == nil {
		return ledger.CalculationLog{}, errors.New("calculator service not configured")
	}
	start := time.Now()

	pID, err := uuid.Parse(strings.TrimSpace(partnerID))
	if err != nil {
		s.count("bad_request")
		return ledger.CalculationLog{}, common.BadRequest("invalid partner ID")
	}
	tID, err := uuid.Parse(strings.TrimSpace(discountTableID))
	if err != nil {
		s.count("bad_request")
		return ledger.CalculationLog{}, common.BadRequest("invalid discount table ID")
	}

	p, err := s.Partners.GetByID(ctx, pID)
	if err != nil {
		if errors.Is(err, partner.ErrNotFound) {
			s.count("not_found")
			return ledger.CalculationLog{}, common.NotFound("partner not found")
		}
		s.count("error")
		return ledger.CalculationLog{}, err
	}
	table, err := s.Tables.GetByID(ctx, tID)
	if err != nil {
		if errors.Is(err, discounts.ErrNotFound) {
			s.count("not_found")
			return ledger.CalculationLog{}, common.NotFound("discount table not found")
		}
		s.count("error")
		return ledger.CalculationLog{}, err
	}

	outcome := Allocate(table.Ranges, p.ClientsAmount, p.DailyPrice)

	log, err := s.Logs.Append(ctx, ledger.CalculationLog{
		PartnerID:                     p.ID,
		DiscountTableID:               table.ID,
		PartnerDailyPriceStamp:        p.DailyPrice,
		PartnerClientsAmountStamp:     p.ClientsAmount,
		TableNicknameStamp:            table.Nickname,
		DiscountRangesStamp:           discounts.SortedRanges(table.Ranges),
		Details:                       outcome.Details,
		TotalPriceResult:              outcome.TotalGross,
		TotalDiscountResult:           outcome.TotalDiscount,
		TotalPriceAfterDiscountResult: outcome.TotalNet,
	})
	if err != nil {
		s.count("error")
		return ledger.CalculationLog{}, err
	}

	s.count("ok")
	if obs.CalculationDuration != nil {
		obs.CalculationDuration.Observe(obs.DurationMillis(time.Since(start)))
	}
	if s.Events != nil {
		_, err := s.Events.Emit(ctx, events.TopicCalculationCompleted, log.ID, map[string]any{
			"calculationLogId": log.ID,
			"partnerId":        log.PartnerID,
			"discountTableId":  log.DiscountTableID,
			"totalPriceAfterDiscount": log.TotalPriceAfterDiscountResult,
		})
		if err != nil {
			s.Logger.Warn().Err(err).Msg("emit calculation.completed")
		}
	}
	return log, nil
}

func (s *Service) count(result string) {
	if obs.CalculationsTotal != nil {
		obs.CalculationsTotal.WithLabelValues(result).Inc()
	}
}
