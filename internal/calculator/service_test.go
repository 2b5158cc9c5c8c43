package calculator

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/partner-discounts/internal/common"
	"github.com/noah-isme/partner-discounts/internal/discounts"
	"github.com/noah-isme/partner-discounts/internal/ledger"
	"github.com/noah-isme/partner-discounts/internal/partner"
)

type fakePartnerSource struct {
	partners map[uuid.UUID]partner.Partner
}

func (f *fakePartnerSource) GetByID(_ context.Context, id uuid.UUID) (partner.Partner, error) {
	p, ok := f.partners[id]
	if !ok {
		return partner.Partner{}, partner.ErrNotFound
	}
	return p, nil
}

type fakeTableSource struct {
	tables map[uuid.UUID]discounts.Table
}

func (f *fakeTableSource) GetByID(_ context.Context, id uuid.UUID) (discounts.Table, error) {
	t, ok := f.tables[id]
	if !ok {
		return discounts.Table{}, discounts.ErrNotFound
	}
	return t, nil
}

type fakeLogAppender struct {
	appended []ledger.CalculationLog
}

func (f *fakeLogAppender) Append(_ context.Context, log ledger.CalculationLog) (ledger.CalculationLog, error) {
	log.ID = uuid.New()
	f.appended = append(f.appended, log)
	return log, nil
}

func newComputeFixture(t *testing.T) (*Service, partner.Partner, discounts.Table, *fakeLogAppender) {
	t.Helper()
	table := discounts.Table{
		ID:       uuid.New(),
		Nickname: "standard table",
		Type:     discounts.TypeBase,
		Ranges: []discounts.Range{
			{InitialRange: 1, FinalRange: 100, DiscountPercent: decimal.Zero},
			{InitialRange: 101, FinalRange: 200, DiscountPercent: decimal.NewFromInt(10)},
			{InitialRange: 201, FinalRange: 500, DiscountPercent: decimal.NewFromInt(20)},
		},
	}
	p := partner.Partner{
		ID:               uuid.New(),
		Name:             "Acme Logistics",
		DailyPrice:       decimal.NewFromInt(10),
		ClientsAmount:    150,
		Type:             discounts.TypeBase,
		DiscountsTableID: table.ID,
	}
	logs := &fakeLogAppender{}
	svc := &Service{
		Partners: &fakePartnerSource{partners: map[uuid.UUID]partner.Partner{p.ID: p}},
		Tables:   &fakeTableSource{tables: map[uuid.UUID]discounts.Table{table.ID: table}},
		Logs:     logs,
		Logger:   zerolog.Nop(),
	}
	return svc, p, table, logs
}

func TestComputeAppendsStampedSnapshot(t *testing.T) {
	svc, p, table, logs := newComputeFixture(t)

	log, err := svc.Compute(context.Background(), p.ID.String(), table.ID.String())
	require.NoError(t, err)

	require.Len(t, logs.appended, 1)
	require.Equal(t, p.ID, log.PartnerID)
	require.Equal(t, table.ID, log.DiscountTableID)
	require.True(t, log.PartnerDailyPriceStamp.Equal(p.DailyPrice))
	require.Equal(t, p.ClientsAmount, log.PartnerClientsAmountStamp)
	require.Equal(t, table.Nickname, log.TableNicknameStamp)
	require.Len(t, log.DiscountRangesStamp, 3)

	require.True(t, log.TotalPriceResult.Equal(decimal.NewFromInt(1500)))
	require.True(t, log.TotalDiscountResult.Equal(decimal.NewFromInt(50)))
	require.True(t, log.TotalPriceAfterDiscountResult.Equal(decimal.NewFromInt(1450)))
}

func TestComputeIsDeterministic(t *testing.T) {
	svc, p, table, logs := newComputeFixture(t)

	first, err := svc.Compute(context.Background(), p.ID.String(), table.ID.String())
	require.NoError(t, err)
	second, err := svc.Compute(context.Background(), p.ID.String(), table.ID.String())
	require.NoError(t, err)

	require.True(t, first.TotalPriceAfterDiscountResult.Equal(second.TotalPriceAfterDiscountResult))
	require.True(t, first.TotalDiscountResult.Equal(second.TotalDiscountResult))
	// Every successful call still appends its own entry.
	require.Len(t, logs.appended, 2)
	require.NotEqual(t, first.ID, second.ID)
}

func TestComputeAnyTableNotJustAssigned(t *testing.T) {
	svc, p, _, _ := newComputeFixture(t)

	other := discounts.Table{
		ID:       uuid.New(),
		Nickname: "trial table",
		Type:     discounts.TypePersonal,
		Ranges: []discounts.Range{
			{InitialRange: 1, FinalRange: 1000, DiscountPercent: decimal.NewFromInt(50)},
		},
	}
	svc.Tables.(*fakeTableSource).tables[other.ID] = other

	log, err := svc.Compute(context.Background(), p.ID.String(), other.ID.String())
	require.NoError(t, err)
	require.Equal(t, other.ID, log.DiscountTableID)
	require.Equal(t, other.Nickname, log.TableNicknameStamp)
	require.True(t, log.TotalPriceAfterDiscountResult.Equal(decimal.NewFromInt(750)))
}

func TestComputePartnerNotFound(t *testing.T) {
	svc, _, table, logs := newComputeFixture(t)

	_, err := svc.Compute(context.Background(), uuid.NewString(), table.ID.String())
	appErr, ok := common.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, common.CodeNotFound, appErr.Code)
	require.Equal(t, "partner not found", appErr.Message)
	require.Empty(t, logs.appended)
}

func TestComputeTableNotFound(t *testing.T) {
	svc, p, _, logs := newComputeFixture(t)

	_, err := svc.Compute(context.Background(), p.ID.String(), uuid.NewString())
	appErr, ok := common.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, common.CodeNotFound, appErr.Code)
	require.Equal(t, "discount table not found", appErr.Message)
	require.Empty(t, logs.appended)
}

func TestComputeInvalidIDs(t *testing.T) {
	svc, p, table, _ := newComputeFixture(t)

	_, err := svc.Compute(context.Background(), "not-a-uuid", table.ID.String())
	appErr, ok := common.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, common.CodeBadRequest, appErr.Code)

	_, err = svc.Compute(context.Background(), p.ID.String(), "not-a-uuid")
	appErr, ok = common.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, common.CodeBadRequest, appErr.Code)
}

func TestComputeStampsSortedRanges(t *testing.T) {
	svc, p, _, _ := newComputeFixture(t)

	shuffled := discounts.Table{
		ID:       uuid.New(),
		Nickname: "shuffled table",
		Type:     discounts.TypePersonal,
		Ranges: []discounts.Range{
			{InitialRange: 201, FinalRange: 500, DiscountPercent: decimal.NewFromInt(20)},
			{InitialRange: 1, FinalRange: 100, DiscountPercent: decimal.Zero},
		},
	}
	svc.Tables.(*fakeTableSource).tables[shuffled.ID] = shuffled

	log, err := svc.Compute(context.Background(), p.ID.String(), shuffled.ID.String())
	require.NoError(t, err)
	require.Equal(t, 1, log.DiscountRangesStamp[0].InitialRange)
	require.Equal(t, 201, log.DiscountRangesStamp[1].InitialRange)
}
