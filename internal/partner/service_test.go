package partner

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/partner-discounts/internal/common"
	"github.com/noah-isme/partner-discounts/internal/discounts"
)

type fakePartnerStore struct {
	partners      map[uuid.UUID]Partner
	knownTables   map[uuid.UUID]bool
	updatedFields UpdateFields
}

func newFakePartnerStore() *fakePartnerStore {
	return &fakePartnerStore{
		partners:    map[uuid.UUID]Partner{},
		knownTables: map[uuid.UUID]bool{},
	}
}

func (f *fakePartnerStore) Create(_ context.Context, p Partner) (Partner, error) {
	if !f.knownTables[p.DiscountsTableID] {
		return Partner{}, ErrTableNotFound
	}
	for _, existing := range f.partners {
		if existing.Name == p.Name {
			return Partner{}, ErrNameTaken
		}
	}
	p.ID = uuid.New()
	f.partners[p.ID] = p
	return p, nil
}

func (f *fakePartnerStore) GetByID(_ context.Context, id uuid.UUID) (Partner, error) {
	p, ok := f.partners[id]
	if !ok {
		return Partner{}, ErrNotFound
	}
	return p, nil
}

func (f *fakePartnerStore) List(_ context.Context) ([]Partner, error) {
	out := []Partner{}
	for _, p := range f.partners {
		out = append(out, p)
	}
	return out, nil
}

func (f *fakePartnerStore) Update(_ context.Context, id uuid.UUID, fields UpdateFields) (Partner, error) {
	p, ok := f.partners[id]
	if !ok {
		return Partner{}, ErrNotFound
	}
	f.updatedFields = fields
	if fields.Name != nil {
		p.Name = *fields.Name
	}
	if fields.DailyPrice != nil {
		p.DailyPrice = *fields.DailyPrice
	}
	if fields.ClientsAmount != nil {
		p.ClientsAmount = *fields.ClientsAmount
	}
	if fields.Type != nil {
		p.Type = *fields.Type
	}
	if fields.DiscountsTableID != nil {
		if !f.knownTables[*fields.DiscountsTableID] {
			return Partner{}, ErrTableNotFound
		}
		p.DiscountsTableID = *fields.DiscountsTableID
	}
	f.partners[id] = p
	return p, nil
}

func (f *fakePartnerStore) Delete(_ context.Context, id uuid.UUID) (Partner, error) {
	p, ok := f.partners[id]
	if !ok {
		return Partner{}, ErrNotFound
	}
	delete(f.partners, id)
	return p, nil
}

func newPartnerService(store *fakePartnerStore) *Service {
	return &Service{Store: store, Logger: zerolog.Nop()}
}

func validCreateInput(tableID uuid.UUID) CreateInput {
	return CreateInput{
		Name:             "Acme Logistics",
		DailyPrice:       decimal.NewFromInt(10),
		ClientsAmount:    150,
		Type:             discounts.TypeBase,
		DiscountsTableID: tableID.String(),
	}
}

func TestCreatePartner(t *testing.T) {
	store := newFakePartnerStore()
	tableID := uuid.New()
	store.knownTables[tableID] = true
	svc := newPartnerService(store)

	created, err := svc.Create(context.Background(), validCreateInput(tableID))
	require.NoError(t, err)
	require.NotEqual(t, uuid.Nil, created.ID)
	require.Equal(t, tableID, created.DiscountsTableID)
}

func TestCreatePartnerValidation(t *testing.T) {
	store := newFakePartnerStore()
	tableID := uuid.New()
	store.knownTables[tableID] = true
	svc := newPartnerService(store)
	ctx := context.Background()

	cases := []struct {
		name    string
		mutate  func(*CreateInput)
		message string
	}{
		{"empty name", func(in *CreateInput) { in.Name = "  " }, "name is required"},
		{"zero price", func(in *CreateInput) { in.DailyPrice = decimal.Zero }, "daily price must be a positive number"},
		{"negative price", func(in *CreateInput) { in.DailyPrice = decimal.NewFromInt(-1) }, "daily price must be a positive number"},
		{"zero clients", func(in *CreateInput) { in.ClientsAmount = 0 }, "clients amount must be a positive number"},
		{"unknown type", func(in *CreateInput) { in.Type = "vip" }, "discount type must be 'base' or 'personal'"},
		{"bad table id", func(in *CreateInput) { in.DiscountsTableID = "nope" }, "invalid discounts table ID"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validCreateInput(tableID)
			tc.mutate(&in)
			_, err := svc.Create(ctx, in)
			appErr, ok := common.AsAppError(err)
			require.True(t, ok)
			require.Equal(t, common.CodeBadRequest, appErr.Code)
			require.Equal(t, tc.message, appErr.Message)
		})
	}
}

func TestCreatePartnerTableMissing(t *testing.T) {
	store := newFakePartnerStore()
	svc := newPartnerService(store)

	_, err := svc.Create(context.Background(), validCreateInput(uuid.New()))
	appErr, ok := common.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, common.CodeNotFound, appErr.Code)
	require.Equal(t, "discounts table not found", appErr.Message)
}

func TestCreatePartnerNameConflict(t *testing.T) {
	store := newFakePartnerStore()
	tableID := uuid.New()
	store.knownTables[tableID] = true
	svc := newPartnerService(store)
	ctx := context.Background()

	_, err := svc.Create(ctx, validCreateInput(tableID))
	require.NoError(t, err)

	_, err = svc.Create(ctx, validCreateInput(tableID))
	appErr, ok := common.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, common.CodeConflict, appErr.Code)
	require.Equal(t, `partner with name "Acme Logistics" already exists`, appErr.Message)
}

func TestGetPartnerByID(t *testing.T) {
	store := newFakePartnerStore()
	tableID := uuid.New()
	store.knownTables[tableID] = true
	svc := newPartnerService(store)

	created, err := svc.Create(context.Background(), validCreateInput(tableID))
	require.NoError(t, err)

	got, err := svc.GetByID(context.Background(), created.ID.String())
	require.NoError(t, err)
	require.Equal(t, created.ID, got.ID)

	_, err = svc.GetByID(context.Background(), "not-a-uuid")
	appErr, ok := common.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, common.CodeBadRequest, appErr.Code)
	require.Equal(t, "invalid partner ID", appErr.Message)

	_, err = svc.GetByID(context.Background(), uuid.NewString())
	appErr, ok = common.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, common.CodeNotFound, appErr.Code)
}

func TestUpdatePartner(t *testing.T) {
	store := newFakePartnerStore()
	tableID := uuid.New()
	store.knownTables[tableID] = true
	svc := newPartnerService(store)
	ctx := context.Background()

	created, err := svc.Create(ctx, validCreateInput(tableID))
	require.NoError(t, err)

	_, err = svc.Update(ctx, created.ID.String(), UpdateInput{})
	appErr, ok := common.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, common.CodeBadRequest, appErr.Code)

	price := decimal.RequireFromString("12.5")
	updated, err := svc.Update(ctx, created.ID.String(), UpdateInput{DailyPrice: &price})
	require.NoError(t, err)
	require.True(t, updated.DailyPrice.Equal(price))
	require.Nil(t, store.updatedFields.Name)

	badPrice := decimal.Zero
	_, err = svc.Update(ctx, created.ID.String(), UpdateInput{DailyPrice: &badPrice})
	appErr, ok = common.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, common.CodeBadRequest, appErr.Code)

	badTable := "nope"
	_, err = svc.Update(ctx, created.ID.String(), UpdateInput{DiscountsTableID: &badTable})
	appErr, ok = common.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, common.CodeBadRequest, appErr.Code)
	require.Equal(t, "invalid discounts table ID", appErr.Message)

	missingTable := uuid.NewString()
	_, err = svc.Update(ctx, created.ID.String(), UpdateInput{DiscountsTableID: &missingTable})
	appErr, ok = common.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, common.CodeNotFound, appErr.Code)
}

func TestDeletePartner(t *testing.T) {
	store := newFakePartnerStore()
	tableID := uuid.New()
	store.knownTables[tableID] = true
	svc := newPartnerService(store)
	ctx := context.Background()

	created, err := svc.Create(ctx, validCreateInput(tableID))
	require.NoError(t, err)

	deleted, err := svc.Delete(ctx, created.ID.String())
	require.NoError(t, err)
	require.Equal(t, created.ID, deleted.ID)

	_, err = svc.Delete(ctx, created.ID.String())
	appErr, ok := common.AsAppError(err)
	require.True(t, ok)
	require.Equal(t, common.CodeNotFound, appErr.Code)
}
