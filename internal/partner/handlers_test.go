package partner

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newPartnerRouter(store *fakePartnerStore) *chi.Mux {
	handler := &Handler{
		Service:  newPartnerService(store),
		Validate: validator.New(),
	}
	r := chi.NewRouter()
	r.Route("/partners", func(p chi.Router) {
		p.Get("/", handler.List)
		p.Post("/", handler.Create)
		p.Get("/{id}", handler.GetByID)
		p.Patch("/{id}", handler.Update)
		p.Delete("/{id}", handler.Delete)
	})
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, dst))
}

func TestCreatePartnerEndpoint(t *testing.T) {
	store := newFakePartnerStore()
	tableID := uuid.New()
	store.knownTables[tableID] = true
	router := newPartnerRouter(store)

	rec := doJSON(t, router, http.MethodPost, "/partners", `{
		"name": "Acme Logistics",
		"dailyPrice": "10.50",
		"clientsAmount": 150,
		"discountType": "base",
		"discountsTableId": "`+tableID.String()+`"
	}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var p Partner
	decodeData(t, rec, &p)
	require.Equal(t, "Acme Logistics", p.Name)
	require.True(t, p.DailyPrice.Equal(decimal.RequireFromString("10.50")))
	require.Equal(t, tableID, p.DiscountsTableID)
}

func TestCreatePartnerEndpointValidation(t *testing.T) {
	store := newFakePartnerStore()
	router := newPartnerRouter(store)

	rec := doJSON(t, router, http.MethodPost, "/partners", `{not json`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/partners", `{"name": "incomplete"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/partners", `{
		"name": "bad type", "dailyPrice": "10", "clientsAmount": 1,
		"discountType": "vip", "discountsTableId": "`+uuid.NewString()+`"
	}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreatePartnerEndpointMissingTable(t *testing.T) {
	router := newPartnerRouter(newFakePartnerStore())

	rec := doJSON(t, router, http.MethodPost, "/partners", `{
		"name": "Orphan Partner", "dailyPrice": "10", "clientsAmount": 5,
		"discountType": "base", "discountsTableId": "`+uuid.NewString()+`"
	}`)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetPartnerEndpoint(t *testing.T) {
	store := newFakePartnerStore()
	tableID := uuid.New()
	store.knownTables[tableID] = true
	router := newPartnerRouter(store)

	rec := doJSON(t, router, http.MethodPost, "/partners", `{
		"name": "Acme Logistics", "dailyPrice": "10", "clientsAmount": 5,
		"discountType": "base", "discountsTableId": "`+tableID.String()+`"
	}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created Partner
	decodeData(t, rec, &created)

	rec = doJSON(t, router, http.MethodGet, "/partners/"+created.ID.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/partners/"+uuid.NewString(), "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/partners/not-a-uuid", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdatePartnerEndpoint(t *testing.T) {
	store := newFakePartnerStore()
	tableID := uuid.New()
	store.knownTables[tableID] = true
	router := newPartnerRouter(store)

	rec := doJSON(t, router, http.MethodPost, "/partners", `{
		"name": "Acme Logistics", "dailyPrice": "10", "clientsAmount": 5,
		"discountType": "base", "discountsTableId": "`+tableID.String()+`"
	}`)
	var created Partner
	decodeData(t, rec, &created)

	rec = doJSON(t, router, http.MethodPatch, "/partners/"+created.ID.String(),
		`{"clientsAmount": 300}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var updated Partner
	decodeData(t, rec, &updated)
	require.Equal(t, 300, updated.ClientsAmount)

	rec = doJSON(t, router, http.MethodPatch, "/partners/"+created.ID.String(), `{}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeletePartnerEndpoint(t *testing.T) {
	store := newFakePartnerStore()
	tableID := uuid.New()
	store.knownTables[tableID] = true
	router := newPartnerRouter(store)

	rec := doJSON(t, router, http.MethodPost, "/partners", `{
		"name": "Acme Logistics", "dailyPrice": "10", "clientsAmount": 5,
		"discountType": "base", "discountsTableId": "`+tableID.String()+`"
	}`)
	var created Partner
	decodeData(t, rec, &created)

	rec = doJSON(t, router, http.MethodDelete, "/partners/"+created.ID.String(), "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodDelete, "/partners/"+created.ID.String(), "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}
