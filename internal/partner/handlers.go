package partner

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/partner-discounts/internal/common"
)

// Handler exposes partner endpoints.
type Handler struct {
	Service        *Service
	Validate       *validator.Validate
	ExposeInternal bool
}

type createPartnerRequest struct {
	Name             string          `json:"name" validate:"required"`
	DailyPrice       decimal.Decimal `json:"dailyPrice" validate:"required"`
	ClientsAmount    int             `json:"clientsAmount" validate:"required"`
	DiscountType     string          `json:"discountType" validate:"required,oneof=base personal"`
	DiscountsTableID string          `json:"discountsTableId" validate:"required"`
}

type updatePartnerRequest struct {
	Name             *string          `json:"name"`
	DailyPrice       *decimal.Decimal `json:"dailyPrice"`
	ClientsAmount    *int             `json:"clientsAmount"`
	DiscountType     *string          `json:"discountType" validate:"omitempty,oneof=base personal"`
	DiscountsTableID *string          `json:"discountsTableId"`
}

// Create handles POST /api/v1/partners.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createPartnerRequest
	if !h.decode(w, r, &req) {
		return
	}
	p, err := h.Service.Create(r.Context(), CreateInput{
		Name:             req.Name,
		DailyPrice:       req.DailyPrice,
		ClientsAmount:    req.ClientsAmount,
		Type:             req.DiscountType,
		DiscountsTableID: req.DiscountsTableID,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": p})
}

// List handles GET /api/v1/partners.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	partners, err := h.Service.List(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": partners})
}

// GetByID handles GET /api/v1/partners/{id}.
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	p, err := h.Service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": p})
}

// Update handles PATCH /api/v1/partners/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req updatePartnerRequest
	if !h.decode(w, r, &req) {
		return
	}
	p, err := h.Service.Update(r.Context(), chi.URLParam(r, "id"), UpdateInput{
		Name:             req.Name,
		DailyPrice:       req.DailyPrice,
		ClientsAmount:    req.ClientsAmount,
		Type:             req.DiscountType,
		DiscountsTableID: req.DiscountsTableID,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": p})
}

// Delete handles DELETE /api/v1/partners/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	p, err := h.Service.Delete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": p})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "invalid JSON payload", nil)
		return false
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(dst); err != nil {
			common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "validation failed", err.Error())
			return false
		}
	}
	return true
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	common.WriteError(w, err, h.ExposeInternal)
}
