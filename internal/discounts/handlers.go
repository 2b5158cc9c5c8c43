package discounts

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/partner-discounts/internal/common"
)

// Handler exposes discount table endpoints.
type Handler struct {
	Service        *Service
	Validate       *validator.Validate
	ExposeInternal bool
}

type rangePayload struct {
	InitialRange    int             `json:"initialRange"`
	FinalRange      int             `json:"finalRange"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
}

type createTableRequest struct {
	Nickname     string         `json:"nickname" validate:"required"`
	DiscountType string         `json:"discountType" validate:"omitempty,oneof=base personal"`
	Ranges       []rangePayload `json:"ranges" validate:"required,min=1"`
	Clone        bool           `json:"clone"`
}

type updateTableRequest struct {
	Nickname     *string        `json:"nickname"`
	DiscountType *string        `json:"discountType" validate:"omitempty,oneof=base personal"`
	Ranges       []rangePayload `json:"ranges"`
}

// Create handles POST /api/v1/discount-tables.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTableRequest
	if !h.decode(w, r, &req) {
		return
	}
	table, err := h.Service.Create(r.Context(), CreateInput{
		Nickname: req.Nickname,
		Type:     req.DiscountType,
		Ranges:   toRanges(req.Ranges),
		Clone:    req.Clone,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": table})
}

// List handles GET /api/v1/discount-tables with an optional type filter.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	tables, err := h.Service.List(r.Context(), r.URL.Query().Get("type"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": tables})
}

// GetBase handles GET /api/v1/discount-tables/base.
func (h *Handler) GetBase(w http.ResponseWriter, r *http.Request) {
	table, err := h.Service.GetBase(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": table})
}

// GetByID handles GET /api/v1/discount-tables/{id}.
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	table, err := h.Service.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": table})
}

// Update handles PATCH /api/v1/discount-tables/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateTableRequest
	if !h.decode(w, r, &req) {
		return
	}
	var ranges []Range
	if req.Ranges != nil {
		ranges = toRanges(req.Ranges)
	}
	table, err := h.Service.Update(r.Context(), chi.URLParam(r, "id"), UpdateInput{
		Nickname: req.Nickname,
		Type:     req.DiscountType,
		Ranges:   ranges,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": table})
}

// Delete handles DELETE /api/v1/discount-tables/{id}. Cascade reassignment to
// the base table happens before the row is removed.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	result, err := h.Service.DeleteWithCascade(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": result})
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

func toRanges(payload []rangePayload) []Range {
	ranges := make([]Range, 0, len(payload))
	for _, p := range payload {
		ranges = append(ranges, Range{
			InitialRange:    p.InitialRange,
			FinalRange:      p.FinalRange,
			DiscountPercent: p.DiscountPercent,
		})
	}
	return ranges
}
