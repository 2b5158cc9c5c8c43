package calculator

import (
	"encoding/json"
	"net/http"

	validator "github.com/go-playground/validator/v10"

	"github.com/noah-isme/partner-discounts/internal/common"
)

// Handler exposes the computation endpoint.
type Handler struct {
	Service        *Service
	Validate       *validator.Validate
	ExposeInternal bool
}

type computeRequest struct {
	PartnerID       string `json:"partnerId" validate:"required"`
	DiscountTableID string `json:"discountTableId" validate:"required"`
}

// Compute handles POST /api/v1/calculator.
func (h *Handler) Compute(w http.ResponseWriter, r *http.Request) {
	var req computeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "invalid JSON payload", nil)
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(req); err != nil {
			common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "validation failed", err.Error())
			return
		}
	}
	log, err := h.Service.Compute(r.Context(), req.PartnerID, req.DiscountTableID)
	if err != nil {
		common.WriteError(w, err, h.ExposeInternal)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": log})
}
