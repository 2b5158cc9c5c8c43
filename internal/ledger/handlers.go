package ledger

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/noah-isme/partner-discounts/internal/common"
)

// HistoryStore captures the read side needed by the handler.
type HistoryStore interface {
	ListByPartner(ctx context.Context, partnerID uuid.UUID) ([]CalculationLog, error)
}

// Handler exposes the calculation history endpoint.
type Handler struct {
	Store          HistoryStore
	ExposeInternal bool
}

// ListByPartner handles GET /api/v1/partners/{id}/logs. An empty history is a
// valid result, not an error.
func (h *Handler) ListByPartner(w http.ResponseWriter, r *http.Request) {
	partnerID, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "id")))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, common.CodeBadRequest, "invalid partner ID", nil)
		return
	}
	logs, err := h.Store.ListByPartner(r.Context(), partnerID)
	if err != nil {
		common.WriteError(w, err, h.ExposeInternal)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": logs})
}
