package partner

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Partner is a contracted client of the platform. It references one discount
// table; the table's lifetime is independent of the partner's.
type Partner struct {
	ID               uuid.UUID       `json:"id"`
	Name             string          `json:"name"`
	DailyPrice       decimal.Decimal `json:"dailyPrice"`
	ClientsAmount    int             `json:"clientsAmount"`
	Type             string          `json:"discountType"`
	DiscountsTableID uuid.UUID       `json:"discountsTableId"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}
