package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/noah-isme/partner-discounts/internal/discounts"
)

// Detail records one tier's share of a computation.
type Detail struct {
	InitialRange     int             `json:"initialRange"`
	FinalRange       int             `json:"finalRange"`
	DiscountPercent  decimal.Decimal `json:"discountPercent"`
	ItemsAllocated   int             `json:"itemsAllocated"`
	SubtotalGross    decimal.Decimal `json:"subtotalGross"`
	SubtotalDiscount decimal.Decimal `json:"subtotalDiscount"`
	SubtotalNet      decimal.Decimal `json:"subtotalNet"`
}

// CalculationLog is an immutable snapshot of one discount computation. The
// partner's price/volume and the table's nickname/ranges are stamped at
// computation time so later edits or deletions of either entity never change
// the audit record.
type CalculationLog struct {
	ID                            uuid.UUID         `json:"id"`
	PartnerID                     uuid.UUID         `json:"partnerId"`
	DiscountTableID               uuid.UUID         `json:"discountTableId"`
	PartnerDailyPriceStamp        decimal.Decimal   `json:"partnerDailyPriceStamp"`
	PartnerClientsAmountStamp     int               `json:"partnerClientsAmountStamp"`
	TableNicknameStamp            string            `json:"tableNicknameStamp"`
	DiscountRangesStamp           []discounts.Range `json:"discountRangesStamp"`
	Details                       []Detail          `json:"details"`
	TotalPriceResult              decimal.Decimal   `json:"totalPriceResult"`
	TotalDiscountResult           decimal.Decimal   `json:"totalDiscountResult"`
	TotalPriceAfterDiscountResult decimal.Decimal   `json:"totalPriceAfterDiscountResult"`
	CalculationDate               time.Time         `json:"calculationDate"`
}
