package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/noah-isme/partner-discounts/internal/discounts"
	"github.com/noah-isme/partner-discounts/internal/ledger"
)

var hundred = decimal.NewFromInt(100)

// Outcome aggregates the per-tier details and totals of one allocation.
type Outcome struct {
	Details       []ledger.Detail
	TotalGross    decimal.Decimal
	TotalDiscount decimal.Decimal
	TotalNet      decimal.Decimal
}

// Allocate splits a partner's client volume across the table's tiers the way
// tax brackets work: each tier's discount applies only to the clients falling
// inside that tier. Ranges are inclusive on both ends.
//
// Volume below the first tier's floor produces an empty allocation: the gross
// total still counts every client, so the whole amount surfaces as discount.
// That zero-coverage outcome is a valid result, not an error. Gaps between
// tiers leave the volume inside the gap undiscounted; overlapping tiers are
// tolerated by skipping any non-positive allocation.
//
// All arithmetic is exact decimal arithmetic. No per-tier rounding happens,
// so the sum of the per-tier nets always equals TotalNet.
func Allocate(ranges []discounts.Range, clientsAmount int, dailyPrice decimal.Decimal) Outcome {
	finalNet := decimal.Zero
	details := []ledger.Detail{}

	for _, r := range discounts.SortedRanges(ranges) {
		if clientsAmount < r.InitialRange {
			// Volume below this tier's floor: neither this tier nor any
			// higher one is reached.
			break
		}
		items := min(clientsAmount, r.FinalRange) - r.InitialRange + 1
		if items <= 0 {
			continue
		}
		gross := decimal.NewFromInt(int64(items)).Mul(dailyPrice)
		disc := gross.Mul(r.DiscountPercent).Div(hundred)
		net := gross.Sub(disc)
		finalNet = finalNet.Add(net)
		details = append(details, ledger.Detail{
			InitialRange:     r.InitialRange,
			FinalRange:       r.FinalRange,
			DiscountPercent:  r.DiscountPercent,
			ItemsAllocated:   items,
			SubtotalGross:    gross,
			SubtotalDiscount: disc,
			SubtotalNet:      net,
		})
	}

	totalGross := decimal.NewFromInt(int64(clientsAmount)).Mul(dailyPrice)
	return Outcome{
		Details:       details,
		TotalGross:    totalGross,
		TotalDiscount: totalGross.Sub(finalNet),
		TotalNet:      finalNet,
	}
}
