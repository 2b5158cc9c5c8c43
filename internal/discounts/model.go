package discounts

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Discount table types. A base table is the designated fallback target for
// cascade reassignment; personal tables are contracted per partner.
const (
	TypeBase     = "base"
	TypePersonal = "personal"
)

// Range is an inclusive client-count bracket carrying one discount percentage.
type Range struct {
	InitialRange    int             `json:"initialRange"`
	FinalRange      int             `json:"finalRange"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
}

// Table aggregates an ordered set of discount ranges under a unique nickname.
type Table struct {
	ID        uuid.UUID `json:"id"`
	Nickname  string    `json:"nickname"`
	Type      string    `json:"discountType"`
	Ranges    []Range   `json:"ranges"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ValidType reports whether t is a known discount type.
func ValidType(t string) bool {
	return t == TypeBase || t == TypePersonal
}

// ValidateNickname enforces the 3-100 character contract.
func ValidateNickname(nickname string) error {
	trimmed := strings.TrimSpace(nickname)
	if len(trimmed) < 3 || len(trimmed) > 100 {
		return fmt.Errorf("nickname must be between 3 and 100 characters")
	}
	return nil
}

// ValidateRanges checks every range for structural sanity. With strict set,
// overlapping brackets are rejected as well; otherwise overlaps are tolerated
// and left to the calculator's defensive skip.
func ValidateRanges(ranges []Range, strict bool) error {
	if len(ranges) == 0 {
		return fmt.Errorf("at least one range is required")
	}
	for _, r := range ranges {
		if r.InitialRange < 0 || r.FinalRange < 0 {
			return fmt.Errorf("range bounds must not be negative")
		}
		if r.InitialRange >= r.FinalRange {
			return fmt.Errorf("initial range must be less than final range")
		}
		if r.DiscountPercent.IsNegative() || r.DiscountPercent.GreaterThan(decimal.NewFromInt(100)) {
			return fmt.Errorf("discount percent must be between 0 and 100")
		}
	}
	if strict {
		sorted := SortedRanges(ranges)
		for i := 1; i < len(sorted); i++ {
			if sorted[i].InitialRange <= sorted[i-1].FinalRange {
				return fmt.Errorf("ranges [%d,%d] and [%d,%d] overlap",
					sorted[i-1].InitialRange, sorted[i-1].FinalRange,
					sorted[i].InitialRange, sorted[i].FinalRange)
			}
		}
	}
	return nil
}

// SortedRanges returns a copy of ranges ordered ascending by initial bound.
func SortedRanges(ranges []Range) []Range {
	sorted := make([]Range, len(ranges))
	copy(sorted, ranges)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].InitialRange < sorted[j].InitialRange
	})
	return sorted
}

// RangesEqual reports whether two range sets describe the same brackets,
// ignoring declaration order.
func RangesEqual(a, b []Range) bool {
	if len(a) != len(b) {
		return false
	}
	sa := SortedRanges(a)
	sb := SortedRanges(b)
	for i := range sa {
		if sa[i].InitialRange != sb[i].InitialRange ||
			sa[i].FinalRange != sb[i].FinalRange ||
			!sa[i].DiscountPercent.Equal(sb[i].DiscountPercent) {
			return false
		}
	}
	return true
}
