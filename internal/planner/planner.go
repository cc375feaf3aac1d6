package planner

import (
	"strconv"

	"github.com/mercadofacil/backend-go/internal/domain"
)

// ReasonBelowMinimum is reported when the suggestion comes from the
// minimum-stock fallback instead of a consumption estimate.
const ReasonBelowMinimum = "below minimum stock"

// Plan returns the suggested purchase quantity for a product together with a
// human-readable reason. When a monthly consumption rate is available and the
// stock falls short of it, the suggestion tops the stock up to the rate.
// Otherwise it falls back to topping up to MinStock. A fully stocked product
// yields (0, ""). Pure function, no I/O, never negative.
func Plan(p domain.Product, rate float64, hasRate bool) (int, string) {
	if hasRate {
		if need := rate - float64(p.CurrentStock); need > 0 {
			return roundUp(need), "consumption-based, rate=" +
				strconv.FormatFloat(rate, 'f', 1, 64) + "/month"
		}
	}
	if need := p.MinStock - p.CurrentStock; need > 0 {
		return roundUp(float64(need)), ReasonBelowMinimum
	}
	return 0, ""
}

// roundUp is the ledger's historical rounding rule: add 0.9 and truncate
// toward zero. Unlike math.Ceil it leaves values a hair above an integer
// (3.01 -> 3) alone, and exact integers pass through unchanged.
func roundUp(need float64) int {
	return int(need + 0.9)
}
