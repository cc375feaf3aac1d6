// internal/consumption/estimator.go
package consumption

import (
	"math"
	"sort"

	"github.com/mercadofacil/backend-go/internal/domain"
)

// Estimate derives a product's monthly consumption rate from its two most
// recent stock audits plus the purchases recorded between them:
//
//	consumed = previous audit + purchases in (previous, latest] - latest audit
//
// The rate is the 30-day projection of consumed/elapsed-days, rounded to one
// decimal. It reports false when the product has fewer than two audits, the
// only case with no basis for a rate; once two audits exist the rate is
// always returned, even when it is 0.
func Estimate(productID int64, history []domain.HistoryEvent) (float64, bool) {
	var audits []domain.HistoryEvent
	for _, ev := range history {
		if ev.ProductID == productID && ev.Kind == domain.EventAudit {
			audits = append(audits, ev)
		}
	}
	if len(audits) < 2 {
		return 0, false
	}

	sort.Slice(audits, func(i, j int) bool {
		return audits[i].Timestamp.After(audits[j].Timestamp)
	})
	latest, previous := audits[0], audits[1]

	// Same-day re-audits still count as one day of consumption.
	days := int(latest.Timestamp.Sub(previous.Timestamp).Hours() / 24)
	if days == 0 {
		days = 1
	}

	purchased := 0
	for _, ev := range history {
		if ev.ProductID != productID || ev.Kind != domain.EventPurchase {
			continue
		}
		if ev.Timestamp.After(previous.Timestamp) && !ev.Timestamp.After(latest.Timestamp) {
			purchased += ev.Quantity
		}
	}

	consumed := previous.Quantity + purchased - latest.Quantity
	if consumed < 0 {
		// An inconsistent audit would yield negative consumption; treat it
		// as no discernible consumption rather than an error.
		consumed = 0
	}

	rate := float64(consumed) / float64(days) * 30
	return math.Round(rate*10) / 10, true
}
