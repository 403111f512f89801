package aggregate

import (
	"sort"

	"github.com/Veraticus/spend-sage/internal/model"
	"github.com/shopspring/decimal"
)

// Sessions summarizes events per session ID, earliest session first.
// Events without a session ID are left out.
func Sessions(events []model.ProductEvent) []model.SessionSummary {
	type acc struct {
		summary   model.SessionSummary
		total     decimal.Decimal
		products  map[string]struct{}
		platforms map[string]struct{}
	}

	byID := make(map[string]*acc)
	var order []string
	for _, e := range events {
		if e.SessionID == "" {
			continue
		}
		a, ok := byID[e.SessionID]
		if !ok {
			a = &acc{
				summary:   model.SessionSummary{SessionID: e.SessionID, Start: e.Timestamp, End: e.Timestamp},
				products:  make(map[string]struct{}),
				platforms: make(map[string]struct{}),
			}
			byID[e.SessionID] = a
			order = append(order, e.SessionID)
		}

		a.summary.Events++
		a.total = a.total.Add(decimal.NewFromFloat(e.Price))
		if e.Timestamp.Before(a.summary.Start) {
			a.summary.Start = e.Timestamp
		}
		if e.Timestamp.After(a.summary.End) {
			a.summary.End = e.Timestamp
		}

		product := e.ProductURL
		if product == "" {
			product = e.ProductTitle
		}
		a.products[product] = struct{}{}
		if _, seen := a.platforms[e.Platform]; !seen {
			a.platforms[e.Platform] = struct{}{}
			a.summary.Platforms = append(a.summary.Platforms, e.Platform)
		}
	}

	out := make([]model.SessionSummary, 0, len(order))
	for _, id := range order {
		a := byID[id]
		a.summary.ProductsViewed = len(a.products)
		a.summary.Total = a.total.InexactFloat64()
		out = append(out, a.summary)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}
