// Package aggregate computes the statistical views of a purchase history.
// Every function is pure and only counts purchases marked as purchased.
package aggregate

import (
	"github.com/Veraticus/spend-sage/internal/model"
	"github.com/shopspring/decimal"
)

// Purchased returns the purchases that were completed, in input order.
func Purchased(purchases []model.Purchase) []model.Purchase {
	out := make([]model.Purchase, 0, len(purchases))
	for _, p := range purchases {
		if p.Purchased {
			out = append(out, p)
		}
	}
	return out
}

// Total sums the price of every purchased item.
func Total(purchases []model.Purchase) float64 {
	sum := decimal.Zero
	for _, p := range purchases {
		if p.Purchased {
			sum = sum.Add(decimal.NewFromFloat(p.Price))
		}
	}
	return sum.InexactFloat64()
}

// SpendByCategory sums spend per category.
func SpendByCategory(purchases []model.Purchase) map[string]float64 {
	return spendBy(purchases, func(p model.Purchase) string { return p.Category })
}

// SpendByBrand sums spend per brand.
func SpendByBrand(purchases []model.Purchase) map[string]float64 {
	return spendBy(purchases, func(p model.Purchase) string { return p.Brand })
}

// SpendBySite sums spend per e-commerce site.
func SpendBySite(purchases []model.Purchase) map[string]float64 {
	return spendBy(purchases, func(p model.Purchase) string { return p.Site })
}

// PurchaseAmounts lists the price of each purchased item in input order.
func PurchaseAmounts(purchases []model.Purchase) []float64 {
	amounts := make([]float64, 0, len(purchases))
	for _, p := range purchases {
		if p.Purchased {
			amounts = append(amounts, p.Price)
		}
	}
	return amounts
}

// CountByCategory counts purchased items per category.
func CountByCategory(purchases []model.Purchase) map[string]int {
	counts := make(map[string]int)
	for _, p := range purchases {
		if p.Purchased {
			counts[p.Category]++
		}
	}
	return counts
}

func spendBy(purchases []model.Purchase, key func(model.Purchase) string) map[string]float64 {
	sums := make(map[string]decimal.Decimal)
	for _, p := range purchases {
		if !p.Purchased {
			continue
		}
		k := key(p)
		sums[k] = sums[k].Add(decimal.NewFromFloat(p.Price))
	}

	out := make(map[string]float64, len(sums))
	for k, v := range sums {
		out[k] = v.InexactFloat64()
	}
	return out
}
