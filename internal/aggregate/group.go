package aggregate

import "github.com/Veraticus/spend-sage/internal/model"

// GroupByCategory groups purchases under their category. Groups appear in
// the order their key was first seen and keep input order within a group.
func GroupByCategory(purchases []model.Purchase) []model.PurchaseGroup {
	return groupBy(purchases, func(p model.Purchase) string { return p.Category })
}

// GroupByBrand groups purchases under their brand.
func GroupByBrand(purchases []model.Purchase) []model.PurchaseGroup {
	return groupBy(purchases, func(p model.Purchase) string { return p.Brand })
}

// Flatten concatenates the purchases of every group.
func Flatten(groups []model.PurchaseGroup) []model.Purchase {
	var out []model.Purchase
	for _, g := range groups {
		out = append(out, g.Purchases...)
	}
	return out
}

func groupBy(purchases []model.Purchase, key func(model.Purchase) string) []model.PurchaseGroup {
	index := make(map[string]int)
	var groups []model.PurchaseGroup
	for _, p := range purchases {
		k := key(p)
		i, ok := index[k]
		if !ok {
			i = len(groups)
			index[k] = i
			groups = append(groups, model.PurchaseGroup{Key: k})
		}
		groups[i].Purchases = append(groups[i].Purchases, p)
	}
	return groups
}
