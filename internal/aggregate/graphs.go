package aggregate

import "github.com/Veraticus/spend-sage/internal/model"

// Graphs builds the five aggregate views in presentation order.
func Graphs(purchases []model.Purchase) []model.Graph {
	return []model.Graph{
		{
			Kind:   model.GraphCategorySpend,
			Title:  "Total Spending by Product Category",
			XLabel: "Product Categories",
			YLabel: "Total Spending",
			Data:   SpendByCategory(purchases),
		},
		{
			Kind:   model.GraphBrandSpend,
			Title:  "Total Spending by Brand",
			XLabel: "Product Brands",
			YLabel: "Total Spending",
			Data:   SpendByBrand(purchases),
		},
		{
			Kind:   model.GraphSiteSpend,
			Title:  "Spending Distribution Across E-commerce Sites",
			XLabel: "E-commerce Sites",
			YLabel: "Total Spending",
			Data:   SpendBySite(purchases),
		},
		{
			Kind:   model.GraphPurchaseAmounts,
			Title:  "Average Spending per Purchase",
			XLabel: "Individual Purchases",
			YLabel: "Purchase Amount",
			Data:   map[string][]float64{"purchase_prices": PurchaseAmounts(purchases)},
		},
		{
			Kind:   model.GraphCategoryCounts,
			Title:  "Number of Purchases per Product Category",
			XLabel: "Product Categories",
			YLabel: "Number of Purchases",
			Data:   CountByCategory(purchases),
		},
	}
}
