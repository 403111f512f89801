package model

// GraphKind identifies one of the aggregate views.
type GraphKind string

// Aggregate views explained for every run, in presentation order.
const (
	GraphCategorySpend   GraphKind = "category_spend"
	GraphBrandSpend      GraphKind = "brand_spend"
	GraphSiteSpend       GraphKind = "site_spend"
	GraphPurchaseAmounts GraphKind = "purchase_amounts"
	GraphCategoryCounts  GraphKind = "category_counts"
)

// Graph is an aggregate view together with the labels a reader would see on a chart.
type Graph struct {
	Data   any       `json:"data"`
	Kind   GraphKind `json:"kind"`
	Title  string    `json:"title"`
	XLabel string    `json:"x_label"`
	YLabel string    `json:"y_label"`
}
