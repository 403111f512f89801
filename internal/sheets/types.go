package sheets

import (
	"github.com/shopspring/decimal"
)

// PurchaseRow represents a single row in the purchase details section.
type PurchaseRow struct {
	Site     string
	Product  string
	Brand    string
	Category string
	Price    decimal.Decimal
}

// SpendRow represents one key of a spend breakdown.
type SpendRow struct {
	Key    string
	Amount decimal.Decimal
	Count  int
}

// TabData holds all the data for one advice export.
type TabData struct {
	Username        string
	GeneratedAt     string
	Total           decimal.Decimal
	Budget          decimal.Decimal
	Goals           []string
	CategorySummary []SpendRow
	BrandSummary    []SpendRow
	SiteSummary     []SpendRow
	Purchases       []PurchaseRow
	Explanations    [][2]string // title, explanation
	Summary         string
	Recommendations []string
}
