package model

// Sentinel labels assigned when a product cannot be classified.
const (
	UnknownBrand          = "Unknown"
	MiscellaneousCategory = "Miscellaneous"
)

// Purchase is a product event normalized for analysis. Brand and Category
// are empty until enrichment assigns them.
type Purchase struct {
	Site      string  `json:"ecommerceSite"`
	Name      string  `json:"productName"`
	Brand     string  `json:"productBrand,omitempty"`
	Category  string  `json:"productCategory,omitempty"`
	Price     float64 `json:"productPrice"`
	Purchased bool    `json:"productPurchased"`
}

// PurchaseFromEvent maps a raw event into an unenriched purchase.
// Every recorded event counts as purchased.
func PurchaseFromEvent(e ProductEvent) Purchase {
	return Purchase{
		Site:      e.Platform,
		Name:      e.ProductTitle,
		Price:     e.Price,
		Purchased: true,
	}
}

// IsEnriched reports whether both brand and category have been assigned.
func (p Purchase) IsEnriched() bool {
	return p.Brand != "" && p.Category != ""
}

// PurchaseGroup holds the purchases sharing one brand or category.
type PurchaseGroup struct {
	Key       string
	Purchases []Purchase
}
