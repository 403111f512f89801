package model

// Classification is the decoded response of a brand/category classifier.
type Classification struct {
	ProductName string `json:"productName"`
	Brand       string `json:"productBrand"`
	Category    string `json:"productCategory"`
}
