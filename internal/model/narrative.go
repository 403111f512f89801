package model

// ProductDescription describes the customer's habits around one product.
type ProductDescription struct {
	ProductName string `json:"product_name"`
	Description string `json:"description"`
}

// ProductCategory groups product descriptions under a category.
type ProductCategory struct {
	CategoryName string               `json:"category_name"`
	Products     []ProductDescription `json:"products"`
}

// CategoryDescriptions is the category-based analysis of a purchase history.
type CategoryDescriptions struct {
	Categories []ProductCategory `json:"categories"`
}

// BrandAnalysis groups product descriptions under a brand.
type BrandAnalysis struct {
	BrandName string               `json:"brand_name"`
	Products  []ProductDescription `json:"products"`
}

// BrandDescriptions is the brand-based analysis of a purchase history.
type BrandDescriptions struct {
	Brands []BrandAnalysis `json:"brands"`
}

// GraphExplanation explains one aggregate view.
type GraphExplanation struct {
	GraphTitle  string `json:"graph_title"`
	Explanation string `json:"explanation"`
}

// FinalAdvice is the synthesized summary and ranked recommendations.
type FinalAdvice struct {
	Summary         string   `json:"summary"`
	Recommendations []string `json:"recommendations"`
}

// SynthesisInput carries every narrative artifact into the synthesis step.
// Absent artifacts are replaced with empty structures before serialization.
type SynthesisInput struct {
	CategoryAnalysis  *CategoryDescriptions `json:"category_analysis"`
	BrandAnalysis     *BrandDescriptions    `json:"brand_analysis"`
	GraphExplanations []GraphExplanation    `json:"graph_explanations"`
}
