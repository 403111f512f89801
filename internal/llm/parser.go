package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/spend-sage/internal/model"
)

// ParseError reports a model response that could not be turned into the
// expected structure.
type ParseError struct {
	Reason  string
	Content string
}

func (e *ParseError) Error() string {
	content := e.Content
	if len(content) > 200 {
		content = content[:200] + "..."
	}
	return fmt.Sprintf("unparseable model response (%s): %q", e.Reason, content)
}

// IsParseError reports whether err is or wraps a *ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// cleanMarkdownWrapper strips a ```json fence that models sometimes add
// despite being told not to.
func cleanMarkdownWrapper(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```JSON")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	return strings.TrimSpace(content)
}

// extractJSONObject returns the outermost {...} span of content.
func extractJSONObject(content string) (string, bool) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end < start {
		return "", false
	}
	return content[start : end+1], true
}

// decodeObject unmarshals the JSON object in content into v.
func decodeObject(content string, v any) error {
	cleaned := cleanMarkdownWrapper(content)
	obj, ok := extractJSONObject(cleaned)
	if !ok {
		return &ParseError{Reason: "no JSON object", Content: content}
	}
	if err := json.Unmarshal([]byte(obj), v); err != nil {
		return &ParseError{Reason: err.Error(), Content: content}
	}
	return nil
}

// requireString decodes a required string field. Absent, null, non-string
// and blank values are all rejected.
func requireString(fields map[string]json.RawMessage, key, content string) (string, error) {
	raw, ok := fields[key]
	if !ok {
		return "", &ParseError{Reason: "missing " + key, Content: content}
	}
	if strings.TrimSpace(string(raw)) == "null" {
		return "", &ParseError{Reason: key + " is not a string", Content: content}
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", &ParseError{Reason: key + " is not a string", Content: content}
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", &ParseError{Reason: "empty " + key, Content: content}
	}
	return s, nil
}

// parseClassification validates a classification reply. productName is
// optional in the reply; the caller's product name wins.
func parseClassification(content, productName string) (model.Classification, error) {
	var fields map[string]json.RawMessage
	if err := decodeObject(content, &fields); err != nil {
		return model.Classification{}, err
	}

	brand, err := requireString(fields, "productBrand", content)
	if err != nil {
		return model.Classification{}, err
	}
	category, err := requireString(fields, "productCategory", content)
	if err != nil {
		return model.Classification{}, err
	}

	return model.Classification{
		ProductName: productName,
		Brand:       brand,
		Category:    category,
	}, nil
}

func parseCategoryDescriptions(content string) (*model.CategoryDescriptions, error) {
	var wire struct {
		Categories *[]model.ProductCategory `json:"categories"`
	}
	if err := decodeObject(content, &wire); err != nil {
		return nil, err
	}
	if wire.Categories == nil {
		return nil, &ParseError{Reason: "missing categories", Content: content}
	}
	for _, c := range *wire.Categories {
		if strings.TrimSpace(c.CategoryName) == "" {
			return nil, &ParseError{Reason: "category without category_name", Content: content}
		}
		if err := checkDescriptions(c.Products, content); err != nil {
			return nil, err
		}
	}
	return &model.CategoryDescriptions{Categories: *wire.Categories}, nil
}

func parseBrandDescriptions(content string) (*model.BrandDescriptions, error) {
	var wire struct {
		Brands *[]model.BrandAnalysis `json:"brands"`
	}
	if err := decodeObject(content, &wire); err != nil {
		return nil, err
	}
	if wire.Brands == nil {
		return nil, &ParseError{Reason: "missing brands", Content: content}
	}
	for _, b := range *wire.Brands {
		if strings.TrimSpace(b.BrandName) == "" {
			return nil, &ParseError{Reason: "brand without brand_name", Content: content}
		}
		if err := checkDescriptions(b.Products, content); err != nil {
			return nil, err
		}
	}
	return &model.BrandDescriptions{Brands: *wire.Brands}, nil
}

func checkDescriptions(products []model.ProductDescription, content string) error {
	for _, p := range products {
		if strings.TrimSpace(p.ProductName) == "" {
			return &ParseError{Reason: "product without product_name", Content: content}
		}
	}
	return nil
}

// parseGraphExplanation validates an explanation reply. A missing
// graph_title falls back to the title of the graph that was asked about.
func parseGraphExplanation(content, graphTitle string) (*model.GraphExplanation, error) {
	var fields map[string]json.RawMessage
	if err := decodeObject(content, &fields); err != nil {
		return nil, err
	}

	explanation, err := requireString(fields, "explanation", content)
	if err != nil {
		return nil, err
	}

	title, err := requireString(fields, "graph_title", content)
	if err != nil {
		title = graphTitle
	}

	return &model.GraphExplanation{GraphTitle: title, Explanation: explanation}, nil
}

func parseFinalAdvice(content string) (*model.FinalAdvice, error) {
	var fields map[string]json.RawMessage
	if err := decodeObject(content, &fields); err != nil {
		return nil, err
	}

	summary, err := requireString(fields, "summary", content)
	if err != nil {
		return nil, err
	}

	raw, ok := fields["recommendations"]
	if !ok {
		return nil, &ParseError{Reason: "missing recommendations", Content: content}
	}
	var recommendations []string
	if err := json.Unmarshal(raw, &recommendations); err != nil {
		return nil, &ParseError{Reason: "recommendations is not a list of strings", Content: content}
	}

	kept := make([]string, 0, len(recommendations))
	for _, r := range recommendations {
		if r = strings.TrimSpace(r); r != "" {
			kept = append(kept, r)
		}
	}

	return &model.FinalAdvice{Summary: summary, Recommendations: kept}, nil
}
