package llm

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/Veraticus/spend-sage/internal/model"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

const systemPromptJSON = "You are a financial advisor. You MUST respond with ONLY a valid JSON object. Do not include any explanatory text, markdown formatting, or commentary before or after the JSON. Start your response directly with { and end with }."

const (
	categorySchema = `{
  "categories": [
    {
      "category_name": "Electronics",
      "products": [
        {"product_name": "Wireless Mouse Logitech", "description": "Habit description."}
      ]
    }
  ]
}`
	brandSchema = `{
  "brands": [
    {
      "brand_name": "Logitech",
      "products": [
        {"product_name": "Wireless Mouse Logitech", "description": "Habit description."}
      ]
    }
  ]
}`
)

// promptBuilder renders the embedded prompt templates.
type promptBuilder struct {
	templates map[string]*template.Template
}

func newPromptBuilder() (*promptBuilder, error) {
	pb := &promptBuilder{templates: make(map[string]*template.Template)}

	funcMap := template.FuncMap{
		"json":   toIndentedJSON,
		"labels": formatLabels,
	}

	for _, name := range []string{"classify", "groups", "graph", "synthesis"} {
		filename := fmt.Sprintf("templates/%s.tmpl", name)
		tmpl, err := template.New(name + ".tmpl").Funcs(funcMap).ParseFS(templateFS, filename)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		pb.templates[name] = tmpl
	}

	return pb, nil
}

func (pb *promptBuilder) render(name string, data any) (string, error) {
	tmpl, ok := pb.templates[name]
	if !ok {
		return "", fmt.Errorf("unknown template %s", name)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s prompt: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}

func (pb *promptBuilder) classify(productName string, brands, categories []string) (string, error) {
	return pb.render("classify", struct {
		ProductName string
		Brands      []string
		Categories  []string
	}{productName, brands, categories})
}

func (pb *promptBuilder) groups(kind, schema string, groups []model.PurchaseGroup, profile model.UserProfile) (string, error) {
	data, err := groupsJSON(groups)
	if err != nil {
		return "", err
	}
	return pb.render("groups", struct {
		Kind    string
		Schema  string
		Groups  string
		Profile model.UserProfile
	}{kind, schema, data, profile})
}

func (pb *promptBuilder) graph(graph model.Graph, profile model.UserProfile) (string, error) {
	return pb.render("graph", struct {
		Graph   model.Graph
		Profile model.UserProfile
	}{graph, profile})
}

// synthesis substitutes empty structures for absent artifacts.
func (pb *promptBuilder) synthesis(input model.SynthesisInput, profile model.UserProfile) (string, error) {
	var categories any = map[string]any{}
	if input.CategoryAnalysis != nil {
		categories = input.CategoryAnalysis
	}
	var brands any = map[string]any{}
	if input.BrandAnalysis != nil {
		brands = input.BrandAnalysis
	}
	graphs := input.GraphExplanations
	if graphs == nil {
		graphs = []model.GraphExplanation{}
	}

	return pb.render("synthesis", struct {
		Categories any
		Brands     any
		Graphs     []model.GraphExplanation
		Profile    model.UserProfile
	}{categories, brands, graphs, profile})
}

// groupsJSON serializes groups as a JSON object keyed by group name,
// preserving group order.
func groupsJSON(groups []model.PurchaseGroup) (string, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, g := range groups {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(g.Key)
		if err != nil {
			return "", err
		}
		purchases := g.Purchases
		if purchases == nil {
			purchases = []model.Purchase{}
		}
		value, err := json.Marshal(purchases)
		if err != nil {
			return "", fmt.Errorf("failed to marshal group %s: %w", g.Key, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return "", err
	}
	return out.String(), nil
}

func toIndentedJSON(v any) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func formatLabels(labels []string) string {
	if len(labels) == 0 {
		return "None"
	}
	return "[" + strings.Join(labels, ", ") + "]"
}
