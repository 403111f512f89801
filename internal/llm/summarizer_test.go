package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spend-sage/internal/common"
	"github.com/Veraticus/spend-sage/internal/model"
)

var testProfile = model.UserProfile{Goals: []string{"Save for a house"}, Budget: 2000}

func testGroups() []model.PurchaseGroup {
	return []model.PurchaseGroup{
		{Key: "Electronics", Purchases: []model.Purchase{{Site: "Amazon", Name: "Galaxy S21", Brand: "Samsung", Category: "Electronics", Price: 799.99, Purchased: true}}},
		{Key: "Apparel", Purchases: []model.Purchase{{Site: "Nike", Name: "Air Max", Brand: "Nike", Category: "Apparel", Price: 120, Purchased: true}}},
	}
}

func newTestSummarizer(t *testing.T, client Client) *Summarizer {
	t.Helper()
	s, err := NewSummarizer(client, common.DiscardLogger())
	require.NoError(t, err)
	return s
}

func TestSummarizer_DescribeCategories(t *testing.T) {
	client := &fakeClient{responses: []string{`{"categories":[{"category_name":"Electronics","products":[{"product_name":"Galaxy S21","description":"One phone."}]}]}`}}
	s := newTestSummarizer(t, client)

	got, err := s.DescribeCategories(context.Background(), testGroups(), testProfile)
	require.NoError(t, err)
	require.Len(t, got.Categories, 1)
	assert.Equal(t, "Electronics", got.Categories[0].CategoryName)

	prompt := client.prompts[0]
	assert.Contains(t, prompt, "grouped by category")
	assert.Contains(t, prompt, `"Save for a house"`)
	assert.Contains(t, prompt, "User Monthly Budget: 2000")
	// groups keep their order
	assert.Less(t, strings.Index(prompt, `"Electronics": [`), strings.Index(prompt, `"Apparel": [`))
}

func TestSummarizer_DescribeBrands(t *testing.T) {
	client := &fakeClient{responses: []string{`{"brands":[{"brand_name":"Samsung","products":[]}]}`}}
	s := newTestSummarizer(t, client)

	got, err := s.DescribeBrands(context.Background(), testGroups(), testProfile)
	require.NoError(t, err)
	require.Len(t, got.Brands, 1)
	assert.Contains(t, client.prompts[0], "grouped by brand")
}

func TestSummarizer_ExplainGraph(t *testing.T) {
	client := &fakeClient{responses: []string{`{"explanation":"Electronics dominates."}`}}
	s := newTestSummarizer(t, client)

	graph := model.Graph{
		Kind:   model.GraphCategorySpend,
		Title:  "Total Spending by Category",
		XLabel: "Product Category",
		YLabel: "Total Spending ($)",
		Data:   map[string]float64{"Electronics": 799.99},
	}
	got, err := s.ExplainGraph(context.Background(), graph, testProfile)
	require.NoError(t, err)
	assert.Equal(t, "Total Spending by Category", got.GraphTitle)
	assert.Equal(t, "Electronics dominates.", got.Explanation)
	assert.Contains(t, client.prompts[0], "relationship between Product Category and Total Spending ($)")
	assert.Contains(t, client.prompts[0], `"Electronics": 799.99`)
}

func TestSummarizer_Synthesize(t *testing.T) {
	client := &fakeClient{responses: []string{`{"summary":"You spend on gadgets.","recommendations":["Cut gadgets."]}`}}
	s := newTestSummarizer(t, client)

	got, err := s.Synthesize(context.Background(), model.SynthesisInput{}, testProfile)
	require.NoError(t, err)
	assert.Equal(t, "You spend on gadgets.", got.Summary)
	assert.Equal(t, []string{"Cut gadgets."}, got.Recommendations)

	// absent artifacts render as empty structures, never null
	prompt := client.prompts[0]
	assert.Contains(t, prompt, "Category-Based Analysis:\n{}")
	assert.Contains(t, prompt, "Brand-Based Analysis:\n{}")
	assert.Contains(t, prompt, "Graph Explanations:\n[]")
	assert.NotContains(t, prompt, "null")
}

func TestSummarizer_SingleAttempt(t *testing.T) {
	client := &fakeClient{errs: []error{errors.New("timeout")}, responses: []string{`{"brands":[]}`}}
	s := newTestSummarizer(t, client)

	_, err := s.DescribeBrands(context.Background(), testGroups(), testProfile)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrGenerationFailed)
	assert.Equal(t, 1, client.callCount())
}

func TestSummarizer_MalformedReply(t *testing.T) {
	client := &fakeClient{responses: []string{`{"summary":"only"}`}}
	s := newTestSummarizer(t, client)

	_, err := s.Synthesize(context.Background(), model.SynthesisInput{}, testProfile)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrGenerationFailed)
	assert.True(t, IsParseError(err))
}

func TestGroupsJSON(t *testing.T) {
	out, err := groupsJSON(nil)
	require.NoError(t, err)
	assert.Equal(t, "{}", out)

	out, err = groupsJSON([]model.PurchaseGroup{{Key: "Empty"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"Empty":[]}`, out)
}
