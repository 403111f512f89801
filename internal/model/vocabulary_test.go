package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeLabel(t *testing.T) {
	tests := []struct {
		name          string
		existing      []string
		candidate     string
		wantCanonical string
		wantLabels    []string
	}{
		{
			name:          "new label is appended",
			existing:      []string{"Nike"},
			candidate:     "Adidas",
			wantCanonical: "Adidas",
			wantLabels:    []string{"Nike", "Adidas"},
		},
		{
			name:          "case variant resolves to first-seen spelling",
			existing:      []string{"Nike"},
			candidate:     "nike",
			wantCanonical: "Nike",
			wantLabels:    []string{"Nike"},
		},
		{
			name:          "surrounding whitespace is ignored",
			existing:      []string{"Home Appliances"},
			candidate:     "  home appliances ",
			wantCanonical: "Home Appliances",
			wantLabels:    []string{"Home Appliances"},
		},
		{
			name:          "blank candidate leaves set unchanged",
			existing:      []string{"Electronics"},
			candidate:     "   ",
			wantCanonical: "",
			wantLabels:    []string{"Electronics"},
		},
		{
			name:          "empty set",
			candidate:     "Logitech",
			wantCanonical: "Logitech",
			wantLabels:    []string{"Logitech"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := NewLabelSet(tt.existing...)
			before := set.Labels()

			canonical, updated := MergeLabel(set, tt.candidate)

			assert.Equal(t, tt.wantCanonical, canonical)
			assert.Equal(t, tt.wantLabels, updated.Labels())
			assert.Equal(t, before, set.Labels(), "input set must not change")
		})
	}
}

func TestMergeLabel_DoesNotAliasInput(t *testing.T) {
	base := NewLabelSet("A", "B")
	_, first := MergeLabel(base, "C")
	_, second := MergeLabel(base, "D")

	assert.Equal(t, []string{"A", "B", "C"}, first.Labels())
	assert.Equal(t, []string{"A", "B", "D"}, second.Labels())
	assert.Equal(t, []string{"A", "B"}, base.Labels())
}

func TestMergeLabel_Idempotent(t *testing.T) {
	variants := []string{"NIKE", "nike", "Nike", "nIkE"}
	set := NewLabelSet("Nike")
	for _, v := range variants {
		canonical, updated := MergeLabel(set, v)
		assert.Equal(t, "Nike", canonical)
		assert.Equal(t, 1, updated.Len())

		again, _ := MergeLabel(updated, canonical)
		assert.Equal(t, canonical, again)
	}
}

func TestNewLabelSet_DeduplicatesByCase(t *testing.T) {
	set := NewLabelSet("Electronics", "electronics", "Books", "BOOKS", "")
	assert.Equal(t, []string{"Electronics", "Books"}, set.Labels())
}

func TestVocabulary_VersionTracksGrowth(t *testing.T) {
	v := NewVocabulary(nil, []string{"Electronics"})
	assert.Equal(t, 0, v.Version)

	assert.Equal(t, "Logitech", v.MergeBrand("Logitech"))
	assert.Equal(t, 1, v.Version)

	assert.Equal(t, "Logitech", v.MergeBrand("LOGITECH"))
	assert.Equal(t, "Electronics", v.MergeCategory("electronics"))
	assert.Equal(t, 1, v.Version, "resolving existing labels must not bump the version")

	assert.Equal(t, "Footwear", v.MergeCategory("Footwear"))
	assert.Equal(t, 2, v.Version)

	brands, categories := v.Snapshot()
	assert.Equal(t, []string{"Logitech"}, brands)
	assert.Equal(t, []string{"Electronics", "Footwear"}, categories)

	brands[0] = "mutated"
	assert.Equal(t, []string{"Logitech"}, v.Brands.Labels(), "snapshot must be a copy")
}

func TestPurchaseFromEvent(t *testing.T) {
	p := PurchaseFromEvent(ProductEvent{Platform: "Amazon", ProductTitle: "Wireless Mouse Logitech", Price: 25})

	assert.Equal(t, Purchase{Site: "Amazon", Name: "Wireless Mouse Logitech", Price: 25, Purchased: true}, p)
	assert.False(t, p.IsEnriched())

	p.Brand, p.Category = "Logitech", "Electronics"
	assert.True(t, p.IsEnriched())
}

func TestReport_GraphExplanationsSkipsMissing(t *testing.T) {
	r := &Report{
		Graphs: []GraphResult{
			{Explanation: &GraphExplanation{GraphTitle: "one"}},
			{},
			{Explanation: &GraphExplanation{GraphTitle: "three"}},
		},
		Steps: []StepOutcome{
			{Step: "a", Status: StepSuccess},
			{Step: "b", Status: StepFailed},
		},
	}

	assert.Equal(t, []GraphExplanation{{GraphTitle: "one"}, {GraphTitle: "three"}}, r.GraphExplanations())
	assert.Equal(t, []StepOutcome{{Step: "b", Status: StepFailed}}, r.FailedSteps())
}
