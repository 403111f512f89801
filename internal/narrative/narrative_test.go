package narrative

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spend-sage/internal/aggregate"
	"github.com/Veraticus/spend-sage/internal/common"
	"github.com/Veraticus/spend-sage/internal/model"
	"github.com/Veraticus/spend-sage/internal/testutil"
)

var profile = model.UserProfile{Goals: []string{"save for house"}, Budget: 2000}

func enriched() []model.Purchase {
	return []model.Purchase{
		{Site: "Amazon", Name: "Wireless Mouse Logitech", Brand: "Logitech", Category: "Electronics", Price: 25, Purchased: true},
	}
}

func TestGenerator_Success(t *testing.T) {
	fake := testutil.NewFakeSummarizer()
	g := New(fake, common.DiscardLogger())
	ctx := context.Background()

	assert.Same(t, fake.Categories, g.DescribeByCategory(ctx, enriched(), profile))
	assert.Same(t, fake.Brands, g.DescribeByBrand(ctx, enriched(), profile))

	graph := aggregate.Graphs(enriched())[0]
	explanation := g.ExplainGraph(ctx, graph, profile)
	require.NotNil(t, explanation)
	assert.Equal(t, graph.Title, explanation.GraphTitle)
}

func TestGenerator_FailuresReturnNil(t *testing.T) {
	graphs := aggregate.Graphs(enriched())
	fake := testutil.NewFakeSummarizer().
		FailAlways(model.StepCategoryAnalysis).
		FailAlways(model.StepBrandAnalysis).
		FailAlways(graphs[2].Title).
		FailAlways(model.StepFinalAdvice)
	g := New(fake, common.DiscardLogger())
	ctx := context.Background()

	assert.Nil(t, g.DescribeByCategory(ctx, enriched(), profile))
	assert.Nil(t, g.DescribeByBrand(ctx, enriched(), profile))
	assert.Nil(t, g.ExplainGraph(ctx, graphs[2], profile))
	assert.NotNil(t, g.ExplainGraph(ctx, graphs[0], profile))
	assert.Nil(t, g.SynthesizeAdvice(ctx, nil, nil, nil, profile))
}

func TestGenerator_SynthesizeAdvice(t *testing.T) {
	fake := testutil.NewFakeSummarizer()
	g := New(fake, common.DiscardLogger())

	first := &model.GraphExplanation{GraphTitle: "One", Explanation: "1"}
	third := &model.GraphExplanation{GraphTitle: "Three", Explanation: "3"}

	advice := g.SynthesizeAdvice(context.Background(), nil, fake.Brands, []*model.GraphExplanation{first, nil, third}, profile)
	assert.Same(t, fake.Advice, advice)

	inputs := fake.SynthesisInputs()
	require.Len(t, inputs, 1)
	require.NotNil(t, inputs[0].CategoryAnalysis)
	assert.Empty(t, inputs[0].CategoryAnalysis.Categories)
	assert.Same(t, fake.Brands, inputs[0].BrandAnalysis)
	assert.Equal(t, []model.GraphExplanation{*first, *third}, inputs[0].GraphExplanations)
}

func TestSynthesisInput_AllAbsent(t *testing.T) {
	in := SynthesisInput(nil, nil, []*model.GraphExplanation{nil, nil})
	require.NotNil(t, in.CategoryAnalysis)
	require.NotNil(t, in.BrandAnalysis)
	assert.NotNil(t, in.CategoryAnalysis.Categories)
	assert.NotNil(t, in.BrandAnalysis.Brands)
	assert.NotNil(t, in.GraphExplanations)
	assert.Empty(t, in.GraphExplanations)
}
