package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanMarkdownWrapper(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding space", "  \n{\"a\":1}\n ", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanMarkdownWrapper(tt.input))
		})
	}
}

func TestParseClassification(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		wantBrand  string
		wantReason string
	}{
		{name: "valid", content: `{"productName":"x","productBrand":" Sony ","productCategory":"Audio"}`, wantBrand: "Sony"},
		{name: "extra keys ignored", content: `{"productBrand":"Sony","productCategory":"Audio","confidence":0.9}`, wantBrand: "Sony"},
		{name: "no object", content: "no idea", wantReason: "no JSON object"},
		{name: "broken json", content: `{"productBrand": "Sony",`, wantReason: "no JSON object"},
		{name: "missing brand", content: `{"productCategory":"Audio"}`, wantReason: "missing productBrand"},
		{name: "null brand", content: `{"productBrand":null,"productCategory":"Audio"}`, wantReason: "productBrand is not a string"},
		{name: "list category", content: `{"productBrand":"Sony","productCategory":["Audio"]}`, wantReason: "productCategory is not a string"},
		{name: "blank category", content: `{"productBrand":"Sony","productCategory":"  "}`, wantReason: "empty productCategory"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseClassification(tt.content, "WH-1000XM5")
			if tt.wantReason != "" {
				require.Error(t, err)
				var pe *ParseError
				require.ErrorAs(t, err, &pe)
				assert.Equal(t, tt.wantReason, pe.Reason)
				assert.True(t, IsParseError(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "WH-1000XM5", got.ProductName)
			assert.Equal(t, tt.wantBrand, got.Brand)
			assert.Equal(t, "Audio", got.Category)
		})
	}
}

func TestParseCategoryDescriptions(t *testing.T) {
	got, err := parseCategoryDescriptions(`{"categories":[{"category_name":"Electronics","products":[{"product_name":"Phone","description":"Buys often."}]}]}`)
	require.NoError(t, err)
	require.Len(t, got.Categories, 1)
	assert.Equal(t, "Electronics", got.Categories[0].CategoryName)
	assert.Equal(t, "Buys often.", got.Categories[0].Products[0].Description)

	got, err = parseCategoryDescriptions(`{"categories":[]}`)
	require.NoError(t, err)
	assert.Empty(t, got.Categories)

	_, err = parseCategoryDescriptions(`{"brands":[]}`)
	assert.True(t, IsParseError(err))

	_, err = parseCategoryDescriptions(`{"categories":[{"products":[]}]}`)
	assert.True(t, IsParseError(err))

	_, err = parseCategoryDescriptions(`{"categories":[{"category_name":"X","products":[{"description":"d"}]}]}`)
	assert.True(t, IsParseError(err))
}

func TestParseBrandDescriptions(t *testing.T) {
	got, err := parseBrandDescriptions("```json\n{\"brands\":[{\"brand_name\":\"Nike\",\"products\":[]}]}\n```")
	require.NoError(t, err)
	require.Len(t, got.Brands, 1)
	assert.Equal(t, "Nike", got.Brands[0].BrandName)

	_, err = parseBrandDescriptions(`{"brands":"Nike"}`)
	assert.True(t, IsParseError(err))
}

func TestParseGraphExplanation(t *testing.T) {
	got, err := parseGraphExplanation(`{"graph_title":"T","explanation":"E"}`, "Asked")
	require.NoError(t, err)
	assert.Equal(t, "T", got.GraphTitle)
	assert.Equal(t, "E", got.Explanation)

	got, err = parseGraphExplanation(`{"explanation":"E"}`, "Asked")
	require.NoError(t, err)
	assert.Equal(t, "Asked", got.GraphTitle)

	_, err = parseGraphExplanation(`{"graph_title":"T"}`, "Asked")
	assert.True(t, IsParseError(err))
}

func TestParseFinalAdvice(t *testing.T) {
	got, err := parseFinalAdvice(`{"summary":"S","recommendations":["a"," ","b"]}`)
	require.NoError(t, err)
	assert.Equal(t, "S", got.Summary)
	assert.Equal(t, []string{"a", "b"}, got.Recommendations)

	got, err = parseFinalAdvice(`{"summary":"S","recommendations":null}`)
	require.NoError(t, err)
	assert.NotNil(t, got.Recommendations)
	assert.Empty(t, got.Recommendations)

	_, err = parseFinalAdvice(`{"summary":"S"}`)
	assert.True(t, IsParseError(err))

	_, err = parseFinalAdvice(`{"summary":"S","recommendations":[1,2]}`)
	assert.True(t, IsParseError(err))

	_, err = parseFinalAdvice(`{"recommendations":[]}`)
	assert.True(t, IsParseError(err))
}

func TestParseError_TruncatesContent(t *testing.T) {
	long := make([]byte, 500)
	for i := range long {
		long[i] = 'x'
	}
	err := &ParseError{Reason: "r", Content: string(long)}
	assert.Less(t, len(err.Error()), 300)
}
