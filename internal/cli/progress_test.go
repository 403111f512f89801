package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgress_LazyBar(t *testing.T) {
	var out bytes.Buffer
	p := NewProgress(&out, "Classifying purchases...")

	p.Update(0, 0)
	assert.Nil(t, p.bar, "no bar without a total")

	p.Update(1, 3)
	require.NotNil(t, p.bar)
	assert.Equal(t, int64(3), p.bar.GetMax64())

	p.Update(3, 3)
	assert.True(t, p.bar.IsFinished())
	assert.Contains(t, out.String(), "3/3")
}

func TestFormatHelpers(t *testing.T) {
	assert.Contains(t, FormatTitle("Advice"), "Advice")
	assert.Contains(t, FormatSuccess("done"), SuccessIcon)
	assert.Contains(t, FormatError("boom"), ErrorIcon)
	assert.Contains(t, RenderBox("Run", "8 steps"), "8 steps")
}
