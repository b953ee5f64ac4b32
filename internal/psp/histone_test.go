package psp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoneNormalize(t *testing.T) {
	tr := triple([][]float64{{1, 2}, {3, 4}, {5, 6}}, []string{"a", "b", "c"}, []string{"x", "y"})
	out, err := HistoneNormalize(tr, "b")
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "c"}, out.R.Index)
	assert.Equal(t, [][]float64{{-2, -2}, {2, 2}}, out.D.Values)
}

func TestHistoneNormalizeMissingPeptide(t *testing.T) {
	tr := triple([][]float64{{1}}, []string{"a"}, []string{"x"})
	_, err := HistoneNormalize(tr, "missing")
	require.Error(t, err)
}

func TestHistoneNormalizeIfNeededSkipsWhenNoPeptide(t *testing.T) {
	tr := triple([][]float64{{1}}, []string{"a"}, []string{"x"})
	out, code, err := HistoneNormalizeIfNeeded(tr, "", ProvenanceCode{"L2X"}, "H3N", nil)
	require.NoError(t, err)
	assert.Same(t, tr, out)
	assert.Equal(t, ProvenanceCode{"L2X"}, code)
}
