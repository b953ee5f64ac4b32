package psp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestOutlierFilterIfNeeded checks that for distances [1, 6, 2], k=1
// gives threshold ~5.6458, so only the column with distance 6 is dropped.
func TestOutlierFilterIfNeeded(t *testing.T) {
	tr := triple([][]float64{{1, 2, 3}}, []string{"r"}, []string{"a", "b", "c"})
	dists := DistanceVector{1, 6, 2}
	offsets := OffsetVector{0.1, 0.2, 0.3}

	result, code, err := OutlierFilterIfNeeded(tr, AssayP100, offsets, dists, 1, ProvenanceCode{"LLB"}, "OSF", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "c"}, result.Triple.C.Index)
	assert.Equal(t, []string{"a", "c"}, result.Remaining)
	assert.Equal(t, OffsetVector{0.1, 0.3}, result.Offsets)
	assert.Contains(t, code, "OSF1")
}

func TestOutlierFilterSkippedForGCP(t *testing.T) {
	tr := triple([][]float64{{1, 2}}, []string{"r"}, []string{"a", "b"})
	result, code, err := OutlierFilterIfNeeded(tr, AssayGCP, nil, nil, 1, ProvenanceCode{}, "OSF", nil)
	require.NoError(t, err)
	assert.Same(t, tr, result.Triple)
	assert.Equal(t, ProvenanceCode{}, code)
}

func TestOutlierFilterEqualDistancesAllSurvive(t *testing.T) {
	tr := triple([][]float64{{1, 2}}, []string{"r"}, []string{"a", "b"})
	dists := DistanceVector{100, 100}
	_, _, err := OutlierFilterIfNeeded(tr, AssayP100, nil, dists, 0, ProvenanceCode{}, "OSF", nil)
	require.NoError(t, err, "mean+k*sd with k=0 equals the mean itself, both values at the threshold survive")
}
