package psp

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogTransform(t *testing.T) {
	d := &Matrix{Values: [][]float64{{4, -1}, {Missing, 16}}}
	out := LogTransform(d, 2)
	assert.Equal(t, 2.0, out.Values[0][0])
	assert.True(t, IsMissing(out.Values[0][1]), "non-positive values become missing")
	assert.True(t, IsMissing(out.Values[1][0]))
	assert.Equal(t, 4.0, out.Values[1][1])
}

func TestLogTransformIfNeededIdempotent(t *testing.T) {
	tr := triple([][]float64{{4}}, []string{"r"}, []string{"c"})
	code := ProvenanceCode{}

	out1, code1 := LogTransformIfNeeded(tr, code, "L2X", nil)
	assert.Equal(t, 2.0, out1.D.Values[0][0])
	assert.Equal(t, ProvenanceCode{"L2X"}, code1)

	out2, code2 := LogTransformIfNeeded(out1, code1, "L2X", nil)
	assert.Same(t, out1, out2, "second call is a no-op once the tag is present")
	assert.Equal(t, code1, code2)
}

func TestLogTransformBaseConversion(t *testing.T) {
	d := &Matrix{Values: [][]float64{{8}}}
	out := LogTransform(d, 2)
	assert.InDelta(t, 3.0, out.Values[0][0], 1e-9)
	assert.True(t, math.IsNaN(Missing))
}
