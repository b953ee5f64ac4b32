package psp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMedian(t *testing.T) {
	assert.Equal(t, 0.9, median([]float64{10, -3, 1.2, 0.6}))
	assert.Equal(t, 2.0, median([]float64{1, 2, 3}))
	assert.True(t, IsMissing(median([]float64{Missing, Missing})))
}

func TestMedianIgnoresMissing(t *testing.T) {
	assert.Equal(t, 2.0, median([]float64{1, Missing, 2, 3}))
}

func TestSampleSD(t *testing.T) {
	sd := sampleSD([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.InDelta(t, 2.138, sd, 1e-3)
}

func TestSampleSDTooFewValues(t *testing.T) {
	assert.True(t, IsMissing(sampleSD([]float64{1})))
}

func TestNonMissingFraction(t *testing.T) {
	assert.Equal(t, 0.5, nonMissingFraction([]float64{1, Missing, 2, Missing}))
	assert.Equal(t, 0.0, nonMissingFraction([]float64{}))
}

func TestMeanOf(t *testing.T) {
	assert.Equal(t, 2.0, meanOf([]float64{1, 2, 3}))
}
