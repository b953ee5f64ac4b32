package psp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractProvenanceCode(t *testing.T) {
	c := NewMetadata([]string{"s1", "s2"}, map[string][]string{
		"provenance_code": {"L2X+SF3", "L2X+SF3"},
	})
	code, err := ExtractProvenanceCode(c, "provenance_code", "+")
	require.NoError(t, err)
	assert.Equal(t, ProvenanceCode{"L2X", "SF3"}, code)
}

func TestExtractProvenanceCodeNonUniform(t *testing.T) {
	c := NewMetadata([]string{"s1", "s2"}, map[string][]string{
		"provenance_code": {"L2X", "L2X+SF3"},
	})
	_, err := ExtractProvenanceCode(c, "provenance_code", "+")
	require.Error(t, err)
	var pe *PipelineError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, ErrInvalidProvenance, pe.Kind)
}

func TestExtractProvenanceCodeMissingField(t *testing.T) {
	c := NewMetadata([]string{"s1"}, map[string][]string{})
	_, err := ExtractProvenanceCode(c, "provenance_code", "+")
	require.Error(t, err)
}

func TestProvenanceCodeAppendAndContains(t *testing.T) {
	code := ProvenanceCode{"L2X"}
	code2 := code.Append("SF3")
	assert.Equal(t, ProvenanceCode{"L2X"}, code, "Append must not mutate the receiver")
	assert.Equal(t, ProvenanceCode{"L2X", "SF3"}, code2)
	assert.True(t, code2.Contains("SF3"))
	assert.False(t, code2.Contains("PF5"))
}

func TestProvenanceCodeJoin(t *testing.T) {
	code := ProvenanceCode{"L2X", "SF3", "PF5"}
	assert.Equal(t, "L2X+SF3+PF5", code.Join("+"))
}
