package psp

import (
	"strconv"
	"strings"
)

// ProvenanceCode is an ordered, non-empty sequence of short tags recording
// the stages applied to a matrix so far.
type ProvenanceCode []string

// ExtractProvenanceCode reads the provenance code from the designated
// column-metadata field and validates that it is identical across all
// columns.
func ExtractProvenanceCode(c *Metadata, field, delimiter string) (ProvenanceCode, error) {
	col, ok := c.Fields[field]
	if !ok || len(col) == 0 {
		return nil, &PipelineError{
			Stage:  "ExtractProvenanceCode",
			Kind:   ErrInvalidProvenance,
			Detail: "provenance field " + field + " is missing",
		}
	}

	first := strings.Split(col[0], delimiter)
	for i, raw := range col {
		if raw != col[0] {
			return nil, &PipelineError{
				Stage:  "ExtractProvenanceCode",
				Kind:   ErrInvalidProvenance,
				Detail: "column " + strconv.Itoa(i) + " has provenance code " + raw + " but column 0 has " + col[0],
			}
		}
	}

	if len(first) == 0 || (len(first) == 1 && first[0] == "") {
		return nil, &PipelineError{
			Stage:  "ExtractProvenanceCode",
			Kind:   ErrInvalidProvenance,
			Detail: "provenance code is empty",
		}
	}

	return ProvenanceCode(first), nil
}

// Append returns a new ProvenanceCode with tag appended, preserving the
// existing prefix unchanged.
func (p ProvenanceCode) Append(tag string) ProvenanceCode {
	out := make(ProvenanceCode, len(p)+1)
	copy(out, p)
	out[len(p)] = tag
	return out
}

// Contains reports whether tag is already present in the code.
func (p ProvenanceCode) Contains(tag string) bool {
	for _, t := range p {
		if t == tag {
			return true
		}
	}
	return false
}

// Join renders the code using delimiter, for writing back into column
// metadata.
func (p ProvenanceCode) Join(delimiter string) string {
	return strings.Join([]string(p), delimiter)
}
