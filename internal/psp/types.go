// Package psp implements the core "dry" proteomics matrix-processing
// pipeline: cleaning, filtering, offset optimization, and median
// normalization of plate-based mass-spectrometry expression matrices.
package psp

import (
	"math"
	"strconv"
)

// Missing is the sentinel used for absent matrix entries.
var Missing = math.NaN()

// IsMissing reports whether v is the missing sentinel.
func IsMissing(v float64) bool {
	return math.IsNaN(v)
}

// AssayType enumerates the two supported experimental protocols.
type AssayType int

const (
	// AssayUnknown marks an assay that could not be resolved.
	AssayUnknown AssayType = iota
	// AssayP100 is a 96-plex peptide assay.
	AssayP100
	// AssayGCP is global chromatin profiling.
	AssayGCP
)

func (a AssayType) String() string {
	switch a {
	case AssayP100:
		return "p100"
	case AssayGCP:
		return "gcp"
	default:
		return "unknown"
	}
}

// Matrix is a dense row-major 2-D array of float64 values.
// Row i, column j is at Values[i][j].
type Matrix struct {
	Values [][]float64
}

// NewMatrix allocates a zero-valued matrix of the given shape.
func NewMatrix(nRows, nCols int) *Matrix {
	vals := make([][]float64, nRows)
	for i := range vals {
		vals[i] = make([]float64, nCols)
	}
	return &Matrix{Values: vals}
}

// NRows returns the number of rows.
func (m *Matrix) NRows() int { return len(m.Values) }

// NCols returns the number of columns, or 0 if the matrix has no rows.
func (m *Matrix) NCols() int {
	if len(m.Values) == 0 {
		return 0
	}
	return len(m.Values[0])
}

// Clone returns a deep copy of the matrix.
func (m *Matrix) Clone() *Matrix {
	out := make([][]float64, len(m.Values))
	for i, row := range m.Values {
		out[i] = append([]float64(nil), row...)
	}
	return &Matrix{Values: out}
}

// Metadata is a row- or column-keyed table of string-valued fields.
// Index holds the identifiers in positional order; Fields maps a field
// name to its per-identifier values, aligned with Index.
type Metadata struct {
	Index  []string
	Fields map[string][]string
}

// NewMetadata builds a Metadata table from an explicit index and field map.
// All field slices must have the same length as index.
func NewMetadata(index []string, fields map[string][]string) *Metadata {
	if fields == nil {
		fields = map[string][]string{}
	}
	return &Metadata{Index: index, Fields: fields}
}

// Len returns the number of identifiers.
func (md *Metadata) Len() int { return len(md.Index) }

// Get returns the value of field at position i.
func (md *Metadata) Get(field string, i int) string {
	col, ok := md.Fields[field]
	if !ok || i < 0 || i >= len(col) {
		return ""
	}
	return col[i]
}

// Clone returns a deep copy of the metadata table.
func (md *Metadata) Clone() *Metadata {
	out := &Metadata{
		Index:  append([]string(nil), md.Index...),
		Fields: make(map[string][]string, len(md.Fields)),
	}
	for k, v := range md.Fields {
		out.Fields[k] = append([]string(nil), v...)
	}
	return out
}

// Select returns a new Metadata table keeping only the given positional
// indices, in the order supplied.
func (md *Metadata) Select(positions []int) *Metadata {
	out := &Metadata{
		Index:  make([]string, len(positions)),
		Fields: make(map[string][]string, len(md.Fields)),
	}
	for field := range md.Fields {
		out.Fields[field] = make([]string, len(positions))
	}
	for newIdx, pos := range positions {
		out.Index[newIdx] = md.Index[pos]
		for field, col := range md.Fields {
			out.Fields[field][newIdx] = col[pos]
		}
	}
	return out
}

// MatrixTriple bundles a data matrix with its row and column metadata.
// D's dimensions must always agree with R's and C's index lengths.
type MatrixTriple struct {
	D *Matrix
	R *Metadata
	C *Metadata
}

// CheckAlignment verifies the Alignment invariant: D's shape matches the
// lengths of R and C.
func (t *MatrixTriple) CheckAlignment(stage string) error {
	if t.D.NRows() != t.R.Len() {
		return &PipelineError{
			Stage: stage,
			Kind:  ErrMisalignedMetadata,
			Detail: "row metadata has " + strconv.Itoa(t.R.Len()) +
				" entries but data has " + strconv.Itoa(t.D.NRows()) + " rows",
		}
	}
	if t.D.NCols() != t.C.Len() {
		return &PipelineError{
			Stage: stage,
			Kind:  ErrMisalignedMetadata,
			Detail: "column metadata has " + strconv.Itoa(t.C.Len()) +
				" entries but data has " + strconv.Itoa(t.D.NCols()) + " columns",
		}
	}
	return nil
}

// CheckNonEmpty verifies D has at least one row and one column.
func (t *MatrixTriple) CheckNonEmpty(stage string) error {
	if t.D.NRows() == 0 || t.D.NCols() == 0 {
		return &PipelineError{
			Stage:  stage,
			Kind:   ErrEmptyMatrix,
			Detail: "matrix has shape (" + strconv.Itoa(t.D.NRows()) + ", " + strconv.Itoa(t.D.NCols()) + ")",
		}
	}
	return nil
}

// Clone returns a deep copy of the triple.
func (t *MatrixTriple) Clone() *MatrixTriple {
	return &MatrixTriple{D: t.D.Clone(), R: t.R.Clone(), C: t.C.Clone()}
}

// OffsetVector holds one offset per current sample (column), produced by
// the offset optimizer.
type OffsetVector []float64

// DistanceVector holds one post-offset distance-to-row-medians per
// current sample (column).
type DistanceVector []float64

// AuditRecord is one audited row per original input column.
type AuditRecord struct {
	PlateName         string
	WellName          string
	Offset            float64 // NaN if the sample did not survive to offset computation
	SurvivedOutlier   bool
	SurvivedCoverage  bool
}

