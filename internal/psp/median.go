package psp

import (
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// MedianNormalizeParams configures MedianNormalize.
type MedianNormalizeParams struct {
	IgnoreSubsetNorm bool
	RowSubsetField   string
	ColSubsetField   string
	GlobalMedianTag  string // "GMN"
	RowMedianTag     string // "RMN"
}

// MedianNormalize dispatches between subset-aware and global row-median
// centering: absence of subsets on either axis falls back to global mode.
func MedianNormalize(t *MatrixTriple, p MedianNormalizeParams, code ProvenanceCode, log *zap.Logger) (*MatrixTriple, ProvenanceCode, error) {
	log = nopSafe(log)

	useSubsets := !p.IgnoreSubsetNorm && checkForSubsets(t.R, t.C, p.RowSubsetField, p.ColSubsetField)
	if !useSubsets {
		out := &MatrixTriple{D: rowMedianNormalize(t.D), R: t.R, C: t.C}
		log.Info("global row-median normalization applied")
		return out, code.Append(p.RowMedianTag), nil
	}

	out, err := subsetNormalize(t, p.RowSubsetField, p.ColSubsetField)
	if err != nil {
		return nil, code, err
	}
	log.Info("subset-aware median normalization applied")
	return out, code.Append(p.GlobalMedianTag), nil
}

// checkForSubsets reports whether both axes carry a non-empty subset
// field — at least one row group and one column group must exist.
func checkForSubsets(r, c *Metadata, rowField, colField string) bool {
	rowCol, ok := r.Fields[rowField]
	if !ok || len(rowCol) == 0 {
		return false
	}
	colCol, ok := c.Fields[colField]
	if !ok || len(colCol) == 0 {
		return false
	}
	return true
}

// rowMedianNormalize subtracts each row's median (ignoring missing
// values) from every entry in that row.
func rowMedianNormalize(d *Matrix) *Matrix {
	out := NewMatrix(d.NRows(), d.NCols())
	for i, row := range d.Values {
		m := median(row)
		for j, v := range row {
			if IsMissing(v) {
				out.Values[i][j] = Missing
				continue
			}
			out.Values[i][j] = v - m
		}
	}
	return out
}

// subsetNormalize runs subset-aware normalization: build the integer
// norm array, then median-center each contiguous per-row run of equal
// norm values.
func subsetNormalize(t *MatrixTriple, rowField, colField string) (*MatrixTriple, error) {
	normArray, err := makeNormNdarray(t.R, t.C, rowField, colField)
	if err != nil {
		return nil, err
	}
	return &MatrixTriple{D: iterateOverNormNdarrayAndNormalize(t.D, normArray), R: t.R, C: t.C}, nil
}

// makeNormNdarray builds an (n_rows, n_cols) integer array. Each column's
// subset field is a comma-separated string; when it has exactly one
// token, that token's integer value is used directly for every row, so
// effectively in this case the row's own group (which must be the sole
// group present) is recovered. When it has multiple tokens, the token is
// selected by the rank (0-indexed position among sorted unique row
// groups) of the row's own group.
func makeNormNdarray(r, c *Metadata, rowField, colField string) ([][]int, error) {
	rowGroups := r.Fields[rowField]
	colVectors := c.Fields[colField]

	rank, err := rankRowGroups(rowGroups)
	if err != nil {
		return nil, err
	}

	out := make([][]int, len(rowGroups))
	for i := range out {
		out[i] = make([]int, len(colVectors))
	}

	for j, vec := range colVectors {
		parts := strings.Split(vec, ",")
		parsed := make([]int, len(parts))
		for k, part := range parts {
			v, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return nil, &PipelineError{
					Stage:  "makeNormNdarray",
					Kind:   ErrInvalidProvenance,
					Detail: "non-numeric subset group " + part + " in column field",
				}
			}
			parsed[k] = v
		}
		for i, g := range rowGroups {
			if len(parsed) == 1 {
				out[i][j] = parsed[0]
				continue
			}
			idx := rank[g]
			if idx >= len(parsed) {
				idx = len(parsed) - 1
			}
			out[i][j] = parsed[idx]
		}
	}
	return out, nil
}

// rankRowGroups returns a map from row-group label to its 0-indexed
// position among sorted unique labels (numeric order when all labels
// parse as integers, lexicographic otherwise).
func rankRowGroups(labels []string) (map[string]int, error) {
	seen := map[string]bool{}
	unique := make([]string, 0)
	for _, l := range labels {
		if !seen[l] {
			seen[l] = true
			unique = append(unique, l)
		}
	}

	allNumeric := true
	nums := make(map[string]int, len(unique))
	for _, l := range unique {
		n, err := strconv.Atoi(strings.TrimSpace(l))
		if err != nil {
			allNumeric = false
			break
		}
		nums[l] = n
	}

	if allNumeric {
		sort.Slice(unique, func(i, j int) bool { return nums[unique[i]] < nums[unique[j]] })
	} else {
		sort.Strings(unique)
	}

	rank := make(map[string]int, len(unique))
	for i, l := range unique {
		rank[l] = i
	}
	return rank, nil
}

// iterateOverNormNdarrayAndNormalize subtracts the median from every
// contiguous run of equal norm-array values within each row.
func iterateOverNormNdarrayAndNormalize(d *Matrix, norm [][]int) *Matrix {
	out := NewMatrix(d.NRows(), d.NCols())
	for i := 0; i < d.NRows(); i++ {
		row := d.Values[i]
		normRow := norm[i]
		start := 0
		for start < len(row) {
			end := start + 1
			for end < len(row) && normRow[end] == normRow[start] {
				end++
			}
			block := row[start:end]
			m := median(block)
			for k := start; k < end; k++ {
				if IsMissing(row[k]) {
					out.Values[i][k] = Missing
				} else {
					out.Values[i][k] = row[k] - m
				}
			}
			start = end
		}
	}
	return out
}
