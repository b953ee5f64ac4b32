package psp

import "go.uber.org/zap"

// HistoneNormalizeIfNeeded is only invoked for GCP assays by the driver;
// normPeptide empty means no-op (no tag appended).
func HistoneNormalizeIfNeeded(t *MatrixTriple, normPeptide string, code ProvenanceCode, histoneTag string, log *zap.Logger) (*MatrixTriple, ProvenanceCode, error) {
	log = nopSafe(log)
	if normPeptide == "" {
		log.Info("histone normalize skipped, no normalization peptide configured")
		return t, code, nil
	}

	out, err := HistoneNormalize(t, normPeptide)
	if err != nil {
		return nil, code, err
	}
	log.Info("histone normalize applied", zap.String("peptide", normPeptide))
	return out, code.Append(histoneTag), nil
}

// HistoneNormalize subtracts row h from every other row and removes
// row h.
func HistoneNormalize(t *MatrixTriple, h string) (*MatrixTriple, error) {
	hPos := -1
	for i, id := range t.R.Index {
		if id == h {
			hPos = i
			break
		}
	}
	if hPos == -1 {
		return nil, &PipelineError{
			Stage:  "HistoneNormalize",
			Kind:   ErrInvalidProvenance,
			Detail: "normalization peptide row " + h + " not found",
		}
	}

	hRow := t.D.Values[hPos]
	keep := make([]int, 0, t.D.NRows()-1)
	for i := 0; i < t.D.NRows(); i++ {
		if i != hPos {
			keep = append(keep, i)
		}
	}

	out := NewMatrix(len(keep), t.D.NCols())
	for newIdx, pos := range keep {
		for j := 0; j < t.D.NCols(); j++ {
			out.Values[newIdx][j] = t.D.Values[pos][j] - hRow[j]
		}
	}

	return &MatrixTriple{D: out, R: t.R.Select(keep), C: t.C}, nil
}
