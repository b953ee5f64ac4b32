package psp

import (
	"math"

	"go.uber.org/zap"
)

// LogTransformIfNeeded applies a base-2 log transform to D unless the
// provenance code already carries logTag. The tag check makes a second
// call on an already-transformed matrix a no-op.
func LogTransformIfNeeded(t *MatrixTriple, code ProvenanceCode, logTag string, log *zap.Logger) (*MatrixTriple, ProvenanceCode) {
	log = nopSafe(log)
	if code.Contains(logTag) {
		log.Info("log transform skipped, tag already present", zap.String("tag", logTag))
		return t, code
	}
	out := &MatrixTriple{D: LogTransform(t.D, 2), R: t.R, C: t.C}
	log.Info("log transform applied", zap.Int("rows", out.D.NRows()), zap.Int("cols", out.D.NCols()))
	return out, code.Append(logTag)
}

// LogTransform applies log_base(x) elementwise, replacing x <= 0 with the
// missing sentinel before taking the log. Missing values propagate.
func LogTransform(d *Matrix, base float64) *Matrix {
	out := NewMatrix(d.NRows(), d.NCols())
	logBase := math.Log(base)
	for i, row := range d.Values {
		for j, v := range row {
			if IsMissing(v) || v <= 0 {
				out.Values[i][j] = Missing
				continue
			}
			out.Values[i][j] = math.Log(v) / logBase
		}
	}
	return out
}

func nopSafe(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}
