package psp

import "go.uber.org/zap"

// OffsetBounds is the inclusive [Lo, Hi] range offered to the optimizer.
// The analytic implementation below does not clip offsets into these
// bounds, and the bounds are not checked for Lo < Hi.
type OffsetBounds struct {
	Lo, Hi float64
}

// OffsetResult bundles everything OffsetOptimizer produces.
type OffsetResult struct {
	Triple  *MatrixTriple
	Offsets OffsetVector
	Dists   DistanceVector
}

// OffsetOptimizerIfNeeded dispatches per assay and mode: a no-op for GCP,
// distance-only when no-optimize is requested, and the full analytic
// optimization otherwise.
func OffsetOptimizerIfNeeded(t *MatrixTriple, assay AssayType, noOptimize bool, bounds OffsetBounds, code ProvenanceCode, offsetTag string, log *zap.Logger) (*MatrixTriple, OffsetVector, DistanceVector, ProvenanceCode) {
	log = nopSafe(log)
	if assay != AssayP100 {
		log.Info("offset optimizer skipped, not a p100 assay")
		return t, nil, nil, code
	}

	medians := rowMedians(t.D)

	if noOptimize {
		dists := make(DistanceVector, t.D.NCols())
		for j := 0; j < t.D.NCols(); j++ {
			dists[j] = distanceFunction(column(t.D, j), medians, 0)
		}
		log.Info("offset optimizer: no-optimize mode, distances only")
		return t, nil, dists, code
	}

	offsets := calculateOffsetsAnalytically(t.D, medians)
	dists := make(DistanceVector, t.D.NCols())
	outD := NewMatrix(t.D.NRows(), t.D.NCols())
	for j := 0; j < t.D.NCols(); j++ {
		dists[j] = distanceFunction(column(t.D, j), medians, offsets[j])
		for i := 0; i < t.D.NRows(); i++ {
			outD.Values[i][j] = t.D.Values[i][j] + offsets[j]
		}
	}

	out := &MatrixTriple{D: outD, R: t.R, C: t.C}
	log.Info("offset optimizer applied", zap.Int("cols", len(offsets)))
	return out, offsets, dists, code.Append(offsetTag)
}

// calculateOffsetsAnalytically returns, for each column c, the closed-form
// minimizer of f(o) = sum_r (D[r,c] + o - m_r)^2 over rows where both
// D[r,c] and m_r are present: o_c = mean_r(m_r - D[r,c]).
func calculateOffsetsAnalytically(d *Matrix, rowMeds []float64) OffsetVector {
	offsets := make(OffsetVector, d.NCols())
	for j := 0; j < d.NCols(); j++ {
		var sum float64
		var n int
		for i := 0; i < d.NRows(); i++ {
			v := d.Values[i][j]
			m := rowMeds[i]
			if IsMissing(v) || IsMissing(m) {
				continue
			}
			sum += m - v
			n++
		}
		if n == 0 {
			offsets[j] = 0
			continue
		}
		offsets[j] = sum / float64(n)
	}
	return offsets
}

// distanceFunction computes sum_r (values[r] + offset - medians[r])^2
// over indices where values[r] is present (medians[r] is assumed always
// present; row medians are only undefined for all-missing rows, which
// contribute nothing regardless).
func distanceFunction(values, medians []float64, offset float64) float64 {
	var sum float64
	for i, v := range values {
		if IsMissing(v) || IsMissing(medians[i]) {
			continue
		}
		d := v + offset - medians[i]
		sum += d * d
	}
	return sum
}
