package psp

import (
	"strconv"

	"go.uber.org/zap"
)

// OutlierResult bundles the output of OutlierFilterIfNeeded.
type OutlierResult struct {
	Triple    *MatrixTriple
	Offsets   OffsetVector // nil for GCP
	Remaining []string     // nil for GCP
}

// OutlierFilterIfNeeded drops every column whose distance exceeds
// mean+k*sd (sample sd, ddof=1); a no-op for GCP.
func OutlierFilterIfNeeded(t *MatrixTriple, assay AssayType, offsets OffsetVector, dists DistanceVector, k float64, code ProvenanceCode, outlierTag string, log *zap.Logger) (OutlierResult, ProvenanceCode, error) {
	log = nopSafe(log)
	if assay != AssayP100 {
		log.Info("outlier filter skipped, not a p100 assay")
		return OutlierResult{Triple: t}, code, nil
	}

	mu := meanOf(dists)
	sd := sampleSD(dists)
	threshold := mu + k*sd

	keep := make([]int, 0, len(dists))
	for j, d := range dists {
		if d <= threshold {
			keep = append(keep, j)
		}
	}

	out, err := sliceColumns(t, keep)
	if err != nil {
		return OutlierResult{}, code, err
	}
	if err := out.CheckNonEmpty("OutlierFilter"); err != nil {
		return OutlierResult{}, code, err
	}

	var keptOffsets OffsetVector
	if offsets != nil {
		keptOffsets = sliceOffsets(offsets, keep)
	}

	log.Info("outlier filter applied", zap.Float64("mean", mu), zap.Float64("sd", sd),
		zap.Float64("threshold", threshold), zap.Int("kept", len(keep)))

	return OutlierResult{Triple: out, Offsets: keptOffsets, Remaining: append([]string(nil), out.C.Index...)},
		code.Append(outlierTag + strconv.Itoa(int(k))), nil
}
