package psp

import (
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// InitialFilterResult bundles the output of InitialFilter.
type InitialFilterResult struct {
	Triple                  *MatrixTriple
	Code                    ProvenanceCode
	PostSampleNaNRemaining  []string // column ids surviving the sample-NaN sub-filter
}

// InitialFilterParams configures the three sub-filters InitialFilter
// runs in sequence.
type InitialFilterParams struct {
	Assay                 AssayType
	SampleFracCutoff      float64
	ProbeFracCutoff       float64
	ProbeSDCutoff         float64
	ManualRejectionField  string
	SampleFilterTag       string // prefix, e.g. "SF"
	ManualRejectTag       string // e.g. "MPR"
	ProbeFilterTag        string // prefix, e.g. "PF"
}

// InitialFilter runs the sample-NaN, manual-probe-rejection (P100 only),
// and probe-NaN/SD sub-filters in order. The input triple is never
// mutated; a freshly sliced triple is returned.
func InitialFilter(t *MatrixTriple, code ProvenanceCode, p InitialFilterParams, log *zap.Logger) (InitialFilterResult, error) {
	log = nopSafe(log)

	// --- sample-NaN filter (both assays) ---
	sampleKeep := make([]int, 0, t.D.NCols())
	for j := 0; j < t.D.NCols(); j++ {
		if nonMissingFraction(column(t.D, j)) >= p.SampleFracCutoff {
			sampleKeep = append(sampleKeep, j)
		}
	}
	cur, err := sliceColumns(t, sampleKeep)
	if err != nil {
		return InitialFilterResult{}, err
	}
	code = code.Append(p.SampleFilterTag + percentTag(p.SampleFracCutoff))
	postSampleNaN := append([]string(nil), cur.C.Index...)
	log.Info("sample nan filter", zap.Int("kept", len(sampleKeep)), zap.Int("dropped", t.D.NCols()-len(sampleKeep)))

	// --- manual probe rejection (P100 only) ---
	if p.Assay == AssayP100 && p.ManualRejectionField != "" {
		rowKeep, anyRejected := manualRejectionKeep(cur.R, p.ManualRejectionField)
		if anyRejected {
			cur, err = sliceRows(cur, rowKeep)
			if err != nil {
				return InitialFilterResult{}, err
			}
			code = code.Append(p.ManualRejectTag)
			log.Info("manual probe rejection applied", zap.Int("kept", len(rowKeep)))
		} else {
			log.Warn("manual probe rejection skipped, no probes marked for rejection")
		}
	}

	// --- probe NaN and SD filter (both assays) ---
	probeKeep := make([]int, 0, cur.D.NRows())
	for i := 0; i < cur.D.NRows(); i++ {
		row := cur.D.Values[i]
		frac := nonMissingFraction(row)
		sd := sampleSD(row)
		if frac < p.ProbeFracCutoff {
			continue
		}
		if !IsMissing(sd) && sd > p.ProbeSDCutoff {
			continue
		}
		probeKeep = append(probeKeep, i)
	}
	cur, err = sliceRows(cur, probeKeep)
	if err != nil {
		return InitialFilterResult{}, err
	}
	code = code.Append(p.ProbeFilterTag + percentTag(p.ProbeFracCutoff))
	log.Info("probe nan/sd filter", zap.Int("kept", len(probeKeep)))

	if err := cur.CheckAlignment("InitialFilter"); err != nil {
		return InitialFilterResult{}, err
	}
	if err := cur.CheckNonEmpty("InitialFilter"); err != nil {
		return InitialFilterResult{}, err
	}

	return InitialFilterResult{Triple: cur, Code: code, PostSampleNaNRemaining: postSampleNaN}, nil
}

// manualRejectionKeep interprets field case-insensitively as boolean,
// returning the positions to keep and whether any row was found marked
// for rejection (false/0/f). The filter only takes effect when at least
// one row is actually marked FALSE.
func manualRejectionKeep(r *Metadata, field string) ([]int, bool) {
	col, ok := r.Fields[field]
	if !ok {
		return allPositions(r.Len()), false
	}
	keep := make([]int, 0, len(col))
	anyFalse := false
	for i, raw := range col {
		if isRejectionFalse(raw) {
			anyFalse = true
			continue
		}
		keep = append(keep, i)
	}
	if !anyFalse {
		return allPositions(r.Len()), false
	}
	return keep, true
}

func isRejectionFalse(raw string) bool {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "FALSE", "F", "0":
		return true
	default:
		return false
	}
}

func allPositions(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// percentTag renders a fraction cutoff as an integer percentage tag
// suffix, e.g. 0.3 -> "3", 0.5 -> "5" (so "SF3" for 0.3, "PF5" for 0.5).
func percentTag(frac float64) string {
	return strconv.Itoa(int(frac * 10))
}
