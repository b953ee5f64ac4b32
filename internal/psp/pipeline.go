package psp

import "go.uber.org/zap"

// PipelineParams bundles every tunable needed to drive a full run. Tag
// fields are appended exactly as given, so an empty tag is appended as
// an empty string; internal/pspconfig supplies the default short codes
// (e.g. "L2X", "H3N", "OSF").
type PipelineParams struct {
	AssayRaw      string
	AssayOverride string

	P100Assays []string
	GCPAssays  []string

	ProvCodeField     string
	ProvCodeDelimiter string

	LogTransformTag string

	GCPNormalizationPeptide string
	HistoneNormalizeTag     string

	OverrideSampleFrac float64 // Missing to defer to config
	OverrideProbeFrac  float64
	OverrideProbeSD    float64
	Thresholds         ThresholdSource

	ManualRejectionField string
	SampleFilterTag      string
	ManualRejectTag      string
	ProbeFilterTag       string

	NoOptimize   bool
	OffsetBounds OffsetBounds
	OffsetTag    string

	OutlierK   float64
	OutlierTag string

	MedianParams MedianNormalizeParams

	PlateField string
	WellField  string
}

// PipelineOutput bundles everything a caller needs after a run: the
// fully processed matrix, the final provenance code, and the audit
// records for every original input column.
type PipelineOutput struct {
	Triple  *MatrixTriple
	Code    ProvenanceCode
	Assay   AssayType
	Audit   []AuditRecord
	Offsets OffsetVector // aligned with Triple.C, nil for GCP; for the output GCT's column metadata
}

// RunPipeline drives the resolve-assay, log-transform, histone-normalize
// (GCP only), filter, offset-optimize and outlier-filter (P100 only),
// median-normalize sequence end to end. The input triple is assumed
// already read from a GCT-like source with its provenance code attached
// to column metadata.
func RunPipeline(t *MatrixTriple, p PipelineParams, log *zap.Logger) (PipelineOutput, error) {
	log = nopSafe(log)

	if err := t.CheckAlignment("RunPipeline"); err != nil {
		return PipelineOutput{}, err
	}
	if err := t.CheckNonEmpty("RunPipeline"); err != nil {
		return PipelineOutput{}, err
	}

	originalIDs := append([]string(nil), t.C.Index...)
	originalC := t.C.Clone()

	assay, err := ResolveAssayType(p.AssayRaw, p.AssayOverride, p.P100Assays, p.GCPAssays)
	if err != nil {
		return PipelineOutput{}, err
	}
	log.Info("assay resolved", zap.String("assay", assay.String()))

	code, err := ExtractProvenanceCode(t.C, p.ProvCodeField, p.ProvCodeDelimiter)
	if err != nil {
		return PipelineOutput{}, err
	}

	cur, code := LogTransformIfNeeded(t, code, p.LogTransformTag, log)

	if assay == AssayGCP {
		cur, code, err = HistoneNormalizeIfNeeded(cur, p.GCPNormalizationPeptide, code, p.HistoneNormalizeTag, log)
		if err != nil {
			return PipelineOutput{}, err
		}
	}

	thresholds, err := ResolveThresholds(assay, p.OverrideSampleFrac, p.OverrideProbeFrac, p.OverrideProbeSD, p.Thresholds)
	if err != nil {
		return PipelineOutput{}, err
	}

	filterResult, err := InitialFilter(cur, code, InitialFilterParams{
		Assay:                assay,
		SampleFracCutoff:     thresholds.SampleFracCutoff,
		ProbeFracCutoff:      thresholds.ProbeFracCutoff,
		ProbeSDCutoff:        thresholds.ProbeSDCutoff,
		ManualRejectionField: p.ManualRejectionField,
		SampleFilterTag:      p.SampleFilterTag,
		ManualRejectTag:      p.ManualRejectTag,
		ProbeFilterTag:       p.ProbeFilterTag,
	}, log)
	if err != nil {
		return PipelineOutput{}, err
	}
	cur, code = filterResult.Triple, filterResult.Code
	postSampleNaNRemaining := filterResult.PostSampleNaNRemaining

	cur, offsetsAtNaNRemaining, dists, code := OffsetOptimizerIfNeeded(cur, assay, p.NoOptimize, p.OffsetBounds, code, p.OffsetTag, log)

	var postSampleDistRemaining []string
	var outlierOffsets OffsetVector
	if assay == AssayP100 {
		outlierResult, newCode, err := OutlierFilterIfNeeded(cur, assay, offsetsAtNaNRemaining, dists, p.OutlierK, code, p.OutlierTag, log)
		if err != nil {
			return PipelineOutput{}, err
		}
		cur, code = outlierResult.Triple, newCode
		postSampleDistRemaining = outlierResult.Remaining
		outlierOffsets = outlierResult.Offsets
	} else {
		// GCP never runs OffsetOptimizer or OutlierFilter; every sample
		// that survived InitialFilter survives outlier filtering too.
		postSampleDistRemaining = postSampleNaNRemaining
	}

	cur, code, err = MedianNormalize(cur, p.MedianParams, code, log)
	if err != nil {
		return PipelineOutput{}, err
	}
	audit := BuildAuditRecords(originalIDs, originalC, p.PlateField, p.WellField,
		postSampleNaNRemaining, postSampleDistRemaining, offsetsAtNaNRemaining)

	log.Info("pipeline complete", zap.String("provenance", code.Join("+")),
		zap.Int("rows", cur.D.NRows()), zap.Int("cols", cur.D.NCols()))

	return PipelineOutput{Triple: cur, Code: code, Assay: assay, Audit: audit, Offsets: outlierOffsets}, nil
}
