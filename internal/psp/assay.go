package psp

import "strings"

// ResolveAssayType derives the AssayType from a raw column-metadata value
// by case-insensitive membership in the configured P100/GCP lists. A
// non-empty override replaces raw: "p100" or "gcp" (any case) selects that
// assay directly, and any other override is looked up in the lists.
func ResolveAssayType(raw, override string, p100Assays, gcpAssays []string) (AssayType, error) {
	if override != "" {
		switch strings.ToLower(override) {
		case "p100":
			return AssayP100, nil
		case "gcp":
			return AssayGCP, nil
		}
		// Override is a raw assay name (e.g. "GR1"); resolve it the same
		// way as the unforced value below.
		return resolveFromLists(override, p100Assays, gcpAssays, override)
	}
	return resolveFromLists(raw, p100Assays, gcpAssays, raw)
}

func resolveFromLists(value string, p100Assays, gcpAssays []string, offending string) (AssayType, error) {
	lower := strings.ToLower(value)
	for _, a := range p100Assays {
		if strings.ToLower(a) == lower {
			return AssayP100, nil
		}
	}
	for _, a := range gcpAssays {
		if strings.ToLower(a) == lower {
			return AssayGCP, nil
		}
	}
	return AssayUnknown, &PipelineError{
		Stage:  "ResolveAssayType",
		Kind:   ErrUnknownAssay,
		Detail: "assay value " + offending + " matches neither p100 nor gcp lists",
	}
}

// Thresholds holds the three per-assay numeric cutoffs used to drive
// InitialFilter.
type Thresholds struct {
	SampleFracCutoff float64
	ProbeFracCutoff  float64
	ProbeSDCutoff    float64
}

// ThresholdSource resolves an assay-prefixed configuration key to its
// float64 value. Implemented by internal/pspconfig.Config.
type ThresholdSource interface {
	AssayFloat(assay AssayType, key string) (float64, bool)
}

// ResolveThresholds resolves the three filter thresholds for assay: a
// caller-supplied override wins when non-NaN, otherwise the
// assay-prefixed configuration key is used.
func ResolveThresholds(assay AssayType, overrideSample, overrideProbeFrac, overrideProbeSD float64, cfg ThresholdSource) (Thresholds, error) {
	var t Thresholds
	var err error
	if t.SampleFracCutoff, err = resolveOne(assay, overrideSample, "sample_frac_cutoff", cfg); err != nil {
		return t, err
	}
	if t.ProbeFracCutoff, err = resolveOne(assay, overrideProbeFrac, "probe_frac_cutoff", cfg); err != nil {
		return t, err
	}
	if t.ProbeSDCutoff, err = resolveOne(assay, overrideProbeSD, "probe_sd_cutoff", cfg); err != nil {
		return t, err
	}
	return t, nil
}

func resolveOne(assay AssayType, override float64, key string, cfg ThresholdSource) (float64, error) {
	if !IsMissing(override) {
		return override, nil
	}
	v, ok := cfg.AssayFloat(assay, key)
	if !ok {
		return 0, &PipelineError{
			Stage:  "ResolveThresholds",
			Kind:   ErrConfigMissing,
			Detail: "missing or non-numeric config key for " + assay.String() + "_" + key,
		}
	}
	return v, nil
}
