// Package pspconfig resolves the three-section (io, metadata,
// parameters) key/string configuration using viper, and implements
// psp.ThresholdSource for assay-prefixed parameter lookup.
package pspconfig

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/broadinstitute/psp-dry/internal/psp"
)

// Defaults for the provenance tag names.
const (
	DefaultLogTag          = "L2X"
	DefaultHistoneTag      = "H3N"
	DefaultSampleFilterTag = "SF"
	DefaultManualRejectTag = "MPR"
	DefaultProbeFilterTag  = "PF"
	DefaultOffsetTag       = "LLB"
	DefaultOutlierTag      = "OSF"
	DefaultGlobalMedianTag = "GMN"
	DefaultRowMedianTag    = "RMN"
)

// Config wraps a loaded viper instance and exposes the io, metadata,
// and parameters sections.
type Config struct {
	v *viper.Viper
}

// Load reads the YAML configuration file at path and applies the
// package defaults for any tag name left unset.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	applyDefaults(v)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return &Config{v: v}, nil
}

// New wraps an already-populated viper instance, e.g. one built from
// flags by cmd/psp-dry for overrides that never touch a file.
func New(v *viper.Viper) *Config {
	applyDefaults(v)
	return &Config{v: v}
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("parameters.log_tag", DefaultLogTag)
	v.SetDefault("parameters.histone_tag", DefaultHistoneTag)
	v.SetDefault("parameters.sample_filter_tag", DefaultSampleFilterTag)
	v.SetDefault("parameters.manual_reject_tag", DefaultManualRejectTag)
	v.SetDefault("parameters.probe_filter_tag", DefaultProbeFilterTag)
	v.SetDefault("parameters.offset_tag", DefaultOffsetTag)
	v.SetDefault("parameters.outlier_tag", DefaultOutlierTag)
	v.SetDefault("parameters.global_median_tag", DefaultGlobalMedianTag)
	v.SetDefault("parameters.row_median_tag", DefaultRowMedianTag)
	v.SetDefault("metadata.prov_code_delimiter", "+")
	v.SetDefault("metadata.assay_type_field", "pr_assay")
	v.SetDefault("metadata.prov_code_field", "provenance_code")
	v.SetDefault("metadata.manual_rejection_field", "")
	v.SetDefault("metadata.row_subset_field", "")
	v.SetDefault("metadata.col_subset_field", "")
	v.SetDefault("metadata.det_plate_field", "det_plate")
	v.SetDefault("metadata.det_well_field", "det_well")
	v.SetDefault("metadata.gcp_normalization_peptide_id", "")
}

// NanValues returns the io.nan_values list (section 6 "io").
func (c *Config) NanValues() []string { return c.v.GetStringSlice("io.nan_values") }

// ProvCodeField returns metadata.prov_code_field.
func (c *Config) ProvCodeField() string { return c.v.GetString("metadata.prov_code_field") }

// ProvCodeDelimiter returns metadata.prov_code_delimiter.
func (c *Config) ProvCodeDelimiter() string { return c.v.GetString("metadata.prov_code_delimiter") }

// AssayTypeField returns metadata.assay_type_field.
func (c *Config) AssayTypeField() string { return c.v.GetString("metadata.assay_type_field") }

// GCPAssays returns metadata.gcp_assays.
func (c *Config) GCPAssays() []string { return c.v.GetStringSlice("metadata.gcp_assays") }

// P100Assays returns metadata.p100_assays.
func (c *Config) P100Assays() []string { return c.v.GetStringSlice("metadata.p100_assays") }

// GCPNormalizationPeptideID returns metadata.gcp_normalization_peptide_id.
func (c *Config) GCPNormalizationPeptideID() string {
	return c.v.GetString("metadata.gcp_normalization_peptide_id")
}

// ManualRejectionField returns metadata.manual_rejection_field.
func (c *Config) ManualRejectionField() string {
	return c.v.GetString("metadata.manual_rejection_field")
}

// RowSubsetField returns metadata.row_subset_field.
func (c *Config) RowSubsetField() string { return c.v.GetString("metadata.row_subset_field") }

// ColSubsetField returns metadata.col_subset_field.
func (c *Config) ColSubsetField() string { return c.v.GetString("metadata.col_subset_field") }

// DetPlateField returns metadata.det_plate_field.
func (c *Config) DetPlateField() string { return c.v.GetString("metadata.det_plate_field") }

// DetWellField returns metadata.det_well_field.
func (c *Config) DetWellField() string { return c.v.GetString("metadata.det_well_field") }

// Tags returns the nine provenance tag names from the parameters section.
func (c *Config) Tags() Tags {
	p := "parameters."
	return Tags{
		Log:          c.v.GetString(p + "log_tag"),
		Histone:      c.v.GetString(p + "histone_tag"),
		SampleFilter: c.v.GetString(p + "sample_filter_tag"),
		ManualReject: c.v.GetString(p + "manual_reject_tag"),
		ProbeFilter:  c.v.GetString(p + "probe_filter_tag"),
		Offset:       c.v.GetString(p + "offset_tag"),
		Outlier:      c.v.GetString(p + "outlier_tag"),
		GlobalMedian: c.v.GetString(p + "global_median_tag"),
		RowMedian:    c.v.GetString(p + "row_median_tag"),
	}
}

// Tags bundles the provenance tag names configured in the parameters
// section.
type Tags struct {
	Log          string
	Histone      string
	SampleFilter string
	ManualReject string
	ProbeFilter  string
	Offset       string
	Outlier      string
	GlobalMedian string
	RowMedian    string
}

// OffsetBounds parses parameters.<assay>_offset_bounds, formatted "lo,hi".
func (c *Config) OffsetBounds(assay psp.AssayType) (psp.OffsetBounds, error) {
	raw := c.v.GetString("parameters." + strings.ToLower(assay.String()) + "_offset_bounds")
	parts := strings.Split(raw, ",")
	if len(parts) != 2 {
		return psp.OffsetBounds{}, fmt.Errorf("pspconfig: offset_bounds %q is not \"lo,hi\"", raw)
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return psp.OffsetBounds{}, fmt.Errorf("pspconfig: offset_bounds lo: %w", err)
	}
	hi, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return psp.OffsetBounds{}, fmt.Errorf("pspconfig: offset_bounds hi: %w", err)
	}
	return psp.OffsetBounds{Lo: lo, Hi: hi}, nil
}

// DistSDCutoff returns parameters.<assay>_dist_sd_cutoff, the outlier k.
func (c *Config) DistSDCutoff(assay psp.AssayType) (float64, bool) {
	return c.AssayFloat(assay, "dist_sd_cutoff")
}

// AssayFloat implements psp.ThresholdSource: resolves
// parameters.<assay>_<key> as a float64.
func (c *Config) AssayFloat(assay psp.AssayType, key string) (float64, bool) {
	fullKey := "parameters." + strings.ToLower(assay.String()) + "_" + key
	if !c.v.IsSet(fullKey) {
		return 0, false
	}
	raw := c.v.Get(fullKey)
	switch v := raw.(type) {
	case float64:
		return v, true
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		f, err := strconv.ParseFloat(fmt.Sprint(v), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
}

// AllSettings exposes the raw viper settings map, for `psp-dry config`'s
// show command.
func (c *Config) AllSettings() map[string]interface{} { return c.v.AllSettings() }

// Set stores a key in memory; WriteConfigAs persists it.
func (c *Config) Set(key, value string) { c.v.Set(key, value) }

// WriteConfigAs persists the current settings to path as YAML.
func (c *Config) WriteConfigAs(path string) error { return c.v.WriteConfigAs(path) }

// ConfigFileUsed returns the path viper loaded from, if any.
func (c *Config) ConfigFileUsed() string { return c.v.ConfigFileUsed() }
