package pspconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broadinstitute/psp-dry/internal/psp"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

const sampleConfig = `
io:
  nan_values:
    - NaN
    - "#N/A"
metadata:
  prov_code_field: provenance_code
  prov_code_delimiter: "+"
  assay_type_field: pr_assay
  p100_assays:
    - GR1
  gcp_assays:
    - GCP
  det_plate_field: det_plate
  det_well_field: det_well
parameters:
  p100_sample_frac_cutoff: 0.25
  p100_probe_frac_cutoff: 0.5
  p100_probe_sd_cutoff: 3
  p100_dist_sd_cutoff: 3
  p100_offset_bounds: "-2,2"
`

func TestLoadAndAccessors(t *testing.T) {
	path := writeConfig(t, sampleConfig)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"NaN", "#N/A"}, cfg.NanValues())
	assert.Equal(t, "provenance_code", cfg.ProvCodeField())
	assert.Equal(t, "+", cfg.ProvCodeDelimiter())
	assert.Equal(t, []string{"GR1"}, cfg.P100Assays())
	assert.Equal(t, []string{"GCP"}, cfg.GCPAssays())
}

func TestAssayFloat(t *testing.T) {
	path := writeConfig(t, sampleConfig)
	cfg, err := Load(path)
	require.NoError(t, err)

	v, ok := cfg.AssayFloat(psp.AssayP100, "sample_frac_cutoff")
	require.True(t, ok)
	assert.Equal(t, 0.25, v)

	_, ok = cfg.AssayFloat(psp.AssayGCP, "sample_frac_cutoff")
	assert.False(t, ok)
}

func TestOffsetBoundsParsing(t *testing.T) {
	path := writeConfig(t, sampleConfig)
	cfg, err := Load(path)
	require.NoError(t, err)

	bounds, err := cfg.OffsetBounds(psp.AssayP100)
	require.NoError(t, err)
	assert.Equal(t, psp.OffsetBounds{Lo: -2, Hi: 2}, bounds)
}

func TestDefaultTagsApplied(t *testing.T) {
	path := writeConfig(t, sampleConfig)
	cfg, err := Load(path)
	require.NoError(t, err)

	tags := cfg.Tags()
	assert.Equal(t, DefaultLogTag, tags.Log)
	assert.Equal(t, DefaultOutlierTag, tags.Outlier)
}

func TestDistSDCutoff(t *testing.T) {
	path := writeConfig(t, sampleConfig)
	cfg, err := Load(path)
	require.NoError(t, err)

	v, ok := cfg.DistSDCutoff(psp.AssayP100)
	require.True(t, ok)
	assert.Equal(t, 3.0, v)
}
