package psp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func p100Triple() *MatrixTriple {
	tr := triple([][]float64{
		{4, 8, 16, 32},
		{8, 16, 32, 64},
		{16, 32, 64, 128},
	}, []string{"pep1", "pep2", "pep3"}, []string{"s1", "s2", "s3", "s4"})
	tr.C.Fields["provenance_code"] = []string{"GR1", "GR1", "GR1", "GR1"}
	tr.C.Fields["pr_assay"] = []string{"GR1", "GR1", "GR1", "GR1"}
	tr.C.Fields["det_plate"] = []string{"p1", "p1", "p1", "p1"}
	tr.C.Fields["det_well"] = []string{"A1", "A2", "A3", "A4"}
	return tr
}

func TestRunPipelineP100EndToEnd(t *testing.T) {
	tr := p100Triple()

	result, err := RunPipeline(tr, PipelineParams{
		AssayRaw:          "GR1",
		P100Assays:        []string{"GR1"},
		GCPAssays:         []string{"GCP"},
		ProvCodeField:     "provenance_code",
		ProvCodeDelimiter: "+",
		LogTransformTag:   "L2X",
		OverrideSampleFrac: 0,
		OverrideProbeFrac:  0,
		OverrideProbeSD:    1000,
		SampleFilterTag:    "SF",
		ManualRejectTag:    "MPR",
		ProbeFilterTag:     "PF",
		OffsetBounds:       OffsetBounds{Lo: -10, Hi: 10},
		OffsetTag:          "LLB",
		OutlierK:           3,
		OutlierTag:         "OSF",
		MedianParams: MedianNormalizeParams{
			GlobalMedianTag: "GMN",
			RowMedianTag:    "RMN",
		},
		PlateField: "det_plate",
		WellField:  "det_well",
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, AssayP100, result.Assay)
	assert.Contains(t, result.Code, "L2X")
	assert.Contains(t, result.Code, "LLB")
	assert.Contains(t, result.Code, "OSF3")
	assert.Contains(t, result.Code, "RMN")
	assert.Len(t, result.Audit, 4)
	for _, a := range result.Audit {
		assert.True(t, a.SurvivedCoverage)
	}
}

func TestRunPipelineGCPSkipsOffsetAndOutlier(t *testing.T) {
	tr := triple([][]float64{
		{2, 4, 8},
		{4, 8, 16},
	}, []string{"histone", "pep1"}, []string{"s1", "s2", "s3"})
	tr.C.Fields["provenance_code"] = []string{"GCP", "GCP", "GCP"}
	tr.C.Fields["pr_assay"] = []string{"GCP", "GCP", "GCP"}
	tr.C.Fields["det_plate"] = []string{"p1", "p1", "p1"}
	tr.C.Fields["det_well"] = []string{"A1", "A2", "A3"}

	result, err := RunPipeline(tr, PipelineParams{
		AssayRaw:                "GCP",
		P100Assays:              []string{"GR1"},
		GCPAssays:               []string{"GCP"},
		ProvCodeField:           "provenance_code",
		ProvCodeDelimiter:       "+",
		LogTransformTag:         "L2X",
		GCPNormalizationPeptide: "histone",
		HistoneNormalizeTag:     "H3N",
		OverrideSampleFrac:      0,
		OverrideProbeFrac:       0,
		OverrideProbeSD:         1000,
		SampleFilterTag:         "SF",
		ManualRejectTag:         "MPR",
		ProbeFilterTag:          "PF",
		OffsetTag:               "LLB",
		OutlierTag:              "OSF",
		MedianParams: MedianNormalizeParams{
			GlobalMedianTag: "GMN",
			RowMedianTag:    "RMN",
		},
		PlateField: "det_plate",
		WellField:  "det_well",
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, AssayGCP, result.Assay)
	assert.Contains(t, result.Code, "H3N")
	assert.NotContains(t, result.Code, "LLB")
	assert.NotContains(t, result.Code, "OSF")
	assert.Nil(t, result.Offsets)
	assert.Equal(t, []string{"pep1"}, result.Triple.R.Index, "histone row removed")
	for _, a := range result.Audit {
		assert.True(t, IsMissing(a.Offset))
		assert.True(t, a.SurvivedOutlier, "GCP never runs outlier filtering")
	}
}

func TestRunPipelineRejectsMisalignedInput(t *testing.T) {
	tr := triple([][]float64{{1, 2}}, []string{"r1", "r2"}, []string{"x"})
	_, err := RunPipeline(tr, PipelineParams{}, nil)
	require.Error(t, err)
}
