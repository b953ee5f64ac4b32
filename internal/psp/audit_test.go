package psp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestBuildAuditRecords covers 5 original columns c,d,e,f,g on plate1
// wells A1..A5; "d" never survives the sample-NaN filter; "e" survives
// sample-NaN but is later dropped as an outlier. Its offset of 5 still
// appears in the audit output, since the offset was computed while "e"
// was still present.
func TestBuildAuditRecords(t *testing.T) {
	originalIDs := []string{"c", "d", "e", "f", "g"}
	originalC := NewMetadata(originalIDs, map[string][]string{
		"det_plate": {"plate1", "plate1", "plate1", "plate1", "plate1"},
		"det_well":  {"A1", "A2", "A3", "A4", "A5"},
	})

	postSampleNaNRemaining := []string{"c", "e", "f", "g"}
	postSampleDistRemaining := []string{"c", "f", "g"}
	offsets := OffsetVector{0.1, 5, 0.2, 0.3} // aligned with postSampleNaNRemaining

	records := BuildAuditRecords(originalIDs, originalC, "det_plate", "det_well",
		postSampleNaNRemaining, postSampleDistRemaining, offsets)

	expected := []AuditRecord{
		{PlateName: "plate1", WellName: "A1", Offset: 0.1, SurvivedOutlier: true, SurvivedCoverage: true},
		{PlateName: "plate1", WellName: "A2", Offset: Missing, SurvivedOutlier: false, SurvivedCoverage: false},
		{PlateName: "plate1", WellName: "A3", Offset: 5, SurvivedOutlier: false, SurvivedCoverage: true},
		{PlateName: "plate1", WellName: "A4", Offset: 0.2, SurvivedOutlier: true, SurvivedCoverage: true},
		{PlateName: "plate1", WellName: "A5", Offset: 0.3, SurvivedOutlier: true, SurvivedCoverage: true},
	}

	for i, want := range expected {
		got := records[i]
		assert.Equal(t, want.PlateName, got.PlateName)
		assert.Equal(t, want.WellName, got.WellName)
		assert.Equal(t, want.SurvivedOutlier, got.SurvivedOutlier)
		assert.Equal(t, want.SurvivedCoverage, got.SurvivedCoverage)
		if IsMissing(want.Offset) {
			assert.True(t, IsMissing(got.Offset), "record %d offset should be missing", i)
		} else {
			assert.Equal(t, want.Offset, got.Offset)
		}
	}
}

func TestBuildAuditRecordsGCPHasNoOffsets(t *testing.T) {
	originalIDs := []string{"c", "d"}
	originalC := NewMetadata(originalIDs, map[string][]string{
		"det_plate": {"plate1", "plate1"},
		"det_well":  {"A1", "A2"},
	})

	records := BuildAuditRecords(originalIDs, originalC, "det_plate", "det_well",
		[]string{"c", "d"}, []string{"c", "d"}, nil)

	for _, r := range records {
		assert.True(t, IsMissing(r.Offset))
		assert.True(t, r.SurvivedOutlier)
		assert.True(t, r.SurvivedCoverage)
	}
}
