package psp

// BuildAuditRecords produces one record per original input column.
// offsetsForNaNRemaining must be aligned positionally with
// postSampleNaNRemaining — the column set at the moment OffsetOptimizer
// ran, before OutlierFilter removed any of them. A sample's offset is
// reported whenever it was present at optimization time, even if
// OutlierFilter later dropped it.
func BuildAuditRecords(originalIDs []string, originalC *Metadata, plateField, wellField string, postSampleNaNRemaining, postSampleDistRemaining []string, offsetsForNaNRemaining OffsetVector) []AuditRecord {
	naNSet := toSet(postSampleNaNRemaining)
	distSet := toSet(postSampleDistRemaining)

	offsetByID := make(map[string]float64, len(postSampleNaNRemaining))
	for i, id := range postSampleNaNRemaining {
		if offsetsForNaNRemaining != nil && i < len(offsetsForNaNRemaining) {
			offsetByID[id] = offsetsForNaNRemaining[i]
		}
	}

	records := make([]AuditRecord, len(originalIDs))
	for i, id := range originalIDs {
		pos := indexOf(originalC.Index, id)
		rec := AuditRecord{
			Offset:           Missing,
			SurvivedOutlier:  distSet[id],
			SurvivedCoverage: naNSet[id],
		}
		if pos >= 0 {
			rec.PlateName = originalC.Get(plateField, pos)
			rec.WellName = originalC.Get(wellField, pos)
		}
		if v, ok := offsetByID[id]; ok {
			rec.Offset = v
		}
		records[i] = rec
	}
	return records
}

func toSet(ids []string) map[string]bool {
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = true
	}
	return out
}

func indexOf(ids []string, target string) int {
	for i, id := range ids {
		if id == target {
			return i
		}
	}
	return -1
}
