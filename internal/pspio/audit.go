// Package pspio writes the tab-separated audit table produced alongside
// a processed matrix.
package pspio

import (
	"bufio"
	"io"
	"os"
	"strconv"

	"github.com/broadinstitute/psp-dry/internal/psp"
)

// AuditWriter writes one row per psp.AuditRecord with a fixed header.
type AuditWriter struct {
	w *bufio.Writer
}

// NewAuditWriter wraps w in a buffered tab-separated writer.
func NewAuditWriter(w io.Writer) *AuditWriter {
	return &AuditWriter{w: bufio.NewWriter(w)}
}

// WriteAuditFile creates path and writes header plus every record,
// closing the file before returning.
func WriteAuditFile(path string, records []psp.AuditRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	aw := NewAuditWriter(f)
	if err := aw.WriteHeader(); err != nil {
		return err
	}
	for _, r := range records {
		if err := aw.Write(r); err != nil {
			return err
		}
	}
	return aw.Flush()
}

// WriteHeader writes the fixed header line.
func (aw *AuditWriter) WriteHeader() error {
	_, err := aw.w.WriteString("plate_name\twell_name\toptimization_offset\tremains_after_outlier_removal\tremains_after_poor_coverage_filtration\n")
	return err
}

// Write writes a single audit record.
func (aw *AuditWriter) Write(r psp.AuditRecord) error {
	offset := "NA"
	if !psp.IsMissing(r.Offset) {
		offset = strconv.FormatFloat(r.Offset, 'g', -1, 64)
	}
	_, err := aw.w.WriteString(
		r.PlateName + "\t" +
			r.WellName + "\t" +
			offset + "\t" +
			strconv.FormatBool(r.SurvivedOutlier) + "\t" +
			strconv.FormatBool(r.SurvivedCoverage) + "\n")
	return err
}

// Flush flushes the underlying buffered writer.
func (aw *AuditWriter) Flush() error { return aw.w.Flush() }
