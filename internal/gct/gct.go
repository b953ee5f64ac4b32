// Package gct reads and writes the tab-delimited GCT-like matrix format
// consumed and produced by the dry pipeline: a `#1.3` header, a
// dimensions line, a combined header row of row-metadata field names
// plus sample ids, one line per column-metadata field, then one line
// per data row.
package gct

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/broadinstitute/psp-dry/internal/psp"
)

const formatVersion = "#1.3"

// ParseError carries line context for a malformed GCT file.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("gct parse error at line %d: %s", e.Line, e.Message)
}

// ReadOptions configures how raw string cells are interpreted as
// missing, in addition to the built-in "" and "NA" defaults.
type ReadOptions struct {
	NanValues []string
}

// Read parses a GCT-like file at path into a MatrixTriple; the row and
// column metadata field names are the keys of its R and C Fields maps.
func Read(path string, opts ReadOptions) (*psp.MatrixTriple, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gct file: %w", err)
	}
	defer f.Close()
	return ReadFrom(f, opts)
}

// ReadFrom parses a GCT-like stream, for use with stdin or test fixtures.
func ReadFrom(r io.Reader, opts ReadOptions) (*psp.MatrixTriple, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0

	nextLine := func() (string, bool) {
		if !scanner.Scan() {
			return "", false
		}
		lineNo++
		return scanner.Text(), true
	}

	version, ok := nextLine()
	if !ok {
		return nil, &ParseError{Line: lineNo, Message: "empty file, expected version header"}
	}
	if strings.TrimSpace(version) != formatVersion {
		return nil, &ParseError{Line: lineNo, Message: "unsupported version " + version + ", expected " + formatVersion}
	}

	dimsLine, ok := nextLine()
	if !ok {
		return nil, &ParseError{Line: lineNo, Message: "missing dimensions line"}
	}
	dims := strings.Split(dimsLine, "\t")
	if len(dims) < 4 {
		return nil, &ParseError{Line: lineNo, Message: "dimensions line needs 4 fields: nrow, ncol, nRowMeta, nColMeta"}
	}
	nRow, err1 := strconv.Atoi(dims[0])
	nCol, err2 := strconv.Atoi(dims[1])
	nRowMeta, err3 := strconv.Atoi(dims[2])
	nColMeta, err4 := strconv.Atoi(dims[3])
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return nil, &ParseError{Line: lineNo, Message: "dimensions line must contain integers"}
	}

	colHeaderLine, ok := nextLine()
	if !ok {
		return nil, &ParseError{Line: lineNo, Message: "missing column header line"}
	}
	colHeader := strings.Split(colHeaderLine, "\t")
	if len(colHeader) != 1+nRowMeta+nCol {
		return nil, &ParseError{Line: lineNo, Message: fmt.Sprintf("column header has %d fields, expected %d", len(colHeader), 1+nRowMeta+nCol)}
	}
	rowMetaNames := colHeader[1 : 1+nRowMeta]
	sampleIDs := colHeader[1+nRowMeta:]

	colMetaFields := make(map[string][]string, nColMeta)
	colMetaNames := make([]string, 0, nColMeta)
	for k := 0; k < nColMeta; k++ {
		line, ok := nextLine()
		if !ok {
			return nil, &ParseError{Line: lineNo, Message: "missing column metadata row"}
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 1+nRowMeta+nCol {
			return nil, &ParseError{Line: lineNo, Message: fmt.Sprintf("column metadata row has %d fields, expected %d", len(fields), 1+nRowMeta+nCol)}
		}
		name := fields[0]
		colMetaNames = append(colMetaNames, name)
		colMetaFields[name] = fields[1+nRowMeta:]
	}

	nanSet := make(map[string]bool, len(opts.NanValues))
	for _, v := range opts.NanValues {
		nanSet[v] = true
	}
	nanSet[""] = true
	nanSet["NA"] = true

	rowIDs := make([]string, 0, nRow)
	rowMetaFields := make(map[string][]string, nRowMeta)
	for _, n := range rowMetaNames {
		rowMetaFields[n] = make([]string, 0, nRow)
	}
	matrix := psp.NewMatrix(nRow, nCol)

	for i := 0; i < nRow; i++ {
		line, ok := nextLine()
		if !ok {
			return nil, &ParseError{Line: lineNo, Message: "unexpected end of file reading data rows"}
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 1+nRowMeta+nCol {
			return nil, &ParseError{Line: lineNo, Message: fmt.Sprintf("data row has %d fields, expected %d", len(fields), 1+nRowMeta+nCol)}
		}
		rowIDs = append(rowIDs, fields[0])
		for k, name := range rowMetaNames {
			rowMetaFields[name] = append(rowMetaFields[name], fields[1+k])
		}
		for j, raw := range fields[1+nRowMeta:] {
			if nanSet[raw] {
				matrix.Values[i][j] = psp.Missing
				continue
			}
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, &ParseError{Line: lineNo, Message: "non-numeric data value " + raw}
			}
			matrix.Values[i][j] = v
		}
	}

	return &psp.MatrixTriple{
		D: matrix,
		R: psp.NewMetadata(rowIDs, rowMetaFields),
		C: psp.NewMetadata(sampleIDs, colMetaFields),
	}, nil
}

// Write serializes a MatrixTriple back to GCT-like text at path.
func Write(path string, t *psp.MatrixTriple) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create gct file: %w", err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)
	if err := WriteTo(w, t); err != nil {
		return err
	}
	return w.Flush()
}

// WriteTo serializes a MatrixTriple to w in GCT-like format. Row
// metadata field names are written in sorted order for determinism;
// the same holds for column metadata field names.
func WriteTo(w io.Writer, t *psp.MatrixTriple) error {
	bw := bufio.NewWriter(w)

	rowMetaNames := sortedKeys(t.R.Fields)
	colMetaNames := sortedKeys(t.C.Fields)
	nRow, nCol := t.D.NRows(), t.D.NCols()

	fmt.Fprintln(bw, formatVersion)
	fmt.Fprintf(bw, "%d\t%d\t%d\t%d\n", nRow, nCol, len(rowMetaNames), len(colMetaNames))

	header := append([]string{"id"}, rowMetaNames...)
	header = append(header, t.C.Index...)
	fmt.Fprintln(bw, strings.Join(header, "\t"))

	for _, name := range colMetaNames {
		row := append([]string{name}, blanks(len(rowMetaNames))...)
		row = append(row, t.C.Fields[name]...)
		fmt.Fprintln(bw, strings.Join(row, "\t"))
	}

	for i, id := range t.R.Index {
		row := make([]string, 0, 1+len(rowMetaNames)+nCol)
		row = append(row, id)
		for _, name := range rowMetaNames {
			row = append(row, t.R.Get(name, i))
		}
		for j := 0; j < nCol; j++ {
			v := t.D.Values[i][j]
			if psp.IsMissing(v) {
				row = append(row, "NA")
				continue
			}
			row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
		}
		fmt.Fprintln(bw, strings.Join(row, "\t"))
	}

	return bw.Flush()
}

func sortedKeys(m map[string][]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func blanks(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = "-666"
	}
	return out
}

// DeriveOutputNames derives default output paths from the input
// basename unless the caller supplies explicit overrides.
func DeriveOutputNames(inputPath, outOverride, outPwOverride string) (outPath, outPwPath string) {
	base := strings.TrimSuffix(inputPath, ".gct")
	outPath = outOverride
	if outPath == "" {
		outPath = base + ".dry.processed.gct"
	}
	outPwPath = outPwOverride
	if outPwPath == "" {
		outPwPath = base + ".dry.processed.pw"
	}
	return outPath, outPwPath
}
