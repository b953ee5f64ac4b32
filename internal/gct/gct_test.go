package gct

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/broadinstitute/psp-dry/internal/psp"
)

const sampleGCT = `#1.3
2	2	1	2
id	pr_probe_name	s1	s2
pr_assay	-666	GR1	GR1
det_plate	-666	p1	p1
pep1	PEP1	1.5	NA
pep2	PEP2	2.5	3.5
`

func TestReadFrom(t *testing.T) {
	triple, err := ReadFrom(strings.NewReader(sampleGCT), ReadOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"pep1", "pep2"}, triple.R.Index)
	assert.Equal(t, []string{"s1", "s2"}, triple.C.Index)
	assert.Equal(t, []string{"PEP1", "PEP2"}, triple.R.Fields["pr_probe_name"])
	assert.Equal(t, []string{"GR1", "GR1"}, triple.C.Fields["pr_assay"])
	assert.Equal(t, 1.5, triple.D.Values[0][0])
	assert.True(t, psp.IsMissing(triple.D.Values[0][1]))
	assert.Equal(t, 3.5, triple.D.Values[1][1])
}

func TestReadFromRejectsBadVersion(t *testing.T) {
	_, err := ReadFrom(strings.NewReader("#1.2\n"), ReadOptions{})
	require.Error(t, err)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
}

func TestWriteToRoundTrips(t *testing.T) {
	triple, err := ReadFrom(strings.NewReader(sampleGCT), ReadOptions{})
	require.NoError(t, err)

	var buf strings.Builder
	require.NoError(t, WriteTo(&buf, triple))

	reread, err := ReadFrom(strings.NewReader(buf.String()), ReadOptions{})
	require.NoError(t, err)

	assert.Equal(t, triple.R.Index, reread.R.Index)
	assert.Equal(t, triple.C.Index, reread.C.Index)
	assert.Equal(t, triple.D.Values[1][1], reread.D.Values[1][1])
	assert.True(t, psp.IsMissing(reread.D.Values[0][1]))
}

func TestDeriveOutputNamesDefaults(t *testing.T) {
	out, outPw := DeriveOutputNames("/data/run1.gct", "", "")
	assert.Equal(t, "/data/run1.dry.processed.gct", out)
	assert.Equal(t, "/data/run1.dry.processed.pw", outPw)
}

func TestDeriveOutputNamesOverrides(t *testing.T) {
	out, outPw := DeriveOutputNames("/data/run1.gct", "/out/custom.gct", "/out/custom.pw")
	assert.Equal(t, "/out/custom.gct", out)
	assert.Equal(t, "/out/custom.pw", outPw)
}
