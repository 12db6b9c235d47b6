package job

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCopperGerber = `
%FSLAX36Y36*%
%MOMM*%
%ADD10C,1.500000*%
D10*
X10000000Y10000000D03*
X20000000Y10000000D03*
M02*
`

const testSilkGerber = `
%FSLAX36Y36*%
%MOMM*%
%ADD11C,0.200000*%
D11*
X10000000Y10000000D02*
X20000000Y10000000D01*
M02*
`

const testOutlineGerber = `
%FSLAX36Y36*%
%MOMM*%
%ADD12C,1.000000*%
D12*
X10000000Y10000000D02*
X20000000Y10000000D01*
M02*
`

const testPTHDrill = `
M48
METRIC,LZ
T01C0.800
%
T01
X010000Y010000
X020000Y010000
M30
`

func writeBoardFixture(t *testing.T) (dir, prefix string) {
	t.Helper()
	dir = t.TempDir()
	prefix = "board"
	files := map[string]string{
		SuffixTopCopper: testCopperGerber,
		SuffixTopSilk:   testSilkGerber,
		SuffixOutline:   testOutlineGerber,
		SuffixPTH:       testPTHDrill,
	}
	for suffix, content := range files {
		path := filepath.Join(dir, prefix+suffix)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir, prefix
}

func TestLoadNormalizesToBoardOrigin(t *testing.T) {
	dir, prefix := writeBoardFixture(t)

	b, err := Load(dir, prefix, false, 0)
	require.NoError(t, err)
	require.NotNil(t, b.Copper)
	assert.False(t, b.Copper.Empty())

	minX, minY, _, _, ok := b.Copper.TightBounds()
	require.True(t, ok)
	assert.InDelta(t, 0, minX, 1e-6)
	assert.InDelta(t, 0, minY, 1e-6)

	require.Len(t, b.Holes, 2)
	for _, h := range b.Holes {
		assert.GreaterOrEqual(t, h.X, -1e-6)
		assert.GreaterOrEqual(t, h.Y, -1e-6)
	}

	require.Len(t, b.SilkDraw, 1)
	require.NotNil(t, b.Outline)
}

func TestLoadMissingCopperIsFatal(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(dir, "nope", false, 0)
	require.Error(t, err)
	var missing *MissingFileError
	require.ErrorAs(t, err, &missing)
}

func TestLoadMissingOptionalFilesOnlyWarns(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "board"+SuffixTopCopper), []byte(testCopperGerber), 0o644))

	b, err := Load(dir, "board", false, 0)
	require.NoError(t, err)
	assert.Nil(t, b.Outline)
	assert.Empty(t, b.Holes)
	assert.NotEmpty(t, b.Warnings)
}

func TestBoardDedupeHoles(t *testing.T) {
	dir, prefix := writeBoardFixture(t)
	b, err := Load(dir, prefix, false, 0)
	require.NoError(t, err)

	before := len(b.Holes)
	b.DedupeHoles(0.001)
	assert.Equal(t, before, len(b.Holes))
}
