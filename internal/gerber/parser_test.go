package gerber

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCopperPad = `
%FSLAX36Y36*%
%MOMM*%
%ADD10C,1.500000*%
G04 comment*
D10*
X10000000Y10000000D03*
M02*
`

func TestParseFlashProducesGeometry(t *testing.T) {
	p, err := Parse(strings.NewReader(sampleCopperPad), "pad.gbr", false, 0)
	require.NoError(t, err)
	require.Len(t, p.Flashes, 1)
	assert.Equal(t, 10, p.Flashes[0].ApertureID)
	assert.InDelta(t, 10.0, p.Flashes[0].X, 1e-6)
	assert.InDelta(t, 10.0, p.Flashes[0].Y, 1e-6)

	c := p.Composite()
	require.NotNil(t, c)
	assert.False(t, c.Empty())
}

const sampleDraw = `
%FSLAX36Y36*%
%MOMM*%
%ADD10C,0.200000*%
D10*
X0Y0D02*
X5000000Y0D01*
M02*
`

func TestParseDrawProducesTrackGeometry(t *testing.T) {
	p, err := Parse(strings.NewReader(sampleDraw), "track.gbr", false, 0)
	require.NoError(t, err)
	require.Len(t, p.Draws, 1)
	assert.InDelta(t, 5.0, p.Draws[0].X2, 1e-6)

	tr := p.Tracks()
	require.NotNil(t, tr)
	assert.False(t, tr.Empty())
}

const sampleUndefinedAperture = `
%FSLAX36Y36*%
%MOMM*%
D99*
X0Y0D03*
M02*
`

func TestFlashWithUndefinedApertureWarnsInsteadOfErroring(t *testing.T) {
	p, err := Parse(strings.NewReader(sampleUndefinedAperture), "bad.gbr", false, 0)
	require.NoError(t, err)
	assert.NotEmpty(t, p.Warnings)
}

func TestFlashWithUndefinedApertureFailsInStrictMode(t *testing.T) {
	_, err := Parse(strings.NewReader(sampleUndefinedAperture), "bad.gbr", true, 0)
	assert.Error(t, err)
}

const sampleRegion = `
%FSLAX36Y36*%
%MOMM*%
G36*
X0Y0D02*
X5000000Y0D01*
X5000000Y5000000D01*
X0Y5000000D01*
X0Y0D01*
G37*
M02*
`

func TestRegionProducesPolygonGeometry(t *testing.T) {
	p, err := Parse(strings.NewReader(sampleRegion), "region.gbr", false, 0)
	require.NoError(t, err)
	c := p.Composite()
	require.NotNil(t, c)
	assert.False(t, c.Empty())
}

const samplePolarity = `
%FSLAX36Y36*%
%MOMM*%
%ADD10R,4.000000X4.000000*%
%ADD11R,2.000000X4.000000*%
D10*
X2000000Y2000000D03*
X4000000Y2000000D03*
%LPC*%
D11*
X3000000Y2000000D03*
M02*
`

func TestClearPolaritySubtractsFromAccumulatedDark(t *testing.T) {
	p, err := Parse(strings.NewReader(samplePolarity), "polarity.gbr", false, 0)
	require.NoError(t, err)

	c := p.Composite()
	require.NotNil(t, c)

	at := func(x, y float64) uint8 {
		px, py := c.ToPx(x, y)
		v := uint8(0)
		if px >= 0 && py >= 0 && px < c.Width && py < c.Height {
			v = c.Pix[py*c.Width+px]
		}
		return v
	}

	// The two dark squares survive outside the clear window; the clear
	// rectangle over their overlap is punched out.
	assert.Equal(t, uint8(1), at(1, 2))
	assert.Equal(t, uint8(1), at(5, 2))
	assert.Equal(t, uint8(0), at(3, 2))
}

func TestMissingUnitsAndFSDefaultAndWarn(t *testing.T) {
	p, err := Parse(strings.NewReader("D10*\nX0Y0D03*\nM02*\n"), "bare.gbr", false, 0)
	require.NoError(t, err)
	assert.Equal(t, "mm", p.Units)
	assert.Equal(t, LeadingSuppressedMode(), p.FSZeroMode)
	assert.NotEmpty(t, p.Warnings)
}

func LeadingSuppressedMode() ZeroMode { return 'L' }
