package fixedpoint

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeDecimalPoint(t *testing.T) {
	v := Decode("1.25", Format{IntDigits: 3, DecDigits: 3, Zero: LeadingSuppressed})
	require.InDelta(t, 1.25, v, 1e-9)
}

func TestDecodeLeadingSuppression(t *testing.T) {
	// FS LAX34Y34: int=3 dec=4 total=7, so under L the short token "1234"
	// is padded on the left to "0001234", which reads as 000.1234.
	f := Format{IntDigits: 3, DecDigits: 4, Zero: LeadingSuppressed}
	v := Decode("1234", f)
	require.InDelta(t, 0.1234, v, 1e-9)
}

func TestDecodeTrailingSuppression(t *testing.T) {
	f := Format{IntDigits: 3, DecDigits: 4, Zero: TrailingSuppressed}
	v := Decode("1234", f)
	require.InDelta(t, 123.4, v, 1e-9)
}

func TestDecodeNegative(t *testing.T) {
	f := Format{IntDigits: 2, DecDigits: 3, Zero: LeadingSuppressed}
	v := Decode("-100", f)
	require.InDelta(t, -0.1, v, 1e-9)
}

func TestDecodeOverlongTokenTruncatesRightmost(t *testing.T) {
	f := Format{IntDigits: 2, DecDigits: 2, Zero: LeadingSuppressed}
	v := Decode("123456", f)
	require.InDelta(t, 34.56, v, 1e-9)
}

func TestDecodeZeroDecimalDigits(t *testing.T) {
	f := Format{IntDigits: 4, DecDigits: 0, Zero: LeadingSuppressed}
	v := Decode("42", f)
	require.InDelta(t, 42, v, 1e-9)
}

func TestRoundTripUnderSameFormat(t *testing.T) {
	formats := []Format{
		{IntDigits: 2, DecDigits: 4, Zero: LeadingSuppressed},
		{IntDigits: 3, DecDigits: 3, Zero: TrailingSuppressed},
		{IntDigits: 4, DecDigits: 2, Zero: LeadingSuppressed},
	}
	for _, f := range formats {
		for _, raw := range []string{"1", "12", "123456", "1000001"} {
			v := Decode(raw, f)
			enc := Encode(v, f)
			v2 := Decode(enc, f)
			require.InDelta(t, v, v2, 1e-6, "format %+v raw %q", f, raw)
		}
	}
}
