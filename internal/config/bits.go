package config

import (
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// BitType tags the classification inferred from a bit's name/type string:
// substrings "drill", "v"/"engrave"/"conic", and
// "flat"/"end"/"mill"/"router" select the three buckets the operation
// strategies dispatch on.
type BitType int

const (
	BitUnknown BitType = iota
	BitDrill
	BitVBit
	BitMill
)

// Bit is one entry from the bit library. Type keeps the raw string from
// the file; Kind classifies it each time it is called.
type Bit struct {
	Name        string  `toml:"-"`
	Type        string  `toml:"type"`
	Diameter    float64 `toml:"diameter"`
	Angle       float64 `toml:"angle"`
	FluteLength float64 `toml:"flute_length"`
	FeedXY      float64 `toml:"feed_xy"`
	FeedZ       float64 `toml:"feed_z"`
	RPM         int     `toml:"rpm"`
	Stepdown    float64 `toml:"stepdown"`
	RampLen     float64 `toml:"ramp_len"`
}

// Kind classifies Type by substring match.
func (b Bit) Kind() BitType {
	t := strings.ToLower(b.Type)
	switch {
	case strings.Contains(t, "drill"):
		return BitDrill
	case strings.Contains(t, "v") || strings.Contains(t, "engrave") || strings.Contains(t, "conic"):
		return BitVBit
	case strings.Contains(t, "flat") || strings.Contains(t, "end") || strings.Contains(t, "mill") || strings.Contains(t, "router"):
		return BitMill
	default:
		return BitUnknown
	}
}

// Library is a named collection of bits, mirroring bits.ini's sections.
type Library struct {
	Bits map[string]Bit
}

type rawLibrary struct {
	Bit map[string]Bit `toml:"bit"`
}

// LoadBits reads a bits.toml file shaped as [bit.<name>] sections.
func LoadBits(path string) (Library, error) {
	lib := Library{Bits: map[string]Bit{}}
	if path == "" {
		return lib, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return lib, nil
	}

	var raw rawLibrary
	if _, err := toml.DecodeFile(path, &raw); err != nil {
		return Library{}, err
	}
	for name, b := range raw.Bit {
		b.Name = name
		if b.FeedXY == 0 {
			b.FeedXY = 200.0
		}
		if b.FeedZ == 0 {
			b.FeedZ = 80.0
		}
		if b.RPM == 0 {
			b.RPM = 12000
		}
		lib.Bits[name] = b
	}
	return lib, nil
}

// Get looks up a bit by name.
func (l Library) Get(name string) (Bit, bool) {
	b, ok := l.Bits[name]
	return b, ok
}

// DrillBits returns every bit classified BitDrill, sorted by diameter
// ascending, the order the drill planner expects.
func (l Library) DrillBits() []Bit {
	var out []Bit
	for _, b := range l.Bits {
		if b.Kind() == BitDrill && b.Diameter > 0 {
			out = append(out, b)
		}
	}
	sortBitsByDiameter(out)
	return out
}

func sortBitsByDiameter(bits []Bit) {
	for i := 1; i < len(bits); i++ {
		for j := i; j > 0 && bits[j].Diameter < bits[j-1].Diameter; j-- {
			bits[j], bits[j-1] = bits[j-1], bits[j]
		}
	}
}
