package job

import "path/filepath"

// Input file suffixes, following a fixed normalization convention. The
// front end (outside the core) is responsible for turning vendor-specific
// export names into these canonical ones before the job ever sees prefix.
const (
	SuffixTopCopper = "-TopLayer.gbr"
	SuffixTopSilk   = "-TopSilkLayer.gbr"
	SuffixOutline   = "-BoardOutLine.gbr"
	SuffixPTH       = "-PTH.drl"
	SuffixNPTH      = "-NPTH.drl"
)

// ResolvePath concatenates <prefix><suffix> inside dir.
func ResolvePath(dir, prefix, suffix string) string {
	return filepath.Join(dir, prefix+suffix)
}
