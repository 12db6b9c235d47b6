// Package job is the thin adapter layer that resolves <prefix><suffix>
// file names, reads the Gerber/Excellon bytes, normalizes every layer to
// the board origin, and drives the internal/ops strategies in a fixed
// order. The core packages underneath take parsed geometry and a config,
// never paths, so this is the only layer that touches the filesystem on
// the read side.
package job

import "fmt"

// MissingFileError reports a required input file that could not be found.
// Only the top copper layer is fatal; every other suffix is optional and
// only produces a warning.
type MissingFileError struct {
	Path string
}

func (e *MissingFileError) Error() string {
	return fmt.Sprintf("missing required file: %s (nothing can be normalized without top copper)", e.Path)
}

// GeometryError wraps a failure inside one operation's geometry stage.
type GeometryError struct {
	Op     string
	Detail string
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("geometry error in %s: %s", e.Op, e.Detail)
}
