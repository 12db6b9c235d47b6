// Package gerber implements an RS-274X state-machine decoder: aperture
// tables, fixed-point coordinates, dark/clear polarity composition,
// G36/G37 regions, and the center-rectangle aperture macro, built around a
// tagged Aperture variant and an explicit parse-error/warning policy.
package gerber

import "fmt"

// ApertureKind tags the shape variant carried by an Aperture.
type ApertureKind int

const (
	ApertureCircle ApertureKind = iota
	ApertureRect
	ApertureOblong
	ApertureMacro
)

func (k ApertureKind) String() string {
	switch k {
	case ApertureCircle:
		return "circle"
	case ApertureRect:
		return "rect"
	case ApertureOblong:
		return "oblong"
	case ApertureMacro:
		return "macro"
	default:
		return "unknown"
	}
}

// Aperture is the tagged variant: Circle{d}, Rect{w,h}, Oblong{w,h},
// Macro{name, params[]}, each identified by a positive integer ID (the
// field is kept on the struct rather than a separate map key so callers
// that pass an Aperture value around keep its identity).
type Aperture struct {
	ID        int
	Kind      ApertureKind
	Diameter  float64 // Circle
	Width     float64 // Rect, Oblong
	Height    float64 // Rect, Oblong
	MacroName string
	Params    []float64
}

// MacroPrimitiveKind tags a primitive inside an aperture macro body.
type MacroPrimitiveKind int

const (
	// MacroCenterRect is primitive code 21: a centered, rotated rectangle.
	MacroCenterRect MacroPrimitiveKind = 21
)

// Macro is a name plus a tagged set of primitive operations. Only the
// center-rectangle primitive (21) is modeled; a macro with any other body
// is not recorded, so an aperture that names it is reported as an
// undefined macro with a warning and flashes no geometry.
type Macro struct {
	Name       string
	Primitives []MacroPrimitive
}

// MacroPrimitive is one operation inside a macro body.
type MacroPrimitive struct {
	Kind   MacroPrimitiveKind
	Params []float64 // width, height, rotation_deg for MacroCenterRect
}

// Flash is the aperture shape stamped at a point (D03).
type Flash struct {
	ApertureID int
	X, Y       float64
}

// Draw is the aperture shape swept along a segment (D01).
type Draw struct {
	ApertureID int
	X1, Y1     float64
	X2, Y2     float64
}

func (a Aperture) String() string {
	switch a.Kind {
	case ApertureCircle:
		return fmt.Sprintf("D%d circle d=%.4f", a.ID, a.Diameter)
	case ApertureRect:
		return fmt.Sprintf("D%d rect %.4fx%.4f", a.ID, a.Width, a.Height)
	case ApertureOblong:
		return fmt.Sprintf("D%d oblong %.4fx%.4f", a.ID, a.Width, a.Height)
	case ApertureMacro:
		return fmt.Sprintf("D%d macro %s%v", a.ID, a.MacroName, a.Params)
	default:
		return fmt.Sprintf("D%d unknown", a.ID)
	}
}
