// Package sexp provides shared S-expression navigation helpers and geometry
// types for KiCad files.
package sexp

import (
	"fmt"
	"math"
)

// Position represents a 2D coordinate in millimetres, as written in the
// schematic file. No unit conversion is applied.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Angle represents rotation in degrees
type Angle float64

// PositionAngle combines position with rotation
type PositionAngle struct {
	Position
	Angle Angle
}

// DistanceTo returns the Euclidean distance to other
func (p Position) DistanceTo(other Position) float64 {
	return math.Hypot(p.X-other.X, p.Y-other.Y)
}

func (p Position) String() string {
	return fmt.Sprintf("(%.2f, %.2f)", p.X, p.Y)
}

// Property represents a key-value property (used in symbols and sheets)
type Property struct {
	Key      string
	Value    string
	Position PositionAngle
}
