package shared

import (
	"fmt"
	"math"
)

// LocalPosition is a point in metres, either relative to a building centre or
// to the settlement origin depending on context.
type LocalPosition struct {
	X float64
	Y float64
}

func NewLocalPosition(x, y float64) LocalPosition {
	return LocalPosition{X: x, Y: y}
}

func (p LocalPosition) String() string {
	return fmt.Sprintf("(%.2f, %.2f)", p.X, p.Y)
}

// Distance returns the euclidean distance between two points
func (p LocalPosition) Distance(o LocalPosition) float64 {
	return math.Hypot(p.X-o.X, p.Y-o.Y)
}

// Placement is where a building sits inside the settlement: its centre and its
// facing in degrees clockwise from north.
type Placement struct {
	Center LocalPosition
	Facing float64
}

// ToSettlement converts a building-relative position into settlement coordinates
func (pl Placement) ToSettlement(rel LocalPosition) LocalPosition {
	rad := pl.Facing * math.Pi / 180
	cos, sin := math.Cos(rad), math.Sin(rad)
	return LocalPosition{
		X: pl.Center.X + rel.X*cos - rel.Y*sin,
		Y: pl.Center.Y + rel.X*sin + rel.Y*cos,
	}
}
