// Package geom holds the 2D vector math shared by the fleet model and the steering engine.
package geom

import "math"

// Vec2 is a point or direction in world units.
type Vec2 struct {
	X, Y float64
}

func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{X: v.X + other.X, Y: v.Y + other.Y}
}

func (v Vec2) Subtract(other Vec2) Vec2 {
	return Vec2{X: v.X - other.X, Y: v.Y - other.Y}
}

func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

func (v Vec2) LengthSq() float64 {
	return v.X*v.X + v.Y*v.Y
}

func (v Vec2) Magnitude() float64 {
	return math.Sqrt(v.LengthSq())
}

func (v Vec2) Normalize() Vec2 {
	mag := v.Magnitude()
	if mag == 0 {
		return v
	}
	return v.Scale(1.0 / mag)
}

func (v Vec2) DistanceTo(other Vec2) float64 {
	return v.Subtract(other).Magnitude()
}

// ClampMagnitude scales v down to max when it is longer.
func (v Vec2) ClampMagnitude(max float64) Vec2 {
	lenSq := v.LengthSq()
	if lenSq > max*max {
		return v.Scale(max / math.Sqrt(lenSq))
	}
	return v
}
