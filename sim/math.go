package sim

import "math"

// Vec2 is a 2D vector in world coordinates. Y grows downward.
type Vec2 struct {
	X, Y float64
}

// Add returns v + w.
func (v Vec2) Add(w Vec2) Vec2 { return Vec2{v.X + w.X, v.Y + w.Y} }

// Sub returns v - w.
func (v Vec2) Sub(w Vec2) Vec2 { return Vec2{v.X - w.X, v.Y - w.Y} }

// Scale returns v * s.
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Len returns the vector magnitude.
func (v Vec2) Len() float64 { return math.Sqrt(v.X*v.X + v.Y*v.Y) }

// Normalized returns v scaled to unit length, or the zero vector.
func (v Vec2) Normalized() Vec2 {
	l := v.Len()
	if l == 0 {
		return Vec2{}
	}
	return v.Scale(1 / l)
}

// headingVec returns the unit vector for a heading in degrees.
func headingVec(deg float64) Vec2 {
	rad := deg * math.Pi / 180
	return Vec2{math.Cos(rad), math.Sin(rad)}
}

// normalizeRad wraps an angle to [-Pi, Pi].
func normalizeRad(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

// clamp01 clamps v to [0, 1]. Sensor readings are normalized with it
// before they reach a policy.
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
