package vector

import (
	"fmt"
	"math"
)

const π = math.Pi

// Vector is a point or a displacement on the race map
type Vector struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
}

func New(x, y float64) Vector {
	return Vector{X: x, Y: y}
}

func ToRadians(a float64) float64 {
	return a * π / 180.0
}

func ToDegrees(a float64) float64 {
	return a * 180.0 / π
}

// RoundHalfUp rounds like the game engine does : halves go toward +∞
func RoundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}

func wrap360(d float64) float64 {
	if 0.0 <= d && d < 360.0 {
		return d
	}
	d = math.Mod(d, 360.0)
	if d < 0 {
		d += 360.0
	}
	return d
}

func (v Vector) Distance(p Vector) float64 {
	dx := v.X - p.X
	dy := v.Y - p.Y
	return math.Sqrt(dx*dx + dy*dy)
}

func (v Vector) Equals(p Vector) bool {
	return v.X == p.X && v.Y == p.Y
}

func (v Vector) Add(p Vector) Vector {
	return Vector{X: v.X + p.X, Y: v.Y + p.Y}
}

func (v Vector) Sub(p Vector) Vector {
	return Vector{X: v.X - p.X, Y: v.Y - p.Y}
}

func (v Vector) Scale(n float64) Vector {
	return Vector{X: v.X * n, Y: v.Y * n}
}

func (v Vector) Divide(n float64) Vector {
	return Vector{X: v.X / n, Y: v.Y / n}
}

// Round snaps the vector on the integer grid used by the engine for positions
func (v Vector) Round() Vector {
	return Vector{X: RoundHalfUp(v.X), Y: RoundHalfUp(v.Y)}
}

// Truncate drops the fractional part toward zero, as the engine does for speeds
func (v Vector) Truncate() Vector {
	return Vector{X: math.Trunc(v.X), Y: math.Trunc(v.Y)}
}

func (v Vector) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

// ProjectedLengthOn is the scalar projection of v onto p, v·p / |p|.
// It is 0 when either vector is null.
func (v Vector) ProjectedLengthOn(p Vector) float64 {
	l := p.Length()
	if l == 0 || v.Length() == 0 {
		return 0
	}

	return (v.X*p.X + v.Y*p.Y) / l
}

// Angle is the absolute direction of v, in degrees in [0,360)
func (v Vector) Angle() float64 {
	return wrap360(ToDegrees(math.Atan2(v.Y, v.X)))
}

// AngleTo is the absolute bearing from v to p, in degrees in [0,360)
func (v Vector) AngleTo(p Vector) float64 {
	return wrap360(ToDegrees(math.Atan2(p.Y-v.Y, p.X-v.X)))
}

func (v Vector) String() string {
	return fmt.Sprintf("(%g,%g)", v.X, v.Y)
}
