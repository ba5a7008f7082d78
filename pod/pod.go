package pod

import (
	"fmt"
	"math"

	"github.com/a-bouts/pod-racer/vector"
)

const (
	Drag            = 0.85
	CheckpointRange = 550.0
	BoostThrust     = 650.0
	MaxThrust       = 100.0
	MaxRotation     = 18.0
	AimDistance     = 4000.0
	InitialBoosts   = 1

	// UnknownHeading is sent by the referee on the very first turn
	UnknownHeading = -1
)

// Course gives the position of the checkpoint a pod aims at
type Course interface {
	Checkpoint(next int) vector.Vector
}

// Control is one instruction for one turn. Angle is relative to the pod heading
type Control struct {
	Angle  float64 `json:"angle" msgpack:"angle"`
	Thrust float64 `json:"thrust" msgpack:"thrust"`
	Shield bool    `json:"shield" msgpack:"shield"`
	Boost  bool    `json:"boost" msgpack:"boost"`
}

// Telemetry is one pod line as read from the referee
type Telemetry struct {
	X       int `json:"x" msgpack:"x"`
	Y       int `json:"y" msgpack:"y"`
	VX      int `json:"vx" msgpack:"vx"`
	VY      int `json:"vy" msgpack:"vy"`
	Heading int `json:"heading" msgpack:"heading"`
	Next    int `json:"next" msgpack:"next"`
}

type Pod struct {
	Position vector.Vector `json:"position" msgpack:"position"`
	Velocity vector.Vector `json:"velocity" msgpack:"velocity"`
	Heading  float64       `json:"heading" msgpack:"heading"`
	Boosts   int           `json:"boosts" msgpack:"boosts"`
	Next     int           `json:"next" msgpack:"next"`
}

func New() Pod {
	return Pod{Boosts: InitialBoosts}
}

// Update refreshes the live pod from the referee. Boosts are not part of the
// telemetry and are kept.
func (p *Pod) Update(t Telemetry, course Course) {
	p.Position = vector.New(float64(t.X), float64(t.Y))
	p.Velocity = vector.New(float64(t.VX), float64(t.VY))
	p.Next = t.Next

	if t.Heading == UnknownHeading {
		p.Heading = vector.RoundHalfUp(p.Position.AngleTo(course.Checkpoint(p.Next)))
	} else {
		p.Heading = float64(t.Heading)
	}
}

// Simulate plays one turn of the engine physics and returns the resulting pod.
// The receiver is left untouched.
func (p Pod) Simulate(c Control, course Course) Pod {
	heading := vector.RoundHalfUp(p.Heading + c.Angle)
	heading = math.Mod(heading, 360)
	if heading < 0 {
		heading += 360
	}

	boosted := false
	thrust := c.Thrust
	if c.Shield {
		thrust = 0
	} else if c.Boost && p.Boosts > 0 {
		thrust = BoostThrust
		boosted = true
	}

	h := vector.ToRadians(heading)
	speed := p.Velocity.Add(vector.New(thrust*math.Cos(h), thrust*math.Sin(h)))

	next := Pod{
		Position: p.Position.Add(speed).Round(),
		Velocity: speed.Scale(Drag).Truncate(),
		Heading:  heading,
		Boosts:   p.Boosts,
		Next:     p.Next,
	}

	if boosted {
		next.Boosts--
	}

	if next.Position.Distance(course.Checkpoint(p.Next)) < CheckpointRange {
		next.Next++
	}

	return next
}

// Render converts the control into the referee command line. It consumes a
// boost charge of the live pod when BOOST is sent : call it once per turn.
func (p *Pod) Render(c Control) string {
	a := vector.ToRadians(math.Mod(c.Angle+p.Heading, 360))
	x := p.Position.X + vector.RoundHalfUp(math.Cos(a)*AimDistance)
	y := p.Position.Y + vector.RoundHalfUp(math.Sin(a)*AimDistance)

	var token string
	switch {
	case c.Shield:
		token = "SHIELD"
	case c.Boost && p.Boosts > 0:
		p.Boosts--
		token = "BOOST"
	default:
		token = fmt.Sprintf("%d", int(vector.RoundHalfUp(c.Thrust)))
	}

	return fmt.Sprintf("%d %d %s", int(x), int(y), token)
}
