package genetic

import (
	"math/rand"

	"github.com/a-bouts/pod-racer/pod"
)

const (
	boostThreshold  = 0.95
	shieldThreshold = 0.95
)

// Gene encodes one turn of a plan with coefficients in [0,1]
type Gene struct {
	Angle  float64 `json:"angle" msgpack:"angle"`
	Boost  float64 `json:"boost" msgpack:"boost"`
	Shield float64 `json:"shield" msgpack:"shield"`
	Thrust float64 `json:"thrust" msgpack:"thrust"`
}

// NewGene draws a random gene. Fresh genes always go full throttle, thrust
// only changes through mutation.
func NewGene(rnd *rand.Rand) Gene {
	return Gene{
		Angle:  rnd.Float64(),
		Boost:  rnd.Float64(),
		Shield: rnd.Float64(),
		Thrust: 1,
	}
}

// Decode maps the coefficients on a control. The shield coefficient is only
// honored when shield is true.
func (g Gene) Decode(shield bool) pod.Control {
	c := pod.Control{}

	if shield && g.Shield > shieldThreshold {
		c.Shield = true
	} else if g.Boost > boostThreshold {
		c.Boost = true
	}

	// the [0.4,0.6] band is only reached when the outer branches did not match
	if g.Angle < 0.25 {
		c.Angle = -pod.MaxRotation
	} else if g.Angle > 0.75 {
		c.Angle = pod.MaxRotation
	} else if g.Angle >= 0.4 && g.Angle <= 0.6 {
		c.Angle = pod.MaxRotation
	} else {
		c.Angle = -pod.MaxRotation + 2*pod.MaxRotation*((g.Angle-0.25)*2.0)
	}

	if g.Thrust < 0.25 {
		c.Thrust = 0
	} else if g.Thrust > 0.75 {
		c.Thrust = pod.MaxThrust
	} else {
		c.Thrust = pod.MaxThrust * ((g.Thrust - 0.25) * 2.0)
	}

	return c
}

// Mutate returns a copy of g with at most one of angle, boost or shield
// redrawn, and the thrust redrawn one time out of ten
func (g Gene) Mutate(rnd *rand.Rand) Gene {
	m := g

	r := rnd.Float64()
	switch {
	case r < 0.4:
		m.Angle = rnd.Float64()
	case r < 0.8:
		m.Boost = rnd.Float64()
	case r < 0.9:
		m.Shield = rnd.Float64()
	}

	if rnd.Float64() >= 0.9 {
		m.Thrust = rnd.Float64()
	}

	return m
}
