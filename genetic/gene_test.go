package genetic

import (
	"math"
	"math/rand"
	"testing"
)

func TestDecodeAngle(t *testing.T) {
	coeffs := []float64{0, 0.25, 0.4, 0.5, 0.6, 0.75, 1.0}
	want := []float64{-18, -18, 18, 18, 18, 18, 18}

	for i, c := range coeffs {
		a := Gene{Angle: c, Thrust: 1}.Decode(false).Angle
		if a != want[i] {
			t.Errorf("Gene{Angle: %.2f}.Decode().Angle = %f; want %f", c, a, want[i])
		}
	}

	a := Gene{Angle: 0.3}.Decode(false).Angle
	if math.Abs(a-(-14.4)) > 1e-9 {
		t.Errorf("Gene{Angle: 0.3}.Decode().Angle = %f; want -14.4", a)
	}

	a = Gene{Angle: 0.7}.Decode(false).Angle
	if math.Abs(a-14.4) > 1e-9 {
		t.Errorf("Gene{Angle: 0.7}.Decode().Angle = %f; want 14.4", a)
	}
}

func TestDecodeThrust(t *testing.T) {
	coeffs := []float64{0, 0.1, 0.25, 0.5, 0.75, 0.8, 1.0}
	want := []float64{0, 0, 0, 50, 100, 100, 100}

	for i, c := range coeffs {
		th := Gene{Thrust: c}.Decode(false).Thrust
		if th != want[i] {
			t.Errorf("Gene{Thrust: %.2f}.Decode().Thrust = %f; want %f", c, th, want[i])
		}
	}
}

func TestDecodeFlags(t *testing.T) {
	c := Gene{Boost: 0.96, Shield: 0.99}.Decode(false)
	if !c.Boost || c.Shield {
		t.Errorf("Decode(shield off) = %+v; want boost and no shield", c)
	}

	c = Gene{Boost: 0.95}.Decode(false)
	if c.Boost {
		t.Errorf("Gene{Boost: 0.95}.Decode() boosts; want no boost")
	}

	c = Gene{Boost: 0.96, Shield: 0.99}.Decode(true)
	if c.Boost || !c.Shield {
		t.Errorf("Decode(shield on) = %+v; want shield and no boost", c)
	}

	c = Gene{Boost: 0.96, Shield: 0.5}.Decode(true)
	if !c.Boost || c.Shield {
		t.Errorf("Decode(shield on, low coeff) = %+v; want boost and no shield", c)
	}
}

func TestMutate(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	g := NewGene(rnd)
	changed := 0

	for i := 0; i < 1000; i++ {
		m := g.Mutate(rnd)

		for _, c := range []float64{m.Angle, m.Boost, m.Shield, m.Thrust} {
			if c < 0 || c > 1 {
				t.Fatalf("Mutate() = %+v; coefficient out of [0,1]", m)
			}
		}

		diff := 0
		if m.Angle != g.Angle {
			diff++
		}
		if m.Boost != g.Boost {
			diff++
		}
		if m.Shield != g.Shield {
			diff++
		}
		if diff > 1 {
			t.Fatalf("Mutate() changed %d of angle, boost and shield; want at most 1", diff)
		}
		if m != g {
			changed++
		}
		g = m
	}

	if changed < 800 {
		t.Errorf("Mutate() changed the gene %d times out of 1000; want most of them", changed)
	}
}

func TestNewGene(t *testing.T) {
	rnd := rand.New(rand.NewSource(3))

	for i := 0; i < 100; i++ {
		g := NewGene(rnd)
		if g.Thrust != 1 {
			t.Fatalf("NewGene().Thrust = %f; want 1", g.Thrust)
		}
		if g.Angle < 0 || g.Angle >= 1 || g.Boost < 0 || g.Boost >= 1 || g.Shield < 0 || g.Shield >= 1 {
			t.Fatalf("NewGene() = %+v; coefficient out of [0,1)", g)
		}
	}
}
