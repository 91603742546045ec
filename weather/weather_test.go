package weather

import (
	"math"
	"testing"
)

func TestNoiseDeterministic(t *testing.T) {
	a := NewPerlinNoise(42)
	b := NewPerlinNoise(42)

	for i := 0; i < 20; i++ {
		x, y := float64(i)*0.37, float64(i)*0.71
		if a.Noise2D(x, y) != b.Noise2D(x, y) {
			t.Fatalf("same seed diverged at (%v, %v)", x, y)
		}
	}

	c := NewPerlinNoise(43)
	same := true
	for i := 0; i < 20; i++ {
		x, y := float64(i)*0.37, float64(i)*0.71
		if a.Noise2D(x, y) != c.Noise2D(x, y) {
			same = false
		}
	}
	if same {
		t.Error("different seeds produced identical noise")
	}
}

func TestNoiseBounded(t *testing.T) {
	p := NewPerlinNoise(1)
	for i := 0; i < 500; i++ {
		x := float64(i) * 0.173
		y := float64(i) * 0.289
		n := p.Noise2D(x, y)
		if math.Abs(n) > 1.5 {
			t.Errorf("noise at (%v, %v) out of range: %v", x, y, n)
		}
	}
}

func TestNoiseContinuity(t *testing.T) {
	p := NewPerlinNoise(7)
	prev := p.Noise2D(0, 0)
	for i := 1; i <= 1000; i++ {
		x := float64(i) * 0.01
		n := p.Noise2D(x, 0.5)
		if math.Abs(n-prev) > 0.1 {
			t.Fatalf("noise jumps at x=%v: %v -> %v", x, prev, n)
		}
		prev = n
	}
}

func TestFieldFrictionRange(t *testing.T) {
	f := NewField(9, Params{
		Scale:     600,
		Octaves:   3,
		BaseGrip:  0.97,
		WetGrip:   0.90,
		Intensity: 1.0,
	})

	for i := 0; i < 200; i++ {
		x := float64(i) * 17.3
		y := float64(i) * 29.1
		fr := f.FrictionAt(x, y)
		if fr < 0.90 || fr > 0.97 {
			t.Errorf("friction at (%v, %v) = %v, want within [0.90, 0.97]", x, y, fr)
		}
	}
}

func TestFieldZeroIntensityIsDry(t *testing.T) {
	f := NewField(9, Params{
		Scale:     600,
		Octaves:   3,
		BaseGrip:  0.97,
		WetGrip:   0.90,
		Intensity: 0,
	})

	if fr := f.FrictionAt(1234, 567); fr != 0.97 {
		t.Errorf("dry field friction = %v, want base 0.97", fr)
	}
}

func TestFieldDeterministic(t *testing.T) {
	p := Params{Scale: 600, Octaves: 3, BaseGrip: 0.97, WetGrip: 0.9, Intensity: 1}
	a := NewField(5, p)
	b := NewField(5, p)

	if a.FrictionAt(100, 200) != b.FrictionAt(100, 200) {
		t.Error("same seed produced different fields")
	}
}
