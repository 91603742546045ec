// Package weather provides a seeded grip field that modulates tyre friction
// across the world, simulating wet patches on the circuit.
package weather

import (
	"math"
	"math/rand"
)

// PerlinNoise generates coherent noise values.
type PerlinNoise struct {
	perm [512]int
}

// NewPerlinNoise creates a new Perlin noise generator.
func NewPerlinNoise(seed int64) *PerlinNoise {
	p := &PerlinNoise{}
	rng := rand.New(rand.NewSource(seed))

	var perm [256]int
	for i := range perm {
		perm[i] = i
	}
	for i := len(perm) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		perm[i], perm[j] = perm[j], perm[i]
	}
	for i := 0; i < 256; i++ {
		p.perm[i] = perm[i]
		p.perm[i+256] = perm[i]
	}

	return p
}

// Noise2D returns a noise value for 2D coordinates, roughly in [-1, 1].
func (p *PerlinNoise) Noise2D(x, y float64) float64 {
	X := int(math.Floor(x)) & 255
	Y := int(math.Floor(y)) & 255

	x -= math.Floor(x)
	y -= math.Floor(y)

	u := fade(x)
	v := fade(y)

	A := p.perm[X] + Y
	B := p.perm[X+1] + Y

	return lerp(v, lerp(u, grad2D(p.perm[A], x, y),
		grad2D(p.perm[B], x-1, y)),
		lerp(u, grad2D(p.perm[A+1], x, y-1),
			grad2D(p.perm[B+1], x-1, y-1)))
}

// FBM sums octaves of noise with halving amplitude and doubling frequency.
func (p *PerlinNoise) FBM(x, y float64, octaves int) float64 {
	var sum, amp, norm float64
	amp = 1
	freq := 1.0
	for i := 0; i < octaves; i++ {
		sum += p.Noise2D(x*freq, y*freq) * amp
		norm += amp
		amp *= 0.5
		freq *= 2
	}
	if norm == 0 {
		return 0
	}
	return sum / norm
}

func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(t, a, b float64) float64 {
	return a + t*(b-a)
}

func grad2D(hash int, x, y float64) float64 {
	h := hash & 7
	u := x
	if h >= 4 {
		u = y
	}
	v := y
	if h >= 4 {
		v = x
	}
	if h&1 != 0 {
		u = -u
	}
	if h&2 != 0 {
		v = -v
	}
	return u + v
}
