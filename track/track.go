// Package track generates procedural closed-loop racetracks.
//
// A track is built from randomized control points smoothed into a periodic
// spline, rasterized into a binary collision mask, and subsampled into an
// ordered checkpoint sequence. Generation is deterministic per seed so every
// genome in a generation races the same circuit.
package track

import (
	"math"
	"math/rand"
)

// Point is a position in world coordinates. Y grows downward (screen space).
type Point struct {
	X, Y float64
}

// Dist returns the Euclidean distance to q.
func (p Point) Dist(q Point) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Params controls track generation. Zero values are replaced by defaults.
type Params struct {
	ControlPoints      int     // control points around the loop
	MinRadius          float64 // inner bound of the randomized radius band
	MaxRadius          float64 // outer bound of the randomized radius band
	Samples            int     // centerline samples along the spline
	RoadWidth          float64 // full stroke width of the drivable surface
	CheckpointInterval int     // centerline samples between checkpoints
}

// DefaultParams returns the stock track geometry.
func DefaultParams() Params {
	return Params{
		ControlPoints:      20,
		MinRadius:          1100,
		MaxRadius:          1800,
		Samples:            4000,
		RoadWidth:          450,
		CheckpointInterval: 70,
	}
}

// Track is an immutable generated circuit.
type Track struct {
	Seed         int64
	WorldSize    int
	Centerline   []Point // closed polyline, no duplicated endpoint
	Mask         *Mask
	Checkpoints  []Point
	StartPos     Point
	StartHeading float64 // degrees, 0 = +X, measured in screen space
	Degenerate   bool    // spline fit failed; centerline is the raw control polygon
}

// headingLookahead is how many centerline samples ahead the start heading is
// measured. Using the immediate neighbor would give a near-zero tangent on a
// dense centerline.
const headingLookahead = 5

// Generate builds a track deterministically from the seed.
//
// A MinRadius too small for the stroke width would let the loop self-intersect
// at its tightest point; the band is widened to keep the inner radius clear of
// the road width before any points are drawn.
func Generate(seed int64, worldSize int, p Params) *Track {
	if p.ControlPoints == 0 {
		p = DefaultParams()
	}
	if p.MinRadius < p.RoadWidth {
		p.MinRadius = p.RoadWidth
	}
	if p.MaxRadius < p.MinRadius {
		p.MaxRadius = p.MinRadius + 1
	}

	rng := rand.New(rand.NewSource(seed))
	center := float64(worldSize) / 2

	points := make([]Point, 0, p.ControlPoints+1)
	for i := 0; i < p.ControlPoints; i++ {
		angle := float64(i) / float64(p.ControlPoints) * 2 * math.Pi
		radius := p.MinRadius + rng.Float64()*(p.MaxRadius-p.MinRadius)
		points = append(points, Point{
			X: center + radius*math.Cos(angle),
			Y: center + radius*math.Sin(angle),
		})
	}
	points = append(points, points[0])

	centerline, err := periodicSpline(points, p.Samples)
	degenerate := err != nil
	if degenerate {
		// Degenerate control polygon: race the raw polygon instead of failing
		// the whole generation.
		centerline = points[:len(points)-1]
	}

	mask := NewMask(worldSize, worldSize)
	mask.StrokeLoop(centerline, p.RoadWidth/2)

	interval := p.CheckpointInterval
	if interval <= 0 || interval > len(centerline) {
		interval = 1
	}
	checkpoints := make([]Point, 0, len(centerline)/interval+1)
	for i := 0; i < len(centerline); i += interval {
		checkpoints = append(checkpoints, centerline[i])
	}

	ahead := centerline[headingLookahead%len(centerline)]
	heading := math.Atan2(ahead.Y-centerline[0].Y, ahead.X-centerline[0].X) * 180 / math.Pi

	return &Track{
		Seed:         seed,
		WorldSize:    worldSize,
		Centerline:   centerline,
		Mask:         mask,
		Checkpoints:  checkpoints,
		StartPos:     centerline[0],
		StartHeading: heading,
		Degenerate:   degenerate,
	}
}
