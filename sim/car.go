// Package sim owns the racing simulation core: car physics, ray-cast
// sensing, checkpoint progress, and the per-generation evaluation loop that
// scores a population of driving policies on a shared track.
package sim

import (
	"math"

	"github.com/pthm-cable/neondrive/track"
)

// Tunables are the per-car physics constants. They are supplied at spawn
// and fixed for the car's lifetime; only the weather grip field may override
// the effective friction per frame.
type Tunables struct {
	Friction      float64 // multiplicative velocity decay per frame
	MaxSpeed      float64 // velocity magnitude cap
	Acceleration  float64 // thrust per gas input
	TurnRate      float64 // heading change per unit speed per steer input
	MinSteerSpeed float64 // below this speed steering has no effect
	Width         float64 // bounding box width for car-car collision
	Height        float64 // bounding box height for car-car collision
}

// Radar is one sensor ray reading: where the ray stopped and how far it got.
type Radar struct {
	End  Vec2
	Dist float64
}

// Car is one vehicle in the simulation. It is owned exclusively by the
// evaluation loop for a single generation and is never revived once dead.
type Car struct {
	Pos     Vec2
	Vel     Vec2
	Heading float64 // degrees, 0 = +X, positive turns clockwise on screen

	Alive           bool
	Distance        float64 // cumulative distance traveled
	GatesPassed     int
	NextGate        int
	FramesSinceGate int

	Radars []Radar // recomputed each frame by CheckRadar

	tun      Tunables
	friction float64 // effective friction this frame
	steer    float64 // pending input, consumed by Update
	throttle float64 // pending input, consumed by Update
}

// NewCar spawns a car at the shared start pose.
func NewCar(pos Vec2, heading float64, tun Tunables) *Car {
	return &Car{
		Pos:      pos,
		Heading:  heading,
		Alive:    true,
		tun:      tun,
		friction: tun.Friction,
	}
}

// Steer sets the pending steering input: -1 left, 0 straight, 1 right.
// Inputs are consumed once per Update; callers re-issue them every frame.
func (c *Car) Steer(dir float64) { c.steer = dir }

// Gas sets the pending throttle to the full acceleration rate.
// There is no reverse or brake in this model.
func (c *Car) Gas() { c.throttle = c.tun.Acceleration }

// SetFriction overrides the effective friction for the next Update.
// Used by the weather grip field; the base tunable is untouched.
func (c *Car) SetFriction(f float64) { c.friction = f }

// Speed returns the current velocity magnitude.
func (c *Car) Speed() float64 { return c.Vel.Len() }

// Update advances the car one frame against the collision mask.
//
// Order matters: stagnation check, friction, throttle, speed clamp, steering
// (speed-scaled, only above MinSteerSpeed), integration, input reset, wall
// check. A car that reads wall at its rounded position, or leaves the mask
// bounds, dies in the same call.
func (c *Car) Update(mask *track.Mask, stagnationLimit int) {
	if !c.Alive {
		return
	}

	c.FramesSinceGate++
	if stagnationLimit > 0 && c.FramesSinceGate > stagnationLimit {
		c.Alive = false
		return
	}

	c.Vel = c.Vel.Scale(c.friction)
	c.Vel = c.Vel.Add(headingVec(c.Heading).Scale(c.throttle))

	if speed := c.Vel.Len(); speed > c.tun.MaxSpeed {
		c.Vel = c.Vel.Scale(c.tun.MaxSpeed / speed)
	}

	speed := c.Vel.Len()
	if speed > c.tun.MinSteerSpeed {
		// Turn rate scales with speed: drifty at pace, precise when slow.
		c.Heading += c.steer * speed * c.tun.TurnRate
	}

	c.Pos = c.Pos.Add(c.Vel)
	c.Distance += speed

	c.throttle = 0
	c.steer = 0

	if !mask.At(int(math.Round(c.Pos.X)), int(math.Round(c.Pos.Y))) {
		c.Alive = false
	}
}

// CheckRadar casts the sensor fan and records one reading per ray.
// Rays march outward in fixed steps and stop at the first wall sample or at
// the maximum length; out-of-bounds samples count as wall.
func (c *Car) CheckRadar(mask *track.Mask, angles []float64, maxLen, step float64) {
	c.Radars = c.Radars[:0]
	for _, offset := range angles {
		dir := headingVec(c.Heading + offset)
		length := 0.0
		end := c.Pos
		for length < maxLen {
			length += step
			end = c.Pos.Add(dir.Scale(length))
			if !mask.At(int(math.Round(end.X)), int(math.Round(end.Y))) {
				break
			}
		}
		c.Radars = append(c.Radars, Radar{End: end, Dist: length})
	}
}

// CheckGate reports whether the car reached its next checkpoint this frame.
// Only the single next checkpoint is considered; a car physically close to a
// later gate cannot skip ahead.
func (c *Car) CheckGate(checkpoints []track.Point, radius float64) bool {
	if !c.Alive || len(checkpoints) == 0 {
		return false
	}
	target := checkpoints[c.NextGate%len(checkpoints)]
	if c.Pos.Sub(Vec2{target.X, target.Y}).Len() < radius {
		c.GatesPassed++
		c.NextGate++
		c.FramesSinceGate = 0
		return true
	}
	return false
}

// SteeringHint returns the auxiliary navigation inputs: the signed heading
// error toward the next checkpoint normalized to [-1, 1], and the distance
// to it normalized against 1000 world units and capped at 1.
func (c *Car) SteeringHint(checkpoints []track.Point) (headingErr, distNorm float64) {
	if !c.Alive {
		return 0, 0
	}
	if len(checkpoints) == 0 {
		return 0, 1
	}
	target := checkpoints[c.NextGate%len(checkpoints)]
	d := Vec2{target.X, target.Y}.Sub(c.Pos)
	diff := normalizeRad(math.Atan2(d.Y, d.X) - c.Heading*math.Pi/180)
	return diff / math.Pi, math.Min(d.Len()/1000, 1)
}

// overlaps reports axis-aligned bounding box overlap between two cars.
func (c *Car) overlaps(o *Car) bool {
	return math.Abs(c.Pos.X-o.Pos.X) < (c.tun.Width+o.tun.Width)/2 &&
		math.Abs(c.Pos.Y-o.Pos.Y) < (c.tun.Height+o.tun.Height)/2
}

// resolveCollision separates two overlapping cars and bounces both.
// Cars never die from contact with each other; they are pushed apart along
// the line between their centers and their velocities are inverted and
// dampened by the bounce factor.
func resolveCollision(a, b *Car, push, bounce float64) {
	sep := a.Pos.Sub(b.Pos).Normalized()
	if sep == (Vec2{}) {
		sep = Vec2{X: 1} // exactly coincident centers: pick an axis
	}
	a.Pos = a.Pos.Add(sep.Scale(push))
	b.Pos = b.Pos.Sub(sep.Scale(push))
	a.Vel = a.Vel.Scale(-bounce)
	b.Vel = b.Vel.Scale(-bounce)
}

// HandleCarCollision resolves contact between this car and every other
// alive car whose bounding box overlaps. Pair symmetry is the caller's
// concern: the evaluation loop visits each pair once.
func (c *Car) HandleCarCollision(others []*Car, push, bounce float64) {
	if !c.Alive {
		return
	}
	for _, o := range others {
		if o == c || !o.Alive {
			continue
		}
		if c.overlaps(o) {
			resolveCollision(c, o, push, bounce)
		}
	}
}
