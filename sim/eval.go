package sim

import (
	"context"
	"log/slog"
	"math"
	"math/rand"

	"github.com/pthm-cable/neondrive/track"
)

// Policy maps a sensor input vector to control outputs. The first output is
// steering, the second throttle. Implementations live outside this package;
// the evaluation loop only ever calls Activate.
type Policy interface {
	Activate(inputs []float64) ([]float64, error)
}

// FitnessSink receives fitness increments for one member as they happen.
// The evaluation loop never totals fitness itself.
type FitnessSink interface {
	Add(delta float64)
}

// Member pairs a policy with the sink that accumulates its score.
type Member struct {
	Policy Policy
	Sink   FitnessSink
}

// GripField supplies a position-dependent friction override. Nil means the
// base tunable friction applies everywhere.
type GripField interface {
	FrictionAt(x, y float64) float64
}

// Observer is notified after every simulated frame. Observer errors are
// logged and swallowed; a failing renderer must not corrupt an evaluation.
type Observer interface {
	Frame(frame int, cars []*Car, leader int) error
}

// Config holds everything Evaluate needs beyond the track and the members.
type Config struct {
	Tunables Tunables

	RayAngles []float64 // sensor fan offsets in degrees
	RayLength float64
	RayStep   float64

	GateRadius      float64
	MaxFrames       int
	StagnationLimit int // frames without a gate before a car dies

	SteerThreshold float64 // output magnitude required to turn

	CollisionPush   float64
	CollisionBounce float64

	// Fitness shaping.
	GateBonus        float64
	LapBonus         float64
	DeathPenalty     float64
	ShortRunPenalty  float64 // extra penalty when a car dies under ShortRunDist
	ShortRunDist     float64
	ClosingWeight    float64 // reward for closing on the next gate
	CenterWeight     float64 // reward for balanced outer sensor rays
	WarmupJitter     float64 // probability of a random steer override per frame
	WarmupJitterRand *rand.Rand

	Grip GripField // optional weather override
}

// DefaultConfig returns the evaluation constants the simulation was tuned
// with. A 600x950 car footprint in a 4000 unit world, five sensor rays, and
// the standard fitness shaping.
func DefaultConfig() Config {
	return Config{
		Tunables: Tunables{
			Friction:      0.97,
			MaxSpeed:      29,
			Acceleration:  1.2,
			TurnRate:      0.18,
			MinSteerSpeed: 2,
			Width:         50,
			Height:        85,
		},
		RayAngles:       []float64{-60, -30, 0, 30, 60},
		RayLength:       300,
		RayStep:         20,
		GateRadius:      300,
		MaxFrames:       3000,
		StagnationLimit: 90,
		SteerThreshold:  0.5,
		CollisionPush:   15,
		CollisionBounce: 0.8,
		GateBonus:       500,
		LapBonus:        2000,
		DeathPenalty:    200,
		ShortRunPenalty: 100,
		ShortRunDist:    500,
		ClosingWeight:   0.05,
		CenterWeight:    0.1,
	}
}

// Result summarizes one finished evaluation.
type Result struct {
	Frames    int // frames actually simulated
	Survivors int // cars still alive at the end
	BestGates int // most gates passed by any car
	Laps      int // total completed laps across the population
}

// NumInputs reports the policy input vector length for this config:
// one per sensor ray plus the two steering hint values.
func (c Config) NumInputs() int { return len(c.RayAngles) + 2 }

// Evaluate runs one generation: every member drives the track until it dies
// or the frame budget runs out. Fitness flows into each member's sink as it
// is earned, so a cancelled context still leaves valid partial scores.
func Evaluate(ctx context.Context, members []Member, trk *track.Track, cfg Config, obs Observer) Result {
	if len(members) == 0 {
		return Result{}
	}

	cars := make([]*Car, len(members))
	for i := range members {
		cars[i] = NewCar(Vec2{trk.StartPos.X, trk.StartPos.Y}, trk.StartHeading, cfg.Tunables)
	}

	// Prime the sensors so frame 0 policies see real readings.
	for _, c := range cars {
		c.CheckRadar(trk.Mask, cfg.RayAngles, cfg.RayLength, cfg.RayStep)
	}

	inputs := make([]float64, cfg.NumInputs())
	res := Result{}
	leader := 0

	for frame := 0; frame < cfg.MaxFrames; frame++ {
		select {
		case <-ctx.Done():
			res.Frames = frame
			finishResult(&res, cars, trk)
			return res
		default:
		}

		alive := 0
		for i, c := range cars {
			if !c.Alive {
				continue
			}
			alive++
			m := members[i]

			// Ray marching can overshoot the max length by part of a step.
			for j, r := range c.Radars {
				inputs[j] = clamp01(r.Dist / cfg.RayLength)
			}
			headingErr, distNorm := c.SteeringHint(trk.Checkpoints)
			inputs[len(c.Radars)] = headingErr
			inputs[len(c.Radars)+1] = distNorm

			out, err := m.Policy.Activate(inputs)
			if err != nil || len(out) < 2 || math.IsNaN(out[0]) || math.IsNaN(out[1]) {
				if err != nil {
					slog.Warn("policy failed, retiring car", "car", i, "error", err)
				}
				killCar(c, m, cfg)
				continue
			}

			steer := out[0]
			if cfg.WarmupJitterRand != nil && cfg.WarmupJitterRand.Float64() < cfg.WarmupJitter {
				steer = cfg.WarmupJitterRand.Float64()*2 - 1
			}
			switch {
			case steer > cfg.SteerThreshold:
				c.Steer(1)
			case steer < -cfg.SteerThreshold:
				c.Steer(-1)
			}
			c.Gas()

			if cfg.Grip != nil {
				c.SetFriction(cfg.Grip.FrictionAt(c.Pos.X, c.Pos.Y))
			}

			wasAlive := c.Alive
			c.Update(trk.Mask, cfg.StagnationLimit)
			if wasAlive && !c.Alive {
				penalize(c, m, cfg)
				continue
			}

			c.CheckRadar(trk.Mask, cfg.RayAngles, cfg.RayLength, cfg.RayStep)

			if c.CheckGate(trk.Checkpoints, cfg.GateRadius) {
				m.Sink.Add(cfg.GateBonus)
				if len(trk.Checkpoints) > 0 && c.GatesPassed%len(trk.Checkpoints) == 0 {
					m.Sink.Add(cfg.LapBonus)
				}
			}

			_, distNorm = c.SteeringHint(trk.Checkpoints)
			m.Sink.Add((1 - distNorm) * cfg.ClosingWeight)

			if n := len(c.Radars); n >= 2 {
				left := c.Radars[0].Dist / cfg.RayLength
				right := c.Radars[n-1].Dist / cfg.RayLength
				m.Sink.Add((1 - math.Abs(left-right)) * cfg.CenterWeight)
			}
		}

		for i := range cars {
			if !cars[i].Alive {
				continue
			}
			for j := i + 1; j < len(cars); j++ {
				if !cars[j].Alive {
					continue
				}
				if cars[i].overlaps(cars[j]) {
					resolveCollision(cars[i], cars[j], cfg.CollisionPush, cfg.CollisionBounce)
				}
			}
		}

		leader = leaderIndex(cars, leader)
		if obs != nil {
			if err := obs.Frame(frame, cars, leader); err != nil {
				slog.Warn("observer error", "frame", frame, "error", err)
			}
		}

		res.Frames = frame + 1
		if alive == 0 {
			break
		}
	}

	finishResult(&res, cars, trk)
	return res
}

// killCar retires a car whose policy misbehaved and applies death penalties.
func killCar(c *Car, m Member, cfg Config) {
	if !c.Alive {
		return
	}
	c.Alive = false
	penalize(c, m, cfg)
}

// penalize applies the death penalty, with the short-run surcharge for cars
// that barely left the start.
func penalize(c *Car, m Member, cfg Config) {
	m.Sink.Add(-cfg.DeathPenalty)
	if c.Distance < cfg.ShortRunDist {
		m.Sink.Add(-cfg.ShortRunPenalty)
	}
}

// leaderIndex picks the car the camera should follow: the alive car with the
// most gates passed, ties broken by distance traveled. Once the whole field
// is dead the previous leader keeps the camera.
func leaderIndex(cars []*Car, prev int) int {
	best := -1
	for i, c := range cars {
		if !c.Alive {
			continue
		}
		if best < 0 || c.GatesPassed > cars[best].GatesPassed ||
			(c.GatesPassed == cars[best].GatesPassed && c.Distance > cars[best].Distance) {
			best = i
		}
	}
	if best < 0 {
		return prev
	}
	return best
}

func finishResult(res *Result, cars []*Car, trk *track.Track) {
	for _, c := range cars {
		if c.Alive {
			res.Survivors++
		}
		if c.GatesPassed > res.BestGates {
			res.BestGates = c.GatesPassed
		}
		if n := len(trk.Checkpoints); n > 0 {
			res.Laps += c.GatesPassed / n
		}
	}
}
