package sim

import (
	"context"
	"errors"
	"testing"

	"github.com/pthm-cable/neondrive/track"
)

// scoreSink totals fitness increments for assertions.
type scoreSink struct{ total float64 }

func (s *scoreSink) Add(delta float64) { s.total += delta }

// fixedPolicy always emits the same outputs.
type fixedPolicy struct{ out []float64 }

func (p fixedPolicy) Activate([]float64) ([]float64, error) { return p.out, nil }

// brokenPolicy fails on every activation.
type brokenPolicy struct{}

func (brokenPolicy) Activate([]float64) ([]float64, error) {
	return nil, errors.New("no network")
}

// straightTrack builds an open arena with checkpoints in a line along +X
// from the start, so a straight driver makes steady gate progress.
func straightTrack() *track.Track {
	size := 4000
	m := track.NewMask(size, size)
	half := float64(size) / 2
	m.FillDisc(half, half, half-2)

	gates := []track.Point{
		{X: 2300, Y: 2000},
		{X: 2600, Y: 2000},
		{X: 2900, Y: 2000},
		{X: 3200, Y: 2000},
	}
	return &track.Track{
		WorldSize:    size,
		Mask:         m,
		Checkpoints:  gates,
		StartPos:     track.Point{X: 2000, Y: 2000},
		StartHeading: 0,
	}
}

func TestEvaluateStraightDriverPassesGates(t *testing.T) {
	trk := straightTrack()
	cfg := DefaultConfig()
	cfg.MaxFrames = 200
	cfg.StagnationLimit = 0 // open arena, no stagnation pressure

	sink := &scoreSink{}
	members := []Member{{Policy: fixedPolicy{out: []float64{0, 1}}, Sink: sink}}

	res := Evaluate(context.Background(), members, trk, cfg, nil)

	if res.BestGates < 2 {
		t.Errorf("straight driver passed %d gates, want at least 2", res.BestGates)
	}
	if sink.total < cfg.GateBonus {
		t.Errorf("fitness %v too low for a gate-passing run", sink.total)
	}
}

func TestEvaluateBrokenPolicyPenalized(t *testing.T) {
	trk := straightTrack()
	cfg := DefaultConfig()
	cfg.MaxFrames = 50

	sink := &scoreSink{}
	members := []Member{{Policy: brokenPolicy{}, Sink: sink}}

	res := Evaluate(context.Background(), members, trk, cfg, nil)

	if res.Survivors != 0 {
		t.Errorf("broken policy car survived")
	}
	want := -(cfg.DeathPenalty + cfg.ShortRunPenalty)
	if sink.total != want {
		t.Errorf("fitness = %v, want %v", sink.total, want)
	}
}

func TestEvaluateShortOutputKillsCar(t *testing.T) {
	trk := straightTrack()
	cfg := DefaultConfig()
	cfg.MaxFrames = 10

	sink := &scoreSink{}
	members := []Member{{Policy: fixedPolicy{out: []float64{1}}, Sink: sink}}

	res := Evaluate(context.Background(), members, trk, cfg, nil)
	if res.Survivors != 0 {
		t.Error("car with a one-output policy survived")
	}
}

func TestEvaluateCancelledContext(t *testing.T) {
	trk := straightTrack()
	cfg := DefaultConfig()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sink := &scoreSink{}
	members := []Member{{Policy: fixedPolicy{out: []float64{0, 1}}, Sink: sink}}

	res := Evaluate(ctx, members, trk, cfg, nil)
	if res.Frames != 0 {
		t.Errorf("simulated %d frames under a cancelled context", res.Frames)
	}
	if res.Survivors != 1 {
		t.Errorf("survivors = %d, want 1", res.Survivors)
	}
}

func TestEvaluateEndsWhenAllDead(t *testing.T) {
	trk := straightTrack()
	cfg := DefaultConfig()
	cfg.MaxFrames = 1000

	sink := &scoreSink{}
	members := []Member{{Policy: brokenPolicy{}, Sink: sink}}

	res := Evaluate(context.Background(), members, trk, cfg, nil)
	if res.Frames >= cfg.MaxFrames {
		t.Errorf("ran the full budget with everyone dead: %d frames", res.Frames)
	}
}

func TestEvaluateLapCounting(t *testing.T) {
	trk := straightTrack()
	trk.Checkpoints = trk.Checkpoints[:2] // short lap: two gates

	cfg := DefaultConfig()
	cfg.MaxFrames = 60
	cfg.StagnationLimit = 0

	sink := &scoreSink{}
	members := []Member{{Policy: fixedPolicy{out: []float64{0, 1}}, Sink: sink}}

	res := Evaluate(context.Background(), members, trk, cfg, nil)
	if res.Laps < 1 {
		t.Errorf("laps = %d, want at least 1", res.Laps)
	}
	if sink.total < 2*cfg.GateBonus+cfg.LapBonus {
		t.Errorf("fitness %v missing the lap bonus", sink.total)
	}
}

func TestLeaderIndex(t *testing.T) {
	a := NewCar(Vec2{}, 0, testTunables())
	b := NewCar(Vec2{}, 0, testTunables())
	c := NewCar(Vec2{}, 0, testTunables())

	a.GatesPassed, a.Distance = 2, 100
	b.GatesPassed, b.Distance = 3, 10
	c.GatesPassed, c.Distance = 3, 50

	if got := leaderIndex([]*Car{a, b, c}, 0); got != 2 {
		t.Errorf("leader = %d, want 2 (most gates, then distance)", got)
	}

	// A dead car never leads, whatever its score.
	b.Alive = false
	b.GatesPassed, b.Distance = 5, 0
	if got := leaderIndex([]*Car{a, b, c}, 0); got != 2 {
		t.Errorf("leader = %d, want alive car 2", got)
	}

	// With the whole field dead the previous leader keeps the camera.
	a.Alive, c.Alive = false, false
	if got := leaderIndex([]*Car{a, b, c}, 2); got != 2 {
		t.Errorf("leader = %d, want retained 2", got)
	}
}

// leaderPeeker dereferences the leader like a renderer would.
type leaderPeeker struct{ calls int }

func (o *leaderPeeker) Frame(frame int, cars []*Car, leader int) error {
	o.calls++
	_ = cars[leader].Pos
	return nil
}

func TestEvaluateEmptyPopulation(t *testing.T) {
	trk := straightTrack()
	cfg := DefaultConfig()
	obs := &leaderPeeker{}

	res := Evaluate(context.Background(), nil, trk, cfg, obs)
	if res.Frames != 0 || res.Survivors != 0 || res.BestGates != 0 {
		t.Errorf("empty population result = %+v, want all zero", res)
	}
	if obs.calls != 0 {
		t.Errorf("observer called %d times with no cars", obs.calls)
	}
}

func TestEvaluateObserverLeaderAlwaysValid(t *testing.T) {
	trk := straightTrack()
	cfg := DefaultConfig()
	cfg.MaxFrames = 30
	obs := &leaderPeeker{}

	// The whole field dies immediately; the observer must still get a
	// dereferenceable leader index every frame.
	sink := &scoreSink{}
	members := []Member{{Policy: brokenPolicy{}, Sink: sink}}

	res := Evaluate(context.Background(), members, trk, cfg, obs)
	if obs.calls != res.Frames {
		t.Errorf("observer saw %d frames, simulated %d", obs.calls, res.Frames)
	}
}

type frameCounter struct{ frames int }

func (f *frameCounter) Frame(int, []*Car, int) error {
	f.frames++
	return errors.New("render down")
}

func TestEvaluateGeneratedTrackUnsteeredCrashes(t *testing.T) {
	trk := track.Generate(42, 4000, track.DefaultParams())
	cfg := DefaultConfig()

	sink := &scoreSink{}
	members := []Member{{Policy: fixedPolicy{out: []float64{0, 1}}, Sink: sink}}

	res := Evaluate(context.Background(), members, trk, cfg, nil)
	if res.Survivors != 0 {
		t.Error("a car that never steers survived a curved circuit")
	}
	if res.Frames >= cfg.MaxFrames {
		t.Errorf("crash expected well before the frame limit, ran %d frames", res.Frames)
	}
}

// hintFollower is a hand-coded driver that steers straight from the
// navigation inputs. It is what a well-trained policy converges toward.
type hintFollower struct{}

func (hintFollower) Activate(in []float64) ([]float64, error) {
	steer := 0.0
	switch he := in[len(in)-2]; {
	case he > 0.02:
		steer = 1
	case he < -0.02:
		steer = -1
	}
	return []float64{steer, 1}, nil
}

func TestEvaluateHintFollowerLapsGeneratedTrack(t *testing.T) {
	trk := track.Generate(42, 4000, track.DefaultParams())
	cfg := DefaultConfig()
	cfg.MaxFrames = 1200

	sink := &scoreSink{}
	members := []Member{{Policy: hintFollower{}, Sink: sink}}

	res := Evaluate(context.Background(), members, trk, cfg, nil)
	if res.Survivors != 1 {
		t.Fatal("hint follower crashed before the frame limit")
	}
	if res.BestGates < len(trk.Checkpoints) {
		t.Errorf("passed %d of %d gates, want the full circuit", res.BestGates, len(trk.Checkpoints))
	}
	if res.Laps < 1 {
		t.Errorf("laps = %d, want at least one", res.Laps)
	}
	if sink.total < float64(len(trk.Checkpoints))*cfg.GateBonus {
		t.Errorf("fitness %v too low for a full lap", sink.total)
	}
}

func TestEvaluateObserverErrorsNonFatal(t *testing.T) {
	trk := straightTrack()
	cfg := DefaultConfig()
	cfg.MaxFrames = 20
	cfg.StagnationLimit = 0

	sink := &scoreSink{}
	members := []Member{{Policy: fixedPolicy{out: []float64{0, 1}}, Sink: sink}}
	obs := &frameCounter{}

	res := Evaluate(context.Background(), members, trk, cfg, obs)
	if obs.frames != res.Frames {
		t.Errorf("observer saw %d frames, simulated %d", obs.frames, res.Frames)
	}
	if res.Survivors != 1 {
		t.Error("observer errors should not affect the run")
	}
}
