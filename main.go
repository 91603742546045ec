package main

import (
	"context"
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pthm-cable/neondrive/config"
	"github.com/pthm-cable/neondrive/neural"
	"github.com/pthm-cable/neondrive/render"
	"github.com/pthm-cable/neondrive/sim"
	"github.com/pthm-cable/neondrive/telemetry"
	"github.com/pthm-cable/neondrive/track"
	"github.com/pthm-cable/neondrive/weather"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run without graphics")
	seed := flag.Int64("seed", 0, "RNG seed (0 = time-based)")
	generations := flag.Int("generations", 0, "Number of generations to train (0 = use config)")
	policy := flag.String("policy", "", "Policy backend: ffnn or neat (empty = use config)")
	maxFrames := flag.Int("max-frames", 0, "Frame budget per generation (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")
	recordDir := flag.String("record-dir", "", "Directory for PNG frame capture (graphical mode only)")
	recordEvery := flag.Int("record-every", 2, "Capture every Nth frame when recording")
	wetWeather := flag.Bool("weather", false, "Enable the wet grip field regardless of config")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *policy != "" {
		cfg.Evolution.Backend = *policy
	}
	if *generations > 0 {
		cfg.Evolution.Generations = *generations
	}
	if *maxFrames > 0 {
		cfg.Fitness.MaxFrames = *maxFrames
	}
	if *wetWeather {
		cfg.Weather.Enabled = true
	}

	rngSeed := *seed
	if rngSeed == 0 {
		rngSeed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(rngSeed))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	trk := track.Generate(rngSeed, cfg.World.Size, track.Params{
		ControlPoints:      cfg.Track.ControlPoints,
		MinRadius:          cfg.Track.MinRadius,
		MaxRadius:          cfg.Track.MaxRadius,
		Samples:            cfg.Track.Samples,
		RoadWidth:          cfg.Track.RoadWidth,
		CheckpointInterval: cfg.Track.CheckpointInterval,
	})
	slog.Info("track generated",
		"seed", trk.Seed,
		"checkpoints", len(trk.Checkpoints),
		"drivable_px", trk.Mask.CountDrivable(),
		"degenerate", trk.Degenerate,
	)

	evolver, err := newEvolver(cfg, rng)
	if err != nil {
		slog.Error("failed to build evolver", "error", err)
		os.Exit(1)
	}

	output, err := telemetry.NewOutputManager(*outputDir)
	if err != nil {
		slog.Error("failed to create output", "error", err)
		os.Exit(1)
	}
	defer output.Close()
	if err := output.WriteConfig(cfg); err != nil {
		slog.Warn("failed to write config snapshot", "error", err)
	}

	var viewer *render.Viewer
	if !*headless {
		viewer = render.NewViewer(cfg.Screen.Width, cfg.Screen.Height, cfg.Screen.TargetFPS, trk)
		defer viewer.Close()

		if *recordDir != "" {
			rec, err := render.NewFrameRecorder(*recordDir, *recordEvery)
			if err != nil {
				slog.Error("failed to create frame recorder", "error", err)
				os.Exit(1)
			}
			viewer.SetRecorder(rec)
		}
	}

	run(ctx, stop, cfg, rng, trk, evolver, output, viewer)
}

// newEvolver picks the policy backend from config.
func newEvolver(cfg *config.Config, rng *rand.Rand) (neural.Evolver, error) {
	ev := cfg.Evolution
	switch ev.Backend {
	case "neat":
		return neural.NewNEATEvolver(rng, ev.Population, cfg.Derived.NumInputs, ev.Elite, ev.WeightPower)
	default:
		mut := neural.MutationParams{
			Rate:     ev.MutationRate,
			Sigma:    ev.MutationSigma,
			BigRate:  ev.MutationBigRate,
			BigSigma: ev.MutationBigSigma,
		}
		return neural.NewFFNNEvolver(rng, ev.Population, cfg.Derived.NumInputs, ev.HiddenNodes, ev.Elite, mut), nil
	}
}

// evalConfig maps the loaded configuration onto the evaluation parameters.
func evalConfig(cfg *config.Config) sim.Config {
	return sim.Config{
		Tunables: sim.Tunables{
			Friction:      cfg.Physics.Friction,
			MaxSpeed:      cfg.Physics.MaxSpeed,
			Acceleration:  cfg.Physics.Acceleration,
			TurnRate:      cfg.Physics.TurnRate,
			MinSteerSpeed: cfg.Physics.MinSteerSpeed,
			Width:         cfg.Physics.CarWidth,
			Height:        cfg.Physics.CarHeight,
		},
		RayAngles:       cfg.Sensors.Angles,
		RayLength:       cfg.Sensors.RayLength,
		RayStep:         cfg.Sensors.RayStep,
		GateRadius:      cfg.Fitness.GateRadius,
		MaxFrames:       cfg.Fitness.MaxFrames,
		StagnationLimit: cfg.Fitness.StagnationLimit,
		SteerThreshold:  cfg.Fitness.SteerThreshold,
		CollisionPush:   cfg.Physics.PushForce,
		CollisionBounce: cfg.Physics.BounceFactor,
		GateBonus:       cfg.Fitness.GateBonus,
		LapBonus:        cfg.Fitness.LapBonus,
		DeathPenalty:    cfg.Fitness.DeathPenalty,
		ShortRunPenalty: cfg.Fitness.ShortRunPenalty,
		ShortRunDist:    cfg.Fitness.ShortRunDist,
		ClosingWeight:   cfg.Fitness.ClosingWeight,
		CenterWeight:    cfg.Fitness.CenterWeight,
	}
}

// viewerObserver bridges the evaluation loop to the window, cancelling the
// run when the user closes it.
type viewerObserver struct {
	viewer *render.Viewer
	cancel context.CancelFunc
}

func (o viewerObserver) Frame(frame int, cars []*sim.Car, leader int) error {
	if o.viewer.ShouldClose() {
		o.cancel()
		return nil
	}
	return o.viewer.Frame(frame, cars, leader)
}

func run(
	ctx context.Context,
	cancel context.CancelFunc,
	cfg *config.Config,
	rng *rand.Rand,
	trk *track.Track,
	evolver neural.Evolver,
	output *telemetry.OutputManager,
	viewer *render.Viewer,
) {
	base := evalConfig(cfg)

	var grip *weather.Field
	if cfg.Weather.Enabled {
		grip = weather.NewField(trk.Seed, weather.Params{
			Scale:     cfg.Weather.Scale,
			Octaves:   cfg.Weather.Octaves,
			BaseGrip:  cfg.Physics.Friction,
			WetGrip:   cfg.Weather.WetGrip,
			Intensity: cfg.Weather.Intensity,
		})
		base.Grip = grip
		slog.Info("wet weather enabled", "wet_grip", cfg.Weather.WetGrip)
	}

	var obs sim.Observer
	if viewer != nil {
		obs = viewerObserver{viewer: viewer, cancel: cancel}
	}

	leaderboard := telemetry.NewLeaderboard(10)
	bestEver := 0.0

	slog.Info("training started",
		"backend", cfg.Evolution.Backend,
		"population", cfg.Evolution.Population,
		"generations", cfg.Evolution.Generations,
	)

	for gen := 0; gen < cfg.Evolution.Generations; gen++ {
		if ctx.Err() != nil {
			slog.Info("training interrupted", "generation", gen)
			break
		}

		evalCfg := base
		if gen < cfg.Evolution.WarmupGenerations {
			evalCfg.WarmupJitter = cfg.Evolution.WarmupJitter
			evalCfg.WarmupJitterRand = rng
		}

		policies := evolver.Policies()
		accs := telemetry.NewAccumulators(len(policies))
		members := make([]sim.Member, len(policies))
		for i, p := range policies {
			members[i] = sim.Member{Policy: p, Sink: accs[i]}
		}

		if viewer != nil {
			viewer.ResetGeneration()
			viewer.SetStatus(render.Status{
				Generation:  gen,
				BestFitness: bestEver,
				Backend:     cfg.Evolution.Backend,
			})
		}

		start := time.Now()
		result := sim.Evaluate(ctx, members, trk, evalCfg, obs)
		fitness := telemetry.Totals(accs)

		stats := telemetry.Summarize(gen, fitness)
		stats.Frames = result.Frames
		stats.Survivors = result.Survivors
		stats.BestGates = result.BestGates
		stats.Laps = result.Laps
		stats.ElapsedSec = time.Since(start).Seconds()
		stats.LogStats()

		if stats.FitnessBest > bestEver {
			bestEver = stats.FitnessBest
		}
		leaderboard.Consider(telemetry.LeaderboardEntry{
			Generation: gen,
			Fitness:    stats.FitnessBest,
			Gates:      result.BestGates,
			Laps:       result.Laps,
		})

		if err := output.WriteStats(stats); err != nil {
			slog.Warn("failed to write stats", "error", err)
		}

		if ctx.Err() != nil {
			break
		}
		if err := evolver.Next(fitness); err != nil {
			slog.Error("breeding failed", "error", err)
			break
		}
	}

	if err := output.WriteLeaderboard(leaderboard); err != nil {
		slog.Warn("failed to write leaderboard", "error", err)
	}
	slog.Info("training finished",
		"generations", evolver.Generation(),
		"best_fitness", leaderboard.Best().Fitness,
		"best_gates", leaderboard.Best().Gates,
	)
}
