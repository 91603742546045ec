// Package telemetry aggregates per-generation training statistics and
// writes them to structured experiment output.
package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// GenerationStats holds aggregated statistics for one evaluated generation.
type GenerationStats struct {
	Generation int `csv:"generation"`

	// Fitness distribution across the population
	FitnessBest float64 `csv:"fitness_best"`
	FitnessMean float64 `csv:"fitness_mean"`
	FitnessP10  float64 `csv:"fitness_p10"`
	FitnessP50  float64 `csv:"fitness_p50"`
	FitnessP90  float64 `csv:"fitness_p90"`
	FitnessStd  float64 `csv:"fitness_std"`

	// Run outcome
	Frames    int `csv:"frames"`
	Survivors int `csv:"survivors"`
	BestGates int `csv:"best_gates"`
	Laps      int `csv:"laps"`

	ElapsedSec float64 `csv:"elapsed_sec"`
}

// Summarize computes the fitness distribution for one generation. Run
// outcome fields are filled in by the caller.
func Summarize(generation int, fitness []float64) GenerationStats {
	s := GenerationStats{Generation: generation}
	if len(fitness) == 0 {
		return s
	}

	sorted := make([]float64, len(fitness))
	copy(sorted, fitness)
	sort.Float64s(sorted)

	s.FitnessBest = sorted[len(sorted)-1]
	s.FitnessMean = stat.Mean(sorted, nil)
	s.FitnessStd = stat.StdDev(sorted, nil)
	s.FitnessP10 = stat.Quantile(0.10, stat.Empirical, sorted, nil)
	s.FitnessP50 = stat.Quantile(0.50, stat.Empirical, sorted, nil)
	s.FitnessP90 = stat.Quantile(0.90, stat.Empirical, sorted, nil)

	// StdDev of a single sample is NaN; report 0 instead.
	if len(sorted) < 2 {
		s.FitnessStd = 0
	}

	return s
}

// LogValue implements slog.LogValuer for structured logging.
func (s GenerationStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("generation", s.Generation),
		slog.Float64("fitness_best", s.FitnessBest),
		slog.Float64("fitness_mean", s.FitnessMean),
		slog.Float64("fitness_p10", s.FitnessP10),
		slog.Float64("fitness_p50", s.FitnessP50),
		slog.Float64("fitness_p90", s.FitnessP90),
		slog.Float64("fitness_std", s.FitnessStd),
		slog.Int("frames", s.Frames),
		slog.Int("survivors", s.Survivors),
		slog.Int("best_gates", s.BestGates),
		slog.Int("laps", s.Laps),
		slog.Float64("elapsed_sec", s.ElapsedSec),
	)
}

// LogStats logs the generation stats using slog.
func (s GenerationStats) LogStats() {
	slog.Info("generation",
		"generation", s.Generation,
		"fitness_best", s.FitnessBest,
		"fitness_mean", s.FitnessMean,
		"fitness_p50", s.FitnessP50,
		"fitness_std", s.FitnessStd,
		"frames", s.Frames,
		"survivors", s.Survivors,
		"best_gates", s.BestGates,
		"laps", s.Laps,
		"elapsed_sec", s.ElapsedSec,
	)
}
