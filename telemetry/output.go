package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/neondrive/config"
)

// OutputManager handles structured experiment output with CSV logging.
type OutputManager struct {
	dir          string
	statsFile    *os.File
	statsWritten bool
}

// NewOutputManager creates a new output manager and initializes the output
// directory. Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	f, err := os.Create(filepath.Join(dir, "generations.csv"))
	if err != nil {
		return nil, fmt.Errorf("creating generations.csv: %w", err)
	}

	return &OutputManager{dir: dir, statsFile: f}, nil
}

// WriteConfig saves the effective configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteStats appends one generation record to generations.csv.
// The first write includes the CSV header.
func (om *OutputManager) WriteStats(stats GenerationStats) error {
	if om == nil {
		return nil
	}

	records := []GenerationStats{stats}

	if !om.statsWritten {
		if err := gocsv.Marshal(records, om.statsFile); err != nil {
			return fmt.Errorf("writing generation stats: %w", err)
		}
		om.statsWritten = true
	} else {
		if err := gocsv.MarshalWithoutHeaders(records, om.statsFile); err != nil {
			return fmt.Errorf("writing generation stats: %w", err)
		}
	}

	return nil
}

// WriteLeaderboard saves the leaderboard as JSON.
func (om *OutputManager) WriteLeaderboard(lb *Leaderboard) error {
	if om == nil || lb == nil {
		return nil
	}

	data, err := lb.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshaling leaderboard: %w", err)
	}
	if err := os.WriteFile(filepath.Join(om.dir, "leaderboard.json"), data, 0644); err != nil {
		return fmt.Errorf("writing leaderboard.json: %w", err)
	}
	return nil
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}
	if om.statsFile != nil {
		return om.statsFile.Close()
	}
	return nil
}
