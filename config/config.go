// Package config provides configuration loading for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen    ScreenConfig    `yaml:"screen"`
	World     WorldConfig     `yaml:"world"`
	Track     TrackConfig     `yaml:"track"`
	Physics   PhysicsConfig   `yaml:"physics"`
	Sensors   SensorsConfig   `yaml:"sensors"`
	Fitness   FitnessConfig   `yaml:"fitness"`
	Evolution EvolutionConfig `yaml:"evolution"`
	Weather   WeatherConfig   `yaml:"weather"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// WorldConfig holds the simulation world dimensions. The world is square
// and usually much larger than the screen; the camera handles the viewport.
type WorldConfig struct {
	Size int `yaml:"size"`
}

// TrackConfig holds procedural track generation parameters.
type TrackConfig struct {
	ControlPoints      int     `yaml:"control_points"`
	MinRadius          float64 `yaml:"min_radius"`
	MaxRadius          float64 `yaml:"max_radius"`
	Samples            int     `yaml:"samples"`
	RoadWidth          float64 `yaml:"road_width"`
	CheckpointInterval int     `yaml:"checkpoint_interval"`
}

// PhysicsConfig holds car physics parameters.
type PhysicsConfig struct {
	Friction      float64 `yaml:"friction"`
	MaxSpeed      float64 `yaml:"max_speed"`
	Acceleration  float64 `yaml:"acceleration"`
	TurnRate      float64 `yaml:"turn_rate"`
	MinSteerSpeed float64 `yaml:"min_steer_speed"`
	CarWidth      float64 `yaml:"car_width"`
	CarHeight     float64 `yaml:"car_height"`
	PushForce     float64 `yaml:"push_force"`
	BounceFactor  float64 `yaml:"bounce_factor"`
}

// SensorsConfig holds the ray-cast sensor fan parameters.
type SensorsConfig struct {
	Angles    []float64 `yaml:"angles"` // degrees relative to the heading
	RayLength float64   `yaml:"ray_length"`
	RayStep   float64   `yaml:"ray_step"`
}

// FitnessConfig holds the evaluation and reward shaping parameters.
type FitnessConfig struct {
	GateRadius      float64 `yaml:"gate_radius"`
	MaxFrames       int     `yaml:"max_frames"`
	StagnationLimit int     `yaml:"stagnation_limit"`
	SteerThreshold  float64 `yaml:"steer_threshold"`
	GateBonus       float64 `yaml:"gate_bonus"`
	LapBonus        float64 `yaml:"lap_bonus"`
	DeathPenalty    float64 `yaml:"death_penalty"`
	ShortRunPenalty float64 `yaml:"short_run_penalty"`
	ShortRunDist    float64 `yaml:"short_run_dist"`
	ClosingWeight   float64 `yaml:"closing_weight"`
	CenterWeight    float64 `yaml:"center_weight"`
}

// EvolutionConfig holds the training loop parameters.
type EvolutionConfig struct {
	Backend     string  `yaml:"backend"` // "ffnn" or "neat"
	Population  int     `yaml:"population"`
	Elite       int     `yaml:"elite"`
	Generations int     `yaml:"generations"`
	HiddenNodes int     `yaml:"hidden_nodes"` // ffnn only
	WeightPower float64 `yaml:"weight_power"` // neat weight mutation power

	// Sparse mutation tuning (ffnn only)
	MutationRate     float64 `yaml:"mutation_rate"`
	MutationSigma    float64 `yaml:"mutation_sigma"`
	MutationBigRate  float64 `yaml:"mutation_big_rate"`
	MutationBigSigma float64 `yaml:"mutation_big_sigma"`

	// Random steering override during the first generations, to scatter the
	// field before the networks differentiate.
	WarmupGenerations int     `yaml:"warmup_generations"`
	WarmupJitter      float64 `yaml:"warmup_jitter"`
}

// WeatherConfig holds the grip field parameters.
type WeatherConfig struct {
	Enabled   bool    `yaml:"enabled"`
	Scale     float64 `yaml:"scale"`    // noise feature size in world units
	Octaves   int     `yaml:"octaves"`  // FBM octaves
	WetGrip   float64 `yaml:"wet_grip"` // friction in fully wet patches
	Intensity float64 `yaml:"intensity"`
}

// DerivedConfig holds values computed from the loaded configuration.
type DerivedConfig struct {
	NumInputs int // sensor rays plus the two navigation hints
}

// Load loads configuration from a YAML file, merging with embedded
// defaults. If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into the same struct, overwriting only fields present
		// in the file.
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

func (c *Config) validate() error {
	if c.World.Size <= 0 {
		return fmt.Errorf("world.size must be positive, got %d", c.World.Size)
	}
	if len(c.Sensors.Angles) == 0 {
		return fmt.Errorf("sensors.angles must not be empty")
	}
	if c.Evolution.Population < 1 {
		return fmt.Errorf("evolution.population must be at least 1, got %d", c.Evolution.Population)
	}
	switch c.Evolution.Backend {
	case "ffnn", "neat":
	default:
		return fmt.Errorf("evolution.backend must be \"ffnn\" or \"neat\", got %q", c.Evolution.Backend)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.NumInputs = len(c.Sensors.Angles) + 2
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
