package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("loading embedded defaults: %v", err)
	}

	if cfg.World.Size != 4000 {
		t.Errorf("world.size = %d, want 4000", cfg.World.Size)
	}
	if cfg.Physics.Friction != 0.97 {
		t.Errorf("physics.friction = %v, want 0.97", cfg.Physics.Friction)
	}
	if len(cfg.Sensors.Angles) != 5 {
		t.Errorf("sensors.angles has %d entries, want 5", len(cfg.Sensors.Angles))
	}
	if cfg.Evolution.Backend != "ffnn" {
		t.Errorf("evolution.backend = %q, want ffnn", cfg.Evolution.Backend)
	}
}

func TestDerivedNumInputs(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	want := len(cfg.Sensors.Angles) + 2
	if cfg.Derived.NumInputs != want {
		t.Errorf("derived.NumInputs = %d, want %d", cfg.Derived.NumInputs, want)
	}
}

func TestLoadOverridesMerge(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "override.yaml")
	override := []byte("physics:\n  max_speed: 40\nsensors:\n  angles: [-90, -45, 0, 45, 90, 20]\n")
	if err := os.WriteFile(path, override, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Physics.MaxSpeed != 40 {
		t.Errorf("override not applied: max_speed = %v", cfg.Physics.MaxSpeed)
	}
	// Untouched fields keep their defaults.
	if cfg.Physics.Friction != 0.97 {
		t.Errorf("default lost in merge: friction = %v", cfg.Physics.Friction)
	}
	if cfg.Derived.NumInputs != 8 {
		t.Errorf("derived inputs not recomputed: %d", cfg.Derived.NumInputs)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoadRejectsBadBackend(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(path, []byte("evolution:\n  backend: rnn\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for unknown backend")
	}
}

func TestWriteYAMLRoundtrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("reloading written config: %v", err)
	}
	if loaded.Physics.MaxSpeed != cfg.Physics.MaxSpeed {
		t.Errorf("roundtrip changed max_speed: %v vs %v", loaded.Physics.MaxSpeed, cfg.Physics.MaxSpeed)
	}
}
