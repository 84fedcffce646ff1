// Package config provides configuration loading and access for the
// evolution simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/scstack/evogrid/sim"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	World        WorldConfig        `yaml:"world"`
	Energy       EnergyConfig       `yaml:"energy"`
	Reproduction ReproductionConfig `yaml:"reproduction"`
	Food         FoodConfig         `yaml:"food"`
	Display      DisplayConfig      `yaml:"display"`
	Telemetry    TelemetryConfig    `yaml:"telemetry"`
}

// WorldConfig holds board dimensions and starting populations.
type WorldConfig struct {
	Width          int `yaml:"width"`
	Height         int `yaml:"height"`
	StartCreatures int `yaml:"start_creatures"`
	StartFood      int `yaml:"start_food"`
	StartWalls     int `yaml:"start_walls"`

	// Preset selects a built-in wall layout (-1 = random walls).
	Preset int `yaml:"preset"`
}

// EnergyConfig holds the energy economy: grants and per-action costs.
type EnergyConfig struct {
	PerFood       int `yaml:"per_food"`
	PerKill       int `yaml:"per_kill"`
	MoveCost      int `yaml:"move_cost"`
	RotateCost    int `yaml:"rotate_cost"`
	KillCost      int `yaml:"kill_cost"`
	ReproduceCost int `yaml:"reproduce_cost"`
	Starting      int `yaml:"starting"`
}

// ReproductionConfig holds inheritance parameters.
type ReproductionConfig struct {
	MaxOffspring int     `yaml:"max_offspring"`
	MutationProb float64 `yaml:"mutation_prob"`
}

// FoodConfig holds the food replenishment rate.
type FoodConfig struct {
	AvgNewPerTick float64 `yaml:"avg_new_per_tick"`
}

// DisplayConfig holds knobs consumed through read-only accessors by
// whatever front-end drives the engine.
type DisplayConfig struct {
	// ViolenceColor makes creature color track lineage violence
	// instead of inherited color with random drift.
	ViolenceColor bool `yaml:"violence_color"`
}

// TelemetryConfig holds stats output settings.
type TelemetryConfig struct {
	OutputDir string `yaml:"output_dir"`
	LogEvery  int    `yaml:"log_every"`
}

var global *Config

// Init loads configuration and installs it as the global config.
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is Init that panics on error, for tests.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(err)
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
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
		// Unmarshal into the same struct: only fields present in the
		// file overwrite defaults.
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	return cfg, nil
}

// WriteYAML saves the effective configuration to a file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// EnvParams converts the config into environment construction
// parameters. Validation happens in sim.NewRandom.
func (c *Config) EnvParams() sim.EnvironmentParams {
	return sim.EnvironmentParams{
		Width:             c.World.Width,
		Height:            c.World.Height,
		StartCreatures:    c.World.StartCreatures,
		StartFood:         c.World.StartFood,
		StartWalls:        c.World.StartWalls,
		EnergyPerFood:     c.Energy.PerFood,
		EnergyPerKill:     c.Energy.PerKill,
		MaxOffspring:      c.Reproduction.MaxOffspring,
		MutationProb:      c.Reproduction.MutationProb,
		AvgNewFoodPerTick: c.Food.AvgNewPerTick,
		ReproduceCost:     c.Energy.ReproduceCost,
		MoveCost:          c.Energy.MoveCost,
		RotateCost:        c.Energy.RotateCost,
		KillCost:          c.Energy.KillCost,
		StartEnergy:       c.Energy.Starting,
		ViolenceColor:     c.Display.ViolenceColor,
	}
}
