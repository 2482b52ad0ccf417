// Package config provides the configuration for the freelist simulator and
// the pools it builds.
//
// The configuration is organized into logical sections:
//   - Pool: name, prewarm size, teardown mode, recycling
//   - Simulation: tick count, spawn rate, lifetimes, seed
//   - Logging: zap logger settings
//   - Observability: metrics and tracing switches
//
// Example usage:
//
//	cfg := config.NewSimConfig()
//	if err := config.Load("freelist.yaml", cfg); err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package config

import (
	"github.com/ajitpratap0/freelist/pkg/errors"
	"github.com/ajitpratap0/freelist/pkg/logger"
	"github.com/ajitpratap0/freelist/pkg/pool"
)

// SimConfig is the top-level configuration of a simulation run.
type SimConfig struct {
	// Pool configures the container pool under test
	Pool PoolConfig `yaml:"pool" json:"pool"`

	// Simulation controls the workload
	Simulation SimulationConfig `yaml:"simulation" json:"simulation"`

	// Logging configures the zap logger
	Logging logger.Config `yaml:"logging" json:"logging"`

	// Observability toggles metrics and tracing
	Observability ObservabilityConfig `yaml:"observability" json:"observability"`
}

// PoolConfig contains pool construction settings.
type PoolConfig struct {
	// Name labels the pool in logs, metrics and its container
	Name string `yaml:"name" json:"name"`
	// Prewarm is the number of instances built up front (0 = none)
	Prewarm int `yaml:"prewarm" json:"prewarm"`
	// Capacity preallocates free-list slots
	Capacity int `yaml:"capacity" json:"capacity"`
	// Mode selects container teardown: runtime (deferred) or authoring (immediate)
	Mode string `yaml:"mode" json:"mode"`
	// ResetOnFree clears instance state when it is freed
	ResetOnFree bool `yaml:"reset_on_free" json:"reset_on_free"`
}

// SimulationConfig describes the spawn/expire workload.
type SimulationConfig struct {
	// Ticks is the number of simulated frames
	Ticks int `yaml:"ticks" json:"ticks"`
	// SpawnPerTick is how many instances are allocated each tick
	SpawnPerTick int `yaml:"spawn_per_tick" json:"spawn_per_tick"`
	// MinLifetime is the shortest lifetime in ticks
	MinLifetime int `yaml:"min_lifetime" json:"min_lifetime"`
	// MaxLifetime is the longest lifetime in ticks
	MaxLifetime int `yaml:"max_lifetime" json:"max_lifetime"`
	// Seed makes runs reproducible
	Seed int64 `yaml:"seed" json:"seed"`
	// CheckInvariants verifies the container invariant every tick
	CheckInvariants bool `yaml:"check_invariants" json:"check_invariants"`
}

// ObservabilityConfig contains monitoring switches.
type ObservabilityConfig struct {
	// EnableMetrics records pool metrics into a Prometheus registry
	EnableMetrics bool `yaml:"enable_metrics" json:"enable_metrics"`
	// EnableTracing exports the run span and one span per tick to stderr
	EnableTracing bool `yaml:"enable_tracing" json:"enable_tracing"`
}

// NewSimConfig creates a SimConfig with sensible defaults.
func NewSimConfig() *SimConfig {
	return &SimConfig{
		Pool: PoolConfig{
			Name:        "sprites",
			Prewarm:     32,
			Capacity:    64,
			Mode:        pool.ModeRuntime.String(),
			ResetOnFree: true,
		},
		Simulation: SimulationConfig{
			Ticks:           120,
			SpawnPerTick:    4,
			MinLifetime:     5,
			MaxLifetime:     30,
			Seed:            1,
			CheckInvariants: true,
		},
		Logging: logger.Config{
			Level:    "info",
			Encoding: "console",
		},
		Observability: ObservabilityConfig{
			EnableMetrics: true,
		},
	}
}

// Validate validates the configuration for correctness.
func (c *SimConfig) Validate() error {
	if c.Pool.Name == "" {
		return invalid("pool.name is required", c.Pool.Name)
	}
	if c.Pool.Prewarm < 0 {
		return invalid("pool.prewarm cannot be negative", c.Pool.Prewarm)
	}
	if c.Pool.Capacity < 0 {
		return invalid("pool.capacity cannot be negative", c.Pool.Capacity)
	}
	if _, err := pool.ParseMode(c.Pool.Mode); err != nil {
		return errors.Wrap(err, errors.ErrorTypeConfig, "pool.mode must be runtime or authoring")
	}
	if c.Simulation.Ticks <= 0 {
		return invalid("simulation.ticks must be positive", c.Simulation.Ticks)
	}
	if c.Simulation.SpawnPerTick < 0 {
		return invalid("simulation.spawn_per_tick cannot be negative", c.Simulation.SpawnPerTick)
	}
	if c.Simulation.MinLifetime <= 0 {
		return invalid("simulation.min_lifetime must be positive", c.Simulation.MinLifetime)
	}
	if c.Simulation.MaxLifetime < c.Simulation.MinLifetime {
		return invalid("simulation.max_lifetime cannot be below min_lifetime", c.Simulation.MaxLifetime)
	}
	return nil
}

// PoolMode returns the parsed pool mode. Call Validate first.
func (c *SimConfig) PoolMode() pool.Mode {
	m, _ := pool.ParseMode(c.Pool.Mode)
	return m
}

func invalid(msg string, value interface{}) error {
	return errors.New(errors.ErrorTypeConfig, msg).WithDetail("value", value)
}
