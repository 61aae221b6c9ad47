// Package config provides configuration loading and access for the grid
// simulation: parse embedded YAML defaults, then overlay an optional user
// file onto the same struct so only named fields change.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds every tunable parameter of the simulation: tile costs, the
// A* search's dynamic-obstacle penalty, and the demo AI loop's timing
// defaults.
type Config struct {
	Tiles     TileConfig      `yaml:"tiles"`
	Pathing   PathingConfig   `yaml:"pathing"`
	AI        AIConfig        `yaml:"ai"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	Derived DerivedConfig `yaml:"-"`
}

// TileConfig holds the per-tile-kind movement cost in ticks
// (Obstacle = infinite; Normal = 10 ticks; Fast = 7 ticks).
type TileConfig struct {
	NormalCost int `yaml:"normal_cost"`
	FastCost   int `yaml:"fast_cost"`
}

// PathingConfig holds the A* search's tunable constants. The iteration cap
// is deliberately absent here: it is a fixed safety valve, not an
// externally tunable parameter, so it is a package constant
// (MaxSearchIterations) instead of a config field.
type PathingConfig struct {
	// DynamicObstaclePenaltyNumerator is the numerator in
	// 20 * (1 / estimateDistance(neighbour, goal)) added to a step's cost
	// when the tile stepped onto is flagged as occupied by a dynamic
	// collider.
	DynamicObstaclePenaltyNumerator float64 `yaml:"dynamic_obstacle_penalty_numerator"`
	// HardBlockDistance is the estimateDistance threshold at or below
	// which a neighbour is skipped outright rather than penalised.
	HardBlockDistance int `yaml:"hard_block_distance"`
}

// AIConfig holds the demo AI loop's defaults: how long the
// cooperative "thinking" task takes, and the random ranges for the
// post-thinking wait and the subsequent straight walk.
type AIConfig struct {
	ThinkingDelayMs int `yaml:"thinking_delay_ms"`
	MinWaitTicks    int `yaml:"min_wait_ticks"`
	MaxWaitTicks    int `yaml:"max_wait_ticks"`
	MinWalk         int `yaml:"min_walk"`
	MaxWalk         int `yaml:"max_walk"`
}

// TelemetryConfig controls the optional CSV/event trace sink.
type TelemetryConfig struct {
	Enabled bool   `yaml:"enabled"`
	OutDir  string `yaml:"out_dir"`
}

// DerivedConfig holds values computed once after loading, so hot paths
// don't recompute them per tick.
type DerivedConfig struct {
	// WaitTickSpan is MaxWaitTicks - MinWaitTicks and WalkSpan is
	// MaxWalk - MinWalk. The AI loop reads the min/max fields directly;
	// no code in this module reads these spans.
	WaitTickSpan int
	WalkSpan     int
}

// MaxSearchIterations is A*'s fixed internal iteration cap. Exceeding it aborts the search and returns no path.
const MaxSearchIterations = 10000

var global *Config

// Init loads configuration from path (embedded defaults if path is
// empty) and stores it as the package-global config. Must be called
// before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load parses the embedded defaults, then overlays path's contents (if
// path is non-empty) onto the same struct, so a partial user file only
// overrides the fields it names.
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
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.computeDerived()
	return cfg, nil
}

func (c *Config) computeDerived() {
	c.Derived.WaitTickSpan = c.AI.MaxWaitTicks - c.AI.MinWaitTicks
	c.Derived.WalkSpan = c.AI.MaxWalk - c.AI.MinWalk
}
