// YAML config loader with CUE validation integration
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Range bounds one controlled quantity and its update cadence.
type Range struct {
	Min              float64 `yaml:"min"`
	Max              float64 `yaml:"max"`
	Volatility       float64 `yaml:"volatility"`
	UpdateIntervalMs int     `yaml:"update_interval_ms"`
}

// Interval returns the update interval as a duration.
func (r Range) Interval() time.Duration {
	return time.Duration(r.UpdateIntervalMs) * time.Millisecond
}

// Link holds telemetry endpoint settings.
type Link struct {
	Address string `yaml:"address"`
}

// Record holds session recording settings.
type Record struct {
	Path string `yaml:"path,omitempty"`
}

// Scenario is the root configuration for one exercise scenario.
type Scenario struct {
	Name    string `yaml:"name"`
	Speed   Range  `yaml:"speed"`
	Incline Range  `yaml:"incline"`
	Link    Link   `yaml:"link"`
	Record  Record `yaml:"record,omitempty"`
}

// minUpdateIntervalMs is the floor for loop cadence; sub-second intervals are clamped.
const minUpdateIntervalMs = 1000

// Load loads YAML config and validates it against a CUE schema.
func Load(configPath, cueSchemaPath string) (*Scenario, error) {
	if err := ValidateWithCue(configPath, cueSchemaPath); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}
	var cfg Scenario
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects impossible bounds and clamps sub-second intervals.
// The link and scenario engine assume an already validated configuration.
func (c *Scenario) Validate() error {
	for _, rc := range []struct {
		name string
		r    *Range
	}{{"speed", &c.Speed}, {"incline", &c.Incline}} {
		if rc.r.Min > rc.r.Max {
			return fmt.Errorf("%s: min %.2f exceeds max %.2f", rc.name, rc.r.Min, rc.r.Max)
		}
		if rc.r.Volatility < 0 {
			return fmt.Errorf("%s: volatility must be >= 0, got %.2f", rc.name, rc.r.Volatility)
		}
		if rc.r.UpdateIntervalMs < minUpdateIntervalMs {
			rc.r.UpdateIntervalMs = minUpdateIntervalMs
		}
	}
	if c.Speed.Min < 0 {
		return fmt.Errorf("speed: min must be >= 0, got %.2f", c.Speed.Min)
	}
	return nil
}
