package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const testSchema = `#Range: {
	min:                number
	max:                number & >=min
	volatility:         number & >=0
	update_interval_ms: int & >0
}

name:    string & !=""
speed:   #Range & {min: >=0}
incline: #Range
link: {
	address: string & !=""
}
record?: {
	path?: string
}
`

func writeTestConfig(t *testing.T, yaml string) (cfgPath, schemaPath string) {
	t.Helper()
	dir := t.TempDir()
	cfgPath = filepath.Join(dir, "scenario.yaml")
	schemaPath = filepath.Join(dir, "scenario.cue")
	if err := os.WriteFile(cfgPath, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(schemaPath, []byte(testSchema), 0o644); err != nil {
		t.Fatal(err)
	}
	return cfgPath, schemaPath
}

func TestLoadScenario(t *testing.T) {
	cfgPath, schemaPath := writeTestConfig(t, `name: hills
speed:
  min: 2.0
  max: 8.0
  volatility: 0.5
  update_interval_ms: 3000
incline:
  min: 0.0
  max: 6.0
  volatility: 0.5
  update_interval_ms: 5000
link:
  address: ws://localhost:8765/telemetry
`)
	cfg, err := Load(cfgPath, schemaPath)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Name != "hills" {
		t.Errorf("unexpected name %s", cfg.Name)
	}
	if cfg.Speed.Max != 8.0 || cfg.Incline.Max != 6.0 {
		t.Errorf("unexpected ranges: %+v", cfg)
	}
	if cfg.Link.Address != "ws://localhost:8765/telemetry" {
		t.Errorf("unexpected link address %s", cfg.Link.Address)
	}
	if cfg.Speed.Interval() != 3*time.Second {
		t.Errorf("unexpected speed interval %s", cfg.Speed.Interval())
	}
}

func TestLoadRejectsInvertedRange(t *testing.T) {
	cfgPath, schemaPath := writeTestConfig(t, `name: bad
speed:
  min: 9.0
  max: 2.0
  volatility: 0.5
  update_interval_ms: 3000
incline:
  min: 0.0
  max: 6.0
  volatility: 0.5
  update_interval_ms: 5000
link:
  address: ws://localhost:8765/telemetry
`)
	if _, err := Load(cfgPath, schemaPath); err == nil {
		t.Fatal("expected validation error for min > max")
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	cfgPath, schemaPath := writeTestConfig(t, "name: [unterminated\nspeed: {")
	if _, err := Load(cfgPath, schemaPath); err == nil {
		t.Fatal("expected parse error for malformed YAML")
	}
}

func TestValidateClampsSubSecondInterval(t *testing.T) {
	cfg := &Scenario{
		Name:    "fast",
		Speed:   Range{Min: 1, Max: 5, Volatility: 0.1, UpdateIntervalMs: 250},
		Incline: Range{Min: 0, Max: 3, Volatility: 0.1, UpdateIntervalMs: 2000},
		Link:    Link{Address: "ws://localhost:8765"},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if cfg.Speed.UpdateIntervalMs != 1000 {
		t.Errorf("expected clamp to 1000ms, got %d", cfg.Speed.UpdateIntervalMs)
	}
	if cfg.Incline.UpdateIntervalMs != 2000 {
		t.Errorf("incline interval should be untouched, got %d", cfg.Incline.UpdateIntervalMs)
	}
}

func TestValidateRejectsNegativeVolatility(t *testing.T) {
	cfg := &Scenario{
		Name:    "bad",
		Speed:   Range{Min: 1, Max: 5, Volatility: -0.1, UpdateIntervalMs: 2000},
		Incline: Range{Min: 0, Max: 3, Volatility: 0, UpdateIntervalMs: 2000},
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative volatility")
	}
}
