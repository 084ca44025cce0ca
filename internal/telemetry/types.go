// Telemetry structs shared across link, scenario, and recording
package telemetry

import (
	"os"
	"time"
)

// State is the last-known-good machine state reported over the link.
type State struct {
	Speed      float64   `json:"speed_kmh"`
	Incline    float64   `json:"incline_pct"`
	ObservedAt time.Time `json:"observed_at"`
	Linked     bool      `json:"linked"`
}

// Landmark is one skeletal pose point produced by the pose collaborator.
type Landmark struct {
	X          float64  `json:"x"`
	Y          float64  `json:"y"`
	Z          float64  `json:"z"`
	Visibility *float64 `json:"visibility,omitempty"`
}

// SampleRow is one recorded session sample: a pose frame with the machine
// state that was current when the frame arrived.
type SampleRow struct {
	SessionID string     `json:"session_id"`  // TAG
	Speed     float64    `json:"speed_kmh"`   // FIELD
	Incline   float64    `json:"incline_pct"` // FIELD
	Linked    bool       `json:"linked"`      // FIELD
	Landmarks []Landmark `json:"landmarks,omitempty"`
	Timestamp time.Time  `json:"ts"` // TIME INDEX
}

// SampleTableName holds the table name used when writing to GreptimeDB.
// It defaults to "workout_samples" but can be overridden via the
// GREPTIMEDB_TABLE environment variable.
var SampleTableName = func() string {
	if env := os.Getenv("GREPTIMEDB_TABLE"); env != "" {
		return env
	}
	return "workout_samples"
}()

func (SampleRow) TableName() string {
	return SampleTableName
}
