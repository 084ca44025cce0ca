package telemetry

import "strconv"

// Update is a partial machine-state reading extracted from an inbound frame.
// A nil field means the frame carried no usable value for that quantity.
type Update struct {
	Speed   *float64
	Incline *float64
}

// Empty reports whether the frame carried no usable data. Callers treat an
// empty update as a skipped frame, not an error.
func (u Update) Empty() bool {
	return u.Speed == nil && u.Incline == nil
}

// Candidate keys per extraction shape. Nested keys are tried first; the flat
// shape extends them with camel-case and abbreviated spellings seen on other
// firmware revisions.
var (
	nestedSpeedKeys   = []string{"speed_kmh", "speed", "kph"}
	nestedInclineKeys = []string{"incline_pct", "incline", "grade"}
	flatSpeedKeys     = []string{"speed_kmh", "speed", "kph", "speedKmh", "spd"}
	flatInclineKeys   = []string{"incline_pct", "incline", "grade", "inclinePct", "inc"}
)

// Normalize extracts a partial (speed, incline) update from a loosely
// structured payload. Shapes are tried in fixed priority order and the first
// hit per field wins, independently for each field:
//
//  1. a nested "data" object with candidate keys
//  2. flat top-level fields with an extended candidate set
//  3. a typed single-value message ({type: SET_SPEED, value: ...})
func Normalize(payload map[string]any) Update {
	var u Update

	if nested, ok := payload["data"].(map[string]any); ok {
		u.Speed = firstNumber(nested, nestedSpeedKeys)
		u.Incline = firstNumber(nested, nestedInclineKeys)
	}
	if u.Speed == nil {
		u.Speed = firstNumber(payload, flatSpeedKeys)
	}
	if u.Incline == nil {
		u.Incline = firstNumber(payload, flatInclineKeys)
	}
	if u.Speed == nil || u.Incline == nil {
		if t, ok := payload["type"].(string); ok {
			if v := coerceNumber(payload["value"]); v != nil {
				switch t {
				case "SPEED", "SET_SPEED":
					if u.Speed == nil {
						u.Speed = v
					}
				case "INCLINE", "SET_INCLINE":
					if u.Incline == nil {
						u.Incline = v
					}
				}
			}
		}
	}
	return u
}

func firstNumber(m map[string]any, keys []string) *float64 {
	for _, k := range keys {
		if raw, ok := m[k]; ok {
			if v := coerceNumber(raw); v != nil {
				return v
			}
		}
	}
	return nil
}

// coerceNumber accepts numeric pass-through and decimal strings; anything
// else yields no value.
func coerceNumber(raw any) *float64 {
	switch v := raw.(type) {
	case float64:
		return &v
	case int:
		f := float64(v)
		return &f
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return &f
		}
	}
	return nil
}
