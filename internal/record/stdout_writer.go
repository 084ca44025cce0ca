// Writer implementation printing samples to STDOUT
package record

import (
	"encoding/json"
	"fmt"

	"treadlink/internal/telemetry"
)

// StdoutWriter prints sample rows to STDOUT.
type StdoutWriter struct{}

// WriteSample outputs a single sample row.
func (w *StdoutWriter) WriteSample(row telemetry.SampleRow) error {
	data, _ := json.Marshal(row)
	fmt.Println(string(data))
	return nil
}

// WriteSamples outputs multiple sample rows.
func (w *StdoutWriter) WriteSamples(rows []telemetry.SampleRow) error {
	for _, r := range rows {
		_ = w.WriteSample(r)
	}
	return nil
}
