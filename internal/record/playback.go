package record

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"treadlink/internal/telemetry"
)

// Replay replays session samples from r to writer. A speed >0 accelerates
// playback. If speed <= 0, no artificial delay is inserted.
func Replay(r io.Reader, writer SampleWriter, speed float64) error {
	dec := json.NewDecoder(r)
	var prev time.Time
	for {
		var row telemetry.SampleRow
		if err := dec.Decode(&row); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if !prev.IsZero() && speed > 0 {
			diff := row.Timestamp.Sub(prev)
			if speed != 1 {
				diff = time.Duration(float64(diff) / speed)
			}
			if diff > 0 {
				time.Sleep(diff)
			}
		}
		if err := writer.WriteSample(row); err != nil {
			return err
		}
		prev = row.Timestamp
	}
}

// ReplayFile opens a file and replays its session samples.
func ReplayFile(path string, writer SampleWriter, speed float64) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return Replay(f, writer, speed)
}
