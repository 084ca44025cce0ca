package record

import (
	"encoding/json"
	"os"

	"treadlink/internal/telemetry"
)

// FileWriter writes session samples to a JSONL file.
type FileWriter struct {
	file *os.File
	enc  *json.Encoder
}

// NewFileWriter creates a FileWriter for the given path.
func NewFileWriter(path string) (*FileWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return &FileWriter{file: f, enc: json.NewEncoder(f)}, nil
}

// WriteSample logs a single sample row.
func (f *FileWriter) WriteSample(row telemetry.SampleRow) error {
	return f.enc.Encode(row)
}

// WriteSamples logs multiple sample rows.
func (f *FileWriter) WriteSamples(rows []telemetry.SampleRow) error {
	for _, r := range rows {
		if err := f.WriteSample(r); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the underlying file.
func (f *FileWriter) Close() error {
	return f.file.Close()
}
