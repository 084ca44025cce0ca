package record

import "treadlink/internal/telemetry"

// MultiWriter fan-outs sample rows to multiple writers.
type MultiWriter struct {
	writers []SampleWriter
}

// NewMultiWriter creates a new MultiWriter.
func NewMultiWriter(ws ...SampleWriter) *MultiWriter {
	return &MultiWriter{writers: ws}
}

// WriteSample sends a sample row to all writers.
func (mw *MultiWriter) WriteSample(row telemetry.SampleRow) error {
	for _, w := range mw.writers {
		if err := w.WriteSample(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteSamples sends multiple sample rows to all writers, using batch if supported.
func (mw *MultiWriter) WriteSamples(rows []telemetry.SampleRow) error {
	for _, w := range mw.writers {
		if bw, ok := w.(batchSampleWriter); ok {
			if err := bw.WriteSamples(rows); err != nil {
				return err
			}
			continue
		}
		for _, r := range rows {
			if err := w.WriteSample(r); err != nil {
				return err
			}
		}
	}
	return nil
}
