package record

import "treadlink/internal/telemetry"

// SampleWriter is an interface to support different output writers.
type SampleWriter interface {
	WriteSample(telemetry.SampleRow) error
}

// Optional: writers can also support batch mode.
type batchSampleWriter interface {
	WriteSamples([]telemetry.SampleRow) error
}
