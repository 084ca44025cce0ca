package record

import (
	"testing"
	"time"

	"treadlink/internal/telemetry"
)

type batchCollectWriter struct {
	rows    []telemetry.SampleRow
	batches int
}

func (c *batchCollectWriter) WriteSample(r telemetry.SampleRow) error {
	c.rows = append(c.rows, r)
	return nil
}

func (c *batchCollectWriter) WriteSamples(rows []telemetry.SampleRow) error {
	c.batches++
	c.rows = append(c.rows, rows...)
	return nil
}

func TestMultiWriterFanOut(t *testing.T) {
	a := &collectWriter{}
	b := &batchCollectWriter{}
	mw := NewMultiWriter(a, b)

	row := telemetry.SampleRow{SessionID: "s1", Timestamp: time.Unix(0, 0)}
	if err := mw.WriteSample(row); err != nil {
		t.Fatalf("write: %v", err)
	}
	if len(a.rows) != 1 || len(b.rows) != 1 {
		t.Fatalf("expected fan-out to both writers: %d, %d", len(a.rows), len(b.rows))
	}

	if err := mw.WriteSamples([]telemetry.SampleRow{row, row}); err != nil {
		t.Fatalf("write batch: %v", err)
	}
	if len(a.rows) != 3 {
		t.Fatalf("plain writer should get individual rows, got %d", len(a.rows))
	}
	if b.batches != 1 {
		t.Fatalf("batch writer should get one batch call, got %d", b.batches)
	}
}
