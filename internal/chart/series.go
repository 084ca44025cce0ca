// Bounded time-bucketed series feeding the charting collaborator
package chart

import (
	"context"
	"sync"
	"time"

	"treadlink/internal/logging"
	"treadlink/internal/telemetry"
)

// Point is one time-bucketed (speed, incline) reading.
type Point struct {
	Time    time.Time `json:"t"`
	Speed   float64   `json:"speed_kmh"`
	Incline float64   `json:"incline_pct"`
}

// bucketInterval is the fixed sampling cadence; defaultCapacity bounds the
// series to ten minutes of points.
const (
	bucketInterval  = time.Second
	defaultCapacity = 600
)

// Series is a bounded append-only window of chart points. Oldest points are
// evicted once capacity is reached.
type Series struct {
	mu       sync.Mutex
	points   []Point
	capacity int
}

// NewSeries creates a series with the default ten-minute capacity.
func NewSeries() *Series {
	return NewSeriesWithCapacity(defaultCapacity)
}

// NewSeriesWithCapacity creates a series bounded to n points.
func NewSeriesWithCapacity(n int) *Series {
	if n < 1 {
		n = 1
	}
	return &Series{capacity: n}
}

// Add appends a point, evicting the oldest when full.
func (s *Series) Add(p Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.points = append(s.points, p)
	if len(s.points) > s.capacity {
		s.points = s.points[len(s.points)-s.capacity:]
	}
}

// Points returns a copy of the current window.
func (s *Series) Points() []Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Point, len(s.points))
	copy(out, s.points)
	return out
}

// Len returns the number of buffered points.
func (s *Series) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.points)
}

// Sampler reads the telemetry store once per second and appends to a series.
type Sampler struct {
	store  *telemetry.Store
	series *Series
}

// NewSampler creates a sampler feeding series from store.
func NewSampler(store *telemetry.Store, series *Series) *Sampler {
	return &Sampler{store: store, series: series}
}

// Run samples until the context is done.
func (s *Sampler) Run(ctx context.Context) {
	log := logging.FromContext(ctx)
	log.Info("chart sampler started", "interval", bucketInterval)
	ticker := time.NewTicker(bucketInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("chart sampler stopped")
			return
		case now := <-ticker.C:
			st := s.store.Snapshot()
			s.series.Add(Point{
				Time:    now.UTC().Truncate(bucketInterval),
				Speed:   st.Speed,
				Incline: st.Incline,
			})
		}
	}
}
