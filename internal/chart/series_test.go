package chart

import (
	"testing"
	"time"
)

func TestSeriesEvictsOldestAtCapacity(t *testing.T) {
	s := NewSeriesWithCapacity(3)
	base := time.Unix(0, 0).UTC()
	for i := 0; i < 5; i++ {
		s.Add(Point{Time: base.Add(time.Duration(i) * time.Second), Speed: float64(i)})
	}
	pts := s.Points()
	if len(pts) != 3 {
		t.Fatalf("expected 3 points, got %d", len(pts))
	}
	if pts[0].Speed != 2 || pts[2].Speed != 4 {
		t.Fatalf("unexpected window: %+v", pts)
	}
}

func TestSeriesPointsReturnsCopy(t *testing.T) {
	s := NewSeries()
	s.Add(Point{Speed: 1})
	pts := s.Points()
	pts[0].Speed = 99
	if s.Points()[0].Speed != 1 {
		t.Fatal("Points must return a copy")
	}
}
