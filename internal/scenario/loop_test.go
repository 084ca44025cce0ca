package scenario

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"treadlink/internal/config"
	"treadlink/internal/logging"
	"treadlink/internal/telemetry"
)

type fakeSender struct {
	mu        sync.Mutex
	connected bool
	sent      []struct {
		cmd   string
		value float64
	}
}

func (f *fakeSender) Send(cmdType string, value *float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	v := 0.0
	if value != nil {
		v = *value
	}
	f.sent = append(f.sent, struct {
		cmd   string
		value float64
	}{cmdType, v})
	return nil
}

func (f *fakeSender) Connected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *fakeSender) setConnected(c bool) {
	f.mu.Lock()
	f.connected = c
	f.mu.Unlock()
}

func (f *fakeSender) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func testRange(min, max, vol float64) config.Range {
	return config.Range{Min: min, Max: max, Volatility: vol, UpdateIntervalMs: 1000}
}

func TestLoopSkipsTickWhileDisconnected(t *testing.T) {
	sender := &fakeSender{}
	seed := telemetry.State{Speed: 4.0}
	l := NewLoop(SpeedDimension, testRange(2, 8, 0.5), sender, seed, rand.New(rand.NewSource(1)))

	l.tick(logging.New())
	if sender.count() != 0 {
		t.Fatalf("expected no send while disconnected, got %d", sender.count())
	}
	if l.Current() != 4.0 {
		t.Errorf("tracked value must not drift while disconnected, got %f", l.Current())
	}
}

func TestLoopTickSendsAndCompounds(t *testing.T) {
	sender := &fakeSender{connected: true}
	seed := telemetry.State{Speed: 4.0}
	l := NewLoop(SpeedDimension, testRange(2, 8, 0), sender, seed, rand.New(rand.NewSource(1)))
	log := logging.New()

	l.tick(log)
	if sender.count() != 1 {
		t.Fatalf("expected one send, got %d", sender.count())
	}
	if sender.sent[0].cmd != "SET_SPEED_NOW" {
		t.Errorf("unexpected command %s", sender.sent[0].cmd)
	}
	first := sender.sent[0].value
	if first <= 4.0 || first > 5.0 {
		t.Errorf("first target should move strictly toward center: %f", first)
	}

	// Second tick seeds from the tracked value, not the telemetry echo.
	l.tick(log)
	second := sender.sent[1].value
	if second <= first || second > 5.0 {
		t.Errorf("targets should keep converging: %f then %f", first, second)
	}
	if l.Current() != second {
		t.Errorf("tracked value %f != last sent %f", l.Current(), second)
	}
}

func TestLoopPicksUpFromTelemetry(t *testing.T) {
	sender := &fakeSender{connected: true}
	seed := telemetry.State{Speed: 6.8, Incline: 3.0}
	l := NewLoop(InclineDimension, testRange(0, 6, 0), sender, seed, rand.New(rand.NewSource(1)))
	if l.Current() != 3.0 {
		t.Errorf("incline loop should seed from telemetry incline, got %f", l.Current())
	}
}

func TestLoopReconfigureChangesBounds(t *testing.T) {
	sender := &fakeSender{connected: true}
	l := NewLoop(SpeedDimension, testRange(2, 8, 0), sender, telemetry.State{Speed: 4}, rand.New(rand.NewSource(1)))
	l.Reconfigure(testRange(10, 12, 0))

	l.tick(logging.New())
	got := sender.sent[0].value
	if got < 10 || got > 12 {
		t.Errorf("tick after reconfigure should respect new bounds, got %f", got)
	}
}

func TestEngineStartStop(t *testing.T) {
	sender := &fakeSender{connected: true}
	store := telemetry.NewStore()
	speed := 4.0
	store.Apply(telemetry.Update{Speed: &speed}, time.Now())

	e := NewEngine(sender, store, WithRand(rand.New(rand.NewSource(1))))
	cfg := &config.Scenario{
		Name:    "test",
		Speed:   testRange(2, 8, 0),
		Incline: testRange(0, 6, 0),
	}

	ctx := logging.NewContext(context.Background(), logging.New())
	e.Start(ctx, cfg)
	if !e.Running() {
		t.Fatal("engine should be running")
	}
	if e.Name() != "test" {
		t.Errorf("unexpected name %q", e.Name())
	}
	s, _ := e.Targets()
	if s != 4.0 {
		t.Errorf("speed target should pick up telemetry reading, got %f", s)
	}

	e.Stop()
	if e.Running() {
		t.Fatal("engine should be stopped")
	}
	if e.Name() != "" {
		t.Errorf("stopped engine reports name %q", e.Name())
	}
}

func TestEngineLoopsUseIndependentRandSources(t *testing.T) {
	sender := &fakeSender{connected: true}
	store := telemetry.NewStore()
	e := NewEngine(sender, store, WithRand(rand.New(rand.NewSource(1))))
	cfg := &config.Scenario{Name: "c", Speed: testRange(2, 8, 0.5), Incline: testRange(0, 6, 0.5)}

	ctx := logging.NewContext(context.Background(), logging.New())
	e.Start(ctx, cfg)
	defer e.Stop()

	if e.speed.rng == e.incline.rng {
		t.Fatal("dimension loops must not share a rand source")
	}

	// Concurrent ticks across both loops must be race-free.
	log := logging.New()
	var wg sync.WaitGroup
	for _, l := range []*Loop{e.speed, e.incline} {
		wg.Add(1)
		go func(l *Loop) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				l.tick(log)
			}
		}(l)
	}
	wg.Wait()
}

func TestEngineUpdateConfig(t *testing.T) {
	sender := &fakeSender{connected: true}
	store := telemetry.NewStore()
	e := NewEngine(sender, store, WithRand(rand.New(rand.NewSource(1))))
	cfg := &config.Scenario{Name: "a", Speed: testRange(2, 8, 0), Incline: testRange(0, 6, 0)}

	ctx := logging.NewContext(context.Background(), logging.New())
	e.Start(ctx, cfg)
	defer e.Stop()

	cfg2 := &config.Scenario{Name: "b", Speed: testRange(3, 9, 0), Incline: testRange(1, 5, 0)}
	e.UpdateConfig(cfg2)
	if e.Name() != "b" {
		t.Errorf("unexpected name %q", e.Name())
	}
}
