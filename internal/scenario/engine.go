package scenario

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"treadlink/internal/config"
	"treadlink/internal/logging"
	"treadlink/internal/telemetry"
)

// Engine owns the two dimension loops of a scenario. The loops run on
// independent timers and never assume relative ordering between a speed tick
// and an incline tick.
type Engine struct {
	sender Sender
	store  *telemetry.Store
	rng    *rand.Rand

	mu      sync.Mutex
	cancel  context.CancelFunc
	speed   *Loop
	incline *Loop
	name    string
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithRand substitutes the noise source, for deterministic tests.
func WithRand(rng *rand.Rand) EngineOption {
	return func(e *Engine) { e.rng = rng }
}

// NewEngine creates a stopped engine.
func NewEngine(sender Sender, store *telemetry.Store, opts ...EngineOption) *Engine {
	e := &Engine{
		sender: sender,
		store:  store,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Start launches both loops, seeding their tracked targets from the live
// telemetry reading so the walk picks up from the machine's actual position.
// A running scenario is stopped first.
func (e *Engine) Start(ctx context.Context, cfg *config.Scenario) {
	e.Stop()

	log := logging.FromContext(ctx)
	seed := e.store.Snapshot()

	e.mu.Lock()
	loopCtx, cancel := context.WithCancel(ctx)
	e.cancel = cancel
	e.name = cfg.Name
	// Each loop gets its own source: the loops tick on independent
	// goroutines and math/rand sources are not safe for concurrent use.
	e.speed = NewLoop(SpeedDimension, cfg.Speed, e.sender, seed, rand.New(rand.NewSource(e.rng.Int63())))
	e.incline = NewLoop(InclineDimension, cfg.Incline, e.sender, seed, rand.New(rand.NewSource(e.rng.Int63())))
	go e.speed.Run(loopCtx)
	go e.incline.Run(loopCtx)
	e.mu.Unlock()

	log.Info("scenario started", "name", cfg.Name,
		"speed_seed", seed.Speed, "incline_seed", seed.Incline)
}

// Stop cancels both loop timers immediately. The last commanded values stay
// in place; no return-to-neutral command is issued.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		e.cancel()
		e.cancel = nil
	}
}

// Running reports whether a scenario is active.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cancel != nil
}

// Name returns the active scenario name, or empty when stopped.
func (e *Engine) Name() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel == nil {
		return ""
	}
	return e.name
}

// UpdateConfig rearms both loops with new bounds and intervals mid-run.
func (e *Engine) UpdateConfig(cfg *config.Scenario) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.name = cfg.Name
	if e.speed != nil {
		e.speed.Reconfigure(cfg.Speed)
	}
	if e.incline != nil {
		e.incline.Reconfigure(cfg.Incline)
	}
}

// Targets returns the last commanded (speed, incline) pair.
func (e *Engine) Targets() (speed, incline float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.speed != nil {
		speed = e.speed.Current()
	}
	if e.incline != nil {
		incline = e.incline.Current()
	}
	return speed, incline
}
