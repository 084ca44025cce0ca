package scenario

import (
	"context"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"treadlink/internal/config"
	"treadlink/internal/link"
	"treadlink/internal/logging"
	"treadlink/internal/telemetry"
)

// Sender delivers outbound commands. Satisfied by *link.Manager.
type Sender interface {
	Send(cmdType string, value *float64) error
	Connected() bool
}

// Dimension identifies one controlled quantity.
type Dimension struct {
	Name      string
	Command   string
	Precision int
	Seed      func(telemetry.State) float64
}

var (
	// SpeedDimension drives the belt speed in km/h.
	SpeedDimension = Dimension{
		Name:      "speed",
		Command:   link.CmdSetSpeedNow,
		Precision: 1,
		Seed:      func(st telemetry.State) float64 { return st.Speed },
	}
	// InclineDimension drives the deck incline in percent.
	InclineDimension = Dimension{
		Name:      "incline",
		Command:   link.CmdSetInclineNow,
		Precision: 1,
		Seed:      func(st telemetry.State) float64 { return st.Incline },
	}
)

// Loop periodically computes the next target for one dimension and sends it
// over the link. It tracks its own commanded value so repeated sends compound
// correctly even when telemetry echoes lag; the tracked value is seeded from
// live telemetry at loop start so the walk continues from wherever the
// machine currently is.
type Loop struct {
	dim    Dimension
	sender Sender
	rng    *rand.Rand

	mu       sync.Mutex
	rangeCfg config.Range
	current  float64

	intervalCh chan time.Duration
}

// NewLoop creates a loop seeded from the given telemetry snapshot.
func NewLoop(dim Dimension, r config.Range, sender Sender, seed telemetry.State, rng *rand.Rand) *Loop {
	return &Loop{
		dim:        dim,
		sender:     sender,
		rng:        rng,
		rangeCfg:   r,
		current:    dim.Seed(seed),
		intervalCh: make(chan time.Duration, 1),
	}
}

// Run drives the loop until the context is done.
func (l *Loop) Run(ctx context.Context) {
	log := logging.FromContext(ctx)
	l.mu.Lock()
	interval := l.rangeCfg.Interval()
	l.mu.Unlock()

	log.Info("scenario loop started", "dimension", l.dim.Name, "interval", interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info("scenario loop stopped", "dimension", l.dim.Name)
			return
		case d := <-l.intervalCh:
			log.Info("scenario loop rearmed", "dimension", l.dim.Name, "interval", d)
			ticker.Reset(d)
		case <-ticker.C:
			l.tick(log)
		}
	}
}

// Reconfigure swaps the bounds and rearms the timer with the new interval.
func (l *Loop) Reconfigure(r config.Range) {
	l.mu.Lock()
	l.rangeCfg = r
	l.mu.Unlock()
	select {
	case l.intervalCh <- r.Interval():
	default:
	}
}

// Current returns the last commanded target.
func (l *Loop) Current() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current
}

// tick computes and sends the next target. When the link is down the tick is
// skipped entirely so the tracked value does not drift while commands cannot
// be delivered.
func (l *Loop) tick(log *slog.Logger) {
	if !l.sender.Connected() {
		log.Debug("skipping tick, link not connected", "dimension", l.dim.Name)
		return
	}
	l.mu.Lock()
	r := l.rangeCfg
	next := NextValue(l.current, r.Min, r.Max, r.Volatility, l.dim.Precision, l.rng)
	l.current = next
	l.mu.Unlock()

	if err := l.sender.Send(l.dim.Command, &next); err != nil {
		log.Error("target send failed", "dimension", l.dim.Name, "err", err)
	}
}
