package stopwatch

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/zoobzio/clockz"
)

// DefaultRefreshPeriod is the display refresh cadence while running.
// It is a rendering concern only: elapsed time is always recomputed
// from wall-clock deltas, never accumulated tick by tick.
const DefaultRefreshPeriod = 50 * time.Millisecond

// Archiver receives the final state of a timer run when it is reset.
// The call is fire-and-forget: the engine's reset completes whether or
// not the archiver manages to persist anything.
type Archiver interface {
	Archive(ctx context.Context, total Millis, laps []Lap, title string)
}

// Engine is the timer state machine. It is either Stopped (initial) or
// Running; invalid transitions are silent no-ops. The engine also owns
// the lap list for the current run and the periodic display-refresh
// callback, which is cancelled whenever the engine leaves Running.
type Engine struct {
	clock    clockz.Clock
	archiver Archiver
	logger   *slog.Logger

	mu        sync.Mutex
	running   bool
	startedAt time.Time // only meaningful while running
	frozen    Millis    // elapsed time while stopped
	lastLap   Millis    // elapsed time at the start of the open lap
	laps      []Lap
	title     string

	refreshPeriod time.Duration
	onTick        func(Millis)
	stopTick      context.CancelFunc
}

// Snapshot is a read-only view of the engine state.
type Snapshot struct {
	Running bool   `json:"running"`
	Elapsed Millis `json:"elapsed"`
	Title   string `json:"title"`
	Laps    []Lap  `json:"laps"`
}

// New creates a stopped engine. The archiver may be nil, in which case
// Reset discards the run instead of archiving it.
func New(clock clockz.Clock, archiver Archiver, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{
		clock:         clock,
		archiver:      archiver,
		logger:        logger,
		refreshPeriod: DefaultRefreshPeriod,
	}
}

// SetRefresh installs the display-refresh callback. fn is invoked with
// the current elapsed time every period while the engine is running.
// Must be called before the first Start.
func (e *Engine) SetRefresh(period time.Duration, fn func(Millis)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if period > 0 {
		e.refreshPeriod = period
	}
	e.onTick = fn
}

// Start transitions Stopped -> Running, resuming from the frozen
// elapsed time. No-op if already running.
func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return
	}
	e.startedAt = e.clock.Now().Add(-e.frozen.Duration())
	e.lastLap = e.frozen
	e.running = true
	e.startTickerLocked()
}

// Stop freezes the elapsed time and transitions Running -> Stopped.
// If any laps were recorded in this run, the final open lap is closed
// with the frozen elapsed value. No-op if already stopped.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running {
		return
	}
	e.frozen = millisBetween(e.startedAt, e.clock.Now())
	e.running = false
	if len(e.laps) > 0 {
		e.recordLapLocked(e.frozen)
	}
	e.stopTickerLocked()
}

// Lap records a split at the current elapsed time. No-op while stopped.
func (e *Engine) Lap() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.running {
		return
	}
	e.recordLapLocked(millisBetween(e.startedAt, e.clock.Now()))
}

func (e *Engine) recordLapLocked(total Millis) {
	e.laps = append(e.laps, Lap{
		Number:    len(e.laps) + 1,
		LapTime:   total - e.lastLap,
		TotalTime: total,
	})
	e.lastLap = total
}

// Reset hands the run to the archiver (which skips untouched runs) and
// clears all timer state. Valid in either state; a running timer is not
// given a synthesized final lap, only Stop does that.
func (e *Engine) Reset(ctx context.Context) {
	e.mu.Lock()
	total := e.frozen
	if e.running {
		total = millisBetween(e.startedAt, e.clock.Now())
	}
	laps := e.laps
	title := e.title
	e.running = false
	e.frozen = 0
	e.lastLap = 0
	e.laps = nil
	e.title = ""
	e.stopTickerLocked()
	e.mu.Unlock()

	if e.archiver != nil {
		e.archiver.Archive(ctx, total, laps, title)
	}
}

// Elapsed returns the live elapsed time while running, or the frozen
// value while stopped. Always a wall-clock delta.
func (e *Engine) Elapsed() Millis {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		return millisBetween(e.startedAt, e.clock.Now())
	}
	return e.frozen
}

// Running reports whether the engine is in the Running state.
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// Laps returns a copy of the laps recorded in the current run.
func (e *Engine) Laps() []Lap {
	e.mu.Lock()
	defer e.mu.Unlock()
	laps := make([]Lap, len(e.laps))
	copy(laps, e.laps)
	return laps
}

// Title returns the session title for the current run.
func (e *Engine) Title() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.title
}

// SetTitle sets the session title for the current run.
func (e *Engine) SetTitle(title string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.title = title
}

// State returns a consistent snapshot of the engine.
func (e *Engine) State() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	elapsed := e.frozen
	if e.running {
		elapsed = millisBetween(e.startedAt, e.clock.Now())
	}
	laps := make([]Lap, len(e.laps))
	copy(laps, e.laps)
	return Snapshot{
		Running: e.running,
		Elapsed: elapsed,
		Title:   e.title,
		Laps:    laps,
	}
}

// Close stops the refresh callback if one is active. Safe to call at
// any time; the engine remains usable afterwards but no refresh ticks
// are delivered for the interrupted run.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopTickerLocked()
}

func (e *Engine) startTickerLocked() {
	if e.onTick == nil || e.stopTick != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	e.stopTick = cancel
	go e.tickLoop(ctx)
}

func (e *Engine) stopTickerLocked() {
	if e.stopTick != nil {
		e.stopTick()
		e.stopTick = nil
	}
}

func (e *Engine) tickLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-e.clock.After(e.refreshPeriod):
			e.onTick(e.Elapsed())
		}
	}
}
