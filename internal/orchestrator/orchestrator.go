// Package orchestrator sequences the Generation Core's phases with
// cooperative pause/cancel and resource guards, grounded on the teacher's
// ticker-plus-context-cancellation polling loop and cmd/engine/main.go's
// graceful-degradation wiring style.
package orchestrator

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/rawblock/datasynth-engine/internal/core"
)

// Phase is the canonical, ordered set of generation phases. Document flows,
// subledgers and journal entries interleave inside DocumentFlows, driven by
// the docflow engine, rather than being split into separate phases.
type Phase int

const (
	PhaseMasterData Phase = iota
	PhaseCoA
	PhaseDocumentFlows
	PhaseIntercompany
	PhaseAnomalyOverlay
	PhaseSinkFlush
)

func (p Phase) String() string {
	return [...]string{"MasterData", "CoA", "DocumentFlows", "Intercompany", "AnomalyOverlay", "SinkFlush"}[p]
}

// PhaseFunc runs one phase to completion, checking ctx and the orchestrator's
// pause/cancel signals at reasonable item boundaries via the *Control handle
// passed in.
type PhaseFunc func(ctx context.Context, ctl *Control) error

// ShardFunc is one independently-output unit of work inside a phase that
// can safely run concurrently with its siblings (e.g. one banking shard per
// account population slice).
type ShardFunc func(ctx context.Context) error

// Progress is a lossy, latest-value-wins snapshot broadcast to observers.
type Progress struct {
	RunID        uuid.UUID
	Phase        Phase
	ItemsDone    int64
	ItemsTotal   int64
	UpdatedAt    time.Time
}

// Reporter receives progress snapshots; the REST/websocket layer implements
// this to broadcast over the teacher's gorilla/websocket hub.
type Reporter interface {
	Report(Progress)
}

// Config controls resource guards and parallelism.
type Config struct {
	Parallel          bool
	DiskCheckInterval int64 // items between disk guard checks
	MinFreeBytes      int64
	DiskFreeBytesFunc func() int64
	MemorySoftLimit   int64
	MemoryUsageFunc   func() int64
}

// Control is handed to each PhaseFunc so it can poll cancellation/pause and
// consult resource guards without reaching into orchestrator internals.
type Control struct {
	ctx     context.Context
	cancel  *atomic.Bool
	pause   *atomic.Bool
	cfg     Config
	items   int64
	log     zerolog.Logger
}

// CheckPoint must be called at item boundaries inside a PhaseFunc; it parks
// on pause, returns core.ErrCancelled on cancellation, and enforces the
// disk/memory guards.
func (c *Control) CheckPoint() error {
	for c.pause.Load() {
		select {
		case <-c.ctx.Done():
			return core.ErrCancelled
		case <-time.After(50 * time.Millisecond):
		}
	}
	if c.cancel.Load() {
		return core.ErrCancelled
	}
	select {
	case <-c.ctx.Done():
		return core.ErrCancelled
	default:
	}

	c.items++
	if c.cfg.DiskCheckInterval > 0 && c.items%c.cfg.DiskCheckInterval == 0 && c.cfg.DiskFreeBytesFunc != nil {
		free := c.cfg.DiskFreeBytesFunc()
		if free < c.cfg.MinFreeBytes {
			return core.NewDiskExhausted(free, c.cfg.MinFreeBytes)
		}
	}
	return nil
}

// BatchSize shrinks geometrically once memory usage crosses the soft
// limit, so phases degrade gracefully instead of aborting outright.
func (c *Control) BatchSize(base int) int {
	if c.cfg.MemoryUsageFunc == nil || c.cfg.MemorySoftLimit <= 0 {
		return base
	}
	usage := c.cfg.MemoryUsageFunc()
	if usage <= c.cfg.MemorySoftLimit {
		return base
	}
	ratio := float64(c.cfg.MemorySoftLimit) / float64(usage)
	shrunk := int(float64(base) * ratio)
	if shrunk < 1 {
		shrunk = 1
	}
	return shrunk
}

func (c *Control) Log() zerolog.Logger { return c.log }

// RunParallel runs independent-output shards concurrently via errgroup when
// the orchestrator is configured for parallel phases, else sequentially.
func (c *Control) RunParallel(shards []ShardFunc) error {
	if !c.cfg.Parallel {
		for _, s := range shards {
			if err := s(c.ctx); err != nil {
				return err
			}
		}
		return nil
	}
	g, ctx := errgroup.WithContext(c.ctx)
	for _, s := range shards {
		s := s
		g.Go(func() error { return s(ctx) })
	}
	return g.Wait()
}

// RunResult summarizes a completed or aborted run.
type RunResult struct {
	RunID          uuid.UUID
	PhasesComplete []Phase
	Err            error
}

// Orchestrator sequences registered phases, exposing cooperative
// pause/resume/cancel.
type Orchestrator struct {
	runID    uuid.UUID
	phases   []Phase
	funcs    map[Phase]PhaseFunc
	cfg      Config
	reporter Reporter
	log      zerolog.Logger

	cancelFlag atomic.Bool
	pauseFlag  atomic.Bool
}

func New(runID uuid.UUID, cfg Config, reporter Reporter, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		runID:    runID,
		phases:   []Phase{PhaseMasterData, PhaseCoA, PhaseDocumentFlows, PhaseIntercompany, PhaseAnomalyOverlay, PhaseSinkFlush},
		funcs:    make(map[Phase]PhaseFunc),
		cfg:      cfg,
		reporter: reporter,
		log:      log,
	}
}

// Register installs the function that implements a phase.
func (o *Orchestrator) Register(p Phase, fn PhaseFunc) { o.funcs[p] = fn }

// Pause requests the run park at the next checkpoint.
func (o *Orchestrator) Pause() { o.pauseFlag.Store(true) }

// Resume clears a prior Pause.
func (o *Orchestrator) Resume() { o.pauseFlag.Store(false) }

// Cancel requests the run stop at the next checkpoint; already-written
// output is not rolled back.
func (o *Orchestrator) Cancel() { o.cancelFlag.Store(true) }

// Run executes every registered phase in canonical order.
func (o *Orchestrator) Run(ctx context.Context) (*RunResult, error) {
	result := &RunResult{RunID: o.runID}
	for _, phase := range o.phases {
		fn, ok := o.funcs[phase]
		if !ok {
			continue
		}
		ctl := &Control{ctx: ctx, cancel: &o.cancelFlag, pause: &o.pauseFlag, cfg: o.cfg, log: o.log.With().Str("phase", phase.String()).Logger()}
		o.log.Info().Str("phase", phase.String()).Msg("phase starting")

		if err := fn(ctx, ctl); err != nil {
			result.Err = err
			o.log.Error().Err(err).Str("phase", phase.String()).Msg("phase failed")
			return result, err
		}
		result.PhasesComplete = append(result.PhasesComplete, phase)
		if o.reporter != nil {
			o.reporter.Report(Progress{RunID: o.runID, Phase: phase, UpdatedAt: time.Now()})
		}
		o.log.Info().Str("phase", phase.String()).Msg("phase complete")
	}
	return result, nil
}
