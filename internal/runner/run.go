// Package runner owns the lifetime of one generation run: it builds the
// Generation Core pipeline from a config.Config, drives it through the
// orchestrator's phases, fingerprints and evaluates the output, and
// persists the resulting manifest — the glue the teacher's cmd/engine/
// main.go used to wire bitcoin.Client/mempool.Poller/scanner.BlockScanner
// together, generalized to this domain's phases.
package runner

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rawblock/datasynth-engine/internal/anomaly"
	"github.com/rawblock/datasynth-engine/internal/banking"
	"github.com/rawblock/datasynth-engine/internal/coa"
	"github.com/rawblock/datasynth-engine/internal/config"
	"github.com/rawblock/datasynth-engine/internal/core"
	"github.com/rawblock/datasynth-engine/internal/db"
	"github.com/rawblock/datasynth-engine/internal/docflow"
	"github.com/rawblock/datasynth-engine/internal/evaluation"
	"github.com/rawblock/datasynth-engine/internal/intercompany"
	"github.com/rawblock/datasynth-engine/internal/journal"
	"github.com/rawblock/datasynth-engine/internal/masterdata"
	"github.com/rawblock/datasynth-engine/internal/orchestrator"
	"github.com/rawblock/datasynth-engine/internal/seed"
	"github.com/rawblock/datasynth-engine/internal/subledger"
)

// ProgressBroadcaster is implemented by the API layer's websocket hub.
type ProgressBroadcaster interface {
	Broadcast(data []byte)
}

// Manager owns every in-flight and completed run, implementing
// api.RunController.
type Manager struct {
	mu       sync.Mutex
	runs     map[uuid.UUID]*run
	dbStore  *db.PostgresStore
	wsHub    ProgressBroadcaster
	log      zerolog.Logger
	outDir   string
}

// NewManager builds a run manager. outDir is where CSV sinks and manifests
// are written for each run (one subdirectory per run ID).
func NewManager(dbStore *db.PostgresStore, wsHub ProgressBroadcaster, outDir string, log zerolog.Logger) *Manager {
	return &Manager{
		runs:    make(map[uuid.UUID]*run),
		dbStore: dbStore,
		wsHub:   wsHub,
		outDir:  outDir,
		log:     log,
	}
}

type run struct {
	id     uuid.UUID
	orch   *orchestrator.Orchestrator
	cancel context.CancelFunc
	status string // "running", "paused", "completed", "failed", "cancelled"
	err    error
	report *evaluation.Report
}

// reporter adapts orchestrator.Progress snapshots onto the websocket hub.
type reporter struct {
	hub ProgressBroadcaster
}

func (r *reporter) Report(p orchestrator.Progress) {
	if r.hub == nil {
		return
	}
	payload, err := json.Marshal(map[string]any{
		"run_id":      p.RunID,
		"phase":       p.Phase.String(),
		"items_done":  p.ItemsDone,
		"items_total": p.ItemsTotal,
		"updated_at":  p.UpdatedAt,
	})
	if err != nil {
		return
	}
	r.hub.Broadcast(payload)
}

// StartRun parses and validates a config payload, then launches the run in
// a background goroutine, returning its ID immediately.
func (m *Manager) StartRun(cfgJSON []byte) (uuid.UUID, error) {
	var cfg config.Config
	if err := json.Unmarshal(cfgJSON, &cfg); err != nil {
		return uuid.Nil, core.Wrap(core.KindConfig, "malformed run configuration", err)
	}
	if err := cfg.Validate(); err != nil {
		return uuid.Nil, err
	}

	id := uuid.New()
	ctx, cancel := context.WithCancel(context.Background())
	log := m.log.With().Str("run_id", id.String()).Logger()

	orch := orchestrator.New(id, orchestrator.Config{
		Parallel:     cfg.Parallel,
		MinFreeBytes: 100 * 1024 * 1024,
	}, &reporter{hub: m.wsHub}, log)

	r := &run{id: id, orch: orch, cancel: cancel, status: "running"}
	m.mu.Lock()
	m.runs[id] = r
	m.mu.Unlock()

	go m.execute(ctx, r, cfg, log)
	return id, nil
}

func (m *Manager) get(id uuid.UUID) (*run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.runs[id]
	if !ok {
		return nil, core.New(core.KindInvalidFormat, "unknown run id "+id.String())
	}
	return r, nil
}

func (m *Manager) PauseRun(id uuid.UUID) error {
	r, err := m.get(id)
	if err != nil {
		return err
	}
	r.orch.Pause()
	r.status = "paused"
	return nil
}

func (m *Manager) ResumeRun(id uuid.UUID) error {
	r, err := m.get(id)
	if err != nil {
		return err
	}
	r.orch.Resume()
	r.status = "running"
	return nil
}

func (m *Manager) CancelRun(id uuid.UUID) error {
	r, err := m.get(id)
	if err != nil {
		return err
	}
	r.orch.Cancel()
	r.cancel()
	r.status = "cancelled"
	return nil
}

func (m *Manager) RunStatus(id uuid.UUID) (any, error) {
	r, err := m.get(id)
	if err != nil {
		return nil, err
	}
	out := map[string]any{"run_id": r.id, "status": r.status}
	if r.err != nil {
		out["error"] = r.err.Error()
	}
	if r.report != nil {
		out["evaluation_passed"] = r.report.Passed
	}
	return out, nil
}

// pipeline holds the in-memory artifacts accumulated across phases.
type pipeline struct {
	factory                    *seed.Factory
	pool                       masterdata.Pool
	chart                      *coa.ChartOfAccounts
	je                         *journal.Engine
	entries                    []*journal.Entry
	coupler                    *subledger.Coupler
	icCoupler                  *intercompany.Coupler
	docEngine                  *docflow.Engine
	subledgerSeq               uint64
	balanceToleranceMinorUnits int64
	customers                  []banking.Customer
	accounts                   []banking.Account
	transactions               []banking.Transaction
	anomalyRes                 anomaly.Result
}

func (m *Manager) execute(ctx context.Context, r *run, cfg config.Config, log zerolog.Logger) {
	p := &pipeline{factory: seed.NewFactory(cfg.RootSeed)}

	runDir := filepath.Join(m.outDir, r.id.String())
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		m.finish(r, nil, core.Wrap(core.KindIo, "failed to create run output directory", err))
		return
	}

	r.orch.Register(orchestrator.PhaseMasterData, func(ctx context.Context, ctl *orchestrator.Control) error {
		return m.phaseMasterData(ctl, p, cfg)
	})
	r.orch.Register(orchestrator.PhaseCoA, func(ctx context.Context, ctl *orchestrator.Control) error {
		return m.phaseCoA(ctl, p, cfg)
	})
	r.orch.Register(orchestrator.PhaseDocumentFlows, func(ctx context.Context, ctl *orchestrator.Control) error {
		return m.phaseDocumentFlows(ctl, p, cfg)
	})
	r.orch.Register(orchestrator.PhaseIntercompany, func(ctx context.Context, ctl *orchestrator.Control) error {
		return m.phaseIntercompany(ctl, p, cfg)
	})
	r.orch.Register(orchestrator.PhaseAnomalyOverlay, func(ctx context.Context, ctl *orchestrator.Control) error {
		return m.phaseAnomalyOverlay(ctl, p, cfg)
	})
	r.orch.Register(orchestrator.PhaseSinkFlush, func(ctx context.Context, ctl *orchestrator.Control) error {
		return m.phaseSinkFlush(ctl, p, runDir)
	})

	started := time.Now()
	result, err := r.orch.Run(ctx)

	phasesDone := make([]string, 0, len(result.PhasesComplete))
	for _, ph := range result.PhasesComplete {
		phasesDone = append(phasesDone, ph.String())
	}

	if m.dbStore != nil {
		completed := time.Now().Unix()
		manifest := db.RunManifestRecord{
			RunID:        r.id.String(),
			RootSeed:     int64(cfg.RootSeed),
			StartedAt:    started.Unix(),
			CompletedAt:  &completed,
			PhasesDone:   phasesDone,
			Failed:       err != nil,
		}
		if err != nil {
			manifest.ErrorMessage = err.Error()
		}
		if saveErr := m.dbStore.SaveRunManifest(context.Background(), manifest); saveErr != nil {
			log.Warn().Err(saveErr).Msg("failed to persist run manifest")
		}
	}

	if err != nil {
		m.finish(r, nil, err)
		return
	}

	report := m.fingerprintAndEvaluate(p)
	if m.dbStore != nil {
		reportJSON, _ := json.Marshal(report)
		if saveErr := m.dbStore.SaveEvaluationReport(context.Background(), db.EvaluationReportRecord{
			RunID:      r.id.String(),
			Passed:     report.Passed,
			ReportJSON: reportJSON,
		}); saveErr != nil {
			log.Warn().Err(saveErr).Msg("failed to persist evaluation report")
		}
	}
	m.finish(r, &report, nil)
}

func (m *Manager) finish(r *run, report *evaluation.Report, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.err = err
	r.report = report
	if err != nil {
		if err == core.ErrCancelled {
			r.status = "cancelled"
		} else {
			r.status = "failed"
		}
		return
	}
	r.status = "completed"
}
