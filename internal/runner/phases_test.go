package runner

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rawblock/datasynth-engine/internal/config"
	"github.com/rawblock/datasynth-engine/internal/docflow"
	"github.com/rawblock/datasynth-engine/internal/orchestrator"
	"github.com/rawblock/datasynth-engine/internal/seed"
	"github.com/rawblock/datasynth-engine/internal/subledger"
)

func testCfg() config.Config {
	return config.Config{
		RootSeed:  1,
		StartDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
		Companies: []config.CompanyConfig{
			{Code: "US01", VolumeWeight: 1.0},
			{Code: "DE01", VolumeWeight: 0.5},
		},
		Banking:       config.BankingConfig{CustomerCount: 5, TypologyFraction: 0.2},
		FraudFraction: 0.1,
	}
}

// runThroughCoA drives phaseMasterData then phaseCoA via a real orchestrator
// so each phase receives a validly-constructed *orchestrator.Control.
func runThroughCoA(t *testing.T, m *Manager, p *pipeline, cfg config.Config) {
	t.Helper()
	o := orchestrator.New(uuid.New(), orchestrator.Config{}, nil, zerolog.Nop())
	o.Register(orchestrator.PhaseMasterData, func(ctx context.Context, ctl *orchestrator.Control) error {
		return m.phaseMasterData(ctl, p, cfg)
	})
	o.Register(orchestrator.PhaseCoA, func(ctx context.Context, ctl *orchestrator.Control) error {
		return m.phaseCoA(ctl, p, cfg)
	})
	_, err := o.Run(context.Background())
	require.NoError(t, err)
}

func TestPhaseMasterData_PopulatesPoolWithConfiguredCompanies(t *testing.T) {
	m := NewManager(nil, nil, t.TempDir(), zerolog.Nop())
	cfg := testCfg()
	p := &pipeline{factory: seed.NewFactory(cfg.RootSeed)}

	require.NoError(t, m.phaseMasterData(testControl(t), p, cfg))

	require.Len(t, p.pool.Companies, 2)
	assert.Equal(t, "US01", p.pool.Companies[0].Code)
	assert.NotEmpty(t, p.pool.Vendors)
	assert.NotEmpty(t, p.pool.Customers)
	assert.NotEmpty(t, p.pool.Materials)
}

func TestPhaseCoA_BuildsChartEngineAndCouplers(t *testing.T) {
	m := NewManager(nil, nil, t.TempDir(), zerolog.Nop())
	cfg := testCfg()
	p := &pipeline{factory: seed.NewFactory(cfg.RootSeed)}
	runThroughCoA(t, m, p, cfg)

	require.NotNil(t, p.chart)
	require.NotNil(t, p.je)
	require.NotNil(t, p.coupler)
	require.NotNil(t, p.icCoupler)
}

func TestPhaseDocumentFlows_ProducesBalancedEntriesAndSubledgerPostings(t *testing.T) {
	m := NewManager(nil, nil, t.TempDir(), zerolog.Nop())
	cfg := testCfg()
	p := &pipeline{factory: seed.NewFactory(cfg.RootSeed)}
	runThroughCoA(t, m, p, cfg)

	require.NoError(t, m.phaseDocumentFlows(testControl(t), p, cfg))

	require.NotEmpty(t, p.entries, "document flows should emit at least some balanced journal entries")
	for _, e := range p.entries {
		assert.True(t, e.IsBalanced())
	}
	assert.Greater(t, p.subledgerSeq, uint64(0), "at least one AR/AP open item should have posted through the coupler")
	assert.NotEmpty(t, p.coupler.Records(), "postOpenItem should have recorded subledger entries")
}

func TestPostSubledgerOpenItem_UnknownKindIsNoOp(t *testing.T) {
	m := NewManager(nil, nil, t.TempDir(), zerolog.Nop())
	cfg := testCfg()
	p := &pipeline{factory: seed.NewFactory(cfg.RootSeed)}
	runThroughCoA(t, m, p, cfg)

	c := &docflow.Case{ID: uuid.New(), CompanyCode: "US01", Machine: docflow.NewP2PMachine(), Status: map[string]string{}}
	target := cfg.StartDate.AddDate(0, 1, 0)
	postSubledgerOpenItem(p, c, target, docflow.Action{Kind: docflow.ActionEmitSubledger, SubledgerKind: "Inventory"})

	assert.Equal(t, uint64(0), p.subledgerSeq)
	assert.Empty(t, p.coupler.Records())
}

func TestPostSubledgerOpenItem_ARPostsDebitAgainstControlAccount(t *testing.T) {
	m := NewManager(nil, nil, t.TempDir(), zerolog.Nop())
	cfg := testCfg()
	p := &pipeline{factory: seed.NewFactory(cfg.RootSeed)}
	runThroughCoA(t, m, p, cfg)

	c := &docflow.Case{ID: uuid.New(), CompanyCode: "US01", Machine: docflow.NewO2CMachine(), Status: map[string]string{}}
	target := cfg.StartDate.AddDate(0, 1, 0)
	postSubledgerOpenItem(p, c, target, docflow.Action{Kind: docflow.ActionEmitSubledger, SubledgerKind: "AR"})

	require.Len(t, p.coupler.Records(), 1)
	rec := p.coupler.Records()[0]
	assert.Equal(t, subledger.AR, rec.Kind)
	assert.True(t, rec.Open)
	require.Len(t, p.entries, 1)
	assert.True(t, p.entries[0].IsBalanced())
	assert.NotEmpty(t, c.Status["AR_counterparty"])
}

func TestPostOpenItem_PairedJEAndSubledgerShareOneBalancedEntry(t *testing.T) {
	m := NewManager(nil, nil, t.TempDir(), zerolog.Nop())
	cfg := testCfg()
	p := &pipeline{factory: seed.NewFactory(cfg.RootSeed)}
	runThroughCoA(t, m, p, cfg)

	c := &docflow.Case{ID: uuid.New(), CompanyCode: "US01", Machine: docflow.NewO2CMachine(), Status: map[string]string{}}
	target := cfg.StartDate.AddDate(0, 1, 0)
	postOpenItem(p, c, target, "ar_invoice", "AR")

	require.Len(t, p.entries, 1)
	entry := p.entries[0]
	assert.True(t, entry.IsBalanced())
	assert.Equal(t, "ar_invoice", entry.DocumentType)
	require.Len(t, p.coupler.Records(), 1)
	assert.Equal(t, entry.ID, p.coupler.Records()[0].JournalEntryID)
}

func TestPostSettlement_ClosesOpenItemForExactOutstandingAmount(t *testing.T) {
	m := NewManager(nil, nil, t.TempDir(), zerolog.Nop())
	cfg := testCfg()
	p := &pipeline{factory: seed.NewFactory(cfg.RootSeed)}
	runThroughCoA(t, m, p, cfg)

	c := &docflow.Case{ID: uuid.New(), CompanyCode: "US01", Machine: docflow.NewO2CMachine(), Status: map[string]string{}}
	opened := cfg.StartDate.AddDate(0, 1, 0)
	postOpenItem(p, c, opened, "ar_invoice", "AR")
	require.Len(t, p.entries, 1)
	openAmount := p.coupler.Records()[0].Balance

	settled := opened.AddDate(0, 0, 21)
	postSettlement(p, c, settled, "ar_receipt")

	require.Len(t, p.entries, 2)
	settlement := p.entries[1]
	assert.True(t, settlement.IsBalanced())
	assert.True(t, settlement.Lines[0].Amount.Equal(openAmount))
	assert.True(t, p.coupler.OpenTotals()[subledger.AR].IsZero())
}

func TestPhaseSinkFlush_WritesCSVFiles(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(nil, nil, dir, zerolog.Nop())
	cfg := testCfg()
	p := &pipeline{factory: seed.NewFactory(cfg.RootSeed)}
	runThroughCoA(t, m, p, cfg)
	require.NoError(t, m.phaseDocumentFlows(testControl(t), p, cfg))

	require.NoError(t, m.phaseAnomalyOverlay(testControl(t), p, cfg))
	require.NoError(t, m.phaseSinkFlush(testControl(t), p, dir))

	entriesPath := filepath.Join(dir, "journal_entries.csv")
	txPath := filepath.Join(dir, "transactions.csv")
	for _, path := range []string{entriesPath, txPath} {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}
}

// testControl builds a *orchestrator.Control suitable for direct phase calls
// in tests, by running a one-phase orchestrator and capturing the Control
// the phase body executes against.
func testControl(t *testing.T) *orchestrator.Control {
	t.Helper()
	var captured *orchestrator.Control
	o := orchestrator.New(uuid.New(), orchestrator.Config{}, nil, zerolog.Nop())
	o.Register(orchestrator.PhaseMasterData, func(ctx context.Context, ctl *orchestrator.Control) error {
		captured = ctl
		return nil
	})
	_, err := o.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, captured)
	return captured
}
