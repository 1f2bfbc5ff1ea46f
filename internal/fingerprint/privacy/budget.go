// Package privacy implements the differential-privacy and k-anonymity
// protections applied to extracted statistics before they leave the
// fingerprint core, grounded on
// original_source/crates/datasynth-fingerprint/src/privacy in full.
package privacy

import (
	"time"

	"github.com/rawblock/datasynth-engine/internal/core"
)

// AuditEntry records one privacy-affecting action for the manifest's
// full audit trail.
type AuditEntry struct {
	Timestamp      time.Time
	Action         string
	Target         string
	EpsilonSpent   float64
	EpsilonRemaining float64
}

// Engine centrally tracks the epsilon budget and every perturbation or
// suppression applied against it.
type Engine struct {
	limit   float64
	spent   float64
	entries []AuditEntry
}

func NewEngine(epsilonLimit float64) *Engine {
	return &Engine{limit: epsilonLimit}
}

// Spend deducts cost from the remaining budget, returning the error built by
// core.NewPrivacyBudgetExhausted if it would go negative.
func (e *Engine) Spend(action, target string, cost float64) error {
	if e.spent+cost > e.limit {
		return core.NewPrivacyBudgetExhausted(e.spent+cost, e.limit)
	}
	e.spent += cost
	e.entries = append(e.entries, AuditEntry{
		Timestamp:        time.Now(),
		Action:           action,
		Target:           target,
		EpsilonSpent:     cost,
		EpsilonRemaining: e.limit - e.spent,
	})
	return nil
}

func (e *Engine) Remaining() float64 { return e.limit - e.spent }
func (e *Engine) Spent() float64     { return e.spent }
func (e *Engine) Entries() []AuditEntry { return e.entries }
