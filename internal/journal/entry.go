// Package journal generates balanced double-entry journal entries from
// templates, grounded on original_source/crates/datasynth-generators/src/
// company_selector.rs (CDF-based company selection) and coa_generator.rs
// (account-role resolution).
package journal

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Side is the debit/credit side of a journal line.
type Side int

const (
	Debit Side = iota
	Credit
)

// Line is one posting within an Entry; lines are dense-sequenced starting
// at zero within their owning Entry.
type Line struct {
	Sequence        int
	Account         string
	Side            Side
	Amount          decimal.Decimal
	CostCenter      string
	CounterpartyRef string
	TaxCode         string
}

// Entry is one balanced double-entry journal entry.
type Entry struct {
	ID             uuid.UUID
	CompanyCode    string
	FiscalYear     int
	Period         int // 1-12, the fiscal period PostingDate falls within
	DocumentNumber string
	DocumentDate   time.Time // date the source document was issued; PostingDate is when it hit the ledger
	DocumentType   string
	PostingDate    time.Time
	ProcessTag     string
	SourceTag      string
	Lines          []Line
	Approved       bool
	ApproverID     string
	CreatorID      string

	// DocumentCurrency is the entry's transaction currency; amounts on
	// Lines are stated in it. GroupCurrencyRate converts one unit of
	// DocumentCurrency to the run's configured group currency.
	DocumentCurrency  string
	GroupCurrencyRate decimal.Decimal

	// WorkflowRef/ControlRef/AnomalyRef are optional cross-references to
	// the approval workflow instance, the control/three-way-match case,
	// and an anomaly.Flip, left blank unless that subsystem touched this
	// entry.
	WorkflowRef string
	ControlRef  string
	AnomalyRef  string
}

// IsBalanced reports whether the sum of debit lines equals the sum of
// credit lines, the invariant every Entry must satisfy by construction.
func (e *Entry) IsBalanced() bool {
	debit := decimal.Zero
	credit := decimal.Zero
	for _, l := range e.Lines {
		if l.Side == Debit {
			debit = debit.Add(l.Amount)
		} else {
			credit = credit.Add(l.Amount)
		}
	}
	return debit.Equal(credit)
}
