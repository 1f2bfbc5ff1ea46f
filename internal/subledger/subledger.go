// Package subledger couples subledger records (AR/AP open items, fixed
// assets, inventory positions) to their GL control accounts through a single
// atomic posting path, grounded on spec §4.4 and
// original_source/crates/datasynth-generators/src/subledger/document_flow_linker.rs.
package subledger

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rawblock/datasynth-engine/internal/coa"
	"github.com/rawblock/datasynth-engine/internal/core"
	"github.com/rawblock/datasynth-engine/internal/journal"
)

// Kind is the closed set of subledgers this engine maintains.
type Kind int

const (
	AR Kind = iota
	AP
	FixedAssets
	Inventory
)

func (k Kind) String() string {
	switch k {
	case AR:
		return "AR"
	case AP:
		return "AP"
	case FixedAssets:
		return "FixedAssets"
	case Inventory:
		return "Inventory"
	default:
		return "Unknown"
	}
}

// Record is one open item (or asset/inventory position) linked to the GL
// line(s) that created it.
type Record struct {
	ID              uuid.UUID
	Kind            Kind
	CounterpartyRef string
	Balance         decimal.Decimal
	JournalEntryID  uuid.UUID
	Open            bool
}

// PostingUnit pairs a journal entry with the subledger records it creates;
// this is the only atomic unit the Coupler accepts.
type PostingUnit struct {
	JournalEntry     *journal.Entry
	SubledgerRecords []Record
}

// Coupler centralizes the one control account per Kind and enforces that no
// journal line posts to a control account outside of Post.
type Coupler struct {
	chart           *coa.ChartOfAccounts
	controlAccounts map[Kind]string
	records         []Record
}

// NewCoupler resolves the control account numbers for AR and AP from the
// chart's accounts-receivable and accounts-payable accounts; FixedAssets and
// Inventory get no control account.
func NewCoupler(chart *coa.ChartOfAccounts) (*Coupler, error) {
	resolve := func(sub coa.SubClassification) (string, error) {
		accs := chart.BySubClassification(sub)
		if len(accs) == 0 {
			return "", core.New(core.KindDataDependency, "subledger coupler: chart missing required control account")
		}
		return accs[0].Number, nil
	}

	ar, err := resolve(coa.SubAccountsReceivable)
	if err != nil {
		return nil, err
	}
	ap, err := resolve(coa.SubAccountsPayable)
	if err != nil {
		return nil, err
	}

	return &Coupler{
		chart: chart,
		controlAccounts: map[Kind]string{
			AR: ar,
			AP: ap,
		},
	}, nil
}

// ControlAccount returns the single GL account number backing a Kind.
func (c *Coupler) ControlAccount(kind Kind) (string, bool) {
	acc, ok := c.controlAccounts[kind]
	return acc, ok
}

// IsControlAccount reports whether number is any subledger's control
// account — used as journal.Engine's BypassCheck.
func (c *Coupler) IsControlAccount(number string) bool {
	for _, acc := range c.controlAccounts {
		if acc == number {
			return true
		}
	}
	return false
}

// BypassCheck returns a journal.BypassCheck that rejects direct postings to
// any control account; install it on the journal engine used alongside
// this coupler.
func (c *Coupler) BypassCheck() func(string) error {
	return func(number string) error {
		if c.IsControlAccount(number) {
			return core.ErrBypassOfControl
		}
		return nil
	}
}

// Post is the only way a journal entry and its subledger records are
// created together; it verifies every control-account line in the entry
// has a matching subledger record before accepting the unit.
func (c *Coupler) Post(unit PostingUnit) error {
	controlLineTotal := map[Kind]decimal.Decimal{}
	for _, line := range unit.JournalEntry.Lines {
		for kind, acc := range c.controlAccounts {
			if line.Account == acc {
				controlLineTotal[kind] = controlLineTotal[kind].Add(line.Amount)
			}
		}
	}

	recordTotal := map[Kind]decimal.Decimal{}
	for _, r := range unit.SubledgerRecords {
		recordTotal[r.Kind] = recordTotal[r.Kind].Add(r.Balance)
	}

	for kind, total := range controlLineTotal {
		if !total.Equal(recordTotal[kind]) {
			return core.New(core.KindDataDependency, "subledger coupler: control account total does not match subledger records")
		}
	}

	c.records = append(c.records, unit.SubledgerRecords...)
	return nil
}

// Records returns every subledger record posted so far.
func (c *Coupler) Records() []Record { return c.records }

// OpenTotals sums the balance of every still-open record, grouped by Kind,
// giving the subledger side of the subledger↔GL reconciliation — the
// counterpart to GLControlBalance.
func (c *Coupler) OpenTotals() map[Kind]decimal.Decimal {
	totals := map[Kind]decimal.Decimal{}
	for _, r := range c.records {
		if r.Open {
			totals[r.Kind] = totals[r.Kind].Add(r.Balance)
		}
	}
	return totals
}

// Close marks every open record matching (kind, counterpartyRef) as closed
// and returns the balance that was outstanding, so a caller settling an
// open item (e.g. an AR receipt or AP payment) can post the GL side for
// exactly the amount that was actually open rather than a fresh, unrelated
// draw.
func (c *Coupler) Close(kind Kind, counterpartyRef string) decimal.Decimal {
	total := decimal.Zero
	for i := range c.records {
		r := &c.records[i]
		if r.Kind == kind && r.CounterpartyRef == counterpartyRef && r.Open {
			total = total.Add(r.Balance)
			r.Open = false
		}
	}
	return total
}

// GLControlBalance sums every line posted against kind's control account
// across entries (debit-positive for AR/asset-like kinds, credit-positive
// for AP/liability-like kinds), giving the GL-side total the
// subledger↔GL reconciliation check compares against the sum of open
// subledger records for the same Kind.
func (c *Coupler) GLControlBalance(kind Kind, entries []*journal.Entry) decimal.Decimal {
	account, ok := c.controlAccounts[kind]
	if !ok {
		return decimal.Zero
	}
	debitSide := kind == AR || kind == FixedAssets || kind == Inventory
	total := decimal.Zero
	for _, e := range entries {
		for _, l := range e.Lines {
			if l.Account != account {
				continue
			}
			isDebit := l.Side == journal.Debit
			if isDebit == debitSide {
				total = total.Add(l.Amount)
			} else {
				total = total.Sub(l.Amount)
			}
		}
	}
	return total
}
