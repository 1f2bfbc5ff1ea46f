// Package intercompany mirrors journal entries across company codes through
// each company's intercompany-clearing account, grounded on spec §4.5.
package intercompany

import (
	"github.com/shopspring/decimal"

	"github.com/rawblock/datasynth-engine/internal/coa"
	"github.com/rawblock/datasynth-engine/internal/core"
	"github.com/rawblock/datasynth-engine/internal/journal"
	"github.com/rawblock/datasynth-engine/internal/seed"
)

// Coupler mirrors entries to a partner company and reconciles IC balances
// across the whole population of entries.
type Coupler struct {
	chart           *coa.ChartOfAccounts
	clearingAccount string
	factory         *seed.Factory
	counter         uint64
}

func NewCoupler(chart *coa.ChartOfAccounts, factory *seed.Factory) (*Coupler, error) {
	accs := chart.BySubClassification(coa.SubIntercompanyClearing)
	if len(accs) == 0 {
		return nil, core.New(core.KindDataDependency, "intercompany coupler: chart missing IC clearing account")
	}
	return &Coupler{chart: chart, clearingAccount: accs[0].Number, factory: factory}, nil
}

// Mirror builds the counterparty-side entry for entry; its document number
// is entry's with an "-IC" suffix. entry itself is not modified.
func (c *Coupler) Mirror(entry *journal.Entry, partnerCompany string) (*journal.Entry, error) {
	stream := c.factory.Stream(seed.TagIntercompany, c.counter)
	c.counter++

	mirrored := &journal.Entry{
		ID:             stream.ID(),
		CompanyCode:    partnerCompany,
		FiscalYear:     entry.FiscalYear,
		DocumentNumber: entry.DocumentNumber + "-IC",
		PostingDate:    entry.PostingDate,
		ProcessTag:     entry.ProcessTag,
		SourceTag:      "intercompany_mirror",
	}

	seq := 0
	for _, line := range entry.Lines {
		// Flip the side: the partner books the opposite leg against its
		// own IC-clearing account rather than the original account.
		flipped := journal.Debit
		if line.Side == journal.Debit {
			flipped = journal.Credit
		}
		mirrored.Lines = append(mirrored.Lines, journal.Line{
			Sequence: seq,
			Account:  c.clearingAccount,
			Side:     flipped,
			Amount:   line.Amount,
		})
		seq++
	}
	return mirrored, nil
}

// Reconciliation summarizes whether IC receivable and payable balances
// match across the supplied entries.
type Reconciliation struct {
	TotalReceivable decimal.Decimal
	TotalPayable    decimal.Decimal
	Balanced        bool
	ToleranceUsed   decimal.Decimal
}

// ToleranceMinorUnits controls how far apart receivable/payable may drift
// per entry before Reconcile reports an imbalance.
const ToleranceMinorUnits = 1

// Reconcile sums IC clearing-account activity across entries and checks it
// nets within tolerance.
func (c *Coupler) Reconcile(entries []*journal.Entry) Reconciliation {
	receivable := decimal.Zero
	payable := decimal.Zero
	for _, e := range entries {
		for _, l := range e.Lines {
			if l.Account != c.clearingAccount {
				continue
			}
			if l.Side == journal.Debit {
				receivable = receivable.Add(l.Amount)
			} else {
				payable = payable.Add(l.Amount)
			}
		}
	}
	tolerance := decimal.NewFromInt(ToleranceMinorUnits).Mul(decimal.NewFromInt(int64(len(entries)))).Div(decimal.NewFromInt(100))
	diff := receivable.Sub(payable).Abs()
	return Reconciliation{
		TotalReceivable: receivable,
		TotalPayable:    payable,
		Balanced:        diff.LessThanOrEqual(tolerance),
		ToleranceUsed:   tolerance,
	}
}
