// Package anomaly overlays labeled fraud variants onto already-balanced
// journal entries without breaking the debit/credit invariant, grounded on
// spec §4.7 and the teacher's role-weighted severity-mapping convention
// (inverted here from detection to injection).
package anomaly

import (
	"github.com/shopspring/decimal"

	"github.com/rawblock/datasynth-engine/internal/journal"
	"github.com/rawblock/datasynth-engine/internal/seed"
)

// FraudType is the closed set of injectable fraud variants.
type FraudType int

const (
	AccountMisclassification FraudType = iota
	AmountInflation
	TimingShift
	UnauthorizedApprover
)

func (f FraudType) String() string {
	return [...]string{"AccountMisclassification", "AmountInflation", "TimingShift", "UnauthorizedApprover"}[f]
}

// ControlFailureTag names a segregation-of-duties violation the injected
// fraud exploits, ported from the original's models::sod conflicting-duty
// pairs (e.g. "create vendor" + "approve payment").
type ControlFailureTag string

const (
	SoDVendorCreateApprovePayment ControlFailureTag = "vendor_create_approve_payment"
	SoDInvoiceCreateApprove       ControlFailureTag = "invoice_create_approve"
	SoDJournalPostApprove         ControlFailureTag = "journal_post_approve"
)

// Flip records one fraud mutation applied to an entry.
type Flip struct {
	EntryID        string
	FraudType      FraudType
	ControlFailures []ControlFailureTag
}

// Config controls the injector's volume and severity.
type Config struct {
	FraudFraction float64 // fraction of entries mutated
	AmountInflationFactorMax float64
	TimingShiftDaysMax       int
}

// Result summarizes one injection run.
type Result struct {
	Flips []Flip
}

// Injector mutates a subset of entries in place, always preserving
// IsBalanced(): no mutation changes one side's amounts without the other
// (account and timing changes leave amounts alone, inflation scales every
// line by the same factor).
type Injector struct {
	factory *seed.Factory
	counter uint64
}

func NewInjector(factory *seed.Factory) *Injector {
	return &Injector{factory: factory}
}

// Apply walks entries and, with probability cfg.FraudFraction per entry,
// mutates it and records the flip.
func (inj *Injector) Apply(entries []*journal.Entry, cfg Config) Result {
	var result Result
	for _, e := range entries {
		stream := inj.factory.Stream(seed.TagAnomaly, inj.counter)
		inj.counter++
		rng := stream.Rand()
		if !rng.Bool(cfg.FraudFraction) {
			continue
		}

		fraudType := FraudType(rng.Intn(4))
		flip := Flip{EntryID: e.DocumentNumber, FraudType: fraudType}

		switch fraudType {
		case AccountMisclassification:
			inj.misclassifyAccounts(e, rng)
			flip.ControlFailures = append(flip.ControlFailures, SoDJournalPostApprove)
		case AmountInflation:
			inj.inflateAmounts(e, rng, cfg.AmountInflationFactorMax)
			flip.ControlFailures = append(flip.ControlFailures, SoDInvoiceCreateApprove)
		case TimingShift:
			inj.shiftTiming(e, rng, cfg.TimingShiftDaysMax)
		case UnauthorizedApprover:
			e.Approved = true
			e.ApproverID = e.CreatorID
			flip.ControlFailures = append(flip.ControlFailures, SoDVendorCreateApprovePayment)
		}

		result.Flips = append(result.Flips, flip)
	}
	return result
}

// misclassifyAccounts changes the account number on one randomly chosen
// line to a plausible-but-wrong account, leaving amounts (and therefore
// the balance invariant) untouched.
func (inj *Injector) misclassifyAccounts(e *journal.Entry, rng *seed.StreamRand) {
	if len(e.Lines) == 0 {
		return
	}
	idx := rng.Intn(len(e.Lines))
	// A crude but deterministic "nearby account" swap: bump the trailing
	// digit, which in this chart's numbering still lands within the same
	// classification block.
	acc := e.Lines[idx].Account
	if len(acc) == 0 {
		return
	}
	last := acc[len(acc)-1]
	next := last + 1
	if next > '9' {
		next = '0'
	}
	e.Lines[idx].Account = acc[:len(acc)-1] + string(next)
}

// inflateAmounts scales both sides of the entry by the same factor so it
// stays balanced while the absolute amounts no longer match the template's
// expected distribution — detectable by the evaluation core's statistical
// checks, not by a balance-sheet check.
func (inj *Injector) inflateAmounts(e *journal.Entry, rng *seed.StreamRand, maxFactor float64) {
	if maxFactor <= 0 {
		maxFactor = 1.5
	}
	factor := 1 + rng.Float64()*(maxFactor-1)
	for i := range e.Lines {
		e.Lines[i].Amount = e.Lines[i].Amount.Mul(decimal.NewFromFloat(factor))
	}
}

func (inj *Injector) shiftTiming(e *journal.Entry, rng *seed.StreamRand, maxDays int) {
	if maxDays <= 0 {
		maxDays = 10
	}
	days := rng.Intn(maxDays*2+1) - maxDays
	e.PostingDate = e.PostingDate.AddDate(0, 0, days)
}
