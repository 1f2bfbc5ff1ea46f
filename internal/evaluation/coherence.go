package evaluation

import (
	"github.com/shopspring/decimal"

	"github.com/rawblock/datasynth-engine/internal/journal"
)

// BalanceSheetCheck verifies Assets == Liabilities + Equity + NetIncome
// across a set of ending account balances, ported from
// synth-eval/src/coherence/balance.rs. NetIncome folds in the period's
// Revenue/Expense movement, since those classifications don't carry a
// standing balance-sheet balance the way Asset/Liability/Equity do.
func BalanceSheetCheck(assets, liabilities, equity, netIncome decimal.Decimal, toleranceMinorUnits int64) CheckResult {
	diff := assets.Sub(liabilities.Add(equity).Add(netIncome)).Abs()
	tolerance := decimal.NewFromInt(toleranceMinorUnits).Div(decimal.NewFromInt(100))
	return CheckResult{
		Name:   "balance_sheet_equation",
		Score:  mustFloat(diff),
		Passed: diff.LessThanOrEqual(tolerance),
		Detail: "Assets == Liabilities + Equity + NetIncome within tolerance",
	}
}

// PeriodBalance is one (company, fiscal period) bucket's classification
// totals, the unit BalanceSheetCheckAcrossPeriods scores independently per
// spec §8's "∀ (company, period)" requirement.
type PeriodBalance struct {
	CompanyCode string
	Period      int
	Assets      decimal.Decimal
	Liabilities decimal.Decimal
	Equity      decimal.Decimal
	NetIncome   decimal.Decimal
}

// BalanceSheetCheckAcrossPeriods runs BalanceSheetCheck independently over
// every (company, period) bucket and reports the worst-case (largest)
// imbalance, so one bucket drowning in an otherwise-large corpus can't
// hide behind a single global accumulator.
func BalanceSheetCheckAcrossPeriods(buckets []PeriodBalance, toleranceMinorUnits int64) CheckResult {
	if len(buckets) == 0 {
		return CheckResult{Name: "balance_sheet_equation", Passed: false, Detail: "no (company, period) buckets"}
	}
	worst := decimal.Zero
	allPassed := true
	for _, b := range buckets {
		r := BalanceSheetCheck(b.Assets, b.Liabilities, b.Equity, b.NetIncome, toleranceMinorUnits)
		if !r.Passed {
			allPassed = false
		}
		diff := b.Assets.Sub(b.Liabilities.Add(b.Equity).Add(b.NetIncome)).Abs()
		if diff.GreaterThan(worst) {
			worst = diff
		}
	}
	return CheckResult{
		Name:   "balance_sheet_equation",
		Score:  mustFloat(worst),
		Passed: allPassed,
		Detail: "worst-case Assets == Liabilities + Equity + NetIncome imbalance across every (company, period) bucket",
	}
}

// SubledgerReconciliationCheck compares, per subledger Kind, the sum of
// open subledger record balances against the corresponding GL control
// account's net balance, reporting the fraction of kinds that reconcile
// within tolerance.
func SubledgerReconciliationCheck(subledgerTotals, glTotals map[string]decimal.Decimal, toleranceMinorUnits int64) CheckResult {
	if len(subledgerTotals) == 0 {
		return CheckResult{Name: "subledger_gl_reconciliation", Passed: false, Detail: "no subledger records"}
	}
	tolerance := decimal.NewFromInt(toleranceMinorUnits).Div(decimal.NewFromInt(100))
	matched := 0
	for kind, subTotal := range subledgerTotals {
		glTotal := glTotals[kind]
		if subTotal.Sub(glTotal).Abs().LessThanOrEqual(tolerance) {
			matched++
		}
	}
	fraction := float64(matched) / float64(len(subledgerTotals))
	return CheckResult{
		Name:   "subledger_gl_reconciliation",
		Score:  fraction,
		Passed: fraction == 1.0,
		Detail: "fraction of subledger control totals matching their GL control account balance",
	}
}

// DocumentChainCompletionCheck scores the fraction of document-flow cases
// that reached a terminal state. The three-way-match pass rate among those
// that required it (1 when none did) is not reported; it only has to reach
// minMatchRate for the check to pass. Ported from
// synth-eval/src/coherence/document_chain.rs.
func DocumentChainCompletionCheck(completed, total, threeWayPassed, threeWayTotal int, minCompletion, minMatchRate float64) CheckResult {
	if total == 0 {
		return CheckResult{Name: "document_chain_completion", Passed: false, Detail: "no cases"}
	}
	completionRate := float64(completed) / float64(total)
	matchRate := 1.0
	if threeWayTotal > 0 {
		matchRate = float64(threeWayPassed) / float64(threeWayTotal)
	}
	return CheckResult{
		Name:   "document_chain_completion",
		Score:  completionRate,
		Passed: completionRate >= minCompletion && matchRate >= minMatchRate,
		Detail: "document-flow completion rate and three-way-match pass rate",
	}
}

// IntercompanyMatchCheck scores the intercompany receivable/payable
// reconciliation as a whole: 1 when balanced is true, 0 otherwise. It does
// not score company pairs individually, and receivable and payable are not
// read.
func IntercompanyMatchCheck(balanced bool, receivable, payable decimal.Decimal, minFraction float64) CheckResult {
	fraction := 1.0
	if !balanced {
		fraction = 0.0
	}
	return CheckResult{
		Name:   "intercompany_match",
		Score:  fraction,
		Passed: fraction >= minFraction,
		Detail: "intercompany receivable/payable reconciliation",
	}
}

// ReferentialIntegrityCheck reports the fraction of journal lines whose
// account number resolves against the chart of accounts.
func ReferentialIntegrityCheck(entries []*journal.Entry, validAccounts map[string]bool, minFraction float64) CheckResult {
	total := 0
	valid := 0
	for _, e := range entries {
		for _, l := range e.Lines {
			total++
			if validAccounts[l.Account] {
				valid++
			}
		}
	}
	if total == 0 {
		return CheckResult{Name: "referential_integrity", Passed: false, Detail: "no lines"}
	}
	fraction := float64(valid) / float64(total)
	return CheckResult{
		Name:   "referential_integrity",
		Score:  fraction,
		Passed: fraction >= minFraction,
		Detail: "fraction of journal lines referencing a valid account",
	}
}

func mustFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
