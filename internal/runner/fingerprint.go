package runner

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/rawblock/datasynth-engine/internal/banking"
	"github.com/rawblock/datasynth-engine/internal/coa"
	"github.com/rawblock/datasynth-engine/internal/docflow"
	"github.com/rawblock/datasynth-engine/internal/evaluation"
	"github.com/rawblock/datasynth-engine/internal/fingerprint"
	"github.com/rawblock/datasynth-engine/internal/fingerprint/privacy"
	"github.com/rawblock/datasynth-engine/internal/journal"
	"github.com/rawblock/datasynth-engine/internal/seed"
)

// daysInMonth is the fixed (non-leap) reference profile TemporalCorrelationCheck
// compares observed monthly posting volume against, under the assumption that
// a dataset with no intentional seasonality should still track the number of
// calendar days available to post into each month.
var daysInMonth = [12]float64{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// fingerprintAndEvaluate extracts a statistical fingerprint of the
// generated journal entries' lines, signs it, then scores the same
// output against the evaluation battery.
func (m *Manager) fingerprintAndEvaluate(p *pipeline) evaluation.Report {
	fpStream := p.factory.Stream(seed.TagFingerprint, 0)

	amountStats := fingerprint.NewNumericStats(2000, fpStream.Rand().Float64)
	accountCategorical := fingerprint.NewCategoricalStats(500)
	validAccounts := make(map[string]bool, len(p.chart.Accounts))
	for i := range p.chart.Accounts {
		validAccounts[p.chart.Accounts[i].Number] = true
	}

	for _, e := range p.entries {
		for _, l := range e.Lines {
			f, _ := l.Amount.Float64()
			amountStats.Observe(f)
			accountCategorical.Observe(l.Account)
		}
	}

	manifest := fingerprint.Manifest{
		Format:        fingerprint.Format,
		Version:       fingerprint.SchemaVersion,
		SourceDataset: "generation-core-run",
		Numeric: map[string]fingerprint.NumericSummary{
			"journal_line_amount": fingerprint.SummarizeNumeric(amountStats),
		},
		Categorical: map[string]fingerprint.CategoricalSummary{
			"journal_line_account": fingerprint.SummarizeCategorical(accountCategorical),
		},
	}

	budget := privacy.NewEngine(10.0)
	manifest.Privacy = fingerprint.PrivacyAuditSummary{EpsilonLimit: 10.0}
	if _, err := budget.Spend("numeric_summary_release", "journal_line_amount", 0.5); err == nil {
		manifest.Privacy.EpsilonSpent = budget.Spent()
	}

	// Signature failures don't block evaluation; the manifest ships
	// unsigned in that case rather than aborting the run.
	_ = manifest.Sign("run-key-1", []byte(fpStream.ID().String()))

	return m.evaluate(p, validAccounts)
}

type periodBucketKey struct {
	company string
	period  int
}

func (m *Manager) evaluate(p *pipeline, validAccounts map[string]bool) evaluation.Report {
	categorized := make(map[evaluation.Category][]evaluation.CheckResult)

	amountHistogram := [9]int64{}
	buckets := map[periodBucketKey]*evaluation.PeriodBalance{}
	bucketFor := func(company string, period int) *evaluation.PeriodBalance {
		key := periodBucketKey{company, period}
		b, ok := buckets[key]
		if !ok {
			b = &evaluation.PeriodBalance{CompanyCode: company, Period: period}
			buckets[key] = b
		}
		return b
	}

	for _, e := range p.entries {
		for _, l := range e.Lines {
			acct, ok := p.chart.ByNumber(l.Account)
			if !ok {
				continue
			}
			b := bucketFor(e.CompanyCode, e.Period)
			// signed is +amount for a debit, -amount for a credit; Assets
			// moves with signed directly, while Liabilities/Equity/NetIncome
			// move opposite it — the standard double-entry identity
			// Assets == Liabilities + Equity + NetIncome holds line by line.
			signed := l.Amount
			if l.Side == journal.Credit {
				signed = signed.Neg()
			}
			switch acct.Classification {
			case coa.Asset:
				b.Assets = b.Assets.Add(signed)
			case coa.Liability:
				b.Liabilities = b.Liabilities.Sub(signed)
			case coa.Equity:
				b.Equity = b.Equity.Sub(signed)
			case coa.Revenue, coa.Expense:
				b.NetIncome = b.NetIncome.Sub(signed)
			}
		}
	}
	periodBalances := make([]evaluation.PeriodBalance, 0, len(buckets))
	for _, b := range buckets {
		periodBalances = append(periodBalances, *b)
	}
	tolerance := p.balanceToleranceMinorUnits
	if tolerance == 0 {
		tolerance = 100
	}
	categorized[evaluation.CategoryCoherence] = append(categorized[evaluation.CategoryCoherence],
		evaluation.BalanceSheetCheckAcrossPeriods(periodBalances, tolerance),
		evaluation.ReferentialIntegrityCheck(p.entries, validAccounts, 0.999),
	)

	if p.icCoupler != nil {
		rec := p.icCoupler.Reconcile(p.entries)
		categorized[evaluation.CategoryCoherence] = append(categorized[evaluation.CategoryCoherence],
			evaluation.IntercompanyMatchCheck(rec.Balanced, rec.TotalReceivable, rec.TotalPayable, 1.0))
	}

	if p.coupler != nil {
		openTotals := p.coupler.OpenTotals()
		subledgerTotals := make(map[string]decimal.Decimal, len(openTotals))
		glTotals := make(map[string]decimal.Decimal, len(openTotals))
		for kind, total := range openTotals {
			subledgerTotals[kind.String()] = total
			glTotals[kind.String()] = p.coupler.GLControlBalance(kind, p.entries)
		}
		categorized[evaluation.CategoryCoherence] = append(categorized[evaluation.CategoryCoherence],
			evaluation.SubledgerReconciliationCheck(subledgerTotals, glTotals, tolerance))
	}

	var docCompleted, docTotal, threeWayPassed, threeWayTotal int
	if p.docEngine != nil {
		for _, c := range p.docEngine.Cases() {
			docTotal++
			if !c.Errored && (c.State == docflow.PaymentCleared || c.State == docflow.ReceiptPosted) {
				docCompleted++
			}
			if c.PORef != "" {
				threeWayTotal++
				if c.ThreeWayMatchPassed {
					threeWayPassed++
				}
			}
		}
		categorized[evaluation.CategoryCoherence] = append(categorized[evaluation.CategoryCoherence],
			evaluation.DocumentChainCompletionCheck(docCompleted, docTotal, threeWayPassed, threeWayTotal, 0.8, 0.9))
	}

	keys := make([]string, 0, len(p.entries))
	nearDupFingerprints := make([]string, 0, len(p.entries))
	lineCounts := map[int]int{}
	var positiveAmounts, logAmounts []float64
	var accountValues []string
	for _, e := range p.entries {
		keys = append(keys, e.ID.String())
		lineCounts[len(e.Lines)]++
		total := decimal.Zero
		for _, l := range e.Lines {
			if d := firstDigitOf(l.Amount); d >= 1 && d <= 9 {
				amountHistogram[d-1]++
			}
			accountValues = append(accountValues, l.Account)
			if f, _ := l.Amount.Float64(); f > 0 {
				positiveAmounts = append(positiveAmounts, f)
				logAmounts = append(logAmounts, math.Log(f))
			}
			if l.Side == journal.Debit {
				total = total.Add(l.Amount)
			}
		}
		nearDupFingerprints = append(nearDupFingerprints,
			e.CompanyCode+"|"+e.PostingDate.Format("2006-01-02")+"|"+total.StringFixed(0))
	}
	categorized[evaluation.CategoryQuality] = append(categorized[evaluation.CategoryQuality],
		evaluation.UniquenessCheck(keys, 0.999),
		evaluation.NearDuplicateCheck(nearDupFingerprints, 0.3),
	)

	nonNullDocNumbers := 0
	for _, e := range p.entries {
		if e.DocumentNumber != "" {
			nonNullDocNumbers++
		}
	}
	categorized[evaluation.CategoryQuality] = append(categorized[evaluation.CategoryQuality],
		evaluation.CompletenessCheck("document_number", nonNullDocNumbers, len(p.entries), 0.999),
		evaluation.FormatConformanceCheck("account_number", accountValues, isWellFormedAccountNumber, 0.999),
	)

	categorized[evaluation.CategoryStatistical] = append(categorized[evaluation.CategoryStatistical],
		evaluation.BenfordCheck(amountHistogram, 15.5, 0.02),
	)
	if len(logAmounts) > 0 {
		mu, sigma := stat.MeanStdDev(logAmounts, nil)
		fitted := distuv.LogNormal{Mu: mu, Sigma: sigma}
		sort.Float64s(positiveAmounts)
		categorized[evaluation.CategoryStatistical] = append(categorized[evaluation.CategoryStatistical],
			evaluation.KolmogorovSmirnovCheck(positiveAmounts, fitted.CDF, 0.1))
	}
	if len(p.entries) > 0 {
		observedLineCounts := make(map[int]float64, len(lineCounts))
		for count, n := range lineCounts {
			observedLineCounts[count] = float64(n) / float64(len(p.entries))
		}
		expectedLineCounts := map[int]float64{2: 0.85, 3: 0.1, 4: 0.05}
		categorized[evaluation.CategoryStatistical] = append(categorized[evaluation.CategoryStatistical],
			evaluation.LineItemCountChiSquareCheck(observedLineCounts, expectedLineCounts, len(p.entries), 500),
		)
	}
	if monthlyVolumes, expectedProfile := monthlySeasonality(p.entries); len(monthlyVolumes) >= 2 {
		categorized[evaluation.CategoryStatistical] = append(categorized[evaluation.CategoryStatistical],
			evaluation.TemporalCorrelationCheck(monthlyVolumes, expectedProfile, -0.5),
		)
	}

	anomalousCount := len(p.anomalyRes.Flips)
	categorized[evaluation.CategoryMLReadiness] = append(categorized[evaluation.CategoryMLReadiness],
		evaluation.AnomalyRateCheck(anomalousCount, len(p.entries), 0.001, 0.2),
		evaluation.LabelCoverageCheck(anomalousCount, anomalousCount, 1.0),
	)
	if trainCount, testCount := hashSplit(p.entries); trainCount+testCount > 0 {
		categorized[evaluation.CategoryMLReadiness] = append(categorized[evaluation.CategoryMLReadiness],
			evaluation.TrainTestSplitCheck(trainCount, testCount, 0.8, 0.1))
	}
	if nodeCount, edges := counterpartyGraph(p.transactions); nodeCount > 0 {
		categorized[evaluation.CategoryMLReadiness] = append(categorized[evaluation.CategoryMLReadiness],
			evaluation.GraphConnectivityCheck(nodeCount, edges, 0.5))
	}

	return evaluation.Aggregate(categorized)
}

// isWellFormedAccountNumber is the format validator FormatConformanceCheck
// uses for journal line account numbers: an all-digit string at least as
// long as the shortest classification-prefix + block number chart.Generate
// can produce.
func isWellFormedAccountNumber(s string) bool {
	if len(s) < 4 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// monthlySeasonality buckets entries by fiscal period and pairs the
// observed volume per present month against that month's day count, giving
// TemporalCorrelationCheck a non-degenerate (non-constant) reference profile
// for a generator with no intentional calendar-month seasonality.
func monthlySeasonality(entries []*journal.Entry) ([]float64, []float64) {
	counts := map[int]int{}
	for _, e := range entries {
		counts[e.Period]++
	}
	months := make([]int, 0, len(counts))
	for month := range counts {
		months = append(months, month)
	}
	sort.Ints(months)
	volumes := make([]float64, len(months))
	profile := make([]float64, len(months))
	for i, month := range months {
		volumes[i] = float64(counts[month])
		idx := month - 1
		if idx < 0 || idx >= len(daysInMonth) {
			idx = 0
		}
		profile[i] = daysInMonth[idx]
	}
	return volumes, profile
}

// hashSplit deterministically assigns each entry to a train/test bucket from
// its own id, the way a downstream ML pipeline's held-out split would.
func hashSplit(entries []*journal.Entry) (trainCount, testCount int) {
	for _, e := range entries {
		if len(e.ID) == 0 {
			continue
		}
		if int(e.ID[0])%5 == 0 {
			testCount++
		} else {
			trainCount++
		}
	}
	return trainCount, testCount
}

// counterpartyGraph builds a bipartite account/counterparty graph over the
// banking transaction corpus for GraphConnectivityCheck.
func counterpartyGraph(transactions []banking.Transaction) (int, [][2]int) {
	nodeIndex := map[string]int{}
	nodeID := func(key string) int {
		idx, ok := nodeIndex[key]
		if !ok {
			idx = len(nodeIndex)
			nodeIndex[key] = idx
		}
		return idx
	}
	var edges [][2]int
	for _, t := range transactions {
		if t.CounterpartyRef == "" {
			continue
		}
		a := nodeID("acct:" + t.AccountID.String())
		b := nodeID("cpty:" + t.CounterpartyRef)
		edges = append(edges, [2]int{a, b})
	}
	return len(nodeIndex), edges
}

func firstDigitOf(d decimal.Decimal) int {
	f, _ := d.Float64()
	if f < 0 {
		f = -f
	}
	for f >= 10 {
		f /= 10
	}
	for f > 0 && f < 1 {
		f *= 10
	}
	return int(f)
}
