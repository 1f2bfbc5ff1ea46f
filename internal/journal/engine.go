package journal

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rawblock/datasynth-engine/internal/coa"
	"github.com/rawblock/datasynth-engine/internal/core"
	"github.com/rawblock/datasynth-engine/internal/seed"
)

// RoleLine is one side of a Template: a named role, the side it posts to,
// and the log-normal parameters its amount is drawn from.
type RoleLine struct {
	Role    string
	Side    Side
	Account coa.SubClassification
	Mean    float64
	StdDev  float64
}

// Template describes one transaction shape (e.g. "cash sale", "accrual").
// Roles on the shorter side absorb rounding so Σdebit == Σcredit exactly.
type Template struct {
	Name      string
	ProcessTag string
	SourceTag string
	Roles     []RoleLine
	PostHook  func(*Entry)
}

// BypassCheck is installed by the subledger coupler to reject direct
// postings to control accounts outside of Coupler.Post (spec §4.4,
// core.ErrBypassOfControl).
type BypassCheck func(accountNumber string) error

// Config controls the journal engine's output shape.
type Config struct {
	StartDate             time.Time
	EndDate               time.Time
	MonthEndClusterWeight float64 // probability mass added to last 3 days of month
	RoundNumberBias       float64 // probability an amount snaps to a round figure

	// GroupCurrency is the reporting currency every entry's
	// GroupCurrencyRate converts into. FXRates maps a company's
	// transaction currency to its rate against GroupCurrency; a currency
	// absent from the map (including GroupCurrency itself) rates at 1.
	GroupCurrency string
	FXRates       map[string]decimal.Decimal
}

// Engine draws balanced entries from a pool of templates against a chart
// and a weighted company selector.
type Engine struct {
	chart     *coa.ChartOfAccounts
	selector  *CompanySelector
	templates []Template
	cfg       Config
	factory   *seed.Factory
	counter   uint64
	docCounters map[string]int
	bypass    BypassCheck
}

func NewEngine(chart *coa.ChartOfAccounts, selector *CompanySelector, templates []Template, cfg Config, factory *seed.Factory) *Engine {
	return &Engine{
		chart:       chart,
		selector:    selector,
		templates:   templates,
		cfg:         cfg,
		factory:     factory,
		docCounters: make(map[string]int),
	}
}

// SetBypassCheck installs the subledger coupler's control-account guard.
func (e *Engine) SetBypassCheck(check BypassCheck) { e.bypass = check }

// Next draws one balanced entry from a uniformly chosen template.
func (e *Engine) Next() (*Entry, error) {
	if len(e.templates) == 0 {
		return nil, core.New(core.KindDataDependency, "journal engine: no templates configured")
	}
	stream := e.factory.Stream(seed.TagTransaction, e.counter)
	e.counter++
	rng := stream.Rand()
	tmpl := e.templates[rng.Intn(len(e.templates))]
	return e.build(tmpl, stream, rng)
}

// NextNamed draws one balanced entry from the named template, rather than
// a uniformly chosen one — used where the caller (e.g. a docflow
// transition) needs a specific document shape instead of any template.
func (e *Engine) NextNamed(name string) (*Entry, error) {
	for _, tmpl := range e.templates {
		if tmpl.Name == name {
			stream := e.factory.Stream(seed.TagTransaction, e.counter)
			e.counter++
			rng := stream.Rand()
			return e.build(tmpl, stream, rng)
		}
	}
	return nil, core.New(core.KindDataDependency, "journal engine: no template named "+name)
}

func (e *Engine) build(tmpl Template, stream *seed.Stream, rng *seed.StreamRand) (*Entry, error) {
	company := e.selector.Select(rng)

	postingDate, err := e.drawPostingDate(rng)
	if err != nil {
		return nil, err
	}

	currency := company.Currency
	entry := &Entry{
		ID:                stream.ID(),
		CompanyCode:       company.Code,
		FiscalYear:        postingDate.Year(),
		Period:            int(postingDate.Month()),
		PostingDate:       postingDate,
		DocumentDate:      postingDate,
		DocumentType:      tmpl.Name,
		ProcessTag:        tmpl.ProcessTag,
		SourceTag:         tmpl.SourceTag,
		DocumentCurrency:  currency,
		GroupCurrencyRate: e.RateToGroupCurrency(currency),
	}
	entry.DocumentNumber = e.NextDocumentNumber(company.Code, entry.FiscalYear)

	if err := e.populateLines(entry, tmpl, rng); err != nil {
		return nil, err
	}

	if tmpl.PostHook != nil {
		tmpl.PostHook(entry)
	}
	return entry, nil
}

// Batch draws n entries, stopping early with the first error encountered.
func (e *Engine) Batch(n int) ([]*Entry, error) {
	out := make([]*Entry, 0, n)
	for i := 0; i < n; i++ {
		entry, err := e.Next()
		if err != nil {
			return out, err
		}
		out = append(out, entry)
	}
	return out, nil
}

// RateToGroupCurrency returns the configured rate converting one unit of
// currency into Config.GroupCurrency. An unconfigured or home currency
// rates at 1.
func (e *Engine) RateToGroupCurrency(currency string) decimal.Decimal {
	if currency == "" || currency == e.cfg.GroupCurrency {
		return decimal.NewFromInt(1)
	}
	if rate, ok := e.cfg.FXRates[currency]; ok {
		return rate
	}
	return decimal.NewFromInt(1)
}

// NextDocumentNumber issues the next dense, per-(company,fiscal-year)
// document number. Exported so callers building entries outside Next/
// NextNamed (e.g. the subledger posting path) share the same numbering
// sequence and document uniqueness invariant.
func (e *Engine) NextDocumentNumber(companyCode string, fiscalYear int) string {
	key := fmt.Sprintf("%s-%d", companyCode, fiscalYear)
	e.docCounters[key]++
	return fmt.Sprintf("%s-%d-%06d", companyCode, fiscalYear, e.docCounters[key])
}

func (e *Engine) drawPostingDate(rng *seed.StreamRand) (time.Time, error) {
	if e.cfg.EndDate.Before(e.cfg.StartDate) {
		return time.Time{}, core.New(core.KindDataDependency, "journal engine: end date before start date")
	}
	totalDays := int(e.cfg.EndDate.Sub(e.cfg.StartDate).Hours() / 24)
	if totalDays <= 0 {
		return e.cfg.StartDate, nil
	}
	if rng.Bool(e.cfg.MonthEndClusterWeight) {
		// Bias toward the last 3 days of a uniformly chosen month in range.
		offset := rng.Intn(totalDays)
		candidate := e.cfg.StartDate.AddDate(0, 0, offset)
		lastDay := time.Date(candidate.Year(), candidate.Month()+1, 1, 0, 0, 0, 0, candidate.Location()).AddDate(0, 0, -1)
		dayOfMonth := lastDay.AddDate(0, 0, -rng.Intn(3))
		if dayOfMonth.Before(e.cfg.StartDate) || dayOfMonth.After(e.cfg.EndDate) {
			return candidate, nil
		}
		return dayOfMonth, nil
	}
	offset := rng.Intn(totalDays + 1)
	return e.cfg.StartDate.AddDate(0, 0, offset), nil
}

func (e *Engine) populateLines(entry *Entry, tmpl Template, rng *seed.StreamRand) error {
	debitIdx, creditIdx := -1, -1
	for i, role := range tmpl.Roles {
		if role.Side == Debit {
			debitIdx = i
		} else {
			creditIdx = i
		}
	}
	if debitIdx == -1 || creditIdx == -1 {
		return core.New(core.KindDataDependency, "journal engine: template missing a debit or credit role")
	}

	debitTotal := decimal.Zero
	creditTotal := decimal.Zero
	seq := 0
	var lastDebitLine, lastCreditLine *int

	for i, role := range tmpl.Roles {
		accounts := e.chart.BySubClassification(role.Account)
		if len(accounts) == 0 {
			return core.New(core.KindDataDependency, fmt.Sprintf("journal engine: no accounts of role %v", role.Account))
		}
		account := accounts[rng.Intn(len(accounts))]
		if e.bypass != nil {
			if err := e.bypass(account.Number); err != nil {
				return err
			}
		}

		amount := e.drawAmount(role, rng)
		line := Line{
			Sequence: seq,
			Account:  account.Number,
			Side:     role.Side,
			Amount:   amount,
		}
		entry.Lines = append(entry.Lines, line)
		idx := seq
		if role.Side == Debit {
			debitTotal = debitTotal.Add(amount)
			lastDebitLine = &idx
		} else {
			creditTotal = creditTotal.Add(amount)
			lastCreditLine = &idx
		}
		seq++
		_ = i
	}

	// The final line on the shorter side absorbs the rounding remainder so
	// the entry balances exactly rather than probabilistically.
	diff := debitTotal.Sub(creditTotal)
	if !diff.IsZero() {
		if diff.IsPositive() && lastCreditLine != nil {
			entry.Lines[*lastCreditLine].Amount = entry.Lines[*lastCreditLine].Amount.Add(diff)
		} else if diff.IsNegative() && lastDebitLine != nil {
			entry.Lines[*lastDebitLine].Amount = entry.Lines[*lastDebitLine].Amount.Sub(diff)
		}
	}
	return nil
}

func (e *Engine) drawAmount(role RoleLine, rng *seed.StreamRand) decimal.Decimal {
	raw := rng.LogNormal(role.Mean, role.StdDev)
	if rng.Bool(e.cfg.RoundNumberBias) {
		raw = roundToMagnitude(raw)
	}
	return decimal.NewFromFloat(raw).Round(2)
}

func roundToMagnitude(v float64) float64 {
	if v <= 0 {
		return v
	}
	magnitude := 1.0
	for magnitude*10 < v {
		magnitude *= 10
	}
	return float64(int64(v/magnitude+0.5)) * magnitude
}
