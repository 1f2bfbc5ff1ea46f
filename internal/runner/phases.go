package runner

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rawblock/datasynth-engine/internal/anomaly"
	"github.com/rawblock/datasynth-engine/internal/banking"
	"github.com/rawblock/datasynth-engine/internal/coa"
	"github.com/rawblock/datasynth-engine/internal/config"
	"github.com/rawblock/datasynth-engine/internal/core"
	"github.com/rawblock/datasynth-engine/internal/docflow"
	"github.com/rawblock/datasynth-engine/internal/intercompany"
	"github.com/rawblock/datasynth-engine/internal/journal"
	"github.com/rawblock/datasynth-engine/internal/masterdata"
	"github.com/rawblock/datasynth-engine/internal/orchestrator"
	"github.com/rawblock/datasynth-engine/internal/seed"
	"github.com/rawblock/datasynth-engine/internal/sink"
	"github.com/rawblock/datasynth-engine/internal/subledger"
)

func (m *Manager) phaseMasterData(ctl *orchestrator.Control, p *pipeline, cfg config.Config) error {
	if err := ctl.CheckPoint(); err != nil {
		return err
	}
	companies := make([]masterdata.Company, 0, len(cfg.Companies))
	currencies := make([]string, 0, len(cfg.Companies))
	for _, c := range cfg.Companies {
		name := c.Name
		if name == "" {
			name = c.Code
		}
		companies = append(companies, masterdata.Company{Code: c.Code, Name: name, Currency: c.Currency, VolumeWeight: c.VolumeWeight})
		currencies = append(currencies, c.Currency)
	}
	p.pool = masterdata.Generate(masterdata.Config{
		CompanyCount:      len(companies),
		VendorCount:       200,
		CustomerCount:     200,
		MaterialCount:     100,
		StartDate:         cfg.StartDate,
		CompanyCurrencies: currencies,
		ChurnFraction:     0.1,
	}, p.factory)
	// masterdata.Generate assigns its own default-currency companies; the
	// run's configured identity/currency/weight takes precedence.
	p.pool.Companies = companies
	for i := range p.pool.Companies {
		if p.pool.Companies[i].Currency == "" {
			p.pool.Companies[i].Currency = "USD"
		}
	}
	return ctl.CheckPoint()
}

func (m *Manager) phaseCoA(ctl *orchestrator.Control, p *pipeline, cfg config.Config) error {
	if err := ctl.CheckPoint(); err != nil {
		return err
	}
	stream := p.factory.Stream(seed.TagCoA, 0)
	industry := cfg.Global.Industry
	if industry == "" {
		industry = "general"
	}
	chart, err := coa.Generate(industry, chartComplexity(cfg.ChartOfAccounts.Complexity), stream)
	if err != nil {
		return err
	}
	p.chart = chart

	p.balanceToleranceMinorUnits = cfg.Balance.ToleranceMinorUnits
	if p.balanceToleranceMinorUnits == 0 {
		p.balanceToleranceMinorUnits = 100
	}

	selector, err := journal.NewCompanySelector(p.pool.Companies)
	if err != nil {
		return err
	}

	coupler, err := subledger.NewCoupler(chart)
	if err != nil {
		return err
	}
	p.coupler = coupler

	monthEndWeight := cfg.Transactions.MonthEndClusterWeight
	if monthEndWeight == 0 {
		monthEndWeight = 0.3
	}
	roundBias := cfg.Transactions.RoundNumberBias
	if roundBias == 0 {
		roundBias = 0.05
	}
	groupCurrency := cfg.Global.GroupCurrency
	if groupCurrency == "" {
		groupCurrency = "USD"
	}

	templates := standardTemplates()
	je := journal.NewEngine(chart, selector, templates, journal.Config{
		StartDate:             cfg.StartDate,
		EndDate:               cfg.EndDate,
		MonthEndClusterWeight: monthEndWeight,
		RoundNumberBias:       roundBias,
		GroupCurrency:         groupCurrency,
		FXRates:               buildFXRates(cfg.Companies, groupCurrency, p.factory),
	}, p.factory)
	je.SetBypassCheck(coupler.BypassCheck())
	p.je = je

	icCoupler, err := intercompany.NewCoupler(chart, p.factory)
	if err != nil {
		return err
	}
	p.icCoupler = icCoupler

	return ctl.CheckPoint()
}

// chartComplexity maps the configured tier name to coa.Complexity, falling
// back to Medium for an empty or unrecognized value.
func chartComplexity(s string) coa.Complexity {
	switch s {
	case "small":
		return coa.Small
	case "large":
		return coa.Large
	default:
		return coa.Medium
	}
}

// buildFXRates draws one deterministic rate-to-group-currency per distinct
// non-group company currency, so multi-currency companies carry a real
// GroupCurrencyRate instead of the implicit 1:1 the journal engine falls
// back to for an unconfigured currency.
func buildFXRates(companies []config.CompanyConfig, groupCurrency string, factory *seed.Factory) map[string]decimal.Decimal {
	rates := map[string]decimal.Decimal{}
	rng := factory.Stream(seed.TagCoA, 1).Rand()
	for _, co := range companies {
		currency := co.Currency
		if currency == "" {
			currency = "USD"
		}
		if currency == groupCurrency {
			continue
		}
		if _, ok := rates[currency]; ok {
			continue
		}
		rates[currency] = decimal.NewFromFloat(0.5 + rng.Float64()).Round(4)
	}
	return rates
}

// standardTemplates is the baseline set of journal-entry shapes the journal
// engine draws from for standalone (non-document-flow) activity: a cash
// sale, an accrual-basis vendor invoice, and a payroll accrual, each
// balanced by construction per spec §4.2. The P2P/O2C control-account
// postings (ar_invoice, ar_receipt, ap_payment) are built directly in
// phaseDocumentFlows instead of as templates here, since every one of them
// carries a control-account line and the journal engine's bypass check
// rejects any templated Role that resolves to one.
func standardTemplates() []journal.Template {
	return []journal.Template{
		{
			Name:       "cash_sale",
			ProcessTag: "O2C",
			SourceTag:  "journal",
			Roles: []journal.RoleLine{
				{Role: "cash", Side: journal.Debit, Account: coa.SubCash, Mean: 8.5, StdDev: 1.1},
				{Role: "revenue", Side: journal.Credit, Account: coa.SubSalesRevenue, Mean: 8.5, StdDev: 1.1},
			},
		},
		{
			// The payable side posts to SubOtherLiability rather than the AP
			// control account: SubAccountsPayable is reserved for the
			// subledger coupler's Post path, and the journal engine's
			// bypass check rejects any direct line against it.
			Name:       "vendor_invoice",
			ProcessTag: "P2P",
			SourceTag:  "journal",
			Roles: []journal.RoleLine{
				{Role: "expense", Side: journal.Debit, Account: coa.SubOperatingExpense, Mean: 7.8, StdDev: 1.3},
				{Role: "payable", Side: journal.Credit, Account: coa.SubOtherLiability, Mean: 7.8, StdDev: 1.3},
			},
		},
		{
			Name:       "payroll_accrual",
			ProcessTag: "HR",
			SourceTag:  "journal",
			Roles: []journal.RoleLine{
				{Role: "expense", Side: journal.Debit, Account: coa.SubOperatingExpense, Mean: 9.0, StdDev: 0.6},
				{Role: "accrual", Side: journal.Credit, Account: coa.SubOtherLiability, Mean: 9.0, StdDev: 0.6},
			},
		},
	}
}

// fiscalCloseLagMonths is how many months of slack a period gets before it's
// considered closed relative to the latest period any case's transition has
// already reached.
const fiscalCloseLagMonths = 2

// fiscalPeriodChecker models a books-close cadence: once some case's
// transition has advanced the fiscal calendar to a given month, any other
// (slower-moving) case whose own transition target still lands more than
// fiscalCloseLagMonths behind that high-water mark is posting into a period
// that's already closed, and gets rescheduled into the current one — the
// real behavior spec §4.3's "reschedule to next open period" describes,
// exercised by document flows racing at different speeds rather than by a
// fixed calendar cutoff.
func fiscalPeriodChecker() docflow.PeriodChecker {
	var latestPeriod time.Time
	return func(t time.Time) (bool, time.Time) {
		period := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
		if period.After(latestPeriod) {
			latestPeriod = period
			return true, t
		}
		if monthsBetween(period, latestPeriod) > fiscalCloseLagMonths {
			return false, latestPeriod
		}
		return true, t
	}
}

func monthsBetween(earlier, later time.Time) int {
	return (later.Year()-earlier.Year())*12 + int(later.Month()) - int(earlier.Month())
}

// documentFlowCaseCount returns the configured number of P2P/O2C cases to
// start, falling back to a fixed baseline when unconfigured.
func documentFlowCaseCount(cfg config.Config) int {
	if cfg.Transactions.DocumentFlowCaseCount > 0 {
		return cfg.Transactions.DocumentFlowCaseCount
	}
	return 250
}

func (m *Manager) phaseDocumentFlows(ctl *orchestrator.Control, p *pipeline, cfg config.Config) error {
	p.docEngine = docflow.NewEngine(fiscalPeriodChecker())

	caseCount := documentFlowCaseCount(cfg)
	p2p := docflow.NewP2PMachine()
	o2c := docflow.NewO2CMachine()
	p2pWeight := cfg.DocumentFlows.P2PWeight
	if p2pWeight <= 0 {
		p2pWeight = 0.5
	}
	for i := 0; i < caseCount; i++ {
		if err := ctl.CheckPoint(); err != nil {
			return err
		}
		machine := o2c
		if float64(i%100) < p2pWeight*100 {
			machine = p2p
		}
		company := p.pool.Companies[i%len(p.pool.Companies)]
		p.docEngine.StartCase(uuid.New(), company.Code, machine, cfg.StartDate.AddDate(0, 0, i%180))
	}

	dispatch := func(c *docflow.Case, _, target time.Time, actions []docflow.Action) {
		var jeTemplateID, subledgerKind string
		hasJE, hasSubledger := false, false
		for _, a := range actions {
			switch a.Kind {
			case docflow.ActionEmitJE:
				hasJE = true
				jeTemplateID = a.TemplateID
			case docflow.ActionEmitSubledger:
				hasSubledger = true
				subledgerKind = a.SubledgerKind
			}
		}
		switch {
		case hasJE && hasSubledger:
			// §4.4: the JE and the subledger open item it pairs with must be
			// produced atomically, through the same posting unit, for the
			// same amount.
			postOpenItem(p, c, target, jeTemplateID, subledgerKind)
		case hasSubledger:
			postOpenItem(p, c, target, subledgerKind+"_open_item", subledgerKind)
		case hasJE:
			postSettlement(p, c, target, jeTemplateID)
		}
	}
	p.docEngine.RunUntil(cfg.EndDate, dispatch)

	return ctl.CheckPoint()
}

// postOpenItem builds the control-account side of an AR/AP open item as a
// real two-line balanced entry and posts both it and the matching subledger
// record together through the coupler's atomic Post path, so the GL side of
// every open item actually reaches p.entries (and therefore the output
// corpus and the subledger↔GL reconciliation check) instead of being
// fabricated and discarded. Kinds with no resolved control account
// (Inventory, FixedAssets) are a deliberate no-op.
func postOpenItem(p *pipeline, c *docflow.Case, target time.Time, docType, subledgerKindName string) {
	if p.coupler == nil {
		return
	}
	kind, ok := subledgerKindFromName(subledgerKindName)
	if !ok {
		return
	}
	controlAccount, ok := p.coupler.ControlAccount(kind)
	if !ok {
		return
	}
	offsetAccount, ok := offsetAccountFor(p.chart, kind)
	if !ok {
		return
	}
	counterpartyRef, ok := counterpartyRefFor(p, kind, c, target)
	if !ok {
		return
	}

	stream := p.factory.Stream(seed.TagTransaction, 10_000_000+p.subledgerSeq)
	p.subledgerSeq++
	amount := decimal.NewFromFloat(stream.Rand().LogNormal(7.5, 1.0)).Round(2)

	controlSide, offsetSide := journal.Debit, journal.Credit
	if kind == subledger.AP {
		controlSide, offsetSide = journal.Credit, journal.Debit
	}

	entry := p.newManualEntry(c.CompanyCode, docType, c.Machine.Name, target)
	entry.Lines = []journal.Line{
		{Sequence: 0, Account: controlAccount, Side: controlSide, Amount: amount, CounterpartyRef: counterpartyRef},
		{Sequence: 1, Account: offsetAccount, Side: offsetSide, Amount: amount},
	}

	unit := subledger.PostingUnit{
		JournalEntry: entry,
		SubledgerRecords: []subledger.Record{
			{ID: uuid.New(), Kind: kind, CounterpartyRef: counterpartyRef, Balance: amount, JournalEntryID: entry.ID, Open: true},
		},
	}
	if err := p.coupler.Post(unit); err != nil {
		return
	}
	c.Status[subledgerKindName+"_counterparty"] = counterpartyRef
	p.entries = append(p.entries, entry)
}

// postSubledgerOpenItem posts a, the bare ActionEmitSubledger case (no
// paired JE on this transition), reusing postOpenItem's atomic posting path.
func postSubledgerOpenItem(p *pipeline, c *docflow.Case, target time.Time, a docflow.Action) {
	if a.Kind != docflow.ActionEmitSubledger {
		return
	}
	postOpenItem(p, c, target, a.SubledgerKind+"_open_item", a.SubledgerKind)
}

// postSettlement closes the open item a prior postOpenItem call created for
// this case's subledger kind and posts the cash-side closing entry for
// exactly the amount that was actually outstanding, rather than a fresh,
// unrelated random draw.
func postSettlement(p *pipeline, c *docflow.Case, target time.Time, templateID string) {
	if p.coupler == nil {
		return
	}
	kindName, ok := settlementKind(templateID)
	if !ok {
		return
	}
	kind, ok := subledgerKindFromName(kindName)
	if !ok {
		return
	}
	counterpartyRef := c.Status[kindName+"_counterparty"]
	if counterpartyRef == "" {
		return
	}
	amount := p.coupler.Close(kind, counterpartyRef)
	if amount.IsZero() {
		return
	}
	controlAccount, ok := p.coupler.ControlAccount(kind)
	if !ok {
		return
	}
	cashAccounts := p.chart.BySubClassification(coa.SubCash)
	if len(cashAccounts) == 0 {
		return
	}

	// An AR receipt debits cash and credits (reduces) AR; an AP payment
	// credits cash and debits (reduces) AP.
	cashSide, controlSide := journal.Debit, journal.Credit
	if kind == subledger.AP {
		cashSide, controlSide = journal.Credit, journal.Debit
	}

	entry := p.newManualEntry(c.CompanyCode, templateID, c.Machine.Name, target)
	entry.Lines = []journal.Line{
		{Sequence: 0, Account: cashAccounts[0].Number, Side: cashSide, Amount: amount},
		{Sequence: 1, Account: controlAccount, Side: controlSide, Amount: amount, CounterpartyRef: counterpartyRef},
	}
	p.entries = append(p.entries, entry)
}

func settlementKind(templateID string) (string, bool) {
	switch templateID {
	case "ap_payment":
		return "AP", true
	case "ar_receipt":
		return "AR", true
	default:
		return "", false
	}
}

func subledgerKindFromName(name string) (subledger.Kind, bool) {
	switch name {
	case "AR":
		return subledger.AR, true
	case "AP":
		return subledger.AP, true
	default:
		return 0, false
	}
}

// offsetAccountFor returns the non-control account an AR/AP open item's
// other line posts to: revenue for an AR invoice, expense for an AP
// invoice.
func offsetAccountFor(chart *coa.ChartOfAccounts, kind subledger.Kind) (string, bool) {
	var sub coa.SubClassification
	switch kind {
	case subledger.AR:
		sub = coa.SubSalesRevenue
	case subledger.AP:
		sub = coa.SubOperatingExpense
	default:
		return "", false
	}
	accounts := chart.BySubClassification(sub)
	if len(accounts) == 0 {
		return "", false
	}
	return accounts[0].Number, true
}

// counterpartyIdx derives a stable pseudo-index from a case's id so the same
// case always selects the same counterparty slot.
func counterpartyIdx(c *docflow.Case) int {
	h := 0
	for _, b := range c.ID {
		h = h*31 + int(b)
	}
	if h < 0 {
		h = -h
	}
	return h
}

// counterpartyRefFor selects the vendor/customer active at at, enforcing
// the invariant that a document referencing a master-data item posts within
// that item's effective range.
func counterpartyRefFor(p *pipeline, kind subledger.Kind, c *docflow.Case, at time.Time) (string, bool) {
	idx := counterpartyIdx(c)
	switch kind {
	case subledger.AR:
		cust, ok := p.pool.ActiveCustomerAt(at, idx)
		if !ok {
			return "", false
		}
		return cust.ID.String(), true
	case subledger.AP:
		v, ok := p.pool.ActiveVendorAt(at, idx)
		if !ok {
			return "", false
		}
		return v.ID.String(), true
	default:
		return "", false
	}
}

// newManualEntry builds an entry header shared by the control-account
// postings built directly in this file (outside journal.Engine's
// Template/Roles path), sharing the engine's document-numbering sequence
// and currency/rate conventions so every entry in the corpus, templated or
// not, carries the same header shape and uniqueness guarantee.
func (p *pipeline) newManualEntry(companyCode, docType, processTag string, target time.Time) *journal.Entry {
	currency := "USD"
	for _, co := range p.pool.Companies {
		if co.Code == companyCode {
			currency = co.Currency
			break
		}
	}
	entry := &journal.Entry{
		ID:                uuid.New(),
		CompanyCode:       companyCode,
		FiscalYear:        target.Year(),
		Period:            int(target.Month()),
		PostingDate:       target,
		DocumentDate:      target,
		DocumentType:      docType,
		ProcessTag:        processTag,
		SourceTag:         "docflow",
		DocumentCurrency:  currency,
		GroupCurrencyRate: p.je.RateToGroupCurrency(currency),
	}
	entry.DocumentNumber = p.je.NextDocumentNumber(companyCode, entry.FiscalYear)
	return entry
}

func (m *Manager) phaseIntercompany(ctl *orchestrator.Control, p *pipeline, cfg config.Config) error {
	if err := ctl.CheckPoint(); err != nil {
		return err
	}
	if len(p.pool.Companies) < 2 {
		return nil
	}
	partner := cfg.Intercompany.PartnerCode
	if partner == "" {
		partner = p.pool.Companies[1].Code
	}
	fraction := cfg.Intercompany.Fraction
	if fraction <= 0 {
		fraction = 0.05
	}
	every := int(1 / fraction)
	if every <= 0 {
		every = 1
	}
	for i, e := range p.entries {
		if i%every != 0 {
			continue
		}
		mirrored, err := p.icCoupler.Mirror(e, partner)
		if err != nil {
			return err
		}
		p.entries = append(p.entries, mirrored)
		if err := ctl.CheckPoint(); err != nil {
			return err
		}
	}
	return nil
}

func typologyFromName(name string) (banking.Typology, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "structuring":
		return banking.Structuring, true
	case "layering":
		return banking.Layering, true
	case "rapidmovement", "rapid_movement":
		return banking.RapidMovement, true
	case "funnel":
		return banking.Funnel, true
	case "shell":
		return banking.Shell, true
	case "smurfing":
		return banking.Smurfing, true
	default:
		return 0, false
	}
}

// scenarioTypologies resolves the configured typology names, falling back to
// the full roster when none were configured or none resolved.
func scenarioTypologies(names []string) []banking.Typology {
	var out []banking.Typology
	for _, n := range names {
		if t, ok := typologyFromName(n); ok {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		out = []banking.Typology{
			banking.Structuring, banking.Layering, banking.RapidMovement,
			banking.Funnel, banking.Shell, banking.Smurfing,
		}
	}
	return out
}

// scenarioSophistication resolves the configured sophistication tier to a
// per-injection function; an unrecognized or empty name cycles through all
// three tiers by injection index, matching the previous unconfigurable
// behavior.
func scenarioSophistication(name string) func(i int) banking.Sophistication {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "basic":
		return func(int) banking.Sophistication { return banking.Basic }
	case "intermediate", "medium":
		return func(int) banking.Sophistication { return banking.Intermediate }
	case "advanced":
		return func(int) banking.Sophistication { return banking.Advanced }
	default:
		return func(i int) banking.Sophistication { return banking.Sophistication(i % 3) }
	}
}

func (m *Manager) phaseAnomalyOverlay(ctl *orchestrator.Control, p *pipeline, cfg config.Config) error {
	if err := ctl.CheckPoint(); err != nil {
		return err
	}

	bankFactory := p.factory
	custGen := banking.NewCustomerGenerator(bankFactory)
	acctGen := banking.NewAccountGenerator(bankFactory)
	txGen := banking.NewTransactionGenerator(bankFactory)
	injector := banking.NewTypologyInjector(bankFactory)

	for i := 0; i < cfg.Banking.CustomerCount; i++ {
		if err := ctl.CheckPoint(); err != nil {
			return err
		}
		customer := custGen.Next()
		p.customers = append(p.customers, customer)
		accounts := acctGen.GenerateFor(customer)
		p.accounts = append(p.accounts, accounts...)
		for _, acct := range accounts {
			p.transactions = append(p.transactions, txGen.GenerateRange(acct, customer.Persona, cfg.StartDate, cfg.EndDate)...)
		}
	}

	typologies := scenarioTypologies(cfg.Scenario.Typologies)
	sophisticationFor := scenarioSophistication(cfg.Scenario.Sophistication)
	flagged := int(float64(len(p.accounts)) * cfg.Banking.TypologyFraction)
	for i := 0; i < flagged && i < len(p.accounts); i++ {
		scenario := banking.ScenarioConfig{
			Typology:       typologies[i%len(typologies)],
			Sophistication: sophisticationFor(i),
			StartDate:      cfg.StartDate,
			TargetAmount:   decimal.NewFromInt(50000),
		}
		p.transactions = append(p.transactions, injector.Inject(p.accounts[i], scenario)...)
	}

	inflationMax := cfg.Fraud.AmountInflationFactorMax
	if inflationMax == 0 {
		inflationMax = 3.0
	}
	timingMax := cfg.Fraud.TimingShiftDaysMax
	if timingMax == 0 {
		timingMax = 30
	}
	anomalyInjector := anomaly.NewInjector(p.factory)
	p.anomalyRes = anomalyInjector.Apply(p.entries, anomaly.Config{
		FraudFraction:            cfg.FraudFraction,
		AmountInflationFactorMax: inflationMax,
		TimingShiftDaysMax:       timingMax,
	})

	return ctl.CheckPoint()
}

func (m *Manager) phaseSinkFlush(ctl *orchestrator.Control, p *pipeline, runDir string) error {
	if err := ctl.CheckPoint(); err != nil {
		return err
	}

	entrySink, closeFn, err := openCSV(runDir, "journal_entries.csv",
		[]string{"entry_id", "company_code", "document_number", "posting_date", "sequence", "account", "side", "amount"},
		func(l journalLine) []string { return l.row() })
	if err != nil {
		return core.Wrap(core.KindIo, "failed to open journal entry sink", err)
	}
	defer closeFn()

	var rows []journalLine
	for _, e := range p.entries {
		for _, l := range e.Lines {
			rows = append(rows, journalLine{entry: e, line: l})
		}
	}
	if err := entrySink.WriteBatch(rows); err != nil {
		return err
	}
	if err := entrySink.Flush(); err != nil {
		return err
	}

	txSink, closeTx, err := openCSV(runDir, "transactions.csv",
		[]string{"id", "account_id", "timestamp", "amount", "direction", "channel", "category"},
		func(t banking.Transaction) []string { return transactionRow(t) })
	if err != nil {
		return core.Wrap(core.KindIo, "failed to open transaction sink", err)
	}
	defer closeTx()
	if err := txSink.WriteBatch(p.transactions); err != nil {
		return err
	}
	return txSink.Flush()
}

type journalLine struct {
	entry *journal.Entry
	line  journal.Line
}

func (jl journalLine) row() []string {
	side := "debit"
	if jl.line.Side == journal.Credit {
		side = "credit"
	}
	return []string{
		jl.entry.ID.String(),
		jl.entry.CompanyCode,
		jl.entry.DocumentNumber,
		jl.entry.PostingDate.Format(time.RFC3339),
		itoa(jl.line.Sequence),
		jl.line.Account,
		side,
		jl.line.Amount.String(),
	}
}

func transactionRow(t banking.Transaction) []string {
	side := "inbound"
	if t.Direction == banking.Outbound {
		side = "outbound"
	}
	return []string{
		t.ID.String(),
		t.AccountID.String(),
		t.Timestamp.Format(time.RFC3339),
		t.Amount.String(),
		side,
		t.Channel.String(),
		t.Category.String(),
	}
}

func itoa(i int) string {
	return strconv.Itoa(i)
}

// openCSV opens name under dir for writing and wraps it in a CSVSink,
// returning a close func that also closes the underlying file.
func openCSV[T any](dir, name string, header []string, toRow func(T) []string) (*sink.CSVSink[T], func() error, error) {
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, nil, err
	}
	s := sink.NewCSVSink[T](f, f, header, toRow)
	return s, s.Close, nil
}
