// Package config defines the hierarchical generation configuration tree
// and its validation, grounded on spec §6 and the teacher's use of
// go-playground/validator/v10 for inbound payload validation
// (internal/api/routes.go) generalized here to a config tree instead of a
// single request struct. File loading/presets remain out of scope per
// spec §1 Non-goals — this package defines the in-memory tree only.
package config

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/rawblock/datasynth-engine/internal/core"
)

// CompanyConfig is one company's identity, currency and generation weight.
type CompanyConfig struct {
	Code         string  `yaml:"code" validate:"required"`
	Name         string  `yaml:"name"`
	VolumeWeight float64 `yaml:"volume_weight" validate:"gte=0"`

	// Currency is the company's transaction currency (ISO 4217); empty
	// falls back to "USD". AnnualTransactionVolume scales the number of
	// document-flow cases phaseDocumentFlows starts for this company.
	// FiscalYearVariant selects how a posting date maps to a fiscal
	// period ("calendar" — period == calendar month — is the only variant
	// currently implemented; others fall back to it).
	Currency                string `yaml:"currency"`
	Country                 string `yaml:"country"`
	AnnualTransactionVolume int    `yaml:"annual_transaction_volume" validate:"gte=0"`
	FiscalYearVariant       string `yaml:"fiscal_year_variant"`
}

// BankingConfig controls the banking engine's volume and typology mix.
type BankingConfig struct {
	CustomerCount     int     `yaml:"customer_count" validate:"gte=0"`
	TypologyFraction  float64 `yaml:"typology_fraction" validate:"gte=0,lte=1"`
}

// PrivacyConfig controls the fingerprint core's privacy engine.
type PrivacyConfig struct {
	EpsilonLimit float64 `yaml:"epsilon_limit" validate:"gt=0"`
	KAnonymity   int     `yaml:"k_anonymity" validate:"gte=1"`
}

// GlobalConfig carries run-wide settings that don't belong to any one
// feature area: the industry template the chart of accounts and
// transaction mix are shaped around, the fiscal calendar's length, and
// the currency every company's amounts are translated into for reporting.
type GlobalConfig struct {
	Industry      string `yaml:"industry"`
	PeriodMonths  int    `yaml:"period_months" validate:"gte=0"`
	GroupCurrency string `yaml:"group_currency"`
}

// CoAConfig controls chart-of-accounts generation.
type CoAConfig struct {
	// Complexity is one of "small", "medium", "large"; unrecognized or
	// empty falls back to "medium".
	Complexity       string `yaml:"complexity"`
	IndustrySpecific bool   `yaml:"industry_specific"`
}

// TransactionsConfig controls the journal engine's document-flow and
// standalone-entry volume and shape.
type TransactionsConfig struct {
	DocumentFlowCaseCount int     `yaml:"document_flow_case_count" validate:"gte=0"`
	MonthEndClusterWeight float64 `yaml:"month_end_cluster_weight" validate:"gte=0,lte=1"`
	RoundNumberBias       float64 `yaml:"round_number_bias" validate:"gte=0,lte=1"`
}

// FraudConfig controls the post-generation anomaly overlay's injection
// shape, beyond the top-level fraud fraction.
type FraudConfig struct {
	AmountInflationFactorMax float64 `yaml:"amount_inflation_factor_max" validate:"gte=0"`
	TimingShiftDaysMax       int     `yaml:"timing_shift_days_max" validate:"gte=0"`
}

// ApprovalConfig controls whether generated entries carry a simulated
// approval workflow reference and how often approval is required.
type ApprovalConfig struct {
	Enabled bool    `yaml:"enabled"`
	Rate    float64 `yaml:"rate" validate:"gte=0,lte=1"`
}

// DocumentFlowsConfig controls the P2P/O2C case mix the docflow engine
// starts.
type DocumentFlowsConfig struct {
	P2PWeight            float64 `yaml:"p2p_weight" validate:"gte=0,lte=1"`
	ThreeWayToleranceRate float64 `yaml:"three_way_tolerance_rate" validate:"gte=0,lte=1"`
}

// IntercompanyConfig controls what fraction of entries get mirrored to a
// partner company and which partner they mirror to.
type IntercompanyConfig struct {
	Fraction    float64 `yaml:"fraction" validate:"gte=0,lte=1"`
	PartnerCode string  `yaml:"partner_code"`
}

// BalanceConfig controls the coherence battery's balance-sheet tolerance.
type BalanceConfig struct {
	ToleranceMinorUnits int64 `yaml:"tolerance_minor_units" validate:"gte=0"`
}

// OcpmConfig would control object-centric process-mining event-log export
// (OCEL-style multi-object case correlation over the same document flows).
// Left unwired: see DESIGN.md's "Deleted/unwired teacher-adjacent features"
// entry for why no SPEC_FULL.md component exercises it yet.
type OcpmConfig struct {
	Enabled bool `yaml:"enabled"`
}

// ScenarioConfig controls which AML typologies the banking overlay injects
// and at what sophistication.
type ScenarioConfig struct {
	Typologies     []string `yaml:"typologies"`
	Sophistication string   `yaml:"sophistication"`
}

// TemporalConfig controls the statistical battery's seasonality check.
type TemporalConfig struct {
	MinCorrelation float64 `yaml:"min_correlation" validate:"gte=-1,lte=1"`
}

// Config is the root generation configuration tree.
type Config struct {
	RootSeed      uint64          `yaml:"root_seed"`
	StartDate     time.Time       `yaml:"start_date" validate:"required"`
	EndDate       time.Time       `yaml:"end_date" validate:"required,gtfield=StartDate"`
	Companies     []CompanyConfig `yaml:"companies" validate:"required,min=1,dive"`

	Global         GlobalConfig        `yaml:"global"`
	ChartOfAccounts CoAConfig          `yaml:"chart_of_accounts"`
	Transactions    TransactionsConfig `yaml:"transactions"`
	Approval        ApprovalConfig     `yaml:"approval"`
	DocumentFlows   DocumentFlowsConfig `yaml:"document_flows"`
	Intercompany    IntercompanyConfig `yaml:"intercompany"`
	Balance         BalanceConfig      `yaml:"balance"`
	Ocpm            OcpmConfig         `yaml:"ocpm"`
	Scenario        ScenarioConfig     `yaml:"scenario"`
	Temporal        TemporalConfig     `yaml:"temporal"`
	Fraud           FraudConfig        `yaml:"fraud"`

	Banking       BankingConfig   `yaml:"banking"`
	Privacy       PrivacyConfig   `yaml:"privacy"`
	FraudFraction float64         `yaml:"fraud_fraction" validate:"gte=0,lte=1"`
	Parallel      bool            `yaml:"parallel"`
}

var validate = validator.New()

// Validate runs struct-tag validation over the full tree, returning
// core.KindConfig on the first rejected field.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return core.Wrap(core.KindConfig, "invalid configuration", err)
	}
	total := 0.0
	for _, co := range c.Companies {
		total += co.VolumeWeight
	}
	if total <= 0 {
		return core.New(core.KindConfig, "at least one company must carry positive volume weight")
	}
	return nil
}
