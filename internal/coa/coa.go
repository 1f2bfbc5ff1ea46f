// Package coa generates deterministic charts of accounts, grounded on
// original_source/crates/datasynth-generators/src/coa_generator.rs.
package coa

import (
	"fmt"

	"github.com/rawblock/datasynth-engine/internal/core"
	"github.com/rawblock/datasynth-engine/internal/seed"
)

// Classification is the top-level account category; it fixes the leading
// digit of every account number in this chart.
type Classification int

const (
	Asset Classification = iota
	Liability
	Equity
	Revenue
	Expense
)

func (c Classification) prefix() int {
	switch c {
	case Asset:
		return 1
	case Liability:
		return 2
	case Equity:
		return 3
	case Revenue:
		return 4
	case Expense:
		return 5
	default:
		panic("coa: unknown classification")
	}
}

func (c Classification) String() string {
	return [...]string{"Asset", "Liability", "Equity", "Revenue", "Expense"}[c]
}

// SubClassification narrows a Classification into the role an account plays
// (e.g. which side of the three-way match, which control account family).
type SubClassification int

const (
	SubCash SubClassification = iota
	SubAccountsReceivable
	SubInventory
	SubFixedAssets
	SubOtherAsset
	SubAccountsPayable
	SubIntercompanyPayable
	SubOtherLiability
	SubCommonEquity
	SubRetainedEarnings
	SubSalesRevenue
	SubOtherRevenue
	SubCOGS
	SubOperatingExpense
	SubOtherExpense
	SubGRIRClearing
	SubBankClearing
	SubIntercompanyClearing
)

// Complexity sizes the generated chart.
type Complexity int

const (
	Small Complexity = iota
	Medium
	Large
)

func (c Complexity) targetAccountCount() int {
	switch c {
	case Small:
		return 50
	case Medium:
		return 150
	case Large:
		return 400
	default:
		panic("coa: unknown complexity")
	}
}

// Account is one ledger account in a generated chart.
type Account struct {
	Number             string
	Name               string
	Classification     Classification
	SubClassification  SubClassification
	RequiresCostCenter bool
	IsSuspense         bool
}

// ChartOfAccounts is a named, deterministically generated set of accounts.
type ChartOfAccounts struct {
	Industry string
	Accounts []Account
	byNumber map[string]*Account
	bySub    map[SubClassification][]*Account
}

// requiredSuspense lists the control/clearing roles every chart must carry
// at least one account for (spec §3 mandatory suspense accounts: AR, AP,
// GR/IR, intercompany, bank).
var requiredSuspense = []struct {
	sub   SubClassification
	cls   Classification
	name  string
	block int
}{
	{SubAccountsReceivable, Asset, "Accounts Receivable Control", 100},
	{SubAccountsPayable, Liability, "Accounts Payable Control", 100},
	{SubGRIRClearing, Liability, "GR/IR Clearing", 910},
	{SubIntercompanyClearing, Asset, "Intercompany Clearing", 920},
	{SubBankClearing, Asset, "Bank Clearing", 930},
}

// standardTemplate is the pool of non-mandatory accounts used to fill a
// chart out to its target size, cycled and numbered deterministically.
var standardTemplate = []struct {
	sub  SubClassification
	cls  Classification
	name string
}{
	{SubCash, Asset, "Operating Cash"},
	{SubInventory, Asset, "Raw Materials Inventory"},
	{SubInventory, Asset, "Finished Goods Inventory"},
	{SubFixedAssets, Asset, "Property, Plant & Equipment"},
	{SubFixedAssets, Asset, "Accumulated Depreciation"},
	{SubOtherAsset, Asset, "Prepaid Expenses"},
	{SubOtherAsset, Asset, "Other Receivables"},
	{SubOtherLiability, Liability, "Accrued Liabilities"},
	{SubOtherLiability, Liability, "Income Tax Payable"},
	{SubOtherLiability, Liability, "Deferred Revenue"},
	{SubCommonEquity, Equity, "Common Stock"},
	{SubRetainedEarnings, Equity, "Retained Earnings"},
	{SubSalesRevenue, Revenue, "Product Sales Revenue"},
	{SubSalesRevenue, Revenue, "Service Revenue"},
	{SubOtherRevenue, Revenue, "Other Income"},
	{SubCOGS, Expense, "Cost of Goods Sold"},
	{SubOperatingExpense, Expense, "Salaries & Wages"},
	{SubOperatingExpense, Expense, "Rent Expense"},
	{SubOperatingExpense, Expense, "Utilities Expense"},
	{SubOtherExpense, Expense, "Miscellaneous Expense"},
}

// Generate builds a chart deterministically from the given stream; industry
// is a free-form label carried for downstream reporting only.
func Generate(industry string, complexity Complexity, stream *seed.Stream) (*ChartOfAccounts, error) {
	target := complexity.targetAccountCount()
	if target < len(requiredSuspense) {
		return nil, core.New(core.KindDataDependency, "complexity tier too small to fit mandatory suspense accounts")
	}

	chart := &ChartOfAccounts{
		Industry: industry,
		byNumber: make(map[string]*Account),
		bySub:    make(map[SubClassification][]*Account),
	}

	for _, s := range requiredSuspense {
		acc := Account{
			Number:             fmt.Sprintf("%d%03d", s.cls.prefix(), s.block),
			Name:               s.name,
			Classification:     s.cls,
			SubClassification:  s.sub,
			RequiresCostCenter: false,
			IsSuspense:         true,
		}
		chart.add(acc)
	}

	counters := map[Classification]int{}
	for len(chart.Accounts) < target {
		tmpl := standardTemplate[stream.Rand().Intn(len(standardTemplate))]
		counters[tmpl.cls]++
		block := counters[tmpl.cls]
		number := fmt.Sprintf("%d%03d", tmpl.cls.prefix(), block)
		if _, exists := chart.byNumber[number]; exists {
			continue
		}
		acc := Account{
			Number:             number,
			Name:               tmpl.name,
			Classification:     tmpl.cls,
			SubClassification:  tmpl.sub,
			RequiresCostCenter: tmpl.cls == Expense && stream.Rand().Bool(0.6),
			IsSuspense:         false,
		}
		chart.add(acc)
	}

	return chart, nil
}

func (c *ChartOfAccounts) add(acc Account) {
	c.Accounts = append(c.Accounts, acc)
	ptr := &c.Accounts[len(c.Accounts)-1]
	c.byNumber[acc.Number] = ptr
	c.bySub[acc.SubClassification] = append(c.bySub[acc.SubClassification], ptr)
}

// ByNumber looks up an account by its number.
func (c *ChartOfAccounts) ByNumber(number string) (*Account, bool) {
	a, ok := c.byNumber[number]
	return a, ok
}

// BySubClassification returns every account carrying the given role,
// typically used to pick a random eligible account for a journal line.
func (c *ChartOfAccounts) BySubClassification(sub SubClassification) []*Account {
	return c.bySub[sub]
}

// ByClassification returns every account under a top-level classification.
func (c *ChartOfAccounts) ByClassification(cls Classification) []*Account {
	out := make([]*Account, 0, len(c.Accounts))
	for i := range c.Accounts {
		if c.Accounts[i].Classification == cls {
			out = append(out, &c.Accounts[i])
		}
	}
	return out
}
