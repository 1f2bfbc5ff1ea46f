package subledger

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rawblock/datasynth-engine/internal/coa"
	"github.com/rawblock/datasynth-engine/internal/core"
	"github.com/rawblock/datasynth-engine/internal/journal"
	"github.com/rawblock/datasynth-engine/internal/seed"
)

func testChart(t *testing.T) *coa.ChartOfAccounts {
	t.Helper()
	stream := seed.NewFactory(1).Stream(seed.TagCoA, 0)
	chart, err := coa.Generate("general", coa.Medium, stream)
	require.NoError(t, err)
	return chart
}

func TestNewCoupler_ResolvesControlAccounts(t *testing.T) {
	chart := testChart(t)
	c, err := NewCoupler(chart)
	require.NoError(t, err)

	arAcc, ok := c.ControlAccount(AR)
	require.True(t, ok)
	apAcc, ok := c.ControlAccount(AP)
	require.True(t, ok)
	assert.NotEqual(t, arAcc, apAcc)
}

func TestCoupler_BypassCheckRejectsControlAccounts(t *testing.T) {
	chart := testChart(t)
	c, err := NewCoupler(chart)
	require.NoError(t, err)

	apAcc, _ := c.ControlAccount(AP)
	check := c.BypassCheck()

	assert.ErrorIs(t, check(apAcc), core.ErrBypassOfControl)
	assert.NoError(t, check("9999999"))
}

func TestCoupler_PostAcceptsBalancedUnit(t *testing.T) {
	chart := testChart(t)
	c, err := NewCoupler(chart)
	require.NoError(t, err)
	apAcc, _ := c.ControlAccount(AP)

	entry := &journal.Entry{
		ID: uuid.New(),
		Lines: []journal.Line{
			{Account: apAcc, Side: journal.Credit, Amount: decimal.NewFromInt(100)},
		},
	}
	unit := PostingUnit{
		JournalEntry: entry,
		SubledgerRecords: []Record{
			{ID: uuid.New(), Kind: AP, Balance: decimal.NewFromInt(100), JournalEntryID: entry.ID, Open: true},
		},
	}

	require.NoError(t, c.Post(unit))
	assert.Len(t, c.Records(), 1)
}

func TestCoupler_PostRejectsMismatchedTotals(t *testing.T) {
	chart := testChart(t)
	c, err := NewCoupler(chart)
	require.NoError(t, err)
	apAcc, _ := c.ControlAccount(AP)

	entry := &journal.Entry{
		ID: uuid.New(),
		Lines: []journal.Line{
			{Account: apAcc, Side: journal.Credit, Amount: decimal.NewFromInt(100)},
		},
	}
	unit := PostingUnit{
		JournalEntry: entry,
		SubledgerRecords: []Record{
			{ID: uuid.New(), Kind: AP, Balance: decimal.NewFromInt(50), JournalEntryID: entry.ID, Open: true},
		},
	}

	err = c.Post(unit)
	assert.Error(t, err)
	assert.Empty(t, c.Records())
}

func TestCoupler_GLControlBalance_SumsMatchingControlLines(t *testing.T) {
	chart := testChart(t)
	c, err := NewCoupler(chart)
	require.NoError(t, err)
	arAcc, _ := c.ControlAccount(AR)
	apAcc, _ := c.ControlAccount(AP)

	entries := []*journal.Entry{
		{Lines: []journal.Line{
			{Account: arAcc, Side: journal.Debit, Amount: decimal.NewFromInt(100)},
			{Account: "9000000", Side: journal.Credit, Amount: decimal.NewFromInt(100)},
		}},
		{Lines: []journal.Line{
			{Account: arAcc, Side: journal.Credit, Amount: decimal.NewFromInt(30)},
			{Account: "9000000", Side: journal.Debit, Amount: decimal.NewFromInt(30)},
		}},
		{Lines: []journal.Line{
			{Account: apAcc, Side: journal.Credit, Amount: decimal.NewFromInt(40)},
			{Account: "9000000", Side: journal.Debit, Amount: decimal.NewFromInt(40)},
		}},
	}

	assert.True(t, c.GLControlBalance(AR, entries).Equal(decimal.NewFromInt(70)),
		"AR debits net credits: 100 - 30 = 70")
	assert.True(t, c.GLControlBalance(AP, entries).Equal(decimal.NewFromInt(40)))
	assert.True(t, c.GLControlBalance(Inventory, entries).IsZero(), "no control account resolved for Inventory")
}

func TestCoupler_OpenTotalsAndClose(t *testing.T) {
	chart := testChart(t)
	c, err := NewCoupler(chart)
	require.NoError(t, err)
	arAcc, _ := c.ControlAccount(AR)

	entry := &journal.Entry{
		ID:    uuid.New(),
		Lines: []journal.Line{{Account: arAcc, Side: journal.Debit, Amount: decimal.NewFromInt(100)}},
	}
	unit := PostingUnit{
		JournalEntry: entry,
		SubledgerRecords: []Record{
			{ID: uuid.New(), Kind: AR, CounterpartyRef: "cust-1", Balance: decimal.NewFromInt(100), JournalEntryID: entry.ID, Open: true},
		},
	}
	require.NoError(t, c.Post(unit))
	assert.True(t, c.OpenTotals()[AR].Equal(decimal.NewFromInt(100)))

	closed := c.Close(AR, "cust-1")
	assert.True(t, closed.Equal(decimal.NewFromInt(100)))
	assert.True(t, c.OpenTotals()[AR].IsZero())

	assert.True(t, c.Close(AR, "cust-1").IsZero(), "closing an already-closed item returns zero")
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "AR", AR.String())
	assert.Equal(t, "AP", AP.String())
	assert.Equal(t, "FixedAssets", FixedAssets.String())
	assert.Equal(t, "Inventory", Inventory.String())
}

func TestCoupler_IsControlAccount(t *testing.T) {
	chart := testChart(t)
	c, err := NewCoupler(chart)
	require.NoError(t, err)

	arAcc, _ := c.ControlAccount(AR)
	assert.True(t, c.IsControlAccount(arAcc))
	assert.False(t, c.IsControlAccount("0000000"))
}
