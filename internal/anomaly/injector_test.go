package anomaly

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rawblock/datasynth-engine/internal/journal"
	"github.com/rawblock/datasynth-engine/internal/seed"
)

func balancedEntries(n int) []*journal.Entry {
	entries := make([]*journal.Entry, n)
	for i := 0; i < n; i++ {
		entries[i] = &journal.Entry{
			DocumentNumber: "DOC-0001",
			PostingDate:    time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
			CreatorID:      "creator-1",
			Lines: []journal.Line{
				{Sequence: 0, Account: "1100", Side: journal.Debit, Amount: decimal.NewFromInt(1000)},
				{Sequence: 1, Account: "4100", Side: journal.Credit, Amount: decimal.NewFromInt(1000)},
			},
		}
	}
	return entries
}

func TestInjector_Apply_NeverBreaksBalance(t *testing.T) {
	inj := NewInjector(seed.NewFactory(5))
	entries := balancedEntries(200)

	result := inj.Apply(entries, Config{
		FraudFraction:            1.0, // flip every entry to exercise every mutation path
		AmountInflationFactorMax: 3.0,
		TimingShiftDaysMax:       30,
	})

	require.NotEmpty(t, result.Flips)
	for _, e := range entries {
		assert.True(t, e.IsBalanced(), "entry %s broke the balance invariant", e.DocumentNumber)
	}
	assert.Len(t, result.Flips, len(entries))
}

func TestInjector_Apply_ZeroFractionFlipsNothing(t *testing.T) {
	inj := NewInjector(seed.NewFactory(5))
	entries := balancedEntries(50)

	result := inj.Apply(entries, Config{FraudFraction: 0})
	assert.Empty(t, result.Flips)
}

func TestInjector_Apply_UnauthorizedApproverFlipsApproverToCreator(t *testing.T) {
	inj := NewInjector(seed.NewFactory(1))
	var found bool
	for trial := 0; trial < 50 && !found; trial++ {
		entries := balancedEntries(1)
		result := inj.Apply(entries, Config{FraudFraction: 1.0})
		if len(result.Flips) == 1 && result.Flips[0].FraudType == UnauthorizedApprover {
			assert.Equal(t, entries[0].CreatorID, entries[0].ApproverID)
			assert.True(t, entries[0].Approved)
			found = true
		}
	}
	require.True(t, found, "expected to observe at least one UnauthorizedApprover flip across trials")
}

func TestInjector_Apply_Deterministic(t *testing.T) {
	e1 := balancedEntries(20)
	e2 := balancedEntries(20)

	r1 := NewInjector(seed.NewFactory(77)).Apply(e1, Config{FraudFraction: 0.5, AmountInflationFactorMax: 2, TimingShiftDaysMax: 5})
	r2 := NewInjector(seed.NewFactory(77)).Apply(e2, Config{FraudFraction: 0.5, AmountInflationFactorMax: 2, TimingShiftDaysMax: 5})

	assert.Equal(t, r1, r2)
	assert.Equal(t, e1, e2)
}
