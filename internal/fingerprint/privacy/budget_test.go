package privacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rawblock/datasynth-engine/internal/core"
)

func TestEngine_Spend_TracksRemainingBudget(t *testing.T) {
	e := NewEngine(1.0)
	require.NoError(t, e.Spend("laplace_perturbation", "amount", 0.3))
	assert.InDelta(t, 0.7, e.Remaining(), 1e-9)
	assert.InDelta(t, 0.3, e.Spent(), 1e-9)
	require.Len(t, e.Entries(), 1)
	assert.Equal(t, "amount", e.Entries()[0].Target)
}

func TestEngine_Spend_RejectsOverBudget(t *testing.T) {
	e := NewEngine(0.5)
	require.NoError(t, e.Spend("a", "x", 0.4))

	err := e.Spend("b", "y", 0.2)
	var budgetErr *core.PrivacyBudgetExhaustedError
	assert.ErrorAs(t, err, &budgetErr)
	assert.Len(t, e.Entries(), 1, "a rejected spend must not be recorded")
}

func TestEngine_Spend_ExactlyAtLimitSucceeds(t *testing.T) {
	e := NewEngine(1.0)
	require.NoError(t, e.Spend("a", "x", 1.0))
	assert.Equal(t, 0.0, e.Remaining())
}
