package privacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLaplaceMechanism_Perturb_SpendsBudgetAndPerturbsValue(t *testing.T) {
	budget := NewEngine(1.0)
	m := NewLaplaceMechanism(budget)

	out, err := m.Perturb("amount", 100.0, 1.0, 0.5, 0.2)
	require.NoError(t, err)
	assert.NotEqual(t, 100.0, out)
	assert.InDelta(t, 0.5, budget.Spent(), 1e-9)
}

func TestLaplaceMechanism_Perturb_ExhaustsBudget(t *testing.T) {
	budget := NewEngine(0.1)
	m := NewLaplaceMechanism(budget)

	_, err := m.Perturb("amount", 100.0, 1.0, 0.5, 0.2)
	assert.Error(t, err)
}

func TestLaplaceMechanism_Perturb_ZeroUProducesNoNoise(t *testing.T) {
	budget := NewEngine(1.0)
	m := NewLaplaceMechanism(budget)

	out, err := m.Perturb("amount", 100.0, 1.0, 0.5, 0.0)
	require.NoError(t, err)
	assert.Equal(t, 100.0, out)
}

func TestSign(t *testing.T) {
	assert.Equal(t, -1.0, sign(-0.4))
	assert.Equal(t, 1.0, sign(0.4))
	assert.Equal(t, 1.0, sign(0))
}
