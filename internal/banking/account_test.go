package banking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rawblock/datasynth-engine/internal/seed"
)

func newTestFactory() *seed.Factory {
	return seed.NewFactory(42)
}

func TestAccountGenerator_GenerateFor_RespectsPersonaCeiling(t *testing.T) {
	gen := NewAccountGenerator(newTestFactory())
	customerGen := NewCustomerGenerator(newTestFactory())

	for i := 0; i < 50; i++ {
		customer := customerGen.Next()
		accounts := gen.GenerateFor(customer)
		require.NotEmpty(t, accounts)
		assert.LessOrEqual(t, len(accounts), accountCountCeiling(customer.Persona))
		for _, a := range accounts {
			assert.Equal(t, customer.ID, a.CustomerID)
			assert.NotEmpty(t, a.Number)
		}
	}
}

func TestAccountGenerator_GenerateFor_Deterministic(t *testing.T) {
	customer := NewCustomerGenerator(newTestFactory()).Next()

	g1 := NewAccountGenerator(newTestFactory())
	g2 := NewAccountGenerator(newTestFactory())

	assert.Equal(t, g1.GenerateFor(customer), g2.GenerateFor(customer))
}

func TestAccountTypeFor_BusinessPersonasSkewOperating(t *testing.T) {
	factory := newTestFactory()
	var operating, total int
	for i := uint64(0); i < 500; i++ {
		rng := factory.Stream(seed.TagBanking, i).Rand()
		if accountTypeFor(Corporate, rng) == BusinessOperating {
			operating++
		}
		total++
	}
	assert.Greater(t, operating, total/3, "corporate accounts should skew toward BusinessOperating")
}
