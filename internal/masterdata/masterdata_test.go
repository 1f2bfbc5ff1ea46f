package masterdata

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rawblock/datasynth-engine/internal/seed"
)

func testConfig() Config {
	return Config{
		CompanyCount:  2,
		VendorCount:   3,
		CustomerCount: 3,
		MaterialCount: 4,
		StartDate:     time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestGenerate_ProducesRequestedCounts(t *testing.T) {
	pool := Generate(testConfig(), seed.NewFactory(1))
	assert.Len(t, pool.Companies, 2)
	assert.Len(t, pool.Vendors, 3)
	assert.Len(t, pool.Customers, 3)
	assert.Len(t, pool.Materials, 4)
}

func TestGenerate_VendorsAndCustomersHaveDistinctUUIDs(t *testing.T) {
	pool := Generate(testConfig(), seed.NewFactory(1))
	seen := map[string]bool{}
	for _, v := range pool.Vendors {
		assert.False(t, seen[v.ID.String()])
		seen[v.ID.String()] = true
	}
	for _, c := range pool.Customers {
		assert.False(t, seen[c.ID.String()])
		seen[c.ID.String()] = true
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	a := Generate(testConfig(), seed.NewFactory(7))
	b := Generate(testConfig(), seed.NewFactory(7))
	assert.Equal(t, a, b)
}

func TestGenerate_DifferentSeedsDiverge(t *testing.T) {
	a := Generate(testConfig(), seed.NewFactory(7))
	b := Generate(testConfig(), seed.NewFactory(8))
	assert.NotEqual(t, a, b)
}

func TestGenerate_MaterialUnitCostWithinExpectedRange(t *testing.T) {
	pool := Generate(testConfig(), seed.NewFactory(1))
	for _, m := range pool.Materials {
		assert.GreaterOrEqual(t, m.UnitCost, 1.0)
		assert.Less(t, m.UnitCost, 501.0)
	}
}

func TestGenerate_ZeroChurnFractionLeavesEveryEffectiveToNil(t *testing.T) {
	pool := Generate(testConfig(), seed.NewFactory(1))
	for _, v := range pool.Vendors {
		assert.Nil(t, v.EffectiveTo)
	}
	for _, c := range pool.Customers {
		assert.Nil(t, c.EffectiveTo)
	}
}

func TestGenerate_ChurnFractionClosesOutSomeVendors(t *testing.T) {
	cfg := testConfig()
	cfg.VendorCount = 50
	cfg.ChurnFraction = 0.5
	pool := Generate(cfg, seed.NewFactory(1))
	var closed int
	for _, v := range pool.Vendors {
		if v.EffectiveTo != nil {
			closed++
			assert.True(t, v.EffectiveTo.After(v.EffectiveFrom))
		}
	}
	assert.Greater(t, closed, 0)
	assert.Less(t, closed, len(pool.Vendors))
}

func TestPool_ActiveVendorAt_ExcludesClosedVendors(t *testing.T) {
	cfg := testConfig()
	cfg.VendorCount = 20
	cfg.ChurnFraction = 1.0
	pool := Generate(cfg, seed.NewFactory(1))
	// Every vendor closes at some date after StartDate; far enough in the
	// future nothing is active.
	_, ok := pool.ActiveVendorAt(cfg.StartDate.AddDate(10, 0, 0), 0)
	assert.False(t, ok)

	v, ok := pool.ActiveVendorAt(cfg.StartDate, 0)
	require.True(t, ok)
	assert.True(t, v.EffectiveFrom.Equal(cfg.StartDate) || !v.EffectiveFrom.After(cfg.StartDate))
}

func TestPool_ActiveCustomerAt_EmptyPoolReturnsFalse(t *testing.T) {
	pool := Pool{}
	_, ok := pool.ActiveCustomerAt(time.Now(), 0)
	assert.False(t, ok)
}

func TestGenerate_CompanyCurrenciesAssignedByIndexWithUSDFallback(t *testing.T) {
	cfg := testConfig()
	cfg.CompanyCount = 3
	cfg.CompanyCurrencies = []string{"EUR", "", "JPY"}
	pool := Generate(cfg, seed.NewFactory(1))
	require.Len(t, pool.Companies, 3)
	assert.Equal(t, "EUR", pool.Companies[0].Currency)
	assert.Equal(t, "USD", pool.Companies[1].Currency)
	assert.Equal(t, "JPY", pool.Companies[2].Currency)
}

func TestGenerate_ZeroCountsProduceEmptyPool(t *testing.T) {
	pool := Generate(Config{StartDate: time.Now()}, seed.NewFactory(1))
	assert.Empty(t, pool.Companies)
	assert.Empty(t, pool.Vendors)
	assert.Empty(t, pool.Customers)
	assert.Empty(t, pool.Materials)
}
