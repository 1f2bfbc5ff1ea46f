// Package masterdata generates the immutable reference entities (vendors,
// customers, materials, companies) every later generation phase joins
// against, grounded on datasynth-generators' company/vendor/customer
// generators and on synth-core/src/models/company.rs for the Company shape.
package masterdata

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/rawblock/datasynth-engine/internal/seed"
)

// Company is one legal entity participating in the generated ledger.
type Company struct {
	Code         string
	Name         string
	Currency     string
	VolumeWeight float64
}

// Vendor is a purchase-side counterparty.
type Vendor struct {
	ID             uuid.UUID
	Name           string
	EffectiveFrom  time.Time
	EffectiveTo    *time.Time
}

// Customer is a sales-side counterparty.
type Customer struct {
	ID            uuid.UUID
	Name          string
	EffectiveFrom time.Time
	EffectiveTo   *time.Time
}

// Material is a purchasable/sellable item referenced by document flows.
type Material struct {
	ID       uuid.UUID
	SKU      string
	UnitCost float64
}

// Pool is the append-only, shared collection of reference entities handed
// by value to every later generation phase once master-data generation
// completes.
type Pool struct {
	Companies []Company
	Vendors   []Vendor
	Customers []Customer
	Materials []Material
}

// Config controls the volume of each master-data category.
type Config struct {
	CompanyCount  int
	VendorCount   int
	CustomerCount int
	MaterialCount int
	StartDate     time.Time

	// CompanyCurrencies assigns the i-th generated company's transaction
	// currency by index; a company beyond the slice's length, or an empty
	// entry, falls back to "USD".
	CompanyCurrencies []string

	// ChurnFraction is the probability a generated vendor/customer's
	// relationship has since closed (EffectiveTo set) rather than
	// remaining open-ended.
	ChurnFraction float64
}

// Generate builds a deterministic master-data pool. Each vendor, customer
// and material draws its own counter-addressed stream from factory so that
// identifiers are unique and reproducible independent of generation order;
// company volume weights are drawn in sequence from one shared stream.
func Generate(cfg Config, factory *seed.Factory) Pool {
	pool := Pool{}
	weightStream := factory.Stream(seed.TagMasterData, 0)
	rng := weightStream.Rand()

	for i := 0; i < cfg.CompanyCount; i++ {
		currency := "USD"
		if i < len(cfg.CompanyCurrencies) && cfg.CompanyCurrencies[i] != "" {
			currency = cfg.CompanyCurrencies[i]
		}
		pool.Companies = append(pool.Companies, Company{
			Code:         fmt.Sprintf("CO%02d", i+1),
			Name:         fmt.Sprintf("Entity %02d", i+1),
			Currency:     currency,
			VolumeWeight: 0.5 + rng.Float64()*1.5,
		})
	}
	for i := 0; i < cfg.VendorCount; i++ {
		s := factory.Stream(seed.TagMasterData, uint64(1_000_000+i))
		vrng := s.Rand()
		pool.Vendors = append(pool.Vendors, Vendor{
			ID:            s.ID(),
			Name:          fmt.Sprintf("Vendor %04d", i+1),
			EffectiveFrom: cfg.StartDate,
			EffectiveTo:   churnDate(cfg.StartDate, cfg.ChurnFraction, vrng),
		})
	}
	for i := 0; i < cfg.CustomerCount; i++ {
		s := factory.Stream(seed.TagMasterData, uint64(2_000_000+i))
		crng := s.Rand()
		pool.Customers = append(pool.Customers, Customer{
			ID:            s.ID(),
			Name:          fmt.Sprintf("Customer %04d", i+1),
			EffectiveFrom: cfg.StartDate,
			EffectiveTo:   churnDate(cfg.StartDate, cfg.ChurnFraction, crng),
		})
	}
	for i := 0; i < cfg.MaterialCount; i++ {
		s := factory.Stream(seed.TagMasterData, uint64(3_000_000+i))
		pool.Materials = append(pool.Materials, Material{
			ID:       s.ID(),
			SKU:      fmt.Sprintf("SKU-%05d", i+1),
			UnitCost: 1 + s.Rand().Float64()*500,
		})
	}
	return pool
}

// churnDate decides, from the same per-entity stream used for the rest of
// that entity's fields, whether a vendor/customer relationship has since
// closed, returning nil (open-ended) otherwise.
func churnDate(from time.Time, churnFraction float64, rng *seed.StreamRand) *time.Time {
	if !rng.Bool(churnFraction) {
		return nil
	}
	closed := from.AddDate(0, 0, 180+rng.Intn(540))
	return &closed
}

// activeAt reports whether at falls within [from, to] — to == nil means
// the relationship is still open.
func activeAt(from time.Time, to *time.Time, at time.Time) bool {
	if at.Before(from) {
		return false
	}
	return to == nil || !at.After(*to)
}

// ActiveVendorAt returns the idx-th vendor (cyclically) whose effective
// range covers at, enforcing the invariant that any document referencing
// a vendor has a posting date within that vendor's effective range.
func (p Pool) ActiveVendorAt(at time.Time, idx int) (Vendor, bool) {
	var active []Vendor
	for _, v := range p.Vendors {
		if activeAt(v.EffectiveFrom, v.EffectiveTo, at) {
			active = append(active, v)
		}
	}
	if len(active) == 0 {
		return Vendor{}, false
	}
	if idx < 0 {
		idx = -idx
	}
	return active[idx%len(active)], true
}

// ActiveCustomerAt returns the idx-th customer (cyclically) whose
// effective range covers at, mirroring ActiveVendorAt.
func (p Pool) ActiveCustomerAt(at time.Time, idx int) (Customer, bool) {
	var active []Customer
	for _, c := range p.Customers {
		if activeAt(c.EffectiveFrom, c.EffectiveTo, at) {
			active = append(active, c)
		}
	}
	if len(active) == 0 {
		return Customer{}, false
	}
	if idx < 0 {
		idx = -idx
	}
	return active[idx%len(active)], true
}
