package banking

import (
	"fmt"

	"github.com/rawblock/datasynth-engine/internal/seed"
)

// CounterpartyKind is the closed set of counterparty categories a banking
// transaction can be drawn against.
type CounterpartyKind int

const (
	CounterpartyMerchant CounterpartyKind = iota
	CounterpartyEmployer
	CounterpartyUtility
	CounterpartyAgency
)

func (k CounterpartyKind) String() string {
	return [...]string{"Merchant", "Employer", "Utility", "Agency"}[k]
}

// Counterparty is one named entity a transaction can reference as its
// other side (payee/payer), independent of the banking customer pool.
type Counterparty struct {
	Ref  string
	Kind CounterpartyKind
	Name string
}

var counterpartyNames = map[CounterpartyKind][]string{
	CounterpartyMerchant: {"Riverside Market", "Union Hardware", "Cascade Outfitters", "Harborline Cafe", "Meridian Electronics"},
	CounterpartyEmployer: {"Northgate Logistics Inc", "Ashford & Barrow LLP", "Cobalt Systems Group", "Fieldstone Manufacturing"},
	CounterpartyUtility:  {"Lakeshore Power & Light", "Delta Water Authority", "Summit Gas Co", "Regional Telecom"},
	CounterpartyAgency:   {"County Revenue Office", "State Licensing Board", "Federal Benefits Admin"},
}

// CounterpartyPool is the deterministic, read-only corpus of named
// counterparties transactions are drawn against — merchants, employers,
// utilities and agencies, generated once per run from seed.Stream(TagBanking, 0)
// independent of the per-customer counter space.
type CounterpartyPool struct {
	byKind map[CounterpartyKind][]Counterparty
}

// NewCounterpartyPool builds the pool deterministically from factory; the
// same factory always yields the same refs in the same order.
func NewCounterpartyPool(factory *seed.Factory) *CounterpartyPool {
	stream := factory.Stream(seed.TagBanking, 0)
	rng := stream.Rand()

	pool := &CounterpartyPool{byKind: make(map[CounterpartyKind][]Counterparty, len(counterpartyNames))}
	kinds := []CounterpartyKind{CounterpartyMerchant, CounterpartyEmployer, CounterpartyUtility, CounterpartyAgency}
	for _, kind := range kinds {
		names := counterpartyNames[kind]
		entries := make([]Counterparty, len(names))
		for i, name := range names {
			entries[i] = Counterparty{
				Ref:  fmt.Sprintf("%s-%04d", kindPrefix(kind), rng.Intn(9000)+1000),
				Kind: kind,
				Name: name,
			}
		}
		pool.byKind[kind] = entries
	}
	return pool
}

func kindPrefix(k CounterpartyKind) string {
	switch k {
	case CounterpartyMerchant:
		return "MER"
	case CounterpartyEmployer:
		return "EMP"
	case CounterpartyUtility:
		return "UTL"
	case CounterpartyAgency:
		return "AGY"
	default:
		return "CPY"
	}
}

// Pick draws a counterparty appropriate for the given transaction category,
// falling back to a merchant for categories with no dedicated kind.
func (p *CounterpartyPool) Pick(category Category, rng *seed.StreamRand) Counterparty {
	kind := CounterpartyMerchant
	switch category {
	case CategoryPayroll:
		kind = CounterpartyEmployer
	case CategoryUtility:
		kind = CounterpartyUtility
	case CategoryRent:
		kind = CounterpartyAgency
	}
	entries := p.byKind[kind]
	if len(entries) == 0 {
		return Counterparty{}
	}
	return entries[rng.Intn(len(entries))]
}
