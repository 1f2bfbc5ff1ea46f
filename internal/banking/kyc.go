// Package banking generates KYC-profiled customers, accounts and
// transaction corpora overlaid with closed-set AML typologies, grounded on
// the teacher's risk-scoring conventions (inverted from detection to
// generation) and original_source/crates/
// datasynth-banking/src/{generators,personas,typologies,labels}.
package banking

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/rawblock/datasynth-engine/internal/seed"
)

// Persona is the closed set of customer behavioral archetypes, ported from
// the original's personas/business.rs and personas/trust.rs.
type Persona int

const (
	Retail Persona = iota
	SmallBusiness
	HighNetWorth
	Trust
	Corporate
)

func (p Persona) String() string {
	return [...]string{"Retail", "SmallBusiness", "HighNetWorth", "Trust", "Corporate"}[p]
}

// personaWeights is the default population mix across personas.
var personaWeights = map[Persona]float64{
	Retail:        0.62,
	SmallBusiness: 0.22,
	HighNetWorth:  0.06,
	Trust:         0.03,
	Corporate:     0.07,
}

// KYCProfile is the declared-vs-observed customer onboarding record.
type KYCProfile struct {
	DeclaredSourceOfFunds    string
	TurnoverBand             string
	CashIntensity            float64
	GeographicExposure       string
	BeneficialOwnerComplexity int
	Truthful                 bool
}

// Customer is one onboarded banking customer.
type Customer struct {
	ID      uuid.UUID
	Name    string
	Persona Persona
	KYC     KYCProfile
}

var sourceOfFunds = []string{"Salary", "Business Income", "Investment Returns", "Inheritance", "Property Sale"}
var turnoverBands = []string{"<10k", "10k-100k", "100k-1M", "1M-10M", ">10M"}
var geographies = []string{"Domestic", "Regional", "International-LowRisk", "International-HighRisk"}

// CustomerGenerator produces deterministic, persona-distributed customers.
type CustomerGenerator struct {
	factory *seed.Factory
	counter uint64
}

func NewCustomerGenerator(factory *seed.Factory) *CustomerGenerator {
	return &CustomerGenerator{factory: factory}
}

func (g *CustomerGenerator) Next() Customer {
	// Counter 0 of TagBanking belongs to the CounterpartyPool, so customer
	// streams start at 1.
	stream := g.factory.Stream(seed.TagBanking, 1+g.counter)
	g.counter++
	rng := stream.Rand()

	persona := pickPersona(rng.Float64())
	kyc := KYCProfile{
		DeclaredSourceOfFunds:     sourceOfFunds[rng.Intn(len(sourceOfFunds))],
		TurnoverBand:              turnoverBands[rng.Intn(len(turnoverBands))],
		CashIntensity:             rng.Float64(),
		GeographicExposure:        geographies[rng.Intn(len(geographies))],
		BeneficialOwnerComplexity: rng.Intn(4),
		Truthful:                 rng.Bool(0.94),
	}

	return Customer{
		ID:      stream.ID(),
		Name:    fmt.Sprintf("%s Customer %06d", persona, g.counter),
		Persona: persona,
		KYC:     kyc,
	}
}

func pickPersona(u float64) Persona {
	cumulative := 0.0
	order := []Persona{Retail, SmallBusiness, HighNetWorth, Trust, Corporate}
	for _, p := range order {
		cumulative += personaWeights[p]
		if u < cumulative {
			return p
		}
	}
	return Corporate
}
