package banking

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/rawblock/datasynth-engine/internal/seed"
)

// AccountType mirrors synth-core/src/models/banking/account_type.rs.
type AccountType int

const (
	Checking AccountType = iota
	Savings
	MoneyMarket
	BusinessOperating
)

// Account is one banking account held by a customer, carrying ground-truth
// mule/funnel flags the evaluation core's ML checks consume as labels.
type Account struct {
	ID         uuid.UUID
	CustomerID uuid.UUID
	Number     string
	Type       AccountType
	MuleFlag   bool
	FunnelFlag bool
}

// AccountGenerator builds 1..N accounts per customer, typed by persona.
type AccountGenerator struct {
	factory *seed.Factory
	counter uint64
}

func NewAccountGenerator(factory *seed.Factory) *AccountGenerator {
	return &AccountGenerator{factory: factory}
}

// GenerateFor returns between 1 and accountCountCeiling(persona) accounts
// (at most 4) for customer, persona-typed.
func (g *AccountGenerator) GenerateFor(customer Customer) []Account {
	stream := g.factory.Stream(seed.TagBanking, 1_000_000+g.counter)
	g.counter++
	rng := stream.Rand()

	count := 1 + rng.Intn(accountCountCeiling(customer.Persona))
	accounts := make([]Account, 0, count)
	for i := 0; i < count; i++ {
		accStream := g.factory.Stream(seed.TagBanking, 1_000_000+g.counter)
		g.counter++
		accounts = append(accounts, Account{
			ID:         accStream.ID(),
			CustomerID: customer.ID,
			Number:     fmt.Sprintf("ACCT-%010d", g.counter),
			Type:       accountTypeFor(customer.Persona, accStream.Rand()),
		})
	}
	return accounts
}

func accountCountCeiling(p Persona) int {
	switch p {
	case Corporate, Trust:
		return 4
	case SmallBusiness:
		return 3
	default:
		return 2
	}
}

func accountTypeFor(p Persona, rng *seed.StreamRand) AccountType {
	if p == SmallBusiness || p == Corporate {
		if rng.Bool(0.7) {
			return BusinessOperating
		}
	}
	switch rng.Intn(3) {
	case 0:
		return Checking
	case 1:
		return Savings
	default:
		return MoneyMarket
	}
}
