package banking

import (
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rawblock/datasynth-engine/internal/seed"
)

// Channel is the closed set of transaction channels.
type Channel int

const (
	ACH Channel = iota
	Wire
	Card
	Cash
	Check
)

func (c Channel) String() string {
	return [...]string{"ACH", "Wire", "Card", "Cash", "Check"}[c]
}

// Category is a coarse spending/income category used by the persona
// spending profile and by the evaluation core's categorical checks.
type Category int

const (
	CategoryPayroll Category = iota
	CategoryRetailPurchase
	CategoryUtility
	CategoryRent
	CategoryTransfer
	CategoryCashWithdrawal
	CategoryCashDeposit
)

func (c Category) String() string {
	return [...]string{"Payroll", "RetailPurchase", "Utility", "Rent", "Transfer", "CashWithdrawal", "CashDeposit"}[c]
}

// Transaction is one generated banking transaction.
type Transaction struct {
	ID              uuid.UUID
	AccountID       uuid.UUID
	Timestamp       time.Time
	Amount          decimal.Decimal
	Direction       Side
	Channel         Channel
	Category        Category
	CounterpartyRef string

	// Ground-truth AML labels, populated only when a TypologyInjector
	// overlays this transaction.
	Typology          *Typology
	ScenarioID        string
	SequenceIndex     int
	LaunderingStage   string
	Spoofed           bool
	SpoofingIntensity float64
}

// Side is the credit/debit direction of a banking transaction.
type Side int

const (
	Inbound Side = iota
	Outbound
)

// personaMonthlyMean is the expected monthly transaction count per persona,
// the center of the negative-binomial daily-count draw.
var personaMonthlyMean = map[Persona]float64{
	Retail:        35,
	SmallBusiness: 140,
	HighNetWorth:  60,
	Trust:         20,
	Corporate:     400,
}

// TransactionGenerator produces a persona-shaped transaction corpus for an
// account over a date range.
type TransactionGenerator struct {
	factory *seed.Factory
	counter uint64
	pool    *CounterpartyPool
}

func NewTransactionGenerator(factory *seed.Factory) *TransactionGenerator {
	return &TransactionGenerator{factory: factory, pool: NewCounterpartyPool(factory)}
}

// GenerateRange produces every transaction for account between start and
// end (inclusive), sampling a daily count from a negative-binomial
// distribution centered on the persona's monthly mean.
func (g *TransactionGenerator) GenerateRange(account Account, persona Persona, start, end time.Time) []Transaction {
	monthlyMean := personaMonthlyMean[persona]
	dailyMean := monthlyMean / 30.0
	// Negative binomial parameterized by r (successes) and p so that the
	// mean matches dailyMean: mean = r(1-p)/p. Fix r=4 (moderate
	// overdispersion) and solve p.
	r := 4.0
	p := r / (r + dailyMean)

	var out []Transaction
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		stream := g.factory.Stream(seed.TagTransaction, 5_000_000+g.counter)
		g.counter++
		rng := stream.Rand()

		weekendMultiplier := 1.0
		if day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			weekendMultiplier = 0.4
		}
		// Inverse-CDF draw from the day's stream:
		// P(0) = p^r, P(k+1) = P(k) * (k+r)/(k+1) * (1-p).
		u := rng.Float64()
		k, prob := 0, math.Pow(p, r)
		cdf := prob
		for u > cdf && prob > 0 {
			prob *= (float64(k) + r) / float64(k+1) * (1 - p)
			k++
			cdf += prob
		}
		count := int(float64(k) * weekendMultiplier)
		for i := 0; i < count; i++ {
			txStream := g.factory.Stream(seed.TagTransaction, 5_000_000+g.counter)
			g.counter++
			txRng := txStream.Rand()
			out = append(out, g.draw(txStream.ID(), account, day, txRng, g.pool))
		}
	}
	return out
}

func (g *TransactionGenerator) draw(id uuid.UUID, account Account, day time.Time, rng *seed.StreamRand, pool *CounterpartyPool) Transaction {
	hour := 8 + rng.Intn(13) // active hours window 08:00-21:00
	ts := time.Date(day.Year(), day.Month(), day.Day(), hour, rng.Intn(60), 0, 0, day.Location())

	direction := Outbound
	if rng.Bool(0.35) {
		direction = Inbound
	}

	category := Category(rng.Intn(7))
	channel := Channel(rng.Intn(5))
	amount := decimal.NewFromFloat(rng.LogNormal(4.0, 1.1)).Round(2)

	var counterpartyRef string
	if pool != nil {
		counterpartyRef = pool.Pick(category, rng).Ref
	}

	return Transaction{
		ID:              id,
		AccountID:       account.ID,
		Timestamp:       ts,
		Amount:          amount,
		Direction:       direction,
		Channel:         channel,
		Category:        category,
		CounterpartyRef: counterpartyRef,
	}
}
