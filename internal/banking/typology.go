package banking

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rawblock/datasynth-engine/internal/seed"
)

// Typology is the closed set of AML scenarios the injector can overlay,
// ported from original_source/crates/datasynth-banking/src/typologies.
type Typology int

const (
	Structuring Typology = iota
	Layering
	RapidMovement
	Funnel
	Shell
	Smurfing
)

func (t Typology) String() string {
	return [...]string{"Structuring", "Layering", "RapidMovement", "Funnel", "Shell", "Smurfing"}[t]
}

// Sophistication scales a scenario's time-spread and spoofing intensity.
type Sophistication int

const (
	Basic Sophistication = iota
	Intermediate
	Advanced
)

// sophisticationProfile derives the concrete scenario parameters for a
// sophistication tier, per spec §4.6 / §8.3.
type sophisticationProfile struct {
	DaysSpread        int
	DepositCount      int
	SpoofingIntensity float64
}

func profileFor(level Sophistication) sophisticationProfile {
	switch level {
	case Basic:
		return sophisticationProfile{DaysSpread: 2, DepositCount: 3, SpoofingIntensity: 0.1}
	case Intermediate:
		return sophisticationProfile{DaysSpread: 7, DepositCount: 6, SpoofingIntensity: 0.35}
	default: // Advanced
		return sophisticationProfile{DaysSpread: 21, DepositCount: 12, SpoofingIntensity: 0.7}
	}
}

// ScenarioConfig parameterizes one typology injection.
type ScenarioConfig struct {
	Typology       Typology
	Sophistication Sophistication
	StartDate      time.Time
	TargetAmount   decimal.Decimal
}

// TypologyInjector overlays signature transaction sequences for each closed
// AML typology onto an account, tagging every emitted transaction with
// ground-truth labels.
type TypologyInjector struct {
	factory *seed.Factory
	counter uint64
}

func NewTypologyInjector(factory *seed.Factory) *TypologyInjector {
	return &TypologyInjector{factory: factory}
}

// Inject builds the signature transaction sequence for cfg against account,
// tagged with a fresh scenario id.
func (inj *TypologyInjector) Inject(account Account, cfg ScenarioConfig) []Transaction {
	stream := inj.factory.Stream(seed.TagAnomaly, inj.counter)
	inj.counter++
	scenarioID := stream.ID().String()
	profile := profileFor(cfg.Sophistication)

	switch cfg.Typology {
	case Structuring:
		return inj.structuring(account, cfg, profile, scenarioID)
	case Smurfing:
		return inj.smurfing(account, cfg, profile, scenarioID)
	case RapidMovement:
		return inj.rapidMovement(account, cfg, profile, scenarioID)
	case Layering:
		return inj.layering(account, cfg, profile, scenarioID)
	case Funnel:
		return inj.funnel(account, cfg, profile, scenarioID)
	default: // Shell
		return inj.shell(account, cfg, profile, scenarioID)
	}
}

func (inj *TypologyInjector) nextStream() *seed.Stream {
	s := inj.factory.Stream(seed.TagAnomaly, 9_000_000+inj.counter)
	inj.counter++
	return s
}

// structuring books DepositCount equal cash deposits just under the 10,000
// reporting threshold (each 85-95% of it), spread over DaysSpread days.
// TargetAmount is not used: the total is DepositCount times that amount.
func (inj *TypologyInjector) structuring(account Account, cfg ScenarioConfig, p sophisticationProfile, scenarioID string) []Transaction {
	threshold := decimal.NewFromInt(10000)
	perDeposit := threshold.Mul(decimal.NewFromFloat(0.85 + 0.1*inj.nextStream().Rand().Float64()))
	var out []Transaction
	for i := 0; i < p.DepositCount; i++ {
		s := inj.nextStream()
		dayOffset := i * p.DaysSpread / max(1, p.DepositCount-1)
		tx := Transaction{
			ID:              s.ID(),
			AccountID:       account.ID,
			Timestamp:       cfg.StartDate.AddDate(0, 0, dayOffset),
			Amount:          perDeposit,
			Direction:       Inbound,
			Channel:         Cash,
			Category:        CategoryCashDeposit,
			Typology:        typologyPtr(Structuring),
			ScenarioID:      scenarioID,
			SequenceIndex:   i,
			LaunderingStage: "placement",
		}
		applySpoofing(&tx, p, s)
		out = append(out, tx)
	}
	return out
}

// smurfing fans TargetAmount out across many small deposits made by
// distinct agents on behalf of a single controlling beneficiary.
func (inj *TypologyInjector) smurfing(account Account, cfg ScenarioConfig, p sophisticationProfile, scenarioID string) []Transaction {
	count := p.DepositCount * 2
	share := cfg.TargetAmount.Div(decimal.NewFromInt(int64(count)))
	var out []Transaction
	for i := 0; i < count; i++ {
		s := inj.nextStream()
		tx := Transaction{
			ID:              s.ID(),
			AccountID:       account.ID,
			Timestamp:       cfg.StartDate.AddDate(0, 0, s.Rand().Intn(p.DaysSpread+1)),
			Amount:          share,
			Direction:       Inbound,
			Channel:         ACH,
			Category:        CategoryTransfer,
			CounterpartyRef: fmt.Sprintf("AGENT-%03d", i),
			Typology:        typologyPtr(Smurfing),
			ScenarioID:      scenarioID,
			SequenceIndex:   i,
			LaunderingStage: "placement",
		}
		applySpoofing(&tx, p, s)
		out = append(out, tx)
	}
	return out
}

// rapidMovement books a deposit followed by an outbound transfer of nearly
// the full balance within hours, repeated across the scenario's spread.
func (inj *TypologyInjector) rapidMovement(account Account, cfg ScenarioConfig, p sophisticationProfile, scenarioID string) []Transaction {
	var out []Transaction
	rounds := max(1, p.DepositCount/2)
	for i := 0; i < rounds; i++ {
		inS := inj.nextStream()
		outS := inj.nextStream()
		depositTime := cfg.StartDate.AddDate(0, 0, i*p.DaysSpread/max(1, rounds-1))
		deposit := cfg.TargetAmount.Div(decimal.NewFromInt(int64(rounds)))
		outTx := deposit.Mul(decimal.NewFromFloat(0.9 + 0.09*outS.Rand().Float64()))

		dep := Transaction{
			ID: inS.ID(), AccountID: account.ID, Timestamp: depositTime, Amount: deposit,
			Direction: Inbound, Channel: Wire, Category: CategoryTransfer,
			Typology: typologyPtr(RapidMovement), ScenarioID: scenarioID, SequenceIndex: i * 2,
			LaunderingStage: "layering",
		}
		out1 := Transaction{
			ID: outS.ID(), AccountID: account.ID, Timestamp: depositTime.Add(2 * time.Hour), Amount: outTx,
			Direction: Outbound, Channel: Wire, Category: CategoryTransfer,
			Typology: typologyPtr(RapidMovement), ScenarioID: scenarioID, SequenceIndex: i*2 + 1,
			LaunderingStage: "layering",
		}
		applySpoofing(&dep, p, inS)
		applySpoofing(&out1, p, outS)
		out = append(out, dep, out1)
	}
	return out
}

// layering interposes a chain of transfers between placement and final
// integration, each hop retaining most of the prior amount.
func (inj *TypologyInjector) layering(account Account, cfg ScenarioConfig, p sophisticationProfile, scenarioID string) []Transaction {
	var out []Transaction
	remaining := cfg.TargetAmount
	for i := 0; i < p.DepositCount; i++ {
		s := inj.nextStream()
		retained := remaining.Mul(decimal.NewFromFloat(0.92 + 0.05*s.Rand().Float64()))
		tx := Transaction{
			ID: s.ID(), AccountID: account.ID,
			Timestamp:       cfg.StartDate.AddDate(0, 0, i*p.DaysSpread/max(1, p.DepositCount-1)),
			Amount:          retained,
			Direction:       Outbound,
			Channel:         Wire,
			Category:        CategoryTransfer,
			Typology:        typologyPtr(Layering),
			ScenarioID:      scenarioID,
			SequenceIndex:   i,
			LaunderingStage: "layering",
		}
		applySpoofing(&tx, p, s)
		out = append(out, tx)
		remaining = retained
	}
	return out
}

// funnel aggregates many small inbound transfers from disparate
// counterparties into one account before a large outbound sweep.
func (inj *TypologyInjector) funnel(account Account, cfg ScenarioConfig, p sophisticationProfile, scenarioID string) []Transaction {
	var out []Transaction
	share := cfg.TargetAmount.Div(decimal.NewFromInt(int64(p.DepositCount)))
	for i := 0; i < p.DepositCount; i++ {
		s := inj.nextStream()
		tx := Transaction{
			ID: s.ID(), AccountID: account.ID,
			Timestamp:       cfg.StartDate.AddDate(0, 0, i*p.DaysSpread/max(1, p.DepositCount-1)),
			Amount:          share,
			Direction:       Inbound,
			Channel:         ACH,
			Category:        CategoryTransfer,
			CounterpartyRef: fmt.Sprintf("FEEDER-%03d", i),
			Typology:        typologyPtr(Funnel),
			ScenarioID:      scenarioID,
			SequenceIndex:   i,
			LaunderingStage: "placement",
		}
		applySpoofing(&tx, p, s)
		out = append(out, tx)
	}
	sweepS := inj.nextStream()
	sweep := Transaction{
		ID: sweepS.ID(), AccountID: account.ID,
		Timestamp: cfg.StartDate.AddDate(0, 0, p.DaysSpread), Amount: cfg.TargetAmount,
		Direction: Outbound, Channel: Wire, Category: CategoryTransfer,
		Typology: typologyPtr(Funnel), ScenarioID: scenarioID, SequenceIndex: p.DepositCount,
		LaunderingStage: "integration",
	}
	applySpoofing(&sweep, p, sweepS)
	return append(out, sweep)
}

// shell books a single large round-trip transfer characteristic of a
// shell-company pass-through with minimal real economic activity.
func (inj *TypologyInjector) shell(account Account, cfg ScenarioConfig, p sophisticationProfile, scenarioID string) []Transaction {
	inS := inj.nextStream()
	outS := inj.nextStream()
	in := Transaction{
		ID: inS.ID(), AccountID: account.ID, Timestamp: cfg.StartDate, Amount: cfg.TargetAmount,
		Direction: Inbound, Channel: Wire, Category: CategoryTransfer,
		Typology: typologyPtr(Shell), ScenarioID: scenarioID, SequenceIndex: 0, LaunderingStage: "integration",
	}
	out := Transaction{
		ID: outS.ID(), AccountID: account.ID, Timestamp: cfg.StartDate.AddDate(0, 0, p.DaysSpread), Amount: cfg.TargetAmount,
		Direction: Outbound, Channel: Wire, Category: CategoryTransfer,
		Typology: typologyPtr(Shell), ScenarioID: scenarioID, SequenceIndex: 1, LaunderingStage: "integration",
	}
	applySpoofing(&in, p, inS)
	applySpoofing(&out, p, outS)
	return []Transaction{in, out}
}

func applySpoofing(tx *Transaction, p sophisticationProfile, s *seed.Stream) {
	if s.Rand().Bool(p.SpoofingIntensity) {
		tx.Spoofed = true
		tx.SpoofingIntensity = p.SpoofingIntensity
	}
}

func typologyPtr(t Typology) *Typology { return &t }
