package finance

import (
	"github.com/Rhymond/go-money"

	"github.com/telemim/telemim-ops/internal/shared"
)

// CalculateDailyCost prices one operational day from the current rates.
//
// The truck earns the first-trip rate plus the additional rate for every
// trip beyond the first. Each helper earns the base rate plus the
// additional rate for every trip beyond the second. The supervisor rate
// is flat per day. Lunches are priced per unit.
func CalculateDailyCost(s Settings, trips, helperCount, lunches int) (Breakdown, error) {
	if trips < 1 {
		return Breakdown{}, shared.Refuse("o dia operacional exige ao menos uma viagem")
	}
	if helperCount < 0 || lunches < 0 {
		return Breakdown{}, shared.Refuse("quantidades não podem ser negativas")
	}

	truck := money.New(s.TruckFirstTripCents, money.BRL)
	if extra := trips - 1; extra > 0 {
		add, err := truck.Add(money.New(s.TruckAdditionalTripCents, money.BRL).Multiply(int64(extra)))
		if err != nil {
			return Breakdown{}, err
		}
		truck = add
	}

	perHelper := money.New(s.HelperBaseCents, money.BRL)
	if extra := trips - 2; extra > 0 {
		add, err := perHelper.Add(money.New(s.HelperAdditionalTripCents, money.BRL).Multiply(int64(extra)))
		if err != nil {
			return Breakdown{}, err
		}
		perHelper = add
	}
	helpers := perHelper.Multiply(int64(helperCount))

	supervisor := money.New(s.SupervisorDailyCents, money.BRL)
	lunch := money.New(s.LunchUnitCents, money.BRL).Multiply(int64(lunches))

	total := truck
	for _, part := range []*money.Money{helpers, supervisor, lunch} {
		sum, err := total.Add(part)
		if err != nil {
			return Breakdown{}, err
		}
		total = sum
	}

	return Breakdown{
		TruckCents:      truck.Amount(),
		HelpersCents:    helpers.Amount(),
		SupervisorCents: supervisor.Amount(),
		LunchCents:      lunch.Amount(),
		TotalCents:      total.Amount(),
	}, nil
}

// SplitHelperShare divides a day's helper cost evenly among its helpers.
// Remainder cents go to the earliest names so the shares always sum back
// to the original amount.
func SplitHelperShare(helpersCents int64, helperCount int) ([]int64, error) {
	if helperCount <= 0 {
		return nil, shared.Refuse("não há ajudantes para ratear")
	}
	parts, err := money.New(helpersCents, money.BRL).Split(helperCount)
	if err != nil {
		return nil, err
	}
	shares := make([]int64, len(parts))
	for i, p := range parts {
		shares[i] = p.Amount()
	}
	return shares, nil
}
