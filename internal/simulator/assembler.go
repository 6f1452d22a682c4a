package simulator

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"SpotSim/internal/model"
)

var hundred = decimal.NewFromInt(100)

// Input is everything the assembler needs to build a result.
type Input struct {
	Symbol       string
	CurrentPrice decimal.Decimal
	Investment   decimal.Decimal
	ProfitPct    decimal.Decimal
	Trend        model.Trend
	Allocation   model.Allocation

	// ID and ComputedAt are generated when left empty.
	ID         string
	ComputedAt time.Time
}

// Assemble derives token amount, target price and estimated profit.
//
//	token_amount     = investment / current_price
//	target_price     = current_price * (1 + profit_pct/100)
//	estimated_profit = token_amount * (target_price - current_price)
func Assemble(in Input) (model.SimulationResult, error) {
	if !in.CurrentPrice.IsPositive() {
		return model.SimulationResult{}, errors.Wrapf(ErrInvalidPrecondition, "current price %s", in.CurrentPrice)
	}
	if !in.Investment.IsPositive() {
		return model.SimulationResult{}, errors.Wrapf(ErrInvalidPrecondition, "investment %s", in.Investment)
	}

	tokens := in.Investment.Div(in.CurrentPrice)
	target := in.CurrentPrice.Mul(decimal.NewFromInt(1).Add(in.ProfitPct.Div(hundred)))
	profit := tokens.Mul(target.Sub(in.CurrentPrice))

	id := in.ID
	if id == "" {
		id = uuid.NewString()
	}
	at := in.ComputedAt
	if at.IsZero() {
		at = time.Now().UTC()
	}

	return model.SimulationResult{
		ID:              id,
		Symbol:          in.Symbol,
		CurrentPrice:    in.CurrentPrice,
		Trend:           in.Trend,
		Investment:      in.Investment,
		ProfitPct:       in.ProfitPct,
		TargetPrice:     target,
		TokenAmount:     tokens,
		EstimatedProfit: profit,
		Allocation:      in.Allocation,
		ComputedAt:      at,
	}, nil
}
