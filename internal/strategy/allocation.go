package strategy

import (
	"github.com/shopspring/decimal"

	"SpotSim/internal/model"
)

// Split is a hold/sell percentage pair.
type Split struct {
	HoldPct int
	SellPct int
}

// Allocations maps each trend to its hold/sell split.
var Allocations = map[model.Trend]Split{
	model.TrendUp:   {HoldPct: 80, SellPct: 20},
	model.TrendDown: {HoldPct: 30, SellPct: 70},
}

var hundred = decimal.NewFromInt(100)

// Allocate splits the investment according to the trend.
func Allocate(trend model.Trend, investment decimal.Decimal) model.Allocation {
	split, ok := Allocations[trend]
	if !ok {
		split = Allocations[model.TrendDown]
	}
	return model.Allocation{
		HoldPct:    split.HoldPct,
		SellPct:    split.SellPct,
		HoldAmount: investment.Mul(decimal.NewFromInt(int64(split.HoldPct))).Div(hundred),
		SellAmount: investment.Mul(decimal.NewFromInt(int64(split.SellPct))).Div(hundred),
	}
}
