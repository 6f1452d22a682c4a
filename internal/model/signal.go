package model

import "github.com/shopspring/decimal"

// Trend is the binary direction derived from the moving averages.
type Trend string

const (
	TrendUp   Trend = "UP"
	TrendDown Trend = "DOWN"
)

// Allocation is the suggested split of an investment between holding and selling.
type Allocation struct {
	HoldPct    int             `json:"hold_pct"`
	SellPct    int             `json:"sell_pct"`
	HoldAmount decimal.Decimal `json:"hold_amount"`
	SellAmount decimal.Decimal `json:"sell_amount"`
}
