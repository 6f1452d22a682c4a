package model

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
)

// Inbound limits for a simulation request.
var (
	MinInvestment = decimal.NewFromInt(1)
	MinProfitPct  = decimal.RequireFromString("0.1")
)

// SimulationRequest is one user query. Build it with NewSimulationRequest.
type SimulationRequest struct {
	Symbol     string
	Investment decimal.Decimal
	ProfitPct  decimal.Decimal
	ShowPlot   bool
}

// NewSimulationRequest normalizes the symbol to upper case and checks the inbound limits.
func NewSimulationRequest(symbol string, investment, profitPct decimal.Decimal, showPlot bool) (SimulationRequest, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return SimulationRequest{}, fmt.Errorf("symbol is required")
	}
	for _, r := range symbol {
		if r > unicode.MaxASCII || !(unicode.IsUpper(r) || unicode.IsDigit(r)) {
			return SimulationRequest{}, fmt.Errorf("symbol %q must be alphanumeric", symbol)
		}
	}
	if investment.LessThan(MinInvestment) {
		return SimulationRequest{}, fmt.Errorf("investment must be at least %s, got %s", MinInvestment, investment)
	}
	if profitPct.LessThan(MinProfitPct) {
		return SimulationRequest{}, fmt.Errorf("profit target must be at least %s%%, got %s%%", MinProfitPct, profitPct)
	}
	return SimulationRequest{
		Symbol:     symbol,
		Investment: investment,
		ProfitPct:  profitPct,
		ShowPlot:   showPlot,
	}, nil
}

// SimulationResult is the immutable output record handed to presentation and export.
type SimulationResult struct {
	ID              string          `json:"id"`
	Symbol          string          `json:"symbol"`
	CurrentPrice    decimal.Decimal `json:"current_price"`
	Trend           Trend           `json:"trend"`
	Investment      decimal.Decimal `json:"investment"`
	ProfitPct       decimal.Decimal `json:"profit_pct"`
	TargetPrice     decimal.Decimal `json:"target_price"`
	TokenAmount     decimal.Decimal `json:"token_amount"`
	EstimatedProfit decimal.Decimal `json:"estimated_profit"`
	Allocation      Allocation      `json:"allocation"`
	ComputedAt      time.Time       `json:"computed_at"`
}

// Chart carries the series a presentation layer plots next to the result.
type Chart struct {
	Times  []time.Time     `json:"times"`
	Closes []float64       `json:"closes"`
	MA     IndicatorSeries `json:"ma"`
}
