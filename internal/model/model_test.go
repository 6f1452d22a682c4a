package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSimulationRequest(t *testing.T) {
	tests := []struct {
		name       string
		symbol     string
		investment string
		pct        string
		wantSymbol string
		wantErr    bool
	}{
		{"normalizes symbol", "  btcUsdt ", "20", "2", "BTCUSDT", false},
		{"minimum values", "ETHUSDT", "1", "0.1", "ETHUSDT", false},
		{"empty symbol", "  ", "20", "2", "", true},
		{"separator in symbol", "BTC/USDT", "20", "2", "", true},
		{"non ascii symbol", "BTCÜSDT", "20", "2", "", true},
		{"investment below minimum", "BTCUSDT", "0.99", "2", "", true},
		{"profit below minimum", "BTCUSDT", "20", "0.09", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := NewSimulationRequest(tt.symbol, decimal.RequireFromString(tt.investment), decimal.RequireFromString(tt.pct), true)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSymbol, req.Symbol)
			assert.True(t, req.ShowPlot)
		})
	}
}

func TestPriceSeriesValidate(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	p := func(h int, c int64) PricePoint {
		return PricePoint{Time: t0.Add(time.Duration(h) * time.Hour), Close: decimal.NewFromInt(c)}
	}

	assert.NoError(t, PriceSeries{}.Validate())
	assert.NoError(t, PriceSeries{Points: []PricePoint{p(0, 1), p(1, 2)}}.Validate())
	assert.Error(t, PriceSeries{Points: []PricePoint{p(0, 1), p(0, 2)}}.Validate())
	assert.Error(t, PriceSeries{Points: []PricePoint{p(1, 1), p(0, 2)}}.Validate())
	assert.Error(t, PriceSeries{Points: []PricePoint{p(0, 0)}}.Validate())

	s := PriceSeries{Symbol: "X", Points: []PricePoint{p(0, 3), p(1, 5)}}
	assert.Equal(t, 2, s.Len())
	assert.False(t, s.Empty())
	assert.Equal(t, []float64{3, 5}, s.Closes())
	assert.Equal(t, "5", s.Last().Close.String())
}

func TestMASeries(t *testing.T) {
	m := MASeries{Window: 3, Values: []float64{0, 0, 2, 3}}
	assert.False(t, m.Defined(1))
	assert.True(t, m.Defined(2))
	assert.False(t, m.Defined(4))
	assert.Equal(t, 2, m.DefinedCount())

	v, ok := m.At(3)
	assert.True(t, ok)
	assert.Equal(t, 3.0, v)

	short := MASeries{Window: 5, Values: make([]float64, 3)}
	assert.Equal(t, 0, short.DefinedCount())
}
