package collector

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"SpotSim/internal/model"
)

// MockFetcher returns a fixed series and counts calls, for development and testing.
type MockFetcher struct {
	Series model.PriceSeries
	calls  atomic.Int64
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchPrices(_ context.Context, symbol string, limit int) model.PriceSeries {
	m.calls.Add(1)
	points := m.Series.Points
	if limit > 0 && len(points) > limit {
		points = points[len(points)-limit:]
	}
	return model.PriceSeries{Symbol: symbol, Points: points}
}

// Calls returns how many times FetchPrices ran.
func (m *MockFetcher) Calls() int { return int(m.calls.Load()) }

// GenerateLinearSeries builds count hourly points whose closes move linearly from first to last.
func GenerateLinearSeries(symbol string, start time.Time, count int, first, last float64) model.PriceSeries {
	s := model.PriceSeries{Symbol: symbol, Points: make([]model.PricePoint, count)}
	for i := 0; i < count; i++ {
		p := first
		if count > 1 {
			p = first + (last-first)*float64(i)/float64(count-1)
		}
		s.Points[i] = model.PricePoint{
			Time:  start.Add(time.Duration(i) * time.Hour),
			Close: decimal.NewFromFloat(p),
		}
	}
	return s
}
