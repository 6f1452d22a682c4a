package calculator

import (
	"github.com/cinar/indicator/v2/helper"
	"github.com/shopspring/decimal"
	"github.com/cinar/indicator/v2/trend"

	"SpotSim/internal/model"
)

// Default moving-average windows, in candles.
const (
	ShortWindow = 5
	LongWindow  = 20
)

// CalculateSMA computes the simple moving average of prices over the given period,
// aligned with the input. Positions before period-1 are left undefined.
func CalculateSMA(prices []float64, period int) model.MASeries {
	out := model.MASeries{Window: period, Values: make([]float64, len(prices))}
	if period <= 0 || len(prices) < period {
		return out
	}

	sma := trend.NewSmaWithPeriod[float64](period)
	values := helper.ChanToSlice(sma.Compute(helper.SliceToChan(prices)))

	// The indicator skips its idle period, so the first value belongs to index period-1.
	copy(out.Values[period-1:], values)
	return out
}

// CalculateExactSMA computes the same means as CalculateSMA on decimal closes.
// Sums are exact, so windows of equal closes yield equal means for any window size.
func CalculateExactSMA(closes []decimal.Decimal, period int) []decimal.Decimal {
	out := make([]decimal.Decimal, len(closes))
	if period <= 0 || len(closes) < period {
		return out
	}

	n := decimal.NewFromInt(int64(period))
	sum := decimal.Zero
	for i, c := range closes {
		sum = sum.Add(c)
		if i >= period {
			sum = sum.Sub(closes[i-period])
		}
		if i >= period-1 {
			out[i] = sum.Div(n)
		}
	}
	return out
}

// CalculateIndicators returns the short and long moving averages of the series closes,
// with both float and decimal values.
func CalculateIndicators(series model.PriceSeries, shortWindow, longWindow int) model.IndicatorSeries {
	closes := series.Closes()
	exact := series.CloseDecimals()

	short := CalculateSMA(closes, shortWindow)
	short.Exact = CalculateExactSMA(exact, shortWindow)
	long := CalculateSMA(closes, longWindow)
	long.Exact = CalculateExactSMA(exact, longWindow)
	return model.IndicatorSeries{Short: short, Long: long}
}
