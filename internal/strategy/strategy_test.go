package strategy

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SpotSim/internal/model"
)

func indicators(short, long []float64, shortWindow, longWindow int) model.IndicatorSeries {
	return model.IndicatorSeries{
		Short: model.MASeries{Window: shortWindow, Values: short},
		Long:  model.MASeries{Window: longWindow, Values: long},
	}
}

func TestClassifyTrend(t *testing.T) {
	tests := []struct {
		name  string
		short []float64
		long  []float64
		want  model.Trend
	}{
		{"short above long", []float64{0, 11, 0}, []float64{0, 10, 0}, model.TrendUp},
		{"short below long", []float64{0, 9, 0}, []float64{0, 10, 0}, model.TrendDown},
		{"equal is down", []float64{0, 10, 10}, []float64{0, 10, 10}, model.TrendDown},
		{"last sample ignored", []float64{0, 9, 100}, []float64{0, 10, 1}, model.TrendDown},
		{"second to last decides", []float64{0, 12, 1}, []float64{0, 10, 100}, model.TrendUp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ClassifyTrend(indicators(tt.short, tt.long, 1, 2))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClassifyTrend_DecimalTieIsDown(t *testing.T) {
	// Float means that drifted apart by rounding must not decide the trend.
	tie := decimal.RequireFromString("0.3")
	ind := indicators([]float64{0, 0.30000000000000004, 0}, []float64{0, 0.3, 0}, 1, 2)
	ind.Short.Exact = []decimal.Decimal{tie, tie, tie}
	ind.Long.Exact = []decimal.Decimal{tie, tie, tie}

	got, err := ClassifyTrend(ind)
	require.NoError(t, err)
	assert.Equal(t, model.TrendDown, got)

	ind.Short.Exact[1] = decimal.RequireFromString("0.30000001")
	got, err = ClassifyTrend(ind)
	require.NoError(t, err)
	assert.Equal(t, model.TrendUp, got)
}

func TestClassifyTrend_TooFewPoints(t *testing.T) {
	// Long window 3 over 3 points: only the last index is defined.
	_, err := ClassifyTrend(indicators([]float64{1, 2, 3}, []float64{1, 2, 3}, 2, 3))
	assert.ErrorIs(t, err, ErrTooFewPoints)

	_, err = ClassifyTrend(model.IndicatorSeries{})
	assert.ErrorIs(t, err, ErrTooFewPoints)
}

func TestAllocate_Table(t *testing.T) {
	investment := decimal.NewFromInt(20)

	up := Allocate(model.TrendUp, investment)
	assert.Equal(t, 80, up.HoldPct)
	assert.Equal(t, 20, up.SellPct)
	assert.True(t, up.HoldAmount.Equal(decimal.NewFromInt(16)), up.HoldAmount.String())
	assert.True(t, up.SellAmount.Equal(decimal.NewFromInt(4)), up.SellAmount.String())

	down := Allocate(model.TrendDown, investment)
	assert.Equal(t, 30, down.HoldPct)
	assert.Equal(t, 70, down.SellPct)
	assert.True(t, down.HoldAmount.Equal(decimal.NewFromInt(6)))
	assert.True(t, down.SellAmount.Equal(decimal.NewFromInt(14)))
}

func TestAllocate_SumsToInvestment(t *testing.T) {
	investments := []string{"1", "20", "33.33", "1234.5678", "0.01", "99999.99"}
	for _, trend := range []model.Trend{model.TrendUp, model.TrendDown} {
		for _, s := range investments {
			inv := decimal.RequireFromString(s)
			a := Allocate(trend, inv)
			assert.Equal(t, 100, a.HoldPct+a.SellPct)
			assert.True(t, a.HoldAmount.Add(a.SellAmount).Equal(inv),
				"%s %s: %s + %s != %s", trend, s, a.HoldAmount, a.SellAmount, inv)
		}
	}
}
