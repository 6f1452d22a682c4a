package strategy

import (
	"errors"

	"SpotSim/internal/model"
)

// ErrTooFewPoints is returned when the long moving average is not defined at the sample index.
var ErrTooFewPoints = errors.New("not enough defined moving-average points to classify trend")

// ClassifyTrend compares the short and long moving averages at the second-to-last candle.
// The last candle is usually still forming, so it is skipped.
// Equal averages classify as DOWN. Decimal means are compared when both series carry them.
func ClassifyTrend(ind model.IndicatorSeries) (model.Trend, error) {
	idx := ind.Len() - 2
	if short, ok := ind.Short.ExactAt(idx); ok {
		if long, ok := ind.Long.ExactAt(idx); ok {
			if short.GreaterThan(long) {
				return model.TrendUp, nil
			}
			return model.TrendDown, nil
		}
	}

	long, ok := ind.Long.At(idx)
	if !ok {
		return "", ErrTooFewPoints
	}
	short, ok := ind.Short.At(idx)
	if !ok {
		return "", ErrTooFewPoints
	}
	if short > long {
		return model.TrendUp, nil
	}
	return model.TrendDown, nil
}
