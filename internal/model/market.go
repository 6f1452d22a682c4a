package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PricePoint is the part of a candle the simulator keeps: open time and close price.
type PricePoint struct {
	Time  time.Time       `json:"time"`
	Close decimal.Decimal `json:"close"`
}

// PriceSeries holds chronologically ordered closes for one symbol.
// An empty series means no usable data was retrieved.
type PriceSeries struct {
	Symbol string       `json:"symbol"`
	Points []PricePoint `json:"points"`
}

// Len returns the number of points.
func (s PriceSeries) Len() int { return len(s.Points) }

// Empty reports whether the series has no points.
func (s PriceSeries) Empty() bool { return len(s.Points) == 0 }

// Last returns the most recent point. The series must not be empty.
func (s PriceSeries) Last() PricePoint { return s.Points[len(s.Points)-1] }

// Closes returns the close prices as float64 for indicator math.
func (s PriceSeries) Closes() []float64 {
	closes := make([]float64, len(s.Points))
	for i, p := range s.Points {
		closes[i] = p.Close.InexactFloat64()
	}
	return closes
}

// CloseDecimals returns the close prices as exact decimals.
func (s PriceSeries) CloseDecimals() []decimal.Decimal {
	closes := make([]decimal.Decimal, len(s.Points))
	for i, p := range s.Points {
		closes[i] = p.Close
	}
	return closes
}

// Validate checks strictly increasing timestamps and positive closes.
func (s PriceSeries) Validate() error {
	for i, p := range s.Points {
		if !p.Close.IsPositive() {
			return fmt.Errorf("non-positive close %s at index %d", p.Close, i)
		}
		if i > 0 && !p.Time.After(s.Points[i-1].Time) {
			return fmt.Errorf("timestamp %s at index %d is not after %s", p.Time, i, s.Points[i-1].Time)
		}
	}
	return nil
}
