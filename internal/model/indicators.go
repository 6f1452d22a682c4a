package model

import (
	"bytes"
	"strconv"

	"github.com/shopspring/decimal"
)

// MASeries is a moving-average series aligned with its PriceSeries.
// Positions before Window-1 have no value.
// Values feed charts; Exact, when set, holds the same means in decimal and is used for comparisons.
type MASeries struct {
	Window int
	Values []float64
	Exact  []decimal.Decimal
}

// Defined reports whether position i carries a value.
func (m MASeries) Defined(i int) bool {
	return m.Window > 0 && i >= m.Window-1 && i < len(m.Values)
}

// At returns the value at position i and whether it is defined.
func (m MASeries) At(i int) (float64, bool) {
	if !m.Defined(i) {
		return 0, false
	}
	return m.Values[i], true
}

// ExactAt returns the decimal mean at position i. ok is false when the position is
// undefined or the series carries no decimal values.
func (m MASeries) ExactAt(i int) (decimal.Decimal, bool) {
	if !m.Defined(i) || i >= len(m.Exact) {
		return decimal.Zero, false
	}
	return m.Exact[i], true
}

// DefinedCount returns how many positions carry a value.
func (m MASeries) DefinedCount() int {
	if m.Window <= 0 || len(m.Values) < m.Window {
		return 0
	}
	return len(m.Values) - m.Window + 1
}

// MarshalJSON renders undefined positions as null so chart consumers keep alignment.
func (m MASeries) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('[')
	for i := range m.Values {
		if i > 0 {
			b.WriteByte(',')
		}
		if v, ok := m.At(i); ok {
			b.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
		} else {
			b.WriteString("null")
		}
	}
	b.WriteByte(']')
	return b.Bytes(), nil
}

// IndicatorSeries holds the short and long moving averages.
type IndicatorSeries struct {
	Short MASeries `json:"ma_short"`
	Long  MASeries `json:"ma_long"`
}

// Len returns the aligned length.
func (s IndicatorSeries) Len() int { return len(s.Long.Values) }
