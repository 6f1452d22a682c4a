// Package export writes simulation results as flat CSV rows.
package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"SpotSim/internal/model"
)

// Header is the CSV column order.
var Header = []string{
	"id", "computed_at", "symbol", "current_price", "trend",
	"investment", "profit_pct", "target_price", "token_amount", "estimated_profit",
	"hold_pct", "hold_amount", "sell_pct", "sell_amount",
}

// Row flattens a result into CSV fields matching Header.
func Row(res model.SimulationResult) []string {
	return []string{
		res.ID,
		res.ComputedAt.UTC().Format(time.RFC3339),
		res.Symbol,
		res.CurrentPrice.StringFixed(8),
		string(res.Trend),
		res.Investment.StringFixed(2),
		res.ProfitPct.String(),
		res.TargetPrice.StringFixed(8),
		res.TokenAmount.StringFixed(8),
		res.EstimatedProfit.StringFixed(2),
		strconv.Itoa(res.Allocation.HoldPct),
		res.Allocation.HoldAmount.StringFixed(2),
		strconv.Itoa(res.Allocation.SellPct),
		res.Allocation.SellAmount.StringFixed(2),
	}
}

// WriteCSV writes the header followed by one row per result.
func WriteCSV(w io.Writer, results ...model.SimulationResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return errors.Wrap(err, "write csv header")
	}
	for _, res := range results {
		if err := cw.Write(Row(res)); err != nil {
			return errors.Wrapf(err, "write csv row %s", res.ID)
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flush csv")
}
