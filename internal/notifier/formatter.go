package notifier

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"SpotSim/internal/model"
)

// FormatSimulation renders a result as an HTML Telegram message.
func FormatSimulation(res model.SimulationResult) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("📊 <b>SpotSim</b> | %s\n\n", res.Symbol))
	b.WriteString(fmt.Sprintf("Current price: %s\n", res.CurrentPrice.StringFixed(8)))
	b.WriteString(fmt.Sprintf("Trend: %s %s\n", res.Trend, trendIcon(res.Trend)))
	b.WriteString(fmt.Sprintf("Target price: %s (+%s%%)\n", res.TargetPrice.StringFixed(8), res.ProfitPct.String()))
	b.WriteString(fmt.Sprintf("Tokens: %s\n", res.TokenAmount.StringFixed(8)))
	b.WriteString(fmt.Sprintf("Estimated profit: $%s\n\n", res.EstimatedProfit.StringFixed(2)))
	b.WriteString(fmt.Sprintf("💰 <b>Suggested action:</b> %s\n", SuggestedAction(res.Allocation)))
	b.WriteString(fmt.Sprintf("\n<i>%s UTC</i>", res.ComputedAt.UTC().Format("2006-01-02 15:04")))

	return b.String()
}

// SuggestedAction renders an allocation as "HOLD 80% ($16.00), SELL 20% ($4.00)".
func SuggestedAction(a model.Allocation) string {
	return fmt.Sprintf("HOLD %d%% (%s), SELL %d%% (%s)",
		a.HoldPct, dollars(a.HoldAmount), a.SellPct, dollars(a.SellAmount))
}

// FormatFailure renders a failed simulation.
func FormatFailure(symbol string, err error) string {
	return fmt.Sprintf("❌ <b>Simulation failed</b> | %s\n\n%s", symbol, escape(err.Error()))
}

// HelpText lists the supported commands.
func HelpText() string {
	var b strings.Builder
	b.WriteString("Available commands:\n")
	b.WriteString("• /simulate SYMBOL [INVESTMENT] [PROFIT_PCT]\n")
	b.WriteString("   e.g. /simulate BTCUSDT 20 2\n")
	b.WriteString("• /help")
	return b.String()
}

func trendIcon(t model.Trend) string {
	if t == model.TrendUp {
		return "📈"
	}
	return "📉"
}

func dollars(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escape(s string) string { return htmlEscaper.Replace(s) }
