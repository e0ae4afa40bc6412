package journal

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/treasury/positions"
)

var positionsHeader = []string{
	"currency", "liquidity_provider", "net_position", "current_rate",
	"mtm_value_usd", "cost_basis_usd", "unrealized_pnl", "realized_pnl",
	"status", "trade_ids",
}

// WritePositionsCSV writes one row per position. Amounts are rounded to
// cents and rates to six places.
func WritePositionsCSV(w io.Writer, ps []positions.Position) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(positionsHeader); err != nil {
		return err
	}

	for _, p := range ps {
		err := cw.Write([]string{
			string(p.Currency),
			p.LiquidityProvider,
			money(p.NetPosition),
			rate(p.CurrentRate),
			money(p.MTMValue),
			money(p.CostBasisUSD),
			money(p.UnrealizedPnL),
			money(p.RealizedPnL),
			string(p.Status),
			strings.Join(p.TradeIDs, " "),
		})
		if err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func money(x float64) string {
	return decimal.NewFromFloat(x).StringFixed(2)
}

func rate(x float64) string {
	return decimal.NewFromFloat(x).StringFixed(6)
}
