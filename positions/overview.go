package positions

import (
	"math"

	"github.com/rustyeddy/treasury/market"
)

// CurrencySummary is a currency rolled up across liquidity providers.
type CurrencySummary struct {
	Currency      market.Currency `json:"currency"`
	NetPosition   float64         `json:"net_position"`
	CurrentRate   float64         `json:"current_rate"`
	MTMValue      float64         `json:"mtm_value"`
	UnrealizedPnL float64         `json:"unrealized_pnl"`
	RealizedPnL   float64         `json:"realized_pnl"`
	Providers     []string        `json:"liquidity_providers"`
	Status        Status          `json:"status"`
}

func ByCurrency(book map[Key]Position) []CurrencySummary {
	var out []CurrencySummary
	idx := map[market.Currency]int{}

	for _, p := range Sorted(book) {
		i, ok := idx[p.Currency]
		if !ok {
			i = len(out)
			idx[p.Currency] = i
			out = append(out, CurrencySummary{Currency: p.Currency, CurrentRate: p.CurrentRate, Status: Closed})
		}
		s := &out[i]
		s.NetPosition += p.NetPosition
		s.MTMValue += p.MTMValue
		s.UnrealizedPnL += p.UnrealizedPnL
		s.RealizedPnL += p.RealizedPnL
		s.Providers = append(s.Providers, p.LiquidityProvider)
	}

	for i := range out {
		if math.Abs(out[i].NetPosition) >= flat {
			out[i].Status = Open
		}
	}
	return out
}

// Summary is the dashboard header line.
type Summary struct {
	TotalMTM        float64 `json:"total_mtm"`
	TotalUnrealized float64 `json:"total_unrealized_pnl"`
	TotalRealized   float64 `json:"total_realized_pnl"`
	OpenPositions   int     `json:"open_positions"`
	HedgedPositions int     `json:"hedged_positions"`
}

func Totals(book map[Key]Position) Summary {
	var s Summary
	for _, p := range book {
		s.TotalMTM += p.MTMValue
		s.TotalUnrealized += p.UnrealizedPnL
		s.TotalRealized += p.RealizedPnL
		switch p.Status {
		case Open:
			s.OpenPositions++
		case Hedged:
			s.HedgedPositions++
		}
	}
	return s
}
