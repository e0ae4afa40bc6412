// Package positions folds the trade ledger into per-currency, per-provider
// positions marked to market in USD.
package positions

import (
	"math"
	"sort"

	"github.com/rustyeddy/treasury/ledger"
	"github.com/rustyeddy/treasury/market"
)

type Status string

const (
	Open   Status = "Open"
	Closed Status = "Closed"
	Hedged Status = "Hedged"
)

// flat is the absolute net below which a position counts as closed.
const flat = 1e-6

// Key is one position bucket.
type Key struct {
	Currency          market.Currency `json:"currency"`
	LiquidityProvider string          `json:"liquidity_provider"`
}

// Position is derived state; it is recomputed from trades, never edited.
type Position struct {
	Key
	NetPosition   float64  `json:"net_position"`
	CurrentRate   float64  `json:"current_rate"`
	MTMValue      float64  `json:"mtm_value"`
	CostBasisUSD  float64  `json:"cost_basis_usd"`
	UnrealizedPnL float64  `json:"unrealized_pnl"`
	RealizedPnL   float64  `json:"realized_pnl"`
	Status        Status   `json:"status"`
	TradeIDs      []string `json:"trade_ids"`
}

// acc tracks one bucket at average cost in USD.
type acc struct {
	net      float64
	cost     float64
	realized float64
	ids      []string
}

// add folds x units bought (or sold, if negative) at px USD per unit.
func (a *acc) add(x, px float64) {
	if a.net == 0 || (a.net > 0) == (x > 0) {
		a.net += x
		a.cost += x * px
		return
	}

	closing := x
	if math.Abs(x) > math.Abs(a.net) {
		closing = -a.net
	}
	avg := a.cost / a.net
	a.realized += -closing * (px - avg)
	a.cost += closing * avg
	a.net += closing

	if rem := x - closing; rem != 0 {
		a.net = rem
		a.cost = rem * px
	}
}

// Aggregate folds every leg of every trade into its local currency bucket
// for the trade's liquidity provider. Mirror trades carry their leg's USD
// flow as a USD-local leg, so USD lands in the USD bucket and no leg is
// counted twice. The result depends only on trades and rates.
func Aggregate(trades []ledger.Trade, rates market.RateSource) map[Key]Position {
	accs := map[Key]*acc{}
	var order []Key

	for _, t := range trades {
		for _, l := range t.Legs {
			k := Key{Currency: l.LocalCurrency, LiquidityProvider: t.LiquidityProvider}
			a, ok := accs[k]
			if !ok {
				a = &acc{}
				accs[k] = a
				order = append(order, k)
			}

			r := l.USDRate
			if l.LocalCurrency == market.USD {
				r = 1
			}
			if !(r > 0) {
				r, _ = rates.USDRate(l.LocalCurrency)
			}
			px := 0.0
			if r > 0 {
				px = 1 / r
			}

			a.add(l.LocalPosition, px)
			if n := len(a.ids); n == 0 || a.ids[n-1] != t.ID {
				a.ids = append(a.ids, t.ID)
			}
		}
	}

	out := make(map[Key]Position, len(accs))
	for _, k := range order {
		a := accs[k]
		p := Position{
			Key:          k,
			NetPosition:  a.net,
			CostBasisUSD: a.cost,
			RealizedPnL:  a.realized,
			Status:       Open,
			TradeIDs:     append([]string(nil), a.ids...),
		}
		if r, err := rates.USDRate(k.Currency); err == nil && r > 0 {
			p.CurrentRate = r
			p.MTMValue = a.net / r
			p.UnrealizedPnL = p.MTMValue - a.cost
		}
		if math.Abs(a.net) < flat {
			p.Status = Closed
			p.UnrealizedPnL = 0
		}
		out[k] = p
	}
	return out
}

// MarkHedged flags open positions hedged reports as covered.
func MarkHedged(book map[Key]Position, hedged func(Key) bool) {
	for k, p := range book {
		if p.Status == Open && hedged(k) {
			p.Status = Hedged
			book[k] = p
		}
	}
}

// Sorted returns the positions ordered by currency then provider.
func Sorted(book map[Key]Position) []Position {
	out := make([]Position, 0, len(book))
	for _, p := range book {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Currency != out[j].Currency {
			return out[i].Currency < out[j].Currency
		}
		return out[i].LiquidityProvider < out[j].LiquidityProvider
	})
	return out
}
