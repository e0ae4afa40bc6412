package desk

import (
	"github.com/sirupsen/logrus"

	"github.com/rustyeddy/treasury/internal/metrics"
	"github.com/rustyeddy/treasury/ledger"
	"github.com/rustyeddy/treasury/positions"
)

// BookTrade decomposes in under the current routing and books it with its
// USD mirror trades.
func (d *Desk) BookTrade(in ledger.TradeInput) (ledger.Trade, []ledger.Trade, error) {
	t, mirrors, err := ledger.Decompose(in, d.store, d.rates)
	if err != nil {
		metrics.TradesRejected.Inc()
		d.log.WithError(err).WithField("pair", in.Pair.String()).Warn("trade rejected")
		return ledger.Trade{}, nil, err
	}

	all := append([]ledger.Trade{t}, mirrors...)
	d.book.Add(all...)
	d.persistTrades(all...)

	metrics.TradesBooked.WithLabelValues(string(t.Mode)).Inc()
	d.log.WithFields(logrus.Fields{
		"trade_id": t.ID,
		"pair":     t.OriginalPair.String(),
		"amount":   t.OriginalAmount,
		"mode":     t.Mode,
		"legs":     len(t.Legs),
	}).Info("trade booked")
	return t, mirrors, nil
}

// Trades returns booked trades in booking order. Mirror trades are only
// included when asked for.
func (d *Desk) Trades(withMirrors bool) []ledger.Trade {
	if withMirrors {
		return d.book.All()
	}
	return d.book.Select(func(t ledger.Trade) bool { return !t.IsMirror() })
}

func (d *Desk) Trade(id string) (ledger.Trade, bool) {
	return d.book.Get(id)
}

// Positions aggregates the whole book at current rates.
func (d *Desk) Positions() map[positions.Key]positions.Position {
	book := positions.Aggregate(d.book.All(), d.rates)
	positions.MarkHedged(book, func(k positions.Key) bool {
		return d.hedges.Covered(k.Currency, k.LiquidityProvider)
	})

	open := 0
	for _, p := range book {
		if p.Status != positions.Closed {
			open++
		}
	}
	metrics.OpenPositions.Set(float64(open))
	return book
}

func (d *Desk) CurrencyOverview() []positions.CurrencySummary {
	return positions.ByCurrency(d.Positions())
}
