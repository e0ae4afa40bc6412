package desk

import (
	"fmt"

	"github.com/rustyeddy/treasury/audit"
	"github.com/rustyeddy/treasury/market"
)

func (d *Desk) Rates() []market.Quote { return d.rates.Quotes() }

// RateSource exposes the rate book as a RateSource.
func (d *Desk) RateSource() market.RateSource { return d.rates }

// UpdateRates stores quotes and logs one Rate Update event for the batch.
func (d *Desk) UpdateRates(quotes []market.Quote, source, actor string) ([]market.Quote, audit.Event, error) {
	if len(quotes) == 0 {
		return nil, audit.Event{}, fmt.Errorf("%w: no quotes", market.ErrInvalidQuote)
	}
	normalized := make([]market.Quote, len(quotes))
	for i, q := range quotes {
		p, err := market.ParsePair(q.Pair)
		if err != nil {
			return nil, audit.Event{}, err
		}
		if !(q.Bid > 0) || q.Ask < q.Bid {
			return nil, audit.Event{}, fmt.Errorf("%w: %s bid %v ask %v", market.ErrInvalidQuote, q.Pair, q.Bid, q.Ask)
		}
		q.Pair = p.String()
		normalized[i] = q
	}

	pairs := make([]string, 0, len(normalized))
	for _, q := range normalized {
		d.rates.Update(q)
		pairs = append(pairs, q.Pair)
	}

	e := d.record(audit.Event{
		Type:        audit.RateUpdate,
		Description: "Market rates updated",
		User:        actor,
		Status:      audit.StatusCompleted,
		Details:     map[string]any{"pairs": len(quotes), "source": source, "updated": pairs},
	})
	d.log.WithField("pairs", len(quotes)).Info("rates updated")

	out := make([]market.Quote, 0, len(pairs))
	for _, p := range pairs {
		q, err := d.rates.Get(p)
		if err == nil {
			out = append(out, q)
		}
	}
	return out, e, nil
}

// UpdateRate stores one quote.
func (d *Desk) UpdateRate(q market.Quote, actor string) (market.Quote, audit.Event, error) {
	out, e, err := d.UpdateRates([]market.Quote{q}, "manual", actor)
	if err != nil {
		return market.Quote{}, audit.Event{}, err
	}
	return out[0], e, nil
}
