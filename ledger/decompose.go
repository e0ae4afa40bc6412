package ledger

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rustyeddy/treasury/market"
	"github.com/rustyeddy/treasury/pkg/id"
	"github.com/rustyeddy/treasury/routing"
)

// TradeInput is a customer trade as entered. Amount is signed in the base
// currency, positive when the customer buys base. Rate is base/quote.
type TradeInput struct {
	Pair              market.Pair `json:"pair"`
	Amount            float64     `json:"amount"`
	Rate              float64     `json:"rate"`
	Account           string      `json:"account,omitempty"`
	LiquidityProvider string      `json:"liquidity_provider"`
	Time              time.Time   `json:"trade_date,omitempty"`
}

func (in TradeInput) validate() error {
	if err := in.Pair.Base.Validate(); err != nil {
		return err
	}
	if err := in.Pair.Quote.Validate(); err != nil {
		return err
	}
	if in.Pair.Base == in.Pair.Quote {
		return fmt.Errorf("%w: %s cannot trade against itself", ErrInvalidTrade, in.Pair.Base)
	}
	if in.Amount == 0 || math.IsNaN(in.Amount) || math.IsInf(in.Amount, 0) {
		return fmt.Errorf("%w: amount must be non-zero", ErrInvalidTrade)
	}
	if !(in.Rate > 0) || math.IsInf(in.Rate, 0) {
		return fmt.Errorf("%w: rate must be positive, got %v", ErrInvalidTrade, in.Rate)
	}
	if strings.TrimSpace(in.LiquidityProvider) == "" {
		return fmt.Errorf("%w: liquidity provider is required", ErrInvalidTrade)
	}
	return nil
}

// Decompose books in under the routing the resolver currently reports and
// returns the trade with its synthetic USD mirror trades, one per non-USD
// leg that carries USD exposure.
//
// A pair with USD on either side is already a USD leg: it never consults the
// routing, and books one leg on the base currency whose USD flow comes from
// the execution rate. A direct pair is one leg on the base currency with no
// USD flow. An exotic pair is split into USD/base and
// USD/quote legs priced at the rate book's USD rates; the second leg's USD
// is the negation of the first, so the legs always net to zero.
func Decompose(in TradeInput, cfg routing.Resolver, rates market.RateSource) (Trade, []Trade, error) {
	if err := in.validate(); err != nil {
		return Trade{}, nil, err
	}
	if in.Time.IsZero() {
		in.Time = time.Now().UTC()
	}

	t := Trade{
		ID:                id.New(id.Trade),
		Time:              in.Time,
		Kind:              KindCustomer,
		Account:           in.Account,
		LiquidityProvider: in.LiquidityProvider,
		OriginalPair:      in.Pair,
		OriginalAmount:    in.Amount,
		Rate:              in.Rate,
	}

	base, quote := in.Pair.Base, in.Pair.Quote
	switch {
	case in.Pair.HasUSD():
		t.Mode = routing.USDPair
		t.Legs = []Leg{usdPairLeg(in)}
		t.DecompositionReason = fmt.Sprintf("%s is a USD pair - booked as a single leg, routing not consulted", in.Pair)

	case cfg.Mode(base, quote) == routing.Direct:
		t.Mode = routing.Direct
		leg := Leg{
			Pair:          in.Pair,
			Side:          sideOf(in.Amount),
			LocalCurrency: base,
			LocalPosition: in.Amount,
			Rate:          in.Rate,
		}
		// reporting only, a missing rate leaves the cost basis unpriced
		if r, err := rates.USDRate(base); err == nil {
			leg.USDRate = r
		}
		t.Legs = []Leg{leg}
		t.DecompositionReason = fmt.Sprintf("%s is configured direct - no USD decomposition", in.Pair)

	default:
		legs, err := exoticLegs(in, rates)
		if err != nil {
			return Trade{}, nil, err
		}
		t.Mode = routing.Exotic
		t.Exotic = true
		t.Legs = legs
		t.DecompositionReason = fmt.Sprintf("%s is routed exotic - decomposed via USD/%s and USD/%s", in.Pair, base, quote)
	}

	for _, l := range t.Legs {
		t.NetUSDExposure += l.USDPosition
	}
	if t.Exotic {
		// the two USD flows cancel by construction
		t.NetUSDExposure = 0
	}

	return t, mirrors(t), nil
}

// usdPairLeg holds the base side of a USD pair. The counter currency of a
// USD/XXX trade is not tracked, the same as the quote side of a direct trade.
func usdPairLeg(in TradeInput) Leg {
	leg := Leg{
		Pair:          in.Pair,
		LocalCurrency: in.Pair.Base,
		LocalPosition: in.Amount,
		Rate:          in.Rate,
	}
	if in.Pair.Base == market.USD {
		// USD/SGD: the leg is the USD flow itself
		leg.USDPosition = in.Amount
		leg.USDRate = 1
	} else {
		// EUR/USD: buying EUR gives up rate USD per EUR
		leg.USDPosition = -in.Amount * in.Rate
		leg.USDRate = 1 / in.Rate
	}
	leg.Side = sideOf(leg.USDPosition)
	return leg
}

func exoticLegs(in TradeInput, rates market.RateSource) ([]Leg, error) {
	base, quote := in.Pair.Base, in.Pair.Quote

	baseRate, err := positiveRate(rates, base)
	if err != nil {
		return nil, err
	}
	quoteRate, err := positiveRate(rates, quote)
	if err != nil {
		return nil, err
	}

	usd1 := -in.Amount / baseRate
	leg1 := Leg{
		Pair:          market.Pair{Base: market.USD, Quote: base},
		Side:          sideOf(usd1),
		LocalCurrency: base,
		LocalPosition: in.Amount,
		USDPosition:   usd1,
		Rate:          baseRate,
		USDRate:       baseRate,
	}

	usd2 := -usd1
	leg2 := Leg{
		Pair:          market.Pair{Base: market.USD, Quote: quote},
		Side:          sideOf(usd2),
		LocalCurrency: quote,
		LocalPosition: -usd2 * quoteRate,
		USDPosition:   usd2,
		Rate:          quoteRate,
		USDRate:       quoteRate,
	}

	return []Leg{leg1, leg2}, nil
}

func positiveRate(rates market.RateSource, c market.Currency) (float64, error) {
	r, err := rates.USDRate(c)
	if err != nil {
		return 0, fmt.Errorf("decompose via USD/%s: %w", c, err)
	}
	if !(r > 0) {
		return 0, fmt.Errorf("%w: USD/%s rate must be positive, got %v", ErrInvalidTrade, c, r)
	}
	return r, nil
}

// mirrors derives the USD bucket entries for t. A leg already booked in USD
// lands in the USD bucket on its own.
func mirrors(t Trade) []Trade {
	var out []Trade
	for _, l := range t.Legs {
		if l.USDPosition == 0 || l.LocalCurrency == market.USD {
			continue
		}
		out = append(out, Trade{
			ID:                id.New(id.Trade),
			Time:              t.Time,
			Kind:              KindMirror,
			Account:           t.Account,
			LiquidityProvider: t.LiquidityProvider,
			OriginalPair:      l.Pair,
			OriginalAmount:    l.USDPosition,
			Rate:              l.Rate,
			Mode:              t.Mode,
			Exotic:            t.Exotic,
			Legs: []Leg{{
				Pair:          l.Pair,
				Side:          l.Side,
				LocalCurrency: market.USD,
				LocalPosition: l.USDPosition,
				USDPosition:   l.USDPosition,
				Rate:          l.Rate,
				USDRate:       1,
			}},
			DecompositionReason: fmt.Sprintf("USD leg of %s", t.ID),
			NetUSDExposure:      l.USDPosition,
			ParentTradeID:       t.ID,
		})
	}
	return out
}

// NewAdjustment builds the trade that moves the ccy position held with lp
// by delta. usdRate is units of ccy per USD at execution.
func NewAdjustment(ccy market.Currency, lp string, delta, usdRate float64, ref string) (Trade, error) {
	if err := ccy.Validate(); err != nil {
		return Trade{}, err
	}
	if delta == 0 {
		return Trade{}, fmt.Errorf("%w: adjustment of zero", ErrInvalidTrade)
	}
	if !(usdRate > 0) {
		return Trade{}, fmt.Errorf("%w: USD rate for %s must be positive", ErrInvalidTrade, ccy)
	}

	pair := market.Pair{Base: market.USD, Quote: ccy}
	leg := Leg{
		Pair:          pair,
		Side:          sideOf(delta),
		LocalCurrency: ccy,
		LocalPosition: delta,
		Rate:          usdRate,
		USDRate:       usdRate,
	}
	return Trade{
		ID:                  id.New(id.Trade),
		Time:                time.Now().UTC(),
		Kind:                KindAdjustment,
		LiquidityProvider:   lp,
		OriginalPair:        pair,
		OriginalAmount:      delta,
		Rate:                usdRate,
		Mode:                routing.Direct,
		Legs:                []Leg{leg},
		DecompositionReason: "position reset adjustment",
		Reference:           ref,
	}, nil
}
