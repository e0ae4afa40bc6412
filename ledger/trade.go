// Package ledger turns booked customer trades into the canonical leg form
// the position book folds, decomposing exotic pairs through USD.
package ledger

import (
	"errors"
	"time"

	"github.com/rustyeddy/treasury/market"
	"github.com/rustyeddy/treasury/routing"
)

var ErrInvalidTrade = errors.New("invalid trade")

// Side is the direction of a leg seen from the desk's USD book. For legs
// without USD exposure it follows the sign of the local position.
type Side string

const (
	BuyLeg  Side = "buy"
	SellLeg Side = "sell"
)

// Kind separates what the customer booked from entries the ledger derives.
type Kind string

const (
	KindCustomer   Kind = "customer"
	KindMirror     Kind = "usd-mirror"
	KindAdjustment Kind = "adjustment"
)

// Leg is one execution against a single currency. LocalPosition is signed
// in LocalCurrency, USDPosition is the signed USD flow of the leg (zero for
// direct legs).
type Leg struct {
	Pair          market.Pair     `json:"pair"`
	Side          Side            `json:"side"`
	LocalCurrency market.Currency `json:"local_currency"`
	LocalPosition float64         `json:"local_position"`
	USDPosition   float64         `json:"usd_position"`
	Rate          float64         `json:"rate"`

	// USDRate is units of LocalCurrency per USD at booking, zero when the
	// rate book had none.
	USDRate float64 `json:"usd_rate,omitempty"`
}

// BuyAmount is the amount of LocalCurrency acquired, zero when selling.
func (l Leg) BuyAmount() float64 {
	if l.LocalPosition > 0 {
		return l.LocalPosition
	}
	return 0
}

// SellAmount is the amount of LocalCurrency given up, zero when buying.
func (l Leg) SellAmount() float64 {
	if l.LocalPosition < 0 {
		return -l.LocalPosition
	}
	return 0
}

// Trade is immutable once booked.
type Trade struct {
	ID                  string       `json:"id"`
	Time                time.Time    `json:"trade_date"`
	Kind                Kind         `json:"kind"`
	Account             string       `json:"account,omitempty"`
	LiquidityProvider   string       `json:"liquidity_provider"`
	OriginalPair        market.Pair  `json:"original_pair"`
	OriginalAmount      float64      `json:"original_amount"`
	Rate                float64      `json:"rate"`
	Mode                routing.Mode `json:"mode"`
	Exotic              bool         `json:"is_exotic"`
	Legs                []Leg        `json:"legs"`
	DecompositionReason string       `json:"decomposition_reason"`
	NetUSDExposure      float64      `json:"net_usd_exposure"`
	ParentTradeID       string       `json:"parent_trade_id,omitempty"`
	Reference           string       `json:"reference,omitempty"`
}

// IsMirror reports whether t is a synthetic USD entry derived from another
// trade.
func (t Trade) IsMirror() bool { return t.ParentTradeID != "" }

// Clone copies t including its legs.
func (t Trade) Clone() Trade {
	t.Legs = append([]Leg(nil), t.Legs...)
	return t
}

func sideOf(v float64) Side {
	if v < 0 {
		return SellLeg
	}
	return BuyLeg
}
