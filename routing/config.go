package routing

import (
	"fmt"
	"time"

	"github.com/rustyeddy/treasury/market"
)

// Configuration is one committed version of the routing setup. Values
// handed out by the Store are copies; mutating them has no effect on
// routing.
type Configuration struct {
	ID                 string                  `json:"id" yaml:"id"`
	Version            int                     `json:"version" yaml:"version"`
	ActiveCurrencies   []market.Currency       `json:"currencies" yaml:"currencies"`
	HiddenCurrencies   []market.Currency       `json:"hidden_currencies" yaml:"hidden_currencies"`
	PairModes          map[market.PairKey]Mode `json:"pair_configurations" yaml:"pair_configurations"`
	ModifiedBy         string                  `json:"last_modified_by" yaml:"last_modified_by"`
	ModifiedAt         time.Time               `json:"last_modified_at" yaml:"last_modified_at"`
	PreviousCurrencies []market.Currency       `json:"previous_currencies,omitempty" yaml:"previous_currencies,omitempty"`
}

// Lookup returns the configured mode for k and whether one exists.
func (c *Configuration) Lookup(k market.PairKey) (Mode, bool) {
	m, ok := c.PairModes[k]
	return m, ok
}

// Mode resolves base/quote, falling back to Exotic for unconfigured or
// malformed pairs.
func (c *Configuration) Mode(base, quote market.Currency) Mode {
	k, err := market.NormalizePair(base, quote)
	if err != nil {
		return Fallback
	}
	if m, ok := c.Lookup(k); ok {
		return m
	}
	return Fallback
}

// IsDirect is false for a currency paired with itself whatever the
// configuration says.
func (c *Configuration) IsDirect(base, quote market.Currency) bool {
	if base == quote {
		return false
	}
	return c.Mode(base, quote) == Direct
}

// PairStatus is one matrix cell.
type PairStatus struct {
	Base   market.Currency `json:"base"`
	Quote  market.Currency `json:"quote"`
	Direct bool            `json:"is_direct"`
	Mode   Mode            `json:"mode,omitempty"`
	Reason string          `json:"reason"`
}

const (
	ReasonSameCurrency = "Same currency"
	ReasonDirect       = "Configured direct - trades without USD decomposition"
	ReasonExotic       = "Requires USD decomposition via two legs"
)

func (c *Configuration) Status(base, quote market.Currency) PairStatus {
	if base == quote {
		return PairStatus{Base: base, Quote: quote, Reason: ReasonSameCurrency}
	}
	m := c.Mode(base, quote)
	st := PairStatus{Base: base, Quote: quote, Mode: m, Direct: m == Direct, Reason: ReasonExotic}
	if st.Direct {
		st.Reason = ReasonDirect
	}
	return st
}

// Matrix is the active-currency grid, row major.
func (c *Configuration) Matrix() [][]PairStatus {
	n := len(c.ActiveCurrencies)
	out := make([][]PairStatus, n)
	for i, base := range c.ActiveCurrencies {
		out[i] = make([]PairStatus, n)
		for j, quote := range c.ActiveCurrencies {
			out[i][j] = c.Status(base, quote)
		}
	}
	return out
}

// Currencies, PairKeys and ResolvedMode let the audit diff read a
// configuration.

func (c *Configuration) Currencies() []market.Currency { return c.ActiveCurrencies }

func (c *Configuration) PairKeys() []market.PairKey {
	out := make([]market.PairKey, 0, len(c.PairModes))
	for k := range c.PairModes {
		out = append(out, k)
	}
	return out
}

func (c *Configuration) ResolvedMode(k market.PairKey) string {
	if m, ok := c.Lookup(k); ok {
		return string(m)
	}
	return string(Fallback)
}

func (c *Configuration) clone() *Configuration {
	out := *c
	out.ActiveCurrencies = copyCurrencies(c.ActiveCurrencies)
	out.HiddenCurrencies = copyCurrencies(c.HiddenCurrencies)
	out.PreviousCurrencies = copyCurrencies(c.PreviousCurrencies)
	out.PairModes = make(map[market.PairKey]Mode, len(c.PairModes))
	for k, v := range c.PairModes {
		out.PairModes[k] = v
	}
	return &out
}

func copyCurrencies(cs []market.Currency) []market.Currency {
	if cs == nil {
		return nil
	}
	out := make([]market.Currency, len(cs))
	copy(out, cs)
	return out
}

// Validate checks the invariants every committed configuration holds.
func (c *Configuration) Validate() error {
	if len(c.ActiveCurrencies) < 2 {
		return fmt.Errorf("%w: at least 2 active currencies required, got %d", ErrValidation, len(c.ActiveCurrencies))
	}
	seen := map[market.Currency]bool{}
	for _, ccy := range c.ActiveCurrencies {
		if err := ccy.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrValidation, err)
		}
		if seen[ccy] {
			return fmt.Errorf("%w: duplicate currency %s", ErrValidation, ccy)
		}
		seen[ccy] = true
	}
	for _, ccy := range c.HiddenCurrencies {
		if seen[ccy] {
			return fmt.Errorf("%w: %s is both active and hidden", ErrValidation, ccy)
		}
	}
	for k, m := range c.PairModes {
		a, b, err := k.Split()
		if err != nil {
			return fmt.Errorf("%w: %v", ErrValidation, err)
		}
		if nk, err := market.NormalizePair(a, b); err != nil || nk != k {
			return fmt.Errorf("%w: pair key %q is not normalized", ErrValidation, k)
		}
		if m != Direct && m != Exotic {
			return fmt.Errorf("%w: pair %s has mode %q", ErrValidation, k, m)
		}
	}
	return nil
}

// NormalizeModes rekeys a loosely keyed map ("SGD/EUR", "EUR_SGD") into
// normalized pair keys.
func NormalizeModes(in map[string]Mode) (map[market.PairKey]Mode, error) {
	out := make(map[market.PairKey]Mode, len(in))
	for s, m := range in {
		p, err := market.ParsePair(s)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		k, err := p.Key()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrValidation, err)
		}
		out[k] = m
	}
	return out, nil
}
