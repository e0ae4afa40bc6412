package market

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// USD is the routing currency every exotic pair is decomposed through.
const USD Currency = "USD"

var ErrInvalidCurrencyCode = errors.New("invalid currency code")

// Currency is an ISO 4217 style code: three uppercase ASCII letters.
// Codes are never case-folded, so callers taking user input upper-case it
// first.
type Currency string

// Validate reports whether c looks like a currency code.
func (c Currency) Validate() error {
	if len(c) != 3 {
		return fmt.Errorf("%w: %q", ErrInvalidCurrencyCode, string(c))
	}
	for i := 0; i < len(c); i++ {
		if ch := c[i]; ch < 'A' || ch > 'Z' {
			return fmt.Errorf("%w: %q", ErrInvalidCurrencyCode, string(c))
		}
	}
	return nil
}

func (c Currency) String() string { return string(c) }

// G10 is the reference set whose pairwise combinations route directly by
// default. SGD is included, matching the desk's regional setup.
var G10 = []Currency{"USD", "EUR", "JPY", "GBP", "AUD", "CAD", "CHF", "NZD", "SEK", "NOK", "SGD"}

// Regional currencies shown on the matrix next to G10 out of the box.
var Regional = []Currency{"MYR", "HKD", "CNH"}

// PairKey identifies an unordered currency pair: the two codes sorted and
// joined with "/", so EUR/SGD and SGD/EUR share one key.
type PairKey string

// NormalizePair returns the order-independent key for a and b.
func NormalizePair(a, b Currency) (PairKey, error) {
	if err := a.Validate(); err != nil {
		return "", err
	}
	if err := b.Validate(); err != nil {
		return "", err
	}
	if b < a {
		a, b = b, a
	}
	return PairKey(string(a) + "/" + string(b)), nil
}

// MustPair is NormalizePair for literals known to be valid.
func MustPair(a, b Currency) PairKey {
	k, err := NormalizePair(a, b)
	if err != nil {
		panic(err)
	}
	return k
}

// Split returns the two currencies of the key in sorted order.
func (k PairKey) Split() (Currency, Currency, error) {
	a, b, ok := strings.Cut(string(k), "/")
	if !ok {
		return "", "", fmt.Errorf("%w: pair %q", ErrInvalidCurrencyCode, string(k))
	}
	return Currency(a), Currency(b), nil
}

// Pair is an ordered base/quote pair as a customer quotes it.
type Pair struct {
	Base  Currency `json:"base" yaml:"base"`
	Quote Currency `json:"quote" yaml:"quote"`
}

// ParsePair accepts "EUR/SGD", "EUR_SGD" or "EURSGD".
func ParsePair(s string) (Pair, error) {
	s = strings.TrimSpace(s)
	var base, quote string
	switch {
	case strings.Contains(s, "/"):
		base, quote, _ = strings.Cut(s, "/")
	case strings.Contains(s, "_"):
		base, quote, _ = strings.Cut(s, "_")
	case len(s) == 6:
		base, quote = s[:3], s[3:]
	default:
		return Pair{}, fmt.Errorf("%w: pair %q", ErrInvalidCurrencyCode, s)
	}
	p := Pair{Base: Currency(base), Quote: Currency(quote)}
	if err := p.Base.Validate(); err != nil {
		return Pair{}, err
	}
	if err := p.Quote.Validate(); err != nil {
		return Pair{}, err
	}
	return p, nil
}

func (p Pair) String() string { return string(p.Base) + "/" + string(p.Quote) }

// Key is the normalized key of p.
func (p Pair) Key() (PairKey, error) { return NormalizePair(p.Base, p.Quote) }

// HasUSD reports whether USD is either side of the pair.
func (p Pair) HasUSD() bool { return p.Base == USD || p.Quote == USD }

// Other returns the non-USD side of a USD pair.
func (p Pair) Other() Currency {
	if p.Base == USD {
		return p.Quote
	}
	return p.Base
}

// SortCurrencies sorts in place and returns cs.
func SortCurrencies(cs []Currency) []Currency {
	sort.Slice(cs, func(i, j int) bool { return cs[i] < cs[j] })
	return cs
}

// ContainsCurrency reports whether c is in cs.
func ContainsCurrency(cs []Currency, c Currency) bool {
	for _, x := range cs {
		if x == c {
			return true
		}
	}
	return false
}
