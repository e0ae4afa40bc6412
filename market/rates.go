package market

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

var (
	ErrUnknownRate  = errors.New("rate not found")
	ErrInvalidQuote = errors.New("invalid quote")
)

// Quote is a two-way market rate for a pair such as USD/SGD or EUR/USD.
type Quote struct {
	Pair      string    `json:"pair" yaml:"pair"`
	Bid       float64   `json:"bid" yaml:"bid"`
	Ask       float64   `json:"ask" yaml:"ask"`
	Change    float64   `json:"change" yaml:"change,omitempty"`
	ChangePct float64   `json:"change_pct" yaml:"change_pct,omitempty"`
	Time      time.Time `json:"last_update" yaml:"-"`
}

func (q Quote) Mid() float64 {
	if q.Bid == 0 && q.Ask == 0 {
		return 0
	}
	return (q.Bid + q.Ask) / 2
}

func (q Quote) Spread() float64 {
	return q.Ask - q.Bid
}

// RateSource converts a currency to USD. The returned rate is units of
// ccy per one USD, so USD/SGD 1.3422 yields 1.3422 for SGD and EUR/USD 1.0852
// yields 1/1.0852 for EUR.
type RateSource interface {
	USDRate(ccy Currency) (float64, error)
}

// RateBook holds the latest quote per pair.
type RateBook struct {
	mu     sync.RWMutex
	quotes map[string]Quote
}

func NewRateBook(quotes ...Quote) *RateBook {
	rb := &RateBook{quotes: make(map[string]Quote)}
	for _, q := range quotes {
		rb.quotes[q.Pair] = q
	}
	return rb
}

// Update stores q and returns whatever quote it replaced.
func (rb *RateBook) Update(q Quote) (prev Quote, ok bool) {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	prev, ok = rb.quotes[q.Pair]
	if ok && q.Change == 0 && prev.Mid() != 0 {
		q.Change = q.Mid() - prev.Mid()
		q.ChangePct = 100 * q.Change / prev.Mid()
	}
	if q.Time.IsZero() {
		q.Time = time.Now().UTC()
	}
	rb.quotes[q.Pair] = q
	return prev, ok
}

func (rb *RateBook) Get(pair string) (Quote, error) {
	rb.mu.RLock()
	defer rb.mu.RUnlock()
	q, ok := rb.quotes[pair]
	if !ok {
		return Quote{}, fmt.Errorf("%w: %s", ErrUnknownRate, pair)
	}
	return q, nil
}

// Quotes returns all quotes sorted by pair.
func (rb *RateBook) Quotes() []Quote {
	rb.mu.RLock()
	out := make([]Quote, 0, len(rb.quotes))
	for _, q := range rb.quotes {
		out = append(out, q)
	}
	rb.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Pair < out[j].Pair })
	return out
}

func (rb *RateBook) USDRate(ccy Currency) (float64, error) {
	if ccy == USD {
		return 1.0, nil
	}

	rb.mu.RLock()
	defer rb.mu.RUnlock()

	// USD is base (USD/SGD, USD/JPY): mid is already ccy per USD
	if q, ok := rb.quotes[string(USD)+"/"+string(ccy)]; ok && q.Mid() > 0 {
		return q.Mid(), nil
	}

	// USD is quote (EUR/USD, GBP/USD): mid is USD per ccy
	if q, ok := rb.quotes[string(ccy)+"/"+string(USD)]; ok && q.Mid() > 0 {
		return 1.0 / q.Mid(), nil
	}

	return 0, fmt.Errorf("%w: no USD quote for %s", ErrUnknownRate, ccy)
}

// ToUSD converts amount of ccy into USD.
func ToUSD(rs RateSource, ccy Currency, amount float64) (float64, error) {
	r, err := rs.USDRate(ccy)
	if err != nil {
		return 0, err
	}
	return amount / r, nil
}

// DefaultQuotes is the desk's seed rate sheet.
func DefaultQuotes() []Quote {
	return []Quote{
		{Pair: "USD/SGD", Bid: 1.3420, Ask: 1.3425},
		{Pair: "EUR/USD", Bid: 1.0850, Ask: 1.0855},
		{Pair: "GBP/USD", Bid: 1.2720, Ask: 1.2725},
		{Pair: "AUD/USD", Bid: 0.6580, Ask: 0.6585},
		{Pair: "USD/JPY", Bid: 149.25, Ask: 149.30},
		{Pair: "USD/CAD", Bid: 1.3580, Ask: 1.3585},
		{Pair: "USD/CHF", Bid: 0.8720, Ask: 0.8725},
		{Pair: "NZD/USD", Bid: 0.5980, Ask: 0.5985},
		{Pair: "USD/SEK", Bid: 10.4520, Ask: 10.4580},
		{Pair: "USD/NOK", Bid: 10.6210, Ask: 10.6270},
		{Pair: "USD/MYR", Bid: 4.4625, Ask: 4.4675},
		{Pair: "USD/HKD", Bid: 7.8185, Ask: 7.8215},
		{Pair: "USD/CNH", Bid: 7.2425, Ask: 7.2475},
		{Pair: "EUR/SGD", Bid: 1.4560, Ask: 1.4565},
		{Pair: "EUR/GBP", Bid: 0.8525, Ask: 0.8530},
		{Pair: "EUR/JPY", Bid: 162.05, Ask: 162.15},
	}
}
