package ledger

import (
	"errors"
	"testing"

	"github.com/rustyeddy/treasury/market"
	"github.com/rustyeddy/treasury/routing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedModes map[market.PairKey]routing.Mode

func (f fixedModes) Mode(base, quote market.Currency) routing.Mode {
	k, err := market.NormalizePair(base, quote)
	if err != nil {
		return routing.Fallback
	}
	if m, ok := f[k]; ok {
		return m
	}
	return routing.Fallback
}

func scenarioRates() *market.RateBook {
	return market.NewRateBook(
		market.Quote{Pair: "USD/MYR", Bid: 4.45, Ask: 4.45},
		market.Quote{Pair: "USD/HKD", Bid: 7.82, Ask: 7.82},
		market.Quote{Pair: "USD/SGD", Bid: 1.3422, Ask: 1.3422},
		market.Quote{Pair: "EUR/USD", Bid: 1.0852, Ask: 1.0852},
	)
}

func TestDecomposeDirect(t *testing.T) {
	t.Parallel()

	cfg := fixedModes(routing.DirectAmong([]market.Currency{"USD", "EUR", "SGD"}))
	in := TradeInput{Pair: market.Pair{Base: "EUR", Quote: "SGD"}, Amount: 1_000_000, Rate: 1.4562, LiquidityProvider: "DBS"}

	tr, mirrors, err := Decompose(in, cfg, scenarioRates())
	require.NoError(t, err)

	assert.Equal(t, routing.Direct, tr.Mode)
	assert.False(t, tr.Exotic)
	require.Len(t, tr.Legs, 1)
	leg := tr.Legs[0]
	assert.Equal(t, market.Pair{Base: "EUR", Quote: "SGD"}, leg.Pair)
	assert.Equal(t, 1_000_000.0, leg.LocalPosition)
	assert.Equal(t, 0.0, leg.USDPosition)
	assert.Equal(t, BuyLeg, leg.Side)
	assert.Equal(t, market.Currency("EUR"), leg.LocalCurrency)
	assert.InDelta(t, 1/1.0852, leg.USDRate, 1e-12)
	assert.Empty(t, mirrors)
	assert.Equal(t, KindCustomer, tr.Kind)
	assert.Contains(t, tr.ID, "TRD-")
}

func TestDecomposeDirectSellSide(t *testing.T) {
	t.Parallel()

	cfg := fixedModes(routing.DirectAmong([]market.Currency{"EUR", "SGD"}))
	in := TradeInput{Pair: market.Pair{Base: "SGD", Quote: "EUR"}, Amount: -250_000, Rate: 0.6867, LiquidityProvider: "UOB"}

	tr, _, err := Decompose(in, cfg, scenarioRates())
	require.NoError(t, err)
	require.Len(t, tr.Legs, 1)
	assert.Equal(t, SellLeg, tr.Legs[0].Side)
	assert.Equal(t, 250_000.0, tr.Legs[0].SellAmount())
	assert.Equal(t, 0.0, tr.Legs[0].BuyAmount())
}

func TestDecomposeExoticScenario(t *testing.T) {
	t.Parallel()

	cfg := fixedModes{"HKD/MYR": routing.Exotic}
	in := TradeInput{Pair: market.Pair{Base: "MYR", Quote: "HKD"}, Amount: 4_500_000, Rate: 1.7573, LiquidityProvider: "HSBC"}

	tr, mirrors, err := Decompose(in, cfg, scenarioRates())
	require.NoError(t, err)

	assert.True(t, tr.Exotic)
	require.Len(t, tr.Legs, 2)

	l1, l2 := tr.Legs[0], tr.Legs[1]
	assert.Equal(t, market.Pair{Base: "USD", Quote: "MYR"}, l1.Pair)
	assert.Equal(t, market.Pair{Base: "USD", Quote: "HKD"}, l2.Pair)
	assert.InDelta(t, -1_011_236, l1.USDPosition, 1)
	assert.InDelta(t, 1_011_236, l2.USDPosition, 1)
	assert.InDelta(t, 0, l1.USDPosition+l2.USDPosition, 1e-6)
	assert.Equal(t, 4_500_000.0, l1.LocalPosition)
	assert.InDelta(t, -1_011_235.955*7.82, l2.LocalPosition, 1)
	assert.Equal(t, SellLeg, l1.Side)
	assert.Equal(t, BuyLeg, l2.Side)
	assert.Equal(t, 0.0, tr.NetUSDExposure)
	assert.Equal(t, "MYR/HKD is routed exotic - decomposed via USD/MYR and USD/HKD", tr.DecompositionReason)

	require.Len(t, mirrors, 2)
	for i, m := range mirrors {
		assert.Equal(t, tr.ID, m.ParentTradeID)
		assert.True(t, m.IsMirror())
		assert.Equal(t, KindMirror, m.Kind)
		require.Len(t, m.Legs, 1)
		assert.Equal(t, market.USD, m.Legs[0].LocalCurrency)
		assert.Equal(t, tr.Legs[i].USDPosition, m.Legs[0].USDPosition)
		assert.Equal(t, "HSBC", m.LiquidityProvider)
	}
}

func TestDecomposeUnconfiguredPairIsExotic(t *testing.T) {
	t.Parallel()

	tr, _, err := Decompose(TradeInput{Pair: market.Pair{Base: "HKD", Quote: "MYR"}, Amount: -1_000, Rate: 0.569, LiquidityProvider: "HSBC"}, fixedModes{}, scenarioRates())
	require.NoError(t, err)
	assert.True(t, tr.Exotic)
	assert.InDelta(t, 0, tr.Legs[0].USDPosition+tr.Legs[1].USDPosition, 1e-9)
}

func TestExoticLegsAlwaysNetToZero(t *testing.T) {
	t.Parallel()

	rates := scenarioRates()
	for _, amt := range []float64{1, -1, 0.01, 123_456.789, -9_999_999.5, 1e12} {
		tr, _, err := Decompose(TradeInput{Pair: market.Pair{Base: "SGD", Quote: "MYR"}, Amount: amt, Rate: 3.3, LiquidityProvider: "X"}, fixedModes{}, rates)
		require.NoError(t, err)
		assert.Equal(t, 0.0, tr.Legs[0].USDPosition+tr.Legs[1].USDPosition, "amount %v", amt)
	}
}

func TestDecomposeUSDPairs(t *testing.T) {
	t.Parallel()

	exoticUSDSGD := fixedModes{"SGD/USD": routing.Exotic}

	tests := []struct {
		name      string
		cfg       fixedModes
		pair      market.Pair
		amount    float64
		rate      float64
		local     market.Currency
		usdPos    float64
		side      Side
		usdRateOf float64
		mirrors   int
	}{
		{"usd base buy", fixedModes{}, market.Pair{Base: "USD", Quote: "SGD"}, 1_000_000, 1.3422, "USD", 1_000_000, BuyLeg, 1, 0},
		{"usd base sell", fixedModes{}, market.Pair{Base: "USD", Quote: "SGD"}, -500_000, 1.3422, "USD", -500_000, SellLeg, 1, 0},
		{"usd base configured exotic", exoticUSDSGD, market.Pair{Base: "USD", Quote: "SGD"}, 1_000_000, 1.3422, "USD", 1_000_000, BuyLeg, 1, 0},
		{"usd quote buy", fixedModes{}, market.Pair{Base: "EUR", Quote: "USD"}, 1_000_000, 1.0852, "EUR", -1_085_200, SellLeg, 1 / 1.0852, 1},
		{"usd quote configured exotic", fixedModes{"EUR/USD": routing.Exotic}, market.Pair{Base: "EUR", Quote: "USD"}, -250_000, 1.0852, "EUR", 271_300, BuyLeg, 1 / 1.0852, 1},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			in := TradeInput{Pair: tt.pair, Amount: tt.amount, Rate: tt.rate, LiquidityProvider: "Citi"}
			tr, mirrors, err := Decompose(in, tt.cfg, scenarioRates())
			require.NoError(t, err)

			assert.Equal(t, routing.USDPair, tr.Mode)
			assert.False(t, tr.Exotic)
			assert.Contains(t, tr.DecompositionReason, "routing not consulted")

			// one leg, booked at the original amount on the original pair
			require.Len(t, tr.Legs, 1)
			leg := tr.Legs[0]
			assert.Equal(t, tt.pair, leg.Pair)
			assert.Equal(t, tt.local, leg.LocalCurrency)
			assert.Equal(t, tr.OriginalAmount, leg.LocalPosition)
			assert.InDelta(t, tt.usdPos, leg.USDPosition, 1e-6)
			assert.Equal(t, tt.side, leg.Side)
			assert.InDelta(t, tt.usdRateOf, leg.USDRate, 1e-12)
			assert.InDelta(t, tt.usdPos, tr.NetUSDExposure, 1e-6)

			require.Len(t, mirrors, tt.mirrors)
			for _, m := range mirrors {
				assert.Equal(t, market.USD, m.Legs[0].LocalCurrency)
				assert.InDelta(t, tt.usdPos, m.Legs[0].LocalPosition, 1e-6)
			}
		})
	}
}

func TestDecomposeRejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   TradeInput
		want error
	}{
		{"self paired", TradeInput{Pair: market.Pair{Base: "EUR", Quote: "EUR"}, Amount: 1, Rate: 1, LiquidityProvider: "X"}, ErrInvalidTrade},
		{"zero amount", TradeInput{Pair: market.Pair{Base: "EUR", Quote: "SGD"}, Amount: 0, Rate: 1, LiquidityProvider: "X"}, ErrInvalidTrade},
		{"zero rate", TradeInput{Pair: market.Pair{Base: "EUR", Quote: "SGD"}, Amount: 1, Rate: 0, LiquidityProvider: "X"}, ErrInvalidTrade},
		{"negative rate", TradeInput{Pair: market.Pair{Base: "EUR", Quote: "SGD"}, Amount: 1, Rate: -1.2, LiquidityProvider: "X"}, ErrInvalidTrade},
		{"no provider", TradeInput{Pair: market.Pair{Base: "EUR", Quote: "SGD"}, Amount: 1, Rate: 1}, ErrInvalidTrade},
		{"bad code", TradeInput{Pair: market.Pair{Base: "EU", Quote: "SGD"}, Amount: 1, Rate: 1, LiquidityProvider: "X"}, market.ErrInvalidCurrencyCode},
		{"missing usd rate", TradeInput{Pair: market.Pair{Base: "THB", Quote: "MYR"}, Amount: 1, Rate: 1, LiquidityProvider: "X"}, market.ErrUnknownRate},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, _, err := Decompose(tt.in, fixedModes{}, scenarioRates())
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestDecomposeIsDeterministic(t *testing.T) {
	t.Parallel()

	in := TradeInput{Pair: market.Pair{Base: "MYR", Quote: "HKD"}, Amount: 42, Rate: 1.75, LiquidityProvider: "HSBC"}
	a, _, err := Decompose(in, fixedModes{}, scenarioRates())
	require.NoError(t, err)
	b, _, err := Decompose(in, fixedModes{}, scenarioRates())
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, a.Legs, b.Legs)
	assert.Equal(t, a.DecompositionReason, b.DecompositionReason)
}

func TestNewAdjustment(t *testing.T) {
	t.Parallel()

	tr, err := NewAdjustment("SGD", "DBS", -1_000, 1.3422, "RST-1")
	require.NoError(t, err)
	assert.Equal(t, KindAdjustment, tr.Kind)
	assert.Equal(t, "RST-1", tr.Reference)
	require.Len(t, tr.Legs, 1)
	assert.Equal(t, SellLeg, tr.Legs[0].Side)
	assert.Equal(t, -1_000.0, tr.Legs[0].LocalPosition)

	_, err = NewAdjustment("SGD", "DBS", 0, 1.3422, "")
	assert.ErrorIs(t, err, ErrInvalidTrade)
	_, err = NewAdjustment("SGD", "DBS", 10, 0, "")
	assert.ErrorIs(t, err, ErrInvalidTrade)
}

func TestBook(t *testing.T) {
	t.Parallel()

	tr, mirrors, err := Decompose(TradeInput{Pair: market.Pair{Base: "MYR", Quote: "HKD"}, Amount: 10, Rate: 1.75, LiquidityProvider: "HSBC"}, fixedModes{}, scenarioRates())
	require.NoError(t, err)

	b := NewBook()
	assert.Equal(t, 3, b.Add(append([]Trade{tr}, mirrors...)...))
	assert.Equal(t, 0, b.Add(tr))
	assert.Equal(t, 3, b.Len())

	got, ok := b.Get(tr.ID)
	require.True(t, ok)
	got.Legs[0].LocalPosition = 0
	again, _ := b.Get(tr.ID)
	assert.Equal(t, 10.0, again.Legs[0].LocalPosition)

	customers := b.Select(func(x Trade) bool { return !x.IsMirror() })
	assert.Len(t, customers, 1)
	assert.Equal(t, tr.ID, b.All()[0].ID)
}
