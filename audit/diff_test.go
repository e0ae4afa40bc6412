package audit

import (
	"testing"

	"github.com/rustyeddy/treasury/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSnapshot struct {
	ccys  []market.Currency
	modes map[market.PairKey]string
}

func (f fakeSnapshot) Currencies() []market.Currency { return f.ccys }

func (f fakeSnapshot) PairKeys() []market.PairKey {
	out := make([]market.PairKey, 0, len(f.modes))
	for k := range f.modes {
		out = append(out, k)
	}
	return out
}

func (f fakeSnapshot) ResolvedMode(k market.PairKey) string {
	if m, ok := f.modes[k]; ok {
		return m
	}
	return "exotic"
}

func TestDiffNoop(t *testing.T) {
	t.Parallel()

	snap := fakeSnapshot{
		ccys:  []market.Currency{"USD", "EUR", "SGD"},
		modes: map[market.PairKey]string{"EUR/SGD": "direct", "EUR/USD": "direct"},
	}

	ev := Diff(snap, snap, "ops@treasury")
	require.NotNil(t, ev.Change)
	assert.Equal(t, ConfigChange, ev.Type)
	assert.Equal(t, "ops@treasury", ev.User)
	assert.Equal(t, StatusCompleted, ev.Status)
	assert.Empty(t, ev.Change.Added)
	assert.Empty(t, ev.Change.Removed)
	assert.Empty(t, ev.Change.PairsChanged)
	assert.True(t, ev.Change.Empty())
	assert.Equal(t, 0, ev.Details["total_pairs_modified"])
}

func TestDiffCurrenciesAndPairs(t *testing.T) {
	t.Parallel()

	prev := fakeSnapshot{
		ccys: []market.Currency{"USD", "EUR", "SGD", "MYR"},
		modes: map[market.PairKey]string{
			"EUR/SGD": "direct",
			"HKD/MYR": "exotic",
			"EUR/USD": "direct",
		},
	}
	next := fakeSnapshot{
		ccys: []market.Currency{"USD", "EUR", "SGD", "HKD", "CNH"},
		modes: map[market.PairKey]string{
			"EUR/SGD": "exotic",
			"HKD/MYR": "exotic",
			"EUR/USD": "direct",
			"CNH/SGD": "direct",
		},
	}

	ev := Diff(prev, next, "ops")
	require.NotNil(t, ev.Change)
	assert.Equal(t, []market.Currency{"HKD", "CNH"}, ev.Change.Added)
	assert.Equal(t, []market.Currency{"MYR"}, ev.Change.Removed)
	assert.Equal(t, []PairChange{
		{Pair: "CNH/SGD", From: "exotic", To: "direct"},
		{Pair: "EUR/SGD", From: "direct", To: "exotic"},
	}, ev.Change.PairsChanged)
	assert.Equal(t, 2, ev.Details["total_pairs_modified"])
}

func TestDiffDroppedKeyResolvesToDefault(t *testing.T) {
	t.Parallel()

	prev := fakeSnapshot{
		ccys:  []market.Currency{"USD", "EUR"},
		modes: map[market.PairKey]string{"EUR/USD": "direct"},
	}
	next := fakeSnapshot{
		ccys:  []market.Currency{"USD", "EUR"},
		modes: map[market.PairKey]string{},
	}

	ev := Diff(prev, next, "ops")
	assert.Equal(t, []PairChange{{Pair: "EUR/USD", From: "direct", To: "exotic"}}, ev.Change.PairsChanged)
}
