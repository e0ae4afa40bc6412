package audit

import (
	"sort"
	"time"

	"github.com/rustyeddy/treasury/market"
	"github.com/rustyeddy/treasury/pkg/id"
)

// Snapshot is the view of a routing configuration the diff needs.
// ResolvedMode must apply the same fallback the router applies to keys
// that are not configured.
type Snapshot interface {
	Currencies() []market.Currency
	PairKeys() []market.PairKey
	ResolvedMode(k market.PairKey) string
}

// Diff compares prev and next and returns the ConfigChange event describing
// it. The event is not logged; callers prepend it.
func Diff(prev, next Snapshot, actor string) Event {
	prevCcy := prev.Currencies()
	nextCcy := next.Currencies()

	c := Change{
		PreviousCurrencies: append([]market.Currency{}, prevCcy...),
		NewCurrencies:      append([]market.Currency{}, nextCcy...),
		Added:              minus(nextCcy, prevCcy),
		Removed:            minus(prevCcy, nextCcy),
		PairsChanged:       []PairChange{},
		ImpactScope:        "Applies to new trades only",
	}

	keys := map[market.PairKey]struct{}{}
	for _, k := range prev.PairKeys() {
		keys[k] = struct{}{}
	}
	for _, k := range next.PairKeys() {
		keys[k] = struct{}{}
	}
	sorted := make([]market.PairKey, 0, len(keys))
	for k := range keys {
		sorted = append(sorted, k)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	for _, k := range sorted {
		from, to := prev.ResolvedMode(k), next.ResolvedMode(k)
		if from != to {
			c.PairsChanged = append(c.PairsChanged, PairChange{Pair: k, From: from, To: to})
		}
	}

	return Event{
		ID:          id.New(id.Audit),
		Time:        time.Now().UTC(),
		Type:        ConfigChange,
		Description: "Direct trading configuration updated",
		User:        actor,
		Details: map[string]any{
			"total_pairs_modified": len(c.PairsChanged),
		},
		Change: &c,
		Status: StatusCompleted,
	}
}

// minus is a - b, keeping a's order.
func minus(a, b []market.Currency) []market.Currency {
	out := []market.Currency{}
	for _, c := range a {
		if !market.ContainsCurrency(b, c) {
			out = append(out, c)
		}
	}
	return out
}
