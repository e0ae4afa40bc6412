package routing

import (
	"fmt"
	"sort"

	"github.com/rustyeddy/treasury/audit"
	"github.com/rustyeddy/treasury/market"
)

// Staging collects pending edits against the configuration version it was
// opened from. Nothing is visible to routing until Commit. A Staging is not
// safe for concurrent use; each editor opens their own.
type Staging struct {
	store *Store
	base  *Configuration
	next  *Configuration
}

func newStaging(s *Store, base *Configuration) *Staging {
	return &Staging{store: s, base: base, next: base.clone()}
}

// Version is the committed version this staging started from.
func (st *Staging) Version() int { return st.base.Version }

// Mode reads the staged mode, not the committed one.
func (st *Staging) Mode(base, quote market.Currency) Mode {
	return st.next.Mode(base, quote)
}

// Toggle flips one pair between Direct and Exotic and returns the new mode.
func (st *Staging) Toggle(base, quote market.Currency) (Mode, error) {
	if base == quote {
		return "", fmt.Errorf("%w: cannot route %s against itself", ErrValidation, base)
	}
	k, err := market.NormalizePair(base, quote)
	if err != nil {
		return "", err
	}
	m := st.next.Mode(base, quote).Flip()
	st.next.PairModes[k] = m
	return m, nil
}

// Set pins one pair to m.
func (st *Staging) Set(base, quote market.Currency, m Mode) error {
	if base == quote {
		return fmt.Errorf("%w: cannot route %s against itself", ErrValidation, base)
	}
	if m != Direct && m != Exotic {
		return fmt.Errorf("%w: unknown mode %q", ErrValidation, m)
	}
	k, err := market.NormalizePair(base, quote)
	if err != nil {
		return err
	}
	st.next.PairModes[k] = m
	return nil
}

// AddCurrency activates c and sets every pair between c and the currently
// active currencies to def. A hidden currency comes back out of hidden.
func (st *Staging) AddCurrency(c market.Currency, def Mode) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if market.ContainsCurrency(st.next.ActiveCurrencies, c) {
		return fmt.Errorf("%w: %s is already active", ErrValidation, c)
	}
	for _, other := range st.next.ActiveCurrencies {
		if err := st.Set(c, other, def); err != nil {
			return err
		}
	}
	st.next.ActiveCurrencies = append(st.next.ActiveCurrencies, c)
	st.next.HiddenCurrencies = remove(st.next.HiddenCurrencies, c)
	return nil
}

// RemoveCurrency hides c. Its pair entries stay in the map so the history
// of how it was routed survives.
func (st *Staging) RemoveCurrency(c market.Currency) error {
	if !market.ContainsCurrency(st.next.ActiveCurrencies, c) {
		return fmt.Errorf("%w: %s is not active", ErrValidation, c)
	}
	st.next.ActiveCurrencies = remove(st.next.ActiveCurrencies, c)
	if !market.ContainsCurrency(st.next.HiddenCurrencies, c) {
		st.next.HiddenCurrencies = append(st.next.HiddenCurrencies, c)
	}
	return nil
}

// ResetTo replaces the staged set with reference, all pairwise Direct.
func (st *Staging) ResetTo(reference []market.Currency) {
	st.next.ActiveCurrencies = append([]market.Currency(nil), reference...)
	st.next.PairModes = DirectAmong(reference)
	st.next.HiddenCurrencies = []market.Currency{}
}

// Modified lists pairs whose staged entry differs from the committed one,
// sorted.
func (st *Staging) Modified() []market.PairKey {
	keys := map[market.PairKey]struct{}{}
	for k := range st.base.PairModes {
		keys[k] = struct{}{}
	}
	for k := range st.next.PairModes {
		keys[k] = struct{}{}
	}

	var out []market.PairKey
	for k := range keys {
		was, wok := st.base.PairModes[k]
		now, nok := st.next.PairModes[k]
		if wok != nok || was != now {
			out = append(out, k)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// CurrenciesChanged reports whether the active set differs, ignoring order.
func (st *Staging) CurrenciesChanged() bool {
	a := market.SortCurrencies(append([]market.Currency(nil), st.base.ActiveCurrencies...))
	b := market.SortCurrencies(append([]market.Currency(nil), st.next.ActiveCurrencies...))
	if len(a) != len(b) {
		return true
	}
	for i := range a {
		if a[i] != b[i] {
			return true
		}
	}
	return false
}

// Preview returns a copy of the staged configuration.
func (st *Staging) Preview() Configuration {
	return *st.next.clone()
}

// Commit replaces the committed configuration with the staged one. It fails
// with ErrStale when someone else committed after this staging was opened.
func (st *Staging) Commit(actor string) (Configuration, audit.Event, error) {
	return st.store.ReplaceIf(st.base.Version, st.next.ActiveCurrencies, st.next.PairModes, st.next.HiddenCurrencies, actor)
}

func remove(cs []market.Currency, c market.Currency) []market.Currency {
	out := make([]market.Currency, 0, len(cs))
	for _, x := range cs {
		if x != c {
			out = append(out, x)
		}
	}
	return out
}
