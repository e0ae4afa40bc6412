package routing

import (
	"time"

	"github.com/rustyeddy/treasury/market"
)

// Override pins a single pair to a mode.
type Override struct {
	Base  market.Currency `json:"base" yaml:"base"`
	Quote market.Currency `json:"quote" yaml:"quote"`
	Mode  Mode            `json:"mode" yaml:"mode"`
}

// DefaultOverrides are the regional pairs the desk routes through USD out of
// the box.
var DefaultOverrides = []Override{
	{Base: "MYR", Quote: "HKD", Mode: Exotic},
	{Base: "CNH", Quote: "SGD", Mode: Exotic},
}

// DirectAmong returns every pairwise combination of ccys set to Direct.
func DirectAmong(ccys []market.Currency) map[market.PairKey]Mode {
	out := map[market.PairKey]Mode{}
	for i := 0; i < len(ccys); i++ {
		for j := i + 1; j < len(ccys); j++ {
			k, err := market.NormalizePair(ccys[i], ccys[j])
			if err != nil || ccys[i] == ccys[j] {
				continue
			}
			out[k] = Direct
		}
	}
	return out
}

// DefaultConfiguration routes every reference pair directly, applies the
// overrides, and activates reference plus extra currencies.
func DefaultConfiguration(reference, extra []market.Currency, overrides []Override) (Configuration, error) {
	modes := DirectAmong(reference)
	for _, o := range overrides {
		k, err := market.NormalizePair(o.Base, o.Quote)
		if err != nil {
			return Configuration{}, err
		}
		modes[k] = o.Mode
	}

	active := make([]market.Currency, 0, len(reference)+len(extra))
	for _, c := range append(append([]market.Currency{}, reference...), extra...) {
		if !market.ContainsCurrency(active, c) {
			active = append(active, c)
		}
	}

	cfg := Configuration{
		ID:               "default-config",
		Version:          1,
		ActiveCurrencies: active,
		HiddenCurrencies: []market.Currency{},
		PairModes:        modes,
		ModifiedBy:       "System",
		ModifiedAt:       time.Now().UTC(),
	}
	return cfg, cfg.Validate()
}
