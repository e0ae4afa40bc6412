// Package routing decides whether a currency pair trades directly or has to
// be decomposed through USD, and owns the committed routing configuration.
package routing

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation = errors.New("invalid routing configuration")
	ErrStale      = errors.New("routing configuration changed since it was staged")
)

type Mode string

const (
	Direct Mode = "direct"
	Exotic Mode = "exotic"
)

// USDPair marks a trade on a pair with USD on one side. Such a pair already
// is a USD leg, so it is never looked up in, or stored in, a configuration.
const USDPair Mode = "usd"

// Fallback is the mode of any pair that has no explicit entry. Unconfigured
// pairs are never assumed direct.
const Fallback = Exotic

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case Direct:
		return Direct, nil
	case Exotic:
		return Exotic, nil
	}
	return "", fmt.Errorf("%w: unknown mode %q", ErrValidation, s)
}

func (m Mode) Flip() Mode {
	if m == Direct {
		return Exotic
	}
	return Direct
}

// Label is the display name used in matrices and trade listings.
func (m Mode) Label() string {
	switch m {
	case Direct:
		return "Direct"
	case USDPair:
		return "USD pair"
	}
	return "Exotic"
}
