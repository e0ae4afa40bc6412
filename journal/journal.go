// Package journal persists what the desk commits: audit events, routing
// configuration versions and booked trades. It is a durability add-on; the
// in-memory stores stay authoritative while the process runs.
package journal

import (
	"errors"

	jsoniter "github.com/json-iterator/go"

	"github.com/rustyeddy/treasury/audit"
	"github.com/rustyeddy/treasury/ledger"
	"github.com/rustyeddy/treasury/routing"
)

var ErrNotFound = errors.New("journal: not found")

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Journal interface {
	RecordEvent(audit.Event) error
	RecordConfig(routing.Configuration) error
	RecordTrade(ledger.Trade) error

	// Events returns the stored trail newest first.
	Events() ([]audit.Event, error)
	EventsByType(audit.EventType) ([]audit.Event, error)
	// LatestConfig returns the highest version recorded, or ErrNotFound.
	LatestConfig() (routing.Configuration, error)
	// Trades returns trades in booking order.
	Trades() ([]ledger.Trade, error)
	// GetTrade wraps ErrNotFound for an unknown id.
	GetTrade(id string) (ledger.Trade, error)

	Close() error
}
