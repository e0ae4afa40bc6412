// Package audit keeps the desk's append-only audit trail and the routing
// configuration diff that feeds it.
package audit

import (
	"time"

	"github.com/rustyeddy/treasury/market"
)

type EventType string

const (
	PositionReset EventType = "Position Reset"
	HedgeEntry    EventType = "Hedge Entry"
	Approval      EventType = "Approval"
	RateUpdate    EventType = "Rate Update"
	ConfigChange  EventType = "Configuration Change"
)

const (
	StatusCompleted = "Completed"
	StatusPending   = "Pending"
	StatusApproved  = "Approved"
	StatusRejected  = "Rejected"
)

// Event is one immutable audit record.
type Event struct {
	ID          string         `json:"id"`
	Time        time.Time      `json:"timestamp"`
	Type        EventType      `json:"event_type"`
	Description string         `json:"description"`
	User        string         `json:"user"`
	Details     map[string]any `json:"details,omitempty"`
	Change      *Change        `json:"change,omitempty"`
	Status      string         `json:"status"`
}

// Change is the structured body of a ConfigChange event.
type Change struct {
	PreviousCurrencies []market.Currency `json:"previous_currencies"`
	NewCurrencies      []market.Currency `json:"new_currencies"`
	Added              []market.Currency `json:"currencies_added"`
	Removed            []market.Currency `json:"currencies_removed"`
	PairsChanged       []PairChange      `json:"pairs_changed"`
	ImpactScope        string            `json:"impact_scope"`
}

type PairChange struct {
	Pair market.PairKey `json:"pair"`
	From string         `json:"from"`
	To   string         `json:"to"`
}

// Empty reports whether the change altered nothing.
func (c Change) Empty() bool {
	return len(c.Added) == 0 && len(c.Removed) == 0 && len(c.PairsChanged) == 0
}

// clone returns a copy that shares no slices or maps with e.
func (e Event) clone() Event {
	if e.Details != nil {
		d := make(map[string]any, len(e.Details))
		for k, v := range e.Details {
			d[k] = v
		}
		e.Details = d
	}
	if e.Change != nil {
		c := *e.Change
		c.PreviousCurrencies = copyOf(c.PreviousCurrencies)
		c.NewCurrencies = copyOf(c.NewCurrencies)
		c.Added = copyOf(c.Added)
		c.Removed = copyOf(c.Removed)
		c.PairsChanged = copyOf(c.PairsChanged)
		e.Change = &c
	}
	return e
}

func copyOf[T any](in []T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	copy(out, in)
	return out
}
