package routing

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rustyeddy/treasury/audit"
	"github.com/rustyeddy/treasury/market"
)

// Resolver is the read side of routing the decomposition engine needs.
type Resolver interface {
	Mode(base, quote market.Currency) Mode
}

// Store owns the committed configuration. Reads load a snapshot pointer
// without locking; Replace swaps the pointer, diffs and logs the change
// under one lock so concurrent saves cannot lose each other's edits.
type Store struct {
	mu  sync.Mutex
	cur atomic.Pointer[Configuration]
	log *audit.Log
	now func() time.Time
}

// NewStore validates initial and makes it the committed configuration.
// Configuration changes are prepended to log.
func NewStore(initial Configuration, log *audit.Log) (*Store, error) {
	if err := initial.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = audit.NewLog()
	}
	s := &Store{log: log, now: func() time.Time { return time.Now().UTC() }}
	c := initial.clone()
	if c.Version == 0 {
		c.Version = 1
	}
	s.cur.Store(c)
	return s, nil
}

// Current returns a copy of the committed configuration.
func (s *Store) Current() Configuration {
	return *s.cur.Load().clone()
}

func (s *Store) Version() int {
	return s.cur.Load().Version
}

func (s *Store) Mode(base, quote market.Currency) Mode {
	return s.cur.Load().Mode(base, quote)
}

func (s *Store) IsDirect(base, quote market.Currency) bool {
	return s.cur.Load().IsDirect(base, quote)
}

func (s *Store) Status(base, quote market.Currency) PairStatus {
	return s.cur.Load().Status(base, quote)
}

func (s *Store) Matrix() [][]PairStatus {
	return s.cur.Load().Matrix()
}

// Replace commits a new configuration built from the arguments and returns
// it along with the ConfigChange event it logged. On error nothing changes.
func (s *Store) Replace(active []market.Currency, modes map[market.PairKey]Mode, hidden []market.Currency, actor string) (Configuration, audit.Event, error) {
	return s.replace(0, active, modes, hidden, actor)
}

// ReplaceIf is Replace guarded by the version the caller last read. It fails
// with ErrStale if another save landed in between.
func (s *Store) ReplaceIf(version int, active []market.Currency, modes map[market.PairKey]Mode, hidden []market.Currency, actor string) (Configuration, audit.Event, error) {
	if version <= 0 {
		return Configuration{}, audit.Event{}, fmt.Errorf("%w: version must be positive", ErrValidation)
	}
	return s.replace(version, active, modes, hidden, actor)
}

func (s *Store) replace(version int, active []market.Currency, modes map[market.PairKey]Mode, hidden []market.Currency, actor string) (Configuration, audit.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.cur.Load()
	if version > 0 && prev.Version != version {
		return Configuration{}, audit.Event{}, fmt.Errorf("%w: staged at v%d, current v%d", ErrStale, version, prev.Version)
	}

	next := (&Configuration{
		ID:                 prev.ID,
		Version:            prev.Version + 1,
		ActiveCurrencies:   active,
		HiddenCurrencies:   hidden,
		PairModes:          modes,
		ModifiedBy:         actor,
		ModifiedAt:         s.now(),
		PreviousCurrencies: prev.ActiveCurrencies,
	}).clone()
	if next.HiddenCurrencies == nil {
		next.HiddenCurrencies = []market.Currency{}
	}
	if err := next.Validate(); err != nil {
		return Configuration{}, audit.Event{}, err
	}

	ev := audit.Diff(prev, next, actor)
	s.cur.Store(next)
	ev = s.log.Prepend(ev)

	return *next.clone(), ev, nil
}

// Stage opens an uncommitted copy of the current configuration for editing.
func (s *Store) Stage() *Staging {
	return newStaging(s, s.cur.Load().clone())
}
