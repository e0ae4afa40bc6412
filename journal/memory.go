package journal

import (
	"fmt"
	"sync"

	"github.com/rustyeddy/treasury/audit"
	"github.com/rustyeddy/treasury/ledger"
	"github.com/rustyeddy/treasury/routing"
)

// Memory is the journal used when nothing should outlive the process.
type Memory struct {
	mu      sync.Mutex
	events  []audit.Event
	configs []routing.Configuration
	trades  []ledger.Trade
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) RecordEvent(e audit.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, e)
	return nil
}

func (m *Memory) RecordConfig(c routing.Configuration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.configs = append(m.configs, c)
	return nil
}

func (m *Memory) RecordTrade(t ledger.Trade) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.trades = append(m.trades, t.Clone())
	return nil
}

func (m *Memory) Events() ([]audit.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]audit.Event, 0, len(m.events))
	for i := len(m.events) - 1; i >= 0; i-- {
		out = append(out, m.events[i])
	}
	return out, nil
}

func (m *Memory) EventsByType(t audit.EventType) ([]audit.Event, error) {
	all, _ := m.Events()
	out := all[:0]
	for _, e := range all {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *Memory) LatestConfig() (routing.Configuration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.configs) == 0 {
		return routing.Configuration{}, ErrNotFound
	}
	best := m.configs[0]
	for _, c := range m.configs[1:] {
		if c.Version > best.Version {
			best = c
		}
	}
	return best, nil
}

func (m *Memory) Trades() ([]ledger.Trade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ledger.Trade, len(m.trades))
	for i, t := range m.trades {
		out[i] = t.Clone()
	}
	return out, nil
}

func (m *Memory) GetTrade(id string) (ledger.Trade, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.trades {
		if t.ID == id {
			return t.Clone(), nil
		}
	}
	return ledger.Trade{}, fmt.Errorf("%w: trade %q", ErrNotFound, id)
}

func (m *Memory) Close() error { return nil }
