package audit

import (
	"strings"
	"sync"
	"time"

	"github.com/rustyeddy/treasury/pkg/id"
)

// Log is the in-memory audit trail, newest event first. Events are only ever
// prepended.
type Log struct {
	mu     sync.RWMutex
	events []Event
}

func NewLog() *Log {
	return &Log{}
}

// Prepend adds e at the head of the log and returns the stored copy. Missing
// ID and timestamp are filled in.
func (l *Log) Prepend(e Event) Event {
	if e.ID == "" {
		e.ID = id.New(id.Audit)
	}
	if e.Time.IsZero() {
		e.Time = time.Now().UTC()
	}
	e = e.clone()

	l.mu.Lock()
	l.events = append([]Event{e}, l.events...)
	l.mu.Unlock()
	return e.clone()
}

// Restore loads a previously persisted trail, newest first. It only works on
// an empty log.
func (l *Log) Restore(events []Event) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.events) > 0 {
		return false
	}
	l.events = make([]Event, len(events))
	for i, e := range events {
		l.events[i] = e.clone()
	}
	return true
}

func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events)
}

// Events returns a copy of the trail, newest first.
func (l *Log) Events() []Event {
	return l.Filter(Filter{})
}

// Filter narrows the trail the way the audit page does: exact event type,
// exact status, case-insensitive substring on user. Zero fields match all.
type Filter struct {
	Type   EventType
	Status string
	User   string
}

func (f Filter) Match(e Event) bool {
	if f.Type != "" && e.Type != f.Type {
		return false
	}
	if f.Status != "" && e.Status != f.Status {
		return false
	}
	if f.User != "" && !strings.Contains(strings.ToLower(e.User), strings.ToLower(f.User)) {
		return false
	}
	return true
}

func (l *Log) Filter(f Filter) []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Event, 0, len(l.events))
	for _, e := range l.events {
		if f.Match(e) {
			out = append(out, e.clone())
		}
	}
	return out
}
