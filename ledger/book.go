package ledger

import "sync"

// Book is the desk's trade blotter in booking order, customer trades and
// the entries derived from them alike.
type Book struct {
	mu     sync.RWMutex
	trades []Trade
	byID   map[string]int
}

func NewBook() *Book {
	return &Book{byID: map[string]int{}}
}

// Add appends trades in order. Trades whose ID is already booked are
// skipped, so replaying a journal is harmless.
func (b *Book) Add(trades ...Trade) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := 0
	for _, t := range trades {
		if _, dup := b.byID[t.ID]; dup {
			continue
		}
		b.byID[t.ID] = len(b.trades)
		b.trades = append(b.trades, t.Clone())
		n++
	}
	return n
}

func (b *Book) Get(id string) (Trade, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	i, ok := b.byID[id]
	if !ok {
		return Trade{}, false
	}
	return b.trades[i].Clone(), true
}

// All returns every booked trade in booking order.
func (b *Book) All() []Trade {
	return b.Select(nil)
}

// Select returns the trades keep accepts. A nil keep selects everything.
func (b *Book) Select(keep func(Trade) bool) []Trade {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Trade, 0, len(b.trades))
	for _, t := range b.trades {
		if keep == nil || keep(t) {
			out = append(out, t.Clone())
		}
	}
	return out
}

func (b *Book) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.trades)
}
