package audit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogPrependNewestFirst(t *testing.T) {
	t.Parallel()

	l := NewLog()
	first := l.Prepend(Event{Type: HedgeEntry, User: "john.trader@company.com", Status: StatusPending})
	second := l.Prepend(Event{Type: RateUpdate, User: "system", Status: StatusCompleted})

	assert.NotEmpty(t, first.ID)
	assert.False(t, first.Time.IsZero())

	events := l.Events()
	require.Len(t, events, 2)
	assert.Equal(t, second.ID, events[0].ID)
	assert.Equal(t, first.ID, events[1].ID)
}

func TestLogReturnsCopies(t *testing.T) {
	t.Parallel()

	l := NewLog()
	l.Prepend(Event{Type: Approval, Details: map[string]any{"level": 1}})

	got := l.Events()
	got[0].Details["level"] = 2
	got[0].Description = "edited"

	again := l.Events()
	assert.Equal(t, 1, again[0].Details["level"])
	assert.Empty(t, again[0].Description)
}

func TestLogFilter(t *testing.T) {
	t.Parallel()

	l := NewLog()
	l.Prepend(Event{Type: HedgeEntry, User: "john.trader@company.com", Status: StatusPending})
	l.Prepend(Event{Type: Approval, User: "sarah.manager@company.com", Status: StatusApproved})
	l.Prepend(Event{Type: HedgeEntry, User: "john.trader@company.com", Status: StatusCompleted})
	l.Prepend(Event{Type: RateUpdate, User: "system", Status: StatusCompleted})

	tests := []struct {
		name   string
		filter Filter
		want   int
	}{
		{"all", Filter{}, 4},
		{"by type", Filter{Type: HedgeEntry}, 2},
		{"by status", Filter{Status: StatusCompleted}, 2},
		{"user substring case insensitive", Filter{User: "JOHN"}, 2},
		{"combined", Filter{Type: HedgeEntry, Status: StatusPending, User: "trader"}, 1},
		{"none", Filter{Type: PositionReset}, 0},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Len(t, l.Filter(tt.filter), tt.want)
		})
	}
}

func TestLogRestore(t *testing.T) {
	t.Parallel()

	l := NewLog()
	ok := l.Restore([]Event{
		{ID: "AUD-2", Time: time.Now(), Type: RateUpdate},
		{ID: "AUD-1", Time: time.Now().Add(-time.Hour), Type: HedgeEntry},
	})
	require.True(t, ok)
	assert.Equal(t, 2, l.Len())
	assert.Equal(t, "AUD-2", l.Events()[0].ID)

	assert.False(t, l.Restore([]Event{{ID: "AUD-3"}}))
}

func TestLogConcurrentPrepend(t *testing.T) {
	t.Parallel()

	l := NewLog()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Prepend(Event{Type: RateUpdate})
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, l.Len())
}
