package id

import (
	"sort"
	"strings"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPrefix(t *testing.T) {
	t.Parallel()

	got := New(Trade)
	require.True(t, strings.HasPrefix(got, "TRD-"))

	_, err := ulid.Parse(strings.TrimPrefix(got, "TRD-"))
	assert.NoError(t, err)

	bare := New("")
	_, err = ulid.Parse(bare)
	assert.NoError(t, err)
}

func TestNewIsMonotonic(t *testing.T) {
	t.Parallel()

	ids := make([]string, 200)
	for i := range ids {
		ids[i] = New(Audit)
	}
	assert.True(t, sort.StringsAreSorted(ids))

	seen := map[string]bool{}
	for _, s := range ids {
		assert.False(t, seen[s], "duplicate id %s", s)
		seen[s] = true
	}
}
