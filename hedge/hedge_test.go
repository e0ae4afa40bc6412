package hedge

import (
	"testing"

	"github.com/rustyeddy/treasury/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() Input {
	return Input{
		Pair:              market.Pair{Base: "USD", Quote: "SGD"},
		Type:              Forward,
		Amount:            500_000,
		Rate:              1.3422,
		LiquidityProvider: "DBS",
		ExternalReference: "DBS-FWD-001",
		EnteredBy:         "john.trader@company.com",
	}
}

func TestNewDualAuthThreshold(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		amount   float64
		dualAuth bool
		status   Status
	}{
		{"below", 999_999, false, Approved},
		{"at threshold", 1_000_000, true, Pending},
		{"above", 2_000_000, true, Pending},
		{"short above", -2_000_000, true, Pending},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			in := validInput()
			in.Amount = tt.amount
			h, err := New(in, DefaultDualAuthThreshold)
			require.NoError(t, err)
			assert.Equal(t, tt.dualAuth, h.RequiresDualAuth)
			assert.Equal(t, tt.status, h.Status)
			assert.Contains(t, h.ID, "HDG-")
		})
	}
}

func TestNewRejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Input)
	}{
		{"same currency", func(in *Input) { in.Pair.Quote = "USD" }},
		{"unknown type", func(in *Input) { in.Type = "Future" }},
		{"zero amount", func(in *Input) { in.Amount = 0 }},
		{"zero rate", func(in *Input) { in.Rate = 0 }},
		{"no provider", func(in *Input) { in.LiquidityProvider = " " }},
		{"no trader", func(in *Input) { in.EnteredBy = "" }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			in := validInput()
			tt.mutate(&in)
			_, err := New(in, DefaultDualAuthThreshold)
			assert.ErrorIs(t, err, ErrInvalidHedge)
		})
	}

	in := validInput()
	in.Pair.Base = "US"
	_, err := New(in, DefaultDualAuthThreshold)
	assert.ErrorIs(t, err, market.ErrInvalidCurrencyCode)
}

func TestParseType(t *testing.T) {
	t.Parallel()

	ty, err := ParseType("ndf")
	require.NoError(t, err)
	assert.Equal(t, NDF, ty)
}

func TestRegisterApprove(t *testing.T) {
	t.Parallel()

	in := validInput()
	in.Amount = 2_000_000
	h, err := New(in, DefaultDualAuthThreshold)
	require.NoError(t, err)

	r := NewRegister()
	require.NoError(t, r.Add(h))
	assert.ErrorIs(t, r.Add(h), ErrInvalidHedge)
	assert.False(t, r.Covered("SGD", "DBS"))

	_, err = r.Approve(h.ID, "JOHN.trader@company.com")
	assert.ErrorIs(t, err, ErrSelfApproval)

	_, err = r.Approve("HDG-nope", "sarah.manager@company.com")
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := r.Approve(h.ID, "sarah.manager@company.com")
	require.NoError(t, err)
	assert.Equal(t, Approved, got.Status)
	assert.Equal(t, "sarah.manager@company.com", got.ApprovedBy)

	_, err = r.Approve(h.ID, "cfo@company.com")
	assert.ErrorIs(t, err, ErrInvalidState)

	assert.True(t, r.Covered("SGD", "DBS"))
	assert.True(t, r.Covered("USD", "DBS"))
	assert.False(t, r.Covered("SGD", "UOB"))
}

func TestRegisterOrdering(t *testing.T) {
	t.Parallel()

	r := NewRegister()
	var ids []string
	for _, lp := range []string{"UOB", "DBS", "HSBC"} {
		in := validInput()
		in.LiquidityProvider = lp
		h, err := New(in, DefaultDualAuthThreshold)
		require.NoError(t, err)
		require.NoError(t, r.Add(h))
		ids = append(ids, h.ID)
	}

	all := r.All()
	require.Len(t, all, 3)
	assert.Equal(t, ids[2], all[0].ID)
	assert.Equal(t, ids[0], all[2].ID)
	assert.Equal(t, []string{"DBS", "HSBC", "UOB"}, r.Providers())

	got, ok := r.Get(ids[1])
	require.True(t, ok)
	assert.Equal(t, "DBS", got.LiquidityProvider)
}
