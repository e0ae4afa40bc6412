package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePairIsOrderIndependent(t *testing.T) {
	t.Parallel()

	all := append(append([]Currency{}, G10...), Regional...)
	for _, a := range all {
		for _, b := range all {
			ab, err := NormalizePair(a, b)
			require.NoError(t, err)
			ba, err := NormalizePair(b, a)
			require.NoError(t, err)
			assert.Equal(t, ab, ba, "%s/%s", a, b)
		}
	}
}

func TestNormalizePair(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		a, b    Currency
		want    PairKey
		wantErr bool
	}{
		{"already sorted", "EUR", "SGD", "EUR/SGD", false},
		{"reversed", "SGD", "EUR", "EUR/SGD", false},
		{"usd quote", "USD", "MYR", "MYR/USD", false},
		{"same currency", "JPY", "JPY", "JPY/JPY", false},
		{"empty base", "", "USD", "", true},
		{"empty quote", "USD", "", "", true},
		{"too long", "USDT", "EUR", "", true},
		{"digits", "U5D", "EUR", "", true},
		{"lowercase", "usd", "EUR", "", true},
		{"mixed case", "Sgd", "EUR", "", true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := NormalizePair(tt.a, tt.b)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCurrencyCode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPairKeySplit(t *testing.T) {
	t.Parallel()

	a, b, err := MustPair("SGD", "EUR").Split()
	require.NoError(t, err)
	assert.Equal(t, Currency("EUR"), a)
	assert.Equal(t, Currency("SGD"), b)

	_, _, err = PairKey("EURSGD").Split()
	assert.ErrorIs(t, err, ErrInvalidCurrencyCode)
}

func TestParsePair(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"MYR/HKD", "MYR_HKD", "MYRHKD", " MYR/HKD "} {
		p, err := ParsePair(s)
		require.NoError(t, err, s)
		assert.Equal(t, Pair{Base: "MYR", Quote: "HKD"}, p)
		assert.Equal(t, "MYR/HKD", p.String())
	}

	_, err := ParsePair("MYR")
	assert.ErrorIs(t, err, ErrInvalidCurrencyCode)
	_, err = ParsePair("MY/HKD")
	assert.ErrorIs(t, err, ErrInvalidCurrencyCode)
	_, err = ParsePair("myr/hkd")
	assert.ErrorIs(t, err, ErrInvalidCurrencyCode)
}

func TestPairUSDHelpers(t *testing.T) {
	t.Parallel()

	assert.True(t, Pair{Base: "USD", Quote: "SGD"}.HasUSD())
	assert.True(t, Pair{Base: "EUR", Quote: "USD"}.HasUSD())
	assert.False(t, Pair{Base: "EUR", Quote: "SGD"}.HasUSD())

	assert.Equal(t, Currency("SGD"), Pair{Base: "USD", Quote: "SGD"}.Other())
	assert.Equal(t, Currency("EUR"), Pair{Base: "EUR", Quote: "USD"}.Other())
}
