package amount

import (
	"errors"
	"math/big"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustBig(t *testing.T, s string) *big.Int {
	t.Helper()
	n, ok := new(big.Int).SetString(s, 10)
	require.True(t, ok, "bad test integer %s", s)
	return n
}

func TestParseToBase(t *testing.T) {
	tests := []struct {
		input string
		base  string
	}{
		{"1.5", "1500000000000000000"},
		{"1", "1000000000000000000"},
		{"0", "0"},
		{"0.000000000000000001", "1"},
		{".5", "500000000000000000"},
		{"2.", "2000000000000000000"},
		{"  3.25  ", "3250000000000000000"},
		{"1.500000000000000000000", "1500000000000000000"}, // trailing zeros past 18 places are exact
		{"123456789.123456789123456789", "123456789123456789123456789"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			a, err := Parse(tt.input)
			require.NoError(t, err)
			assert.Equal(t, mustBig(t, tt.base), a.Base())
		})
	}
}

func TestParseRejects(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"abc",
		"-1",
		"+1",
		"1e18",
		"0x10",
		"1.2.3",
		"1,5",
		".",
		"0.0000000000000000001", // 19 significant decimals
		"NaN",
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			_, err := Parse(in)
			require.Error(t, err)
			var inputErr *InputError
			assert.True(t, errors.As(err, &inputErr), "want *InputError, got %T", err)
			assert.Equal(t, in, inputErr.Input)
		})
	}
}

func TestFromBaseString(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"2000000000000000000", "2"},
		{"1500000000000000000", "1.5"},
		{"1", "0.000000000000000001"},
		{"0", "0"},
		{"123000000000000000000", "123"},
	}
	for _, tt := range tests {
		t.Run(tt.base, func(t *testing.T) {
			assert.Equal(t, tt.want, FromBase(mustBig(t, tt.base)).String())
		})
	}
}

func TestFromBaseNilAndNegative(t *testing.T) {
	assert.True(t, FromBase(nil).IsZero())
	assert.True(t, FromBase(big.NewInt(-5)).IsZero())
}

func TestStringNormalizesTrailingZeros(t *testing.T) {
	assert.Equal(t, "1.5", MustParse("1.50000").String())
	assert.Equal(t, "2", MustParse("2.000").String())
	assert.Equal(t, "0.5", MustParse(".5").String())
}

func TestRoundTripFixed(t *testing.T) {
	for _, s := range []string{"0", "1", "1.5", "0.1", "42.000000000000000001", "999999999999.999999999999999999"} {
		a := MustParse(s)
		back := FromBase(a.Base())
		assert.True(t, a.Equal(back), "round trip of %s gave %s", s, back)
		assert.Equal(t, a.String(), back.String())
	}
}

func TestRoundTripRandom(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	digits := func(n int) string {
		var sb strings.Builder
		for i := 0; i < n; i++ {
			sb.WriteByte(byte('0' + rng.Intn(10)))
		}
		return sb.String()
	}

	for i := 0; i < 500; i++ {
		s := digits(1 + rng.Intn(12))
		if frac := rng.Intn(Decimals + 1); frac > 0 {
			s += "." + digits(frac)
		}
		a, err := Parse(s)
		require.NoError(t, err, s)
		back := FromBase(a.Base())
		require.Equal(t, a.String(), back.String(), "input %s", s)
	}
}

func TestMustParsePanics(t *testing.T) {
	assert.Panics(t, func() { MustParse("nope") })
}
