package amount_test

import (
	"encoding/json"
	"testing"

	"github.com/StarryDeserts/StableLayer-quickstart/pkg/amount"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		t.Parallel()

		fixtures := []struct {
			input    string
			decimals uint32
			expected string
		}{
			{"1.5", 6, "1500000"},
			{"0", 6, "0"},
			{"0.0", 6, "0"},
			{"100", 6, "100000000"},
			{"0.000001", 6, "1"},
			{"  42.25 ", 2, "4225"},
			{"7", 0, "7"},
			{"007.50", 6, "7500000"},
			{"123456789012345678901234567890", 18, "123456789012345678901234567890000000000000000000"},
		}
		for _, f := range fixtures {
			a, err := amount.Parse(f.input, f.decimals)
			require.NoError(t, err, f.input)
			require.Equal(t, f.expected, a.String(), f.input)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		t.Parallel()

		fixtures := []struct {
			input    string
			decimals uint32
			err      error
		}{
			{"", 6, amount.ErrInvalidFormat},
			{"1.", 6, amount.ErrInvalidFormat},
			{".5", 6, amount.ErrInvalidFormat},
			{"-1", 6, amount.ErrInvalidFormat},
			{"+1", 6, amount.ErrInvalidFormat},
			{"1e6", 6, amount.ErrInvalidFormat},
			{"1,000", 6, amount.ErrInvalidFormat},
			{"1.2.3", 6, amount.ErrInvalidFormat},
			{"abc", 6, amount.ErrInvalidFormat},
			{"1.0000001", 6, amount.ErrPrecisionExceeded},
			{"1.5", 0, amount.ErrPrecisionExceeded},
		}
		for _, f := range fixtures {
			_, err := amount.Parse(f.input, f.decimals)
			require.ErrorIs(t, err, f.err, f.input)
		}
	})
}

func TestFormat(t *testing.T) {
	t.Parallel()

	fixtures := []struct {
		baseUnits uint64
		decimals  uint32
		expected  string
	}{
		{1500000, 6, "1.5"},
		{1000000, 6, "1"},
		{0, 6, "0"},
		{1, 6, "0.000001"},
		{123, 0, "123"},
		{100, 2, "1"},
		{105, 2, "1.05"},
	}
	for _, f := range fixtures {
		require.Equal(t, f.expected, amount.Format(amount.FromUint64(f.baseUnits), f.decimals))
	}

	require.Equal(t, "0", amount.Format(amount.Amount{}, 6))
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	fixtures := []struct {
		input     string
		canonical string
	}{
		{"1.500", "1.5"},
		{"0.0", "0"},
		{"10.000001", "10.000001"},
		{"00012", "12"},
		{"3.10", "3.1"},
	}
	for _, f := range fixtures {
		a, err := amount.Parse(f.input, 6)
		require.NoError(t, err)
		require.Equal(t, f.canonical, amount.Format(a, 6))
	}
}

func TestArithmetic(t *testing.T) {
	t.Parallel()

	a := amount.FromUint64(10)
	b := amount.FromUint64(3)

	require.Equal(t, "13", a.Add(b).String())

	diff, err := a.Sub(b)
	require.NoError(t, err)
	require.Equal(t, "7", diff.String())

	_, err = b.Sub(a)
	require.ErrorIs(t, err, amount.ErrNegative)

	require.Equal(t, 1, a.Cmp(b))
	require.True(t, amount.Zero().IsZero())
	require.False(t, amount.Zero().IsPositive())
	require.Equal(t, "0.00001", a.Decimal(6).String())
}

func TestJSON(t *testing.T) {
	t.Parallel()

	a, err := amount.Parse("2.5", 6)
	require.NoError(t, err)

	buf, err := json.Marshal(a)
	require.NoError(t, err)
	require.Equal(t, `"2500000"`, string(buf))

	var got amount.Amount
	require.NoError(t, json.Unmarshal(buf, &got))
	require.True(t, a.Equal(got))

	require.Error(t, json.Unmarshal([]byte(`"12x"`), &got))
}
