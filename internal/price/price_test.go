package price

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Amount
	}{
		{name: "currency symbol", raw: "$790", want: 790},
		{name: "bare integer", raw: "790", want: 790},
		{name: "zero cents", raw: "790.00", want: 790},
		{name: "half rounds up", raw: "790.50", want: 791},
		{name: "below half rounds down", raw: "790.49", want: 790},
		{name: "thousands separator", raw: "$1,234.56", want: 1235},
		{name: "surrounding whitespace", raw: "  $ 360 \n", want: 360},
		{name: "trailing dot", raw: "820.", want: 820},
		{name: "leading dot", raw: ".5", want: 1},
		{name: "empty", raw: "", want: 0},
		{name: "no digits", raw: "free", want: 0},
		{name: "only a dot", raw: ".", want: 0},
		{name: "two decimal points", raw: "1.234.56", want: 0},
		{name: "label around price", raw: "Total: 1100 *includes tax", want: 1100},
		{name: "non ascii digits are dropped", raw: "٣٤5", want: 5},
		{name: "twenty digits overflow", raw: "$99999999999999999999", want: 0},
		{name: "grouped digits overflow", raw: "$12,345,678,901,234,567,890.00", want: 0},
		{name: "twenty seven digits overflow", raw: "100000000000000000000000000", want: 0},
		{name: "exponent sized run", raw: "1" + strings.Repeat("0", 400), want: 0},
		{name: "largest exact float below the limit", raw: "9223372036854774784", want: 9223372036854774784},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Normalize(tt.raw))
		})
	}
}

func TestNormalize_Deterministic(t *testing.T) {
	inputs := []string{"$790", "790.50", "$1,234.56", "", "free", "1.2.3"}

	for _, in := range inputs {
		first := Normalize(in)
		for i := 0; i < 10; i++ {
			require.Equal(t, first, Normalize(in), "input %q", in)
		}
	}
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Amount
		wantErr error
	}{
		{name: "valid price", raw: "$360", want: 360},
		{name: "blank field", raw: "   ", want: 0},
		{name: "empty field", raw: "", want: 0},
		{name: "no digits", raw: "free", wantErr: ErrParseDegraded},
		{name: "digits but unparseable", raw: "1.2.3", want: 0},
		{name: "too large", raw: "$99999999999999999999", wantErr: ErrParseDegraded},
		{name: "too large for float", raw: "9" + strings.Repeat("9", 400), wantErr: ErrParseDegraded},
		{name: "vanishing fraction", raw: "0." + strings.Repeat("0", 400) + "1", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.raw)

			if tt.wantErr != nil {
				require.True(t, errors.Is(err, tt.wantErr), "expected %v, got %v", tt.wantErr, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestSum(t *testing.T) {
	require.Equal(t, Amount(0), Sum())
	require.Equal(t, Amount(1150), Sum(790, 360))
	require.Equal(t, MaxAmount, Sum(MaxAmount-1, 2))
	require.Equal(t, MaxAmount, Sum(MaxAmount, MaxAmount, MaxAmount))
}

func TestNormalize_NeverNegative(t *testing.T) {
	inputs := []string{
		"-790", "$-1", "9223372036854775807", "9223372036854775808",
		"18446744073709551616", "$12,345,678,901,234,567,890.00", strings.Repeat("9", 30),
	}

	for _, in := range inputs {
		require.GreaterOrEqual(t, Normalize(in), Amount(0), "input %q", in)
	}
}

func TestAmount_String(t *testing.T) {
	require.Equal(t, "$790", Amount(790).String())
	require.Equal(t, "$0", Amount(0).String())
}
