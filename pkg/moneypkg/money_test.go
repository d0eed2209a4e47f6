package moneypkg

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestParsePercent(t *testing.T) {
	testCases := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "Whole", input: "25", want: "25"},
		{name: "Fraction", input: "12.5", want: "12.5"},
		{name: "Negative", input: "-1", wantErr: true},
		{name: "OverHundred", input: "100.01", wantErr: true},
		{name: "NotANumber", input: "abc", wantErr: true},
	}

	for _, tc := range testCases {
		tc := tc

		t.Run(tc.name, func(t *testing.T) {
			got, err := ParsePercent(tc.input)
			if tc.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.want, got.String())
		})
	}
}

func TestSplit(t *testing.T) {
	share, rest := Split(2000, decimal.NewFromInt(25))
	require.Equal(t, int64(500), share)
	require.Equal(t, int64(1500), rest)

	// Rounding never creates or loses units.
	share, rest = Split(1001, decimal.RequireFromString("33.3"))
	require.Equal(t, int64(333), share)
	require.Equal(t, int64(1001), share+rest)
}

func TestFormat(t *testing.T) {
	require.Equal(t, "0", Format(0))
	require.Equal(t, "999", Format(999))
	require.Equal(t, "1,000", Format(1000))
	require.Equal(t, "1,250,000", Format(1250000))
	require.Equal(t, "-6,000", Format(-6000))
}
