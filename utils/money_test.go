package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmountCents(t *testing.T) {
	cases := []struct {
		in   string
		want int64
	}{
		{"123.45", 12345},
		{"0.01", 1},
		{"0", 0},
		{"2500", 250000},
		{"19.9", 1990},
		// Representable exactly as a decimal, unlike float64.
		{"0.10", 10},
		{"1999999.99", 199999999},
		// Sub-cent input rounds half up.
		{"1.005", 101},
		{"1.004", 100},
	}
	for _, c := range cases {
		got, err := ParseAmountCents(c.in)
		require.NoError(t, err, c.in)
		assert.Equal(t, c.want, got, c.in)
	}
}

func TestParseAmountCentsRejectsBadInput(t *testing.T) {
	for _, in := range []string{"", "abc", "12,50", "-5.00", "$10"} {
		_, err := ParseAmountCents(in)
		assert.Error(t, err, in)
	}
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "123.45", FormatCents(12345))
	assert.Equal(t, "0.00", FormatCents(0))
	assert.Equal(t, "0.01", FormatCents(1))
	assert.Equal(t, "2500.00", FormatCents(250000))
	assert.Equal(t, "-10.50", FormatCents(-1050))
}

func TestParseFormatRoundTrip(t *testing.T) {
	cents, err := ParseAmountCents("9876.54")
	require.NoError(t, err)
	assert.Equal(t, "9876.54", FormatCents(cents))
}
