package variant

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	licerrors "licseal/internal/errors"
)

func TestCoerceTimeLadder(t *testing.T) {
	tests := []struct {
		name  string
		input Value
		want  time.Time
	}{
		{
			name:  "existing time converts to UTC",
			input: Time(time.Date(2027, 6, 1, 12, 0, 0, 0, time.FixedZone("EEST", 3*3600))),
			want:  time.Date(2027, 6, 1, 9, 0, 0, 0, time.UTC),
		},
		{
			name:  "small integer is a year",
			input: Int(2027),
			want:  time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "year one",
			input: Int(1),
			want:  time.Date(1, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "whole float is a year too",
			input: Float(2030),
			want:  time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "epoch seconds",
			input: Int(1893456000),
			want:  time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "epoch milliseconds beyond the seconds range",
			input: Int(1893456000000),
			want:  time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "iso instant string",
			input: String("2027-12-31T23:59:59Z"),
			want:  time.Date(2027, 12, 31, 23, 59, 59, 0, time.UTC),
		},
		{
			name:  "iso string with offset",
			input: String("2027-12-31T23:59:59+02:00"),
			want:  time.Date(2027, 12, 31, 21, 59, 59, 0, time.UTC),
		},
		{
			name:  "local datetime assumed UTC",
			input: String("2027-12-31 23:59:59"),
			want:  time.Date(2027, 12, 31, 23, 59, 59, 0, time.UTC),
		},
		{
			name:  "date only is start of day UTC",
			input: String("2027-12-31"),
			want:  time.Date(2027, 12, 31, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "month name date",
			input: String("January 2, 2031"),
			want:  time.Date(2031, 1, 2, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "numeric string takes the year branch",
			input: String("2027"),
			want:  time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "numeric string epoch seconds",
			input: String("1893456000"),
			want:  time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "rfc1123 best effort",
			input: String("Mon, 02 Jan 2030 15:04:05 GMT"),
			want:  time.Date(2030, 1, 2, 15, 4, 5, 0, time.UTC),
		},
		{
			name:  "surrounding whitespace tolerated",
			input: String("  2027-12-31T23:59:59Z  "),
			want:  time.Date(2027, 12, 31, 23, 59, 59, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CoerceTime(tt.input)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %v got %v", tt.want, got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestCoerceTimeYearWinsOverEpoch(t *testing.T) {
	// 5000 is a legal epoch-second timestamp, but the documented precedence
	// treats every integral value in 1..9999 as a bare year.
	got, err := CoerceTime(Int(5000))
	require.NoError(t, err)
	assert.Equal(t, time.Date(5000, 1, 1, 0, 0, 0, 0, time.UTC), got)
}

func TestCoerceTimeRejections(t *testing.T) {
	tests := []struct {
		name  string
		input Value
	}{
		{"garbage string", String("not-a-date")},
		{"empty string", String("")},
		{"whitespace string", String("   ")},
		{"bool", Bool(true)},
		{"null", Null()},
		{"fractional non-year", Float(1893456000.5)},
		{"list", List(Int(2027))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := CoerceTime(tt.input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, licerrors.ErrTypeConversion))
		})
	}
}

func TestCoerceTimeRejectionNamesOriginal(t *testing.T) {
	_, err := CoerceTime(String("not-a-date"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not-a-date")
}

func TestEpochBounds(t *testing.T) {
	// Largest value still read as seconds: end of year 9999.
	got, err := CoerceTime(Int(maxEpochSeconds))
	require.NoError(t, err)
	assert.Equal(t, 9999, got.Year())

	// One past the seconds bound flips to milliseconds.
	got, err = CoerceTime(Int(maxEpochSeconds + 1))
	require.NoError(t, err)
	assert.Equal(t, 1978, got.Year())
}
