package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNormalizer(t *testing.T) *Normalizer {
	t.Helper()
	norm, err := NewNormalizer("America/Sao_Paulo")
	require.NoError(t, err)
	return norm
}

func TestRoundTrip_SecondGranularity(t *testing.T) {
	norm := newTestNormalizer(t)

	now := time.Now().UTC().Truncate(time.Second)
	parsed, err := norm.Parse(norm.Format(now))
	require.NoError(t, err)
	assert.True(t, parsed.Equal(now))
}

func TestNow_ParsesBack(t *testing.T) {
	fixed := time.Date(2024, 3, 15, 18, 30, 45, 0, time.UTC)
	norm := newTestNormalizer(t).WithClock(func() time.Time { return fixed })

	parsed, err := norm.Parse(norm.Now())
	require.NoError(t, err)
	assert.True(t, parsed.Equal(fixed))
}

func TestParse_LegacyEncodings(t *testing.T) {
	norm := newTestNormalizer(t)
	saoPaulo := norm.Location()

	cases := []struct {
		name  string
		value string
		want  time.Time
	}{
		{
			name:  "canonical utc",
			value: "2024-03-15T18:30:45Z",
			want:  time.Date(2024, 3, 15, 18, 30, 45, 0, time.UTC),
		},
		{
			name:  "explicit offset",
			value: "2024-03-15T15:30:45-03:00",
			want:  time.Date(2024, 3, 15, 18, 30, 45, 0, time.UTC),
		},
		{
			name:  "offset with microseconds",
			value: "2024-03-15T15:30:45.123456-03:00",
			want:  time.Date(2024, 3, 15, 18, 30, 45, 123456000, time.UTC),
		},
		{
			name:  "naive local datetime",
			value: "2024-03-15T15:30:45",
			want:  time.Date(2024, 3, 15, 15, 30, 45, 0, saoPaulo),
		},
		{
			name:  "naive with space",
			value: "2024-03-15 15:30:45",
			want:  time.Date(2024, 3, 15, 15, 30, 45, 0, saoPaulo),
		},
		{
			name:  "date only",
			value: "2024-03-15",
			want:  time.Date(2024, 3, 15, 0, 0, 0, 0, saoPaulo),
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := norm.Parse(tc.value)
			require.NoError(t, err)
			assert.True(t, got.Equal(tc.want), "got %v want %v", got, tc.want)
		})
	}
}

func TestParse_Unparsable(t *testing.T) {
	norm := newTestNormalizer(t)

	for _, value := range []string{"", "  ", "not-a-date", "15/03/2024"} {
		_, err := norm.Parse(value)
		assert.Error(t, err, "value %q", value)
	}
}

func TestDisplay_ConvertsToLocalZone(t *testing.T) {
	norm := newTestNormalizer(t)

	// 18:30 UTC is 15:30 in São Paulo (UTC-3).
	assert.Equal(t, "15/03/2024 15:30", norm.Display("2024-03-15T18:30:45Z"))
}

func TestDisplay_PlaceholderOnBadValues(t *testing.T) {
	norm := newTestNormalizer(t)

	assert.Equal(t, Placeholder, norm.Display(""))
	assert.Equal(t, Placeholder, norm.Display("garbage"))
	assert.Equal(t, Placeholder, norm.DisplayPtr(nil))
}

func TestParseOrMin(t *testing.T) {
	norm := newTestNormalizer(t)

	assert.True(t, norm.ParseOrMin("garbage").IsZero())
	assert.False(t, norm.ParseOrMin("2024-03-15T18:30:45Z").IsZero())
}

func TestLocalDate(t *testing.T) {
	norm := newTestNormalizer(t)

	// 01:30 UTC on the 16th is still the 15th in São Paulo.
	year, month, day, err := norm.LocalDate("2024-03-16T01:30:00Z")
	require.NoError(t, err)
	assert.Equal(t, 2024, year)
	assert.Equal(t, time.March, month)
	assert.Equal(t, 15, day)
}
