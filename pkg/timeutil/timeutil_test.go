package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var chicago = time.FixedZone("CST", -6*60*60)

func TestParseKeepsInstantForOffsetValues(t *testing.T) {
	got, err := Parse("2026-03-01T12:00:00Z", chicago)
	require.NoError(t, err)
	require.Equal(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC).Unix(), got.Unix())
}

func TestParseNaiveValuesUseZone(t *testing.T) {
	got, err := Parse("2026-03-01T12:00", chicago)
	require.NoError(t, err)
	require.Equal(t, time.Date(2026, 3, 1, 12, 0, 0, 0, chicago).Unix(), got.Unix())

	got, err = Parse("2026-03-01 12:00:30", chicago)
	require.NoError(t, err)
	require.Equal(t, 30, got.Second())
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse("next tuesday", chicago)
	require.Error(t, err)
}

func TestNormalizePreservesInstant(t *testing.T) {
	utc := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	local := Normalize(utc, chicago)
	require.True(t, utc.Equal(local))
	require.Equal(t, 12, local.Hour())
}

func TestFallbackDisplayIsOneDayOut(t *testing.T) {
	now := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	got := FallbackDisplay(now, chicago)
	require.Equal(t, now.Add(24*time.Hour).Unix(), got.Unix())
	require.Equal(t, chicago, got.Location())
}
