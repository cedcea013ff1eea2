package solarday

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNewSolarDayNormalizesDate(t *testing.T) {
	sd := NewSolarDay(time.Date(2024, time.June, 1, 17, 42, 3, 0, time.UTC))

	assert.Equal(t, date(2024, time.June, 1), sd.Date)
	assert.Empty(t, sd.Weather)
	assert.Empty(t, sd.Values)
}

func TestUpsertWeather(t *testing.T) {
	sd := NewSolarDay(date(2024, time.June, 1))

	sd.UpsertWeather("sunny")
	assert.Equal(t, "sunny", sd.Weather)

	// Empty input leaves existing weather untouched.
	sd.UpsertWeather("")
	assert.Equal(t, "sunny", sd.Weather)

	// A non-empty input replaces it.
	sd.UpsertWeather("overcast")
	assert.Equal(t, "overcast", sd.Weather)
}

func TestUpsertValuesIsIdempotent(t *testing.T) {
	sd := NewSolarDay(date(2024, time.June, 1))
	values := map[string]time.Time{
		KindSunrise: time.Date(2024, time.June, 1, 4, 50, 0, 0, time.UTC),
		KindSunset:  time.Date(2024, time.June, 1, 19, 20, 0, 0, time.UTC),
	}

	sd.UpsertValues(values)
	first := sd.Clone()

	sd.UpsertValues(values)
	assert.Equal(t, first.Values, sd.Values)
}

func TestUpsertValuesMergesWithoutClobbering(t *testing.T) {
	sd := NewSolarDay(date(2024, time.June, 1))
	sunset := time.Date(2024, time.June, 1, 19, 20, 0, 0, time.UTC)
	sd.UpsertValues(map[string]time.Time{KindSunset: sunset})

	sunrise := time.Date(2024, time.June, 1, 4, 50, 0, 0, time.UTC)
	sd.UpsertValues(map[string]time.Time{KindSunrise: sunrise})

	require.Len(t, sd.Values, 2)
	assert.Equal(t, sunset, sd.Values[KindSunset])
	assert.Equal(t, sunrise, sd.Values[KindSunrise])
}

func TestUpsertValuesOverwritesKnownKind(t *testing.T) {
	sd := NewSolarDay(date(2024, time.June, 1))
	sd.UpsertValues(map[string]time.Time{KindSunrise: time.Date(2024, time.June, 1, 4, 50, 0, 0, time.UTC)})

	updated := time.Date(2024, time.June, 1, 4, 51, 0, 0, time.UTC)
	sd.UpsertValues(map[string]time.Time{KindSunrise: updated})

	assert.Equal(t, updated, sd.Values[KindSunrise])
}

func TestCloneDetachesValues(t *testing.T) {
	sd := NewSolarDay(date(2024, time.June, 1))
	sd.UpsertValues(map[string]time.Time{KindSunrise: time.Date(2024, time.June, 1, 4, 50, 0, 0, time.UTC)})

	cp := sd.Clone()
	cp.UpsertValues(map[string]time.Time{KindSunset: time.Date(2024, time.June, 1, 19, 20, 0, 0, time.UTC)})

	assert.Len(t, sd.Values, 1)
	assert.Len(t, cp.Values, 2)
}

func TestLocalizedDate(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	// 23:30 UTC on Jan 1 is already Jan 2 in Berlin.
	ts := time.Date(2024, time.January, 1, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, date(2024, time.January, 2), LocalizedDate(ts, berlin))
	assert.Equal(t, date(2024, time.January, 1), LocalizedDate(ts, time.UTC))
}
