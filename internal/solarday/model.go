package solarday

import (
	"time"
)

// Well-known time kinds. The set is open: providers and callers may introduce
// additional kinds and the record stores them unchanged.
const (
	KindSunrise   = "sunrise"
	KindSunset    = "sunset"
	KindSolarNoon = "solar_noon"
)

// SolarDay is the per-date record holding an optional weather descriptor and a
// map of named solar time values. At most one record exists per calendar date.
type SolarDay struct {
	Date    time.Time            `json:"date"`
	Weather string               `json:"weather,omitempty"`
	Values  map[string]time.Time `json:"values"`
}

// NewSolarDay constructs an empty record for the given date. The time-of-day
// component is dropped so the date is always midnight UTC.
func NewSolarDay(date time.Time) *SolarDay {
	return &SolarDay{
		Date:   NormalizeDate(date),
		Values: make(map[string]time.Time),
	}
}

// UpsertWeather replaces the weather descriptor when the incoming value is
// non-empty. An empty value leaves the existing descriptor untouched.
func (sd *SolarDay) UpsertWeather(weather string) {
	if weather != "" {
		sd.Weather = weather
	}
}

// UpsertValues sets or overwrites each entry of the mapping on the record.
// Applying the same mapping twice yields the same state. Timestamps are not
// validated for ordering or plausibility.
func (sd *SolarDay) UpsertValues(values map[string]time.Time) {
	if sd.Values == nil {
		sd.Values = make(map[string]time.Time, len(values))
	}
	for kind, ts := range values {
		sd.Values[kind] = ts
	}
}

// Clone returns a deep copy so stored records cannot be mutated through
// handed-out pointers.
func (sd *SolarDay) Clone() *SolarDay {
	cp := &SolarDay{
		Date:    sd.Date,
		Weather: sd.Weather,
		Values:  make(map[string]time.Time, len(sd.Values)),
	}
	for kind, ts := range sd.Values {
		cp.Values[kind] = ts
	}
	return cp
}

// NormalizeDate truncates a timestamp to its calendar date, represented as
// midnight UTC.
func NormalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// LocalizedDate derives the calendar date of a timestamp as observed in loc,
// represented as midnight UTC so dates compare and key consistently.
func LocalizedDate(t time.Time, loc *time.Location) time.Time {
	return NormalizeDate(t.In(loc))
}

// DateKey returns the canonical string key for a date, for indexing records in
// stores and lookups.
func DateKey(date time.Time) string {
	return date.Format(time.DateOnly)
}
