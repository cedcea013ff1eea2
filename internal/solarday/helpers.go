package solarday

import (
	"context"
	"fmt"
	"time"
)

// ValueRequest is a single incoming time value prior to being grouped and
// merged into a record. The record date derives from the timestamp itself.
type ValueRequest struct {
	Kind      string
	Timestamp time.Time
}

// DateGroup holds the requests sharing one calendar date, in input order.
type DateGroup struct {
	Date     time.Time
	Requests []ValueRequest
}

// GroupByLocalizedDate buckets requests by the calendar date of each request's
// timestamp as observed in loc. Groups appear in order of first occurrence and
// requests keep their input order within a group.
func GroupByLocalizedDate(reqs []ValueRequest, loc *time.Location) []DateGroup {
	var groups []DateGroup
	index := make(map[string]int, len(reqs))

	for _, r := range reqs {
		date := LocalizedDate(r.Timestamp, loc)
		key := DateKey(date)
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, DateGroup{Date: date})
		}
		groups[i].Requests = append(groups[i].Requests, r)
	}
	return groups
}

// ConvertRequestsToTimeValues flattens requests into the kind-to-timestamp
// mapping UpsertValues expects. Later entries for the same kind win.
func ConvertRequestsToTimeValues(reqs []ValueRequest) map[string]time.Time {
	values := make(map[string]time.Time, len(reqs))
	for _, r := range reqs {
		values[r.Kind] = r.Timestamp
	}
	return values
}

// CreateSolarDay builds a new record for date seeded with the client's
// computed times. Callers use it only after confirming no record exists, so
// the first write for a date carries the provider values before any
// caller-supplied values are merged on top.
func CreateSolarDay(ctx context.Context, date time.Time, client SolarClient) (*SolarDay, error) {
	times, err := client.TimesFor(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("fetch solar times for %s: %w", DateKey(date), err)
	}
	sd := NewSolarDay(date)
	sd.UpsertValues(times)
	return sd, nil
}

// UpdateSolarTimes fetches fresh times for the record's date and overwrites
// the record's values with them. Weather is not touched.
func UpdateSolarTimes(ctx context.Context, sd *SolarDay, client SolarClient) error {
	times, err := client.TimesFor(ctx, sd.Date)
	if err != nil {
		return fmt.Errorf("refresh solar times for %s: %w", DateKey(sd.Date), err)
	}
	sd.UpsertValues(times)
	return nil
}

// UpdateOrInsertRequests merges each group's values into the existing record
// for its date, or into a new bare record when none exists. The batch path
// never consults the solar client. The result holds one record per group, in
// group order, ready for a bulk upsert.
func UpdateOrInsertRequests(groups []DateGroup, existing map[string]*SolarDay) []*SolarDay {
	days := make([]*SolarDay, 0, len(groups))
	for _, g := range groups {
		sd, ok := existing[DateKey(g.Date)]
		if !ok {
			sd = NewSolarDay(g.Date)
		}
		sd.UpsertValues(ConvertRequestsToTimeValues(g.Requests))
		days = append(days, sd)
	}
	return days
}
