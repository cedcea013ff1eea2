package solarday

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by repositories when no record exists for a date.
var ErrNotFound = errors.New("no solar day record for date")

// Filter narrows repository reads. A nil Date matches every record.
type Filter struct {
	Date *time.Time
}

// Projection selects which fields a FindBy read materializes.
type Projection int

const (
	// ProjectFull returns complete records.
	ProjectFull Projection = iota
	// ProjectDates returns records with only the Date field populated.
	ProjectDates
)

// BulkResult summarizes a bulk upsert. The shape is stable and store-agnostic:
// Inserted counts new records, Matched counts records that already existed for
// their date, Modified counts those overwritten.
type BulkResult struct {
	Matched  int `json:"matched"`
	Modified int `json:"modified"`
	Inserted int `json:"inserted"`
}

// Repository is the contract any solar day store must satisfy. Save and
// BulkUpsert are upserts keyed by the record's date; reads that find nothing
// for a single date return ErrNotFound rather than an empty record.
type Repository interface {
	FindOneByDate(ctx context.Context, date time.Time) (*SolarDay, error)
	// FindByDates returns records existing for any subset of the given dates;
	// dates with no record are omitted.
	FindByDates(ctx context.Context, dates []time.Time) ([]*SolarDay, error)
	FindBy(ctx context.Context, f Filter, p Projection) ([]*SolarDay, error)
	FindOneBy(ctx context.Context, f Filter) (*SolarDay, error)
	// Save upserts a single record atomically: concurrent readers never observe
	// a partially written record.
	Save(ctx context.Context, sd *SolarDay) error
	// BulkUpsert applies many upserts-by-date as one logical batch. Items
	// succeed or fail independently; the result reflects exactly the applied
	// outcomes.
	BulkUpsert(ctx context.Context, days []*SolarDay) (BulkResult, error)
}

// SolarClient abstracts the external solar-times provider. TimesFor returns
// computed time values (at minimum sunrise and sunset) for the given date at
// the provider's configured location. No fallback values are substituted on
// failure.
type SolarClient interface {
	TimesFor(ctx context.Context, date time.Time) (map[string]time.Time, error)
}
