package solarday

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/i474232898/solar-day-service/internal/observability"
)

// Service orchestrates the repository and the external solar client for the
// per-endpoint flows. It holds no mutable state of its own; concurrent
// requests for the same date interleave their read-merge-write steps with
// last-writer-wins semantics (each individual Save remains atomic).
type Service struct {
	repo    Repository
	client  SolarClient
	loc     *time.Location
	metrics *observability.Metrics
	log     zerolog.Logger
}

// NewService creates a new Service. loc is the time zone used to derive
// calendar dates from value timestamps; pass time.UTC when unsure.
func NewService(
	repo Repository,
	client SolarClient,
	loc *time.Location,
	metrics *observability.Metrics,
	log zerolog.Logger,
) *Service {
	return &Service{
		repo:    repo,
		client:  client,
		loc:     loc,
		metrics: metrics,
		log:     log,
	}
}

// Upsert merges weather and values into the record for date, creating it from
// the solar client when it does not exist yet. Caller-supplied values win over
// client-computed values on key collision. The merged record is persisted and
// returned.
func (s *Service) Upsert(ctx context.Context, date time.Time, weather string, reqs []ValueRequest) (*SolarDay, error) {
	day := NormalizeDate(date)

	sd, err := s.repo.FindOneByDate(ctx, day)
	mode := "update"
	switch {
	case errors.Is(err, ErrNotFound):
		mode = "create"
		sd, err = CreateSolarDay(ctx, day, s.client)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	}

	sd.UpsertWeather(weather)
	sd.UpsertValues(ConvertRequestsToTimeValues(reqs))

	if err := s.repo.Save(ctx, sd); err != nil {
		return nil, err
	}
	s.metrics.RecordUpserts.WithLabelValues(mode).Inc()
	s.log.Debug().Str("date", DateKey(day)).Str("mode", mode).Msg("solar day upserted")
	return sd, nil
}

// InsertValues groups the batch by each value's localized calendar date,
// merges the groups into existing records where present (new dates get bare
// records, never a client fetch), and bulk upserts the result.
func (s *Service) InsertValues(ctx context.Context, reqs []ValueRequest) (BulkResult, error) {
	groups := GroupByLocalizedDate(reqs, s.loc)

	dates := make([]time.Time, 0, len(groups))
	for _, g := range groups {
		dates = append(dates, g.Date)
	}

	stored, err := s.repo.FindByDates(ctx, dates)
	if err != nil {
		return BulkResult{}, err
	}
	existing := make(map[string]*SolarDay, len(stored))
	for _, sd := range stored {
		existing[DateKey(sd.Date)] = sd
	}

	days := UpdateOrInsertRequests(groups, existing)
	result, err := s.repo.BulkUpsert(ctx, days)
	if err != nil {
		return result, err
	}
	s.metrics.RecordUpserts.WithLabelValues("bulk").Add(float64(len(days)))
	s.metrics.BulkBatchSize.Observe(float64(len(days)))
	return result, nil
}

// Dates returns every distinct date with a stored record, ascending.
func (s *Service) Dates(ctx context.Context) ([]time.Time, error) {
	records, err := s.repo.FindBy(ctx, Filter{}, ProjectDates)
	if err != nil {
		return nil, err
	}
	dates := make([]time.Time, 0, len(records))
	for _, sd := range records {
		dates = append(dates, sd.Date)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates, nil
}

// Today returns today's record, or an unpersisted empty shell when none is
// stored yet.
func (s *Service) Today(ctx context.Context) (*SolarDay, error) {
	today := LocalizedDate(clock.Now(), s.loc)
	sd, err := s.repo.FindOneBy(ctx, Filter{Date: &today})
	if errors.Is(err, ErrNotFound) {
		return NewSolarDay(today), nil
	}
	if err != nil {
		return nil, err
	}
	return sd, nil
}

// ByDate returns the record for date, or an unpersisted empty shell when none
// exists. A missing record is not an error.
func (s *Service) ByDate(ctx context.Context, date time.Time) (*SolarDay, error) {
	day := NormalizeDate(date)
	sd, err := s.repo.FindOneByDate(ctx, day)
	if errors.Is(err, ErrNotFound) {
		return NewSolarDay(day), nil
	}
	if err != nil {
		return nil, err
	}
	return sd, nil
}

// RefreshTimes overwrites the record's time values with fresh ones from the
// solar client and persists the result, creating the record if absent.
func (s *Service) RefreshTimes(ctx context.Context, date time.Time) (*SolarDay, error) {
	sd, err := s.ByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	if err := UpdateSolarTimes(ctx, sd, s.client); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, sd); err != nil {
		return nil, err
	}
	s.metrics.RecordUpserts.WithLabelValues("refresh").Inc()
	s.log.Debug().Str("date", DateKey(sd.Date)).Msg("solar times refreshed")
	return sd, nil
}

// RefreshToday refreshes the solar times of today's record. Used by the
// periodic refresh job.
func (s *Service) RefreshToday(ctx context.Context) error {
	today := LocalizedDate(clock.Now(), s.loc)
	_, err := s.RefreshTimes(ctx, today)
	return err
}
