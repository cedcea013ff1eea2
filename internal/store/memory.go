package store

import (
	"context"
	"sync"
	"time"

	"github.com/i474232898/solar-day-service/internal/solarday"
)

// MemoryStore is a concurrency-safe in-memory implementation of the solar day
// repository. It backs tests and deployments without a configured database.
type MemoryStore struct {
	mu sync.RWMutex

	// key: canonical date key, value: stored record
	data map[string]*solarday.SolarDay
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: make(map[string]*solarday.SolarDay),
	}
}

// FindOneByDate returns the record for the given date, or
// solarday.ErrNotFound.
func (s *MemoryStore) FindOneByDate(ctx context.Context, date time.Time) (*solarday.SolarDay, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sd, ok := s.data[solarday.DateKey(solarday.NormalizeDate(date))]
	if !ok {
		return nil, solarday.ErrNotFound
	}
	return sd.Clone(), nil
}

// FindByDates returns the records existing for any subset of the given dates.
// Dates without a record are omitted.
func (s *MemoryStore) FindByDates(ctx context.Context, dates []time.Time) ([]*solarday.SolarDay, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*solarday.SolarDay
	for _, date := range dates {
		if sd, ok := s.data[solarday.DateKey(solarday.NormalizeDate(date))]; ok {
			result = append(result, sd.Clone())
		}
	}
	return result, nil
}

// FindBy returns every record matching the filter. With ProjectDates only the
// Date field of each returned record is populated.
func (s *MemoryStore) FindBy(ctx context.Context, f solarday.Filter, p solarday.Projection) ([]*solarday.SolarDay, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*solarday.SolarDay
	for _, sd := range s.data {
		if f.Date != nil && !sd.Date.Equal(solarday.NormalizeDate(*f.Date)) {
			continue
		}
		if p == solarday.ProjectDates {
			result = append(result, &solarday.SolarDay{Date: sd.Date})
			continue
		}
		result = append(result, sd.Clone())
	}
	return result, nil
}

// FindOneBy returns the single record matching the filter, or
// solarday.ErrNotFound.
func (s *MemoryStore) FindOneBy(ctx context.Context, f solarday.Filter) (*solarday.SolarDay, error) {
	matches, err := s.FindBy(ctx, f, solarday.ProjectFull)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, solarday.ErrNotFound
	}
	return matches[0], nil
}

// Save upserts the record by date. The stored copy is detached from the
// caller's pointer.
func (s *MemoryStore) Save(ctx context.Context, sd *solarday.SolarDay) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[solarday.DateKey(sd.Date)] = sd.Clone()
	return nil
}

// BulkUpsert applies the upserts one by one and counts outcomes.
func (s *MemoryStore) BulkUpsert(ctx context.Context, days []*solarday.SolarDay) (solarday.BulkResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var result solarday.BulkResult
	for _, sd := range days {
		key := solarday.DateKey(sd.Date)
		if _, ok := s.data[key]; ok {
			result.Matched++
			result.Modified++
		} else {
			result.Inserted++
		}
		s.data[key] = sd.Clone()
	}
	return result, nil
}
