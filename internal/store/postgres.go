package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/i474232898/solar-day-service/internal/solarday"
)

// PostgresStore persists solar day records in a single solar_days table: one
// row per date, time values in a jsonb column.
type PostgresStore struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// Open connects a pgx pool to the given URL and verifies the connection.
func Open(ctx context.Context, url string, log zerolog.Logger) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresStore{pool: pool, log: log}, nil
}

// Migrate creates the solar_days table if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS solar_days (
			day     date PRIMARY KEY,
			weather text,
			times   jsonb NOT NULL DEFAULT '{}'::jsonb
		)`)
	if err != nil {
		return fmt.Errorf("migrate solar_days: %w", err)
	}
	return nil
}

// Close releases the underlying pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

const upsertSQL = `
	INSERT INTO solar_days (day, weather, times)
	VALUES ($1, $2, $3)
	ON CONFLICT (day) DO UPDATE
	SET weather = EXCLUDED.weather, times = EXCLUDED.times
	RETURNING (xmax = 0) AS inserted`

// Save upserts a single record. The statement is atomic: readers observe
// either the previous row or the fully replaced one.
func (s *PostgresStore) Save(ctx context.Context, sd *solarday.SolarDay) error {
	weather, times, err := encodeRecord(sd)
	if err != nil {
		return err
	}

	var inserted bool
	if err := s.pool.QueryRow(ctx, upsertSQL, sd.Date, weather, times).Scan(&inserted); err != nil {
		return fmt.Errorf("save solar day %s: %w", solarday.DateKey(sd.Date), err)
	}
	return nil
}

// BulkUpsert upserts each record independently so one failing item does not
// poison the rest. The aggregate result reflects exactly the applied
// outcomes; item errors are joined and returned alongside it.
func (s *PostgresStore) BulkUpsert(ctx context.Context, days []*solarday.SolarDay) (solarday.BulkResult, error) {
	var result solarday.BulkResult
	var errs []error

	for _, sd := range days {
		weather, times, err := encodeRecord(sd)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		var inserted bool
		if err := s.pool.QueryRow(ctx, upsertSQL, sd.Date, weather, times).Scan(&inserted); err != nil {
			s.log.Error().Err(err).Str("date", solarday.DateKey(sd.Date)).Msg("bulk upsert item failed")
			errs = append(errs, fmt.Errorf("upsert %s: %w", solarday.DateKey(sd.Date), err))
			continue
		}
		if inserted {
			result.Inserted++
		} else {
			result.Matched++
			result.Modified++
		}
	}

	return result, errors.Join(errs...)
}

// FindOneByDate returns the record for the given date, or
// solarday.ErrNotFound.
func (s *PostgresStore) FindOneByDate(ctx context.Context, date time.Time) (*solarday.SolarDay, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT day, weather, times FROM solar_days WHERE day = $1`,
		solarday.NormalizeDate(date))

	sd, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, solarday.ErrNotFound
	}
	return sd, err
}

// FindByDates returns the records existing for any subset of the given dates.
func (s *PostgresStore) FindByDates(ctx context.Context, dates []time.Time) ([]*solarday.SolarDay, error) {
	if len(dates) == 0 {
		return nil, nil
	}

	normalized := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		normalized = append(normalized, solarday.NormalizeDate(d))
	}

	rows, err := s.pool.Query(ctx,
		`SELECT day, weather, times FROM solar_days WHERE day = ANY($1) ORDER BY day`,
		normalized)
	if err != nil {
		return nil, fmt.Errorf("find solar days by dates: %w", err)
	}
	defer rows.Close()

	return collectRecords(rows)
}

// FindBy returns every record matching the filter. With ProjectDates only the
// day column is read.
func (s *PostgresStore) FindBy(ctx context.Context, f solarday.Filter, p solarday.Projection) ([]*solarday.SolarDay, error) {
	query := `SELECT day, weather, times FROM solar_days`
	if p == solarday.ProjectDates {
		query = `SELECT day, NULL::text, '{}'::jsonb FROM solar_days`
	}

	var args []any
	if f.Date != nil {
		query += ` WHERE day = $1`
		args = append(args, solarday.NormalizeDate(*f.Date))
	}
	query += ` ORDER BY day`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find solar days: %w", err)
	}
	defer rows.Close()

	return collectRecords(rows)
}

// FindOneBy returns the single record matching the filter, or
// solarday.ErrNotFound.
func (s *PostgresStore) FindOneBy(ctx context.Context, f solarday.Filter) (*solarday.SolarDay, error) {
	matches, err := s.FindBy(ctx, f, solarday.ProjectFull)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, solarday.ErrNotFound
	}
	return matches[0], nil
}

func encodeRecord(sd *solarday.SolarDay) (*string, []byte, error) {
	var weather *string
	if sd.Weather != "" {
		weather = &sd.Weather
	}

	times, err := json.Marshal(sd.Values)
	if err != nil {
		return nil, nil, fmt.Errorf("encode times for %s: %w", solarday.DateKey(sd.Date), err)
	}
	return weather, times, nil
}

func scanRecord(row pgx.Row) (*solarday.SolarDay, error) {
	var (
		day     time.Time
		weather *string
		times   []byte
	)
	if err := row.Scan(&day, &weather, &times); err != nil {
		return nil, err
	}

	sd := solarday.NewSolarDay(day)
	if weather != nil {
		sd.Weather = *weather
	}
	if len(times) > 0 {
		if err := json.Unmarshal(times, &sd.Values); err != nil {
			return nil, fmt.Errorf("decode times for %s: %w", solarday.DateKey(day), err)
		}
	}
	return sd, nil
}

func collectRecords(rows pgx.Rows) ([]*solarday.SolarDay, error) {
	var result []*solarday.SolarDay
	for rows.Next() {
		sd, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, sd)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read solar day rows: %w", err)
	}
	return result, nil
}
