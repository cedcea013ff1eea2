package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"

	"github.com/i474232898/solar-day-service/internal/solarday"
)

// Scheduler periodically refreshes today's solar times from the external
// provider so the current record stays populated without inbound traffic.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   *solarday.Service
	interval  time.Duration
	log       zerolog.Logger
}

// New creates a new Scheduler.
func New(service *solarday.Service, interval time.Duration, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		service:   service,
		interval:  interval,
		log:       log,
	}
}

// Start schedules the refresh job and starts the underlying scheduler. A
// non-positive interval disables the job.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		s.log.Info().Msg("scheduler: refresh disabled; nothing to schedule")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := s.service.RefreshToday(ctx); err != nil {
			s.log.Error().Err(err).Msg("scheduler: solar times refresh failed")
			return
		}
		s.log.Debug().Msg("scheduler: refreshed today's solar times")
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
