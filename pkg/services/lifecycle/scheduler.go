package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/de-tools/medical-reports/pkg/models/domain"
	"github.com/raythurman2386/cronlib"
	"github.com/rs/zerolog"
)

// DefaultSchedule fires every 5 minutes.
const DefaultSchedule = "*/5 * * * *"

type Ticker interface {
	Tick(ctx context.Context) (domain.Snapshot, error)
}

// Scheduler fires the ticker on a cron cadence. Overlapping runs are
// forbidden and missed fires are not replayed.
type Scheduler struct {
	logger zerolog.Logger
	ticker Ticker
	expr   string

	start func()
	stop  func()
}

// ParseSchedule returns the 6-field form of expr. A 5-field expression gets a
// zero seconds field, an empty one falls back to DefaultSchedule.
func ParseSchedule(expr string) (string, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		expr = DefaultSchedule
	}

	if !strings.HasPrefix(expr, "@") {
		fields := strings.Fields(expr)
		switch len(fields) {
		case 5:
			fields = append([]string{"0"}, fields...)
		case 6:
		default:
			return "", fmt.Errorf("invalid report schedule %q: expected 5 or 6 fields, found %d", expr, len(fields))
		}
		expr = strings.Join(fields, " ")
	}

	if _, err := cronlib.Parse(expr); err != nil {
		return "", fmt.Errorf("invalid report schedule %q: %w", expr, err)
	}
	return expr, nil
}

// NewScheduler parses expr once and fails on an invalid expression. The
// cadence is evaluated in loc, UTC when nil.
func NewScheduler(logger zerolog.Logger, expr string, loc *time.Location, ticker Ticker) (*Scheduler, error) {
	expr, err := ParseSchedule(expr)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		loc = time.UTC
	}

	s := &Scheduler{
		logger: logger.With().Str("component", "scheduler").Str("schedule", expr).Str("tz", loc.String()).Logger(),
		ticker: ticker,
		expr:   expr,
	}

	c := cronlib.NewCron()
	_, err = c.AddJobWithOptions(expr, func(ctx context.Context) {
		s.fire(ctx)
	}, cronlib.JobOptions{
		Location: loc,
		Overlap:  cronlib.OverlapForbid,
	})
	if err != nil {
		return nil, fmt.Errorf("invalid report schedule %q: %w", expr, err)
	}

	s.start = func() { c.Start() }
	s.stop = func() { c.Stop() }
	return s, nil
}

func (s *Scheduler) Schedule() string {
	return s.expr
}

// Run starts the cron loop and blocks until ctx is done.
func (s *Scheduler) Run(ctx context.Context) error {
	s.start()
	s.logger.Info().Msg("report scheduler started")

	<-ctx.Done()

	s.stop()
	s.logger.Info().Msg("report scheduler stopped")
	return nil
}

func (s *Scheduler) fire(ctx context.Context) {
	ctx = s.logger.WithContext(ctx)

	_, err := s.ticker.Tick(ctx)
	switch {
	case err == nil:
	case errors.Is(err, ErrBusy):
		s.logger.Debug().Msg("tick skipped")
	default:
		// already logged by the ticker, the next tick retries
		s.logger.Debug().Err(err).Msg("tick failed")
	}
}
