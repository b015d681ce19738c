package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/de-tools/medical-reports/pkg/models/domain"
	"github.com/de-tools/medical-reports/pkg/services/report"
	"github.com/rs/zerolog"
)

var ErrBusy = errors.New("report generation already in progress")

// Store is the state the manager advances after every successful generation.
type Store interface {
	Snapshot() domain.Snapshot
	NextSequence() int
	RecordGeneration(path string) domain.Snapshot
}

// Manager owns report generation. At most one generation runs at a time and
// the store only moves forward when a generation succeeds.
type Manager struct {
	generator report.Generator
	store     Store
	timeout   time.Duration

	mu sync.Mutex
}

// NewManager creates a manager. A zero timeout disables the generation deadline.
func NewManager(generator report.Generator, store Store, timeout time.Duration) *Manager {
	return &Manager{
		generator: generator,
		store:     store,
		timeout:   timeout,
	}
}

// Init produces the first report synchronously.
func (m *Manager) Init(ctx context.Context) error {
	_, err := m.Tick(ctx)
	return err
}

// Tick generates the next report and records it. When another generation is
// still running the tick is skipped and ErrBusy is returned.
func (m *Manager) Tick(ctx context.Context) (domain.Snapshot, error) {
	logger := zerolog.Ctx(ctx)

	if !m.mu.TryLock() {
		skippedTicks.Inc()
		logger.Warn().Msg("previous report generation still running, skipping tick")
		return m.store.Snapshot(), ErrBusy
	}
	defer m.mu.Unlock()

	sequence := m.store.NextSequence()

	genCtx := ctx
	if m.timeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	start := time.Now()
	path, err := m.generator.Generate(genCtx, sequence)
	generationDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		generationsTotal.WithLabelValues("failure").Inc()
		snapshot := m.store.Snapshot()
		logger.Error().
			Err(err).
			Int("sequence", sequence).
			Str("current", snapshot.Path).
			Msg("report generation failed, keeping previous report")
		return snapshot, fmt.Errorf("failed to generate report %d: %w", sequence, err)
	}

	snapshot := m.store.RecordGeneration(path)
	generationsTotal.WithLabelValues("success").Inc()
	currentSequence.Set(float64(sequence))

	logger.Info().
		Int("sequence", sequence).
		Str("path", path).
		Dur("took", time.Since(start)).
		Msg("generated new report")

	return snapshot, nil
}

// Current returns the latest consistent view of the store.
func (m *Manager) Current() domain.Snapshot {
	return m.store.Snapshot()
}
