package backup

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rehber360/rehber360-desktop/internal/constants"
	"github.com/rehber360/rehber360-desktop/internal/logging"
	"github.com/rehber360/rehber360-desktop/internal/store"
)

// NextRun returns when the next automatic backup is due. With no previous
// backup the first run is today at the configured time (immediately if that
// has passed); otherwise it is one period after the last backup's day, at
// the configured time.
func NextRun(settings store.BackupSettings, last, now time.Time) (time.Time, error) {
	var hour, minute int
	if _, err := fmt.Sscanf(settings.BackupTime, "%d:%d", &hour, &minute); err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", store.ErrInvalidBackupTime, settings.BackupTime)
	}

	at := func(day time.Time) time.Time {
		y, m, d := day.Date()
		return time.Date(y, m, d, hour, minute, 0, 0, now.Location())
	}

	if last.IsZero() {
		return at(now), nil
	}

	last = last.In(now.Location())
	switch settings.BackupFrequency {
	case store.FrequencyWeekly:
		return at(last.AddDate(0, 0, 7)), nil
	case store.FrequencyMonthly:
		return at(last.AddDate(0, 1, 0)), nil
	default:
		return at(last.AddDate(0, 0, 1)), nil
	}
}

// Scheduler runs automatic backups according to the settings store and
// prunes to maxBackups afterwards.
type Scheduler struct {
	manager  *Manager
	settings *store.Store
	logger   *logging.Logger
	tick     time.Duration
	now      func() time.Time

	mu       sync.Mutex
	cancel   context.CancelFunc
	done     chan struct{}
	running  bool
	failedAt time.Time
}

// failureBackoff delays the next attempt after a failed automatic backup.
const failureBackoff = time.Hour

// NewScheduler creates a scheduler. It does nothing until Start.
func NewScheduler(manager *Manager, settings *store.Store, logger *logging.Logger) *Scheduler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Scheduler{
		manager:  manager,
		settings: settings,
		logger:   logger,
		tick:     constants.BackupSchedulerTick,
		now:      time.Now,
	}
}

// Start begins checking the schedule every tick until ctx is done or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true

	go s.loop(ctx, s.done)
	s.logger.Info().Dur("tick", s.tick).Msg("Backup scheduler started")
}

// Stop halts the scheduler and waits for an in-progress backup to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.cancel()
	done := s.done
	s.running = false
	s.mu.Unlock()

	<-done
	s.logger.Info().Msg("Backup scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	s.RunDue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunDue(ctx)
		}
	}
}

// RunDue creates a backup if one is due and returns whether it ran.
func (s *Scheduler) RunDue(ctx context.Context) bool {
	settings := s.settings.Backup()
	if !settings.AutoBackup {
		return false
	}

	now := s.now()
	next, err := NextRun(settings, s.manager.LastBackup(), now)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Invalid backup schedule")
		return false
	}
	if now.Before(next) {
		return false
	}

	s.mu.Lock()
	failedAt := s.failedAt
	s.mu.Unlock()
	if !failedAt.IsZero() && now.Sub(failedAt) < failureBackoff {
		return false
	}

	if _, err := s.manager.Create(ctx, true); err != nil {
		s.mu.Lock()
		s.failedAt = now
		s.mu.Unlock()
		return false
	}
	s.mu.Lock()
	s.failedAt = time.Time{}
	s.mu.Unlock()

	if _, err := s.manager.Prune(settings.MaxBackups); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to prune backups")
	}
	return true
}
