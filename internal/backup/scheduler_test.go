package backup

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rehber360/rehber360-desktop/internal/store"
)

func TestNextRun(t *testing.T) {
	loc := time.UTC
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, loc)
	daily := store.BackupSettings{BackupFrequency: store.FrequencyDaily, BackupTime: "02:00"}
	weekly := store.BackupSettings{BackupFrequency: store.FrequencyWeekly, BackupTime: "02:00"}
	monthly := store.BackupSettings{BackupFrequency: store.FrequencyMonthly, BackupTime: "23:30"}

	tests := []struct {
		name     string
		settings store.BackupSettings
		last     time.Time
		want     time.Time
	}{
		{"never backed up", daily, time.Time{}, time.Date(2026, 5, 10, 2, 0, 0, 0, loc)},
		{"daily", daily, time.Date(2026, 5, 9, 2, 0, 5, 0, loc), time.Date(2026, 5, 10, 2, 0, 0, 0, loc)},
		{"weekly", weekly, time.Date(2026, 5, 9, 2, 0, 0, 0, loc), time.Date(2026, 5, 16, 2, 0, 0, 0, loc)},
		{"monthly", monthly, time.Date(2026, 4, 30, 23, 30, 0, 0, loc), time.Date(2026, 5, 30, 23, 30, 0, 0, loc)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextRun(tt.settings, tt.last, now)
			if err != nil {
				t.Fatalf("NextRun failed: %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}

	if _, err := NextRun(store.BackupSettings{BackupTime: "bad"}, time.Time{}, now); err == nil {
		t.Error("Expected error for malformed backup time")
	}
}

func newTestScheduler(t *testing.T) (*Scheduler, *Manager, *store.Store) {
	t.Helper()
	m, _ := newTestManager(t)
	settings, err := store.Open(filepath.Join(t.TempDir(), "settings.json"), nil)
	if err != nil {
		t.Fatalf("store.Open failed: %v", err)
	}
	return NewScheduler(m, settings, nil), m, settings
}

func TestRunDue(t *testing.T) {
	s, m, settings := newTestScheduler(t)
	now := time.Date(2026, 5, 10, 3, 0, 0, 0, time.Local)
	s.now = func() time.Time { return now }
	m.now = s.now

	if !s.RunDue(context.Background()) {
		t.Fatal("Expected first backup to run after 02:00")
	}
	if s.RunDue(context.Background()) {
		t.Error("Expected no second backup on the same day")
	}

	now = now.AddDate(0, 0, 1)
	if !s.RunDue(context.Background()) {
		t.Error("Expected backup the next day")
	}

	settings.SetBackup(store.BackupSettings{AutoBackup: false, BackupFrequency: store.FrequencyDaily, BackupTime: "02:00", MaxBackups: 7})
	now = now.AddDate(0, 0, 1)
	if s.RunDue(context.Background()) {
		t.Error("Expected no backup with autoBackup disabled")
	}
}

func TestRunDuePrunes(t *testing.T) {
	s, m, settings := newTestScheduler(t)
	settings.SetBackup(store.BackupSettings{AutoBackup: true, BackupFrequency: store.FrequencyDaily, BackupTime: "00:00", MaxBackups: 2})

	now := time.Date(2026, 5, 1, 1, 0, 0, 0, time.Local)
	s.now = func() time.Time { return now }
	m.now = s.now

	for i := 0; i < 4; i++ {
		if !s.RunDue(context.Background()) {
			t.Fatalf("Expected backup on day %d", i)
		}
		now = now.AddDate(0, 0, 1)
	}

	backups, _ := m.List()
	if len(backups) != 2 {
		t.Errorf("Expected 2 backups retained, got %d", len(backups))
	}
}

func TestStartStop(t *testing.T) {
	s, _, _ := newTestScheduler(t)
	s.tick = 10 * time.Millisecond

	s.Start(context.Background())
	s.Start(context.Background())
	time.Sleep(30 * time.Millisecond)
	s.Stop()
	s.Stop()
}
