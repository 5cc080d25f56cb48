package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rehber360/rehber360-desktop/internal/events"
)

func TestOpenMissingFileUsesDefaults(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "settings.json"), nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	got := s.Get()
	if got.Theme != ThemeLight {
		t.Errorf("Expected theme light, got %s", got.Theme)
	}
	if got.WindowBounds.Width != 1280 || got.WindowBounds.Height != 800 {
		t.Errorf("Expected 1280x800, got %dx%d", got.WindowBounds.Width, got.WindowBounds.Height)
	}
	if !got.Notifications.RiskStudents || got.Notifications.DailyReports {
		t.Errorf("Unexpected notification defaults: %+v", got.Notifications)
	}
	if got.Backup.BackupTime != "02:00" || got.Backup.MaxBackups != 7 {
		t.Errorf("Unexpected backup defaults: %+v", got.Backup)
	}
	if got.AIProvider.Provider != ProviderOllama || got.AIProvider.Model != "llama3" {
		t.Errorf("Unexpected AI defaults: %+v", got.AIProvider)
	}
	if !got.MinimizeToTray || got.FirstRunCompleted {
		t.Errorf("Unexpected flags: minimizeToTray=%v firstRun=%v", got.MinimizeToTray, got.FirstRunCompleted)
	}
}

func TestOpenMergesPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte(`{"theme":"dark","backup":{"maxBackups":3}}`), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	s, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	got := s.Get()
	if got.Theme != ThemeDark {
		t.Errorf("Expected theme dark, got %s", got.Theme)
	}
	if got.Backup.MaxBackups != 3 {
		t.Errorf("Expected maxBackups 3, got %d", got.Backup.MaxBackups)
	}
	// Missing nested keys keep their defaults.
	if got.Backup.BackupFrequency != FrequencyDaily {
		t.Errorf("Expected daily frequency, got %s", got.Backup.BackupFrequency)
	}
	if got.Language != "tr" {
		t.Errorf("Expected language tr, got %s", got.Language)
	}
}

func TestOpenCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	os.WriteFile(path, []byte("{not json"), 0600)

	if _, err := Open(path, nil); err == nil {
		t.Error("Expected error for corrupt settings file")
	}
}

func TestUpdatePersistsAndPublishes(t *testing.T) {
	bus := events.NewEventBus(10)
	defer bus.Close()
	ch := bus.Subscribe(events.EventSettingsChanged)

	path := filepath.Join(t.TempDir(), "settings.json")
	s, _ := Open(path, bus)

	if err := s.SetTheme(ThemeDark); err != nil {
		t.Fatalf("SetTheme failed: %v", err)
	}

	reopened, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if reopened.Get().Theme != ThemeDark {
		t.Errorf("Expected persisted theme dark, got %s", reopened.Get().Theme)
	}

	select {
	case ev := <-ch:
		changed := ev.(*events.SettingsChangedEvent)
		if changed.Section != SectionAppearance {
			t.Errorf("Expected section %s, got %s", SectionAppearance, changed.Section)
		}
	case <-time.After(time.Second):
		t.Error("Expected settings:changed event")
	}
}

func TestUpdateValidation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	s, _ := Open(path, nil)

	tests := []struct {
		name    string
		apply   func(*StoreSchema)
		wantErr error
	}{
		{"bad theme", func(c *StoreSchema) { c.Theme = "blue" }, ErrInvalidTheme},
		{"bad frequency", func(c *StoreSchema) { c.Backup.BackupFrequency = "hourly" }, ErrInvalidFrequency},
		{"bad time", func(c *StoreSchema) { c.Backup.BackupTime = "25:00" }, ErrInvalidBackupTime},
		{"zero max", func(c *StoreSchema) { c.Backup.MaxBackups = 0 }, ErrInvalidMaxBackups},
		{"bad provider", func(c *StoreSchema) { c.AIProvider.Provider = "claude" }, ErrInvalidProvider},
		{"missing model", func(c *StoreSchema) { c.AIProvider.Model = "" }, ErrModelRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Update(SectionAll, tt.apply)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	// Nothing was written.
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("Expected no settings file after failed updates, got %v", err)
	}
	if s.Get().Theme != ThemeLight {
		t.Errorf("Expected in-memory settings unchanged")
	}
}

func TestSetAIProviderKeepsAPIKey(t *testing.T) {
	s, _ := Open(filepath.Join(t.TempDir(), "settings.json"), nil)

	if err := s.SetAIProvider(AIProviderSettings{Provider: ProviderOpenAI, Model: "gpt-4o", APIKey: "sk-1"}); err != nil {
		t.Fatalf("SetAIProvider failed: %v", err)
	}
	if err := s.SetAIProvider(AIProviderSettings{Provider: ProviderOpenAI, Model: "gpt-4o-mini"}); err != nil {
		t.Fatalf("SetAIProvider failed: %v", err)
	}
	got := s.AIProvider()
	if got.APIKey != "sk-1" || got.Model != "gpt-4o-mini" {
		t.Errorf("Expected key kept and model updated, got %+v", got)
	}

	// Switching provider drops the old key.
	s.SetAIProvider(AIProviderSettings{Provider: ProviderGemini, Model: "gemini-pro"})
	if s.AIProvider().APIKey != "" {
		t.Errorf("Expected API key cleared on provider change")
	}
}

func TestAddLastOpenedPage(t *testing.T) {
	s, _ := Open(filepath.Join(t.TempDir(), "settings.json"), nil)

	for i := 0; i < 12; i++ {
		s.AddLastOpenedPage("/page/" + string(rune('a'+i)))
	}
	s.AddLastOpenedPage("/page/e")

	pages := s.Get().LastOpenedPages
	if len(pages) != 10 {
		t.Fatalf("Expected 10 pages, got %d", len(pages))
	}
	if pages[0] != "/page/e" {
		t.Errorf("Expected most recent first, got %s", pages[0])
	}
	seen := map[string]bool{}
	for _, p := range pages {
		if seen[p] {
			t.Errorf("Duplicate page %s", p)
		}
		seen[p] = true
	}
}

func TestGetReturnsCopy(t *testing.T) {
	s, _ := Open(filepath.Join(t.TempDir(), "settings.json"), nil)
	s.AddLastOpenedPage("/students")

	got := s.Get()
	got.LastOpenedPages[0] = "/mutated"

	if s.Get().LastOpenedPages[0] != "/students" {
		t.Error("Expected Get to return an independent copy")
	}
}

func TestResetAndFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	s, _ := Open(path, nil)

	if err := s.MarkFirstRunCompleted(); err != nil {
		t.Fatalf("MarkFirstRunCompleted failed: %v", err)
	}
	if !s.FirstRunCompleted() {
		t.Error("Expected first run completed")
	}

	var raw map[string]any
	data, _ := os.ReadFile(path)
	json.Unmarshal(data, &raw)
	if raw["firstRunCompleted"] != true {
		t.Errorf("Expected firstRunCompleted in file, got %v", raw["firstRunCompleted"])
	}

	if err := s.Reset(); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if s.FirstRunCompleted() {
		t.Error("Expected reset to clear first run flag")
	}
}
