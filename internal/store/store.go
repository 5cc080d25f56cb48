// Package store persists shell settings (theme, notifications, backup schedule,
// AI provider, tray behaviour) as a JSON document in the app data directory.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"sync"

	"github.com/rehber360/rehber360-desktop/internal/constants"
	"github.com/rehber360/rehber360-desktop/internal/events"
)

// Theme values.
const (
	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeSystem = "system"
)

// Backup frequencies.
const (
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
)

// AI providers.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
	ProviderGemini = "gemini"
)

// Settings sections, used in settings:changed events.
const (
	SectionAll           = "all"
	SectionAppearance    = "appearance"
	SectionNotifications = "notifications"
	SectionBackup        = "backup"
	SectionAIProvider    = "aiProvider"
	SectionWindow        = "window"
	SectionGeneral       = "general"
)

var (
	ErrInvalidTheme      = errors.New("invalid theme: must be light, dark or system")
	ErrInvalidLanguage   = errors.New("invalid language: only tr is supported")
	ErrInvalidFrequency  = errors.New("invalid backup frequency: must be daily, weekly or monthly")
	ErrInvalidBackupTime = errors.New("invalid backup time: must be HH:MM")
	ErrInvalidMaxBackups = errors.New("invalid max backups: must be at least 1")
	ErrInvalidProvider   = errors.New("invalid AI provider: must be openai, ollama or gemini")
	ErrModelRequired     = errors.New("AI model is required")
)

var backupTimePattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

// WindowBounds is the last main window geometry.
type WindowBounds struct {
	Width       int  `json:"width"`
	Height      int  `json:"height"`
	X           int  `json:"x"`
	Y           int  `json:"y"`
	IsMaximized bool `json:"isMaximized"`
}

// NotificationSettings gates each kind of native notification.
type NotificationSettings struct {
	RiskStudents  bool `json:"riskStudents"`
	MissingData   bool `json:"missingData"`
	DailyReports  bool `json:"dailyReports"`
	SystemUpdates bool `json:"systemUpdates"`
}

// BackupSettings configures the automatic database backup.
type BackupSettings struct {
	AutoBackup      bool   `json:"autoBackup"`
	BackupFrequency string `json:"backupFrequency"`
	BackupTime      string `json:"backupTime"`
	MaxBackups      int    `json:"maxBackups"`
}

// AIProviderSettings selects the AI backend used by the server.
type AIProviderSettings struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	APIKey   string `json:"apiKey,omitempty"`
}

// StoreSchema is the persisted settings document.
type StoreSchema struct {
	WindowBounds      WindowBounds         `json:"windowBounds"`
	Theme             string               `json:"theme"`
	Language          string               `json:"language"`
	Notifications     NotificationSettings `json:"notifications"`
	LastOpenedPages   []string             `json:"lastOpenedPages"`
	Backup            BackupSettings       `json:"backup"`
	AIProvider        AIProviderSettings   `json:"aiProvider"`
	MinimizeToTray    bool                 `json:"minimizeToTray"`
	StartMinimized    bool                 `json:"startMinimized"`
	AutoStart         bool                 `json:"autoStart"`
	FirstRunCompleted bool                 `json:"firstRunCompleted"`
}

// Defaults returns the settings used for a fresh install and for keys
// missing from an existing file.
func Defaults() StoreSchema {
	return StoreSchema{
		WindowBounds: WindowBounds{
			Width:  constants.DefaultWindowWidth,
			Height: constants.DefaultWindowHeight,
		},
		Theme:    ThemeLight,
		Language: "tr",
		Notifications: NotificationSettings{
			RiskStudents:  true,
			MissingData:   true,
			DailyReports:  false,
			SystemUpdates: true,
		},
		LastOpenedPages: []string{},
		Backup: BackupSettings{
			AutoBackup:      true,
			BackupFrequency: FrequencyDaily,
			BackupTime:      "02:00",
			MaxBackups:      constants.DefaultMaxBackups,
		},
		AIProvider: AIProviderSettings{
			Provider: ProviderOllama,
			Model:    "llama3",
		},
		MinimizeToTray: true,
	}
}

// Validate checks enumerated and formatted fields.
func (s *StoreSchema) Validate() error {
	switch s.Theme {
	case ThemeLight, ThemeDark, ThemeSystem:
	default:
		return ErrInvalidTheme
	}
	if s.Language != "tr" {
		return ErrInvalidLanguage
	}
	switch s.Backup.BackupFrequency {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
	default:
		return ErrInvalidFrequency
	}
	if !backupTimePattern.MatchString(s.Backup.BackupTime) {
		return ErrInvalidBackupTime
	}
	if s.Backup.MaxBackups < 1 {
		return ErrInvalidMaxBackups
	}
	return s.AIProvider.Validate()
}

// Validate checks the provider and model.
func (a AIProviderSettings) Validate() error {
	switch a.Provider {
	case ProviderOpenAI, ProviderOllama, ProviderGemini:
	default:
		return ErrInvalidProvider
	}
	if a.Model == "" {
		return ErrModelRequired
	}
	return nil
}

func (s StoreSchema) clone() StoreSchema {
	c := s
	c.LastOpenedPages = append([]string{}, s.LastOpenedPages...)
	return c
}

// Store is the settings store. Safe for concurrent use.
type Store struct {
	path string
	bus  *events.EventBus

	mu   sync.RWMutex
	data StoreSchema
}

// Open loads the store at path. A missing file yields defaults; keys absent
// from the file keep their defaults. bus may be nil.
func Open(path string, bus *events.EventBus) (*Store, error) {
	s := &Store{path: path, bus: bus, data: Defaults()}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}

	loaded := Defaults()
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse settings %s: %w", path, err)
	}
	if loaded.LastOpenedPages == nil {
		loaded.LastOpenedPages = []string{}
	}
	s.data = loaded
	return s, nil
}

// Path returns the settings file path.
func (s *Store) Path() string {
	return s.path
}

// Get returns a copy of the current settings.
func (s *Store) Get() StoreSchema {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.clone()
}

// Update applies fn to a copy of the settings, validates, and saves.
// Nothing changes if validation or saving fails.
func (s *Store) Update(section string, fn func(*StoreSchema)) error {
	s.mu.Lock()
	next := s.data.clone()
	fn(&next)
	if err := next.Validate(); err != nil {
		s.mu.Unlock()
		return err
	}
	if err := writeJSON(s.path, next); err != nil {
		s.mu.Unlock()
		return err
	}
	s.data = next
	s.mu.Unlock()

	s.bus.PublishSettingsChanged(section)
	return nil
}

// Replace validates and saves a complete settings document.
func (s *Store) Replace(next StoreSchema) error {
	return s.Update(SectionAll, func(cur *StoreSchema) { *cur = next.clone() })
}

// Reset restores every setting to its default.
func (s *Store) Reset() error {
	return s.Replace(Defaults())
}

// SetTheme sets the UI theme.
func (s *Store) SetTheme(theme string) error {
	return s.Update(SectionAppearance, func(cur *StoreSchema) { cur.Theme = theme })
}

// Notifications returns the notification gates.
func (s *Store) Notifications() NotificationSettings {
	return s.Get().Notifications
}

// SetNotifications replaces the notification gates.
func (s *Store) SetNotifications(n NotificationSettings) error {
	return s.Update(SectionNotifications, func(cur *StoreSchema) { cur.Notifications = n })
}

// Backup returns the backup schedule.
func (s *Store) Backup() BackupSettings {
	return s.Get().Backup
}

// SetBackup replaces the backup schedule.
func (s *Store) SetBackup(b BackupSettings) error {
	return s.Update(SectionBackup, func(cur *StoreSchema) { cur.Backup = b })
}

// AIProvider returns the AI provider settings.
func (s *Store) AIProvider() AIProviderSettings {
	return s.Get().AIProvider
}

// SetAIProvider replaces the AI provider settings. An empty API key keeps the
// stored one so the renderer never has to echo it back.
func (s *Store) SetAIProvider(a AIProviderSettings) error {
	return s.Update(SectionAIProvider, func(cur *StoreSchema) {
		if a.APIKey == "" && a.Provider == cur.AIProvider.Provider {
			a.APIKey = cur.AIProvider.APIKey
		}
		cur.AIProvider = a
	})
}

// SetWindowBounds stores the last window geometry.
func (s *Store) SetWindowBounds(b WindowBounds) error {
	return s.Update(SectionWindow, func(cur *StoreSchema) { cur.WindowBounds = b })
}

// FirstRunCompleted reports whether the setup wizard has finished.
func (s *Store) FirstRunCompleted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data.FirstRunCompleted
}

// MarkFirstRunCompleted records that the setup wizard has finished.
func (s *Store) MarkFirstRunCompleted() error {
	return s.Update(SectionGeneral, func(cur *StoreSchema) { cur.FirstRunCompleted = true })
}

// AddLastOpenedPage records path as most recently opened, keeping at most
// MaxLastOpenedPages unique entries.
func (s *Store) AddLastOpenedPage(path string) error {
	if path == "" {
		return nil
	}
	return s.Update(SectionGeneral, func(cur *StoreSchema) {
		pages := []string{path}
		for _, p := range cur.LastOpenedPages {
			if p != path {
				pages = append(pages, p)
			}
		}
		if len(pages) > constants.MaxLastOpenedPages {
			pages = pages[:constants.MaxLastOpenedPages]
		}
		cur.LastOpenedPages = pages
	})
}

// writeJSON writes v to path via a temporary file and rename.
func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}

	if runtime.GOOS != "windows" {
		if err := os.Chmod(tmpPath, 0600); err != nil {
			os.Remove(tmpPath)
			return fmt.Errorf("failed to set settings permissions: %w", err)
		}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}
