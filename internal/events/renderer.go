package events

import "time"

// Renderer event names that differ from the bus event type.
const (
	RendererWindowMaximized  = "window:maximized"
	RendererWindowFullscreen = "window:fullscreen"
	RendererWindowFocused    = "window:focused"
	RendererMenuNavigate     = "menu:navigate"
	RendererUpdateProgress   = "update:downloadProgress"
)

// ToastDTO is the JSON-safe version of ToastEvent.
type ToastDTO struct {
	Variant     string `json:"variant"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// LogDTO is the JSON-safe version of LogEvent.
type LogDTO struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Message   string `json:"message"`
	Component string `json:"component,omitempty"`
	Error     string `json:"error,omitempty"`
}

// NotificationDTO is the JSON-safe version of NotificationEvent.
type NotificationDTO struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Body    string `json:"body"`
	Urgency string `json:"urgency"`
	Native  bool   `json:"native"`
}

// UpdateDTO is the JSON-safe version of UpdateEvent.
type UpdateDTO struct {
	Version        string  `json:"version,omitempty"`
	CurrentVersion string  `json:"currentVersion,omitempty"`
	ReleaseDate    string  `json:"releaseDate,omitempty"`
	ReleaseNotes   string  `json:"releaseNotes,omitempty"`
	Percent        float64 `json:"percent,omitempty"`
	BytesPerSecond float64 `json:"bytesPerSecond,omitempty"`
	Transferred    int64   `json:"transferred,omitempty"`
	Total          int64   `json:"total,omitempty"`
	FilePath       string  `json:"filePath,omitempty"`
	Message        string  `json:"message,omitempty"`
}

// BackupDTO is the JSON-safe version of BackupEvent.
type BackupDTO struct {
	Name  string `json:"name,omitempty"`
	Path  string `json:"path,omitempty"`
	Size  int64  `json:"size,omitempty"`
	Auto  bool   `json:"auto"`
	Error string `json:"error,omitempty"`
}

// RendererEvent converts a bus event to the event name and payload the
// renderer listens for. ok is false for events the renderer does not receive.
func RendererEvent(event Event) (name string, payload any, ok bool) {
	switch e := event.(type) {
	case *LogEvent:
		dto := LogDTO{
			Timestamp: e.Timestamp().Format(time.RFC3339Nano),
			Level:     e.Level.String(),
			Message:   e.Message,
			Component: e.Component,
		}
		if e.Error != nil {
			dto.Error = e.Error.Error()
		}
		return string(EventLog), dto, true

	case *ToastEvent:
		return string(EventToast), ToastDTO{Variant: e.Variant, Title: e.Title, Description: e.Description}, true

	case *WindowStateEvent:
		switch e.State {
		case WindowMaximized, WindowUnmaximized:
			return RendererWindowMaximized, e.State == WindowMaximized, true
		case WindowFullscreen, WindowWindowed:
			return RendererWindowFullscreen, e.State == WindowFullscreen, true
		case WindowFocused, WindowBlurred:
			return RendererWindowFocused, e.State == WindowFocused, true
		}
		return string(EventWindowState), e.State, true

	case *MenuActionEvent:
		if e.Type() == EventNavigate {
			return RendererMenuNavigate, e.Path, true
		}
		if e.Path != "" {
			return "menu:" + e.Action, e.Path, true
		}
		return "menu:" + e.Action, nil, true

	case *NotificationEvent:
		return string(e.Type()), NotificationDTO{
			ID: e.ID, Title: e.Title, Body: e.Body, Urgency: e.Urgency, Native: e.Native,
		}, true

	case *UpdateEvent:
		dto := UpdateDTO{
			Version:        e.Version,
			CurrentVersion: e.CurrentVersion,
			ReleaseDate:    e.ReleaseDate,
			ReleaseNotes:   e.ReleaseNotes,
			Percent:        e.Percent,
			BytesPerSecond: e.BytesPerSecond,
			Transferred:    e.Transferred,
			Total:          e.Total,
			FilePath:       e.FilePath,
		}
		if e.Error != nil {
			dto.Message = e.Error.Error()
		}
		if e.Type() == EventUpdateProgress {
			return RendererUpdateProgress, dto, true
		}
		return string(e.Type()), dto, true

	case *BackupEvent:
		dto := BackupDTO{Name: e.Name, Path: e.Path, Size: e.Size, Auto: e.Auto}
		if e.Error != nil {
			dto.Error = e.Error.Error()
		}
		return string(e.Type()), dto, true

	case *SetupEvent:
		return string(EventSetupCompleted), map[string]string{"email": e.Email}, true

	case *SettingsChangedEvent:
		return string(EventSettingsChanged), map[string]string{"section": e.Section}, true
	}
	return "", nil, false
}
