package events

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/rehber360/rehber360-desktop/internal/constants"
)

// EventType defines the types of events that can be emitted.
// The string value doubles as the renderer-side channel name.
type EventType string

const (
	EventLog   EventType = "log"
	EventToast EventType = "toast"

	// Window chrome
	EventWindowState EventType = "window:state"

	// Menu and tray
	EventMenuAction EventType = "menu:action"
	EventNavigate   EventType = "navigate"

	// Notifications
	EventNotificationShown   EventType = "notification:shown"
	EventNotificationClicked EventType = "notification:clicked"

	// Auto-update
	EventUpdateChecking     EventType = "update:checking"
	EventUpdateAvailable    EventType = "update:available"
	EventUpdateNotAvailable EventType = "update:not-available"
	EventUpdateProgress     EventType = "update:download-progress"
	EventUpdateDownloaded   EventType = "update:downloaded"
	EventUpdateError        EventType = "update:error"

	// Database backup
	EventBackupCreated  EventType = "backup:created"
	EventBackupRestored EventType = "backup:restored"
	EventBackupFailed   EventType = "backup:failed"

	// First-run wizard and settings
	EventSetupCompleted  EventType = "setup:completed"
	EventSettingsChanged EventType = "settings:changed"
)

// LogLevel defines log severity levels
type LogLevel int

const (
	DebugLevel LogLevel = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

func (l LogLevel) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case InfoLevel:
		return "INFO"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Window states carried by WindowStateEvent.
const (
	WindowMaximized   = "maximized"
	WindowUnmaximized = "unmaximized"
	WindowMinimized   = "minimized"
	WindowRestored    = "restored"
	WindowFullscreen  = "fullscreen"
	WindowWindowed    = "windowed"
	WindowFocused     = "focused"
	WindowBlurred     = "blurred"
	WindowShown       = "shown"
	WindowHidden      = "hidden"
)

// Toast variants carried by ToastEvent.
const (
	ToastDefault     = "default"
	ToastSuccess     = "success"
	ToastDestructive = "destructive"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
	Timestamp() time.Time
}

// BaseEvent provides common event fields
type BaseEvent struct {
	EventType EventType
	Time      time.Time
}

func (e BaseEvent) Type() EventType      { return e.EventType }
func (e BaseEvent) Timestamp() time.Time { return e.Time }

func newBase(t EventType) BaseEvent {
	return BaseEvent{EventType: t, Time: time.Now()}
}

// LogEvent represents log messages
type LogEvent struct {
	BaseEvent
	Level     LogLevel
	Message   string
	Component string
	Error     error
}

// ToastEvent asks the renderer to display a toast.
type ToastEvent struct {
	BaseEvent
	Variant     string
	Title       string
	Description string
}

// WindowStateEvent reports a window chrome transition.
type WindowStateEvent struct {
	BaseEvent
	State string
}

// MenuActionEvent is published when a menu or tray item is activated.
// Path is set for navigation actions.
type MenuActionEvent struct {
	BaseEvent
	Action string
	Path   string
}

// NotificationEvent describes a notification that was shown or clicked.
type NotificationEvent struct {
	BaseEvent
	ID      string
	Title   string
	Body    string
	Urgency string
	Native  bool
}

// UpdateEvent carries auto-update state. Only the fields relevant to
// the event type are populated.
type UpdateEvent struct {
	BaseEvent
	Version        string
	CurrentVersion string
	ReleaseDate    string
	ReleaseNotes   string
	DownloadURL    string
	Percent        float64
	BytesPerSecond float64
	Transferred    int64
	Total          int64
	FilePath       string
	Error          error
}

// BackupEvent reports a database backup or restore outcome.
type BackupEvent struct {
	BaseEvent
	Name  string
	Path  string
	Size  int64
	Auto  bool
	Error error
}

// SetupEvent is published when the first-run wizard finishes.
type SetupEvent struct {
	BaseEvent
	Email string
}

// SettingsChangedEvent is published after the settings store is saved.
type SettingsChangedEvent struct {
	BaseEvent
	Section string
}

// EventBus manages event subscriptions and publishing
type EventBus struct {
	subscribers   map[EventType][]chan Event
	all           []chan Event // Subscribers to all events
	mu            sync.RWMutex
	bufferSize    int
	closed        bool
	droppedEvents atomic.Int64 // Count of dropped events due to full buffers
}

// NewEventBus creates a new event bus with specified buffer size
func NewEventBus(bufferSize int) *EventBus {
	if bufferSize <= 0 {
		bufferSize = constants.EventBusDefaultBuffer
	}
	if bufferSize > constants.EventBusMaxBuffer {
		bufferSize = constants.EventBusMaxBuffer
	}
	return &EventBus{
		subscribers: make(map[EventType][]chan Event),
		all:         make([]chan Event, 0),
		bufferSize:  bufferSize,
	}
}

// Subscribe creates a subscription to a specific event type
func (eb *EventBus) Subscribe(eventType EventType) <-chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}

	ch := make(chan Event, eb.bufferSize)
	eb.subscribers[eventType] = append(eb.subscribers[eventType], ch)
	return ch
}

// SubscribeAll creates a subscription to all events
func (eb *EventBus) SubscribeAll() <-chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		ch := make(chan Event)
		close(ch)
		return ch
	}

	ch := make(chan Event, eb.bufferSize)
	eb.all = append(eb.all, ch)
	return ch
}

// Publish sends an event to all subscribers without blocking.
// A nil bus is a valid no-op publisher.
func (eb *EventBus) Publish(event Event) {
	if eb == nil {
		return
	}
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	if eb.closed {
		return
	}

	for _, ch := range eb.subscribers[event.Type()] {
		select {
		case ch <- event:
		default:
			eb.droppedEvents.Add(1)
		}
	}

	for _, ch := range eb.all {
		select {
		case ch <- event:
		default:
			eb.droppedEvents.Add(1)
		}
	}
}

// Close shuts down the event bus and closes all channels
func (eb *EventBus) Close() {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}

	eb.closed = true

	for _, channels := range eb.subscribers {
		for _, ch := range channels {
			close(ch)
		}
	}

	for _, ch := range eb.all {
		close(ch)
	}
}

// PublishLog is a convenience method for publishing log events
func (eb *EventBus) PublishLog(level LogLevel, message, component string, err error) {
	eb.Publish(&LogEvent{
		BaseEvent: newBase(EventLog),
		Level:     level,
		Message:   message,
		Component: component,
		Error:     err,
	})
}

// PublishToast is a convenience method for publishing toast events
func (eb *EventBus) PublishToast(variant, title, description string) {
	eb.Publish(&ToastEvent{
		BaseEvent:   newBase(EventToast),
		Variant:     variant,
		Title:       title,
		Description: description,
	})
}

// PublishWindowState is a convenience method for publishing window transitions
func (eb *EventBus) PublishWindowState(state string) {
	eb.Publish(&WindowStateEvent{
		BaseEvent: newBase(EventWindowState),
		State:     state,
	})
}

// PublishMenuAction is a convenience method for publishing menu actions
func (eb *EventBus) PublishMenuAction(action, path string) {
	eb.Publish(&MenuActionEvent{
		BaseEvent: newBase(EventMenuAction),
		Action:    action,
		Path:      path,
	})
}

// PublishNavigate asks the renderer to route to path.
func (eb *EventBus) PublishNavigate(path string) {
	eb.Publish(&MenuActionEvent{
		BaseEvent: newBase(EventNavigate),
		Action:    "navigate",
		Path:      path,
	})
}

// PublishUpdate publishes an auto-update event of the given type.
func (eb *EventBus) PublishUpdate(eventType EventType, ev UpdateEvent) {
	ev.BaseEvent = newBase(eventType)
	eb.Publish(&ev)
}

// PublishBackup publishes a backup event of the given type.
func (eb *EventBus) PublishBackup(eventType EventType, ev BackupEvent) {
	ev.BaseEvent = newBase(eventType)
	eb.Publish(&ev)
}

// PublishNotification publishes a notification event of the given type.
func (eb *EventBus) PublishNotification(eventType EventType, ev NotificationEvent) {
	ev.BaseEvent = newBase(eventType)
	eb.Publish(&ev)
}

// PublishSettingsChanged reports that a settings section was saved.
func (eb *EventBus) PublishSettingsChanged(section string) {
	eb.Publish(&SettingsChangedEvent{
		BaseEvent: newBase(EventSettingsChanged),
		Section:   section,
	})
}

// PublishSetupCompleted reports that the first-run wizard finished.
func (eb *EventBus) PublishSetupCompleted(email string) {
	eb.Publish(&SetupEvent{
		BaseEvent: newBase(EventSetupCompleted),
		Email:     email,
	})
}

// Unsubscribe removes a subscription channel from a specific event type
func (eb *EventBus) Unsubscribe(eventType EventType, ch <-chan Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}

	subscribers := eb.subscribers[eventType]
	for i, subCh := range subscribers {
		if subCh == ch {
			subscribers[i] = subscribers[len(subscribers)-1]
			eb.subscribers[eventType] = subscribers[:len(subscribers)-1]
			break
		}
	}
}

// UnsubscribeAll removes a subscription channel from all event types
// Use this when cleaning up a subscriber that subscribed to multiple event types
func (eb *EventBus) UnsubscribeAll(ch <-chan Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if eb.closed {
		return
	}

	for eventType, subscribers := range eb.subscribers {
		for i, subCh := range subscribers {
			if subCh == ch {
				subscribers[i] = subscribers[len(subscribers)-1]
				eb.subscribers[eventType] = subscribers[:len(subscribers)-1]
				break
			}
		}
	}

	for i, subCh := range eb.all {
		if subCh == ch {
			eb.all[i] = eb.all[len(eb.all)-1]
			eb.all = eb.all[:len(eb.all)-1]
			break
		}
	}
}

// GetDroppedEventCount returns the total number of events dropped due to full buffers
func (eb *EventBus) GetDroppedEventCount() int64 {
	return eb.droppedEvents.Load()
}

// ResetDroppedEventCount resets the dropped event counter to zero
func (eb *EventBus) ResetDroppedEventCount() int64 {
	return eb.droppedEvents.Swap(0)
}
