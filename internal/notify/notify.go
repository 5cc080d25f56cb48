// Package notify provides native desktop notifications for Rehber360.
// It uses github.com/gen2brain/beeep for cross-platform notification support
// and falls back to an in-app toast when native delivery is unavailable.
package notify

import (
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gen2brain/beeep"
	"github.com/rehber360/rehber360-desktop/internal/constants"
	"github.com/rehber360/rehber360-desktop/internal/events"
	"github.com/rehber360/rehber360-desktop/internal/logging"
	"github.com/rehber360/rehber360-desktop/internal/store"
)

// Notification types.
const (
	TypeInfo    = "info"
	TypeWarning = "warning"
	TypeError   = "error"
	TypeSuccess = "success"
)

// Urgency levels.
const (
	UrgencyLow      = "low"
	UrgencyNormal   = "normal"
	UrgencyCritical = "critical"
)

// Options describes a notification.
type Options struct {
	Title   string `json:"title"`
	Body    string `json:"body"`
	Type    string `json:"type,omitempty"`
	Urgency string `json:"urgency,omitempty"`
	Silent  bool   `json:"silent,omitempty"`
}

// Entry is a delivered (or attempted) notification kept in the log.
type Entry struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Type      string    `json:"type"`
	Urgency   string    `json:"urgency"`
	Native    bool      `json:"native"`
	Timestamp time.Time `json:"timestamp"`
}

// Sender delivers a native notification.
type Sender func(opts Options) error

// beeepSender uses beeep.Alert for critical notifications and beeep.Notify otherwise.
func beeepSender(opts Options) error {
	// beeep.Notify is cross-platform:
	// - Windows: Uses toast notifications
	// - macOS: Uses NSUserNotificationCenter
	// - Linux: Uses D-Bus notifications
	if opts.Urgency == UrgencyCritical {
		if err := beeep.Alert(opts.Title, opts.Body, ""); err == nil {
			return nil
		}
	}
	if err := beeep.Notify(opts.Title, opts.Body, ""); err != nil {
		return err
	}
	if !opts.Silent && opts.Urgency == UrgencyCritical {
		_ = beeep.Beep(beeep.DefaultFreq, beeep.DefaultDuration)
	}
	return nil
}

// Notifier handles desktop notifications.
type Notifier struct {
	logger   *logging.Logger
	settings *store.Store
	bus      *events.EventBus
	send     Sender

	mu      sync.RWMutex
	enabled bool
	entries []Entry
	seq     atomic.Int64
}

// NewNotifier creates a notifier. settings and bus may be nil; without a
// settings store every category is allowed.
func NewNotifier(settings *store.Store, bus *events.EventBus, logger *logging.Logger) *Notifier {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Notifier{
		logger:   logger,
		settings: settings,
		bus:      bus,
		send:     beeepSender,
		enabled:  IsSupported(),
	}
}

// SetSender replaces the native delivery function.
func (n *Notifier) SetSender(s Sender) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.send = s
}

// IsSupported reports whether native notifications exist on this platform.
func IsSupported() bool {
	switch runtime.GOOS {
	case "windows", "darwin", "linux", "freebsd":
		return true
	default:
		return false
	}
}

// SetEnabled enables or disables native delivery. Disabled notifications are
// shown as toasts.
func (n *Notifier) SetEnabled(enabled bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.enabled = enabled
}

// IsEnabled returns whether native delivery is enabled.
func (n *Notifier) IsEnabled() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.enabled
}

// Show delivers a notification. It returns true when delivered natively;
// otherwise the notification is published as a toast.
func (n *Notifier) Show(opts Options) bool {
	if opts.Type == "" {
		opts.Type = TypeInfo
	}
	if opts.Urgency == "" {
		opts.Urgency = UrgencyNormal
	}

	n.mu.RLock()
	enabled, send := n.enabled, n.send
	n.mu.RUnlock()

	native := false
	if enabled {
		if err := send(opts); err != nil {
			n.logger.Warn().Err(err).Str("title", opts.Title).Msg("Native notification failed, falling back to toast")
		} else {
			native = true
		}
	}

	if !native {
		variant := events.ToastDefault
		switch opts.Type {
		case TypeError, TypeWarning:
			variant = events.ToastDestructive
		case TypeSuccess:
			variant = events.ToastSuccess
		}
		n.bus.PublishToast(variant, opts.Title, opts.Body)
	}

	entry := n.record(opts, native)
	n.bus.PublishNotification(events.EventNotificationShown, events.NotificationEvent{
		ID:      entry.ID,
		Title:   opts.Title,
		Body:    opts.Body,
		Urgency: opts.Urgency,
		Native:  native,
	})
	n.logger.Info().Str("title", opts.Title).Bool("native", native).Msg("Notification shown")
	return native
}

// Clicked reports a notification activation (tray balloon or renderer) so
// listeners can bring the window forward.
func (n *Notifier) Clicked(id string) {
	for _, e := range n.Log() {
		if e.ID == id {
			n.bus.PublishNotification(events.EventNotificationClicked, events.NotificationEvent{
				ID: e.ID, Title: e.Title, Body: e.Body, Urgency: e.Urgency, Native: e.Native,
			})
			return
		}
	}
}

func (n *Notifier) record(opts Options, native bool) Entry {
	entry := Entry{
		ID:        strconv.FormatInt(n.seq.Add(1), 10),
		Title:     opts.Title,
		Body:      opts.Body,
		Type:      opts.Type,
		Urgency:   opts.Urgency,
		Native:    native,
		Timestamp: time.Now(),
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	n.entries = append(n.entries, entry)
	if over := len(n.entries) - constants.NotificationLogSize; over > 0 {
		n.entries = append([]Entry(nil), n.entries[over:]...)
	}
	return entry
}

// Log returns the retained notifications, oldest first.
func (n *Notifier) Log() []Entry {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return append([]Entry(nil), n.entries...)
}

// ClearLog drops all retained notifications.
func (n *Notifier) ClearLog() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.entries = nil
}

// Settings returns the notification gates.
func (n *Notifier) Settings() store.NotificationSettings {
	if n.settings == nil {
		return store.Defaults().Notifications
	}
	return n.settings.Notifications()
}

// SettingsUpdate is a partial update of the notification gates.
type SettingsUpdate struct {
	RiskStudents  *bool `json:"riskStudents,omitempty"`
	MissingData   *bool `json:"missingData,omitempty"`
	DailyReports  *bool `json:"dailyReports,omitempty"`
	SystemUpdates *bool `json:"systemUpdates,omitempty"`
}

// UpdateSettings merges a partial update into the stored gates and returns the result.
func (n *Notifier) UpdateSettings(u SettingsUpdate) (store.NotificationSettings, error) {
	merged := n.Settings()
	if u.RiskStudents != nil {
		merged.RiskStudents = *u.RiskStudents
	}
	if u.MissingData != nil {
		merged.MissingData = *u.MissingData
	}
	if u.DailyReports != nil {
		merged.DailyReports = *u.DailyReports
	}
	if u.SystemUpdates != nil {
		merged.SystemUpdates = *u.SystemUpdates
	}

	if n.settings != nil {
		if err := n.settings.SetNotifications(merged); err != nil {
			return store.NotificationSettings{}, fmt.Errorf("failed to save notification settings: %w", err)
		}
	}
	n.logger.Info().Msg("Notification settings updated")
	return merged, nil
}

// ShowRiskAlert notifies about a student at risk. Gated by riskStudents.
func (n *Notifier) ShowRiskAlert(studentName, riskLevel string) bool {
	if !n.Settings().RiskStudents {
		return false
	}
	return n.Show(Options{
		Title:   "Risk Öğrenci Uyarısı",
		Body:    fmt.Sprintf("%s - %s risk seviyesi tespit edildi", truncate(studentName, 60), riskLevel),
		Type:    TypeWarning,
		Urgency: UrgencyCritical,
	})
}

// ShowMissingDataAlert reports missing student data. Gated by missingData.
func (n *Notifier) ShowMissingDataAlert(message string) bool {
	if !n.Settings().MissingData {
		return false
	}
	return n.Show(Options{
		Title:   "Eksik Veri Uyarısı",
		Body:    truncate(message, 200),
		Type:    TypeWarning,
		Urgency: UrgencyNormal,
	})
}

// ShowMissingDataCount reports how many students have missing data.
func (n *Notifier) ShowMissingDataCount(count int) bool {
	if count <= 0 {
		return false
	}
	return n.ShowMissingDataAlert(fmt.Sprintf("%d öğrencinin eksik verisi var", count))
}

// ShowDailyReport announces the daily report. Gated by dailyReports.
func (n *Notifier) ShowDailyReport(summary string) bool {
	if !n.Settings().DailyReports {
		return false
	}
	return n.Show(Options{
		Title:   "Günlük Rapor Hazır",
		Body:    truncate(summary, 200),
		Type:    TypeInfo,
		Urgency: UrgencyLow,
	})
}

// ShowUpdateAvailable announces a new version. Gated by systemUpdates.
func (n *Notifier) ShowUpdateAvailable(version string) bool {
	if !n.Settings().SystemUpdates {
		return false
	}
	return n.Show(Options{
		Title: "Güncelleme Mevcut",
		Body:  fmt.Sprintf("Rehber360 %s sürümü yüklemeye hazır.", version),
		Type:  TypeInfo,
	})
}

// Templates for renderer-triggered notifications.

// StudentAdded builds the "student added" notification.
func StudentAdded(studentName string) Options {
	return Options{Title: "Yeni Öğrenci Eklendi", Body: fmt.Sprintf("%s sisteme başarıyla eklendi.", studentName), Type: TypeSuccess}
}

// SessionReminder builds a counseling session reminder.
func SessionReminder(sessionType, when string) Options {
	return Options{Title: "Görüşme Hatırlatması", Body: fmt.Sprintf("%s görüşmesi %s tarihinde planlandı.", sessionType, when)}
}

// AISuggestion builds the "new AI suggestion" notification.
func AISuggestion(studentName, suggestionType string) Options {
	return Options{Title: "Yeni AI Önerisi", Body: fmt.Sprintf("%s için %s önerisi oluşturuldu.", studentName, suggestionType)}
}

// TaskDue builds a task deadline reminder.
func TaskDue(taskTitle string) Options {
	return Options{Title: "Görev Hatırlatması", Body: fmt.Sprintf("\"%s\" görevinin süresi dolmak üzere.", taskTitle), Type: TypeWarning}
}

// truncate shortens a string to maxLen runes, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
