package desktop

import (
	"github.com/rehber360/rehber360-desktop/internal/notify"
	"github.com/rehber360/rehber360-desktop/internal/store"
)

// ShowNotification shows a native notification if its category is enabled.
// Returns true when it was delivered natively; otherwise the renderer shows
// an in-app toast.
func (a *App) ShowNotification(opts notify.Options) bool {
	if a.engine == nil {
		return false
	}
	return a.engine.Notifier().Show(opts)
}

// IsNotificationSupported reports whether native notifications work here.
func (a *App) IsNotificationSupported() bool {
	return notify.IsSupported()
}

// GetNotificationSettings returns the per-category notification gates.
func (a *App) GetNotificationSettings() (store.NotificationSettings, error) {
	if a.engine == nil {
		return store.NotificationSettings{}, ErrNoEngine
	}
	return a.engine.Notifier().Settings(), nil
}

// UpdateNotificationSettings merges a partial update into the gates.
func (a *App) UpdateNotificationSettings(u notify.SettingsUpdate) (store.NotificationSettings, error) {
	if a.engine == nil {
		return store.NotificationSettings{}, ErrNoEngine
	}
	return a.engine.Notifier().UpdateSettings(u)
}

// NotificationClicked is called by the renderer when a notification is activated.
func (a *App) NotificationClicked(id string) {
	if a.engine == nil {
		return
	}
	a.engine.Notifier().Clicked(id)
	if a.window != nil {
		a.window.Show()
	}
}

// GetNotificationLog returns recently shown notifications, newest last.
func (a *App) GetNotificationLog() []notify.Entry {
	if a.engine == nil {
		return []notify.Entry{}
	}
	return a.engine.Notifier().Log()
}

// ShowRiskAlert shows the risk-student notification.
func (a *App) ShowRiskAlert(studentName, riskLevel string) bool {
	if a.engine == nil {
		return false
	}
	return a.engine.Notifier().ShowRiskAlert(studentName, riskLevel)
}
