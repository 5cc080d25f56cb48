package notify

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rehber360/rehber360-desktop/internal/events"
	"github.com/rehber360/rehber360-desktop/internal/store"
)

type recorder struct {
	sent []Options
	err  error
}

func (r *recorder) send(opts Options) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, opts)
	return nil
}

func newTestNotifier(t *testing.T) (*Notifier, *recorder, *store.Store, *events.EventBus) {
	t.Helper()
	settings, err := store.Open(filepath.Join(t.TempDir(), "settings.json"), nil)
	if err != nil {
		t.Fatalf("store.Open failed: %v", err)
	}
	bus := events.NewEventBus(100)
	t.Cleanup(bus.Close)

	n := NewNotifier(settings, bus, nil)
	n.SetEnabled(true)
	rec := &recorder{}
	n.SetSender(rec.send)
	return n, rec, settings, bus
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"short", 10, "short"},
		{"exactly10c", 10, "exactly10c"},
		{"this is a long string", 10, "this is..."},
		{"", 10, ""},
		{"abc", 3, "abc"},
		{"abcd", 3, "..."},
		{"Öğrenci Çalışması", 10, "Öğrenci..."},
	}

	for _, tt := range tests {
		result := truncate(tt.input, tt.maxLen)
		if result != tt.expected {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.input, tt.maxLen, result, tt.expected)
		}
	}
}

func TestShowNative(t *testing.T) {
	n, rec, _, bus := newTestNotifier(t)
	shown := bus.Subscribe(events.EventNotificationShown)
	toasts := bus.Subscribe(events.EventToast)

	if !n.Show(Options{Title: "Başlık", Body: "Mesaj"}) {
		t.Fatal("Expected native delivery")
	}
	if len(rec.sent) != 1 || rec.sent[0].Urgency != UrgencyNormal || rec.sent[0].Type != TypeInfo {
		t.Errorf("Expected defaults applied, got %+v", rec.sent)
	}

	select {
	case ev := <-shown:
		if !ev.(*events.NotificationEvent).Native {
			t.Error("Expected native flag on shown event")
		}
	case <-time.After(time.Second):
		t.Fatal("Expected notification:shown event")
	}
	select {
	case <-toasts:
		t.Error("Did not expect a toast for native delivery")
	default:
	}
}

func TestShowFallsBackToToast(t *testing.T) {
	n, rec, _, bus := newTestNotifier(t)
	toasts := bus.Subscribe(events.EventToast)
	rec.err = errors.New("dbus unavailable")

	if n.Show(Options{Title: "Hata", Body: "Bir şey oldu", Type: TypeError}) {
		t.Fatal("Expected fallback, not native delivery")
	}

	select {
	case ev := <-toasts:
		toast := ev.(*events.ToastEvent)
		if toast.Variant != events.ToastDestructive || toast.Title != "Hata" {
			t.Errorf("Unexpected toast: %+v", toast)
		}
	case <-time.After(time.Second):
		t.Fatal("Expected toast fallback")
	}

	log := n.Log()
	if len(log) != 1 || log[0].Native {
		t.Errorf("Expected one non-native log entry, got %+v", log)
	}
}

func TestDisabledUsesToast(t *testing.T) {
	n, rec, _, _ := newTestNotifier(t)
	n.SetEnabled(false)

	if n.Show(Options{Title: "x", Body: "y"}) {
		t.Error("Expected no native delivery while disabled")
	}
	if len(rec.sent) != 0 {
		t.Errorf("Expected sender not called, got %d calls", len(rec.sent))
	}
}

func TestGatedAlerts(t *testing.T) {
	n, rec, _, _ := newTestNotifier(t)

	if !n.ShowRiskAlert("Ali Yılmaz", "yüksek") {
		t.Error("Expected risk alert with default settings")
	}
	if rec.sent[0].Urgency != UrgencyCritical {
		t.Errorf("Expected critical urgency, got %s", rec.sent[0].Urgency)
	}
	if rec.sent[0].Body != "Ali Yılmaz - yüksek risk seviyesi tespit edildi" {
		t.Errorf("Unexpected body: %s", rec.sent[0].Body)
	}

	// dailyReports is off by default.
	if n.ShowDailyReport("3 görüşme") {
		t.Error("Expected daily report suppressed by default")
	}

	off := false
	if _, err := n.UpdateSettings(SettingsUpdate{RiskStudents: &off}); err != nil {
		t.Fatalf("UpdateSettings failed: %v", err)
	}
	if n.ShowRiskAlert("Ali", "orta") {
		t.Error("Expected risk alert suppressed after disabling")
	}

	if n.ShowMissingDataCount(0) {
		t.Error("Expected no notification for zero missing")
	}
	if !n.ShowMissingDataCount(4) {
		t.Error("Expected missing data notification")
	}
}

func TestUpdateSettingsMerges(t *testing.T) {
	n, _, settings, _ := newTestNotifier(t)

	on := true
	merged, err := n.UpdateSettings(SettingsUpdate{DailyReports: &on})
	if err != nil {
		t.Fatalf("UpdateSettings failed: %v", err)
	}
	if !merged.DailyReports || !merged.RiskStudents || !merged.SystemUpdates {
		t.Errorf("Expected merge to keep other gates, got %+v", merged)
	}
	if !settings.Notifications().DailyReports {
		t.Error("Expected merged settings persisted")
	}
}

func TestLogIsBounded(t *testing.T) {
	n, _, _, _ := newTestNotifier(t)

	for i := 0; i < 105; i++ {
		n.Show(Options{Title: "t", Body: "b"})
	}
	log := n.Log()
	if len(log) != 100 {
		t.Fatalf("Expected 100 entries, got %d", len(log))
	}
	if log[0].ID != "6" {
		t.Errorf("Expected oldest retained ID 6, got %s", log[0].ID)
	}

	n.ClearLog()
	if len(n.Log()) != 0 {
		t.Error("Expected empty log after ClearLog")
	}
}

func TestClickedPublishes(t *testing.T) {
	n, _, _, bus := newTestNotifier(t)
	clicked := bus.Subscribe(events.EventNotificationClicked)

	n.Show(Options{Title: "Tıkla", Body: "b"})
	n.Clicked(n.Log()[0].ID)

	select {
	case ev := <-clicked:
		if ev.(*events.NotificationEvent).Title != "Tıkla" {
			t.Error("Unexpected clicked event")
		}
	case <-time.After(time.Second):
		t.Fatal("Expected notification:clicked event")
	}
}
