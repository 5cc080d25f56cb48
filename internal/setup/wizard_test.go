package setup

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rehber360/rehber360-desktop/internal/events"
	"github.com/rehber360/rehber360-desktop/internal/store"
	"github.com/rehber360/rehber360-desktop/internal/transport"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		password string
		want     error
	}{
		{"Kisa1", ErrPasswordTooShort},
		{"kucukharf1", ErrPasswordNoUpper},
		{"BUYUKHARF1", ErrPasswordNoLower},
		{"RakamYokBurada", ErrPasswordNoDigit},
		// Arabic-Indic digits do not count
		{"Guvenli١٢٣", ErrPasswordNoDigit},
		{"Guvenli123", nil},
	}

	for _, tt := range tests {
		if got := ValidatePassword(tt.password); got != tt.want {
			t.Errorf("ValidatePassword(%q): Expected %v, got %v", tt.password, tt.want, got)
		}
	}
}

func TestAdminFormValidate(t *testing.T) {
	valid := AdminForm{Email: DefaultAdminEmail, Password: "Guvenli123", Name: "Ayşe", Surname: "Yılmaz"}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Expected valid form, got %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*AdminForm)
		want   error
	}{
		{"missing name", func(f *AdminForm) { f.Name = "  " }, ErrNameRequired},
		{"missing surname", func(f *AdminForm) { f.Surname = "" }, ErrSurnameRequired},
		{"missing email", func(f *AdminForm) { f.Email = "" }, ErrEmailRequired},
		{"bad email", func(f *AdminForm) { f.Email = "rehber" }, ErrInvalidEmail},
		{"missing password", func(f *AdminForm) { f.Password = "" }, ErrPasswordRequired},
		{"weak password", func(f *AdminForm) { f.Password = "zayıf" }, ErrPasswordTooShort},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := valid
			tt.mutate(&form)
			if err := form.Validate(); err != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}

	if DefaultAdminForm().Email != "rehber@okul.edu.tr" {
		t.Error("Unexpected default email")
	}
}

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "settings.json"), nil)
	if err != nil {
		t.Fatalf("store.Open failed: %v", err)
	}
	return s
}

func TestWizardFlow(t *testing.T) {
	settings := openStore(t)
	bus := events.NewEventBus(10)
	defer bus.Close()
	completed := bus.Subscribe(events.EventSetupCompleted)

	var gotArgs map[string]any
	backend := transport.InvokerFunc(func(_ context.Context, command string, args map[string]any) (json.RawMessage, error) {
		if command != CreateAdminCommand {
			t.Errorf("Unexpected command %s", command)
		}
		gotArgs = args
		return json.RawMessage(`{"id":"1"}`), nil
	})

	w := NewWizard(settings, backend, bus, nil)
	if !w.Required() || w.Status().Step != StepWelcome {
		t.Fatalf("Expected wizard on welcome step, got %+v", w.Status())
	}

	form := AdminForm{Email: " rehber@okul.edu.tr ", Password: "Guvenli123", Name: "Ayşe", Surname: "Yılmaz"}
	if err := w.CreateAdmin(context.Background(), form); !errors.Is(err, ErrWrongStep) {
		t.Errorf("Expected ErrWrongStep before Begin, got %v", err)
	}

	if err := w.Begin(); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if err := w.CreateAdmin(context.Background(), form); err != nil {
		t.Fatalf("CreateAdmin failed: %v", err)
	}
	if gotArgs["email"] != "rehber@okul.edu.tr" || gotArgs["surname"] != "Yılmaz" {
		t.Errorf("Unexpected args %v", gotArgs)
	}

	if err := w.Complete(); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if w.Required() || !settings.FirstRunCompleted() {
		t.Error("Expected first run marked completed")
	}

	select {
	case ev := <-completed:
		if ev.(*events.SetupEvent).Email != "rehber@okul.edu.tr" {
			t.Errorf("Unexpected event %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("Expected setup:completed event")
	}

	if NewWizard(settings, backend, nil, nil).Status().Step != StepComplete {
		t.Error("Expected completed wizard to start on complete step")
	}
}

func TestWizardBackendError(t *testing.T) {
	settings := openStore(t)
	backend := transport.InvokerFunc(func(context.Context, string, map[string]any) (json.RawMessage, error) {
		return nil, errors.New("Bu e-posta zaten kayıtlı")
	})

	w := NewWizard(settings, backend, nil, nil)
	w.Begin()
	err := w.CreateAdmin(context.Background(), AdminForm{Email: "a@b.com", Password: "Guvenli123", Name: "A", Surname: "B"})
	if err == nil {
		t.Fatal("Expected error")
	}
	status := w.Status()
	if status.Step != StepAdmin || !strings.HasPrefix(status.Error, "Hesap oluşturma hatası: ") {
		t.Errorf("Unexpected status %+v", status)
	}
	if err := w.Complete(); !errors.Is(err, ErrWrongStep) {
		t.Errorf("Expected ErrWrongStep, got %v", err)
	}
}

func TestWizardWithoutBackend(t *testing.T) {
	w := NewWizard(openStore(t), nil, nil, nil)
	w.Begin()
	err := w.CreateAdmin(context.Background(), AdminForm{Email: "a@b.com", Password: "Guvenli123", Name: "A", Surname: "B"})
	if !transport.IsBridgeUnavailable(err) {
		t.Errorf("Expected bridge unavailable, got %v", err)
	}
}
