// Package setup implements the first-run wizard that creates the initial
// administrator account.
package setup

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"

	"github.com/rehber360/rehber360-desktop/internal/events"
	"github.com/rehber360/rehber360-desktop/internal/logging"
	"github.com/rehber360/rehber360-desktop/internal/store"
	"github.com/rehber360/rehber360-desktop/internal/transport"
)

// Step is a wizard page.
type Step string

const (
	StepWelcome  Step = "welcome"
	StepAdmin    Step = "admin"
	StepComplete Step = "complete"
)

// CreateAdminCommand is the backend command that creates the first user.
const CreateAdminCommand = "create_initial_admin"

// DefaultAdminEmail is prefilled in the admin form.
const DefaultAdminEmail = "rehber@okul.edu.tr"

// Form validation errors. The Turkish messages are shown to the user as-is.
var (
	ErrPasswordTooShort = errors.New("En az 8 karakter gerekli")
	ErrPasswordNoUpper  = errors.New("En az bir büyük harf gerekli")
	ErrPasswordNoLower  = errors.New("En az bir küçük harf gerekli")
	ErrPasswordNoDigit  = errors.New("En az bir rakam gerekli")
	ErrNameRequired     = errors.New("Ad gerekli")
	ErrSurnameRequired  = errors.New("Soyad gerekli")
	ErrEmailRequired    = errors.New("E-posta gerekli")
	ErrInvalidEmail     = errors.New("Geçerli bir e-posta adresi girin")
	ErrPasswordRequired = errors.New("Şifre gerekli")
	ErrWrongStep        = errors.New("wizard is not on the expected step")
	ErrBackendNotReady  = errors.New("backend is not available")
)

const adminCreateFailed = "Hesap oluşturma hatası: "

// ValidatePassword checks the password rules in order and returns the first violation.
func ValidatePassword(pwd string) error {
	if len([]rune(pwd)) < 8 {
		return ErrPasswordTooShort
	}
	var upper, lower, digit bool
	for _, r := range pwd {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		}
	}
	if !upper {
		return ErrPasswordNoUpper
	}
	if !lower {
		return ErrPasswordNoLower
	}
	if !digit {
		return ErrPasswordNoDigit
	}
	return nil
}

// AdminForm is the administrator account entered in the wizard.
type AdminForm struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Surname  string `json:"surname"`
}

// DefaultAdminForm returns the form with its prefilled email.
func DefaultAdminForm() AdminForm {
	return AdminForm{Email: DefaultAdminEmail}
}

// Validate returns the first invalid field.
func (f AdminForm) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return ErrNameRequired
	}
	if strings.TrimSpace(f.Surname) == "" {
		return ErrSurnameRequired
	}
	email := strings.TrimSpace(f.Email)
	if email == "" {
		return ErrEmailRequired
	}
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return ErrInvalidEmail
	}
	if f.Password == "" {
		return ErrPasswordRequired
	}
	return ValidatePassword(f.Password)
}

func (f AdminForm) args() map[string]any {
	return map[string]any{
		"email":    strings.TrimSpace(f.Email),
		"password": f.Password,
		"name":     strings.TrimSpace(f.Name),
		"surname":  strings.TrimSpace(f.Surname),
	}
}

// Status is the wizard state shown by the renderer.
type Status struct {
	Step       Step   `json:"step"`
	Completed  bool   `json:"completed"`
	AdminEmail string `json:"adminEmail,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Wizard drives the welcome → admin → complete flow.
type Wizard struct {
	settings *store.Store
	backend  transport.Invoker
	bus      *events.EventBus
	logger   *logging.Logger

	mu         sync.Mutex
	step       Step
	adminEmail string
	lastErr    string
}

// NewWizard creates a wizard. A store that already records a completed
// first run starts on the complete step.
func NewWizard(settings *store.Store, backend transport.Invoker, bus *events.EventBus, logger *logging.Logger) *Wizard {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	step := StepWelcome
	if settings.FirstRunCompleted() {
		step = StepComplete
	}
	return &Wizard{settings: settings, backend: backend, bus: bus, logger: logger, step: step}
}

// Required reports whether the wizard still has to run.
func (w *Wizard) Required() bool {
	return !w.settings.FirstRunCompleted()
}

// Status returns the current wizard state.
func (w *Wizard) Status() Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Status{
		Step:       w.step,
		Completed:  w.settings.FirstRunCompleted(),
		AdminEmail: w.adminEmail,
		Error:      w.lastErr,
	}
}

// Begin moves from the welcome page to the admin form.
func (w *Wizard) Begin() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step != StepWelcome {
		return fmt.Errorf("%w: at %s", ErrWrongStep, w.step)
	}
	w.step = StepAdmin
	w.lastErr = ""
	return nil
}

// CreateAdmin validates the form and creates the administrator through the
// backend. On success the wizard moves to the complete step.
func (w *Wizard) CreateAdmin(ctx context.Context, form AdminForm) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.step != StepAdmin {
		return fmt.Errorf("%w: at %s", ErrWrongStep, w.step)
	}
	if err := form.Validate(); err != nil {
		w.lastErr = err.Error()
		return err
	}
	if w.backend == nil {
		w.lastErr = adminCreateFailed + ErrBackendNotReady.Error()
		return transport.NormalizeError(CreateAdminCommand, transport.ErrBridgeUnavailable)
	}

	if _, err := w.backend.Invoke(ctx, CreateAdminCommand, form.args()); err != nil {
		te := transport.NormalizeError(CreateAdminCommand, err)
		w.lastErr = adminCreateFailed + transport.UserMessage(te)
		w.logger.Warn().Err(err).Msg("Initial admin creation failed")
		return te
	}

	w.step = StepComplete
	w.adminEmail = strings.TrimSpace(form.Email)
	w.lastErr = ""
	w.logger.Info().Str("email", w.adminEmail).Msg("Initial admin account created")
	return nil
}

// Complete persists the first-run flag and announces completion.
func (w *Wizard) Complete() error {
	w.mu.Lock()
	step, email := w.step, w.adminEmail
	w.mu.Unlock()

	if step != StepComplete {
		return fmt.Errorf("%w: at %s", ErrWrongStep, step)
	}
	if w.settings.FirstRunCompleted() {
		return nil
	}
	if err := w.settings.MarkFirstRunCompleted(); err != nil {
		return fmt.Errorf("failed to save first-run flag: %w", err)
	}
	w.bus.PublishSetupCompleted(email)
	w.logger.Info().Msg("First-run setup completed")
	return nil
}
