package desktop

import (
	"github.com/rehber360/rehber360-desktop/internal/setup"
)

// GetSetupStatus returns the first-run wizard state.
func (a *App) GetSetupStatus() (setup.Status, error) {
	if a.engine == nil {
		return setup.Status{}, ErrNoEngine
	}
	return a.engine.Wizard().Status(), nil
}

// BeginSetup moves the wizard from the welcome page to the admin form.
func (a *App) BeginSetup() error {
	if a.engine == nil {
		return ErrNoEngine
	}
	return a.engine.Wizard().Begin()
}

// DefaultAdminForm returns the admin form with its prefilled values.
func (a *App) DefaultAdminForm() setup.AdminForm {
	return setup.DefaultAdminForm()
}

// CreateAdmin validates the form and creates the first user.
func (a *App) CreateAdmin(form setup.AdminForm) error {
	if a.engine == nil {
		return ErrNoEngine
	}
	return a.engine.Wizard().CreateAdmin(a.bindingContext(), form)
}

// CompleteSetup finishes the wizard and shows the main window.
func (a *App) CompleteSetup() error {
	if a.engine == nil {
		return ErrNoEngine
	}
	if err := a.engine.Wizard().Complete(); err != nil {
		return err
	}
	if a.window != nil {
		a.window.Show()
	}
	return nil
}
