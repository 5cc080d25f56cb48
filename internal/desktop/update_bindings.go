package desktop

import (
	"github.com/rehber360/rehber360-desktop/internal/updater"
)

// UpdateStatusDTO reports the updater state to the settings page.
type UpdateStatusDTO struct {
	Configured bool                 `json:"configured"`
	Last       *updater.CheckResult `json:"last,omitempty"`
	Downloaded string               `json:"downloaded,omitempty"`
}

// CheckForUpdates queries the release feed, bypassing the cache.
func (a *App) CheckForUpdates() (updater.CheckResult, error) {
	if a.engine == nil {
		return updater.CheckResult{}, ErrNoEngine
	}
	return a.engine.Updater().Check(a.bindingContext(), true), nil
}

// DownloadUpdate downloads the available installer. Progress arrives as
// update:downloadProgress events.
func (a *App) DownloadUpdate() (string, error) {
	if a.engine == nil {
		return "", ErrNoEngine
	}
	return a.engine.Updater().Download(a.bindingContext(), nil)
}

// QuitAndInstall runs the downloaded installer and exits.
func (a *App) QuitAndInstall() error {
	if a.engine == nil {
		return ErrNoEngine
	}
	return a.engine.Updater().QuitAndInstall()
}

// GetUpdateStatus returns the cached check result and download state.
func (a *App) GetUpdateStatus() UpdateStatusDTO {
	if a.engine == nil {
		return UpdateStatusDTO{}
	}
	u := a.engine.Updater()
	dto := UpdateStatusDTO{Configured: u.Configured(), Downloaded: u.Downloaded()}
	if last, ok := u.LastResult(); ok {
		dto.Last = &last
	}
	return dto
}
