package desktop

import (
	"github.com/rehber360/rehber360-desktop/internal/store"
)

// GetSettings returns the persisted shell settings.
func (a *App) GetSettings() (store.StoreSchema, error) {
	if a.engine == nil {
		return store.StoreSchema{}, ErrNoEngine
	}
	return a.engine.Settings().Get(), nil
}

// SaveSettings validates and replaces the persisted settings.
func (a *App) SaveSettings(settings store.StoreSchema) error {
	if a.engine == nil {
		return ErrNoEngine
	}
	if err := a.engine.Settings().Replace(settings); err != nil {
		a.logger.Warn().Err(err).Msg("Settings rejected")
		return err
	}
	return nil
}

// SetTheme stores the UI theme (light, dark or system).
func (a *App) SetTheme(theme string) error {
	if a.engine == nil {
		return ErrNoEngine
	}
	return a.engine.Settings().SetTheme(theme)
}

// AddLastOpenedPage records a visited route for the tray quick access list.
func (a *App) AddLastOpenedPage(path string) error {
	if a.engine == nil {
		return ErrNoEngine
	}
	return a.engine.Settings().AddLastOpenedPage(path)
}
