package desktop

import (
	"time"

	"github.com/rehber360/rehber360-desktop/internal/backup"
	"github.com/rehber360/rehber360-desktop/internal/config"
	"github.com/rehber360/rehber360-desktop/internal/dialogs"
)

// BackupStatusDTO summarizes the backup state for the settings page.
type BackupStatusDTO struct {
	Directory  string        `json:"directory"`
	LastBackup string        `json:"lastBackup,omitempty"`
	Backups    []backup.Info `json:"backups"`
	Remote     string        `json:"remote"`
}

// CreateBackup copies the database into the backup directory.
func (a *App) CreateBackup() (*backup.Info, error) {
	if a.engine == nil {
		return nil, ErrNoEngine
	}
	return a.engine.Backups().Create(a.bindingContext(), false)
}

// ListBackups returns backups newest first.
func (a *App) ListBackups() ([]backup.Info, error) {
	if a.engine == nil {
		return nil, ErrNoEngine
	}
	list, err := a.engine.Backups().List()
	if list == nil {
		list = []backup.Info{}
	}
	return list, err
}

// GetBackupStatus returns the backup directory, last run and file list.
func (a *App) GetBackupStatus() (BackupStatusDTO, error) {
	if a.engine == nil {
		return BackupStatusDTO{}, ErrNoEngine
	}
	m := a.engine.Backups()
	list, err := a.ListBackups()
	if err != nil {
		return BackupStatusDTO{}, err
	}
	dto := BackupStatusDTO{
		Directory: m.Directory(),
		Backups:   list,
		Remote:    a.engine.Config().RemoteBackup.Provider,
	}
	if last := m.LastBackup(); !last.IsZero() {
		dto.LastBackup = last.Format(time.RFC3339)
	}
	return dto, nil
}

// RestoreBackup replaces the database with the given backup file.
func (a *App) RestoreBackup(path string) error {
	if a.engine == nil {
		return ErrNoEngine
	}
	return a.engine.Backups().Restore(path)
}

// SelectAndRestoreBackup lets the user pick a backup file and restores it.
// Returns "" when cancelled.
func (a *App) SelectAndRestoreBackup() (string, error) {
	path, err := a.SelectFile(dialogs.OpenOptions{Title: "Yedek Dosyası Seç", Filters: dialogs.BackupFilters})
	if err != nil || path == "" {
		return "", err
	}
	if err := a.RestoreBackup(path); err != nil {
		return "", err
	}
	return path, nil
}

// DeleteBackup removes a backup by file name.
func (a *App) DeleteBackup(name string) error {
	if a.engine == nil {
		return ErrNoEngine
	}
	return a.engine.Backups().Delete(name)
}

// OpenBackupFolder opens the backup directory in the file manager.
func (a *App) OpenBackupFolder() error {
	if a.engine == nil {
		return ErrNoEngine
	}
	return a.engine.Shell().OpenPath(a.engine.Backups().Directory())
}

// DetectLegacyDatabases lists databases left by earlier desktop builds.
func (a *App) DetectLegacyDatabases() []backup.LegacyDatabase {
	found := backup.DetectLegacy(config.LegacyDatabaseCandidates())
	if found == nil {
		return []backup.LegacyDatabase{}
	}
	return found
}

// MigrateLegacyDatabase imports a legacy database into the current one.
func (a *App) MigrateLegacyDatabase(path string) (*backup.MigrationReport, error) {
	if a.engine == nil {
		return nil, ErrNoEngine
	}
	return a.engine.Migrator().Migrate(a.bindingContext(), path)
}
