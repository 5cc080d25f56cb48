package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rehber360/rehber360-desktop/internal/transport"
)

// MigrateCommand is the backend command that imports a legacy database.
const MigrateCommand = "migrate_from_electron"

// LegacyDatabase is a database left by an earlier desktop build.
type LegacyDatabase struct {
	Path    string    `json:"path"`
	Size    int64     `json:"size"`
	ModTime time.Time `json:"modTime"`
	Valid   bool      `json:"valid"`
	Reason  string    `json:"reason,omitempty"`
}

// MigrationReport is the outcome of a legacy import.
type MigrationReport struct {
	Success                    bool     `json:"success"`
	Copied                     bool     `json:"copied"`
	PreMigrationBackup         string   `json:"pre_migration_backup,omitempty"`
	StudentsMigrated           int      `json:"students_migrated"`
	CounselingSessionsMigrated int      `json:"counseling_sessions_migrated"`
	AcademicRecordsMigrated    int      `json:"academic_records_migrated"`
	BehaviorRecordsMigrated    int      `json:"behavior_records_migrated"`
	DocumentsMigrated          int      `json:"documents_migrated"`
	SettingsMigrated           int      `json:"settings_migrated"`
	Errors                     []string `json:"errors"`
	Warnings                   []string `json:"warnings"`
}

// DetectLegacy inspects each candidate path and returns the ones that exist,
// in order, marking whether each is a usable SQLite database.
func DetectLegacy(candidates []string) []LegacyDatabase {
	var found []LegacyDatabase
	for _, p := range candidates {
		st, err := os.Stat(p)
		if err != nil || st.IsDir() {
			continue
		}

		db := LegacyDatabase{Path: p, Size: st.Size(), ModTime: st.ModTime()}
		ok, err := IsSQLiteFile(p)
		switch {
		case err != nil:
			db.Reason = err.Error()
		case !ok:
			db.Reason = "SQLite başlığı bulunamadı"
		case st.Size() == 0:
			db.Reason = "dosya boş"
		default:
			db.Valid = true
		}
		found = append(found, db)
	}
	return found
}

// FirstValidLegacy returns the first usable legacy database among candidates.
func FirstValidLegacy(candidates []string) (LegacyDatabase, bool) {
	for _, db := range DetectLegacy(candidates) {
		if db.Valid {
			return db, true
		}
	}
	return LegacyDatabase{}, false
}

// Migrator imports a legacy database into the current one.
type Migrator struct {
	manager *Manager
	backend transport.Invoker
}

// NewMigrator creates a migrator. backend may be nil, in which case only the
// copy path (no current database) is available.
func NewMigrator(manager *Manager, backend transport.Invoker) *Migrator {
	return &Migrator{manager: manager, backend: backend}
}

// Migrate imports legacyPath. With no current database the legacy file is
// copied into place. Otherwise the current database is backed up first and
// the backend merges the legacy records.
func (g *Migrator) Migrate(ctx context.Context, legacyPath string) (*MigrationReport, error) {
	ok, err := IsSQLiteFile(legacyPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrBackupNotFound, legacyPath)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotDatabase, legacyPath)
	}

	logger := g.manager.logger
	report := &MigrationReport{Errors: []string{}, Warnings: []string{}}

	if _, err := os.Stat(g.manager.dbPath); os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(g.manager.dbPath), 0700); err != nil {
			return nil, err
		}
		if err := copyFile(legacyPath, g.manager.dbPath); err != nil {
			return nil, fmt.Errorf("failed to copy legacy database: %w", err)
		}
		report.Success = true
		report.Copied = true
		logger.Info().Str("from", legacyPath).Str("to", g.manager.dbPath).Msg("Legacy database copied into place")
		return report, nil
	}

	if g.backend == nil {
		return nil, transport.ErrBridgeUnavailable
	}

	info, err := g.manager.Create(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("failed to back up current database before migration: %w", err)
	}

	raw, err := g.backend.Invoke(ctx, MigrateCommand, map[string]any{"old_db_path": legacyPath})
	if err != nil {
		return nil, transport.NormalizeError(MigrateCommand, err)
	}
	if err := json.Unmarshal(raw, report); err != nil {
		return nil, fmt.Errorf("failed to decode migration report: %w", err)
	}
	report.PreMigrationBackup = info.Path
	if report.Errors == nil {
		report.Errors = []string{}
	}
	if report.Warnings == nil {
		report.Warnings = []string{}
	}

	logger.Info().
		Bool("success", report.Success).
		Int("students", report.StudentsMigrated).
		Int("errors", len(report.Errors)).
		Msg("Legacy database migration finished")
	return report, nil
}
