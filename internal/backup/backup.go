// Package backup creates, lists, prunes and restores copies of the local
// database, runs the scheduled auto-backup, and optionally mirrors backups
// off-site.
package backup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rehber360/rehber360-desktop/internal/diskspace"
	"github.com/rehber360/rehber360-desktop/internal/events"
	"github.com/rehber360/rehber360-desktop/internal/logging"
)

// File naming.
const (
	FilePrefix = "database-backup-"
	FileExt    = ".db"
	tempSuffix = ".temp"
)

// sqliteHeader is the magic string at the start of every SQLite 3 database.
var sqliteHeader = []byte("SQLite format 3\x00")

var (
	ErrBackupNotFound = errors.New("backup file not found")
	ErrNotDatabase    = errors.New("file is not a SQLite database")
	ErrNoDatabase     = errors.New("database file not found")
	ErrInvalidName    = errors.New("invalid backup name")
)

// Info describes a backup file.
type Info struct {
	Name string    `json:"name"`
	Path string    `json:"path"`
	Size int64     `json:"size"`
	Date time.Time `json:"date"`
}

// Manager manages database backups. Safe for concurrent use; create,
// restore and prune are serialized.
type Manager struct {
	dbPath string
	dir    string
	bus    *events.EventBus
	logger *logging.Logger

	mu     sync.Mutex
	remote Uploader
	last   time.Time
	now    func() time.Time
}

// NewManager creates a backup manager for dbPath writing into dir.
func NewManager(dbPath, dir string, bus *events.EventBus, logger *logging.Logger) *Manager {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Manager{
		dbPath: dbPath,
		dir:    dir,
		bus:    bus,
		logger: logger,
		now:    time.Now,
	}
}

// DatabasePath returns the live database path.
func (m *Manager) DatabasePath() string { return m.dbPath }

// Directory returns the backups directory.
func (m *Manager) Directory() string { return m.dir }

// SetRemote sets the off-site uploader. nil disables off-site copies.
func (m *Manager) SetRemote(u Uploader) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.remote = u
}

// FileName returns the backup file name for t: the ISO-8601 UTC timestamp
// with ':' and '.' replaced by '-'.
func FileName(t time.Time) string {
	stamp := t.UTC().Format("2006-01-02T15:04:05.000Z")
	stamp = strings.NewReplacer(":", "-", ".", "-").Replace(stamp)
	return FilePrefix + stamp + FileExt
}

// Create copies the database into the backups directory. auto marks
// scheduler-initiated backups in the published event.
func (m *Manager) Create(ctx context.Context, auto bool) (*Info, error) {
	m.mu.Lock()
	info, err := m.create()
	remote := m.remote
	m.mu.Unlock()

	if err != nil {
		m.logger.Error().Err(err).Msg("Database backup failed")
		m.bus.PublishBackup(events.EventBackupFailed, events.BackupEvent{Auto: auto, Error: err})
		return nil, err
	}

	m.logger.Info().Str("path", info.Path).Int64("size", info.Size).Msg("Database backup created")
	m.bus.PublishBackup(events.EventBackupCreated, events.BackupEvent{
		Name: info.Name, Path: info.Path, Size: info.Size, Auto: auto,
	})

	if remote != nil {
		if err := UploadWithRetry(ctx, remote, info.Path, m.logger); err != nil {
			// The local copy stands; report the off-site failure only.
			m.logger.Warn().Err(err).Str("provider", remote.Name()).Msg("Off-site backup copy failed")
			m.bus.PublishBackup(events.EventBackupFailed, events.BackupEvent{
				Name: info.Name, Path: info.Path, Auto: auto, Error: err,
			})
		}
	}
	return info, nil
}

func (m *Manager) create() (*Info, error) {
	if _, err := os.Stat(m.dbPath); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNoDatabase, m.dbPath)
	}
	if err := diskspace.CheckFile(m.dbPath, m.dir); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(m.dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}

	created := m.now()
	name := FileName(created)
	dest := filepath.Join(m.dir, name)
	if err := copyFile(m.dbPath, dest); err != nil {
		return nil, fmt.Errorf("failed to copy database: %w", err)
	}

	st, err := os.Stat(dest)
	if err != nil {
		return nil, fmt.Errorf("failed to stat backup: %w", err)
	}
	m.last = created
	return &Info{Name: name, Path: dest, Size: st.Size(), Date: st.ModTime()}, nil
}

// Restore replaces the database with the backup at path. The current database
// is kept as <db>.temp until the copy succeeds and is put back on failure.
func (m *Manager) Restore(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.restore(path); err != nil {
		m.logger.Error().Err(err).Str("path", path).Msg("Database restore failed")
		m.bus.PublishBackup(events.EventBackupFailed, events.BackupEvent{Path: path, Error: err})
		return err
	}

	m.logger.Info().Str("path", path).Msg("Database restored")
	m.bus.PublishBackup(events.EventBackupRestored, events.BackupEvent{Name: filepath.Base(path), Path: path})
	return nil
}

func (m *Manager) restore(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("%w: %s", ErrBackupNotFound, path)
	}
	if ok, err := IsSQLiteFile(path); err != nil {
		return err
	} else if !ok {
		return fmt.Errorf("%w: %s", ErrNotDatabase, path)
	}

	tempPath := m.dbPath + tempSuffix
	hadDatabase := true
	if err := copyFile(m.dbPath, tempPath); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to preserve current database: %w", err)
		}
		hadDatabase = false
	}

	if err := copyFile(path, m.dbPath); err != nil {
		if hadDatabase {
			if rbErr := copyFile(tempPath, m.dbPath); rbErr != nil {
				m.logger.Error().Err(rbErr).Str("temp", tempPath).Msg("Rollback failed, previous database kept at temp path")
				return fmt.Errorf("restore failed (%v) and rollback failed: %w", err, rbErr)
			}
			os.Remove(tempPath)
		}
		return fmt.Errorf("failed to restore database: %w", err)
	}

	if hadDatabase {
		os.Remove(tempPath)
	}
	return nil
}

// IsBackupName reports whether name is a file this package created.
func IsBackupName(name string) bool {
	return strings.HasPrefix(name, FilePrefix) && strings.HasSuffix(name, FileExt)
}

// List returns the backups newest first. Only files named by FileName count;
// other databases in the directory are left alone. A missing directory yields
// an empty list.
func (m *Manager) List() ([]Info, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Info{}, nil
		}
		return nil, fmt.Errorf("failed to list backups: %w", err)
	}

	backups := []Info{}
	for _, e := range entries {
		if e.IsDir() || !IsBackupName(e.Name()) {
			continue
		}
		st, err := e.Info()
		if err != nil {
			continue
		}
		backups = append(backups, Info{
			Name: e.Name(),
			Path: filepath.Join(m.dir, e.Name()),
			Size: st.Size(),
			Date: st.ModTime(),
		})
	}

	sort.SliceStable(backups, func(i, j int) bool {
		if backups[i].Date.Equal(backups[j].Date) {
			return backups[i].Name > backups[j].Name
		}
		return backups[i].Date.After(backups[j].Date)
	})
	return backups, nil
}

// LastBackup returns the time of the newest backup, or zero if there is none.
func (m *Manager) LastBackup() time.Time {
	m.mu.Lock()
	last := m.last
	m.mu.Unlock()
	if !last.IsZero() {
		return last
	}

	backups, err := m.List()
	if err != nil || len(backups) == 0 {
		return time.Time{}
	}
	return backups[0].Date
}

// Prune deletes all but the newest keep backups and returns the removed names.
func (m *Manager) Prune(keep int) ([]string, error) {
	if keep < 1 {
		keep = 1
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	backups, err := m.List()
	if err != nil {
		return nil, err
	}
	if len(backups) <= keep {
		return nil, nil
	}

	var removed []string
	for _, b := range backups[keep:] {
		if err := os.Remove(b.Path); err != nil {
			m.logger.Warn().Err(err).Str("path", b.Path).Msg("Failed to remove old backup")
			continue
		}
		removed = append(removed, b.Name)
	}
	if len(removed) > 0 {
		m.logger.Info().Int("removed", len(removed)).Int("kept", keep).Msg("Old backups pruned")
	}
	return removed, nil
}

// Delete removes a backup by file name.
func (m *Manager) Delete(name string) error {
	if name != filepath.Base(name) || !IsBackupName(name) {
		return fmt.Errorf("%w: %s", ErrInvalidName, name)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if err := os.Remove(filepath.Join(m.dir, name)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrBackupNotFound, name)
		}
		return fmt.Errorf("failed to delete backup: %w", err)
	}
	return nil
}

// IsSQLiteFile reports whether path starts with the SQLite 3 header.
func IsSQLiteFile(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	header := make([]byte, len(sqliteHeader))
	if _, err := io.ReadFull(f, header); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return false, nil
		}
		return false, err
	}
	return bytes.Equal(header, sqliteHeader), nil
}

// copyFile copies src to dst via a temporary file in dst's directory.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".copy-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, dst); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return nil
}
