// Package dialogs implements native file dialogs and shell integration
// (open URL, open file, reveal in folder) for the renderer.
package dialogs

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rehber360/rehber360-desktop/internal/logging"
)

// ErrFileNotFound is returned by ReadFile for a missing path.
var ErrFileNotFound = errors.New("file not found")

// FileFilter restricts a dialog to a set of extensions.
type FileFilter struct {
	Name       string   `json:"name"`
	Extensions []string `json:"extensions"`
}

// OpenOptions configures an open dialog.
type OpenOptions struct {
	Title   string       `json:"title,omitempty"`
	Filters []FileFilter `json:"filters,omitempty"`
}

// SaveOptions configures a save dialog.
type SaveOptions struct {
	Title       string       `json:"title,omitempty"`
	DefaultPath string       `json:"defaultPath,omitempty"`
	Filters     []FileFilter `json:"filters,omitempty"`
}

// Platform shows native dialogs. An empty result means the user cancelled.
// The desktop package implements it over the Wails runtime.
type Platform interface {
	OpenFile(opts OpenOptions) (string, error)
	OpenMultipleFiles(opts OpenOptions) ([]string, error)
	OpenDirectory(title string) (string, error)
	SaveFile(opts SaveOptions) (string, error)
}

// Default filters.
var (
	ExcelFilters = []FileFilter{
		{Name: "Excel Files", Extensions: []string{"xlsx", "xls"}},
		{Name: "All Files", Extensions: []string{"*"}},
	}
	AllFilters = []FileFilter{
		{Name: "All Files", Extensions: []string{"*"}},
	}
	SaveFilters = []FileFilter{
		{Name: "PDF Files", Extensions: []string{"pdf"}},
		{Name: "Excel Files", Extensions: []string{"xlsx"}},
		{Name: "CSV Files", Extensions: []string{"csv"}},
		{Name: "All Files", Extensions: []string{"*"}},
	}
	BackupFilters = []FileFilter{
		{Name: "Veritabanı Yedeği", Extensions: []string{"db"}},
	}
)

// Service wraps a Platform with default titles and filters.
type Service struct {
	platform Platform
	logger   *logging.Logger
}

// NewService creates a dialog service.
func NewService(platform Platform, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Service{platform: platform, logger: logger}
}

// SelectFile shows a single-file open dialog. Returns "" when cancelled.
func (s *Service) SelectFile(opts OpenOptions) (string, error) {
	if opts.Title == "" {
		opts.Title = "Dosya Seç"
	}
	if len(opts.Filters) == 0 {
		opts.Filters = ExcelFilters
	}
	path, err := s.platform.OpenFile(opts)
	if err != nil {
		s.logger.Error().Err(err).Msg("File selection failed")
		return "", err
	}
	return path, nil
}

// SelectMultipleFiles shows a multi-select open dialog. Returns an empty
// slice when cancelled.
func (s *Service) SelectMultipleFiles(opts OpenOptions) ([]string, error) {
	if opts.Title == "" {
		opts.Title = "Dosyalar Seç"
	}
	if len(opts.Filters) == 0 {
		opts.Filters = AllFilters
	}
	paths, err := s.platform.OpenMultipleFiles(opts)
	if err != nil {
		s.logger.Error().Err(err).Msg("Multiple file selection failed")
		return nil, err
	}
	if paths == nil {
		paths = []string{}
	}
	return paths, nil
}

// SelectDirectory shows a directory dialog. Returns "" when cancelled.
func (s *Service) SelectDirectory(title string) (string, error) {
	if title == "" {
		title = "Klasör Seç"
	}
	path, err := s.platform.OpenDirectory(title)
	if err != nil {
		s.logger.Error().Err(err).Msg("Directory selection failed")
		return "", err
	}
	return path, nil
}

// SelectSavePath shows a save dialog. Returns "" when cancelled.
func (s *Service) SelectSavePath(opts SaveOptions) (string, error) {
	if opts.Title == "" {
		opts.Title = "Dosyayı Kaydet"
	}
	if len(opts.Filters) == 0 {
		opts.Filters = SaveFilters
	}
	return s.platform.SaveFile(opts)
}

// SaveFile asks for a destination and writes data there. data may be a
// string, []byte, or any JSON-encodable value. Returns "" when cancelled.
func (s *Service) SaveFile(data any, opts SaveOptions) (string, error) {
	path, err := s.SelectSavePath(opts)
	if err != nil {
		s.logger.Error().Err(err).Msg("File save failed")
		return "", err
	}
	if path == "" {
		return "", nil
	}
	if err := WriteData(path, data); err != nil {
		s.logger.Error().Err(err).Str("path", path).Msg("File save failed")
		return "", err
	}
	s.logger.Info().Str("path", path).Msg("File saved")
	return path, nil
}

// WriteData writes data to path, encoding non-byte values as JSON.
func WriteData(path string, data any) error {
	var b []byte
	switch v := data.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	case json.RawMessage:
		b = v
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode file data: %w", err)
		}
		b = encoded
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, b, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// ReadFile returns the contents of path.
func ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}
