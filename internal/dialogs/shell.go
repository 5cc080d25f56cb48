package dialogs

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/rehber360/rehber360-desktop/internal/logging"
)

// ErrUnsafeURL is returned by OpenExternal for schemes other than http, https and mailto.
var ErrUnsafeURL = errors.New("only http, https and mailto links can be opened")

// URLOpener opens a URL in the default browser. The desktop package passes
// the Wails runtime's BrowserOpenURL.
type URLOpener func(rawURL string)

// Runner starts an external program without waiting for it.
type Runner func(name string, args ...string) error

func startCommand(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// Shell opens URLs and files with the operating system's handlers.
type Shell struct {
	openURL URLOpener
	run     Runner
	goos    string
	logger  *logging.Logger
}

// NewShell creates a Shell. openURL may be nil, in which case URLs are
// opened with the platform file opener.
func NewShell(openURL URLOpener, logger *logging.Logger) *Shell {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Shell{openURL: openURL, run: startCommand, goos: runtime.GOOS, logger: logger}
}

// ValidateExternalURL checks that rawURL is an absolute http, https or mailto URL.
func ValidateExternalURL(rawURL string) error {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnsafeURL, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		if u.Host == "" {
			return fmt.Errorf("%w: missing host", ErrUnsafeURL)
		}
		return nil
	case "mailto":
		return nil
	default:
		return ErrUnsafeURL
	}
}

// OpenExternal opens rawURL in the default browser or mail client.
func (s *Shell) OpenExternal(rawURL string) error {
	if err := ValidateExternalURL(rawURL); err != nil {
		s.logger.Warn().Str("url", rawURL).Msg("Refused to open external URL")
		return err
	}
	if s.openURL != nil {
		s.openURL(rawURL)
	} else if err := s.run(s.opener(), s.openerArgs(rawURL)...); err != nil {
		return fmt.Errorf("failed to open URL: %w", err)
	}
	s.logger.Info().Str("url", rawURL).Msg("Opened external URL")
	return nil
}

// OpenPath opens a file or directory with its default application.
func (s *Shell) OpenPath(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}
	if err := s.run(s.opener(), s.openerArgs(path)...); err != nil {
		s.logger.Error().Err(err).Str("path", path).Msg("Open path failed")
		return fmt.Errorf("failed to open path: %w", err)
	}
	s.logger.Info().Str("path", path).Msg("Opened path")
	return nil
}

// ShowItemInFolder reveals path in the file manager, selecting it where the
// platform supports that.
func (s *Shell) ShowItemInFolder(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}

	var err error
	switch s.goos {
	case "windows":
		err = s.run("explorer.exe", "/select,"+path)
	case "darwin":
		err = s.run("open", "-R", path)
	default:
		err = s.run("xdg-open", filepath.Dir(path))
	}
	if err != nil {
		s.logger.Error().Err(err).Str("path", path).Msg("Show item in folder failed")
		return fmt.Errorf("failed to show item in folder: %w", err)
	}
	s.logger.Info().Str("path", path).Msg("Showed item in folder")
	return nil
}

func (s *Shell) opener() string {
	switch s.goos {
	case "windows":
		return "rundll32"
	case "darwin":
		return "open"
	default:
		return "xdg-open"
	}
}

func (s *Shell) openerArgs(target string) []string {
	if s.goos == "windows" {
		return []string{"url.dll,FileProtocolHandler", target}
	}
	return []string{target}
}
