// Package diskspace checks free space before the shell writes database copies.
package diskspace

import (
	"errors"
	"fmt"
	"path/filepath"
)

// BackupMargin is the headroom required on top of the database size.
const BackupMargin = 1.1

// InsufficientSpaceError indicates that there is not enough disk space available.
type InsufficientSpaceError struct {
	Path           string
	RequiredBytes  int64
	AvailableBytes int64
}

func (e *InsufficientSpaceError) Error() string {
	return fmt.Sprintf("insufficient disk space for %s: need %.2f MB, have %.2f MB available",
		e.Path, megabytes(e.RequiredBytes), megabytes(e.AvailableBytes))
}

func megabytes(n int64) float64 { return float64(n) / (1024 * 1024) }

// Check returns an *InsufficientSpaceError when the volume holding dir has
// less than required*margin bytes free. Volumes that cannot be queried pass.
func Check(dir string, required int64, margin float64) error {
	available, err := Available(dir)
	if err != nil || available == 0 {
		return nil
	}
	need := int64(float64(required) * margin)
	if available < need {
		return &InsufficientSpaceError{
			Path:           dir,
			RequiredBytes:  need,
			AvailableBytes: available,
		}
	}
	return nil
}

// CheckFile verifies there is room in dir for a copy of src.
func CheckFile(src, dir string) error {
	size, err := fileSize(src)
	if err != nil {
		return err
	}
	return Check(existingDir(dir), size, BackupMargin)
}

// IsInsufficientSpaceError reports whether err wraps an InsufficientSpaceError.
func IsInsufficientSpaceError(err error) bool {
	var target *InsufficientSpaceError
	return errors.As(err, &target)
}

// existingDir walks up from dir to the nearest directory that exists, so a
// backup folder that has not been created yet is measured on its volume.
func existingDir(dir string) string {
	for {
		if ok, _ := isDir(dir); ok {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
