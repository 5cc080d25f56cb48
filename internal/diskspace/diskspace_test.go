package diskspace

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func TestCheck(t *testing.T) {
	dir := t.TempDir()

	t.Run("SmallFile", func(t *testing.T) {
		if err := Check(dir, 1024, BackupMargin); err != nil {
			t.Errorf("Expected no error for small file, got: %v", err)
		}
	})

	t.Run("VeryLargeFile", func(t *testing.T) {
		// 100TB should exceed available space on most systems
		err := Check(dir, 100*1024*1024*1024*1024, BackupMargin)
		if err == nil {
			t.Log("Warning: 100TB check passed - system has extraordinary disk space")
		} else if !IsInsufficientSpaceError(err) {
			t.Errorf("Expected InsufficientSpaceError, got: %T", err)
		}
	})

	t.Run("UnknownVolume", func(t *testing.T) {
		if err := Check(filepath.Join(dir, "missing", "deeper"), 1<<62, 1); err != nil {
			t.Errorf("Expected unreadable volume to pass, got: %v", err)
		}
	})
}

func TestCheckFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "database.db")
	if err := os.WriteFile(src, make([]byte, 4096), 0600); err != nil {
		t.Fatal(err)
	}

	if err := CheckFile(src, filepath.Join(dir, "backups", "nested")); err != nil {
		t.Errorf("Expected room for a 4KB copy, got: %v", err)
	}
	if err := CheckFile(filepath.Join(dir, "missing.db"), dir); err == nil {
		t.Error("Expected error for missing source file")
	}
}

func TestInsufficientSpaceError(t *testing.T) {
	err := &InsufficientSpaceError{
		Path:           "/backups",
		RequiredBytes:  2 * 1024 * 1024,
		AvailableBytes: 1024 * 1024,
	}
	want := "insufficient disk space for /backups: need 2.00 MB, have 1.00 MB available"
	if err.Error() != want {
		t.Errorf("Expected %q, got %q", want, err.Error())
	}

	wrapped := fmt.Errorf("backup failed: %w", err)
	if !IsInsufficientSpaceError(wrapped) {
		t.Error("Expected wrapped error to be detected")
	}
	if IsInsufficientSpaceError(fmt.Errorf("other")) {
		t.Error("Expected plain error not to be detected")
	}
}
