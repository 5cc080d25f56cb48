//go:build windows

package desktop

import (
	"errors"

	"golang.org/x/sys/windows"
)

const mutexName = "Rehber360Desktop_SingleInstance"

// singleInstanceMutex holds the mutex handle (kept alive for process lifetime)
var singleInstanceMutex windows.Handle

// EnsureSingleInstance checks if another instance is already running.
// Returns true if this is the first instance.
func EnsureSingleInstance() bool {
	name, err := windows.UTF16PtrFromString(mutexName)
	if err != nil {
		return true
	}

	handle, err := windows.CreateMutex(nil, false, name)
	if handle == 0 {
		return false
	}
	if errors.Is(err, windows.ERROR_ALREADY_EXISTS) {
		windows.CloseHandle(handle)
		return false
	}

	singleInstanceMutex = handle
	return true
}
