//go:build windows

package system

import (
	"errors"

	"golang.org/x/sys/windows"
)

// Коды ошибок Windows
const (
	errorNotReady = windows.Errno(0x15) // ERROR_NOT_READY
	errorDiskFull = windows.Errno(112)  // ERROR_DISK_FULL
)

func isPlatformDiskFull(err error) bool {
	return errors.Is(err, errorDiskFull) || errors.Is(err, windows.ERROR_HANDLE_DISK_FULL)
}

func isPlatformNotReady(err error) bool {
	return errors.Is(err, errorNotReady)
}
