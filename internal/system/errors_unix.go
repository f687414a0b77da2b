//go:build linux || darwin

package system

import (
	"errors"

	"golang.org/x/sys/unix"
)

func isPlatformDiskFull(err error) bool {
	return errors.Is(err, unix.ENOSPC) || errors.Is(err, unix.EDQUOT)
}

func isPlatformNotReady(err error) bool {
	return errors.Is(err, unix.ENXIO) || errors.Is(err, unix.ENODEV)
}
