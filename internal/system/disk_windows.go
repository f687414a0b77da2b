//go:build windows

package system

import (
	"fmt"

	"golang.org/x/sys/windows"
)

// diskSpace возвращает свободное и общее место диска в байтах через GetDiskFreeSpaceEx
func diskSpace(path string) (free, total uint64, err error) {
	var freeBytesAvailable, totalBytes, freeBytes uint64

	pathPtr, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return 0, 0, fmt.Errorf("некорректный путь %s: %w", path, err)
	}

	if err := windows.GetDiskFreeSpaceEx(pathPtr, &freeBytesAvailable, &totalBytes, &freeBytes); err != nil {
		return 0, 0, fmt.Errorf("GetDiskFreeSpaceEx %s: %w", path, err)
	}

	return freeBytesAvailable, totalBytes, nil
}
