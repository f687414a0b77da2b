//go:build linux || darwin

package system

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// diskSpace возвращает свободное и общее место файловой системы в байтах
func diskSpace(path string) (free, total uint64, err error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, 0, fmt.Errorf("statfs %s: %w", path, err)
	}

	if stat.Bsize <= 0 {
		return 0, 0, fmt.Errorf("statfs %s: некорректный размер блока %d", path, stat.Bsize)
	}

	bsize := uint64(stat.Bsize)
	// Bavail - место, доступное непривилегированному пользователю
	return stat.Bavail * bsize, stat.Blocks * bsize, nil
}
