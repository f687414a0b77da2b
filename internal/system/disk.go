package system

import (
	"fmt"
	"os"
	"path/filepath"
)

// DiskInfo информация о файловой системе, содержащей путь
type DiskInfo struct {
	Path       string
	TotalSize  uint64
	FreeSize   uint64
	UsedSize   uint64
	IsWritable bool
}

// GetDiskInfoForPath возвращает информацию о файловой системе по пути.
// Для файла берётся содержащая его директория.
func GetDiskInfoForPath(path string) (*DiskInfo, error) {
	abs, err := filepath.Abs(os.ExpandEnv(path))
	if err != nil {
		return nil, fmt.Errorf("некорректный путь %s: %w", path, err)
	}

	dir := abs
	if info, err := os.Stat(abs); err == nil && !info.IsDir() {
		dir = filepath.Dir(abs)
	}

	free, total, err := diskSpace(dir)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения информации о диске: %w", err)
	}

	return &DiskInfo{
		Path:       dir,
		TotalSize:  total,
		FreeSize:   free,
		UsedSize:   total - free,
		IsWritable: CheckWriteAccess(dir),
	}, nil
}
