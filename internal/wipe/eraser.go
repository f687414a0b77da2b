package wipe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"wipefile_enterprise/internal/logging"
)

// DefaultChunkSize размер чанка перезаписи
const DefaultChunkSize = 8 * 1024

// ErrCancelled возвращается при кооперативной отмене. Отмена - не сбой:
// файл остаётся на диске в частично перезаписанном виде и не удаляется.
var ErrCancelled = errors.New("операция отменена")

// PassProgress прогресс перезаписи одного файла
type PassProgress struct {
	Path      string
	Pass      int
	PassCount int
	PassBytes uint64
	FileSize  uint64
}

// PassProgressFunc вызывается синхронно после записи каждого чанка
type PassProgressFunc func(PassProgress)

// FileEraser выполняет многопроходное затирание отдельных файлов
type FileEraser struct {
	logger       *logging.EnterpriseLogger
	chunkSize    int
	maxSpeedMBps float64
}

// NewFileEraser создает eraser. chunkSize <= 0 означает DefaultChunkSize,
// maxSpeedMBps <= 0 - запись без ограничения скорости.
func NewFileEraser(logger *logging.EnterpriseLogger, chunkSize int, maxSpeedMBps float64) *FileEraser {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &FileEraser{
		logger:       logger,
		chunkSize:    chunkSize,
		maxSpeedMBps: maxSpeedMBps,
	}
}

// EraseFile перезаписывает файл всеми проходами метода и удаляет его.
// Возвращает количество записанных байт. Отсутствующий файл - не ошибка
// (идемпотентность), пустой файл удаляется без проходов. Файл удаляется
// только после успешного завершения ВСЕХ проходов; при ошибке или отмене
// он остаётся на диске.
func (fe *FileEraser) EraseFile(ctx context.Context, path string, method ErasureMethod, onProgress PassProgressFunc) (uint64, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("ошибка доступа к файлу %s: %w", path, err)
	}

	if info.IsDir() {
		return 0, fmt.Errorf("путь %s является директорией, а не файлом", path)
	}

	size := uint64(info.Size())

	// Пустой файл: перезаписывать нечего, достаточно удалить
	if size == 0 {
		if err := os.Remove(path); err != nil {
			return 0, fmt.Errorf("ошибка удаления пустого файла %s: %w", path, err)
		}
		fe.logger.Log("DEBUG", "Пустой файл удалён без перезаписи", "path", path)
		return 0, nil
	}

	file, err := os.OpenFile(path, os.O_RDWR|syncOpenFlag(), 0)
	if err != nil {
		return 0, fmt.Errorf("ошибка открытия файла %s: %w", path, err)
	}

	tw := NewThrottledWriter(file, fe.maxSpeedMBps)

	written, err := fe.overwrite(ctx, path, file, tw, size, method, onProgress)
	if err != nil {
		if closeErr := tw.Close(); closeErr != nil {
			fe.logger.Log("WARN", "Ошибка закрытия файла", "file", path, "error", closeErr.Error())
		}
		return written, err
	}

	// Дескриптор закрывается до удаления, иначе Windows не отдаст файл
	if err := tw.Close(); err != nil {
		return written, fmt.Errorf("ошибка закрытия файла %s: %w", path, err)
	}

	if err := os.Remove(path); err != nil {
		return written, fmt.Errorf("ошибка удаления файла %s: %w", path, err)
	}

	fe.logger.Log("DEBUG", "Файл затёрт и удалён", "path", path, "bytes", written, "passes", method.PassCount())
	return written, nil
}

// overwrite выполняет все проходы метода поверх открытого файла.
// Каждый проход начинается с начала файла и завершается sync, чтобы
// следующий проход не начался до фиксации предыдущего на устройстве.
func (fe *FileEraser) overwrite(ctx context.Context, path string, file *os.File, tw *ThrottledWriter, size uint64, method ErasureMethod, onProgress PassProgressFunc) (uint64, error) {
	passes := method.PassCount()

	buf := GetBuffer(fe.chunkSize)
	defer PutBuffer(buf)

	var total uint64

	for pass := 0; pass < passes; pass++ {
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			return total, fmt.Errorf("ошибка позиционирования (проход %d/%d): %w", pass+1, passes, err)
		}

		var written uint64
		for written < size {
			// Отмена проверяется между чанками
			select {
			case <-ctx.Done():
				return total, ErrCancelled
			default:
			}

			remaining := size - written
			toWrite := fe.chunkSize
			if remaining < uint64(toWrite) {
				toWrite = int(remaining)
			}

			b := buf[:toWrite]
			if err := method.Fill(pass, b); err != nil {
				return total, fmt.Errorf("ошибка генерации паттерна: %w", err)
			}

			off := 0
			for off < toWrite {
				n, err := tw.Write(b[off:])
				if n > 0 {
					off += n
					written += uint64(n)
					total += uint64(n)
				}
				if err != nil {
					return total, fmt.Errorf("ошибка записи: %w", err)
				}
				if n == 0 {
					return total, fmt.Errorf("запись вернула 0 байт без ошибки")
				}
			}

			if onProgress != nil {
				onProgress(PassProgress{
					Path:      path,
					Pass:      pass,
					PassCount: passes,
					PassBytes: written,
					FileSize:  size,
				})
			}
		}

		// Проход зафиксирован на диске до начала следующего
		if err := tw.Sync(); err != nil {
			return total, fmt.Errorf("ошибка синхронизации (проход %d/%d): %w", pass+1, passes, err)
		}
	}

	return total, nil
}
