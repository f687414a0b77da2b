package system

import (
	"errors"
	"os"
	"strings"
)

// ErrorKind классифицирует ошибки ввода-вывода для отчётов и итогов задания
type ErrorKind string

const (
	KindNone             ErrorKind = ""
	KindNotFound         ErrorKind = "NOT_FOUND"
	KindPermissionDenied ErrorKind = "PERMISSION_DENIED"
	KindDiskFull         ErrorKind = "DISK_FULL"
	KindDeviceNotReady   ErrorKind = "DEVICE_NOT_READY"
	KindIoFailure        ErrorKind = "IO_FAILURE"
)

// ClassifyError относит ошибку платформы к одному из известных видов.
// Отсутствие файла и отказ в доступе распознаются через errors.Is по всей
// цепочке обёрток, остальное через коды платформы и текстовые признаки.
func ClassifyError(err error) ErrorKind {
	if err == nil {
		return KindNone
	}

	switch {
	case errors.Is(err, os.ErrNotExist):
		return KindNotFound
	case errors.Is(err, os.ErrPermission):
		return KindPermissionDenied
	case IsDiskFullError(err):
		return KindDiskFull
	case IsDeviceNotReadyError(err):
		return KindDeviceNotReady
	default:
		return KindIoFailure
	}
}

// IsDiskFullError проверяет, является ли ошибка ошибкой "Недостаточно места на диске"
func IsDiskFullError(err error) bool {
	if err == nil {
		return false
	}

	if isPlatformDiskFull(err) {
		return true
	}

	// Дополнительная проверка по тексту ошибки
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "no space left on device") ||
		strings.Contains(msg, "not enough space") ||
		strings.Contains(msg, "disk full") ||
		strings.Contains(msg, "недостаточно места на диске")
}

// IsDeviceNotReadyError проверяет ошибку "Устройство не готово"
func IsDeviceNotReadyError(err error) bool {
	if err == nil {
		return false
	}

	if isPlatformNotReady(err) {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "device not ready") ||
		strings.Contains(msg, "not ready")
}
