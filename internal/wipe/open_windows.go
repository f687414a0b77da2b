//go:build windows

package wipe

import "syscall"

// syncOpenFlag возвращает флаг открытия, при котором каждая запись
// фиксируется на устройстве. На Windows O_SYNC транслируется
// в FILE_FLAG_WRITE_THROUGH.
func syncOpenFlag() int {
	return syscall.O_SYNC
}
