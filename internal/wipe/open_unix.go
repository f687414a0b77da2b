//go:build linux || darwin

package wipe

import "golang.org/x/sys/unix"

// syncOpenFlag возвращает флаг открытия, при котором каждая запись
// фиксируется на устройстве, минуя буферизацию ОС.
func syncOpenFlag() int {
	return unix.O_DSYNC
}
