package wipe

import (
	"io"
	"os"
	"sync"
	"time"
)

// ThrottledWriter ограничивает скорость записи в файл (thread-safe).
// При maxSpeedMBps <= 0 запись идёт без ограничения.
type ThrottledWriter struct {
	file         *os.File
	maxSpeedMBps float64
	lastWrite    time.Time
	mu           sync.Mutex
	closed       bool
}

// NewThrottledWriter создает новый throttled writer поверх открытого файла
func NewThrottledWriter(file *os.File, maxSpeedMBps float64) *ThrottledWriter {
	return &ThrottledWriter{
		file:         file,
		maxSpeedMBps: maxSpeedMBps,
		lastWrite:    time.Now(),
	}
}

// Write записывает данные с ограничением скорости
func (tw *ThrottledWriter) Write(data []byte) (int, error) {
	if len(data) == 0 {
		return 0, nil
	}

	tw.mu.Lock()
	defer tw.mu.Unlock()

	if tw.closed {
		return 0, io.ErrClosedPipe
	}

	if tw.maxSpeedMBps > 0 {
		bytesPerSec := tw.maxSpeedMBps * 1024 * 1024
		expected := time.Duration(float64(len(data)) / bytesPerSec * float64(time.Second))
		actual := time.Since(tw.lastWrite)
		if actual < expected {
			time.Sleep(expected - actual)
		}
	}

	n, err := tw.file.Write(data)
	tw.lastWrite = time.Now()
	return n, err
}

// Sync сбрасывает данные на диск
func (tw *ThrottledWriter) Sync() error {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if tw.closed {
		return io.ErrClosedPipe
	}

	return tw.file.Sync()
}

// Close закрывает файл. Повторный вызов безопасен.
func (tw *ThrottledWriter) Close() error {
	tw.mu.Lock()
	defer tw.mu.Unlock()

	if tw.closed {
		return nil
	}

	tw.closed = true
	return tw.file.Close()
}
