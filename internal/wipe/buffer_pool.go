package wipe

import (
	"crypto/rand"
	"fmt"
	"sync"
)

// BufferPool управляет пулом буферов перезаписи для снижения аллокаций
type BufferPool struct {
	pools map[int]*sync.Pool
	mu    sync.RWMutex
}

var globalBufferPool = &BufferPool{
	pools: make(map[int]*sync.Pool),
}

// GetBuffer получает буфер из пула или создает новый
func GetBuffer(size int) []byte {
	if size <= 0 {
		return nil
	}

	return globalBufferPool.getBuffer(size)
}

// PutBuffer возвращает буфер в пул
func PutBuffer(buf []byte) {
	if len(buf) == 0 {
		return
	}

	globalBufferPool.putBuffer(buf)
}

// getBuffer получает буфер нужного размера
func (bp *BufferPool) getBuffer(size int) []byte {
	poolSize := bp.getPoolSize(size)

	bp.mu.RLock()
	pool, exists := bp.pools[poolSize]
	bp.mu.RUnlock()

	if !exists {
		bp.mu.Lock()
		// Double-check
		pool, exists = bp.pools[poolSize]
		if !exists {
			pool = &sync.Pool{
				New: func() interface{} {
					return make([]byte, poolSize)
				},
			}
			bp.pools[poolSize] = pool
		}
		bp.mu.Unlock()
	}

	buf := pool.Get().([]byte)
	return buf[:size]
}

// putBuffer возвращает буфер в соответствующий пул
func (bp *BufferPool) putBuffer(buf []byte) {
	capacity := cap(buf)
	poolSize := bp.getPoolSize(capacity)

	bp.mu.RLock()
	pool, exists := bp.pools[poolSize]
	bp.mu.RUnlock()

	if exists {
		// Сбрасываем содержимое перед возвращением в пул
		full := buf[:capacity]
		for i := range full {
			full[i] = 0
		}
		pool.Put(full)
	}
}

// getPoolSize определяет класс размера для буфера
func (bp *BufferPool) getPoolSize(size int) int {
	// Стандартный чанк затирания - 8KB, остальные классы на вырост
	sizes := []int{1024, 4096, 8192, 16384, 65536, 262144, 1048576}

	for _, poolSize := range sizes {
		if size <= poolSize {
			return poolSize
		}
	}

	// Если размер больше максимального, округляем до 4KB
	return ((size + 4095) / 4096) * 4096
}

// FillBufferPattern заполняет буфер одним байтом
func FillBufferPattern(buf []byte, pattern byte) {
	for i := range buf {
		buf[i] = pattern
	}
}

// FillRandom заполняет буфер криптографически стойкими случайными данными
func FillRandom(buf []byte) error {
	if len(buf) == 0 {
		return nil
	}

	if _, err := rand.Read(buf); err != nil {
		return fmt.Errorf("ошибка генерации случайных данных: %w", err)
	}

	return nil
}
