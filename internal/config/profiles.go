package config

import (
	"fmt"
)

// ApplyProfile применяет профиль затирания к конфигурации
func ApplyProfile(cfg *Config, profile string) error {
	switch profile {
	case "quick":
		cfg.Erase.Method = "simple"
		cfg.Erase.ChunkSize = 256 * 1024 // 256KB
		cfg.Erase.MaxSpeedMBps = 0       // unlimited
	case "standard":
		cfg.Erase.Method = "dod3"
		cfg.Erase.ChunkSize = 8 * 1024 // 8KB
		cfg.Erase.MaxSpeedMBps = 0
	case "dod":
		cfg.Erase.Method = "dod7"
		cfg.Erase.ChunkSize = 8 * 1024
		cfg.Erase.MaxSpeedMBps = 0
	case "paranoid":
		cfg.Erase.Method = "gutmann"
		cfg.Erase.ChunkSize = 8 * 1024
		cfg.Erase.MaxSpeedMBps = 0
	case "gentle":
		// Щадящий режим для рабочих станций под нагрузкой
		cfg.Erase.Method = "dod3"
		cfg.Erase.ChunkSize = 8 * 1024
		cfg.Erase.MaxSpeedMBps = 25
	default:
		return fmt.Errorf("неизвестный профиль: %s", profile)
	}
	return nil
}
