package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"gopkg.in/yaml.v3"
)

// Enterprise конфигурация
type Config struct {
	Security struct {
		RequireConfirmation bool     `yaml:"require_confirmation"`
		AllowProtected      bool     `yaml:"allow_protected"`
		ProtectedPaths      []string `yaml:"protected_paths"`
	} `yaml:"security"`

	Erase struct {
		Method          string  `yaml:"method"`
		ChunkSize       int64   `yaml:"chunk_size"`
		DeleteEmptyDirs bool    `yaml:"delete_empty_dirs"`
		ContinueOnError bool    `yaml:"continue_on_error"`
		MaxSpeedMBps    float64 `yaml:"max_speed_mbps"`
		MaxDuration     string  `yaml:"max_duration"`
	} `yaml:"erase"`

	Logging struct {
		Level      string `yaml:"level"`
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxFiles   int    `yaml:"max_files"`
		Structured bool   `yaml:"structured"`
	} `yaml:"logging"`

	Reporting struct {
		Enabled   bool   `yaml:"enabled"`
		LocalPath string `yaml:"local_path"`
		Format    string `yaml:"format"`
	} `yaml:"reporting"`

	Clean struct {
		Enabled         bool     `yaml:"enabled"`
		IncludePaths    []string `yaml:"include_paths"`
		ExcludePaths    []string `yaml:"exclude_paths"`
		ExcludePatterns []string `yaml:"exclude_patterns"`
		MaxFileSize     int64    `yaml:"max_file_size"`
		MinFileAge      int      `yaml:"min_file_age"`
	} `yaml:"clean"`
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	return &Config{
		Security: struct {
			RequireConfirmation bool     `yaml:"require_confirmation"`
			AllowProtected      bool     `yaml:"allow_protected"`
			ProtectedPaths      []string `yaml:"protected_paths"`
		}{
			RequireConfirmation: true,
			AllowProtected:      false,
			ProtectedPaths:      defaultProtectedPaths(),
		},
		Erase: struct {
			Method          string  `yaml:"method"`
			ChunkSize       int64   `yaml:"chunk_size"`
			DeleteEmptyDirs bool    `yaml:"delete_empty_dirs"`
			ContinueOnError bool    `yaml:"continue_on_error"`
			MaxSpeedMBps    float64 `yaml:"max_speed_mbps"`
			MaxDuration     string  `yaml:"max_duration"`
		}{
			Method:          "dod3",
			ChunkSize:       8 * 1024, // 8KB
			DeleteEmptyDirs: false,
			ContinueOnError: false,
			MaxSpeedMBps:    0, // Без ограничения скорости
			MaxDuration:     "",
		},
		Logging: struct {
			Level      string `yaml:"level"`
			File       string `yaml:"file"`
			MaxSizeMB  int    `yaml:"max_size_mb"`
			MaxFiles   int    `yaml:"max_files"`
			Structured bool   `yaml:"structured"`
		}{
			Level:      "INFO",
			File:       "",
			MaxSizeMB:  100,
			MaxFiles:   5,
			Structured: false,
		},
		Reporting: struct {
			Enabled   bool   `yaml:"enabled"`
			LocalPath string `yaml:"local_path"`
			Format    string `yaml:"format"`
		}{
			Enabled:   false,
			LocalPath: "./reports",
			Format:    "json",
		},
		Clean: struct {
			Enabled         bool     `yaml:"enabled"`
			IncludePaths    []string `yaml:"include_paths"`
			ExcludePaths    []string `yaml:"exclude_paths"`
			ExcludePatterns []string `yaml:"exclude_patterns"`
			MaxFileSize     int64    `yaml:"max_file_size"`
			MinFileAge      int      `yaml:"min_file_age"`
		}{
			Enabled:         false,
			IncludePaths:    []string{},
			ExcludePaths:    []string{},
			ExcludePatterns: []string{"*.lock", "*.pid", "*.sock"},
			MaxFileSize:     100 * 1024 * 1024, // 100MB
			MinFileAge:      7,                 // 7 дней
		},
	}
}

// Load загружает конфигурацию из файла
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	// Валидация конфигурации
	if err := Validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate проверяет конфигурацию на валидность
func Validate(config *Config) error {
	// Валидация erase секции
	validMethods := map[string]bool{
		"simple":  true,
		"dod3":    true,
		"dod7":    true,
		"gutmann": true,
	}
	if !validMethods[config.Erase.Method] {
		return fmt.Errorf("invalid erase method: %s", config.Erase.Method)
	}

	// Проверяем chunk size
	if config.Erase.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d", config.Erase.ChunkSize)
	}
	if config.Erase.ChunkSize > 100*1024*1024 { // 100MB max
		return fmt.Errorf("chunk size too large (max 100MB), got %d", config.Erase.ChunkSize)
	}

	// Проверяем speed
	if config.Erase.MaxSpeedMBps < 0 {
		return fmt.Errorf("max speed cannot be negative, got %f", config.Erase.MaxSpeedMBps)
	}
	if config.Erase.MaxSpeedMBps > 1000 { // 1GB/s max
		return fmt.Errorf("max speed too high (max 1000MB/s), got %f", config.Erase.MaxSpeedMBps)
	}

	// Проверяем duration
	if config.Erase.MaxDuration != "" {
		if _, err := time.ParseDuration(config.Erase.MaxDuration); err != nil {
			return fmt.Errorf("invalid max duration format: %s", config.Erase.MaxDuration)
		}
	}

	// Валидация logging секции
	validLevels := map[string]bool{
		"DEBUG": true,
		"INFO":  true,
		"WARN":  true,
		"ERROR": true,
	}
	if !validLevels[config.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}

	if config.Logging.MaxSizeMB <= 0 || config.Logging.MaxSizeMB > 1000 {
		return fmt.Errorf("log max size must be between 1MB and 1000MB, got %d", config.Logging.MaxSizeMB)
	}

	if config.Logging.MaxFiles <= 0 || config.Logging.MaxFiles > 50 {
		return fmt.Errorf("log max files must be between 1 and 50, got %d", config.Logging.MaxFiles)
	}

	// Валидация reporting секции
	validFormats := map[string]bool{
		"json": true,
	}
	if config.Reporting.Enabled && !validFormats[config.Reporting.Format] {
		return fmt.Errorf("invalid report format: %s", config.Reporting.Format)
	}

	// Валидация clean секции
	if config.Clean.MaxFileSize < 0 {
		return fmt.Errorf("clean max file size cannot be negative, got %d", config.Clean.MaxFileSize)
	}
	if config.Clean.MinFileAge < 0 {
		return fmt.Errorf("clean min file age cannot be negative, got %d", config.Clean.MinFileAge)
	}

	// Валидация путей
	for _, path := range config.Security.ProtectedPaths {
		if path == "" {
			return fmt.Errorf("empty protected path")
		}

		absPath := filepath.Clean(path)
		if absPath == "" || absPath == "." {
			return fmt.Errorf("invalid protected path: %s", path)
		}
	}

	return nil
}

// Save сохраняет конфигурацию в файл
func Save(config *Config, path string) error {
	// Валидация перед сохранением
	if err := Validate(config); err != nil {
		return fmt.Errorf("cannot save invalid config: %w", err)
	}

	// Создаем директорию если нужно
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetMaxDuration возвращает максимальную длительность операции.
// Ноль означает отсутствие лимита: движок сам таймаутов не навязывает.
func (config *Config) GetMaxDuration() time.Duration {
	if config.Erase.MaxDuration == "" {
		return 0 // Без лимита
	}

	duration, err := time.ParseDuration(config.Erase.MaxDuration)
	if err != nil {
		return 0
	}

	return duration
}

// defaultProtectedPaths возвращает системные пути, которые нельзя затирать
func defaultProtectedPaths() []string {
	switch runtime.GOOS {
	case "windows":
		systemDrive := getSystemDrive()
		return []string{
			filepath.Join(systemDrive, "Windows"),
			filepath.Join(systemDrive, "Program Files"),
			filepath.Join(systemDrive, "Program Files (x86)"),
			filepath.Join(systemDrive, "Users"),
		}
	case "darwin":
		return []string{
			"/System", "/Library", "/Applications",
			"/bin", "/sbin", "/usr", "/etc", "/var",
		}
	default:
		return []string{
			"/bin", "/boot", "/dev", "/etc", "/lib",
			"/proc", "/sbin", "/sys", "/usr", "/var",
		}
	}
}

// getSystemDrive возвращает системный диск (C:, D:, и т.д.)
func getSystemDrive() string {
	// Получаем путь к системной директории
	windir := os.Getenv("WINDIR")
	if windir == "" {
		return "C:" // Fallback
	}

	// Извлекаем букву диска
	if len(windir) >= 2 {
		return windir[:2]
	}

	return "C:" // Fallback
}
