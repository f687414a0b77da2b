package security

import (
	"fmt"
	"os"
	"path/filepath"

	"wipefile_enterprise/internal/config"
	"wipefile_enterprise/internal/system"
)

// SecurityChecks проверяет цели затирания перед запуском задания.
// Цели внутри защищённых путей отклоняются, пока явно не разрешены
// конфигурацией. Запущенный исполняемый файл защищён безусловно.
func SecurityChecks(cfg *config.Config, targets []string) error {
	if cfg == nil {
		cfg = config.Default()
	}

	for _, target := range targets {
		if err := CheckTarget(cfg, target); err != nil {
			return err
		}
	}

	return nil
}

// CheckTarget проверяет одну цель
func CheckTarget(cfg *config.Config, target string) error {
	abs, err := filepath.Abs(os.ExpandEnv(target))
	if err != nil {
		return fmt.Errorf("некорректный путь %s: %w", target, err)
	}

	if !cfg.Security.AllowProtected {
		if hit := protectedPathFor(cfg, abs); hit != "" {
			return fmt.Errorf("путь %s защищён от затирания (%s); снимите защиту через security.allow_protected", abs, hit)
		}
	}

	// Собственный исполняемый файл не затирается никогда
	if exe, err := os.Executable(); err == nil {
		if samePath(abs, exe) || system.IsSubpath(abs, exe) {
			return fmt.Errorf("путь %s содержит запущенный исполняемый файл", abs)
		}
	}

	return nil
}

// protectedPathFor возвращает защищённый путь, с которым пересекается цель.
// Пересечением считается и цель внутри защищённого пути, и защищённый путь
// внутри цели: затирание родителя уничтожило бы защищённое содержимое.
func protectedPathFor(cfg *config.Config, target string) string {
	for _, protected := range cfg.Security.ProtectedPaths {
		if protected == "" {
			continue
		}
		abs, err := filepath.Abs(os.ExpandEnv(protected))
		if err != nil {
			continue
		}
		if samePath(target, abs) || system.IsSubpath(abs, target) || system.IsSubpath(target, abs) {
			return abs
		}
	}
	return ""
}

func samePath(a, b string) bool {
	return filepath.Clean(a) == filepath.Clean(b)
}
