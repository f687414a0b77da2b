package system

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"wipefile_enterprise/internal/logging"
)

// CleanRules правила отбора временных файлов для затирания
type CleanRules struct {
	ExcludePaths    []string
	ExcludePatterns []string
	MaxFileSize     int64 // 0 = без лимита
	MinFileAgeDays  int   // 0 = любой возраст
}

// Системные файлы, которые нельзя трогать даже во временных директориях
var alwaysExcluded = []string{
	".exe", ".dll", ".sys", ".so", ".dylib",
	"pagefile.sys", "hiberfil.sys", "swapfile.sys",
}

// CollectCleanTargets собирает элементы верхнего уровня временных директорий,
// подходящие под правила. Возвращаются цели для задания затирания: сами
// директории roots не включаются, только их содержимое.
func CollectCleanTargets(roots []string, rules CleanRules, logger *logging.EnterpriseLogger) []string {
	var targets []string
	cutoff := time.Now().AddDate(0, 0, -rules.MinFileAgeDays)

	for _, root := range roots {
		entries, err := os.ReadDir(root)
		if err != nil {
			logger.Log("WARN", "Ошибка чтения временной директории", "path", root, "error", err.Error())
			continue
		}

		for _, entry := range entries {
			path := filepath.Join(root, entry.Name())

			if isExcludedPath(path, rules) {
				logger.Log("DEBUG", "Элемент исключён из очистки", "path", path)
				continue
			}

			info, err := entry.Info()
			if err != nil {
				continue
			}

			if rules.MinFileAgeDays > 0 && info.ModTime().After(cutoff) {
				continue
			}

			if !entry.IsDir() && rules.MaxFileSize > 0 && info.Size() > rules.MaxFileSize {
				logger.Log("DEBUG", "Файл слишком велик для очистки", "path", path, "size", info.Size())
				continue
			}

			targets = append(targets, path)
		}
	}

	return targets
}

func isExcludedPath(path string, rules CleanRules) bool {
	base := strings.ToLower(filepath.Base(path))

	for _, exclude := range alwaysExcluded {
		if strings.HasSuffix(base, exclude) {
			return true
		}
	}

	for _, pattern := range rules.ExcludePatterns {
		if matched, err := filepath.Match(strings.ToLower(pattern), base); err == nil && matched {
			return true
		}
	}

	for _, excluded := range rules.ExcludePaths {
		if excluded == "" {
			continue
		}
		abs, err := filepath.Abs(os.ExpandEnv(excluded))
		if err != nil {
			continue
		}
		if pathsEqual(path, abs) || IsSubpath(abs, path) {
			return true
		}
	}

	return false
}

// IsSubpath проверяет, лежит ли child внутри parent
func IsSubpath(parent, child string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func pathsEqual(a, b string) bool {
	return filepath.Clean(a) == filepath.Clean(b)
}
