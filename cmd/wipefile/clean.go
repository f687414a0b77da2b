package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"wipefile_enterprise/internal/security"
	"wipefile_enterprise/internal/system"
	"wipefile_enterprise/internal/wipe"
)

// cleanCmd затирает содержимое временных директорий через штатный движок
var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Затереть временные файлы",
	Long: `Безопасное затирание содержимого временных директорий ОС и путей из
секции clean конфигурации. Файлы перезаписываются настроенным методом
и удаляются; занятые файлы пропускаются.`,
	Example: `  wipefile clean
  wipefile clean --dry-run
  wipefile clean --temp=false -f`,
	RunE: runClean,
}

func init() {
	cleanCmd.Flags().Bool("temp", true, "Включить временные директории ОС")
	cleanCmd.Flags().BoolP("force", "f", false, "Пропустить подтверждение")
}

func runClean(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	defer logger.Close()

	includeTemp, _ := cmd.Flags().GetBool("temp")

	var roots []string
	for _, path := range cfg.Clean.IncludePaths {
		validated, err := system.ValidatePath(path)
		if err != nil {
			logger.Log("WARN", "Путь очистки из конфигурации недоступен", "path", path, "error", err.Error())
			continue
		}
		roots = append(roots, validated)
	}

	if includeTemp {
		tempPaths, err := system.GetSafeTempPaths()
		if err != nil {
			if len(roots) == 0 {
				return fmt.Errorf("ошибка поиска временных директорий: %w", err)
			}
			logger.Log("WARN", "Временные директории недоступны", "error", err.Error())
		}
		roots = append(roots, tempPaths...)
	}

	if len(roots) == 0 {
		return fmt.Errorf("не указаны директории для очистки")
	}

	logger.Log("INFO", "Начало очистки временных файлов", "roots", strings.Join(roots, ", "), "dry_run", dryRun)

	rules := system.CleanRules{
		ExcludePaths:    cfg.Clean.ExcludePaths,
		ExcludePatterns: cfg.Clean.ExcludePatterns,
		MaxFileSize:     cfg.Clean.MaxFileSize,
		MinFileAgeDays:  cfg.Clean.MinFileAge,
	}

	targets := system.CollectCleanTargets(roots, rules, logger)
	if len(targets) == 0 {
		logger.Log("INFO", "Нет файлов для очистки")
		fmt.Println("Нет файлов для очистки")
		return nil
	}

	if err := security.SecurityChecks(cfg, targets); err != nil {
		return err
	}

	method, err := wipe.MethodByName(cfg.Erase.Method)
	if err != nil {
		return err
	}

	maxDuration, err := resolveMaxDuration(cfg)
	if err != nil {
		return err
	}

	force, _ := cmd.Flags().GetBool("force")
	if !force && !dryRun && cfg.Security.RequireConfirmation {
		fmt.Printf("ВНИМАНИЕ: Будет затёрто %d элементов из %d директорий методом %s\n",
			len(targets), len(roots), method)
		fmt.Print("Продолжить? (y/N): ")
		var response string
		fmt.Scanln(&response)
		if strings.ToLower(response) != "y" {
			logger.Log("INFO", "Очистка отменена пользователем")
			return nil
		}
	}

	// Очистка идёт в режиме best-effort: занятые файлы пропускаются,
	// опустевшие поддиректории удаляются
	options := wipe.JobOptions{
		Method:          method,
		DeleteEmptyDirs: true,
		ContinueOnError: true,
		ChunkSize:       int(cfg.Erase.ChunkSize),
		MaxSpeedMBps:    cfg.Erase.MaxSpeedMBps,
		DryRun:          dryRun,
	}

	result, err := executeJob(targets, options, cfg, logger, maxDuration)
	if err != nil {
		return err
	}

	fmt.Printf("\nОчистка завершена: %s | затёрто %d, пропущено %d, ошибок %d | %.1f MB\n",
		result.State, result.Succeeded, result.Skipped, result.Failed,
		float64(result.BytesWiped)/(1024*1024))

	exitErr := resultError(result)
	if err := saveJobReport(result, cfg, "clean", maxDuration, exitErr, logger); err != nil {
		logger.Log("WARN", "Ошибка сохранения отчёта", "error", err.Error())
	}

	return exitErr
}
