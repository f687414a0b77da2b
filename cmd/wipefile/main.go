package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"wipefile_enterprise/internal/config"
	"wipefile_enterprise/internal/logging"
	"wipefile_enterprise/internal/reporting"
	"wipefile_enterprise/internal/security"
	"wipefile_enterprise/internal/system"
	"wipefile_enterprise/internal/wipe"
)

const (
	Version = "1.0.2"
	AppName = "WipeFile Enterprise"

	// Exit codes
	EXIT_SUCCESS = 0
	EXIT_ERROR   = 1
	EXIT_WARNING = 2
)

// Терминальные итоги задания для маппинга exit code в main
var (
	errJobFailed    = errors.New("некоторые операции завершились с ошибкой")
	errJobCancelled = errors.New("операция отменена")
)

var (
	dryRun         bool
	verbose        bool
	configPath     string
	maxDurationStr string
	profile        string
)

// CLI команды
var rootCmd = &cobra.Command{
	Use:     "wipefile",
	Short:   "WipeFile Enterprise - утилита безопасного удаления файлов",
	Long:    "Enterprise утилита для многопроходного затирания файлов и директорий перед удалением",
	Version: Version,
}

var eraseCmd = &cobra.Command{
	Use:   "erase [пути]",
	Short: "Затереть и удалить файлы или директории",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runErase,
}

var methodsCmd = &cobra.Command{
	Use:   "methods",
	Short: "Показать поддерживаемые методы затирания",
	RunE:  runMethods,
}

var infoCmd = &cobra.Command{
	Use:   "info [пути]",
	Short: "Показать информацию о файловых системах",
	RunE:  runInfo,
}

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "Самодиагностика перед затиранием",
	RunE:  runDiagnose,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "n", false, "Тестовый режим")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Подробный вывод")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Путь к конфигурации")
	rootCmd.PersistentFlags().StringVar(&maxDurationStr, "max-duration", "", "Максимальное время работы (например: 30m, 2h)")
	rootCmd.PersistentFlags().StringVar(&profile, "profile", "", "Профиль затирания (quick/standard/dod/paranoid/gentle)")

	eraseCmd.Flags().StringP("method", "m", "", "Метод затирания (simple/dod3/dod7/gutmann)")
	eraseCmd.Flags().BoolP("force", "f", false, "Пропустить подтверждение")
	eraseCmd.Flags().Bool("delete-empty-dirs", false, "Удалять опустевшие директории")
	eraseCmd.Flags().Bool("keep-going", false, "Не останавливаться на первой ошибке")
	eraseCmd.Flags().Float64("max-speed", 0, "Ограничение скорости записи, MB/s (0 = без лимита)")

	diagnoseCmd.Flags().Bool("quick", false, "Быстрая диагностика")
	diagnoseCmd.Flags().Bool("full", false, "Полная диагностика с пробным затиранием")
	diagnoseCmd.Flags().String("output", "", "Сохранить отчёт в файл")

	rootCmd.AddCommand(eraseCmd, cleanCmd, methodsCmd, infoCmd, diagnoseCmd)
}

// loadConfigAndLogger загружает конфигурацию, применяет профиль и создаёт логгер
func loadConfigAndLogger() (*config.Config, *logging.EnterpriseLogger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}

	if profile != "" {
		if err := config.ApplyProfile(cfg, profile); err != nil {
			return nil, nil, fmt.Errorf("ошибка применения профиля %s: %w", profile, err)
		}
	}

	logger, err := logging.NewEnterpriseLogger(cfg, verbose)
	if err != nil {
		return nil, nil, fmt.Errorf("ошибка инициализации логгера: %w", err)
	}

	if profile != "" {
		logger.Log("INFO", "Применён профиль", "profile", profile)
	}

	return cfg, logger, nil
}

// resolveMaxDuration: флаг имеет приоритет над конфигурацией
func resolveMaxDuration(cfg *config.Config) (time.Duration, error) {
	if maxDurationStr != "" {
		duration, err := time.ParseDuration(maxDurationStr)
		if err != nil {
			return 0, fmt.Errorf("неверный формат max-duration: %w", err)
		}
		return duration, nil
	}
	return cfg.GetMaxDuration(), nil
}

// jobContext создает контекст задания с таймаутом и обработкой сигналов.
// Возвращённый stop снимает обработчики и освобождает контекст.
func jobContext(maxDuration time.Duration, logger *logging.EnterpriseLogger) (context.Context, func()) {
	baseCtx := context.Background()

	var ctx context.Context
	var cancel context.CancelFunc
	if maxDuration > 0 {
		ctx, cancel = context.WithTimeout(baseCtx, maxDuration)
	} else {
		ctx, cancel = context.WithCancel(baseCtx)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig, ok := <-sigChan
		if !ok {
			return
		}
		logger.Log("WARN", "Получен сигнал, начинаем graceful shutdown", "signal", sig.String())
		fmt.Printf("\n[INFO] Получен сигнал %s, завершаем работу...\n", sig.String())
		cancel()
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		close(sigChan)
		cancel()
	}
}

func runErase(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	defer logger.Close()

	// Флаги команды поверх конфигурации
	if methodName, _ := cmd.Flags().GetString("method"); methodName != "" {
		cfg.Erase.Method = methodName
	}
	if cmd.Flags().Changed("delete-empty-dirs") {
		cfg.Erase.DeleteEmptyDirs, _ = cmd.Flags().GetBool("delete-empty-dirs")
	}
	if cmd.Flags().Changed("keep-going") {
		cfg.Erase.ContinueOnError, _ = cmd.Flags().GetBool("keep-going")
	}
	if cmd.Flags().Changed("max-speed") {
		cfg.Erase.MaxSpeedMBps, _ = cmd.Flags().GetFloat64("max-speed")
	}

	method, err := wipe.MethodByName(cfg.Erase.Method)
	if err != nil {
		return err
	}

	maxDuration, err := resolveMaxDuration(cfg)
	if err != nil {
		return err
	}

	if err := security.SecurityChecks(cfg, args); err != nil {
		return err
	}

	logger.Log("INFO", "Запуск WipeFile Enterprise", "version", Version, "dry_run", dryRun)

	force, _ := cmd.Flags().GetBool("force")
	if !force && !dryRun && cfg.Security.RequireConfirmation {
		if !confirmErasure(args, method) {
			logger.Log("INFO", "Операция отменена пользователем")
			return nil
		}
	}

	options := wipe.JobOptions{
		Method:          method,
		DeleteEmptyDirs: cfg.Erase.DeleteEmptyDirs,
		ContinueOnError: cfg.Erase.ContinueOnError,
		ChunkSize:       int(cfg.Erase.ChunkSize),
		MaxSpeedMBps:    cfg.Erase.MaxSpeedMBps,
		DryRun:          dryRun,
	}

	result, err := executeJob(args, options, cfg, logger, maxDuration)
	if err != nil {
		return err
	}

	printResults(result)

	exitErr := resultError(result)
	if err := saveJobReport(result, cfg, "erase", maxDuration, exitErr, logger); err != nil {
		logger.Log("WARN", "Ошибка сохранения отчёта", "error", err.Error())
	}

	return exitErr
}

// executeJob запускает задание и ждёт его терминального состояния
func executeJob(targets []string, options wipe.JobOptions, cfg *config.Config, logger *logging.EnterpriseLogger, maxDuration time.Duration) (*wipe.JobResult, error) {
	ctx, stop := jobContext(maxDuration, logger)
	defer stop()

	printer := newProgressPrinter()

	handle, err := wipe.Submit(ctx, targets, options, logger, printer.onProgress, nil)
	if err != nil {
		return nil, err
	}

	// Воркер завершается сам: ждём итог на фоновом контексте,
	// отмена придёт через ctx задания
	result, err := handle.Wait(context.Background())
	printer.finish()
	if err != nil {
		return nil, err
	}

	return result, nil
}

// confirmErasure запрашивает у пользователя подтверждение
func confirmErasure(targets []string, method wipe.ErasureMethod) bool {
	fmt.Printf("ВНИМАНИЕ: Будут безвозвратно затёрты %d целей методом %s (%d проходов):\n",
		len(targets), method, method.PassCount())
	for _, target := range targets {
		fmt.Printf("  %s\n", target)
	}
	fmt.Print("Продолжить? (y/N): ")

	var response string
	fmt.Scanln(&response)
	return strings.ToLower(response) == "y"
}

// printResults выводит итоги задания
func printResults(result *wipe.JobResult) {
	fmt.Println("\nРезультаты затирания:")
	fmt.Println("==================")

	for _, out := range result.Outcomes {
		status := "✓"
		switch out.Status {
		case wipe.OutcomeSkipped, wipe.OutcomeNotProcessed:
			status = "-"
		case wipe.OutcomeFailed:
			status = "✗"
		}

		fmt.Printf("%s %s - %s", status, out.Path, out.Status)
		if out.Bytes > 0 {
			fmt.Printf(" (%.1f MB)", float64(out.Bytes)/(1024*1024))
		}
		fmt.Println()

		if out.Error != "" {
			fmt.Printf("  Ошибка: %s\n", out.Error)
		}
	}

	fmt.Printf("\nИтог: %s | затёрто %d, пропущено %d, ошибок %d | %.1f MB, %.1f MB/s\n",
		result.State, result.Succeeded, result.Skipped, result.Failed,
		float64(result.BytesWiped)/(1024*1024), result.SpeedMBps)

	if result.Warning != "" {
		fmt.Printf("Предупреждение: %s\n", result.Warning)
	}
	if result.FirstError != "" {
		fmt.Printf("Первая ошибка: %s (%s)\n", result.FirstError, result.FirstErrorPath)
	}
}

// resultError переводит терминальное состояние задания в ошибку команды
func resultError(result *wipe.JobResult) error {
	switch result.State {
	case wipe.StateFailed:
		return fmt.Errorf("%w: %s", errJobFailed, result.FirstError)
	case wipe.StateCancelled:
		return errJobCancelled
	default:
		return nil
	}
}

// saveJobReport генерирует и сохраняет отчёт о запуске
func saveJobReport(result *wipe.JobResult, cfg *config.Config, command string, maxDuration time.Duration, exitErr error, logger *logging.EnterpriseLogger) error {
	if !cfg.Reporting.Enabled {
		return nil
	}

	report := reporting.GenerateReport(result, cfg, command, Version, profile, dryRun, maxDuration, exitCodeFor(exitErr))

	path, err := reporting.SaveReport(report, cfg)
	if err != nil {
		return err
	}

	logger.Log("INFO", "Отчёт сохранён", "run_id", report.RunID, "file", path)
	return nil
}

func runMethods(cmd *cobra.Command, args []string) error {
	fmt.Println("Поддерживаемые методы затирания:")
	fmt.Println("================================")

	for _, method := range wipe.Methods() {
		passes := "проходов"
		switch method.PassCount() {
		case 1:
			passes = "проход"
		case 3:
			passes = "прохода"
		}
		fmt.Printf("%-8s (%d %s)\n", method, method.PassCount(), passes)
		fmt.Printf("         %s\n", method.Description())
	}

	return nil
}

func runInfo(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		args = []string{"."}
	}

	fmt.Println("Информация о файловых системах:")
	fmt.Println("==========================")

	for _, path := range args {
		info, err := system.GetDiskInfoForPath(path)
		if err != nil {
			fmt.Printf("%s - ошибка: %v\n", path, err)
			continue
		}

		fmt.Printf("%s - %.1f GB total, %.1f GB free, %s\n",
			info.Path,
			float64(info.TotalSize)/(1024*1024*1024),
			float64(info.FreeSize)/(1024*1024*1024),
			map[bool]string{true: "запись доступна", false: "только чтение"}[info.IsWritable])
	}

	return nil
}

func runDiagnose(cmd *cobra.Command, args []string) error {
	quick, _ := cmd.Flags().GetBool("quick")
	full, _ := cmd.Flags().GetBool("full")
	output, _ := cmd.Flags().GetString("output")

	level := system.LevelQuick
	if full && !quick {
		level = system.LevelFull
	}

	cfg, logger, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	defer logger.Close()

	fmt.Printf("Запуск диагностики системы (уровень: %s)\n", level)

	// Пробное затирание выполняется настоящим движком
	selfTest := func(ctx context.Context, dir string) error {
		return eraseSelfTest(ctx, dir, logger, int(cfg.Erase.ChunkSize))
	}

	runner := system.NewDiagnosticsRunner(level, verbose, selfTest)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	diagnostics, err := runner.RunDiagnostics(ctx)
	if err != nil {
		return fmt.Errorf("ошибка выполнения диагностики: %w", err)
	}

	printDiagnostics(diagnostics)

	if output != "" {
		if err := system.SaveDiagnostics(diagnostics, output); err != nil {
			return fmt.Errorf("ошибка сохранения отчёта: %w", err)
		}
		fmt.Printf("\nОтчёт сохранён: %s\n", output)
	}

	if diagnostics.Overall == "CRITICAL" {
		return fmt.Errorf("обнаружены критические проблемы")
	}
	if diagnostics.Overall == "WARNING" {
		fmt.Println("\n⚠ Обнаружены предупреждения. Рекомендуется проверить систему.")
	}

	return nil
}

// eraseSelfTest создает файл со случайным содержимым и затирает его
// однопроходным методом через штатный eraser
func eraseSelfTest(ctx context.Context, dir string, logger *logging.EnterpriseLogger, chunkSize int) error {
	path := filepath.Join(dir, "wipefile_selftest.tmp")

	data, err := wipe.Dod3Pass.Pattern(2, 16*1024)
	if err != nil {
		return fmt.Errorf("ошибка генерации тестовых данных: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("ошибка создания тестового файла: %w", err)
	}

	eraser := wipe.NewFileEraser(logger, chunkSize, 0)
	if _, err := eraser.EraseFile(ctx, path, wipe.SimpleOverwrite, nil); err != nil {
		return fmt.Errorf("затирание тестового файла: %w", err)
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		return fmt.Errorf("тестовый файл не был удалён")
	}

	return nil
}

// printDiagnostics выводит результаты диагностики
func printDiagnostics(diagnostics *system.SystemDiagnostics) {
	fmt.Println("\nРезультаты диагностики:")
	fmt.Println("=====================")
	fmt.Printf("Уровень: %s\n", diagnostics.Level)
	fmt.Printf("Общий статус: %s\n", diagnostics.Overall)
	fmt.Printf("Длительность: %s\n", diagnostics.Duration)
	fmt.Printf("Всего тестов: %d\n", diagnostics.Summary.TotalTests)
	fmt.Printf("Пройдено: %d\n", diagnostics.Summary.Passed)
	fmt.Printf("Предупреждений: %d\n", diagnostics.Summary.Warnings)
	fmt.Printf("Ошибок: %d\n", diagnostics.Summary.Failed)

	fmt.Println("\nИнформация об окружении:")
	fmt.Println("------------------------")
	fmt.Printf("ОС: %s\n", diagnostics.Environment.OSVersion)
	fmt.Printf("Архитектура: %s\n", diagnostics.Environment.Architecture)
	fmt.Printf("Компьютер: %s\n", diagnostics.Environment.Hostname)
	fmt.Printf("Пользователь: %s\n", diagnostics.Environment.Username)
	fmt.Printf("CPU ядер: %d\n", diagnostics.Environment.CPUCount)
	fmt.Printf("Память: %.1f GB всего, %.1f GB доступно\n",
		float64(diagnostics.Environment.TotalMemory)/(1024*1024*1024),
		float64(diagnostics.Environment.AvailableMem)/(1024*1024*1024))

	if len(diagnostics.Results) > 0 {
		fmt.Println("\nДетальные результаты:")
		fmt.Println("--------------------")
		for _, result := range diagnostics.Results {
			status := "✓"
			if result.Status == "FAIL" {
				status = "✗"
			} else if result.Status == "WARN" {
				status = "⚠"
			}

			fmt.Printf("%s %s - %s (%v)\n", status, result.Test, result.Message, result.Duration)
		}
	}
}

func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return EXIT_SUCCESS
	case errors.Is(err, errJobCancelled):
		return EXIT_WARNING
	default:
		return EXIT_ERROR
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(exitCodeFor(err))
	}
	os.Exit(EXIT_SUCCESS)
}
