package system

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// DiagnosticLevel определяет уровень диагностики
type DiagnosticLevel string

const (
	LevelQuick DiagnosticLevel = "quick"
	LevelFull  DiagnosticLevel = "full"
)

// DiagnosticTest определяет тип теста
type DiagnosticTest string

const (
	TestPermissions DiagnosticTest = "permissions"
	TestPaths       DiagnosticTest = "paths"
	TestDisks       DiagnosticTest = "disks"
	TestMemory      DiagnosticTest = "memory"
	TestSelfErase   DiagnosticTest = "selftest"
)

// DiagnosticResult содержит результат теста
type DiagnosticResult struct {
	Test      DiagnosticTest `json:"test"`
	Status    string         `json:"status"` // PASS, FAIL, WARN
	Message   string         `json:"message"`
	Details   interface{}    `json:"details,omitempty"`
	Duration  time.Duration  `json:"duration"`
	Timestamp time.Time      `json:"timestamp"`
}

// SystemDiagnostics содержит полную диагностику перед затиранием
type SystemDiagnostics struct {
	Level       DiagnosticLevel    `json:"level"`
	StartTime   time.Time          `json:"start_time"`
	EndTime     time.Time          `json:"end_time"`
	Duration    time.Duration      `json:"duration"`
	Overall     string             `json:"overall"` // HEALTHY, WARNING, CRITICAL
	Results     []DiagnosticResult `json:"results"`
	Summary     DiagnosticSummary  `json:"summary"`
	Environment SystemEnvironment  `json:"environment"`
}

// DiagnosticSummary содержит сводку результатов
type DiagnosticSummary struct {
	TotalTests int `json:"total_tests"`
	Passed     int `json:"passed"`
	Failed     int `json:"failed"`
	Warnings   int `json:"warnings"`
}

// SystemEnvironment содержит информацию об окружении
type SystemEnvironment struct {
	OSVersion    string `json:"os_version"`
	Kernel       string `json:"kernel"`
	Architecture string `json:"architecture"`
	Hostname     string `json:"hostname"`
	Username     string `json:"username"`
	CPUCount     int    `json:"cpu_count"`
	TotalMemory  uint64 `json:"total_memory"`
	AvailableMem uint64 `json:"available_memory"`
	GoVersion    string `json:"go_version"`
}

// SelfTestFunc выполняет пробное затирание в указанной директории.
// Подключается вызывающей стороной, чтобы диагностика проверяла
// настоящий движок, а не его имитацию.
type SelfTestFunc func(ctx context.Context, dir string) error

// DiagnosticsRunner выполняет предполётную диагностику затирания
type DiagnosticsRunner struct {
	level    DiagnosticLevel
	verbose  bool
	selfTest SelfTestFunc
}

// NewDiagnosticsRunner создает новый runner. selfTest может быть nil,
// тогда на уровне full выполняется встроенная проба перезаписи.
func NewDiagnosticsRunner(level DiagnosticLevel, verbose bool, selfTest SelfTestFunc) *DiagnosticsRunner {
	return &DiagnosticsRunner{
		level:    level,
		verbose:  verbose,
		selfTest: selfTest,
	}
}

// RunDiagnostics выполняет диагностику выбранного уровня
func (dr *DiagnosticsRunner) RunDiagnostics(ctx context.Context) (*SystemDiagnostics, error) {
	startTime := time.Now()

	diagnostics := &SystemDiagnostics{
		Level:       dr.level,
		StartTime:   startTime,
		Results:     make([]DiagnosticResult, 0),
		Environment: collectEnvironmentInfo(),
	}

	for _, test := range dr.testsForLevel() {
		select {
		case <-ctx.Done():
			return diagnostics, ctx.Err()
		default:
		}

		result := dr.runTest(ctx, test)
		diagnostics.Results = append(diagnostics.Results, result)
	}

	diagnostics.EndTime = time.Now()
	diagnostics.Duration = diagnostics.EndTime.Sub(diagnostics.StartTime)
	diagnostics.Summary = calculateSummary(diagnostics.Results)
	diagnostics.Overall = determineOverallStatus(diagnostics.Summary)

	return diagnostics, nil
}

func (dr *DiagnosticsRunner) testsForLevel() []DiagnosticTest {
	switch dr.level {
	case LevelFull:
		return []DiagnosticTest{TestPermissions, TestPaths, TestDisks, TestMemory, TestSelfErase}
	default:
		return []DiagnosticTest{TestPermissions, TestPaths, TestDisks}
	}
}

func (dr *DiagnosticsRunner) runTest(ctx context.Context, test DiagnosticTest) DiagnosticResult {
	startTime := time.Now()

	result := DiagnosticResult{
		Test:      test,
		Timestamp: startTime,
	}

	switch test {
	case TestPermissions:
		result.Status, result.Message, result.Details = dr.testPermissions()
	case TestPaths:
		result.Status, result.Message, result.Details = dr.testPaths()
	case TestDisks:
		result.Status, result.Message, result.Details = dr.testDisks()
	case TestMemory:
		result.Status, result.Message, result.Details = dr.testMemory()
	case TestSelfErase:
		result.Status, result.Message, result.Details = dr.testSelfErase(ctx)
	}

	result.Duration = time.Since(startTime)

	if dr.verbose {
		fmt.Printf("[TEST] %s: %s - %s (%v)\n", result.Test, result.Status, result.Message, result.Duration)
	}

	return result
}

// testPermissions: затиранию нужны права на запись и удаление во
// временных директориях, административные права не требуются
func (dr *DiagnosticsRunner) testPermissions() (string, string, interface{}) {
	paths, err := GetSafeTempPaths()
	if err != nil {
		return "FAIL", fmt.Sprintf("Временные директории недоступны: %v", err), nil
	}

	details := make([]map[string]interface{}, len(paths))
	writable := 0

	for i, path := range paths {
		ok := CheckWriteAccess(path)
		if ok {
			writable++
		}
		details[i] = map[string]interface{}{
			"path":     path,
			"writable": ok,
		}
	}

	if writable == 0 {
		return "FAIL", "Нет прав на запись ни в одну временную директорию", details
	}
	if writable < len(paths) {
		return "WARN", fmt.Sprintf("Запись доступна в %d из %d директорий", writable, len(paths)), details
	}

	return "PASS", "Права на запись и удаление в порядке", details
}

func (dr *DiagnosticsRunner) testPaths() (string, string, interface{}) {
	checked := []string{os.TempDir()}
	if wd, err := os.Getwd(); err == nil {
		checked = append(checked, wd)
	}

	details := make([]map[string]interface{}, len(checked))
	allAccessible := true

	for i, path := range checked {
		accessible := true
		if _, err := os.Stat(path); err != nil {
			accessible = false
			allAccessible = false
		}
		details[i] = map[string]interface{}{
			"path":       path,
			"accessible": accessible,
		}
	}

	if allAccessible {
		return "PASS", "Все проверенные пути доступны", details
	}

	return "WARN", "Некоторые пути недоступны", details
}

func (dr *DiagnosticsRunner) testDisks() (string, string, interface{}) {
	info, err := GetDiskInfoForPath(os.TempDir())
	if err != nil {
		return "FAIL", fmt.Sprintf("Ошибка получения информации о дисках: %v", err), nil
	}

	freeGB := float64(info.FreeSize) / (1024 * 1024 * 1024)
	details := map[string]interface{}{
		"path":        info.Path,
		"total_gb":    float64(info.TotalSize) / (1024 * 1024 * 1024),
		"free_gb":     freeGB,
		"is_writable": info.IsWritable,
	}

	if !info.IsWritable {
		return "FAIL", fmt.Sprintf("Файловая система %s недоступна для записи", info.Path), details
	}
	if freeGB < 1.0 {
		return "WARN", fmt.Sprintf("Мало свободного места: %.1f GB", freeGB), details
	}

	return "PASS", fmt.Sprintf("Свободно %.1f GB, запись доступна", freeGB), details
}

func (dr *DiagnosticsRunner) testMemory() (string, string, interface{}) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return "WARN", fmt.Sprintf("Не удалось получить информацию о памяти: %v", err), nil
	}

	details := map[string]interface{}{
		"total_mb":      vm.Total / (1024 * 1024),
		"available_mb":  vm.Available / (1024 * 1024),
		"usage_percent": vm.UsedPercent,
	}

	if vm.UsedPercent > 90 {
		return "WARN", fmt.Sprintf("Высокое использование памяти: %.1f%%", vm.UsedPercent), details
	}

	return "PASS", fmt.Sprintf("Использование памяти в норме: %.1f%%", vm.UsedPercent), details
}

// testSelfErase прогоняет настоящее затирание на сгенерированном файле
func (dr *DiagnosticsRunner) testSelfErase(ctx context.Context) (string, string, interface{}) {
	dir, err := os.MkdirTemp("", "wipefile_selftest_")
	if err != nil {
		return "FAIL", fmt.Sprintf("Ошибка создания тестовой директории: %v", err), nil
	}
	defer os.RemoveAll(dir)

	details := map[string]interface{}{"dir": dir}

	selfTest := dr.selfTest
	if selfTest == nil {
		selfTest = builtinSelfTest
	}

	if err := selfTest(ctx, dir); err != nil {
		return "FAIL", fmt.Sprintf("Пробное затирание не пройдено: %v", err), details
	}

	return "PASS", "Пробное затирание пройдено успешно", details
}

// builtinSelfTest перезаписывает тестовый файл нулями, проверяет результат
// и удаляет его. Используется, когда настоящий движок не подключён.
func builtinSelfTest(ctx context.Context, dir string) error {
	path := filepath.Join(dir, "selftest.tmp")

	data := make([]byte, 4096)
	for i := range data {
		data[i] = byte(i % 256)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("ошибка записи тестового файла: %w", err)
	}

	file, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return fmt.Errorf("ошибка открытия тестового файла: %w", err)
	}

	zeros := make([]byte, len(data))
	if _, err := file.WriteAt(zeros, 0); err != nil {
		file.Close()
		return fmt.Errorf("ошибка перезаписи: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		return fmt.Errorf("ошибка синхронизации: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("ошибка закрытия: %w", err)
	}

	readBack, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("ошибка чтения после перезаписи: %w", err)
	}
	if !bytes.Equal(readBack, zeros) {
		return fmt.Errorf("содержимое файла не было перезаписано")
	}

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("ошибка удаления тестового файла: %w", err)
	}

	return nil
}

// collectEnvironmentInfo собирает информацию об окружении
func collectEnvironmentInfo() SystemEnvironment {
	env := SystemEnvironment{
		OSVersion:    runtime.GOOS,
		Architecture: runtime.GOARCH,
		CPUCount:     runtime.NumCPU(),
		GoVersion:    runtime.Version(),
	}

	if hostInfo, err := host.Info(); err == nil {
		env.OSVersion = fmt.Sprintf("%s %s", hostInfo.Platform, hostInfo.PlatformVersion)
		env.Kernel = hostInfo.KernelVersion
		env.Hostname = hostInfo.Hostname
	} else if hostname, err := os.Hostname(); err == nil {
		env.Hostname = hostname
	}

	if count, err := cpu.Counts(true); err == nil {
		env.CPUCount = count
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		env.TotalMemory = vm.Total
		env.AvailableMem = vm.Available
	}

	if user := os.Getenv("USER"); user != "" {
		env.Username = user
	} else {
		env.Username = os.Getenv("USERNAME")
	}

	return env
}

func calculateSummary(results []DiagnosticResult) DiagnosticSummary {
	summary := DiagnosticSummary{TotalTests: len(results)}

	for _, result := range results {
		switch result.Status {
		case "PASS":
			summary.Passed++
		case "FAIL":
			summary.Failed++
		case "WARN":
			summary.Warnings++
		}
	}

	return summary
}

func determineOverallStatus(summary DiagnosticSummary) string {
	if summary.Failed > 0 {
		return "CRITICAL"
	}
	if summary.Warnings > 0 {
		return "WARNING"
	}
	return "HEALTHY"
}

// SaveDiagnostics сохраняет диагностику в JSON файл
func SaveDiagnostics(diagnostics *SystemDiagnostics, outputPath string) error {
	if outputPath == "" {
		timestamp := diagnostics.StartTime.Format("20060102_150405")
		outputPath = filepath.Join(os.TempDir(), fmt.Sprintf("wipefile_diagnostics_%s.json", timestamp))
	}

	data, err := json.MarshalIndent(diagnostics, "", "  ")
	if err != nil {
		return fmt.Errorf("ошибка сериализации JSON: %w", err)
	}

	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		return fmt.Errorf("ошибка сохранения файла: %w", err)
	}

	return nil
}
