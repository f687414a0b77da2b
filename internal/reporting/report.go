package reporting

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"wipefile_enterprise/internal/config"
	"wipefile_enterprise/internal/wipe"
)

// Report представляет JSON отчёт об одном запуске задания затирания
type Report struct {
	RunID       string                 `json:"run_id"`
	Version     string                 `json:"version"`
	Hostname    string                 `json:"hostname"`
	Timestamp   time.Time              `json:"timestamp"`
	Command     string                 `json:"command"`
	Config      map[string]interface{} `json:"config"`
	Method      string                 `json:"method"`
	Passes      int                    `json:"passes"`
	Profile     string                 `json:"profile,omitempty"`
	DryRun      bool                   `json:"dry_run"`
	MaxDuration string                 `json:"max_duration,omitempty"`
	State       string                 `json:"state"`
	Targets     []TargetReport         `json:"targets"`
	Summary     SummaryReport          `json:"summary"`
	ExitCode    int                    `json:"exit_code"`
	Duration    string                 `json:"duration"`
}

// TargetReport представляет итог обработки одной цели
type TargetReport struct {
	Path       string `json:"path"`
	Status     string `json:"status"`
	IsDir      bool   `json:"is_dir,omitempty"`
	BytesWiped uint64 `json:"bytes_wiped"`
	Passes     int    `json:"passes,omitempty"`
	Duration   string `json:"duration,omitempty"`
	ErrorKind  string `json:"error_kind,omitempty"`
	Error      string `json:"error,omitempty"`
}

// SummaryReport представляет сводную информацию по заданию
type SummaryReport struct {
	TotalEntries int     `json:"total_entries"`
	Erased       int     `json:"erased"`
	Skipped      int     `json:"skipped"`
	Failed       int     `json:"failed"`
	NotProcessed int     `json:"not_processed"`
	TotalBytes   uint64  `json:"total_bytes"`
	SpeedMBps    float64 `json:"speed_mbps"`
	SuccessRate  float64 `json:"success_rate"`
	FirstError   string  `json:"first_error,omitempty"`
	FirstErrPath string  `json:"first_error_path,omitempty"`
}

// GenerateReport генерирует отчёт о завершённом задании
func GenerateReport(result *wipe.JobResult, cfg *config.Config, command, version, profile string, dryRun bool, maxDuration time.Duration, exitCode int) *Report {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}

	report := &Report{
		RunID:     result.JobID,
		Version:   version,
		Hostname:  hostname,
		Timestamp: time.Now(),
		Command:   command,
		Config:    configToMap(cfg),
		Method:    cfg.Erase.Method,
		Profile:   profile,
		DryRun:    dryRun,
		State:     string(result.State),
		Targets:   make([]TargetReport, len(result.Outcomes)),
		ExitCode:  exitCode,
		Duration:  result.Duration.String(),
	}

	if method, err := wipe.MethodByName(cfg.Erase.Method); err == nil {
		report.Passes = method.PassCount()
	}

	if maxDuration > 0 {
		report.MaxDuration = maxDuration.String()
	}

	notProcessed := 0
	for i, out := range result.Outcomes {
		target := TargetReport{
			Path:       out.Path,
			Status:     string(out.Status),
			IsDir:      out.IsDir,
			BytesWiped: out.Bytes,
			Passes:     out.Passes,
			ErrorKind:  string(out.Kind),
			Error:      out.Error,
		}
		if out.Duration > 0 {
			target.Duration = out.Duration.String()
		}
		if out.Status == wipe.OutcomeNotProcessed {
			notProcessed++
		}
		report.Targets[i] = target
	}

	successRate := 0.0
	if len(result.Outcomes) > 0 {
		successRate = float64(result.Succeeded) / float64(len(result.Outcomes)) * 100
	}

	report.Summary = SummaryReport{
		TotalEntries: len(result.Outcomes),
		Erased:       result.Succeeded,
		Skipped:      result.Skipped,
		Failed:       result.Failed,
		NotProcessed: notProcessed,
		TotalBytes:   result.BytesWiped,
		SpeedMBps:    result.SpeedMBps,
		SuccessRate:  successRate,
		FirstError:   result.FirstError,
		FirstErrPath: result.FirstErrorPath,
	}

	return report
}

// SaveReport сохраняет отчёт в JSON файл и возвращает путь к нему
func SaveReport(report *Report, cfg *config.Config) (string, error) {
	if !cfg.Reporting.Enabled {
		return "", nil
	}

	// Создаем директорию для отчётов
	if err := os.MkdirAll(cfg.Reporting.LocalPath, 0755); err != nil {
		return "", fmt.Errorf("ошибка создания директории для отчётов: %w", err)
	}

	filename := fmt.Sprintf("wipefile_report_%s.json", report.Timestamp.Format("20060102_150405"))
	path := filepath.Join(cfg.Reporting.LocalPath, filename)

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("ошибка сериализации отчёта: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("ошибка записи отчёта: %w", err)
	}

	return path, nil
}

// configToMap преобразует Config в map для JSON сериализации
func configToMap(cfg *config.Config) map[string]interface{} {
	return map[string]interface{}{
		"security": map[string]interface{}{
			"require_confirmation": cfg.Security.RequireConfirmation,
			"allow_protected":      cfg.Security.AllowProtected,
			"protected_paths":      cfg.Security.ProtectedPaths,
		},
		"erase": map[string]interface{}{
			"method":            cfg.Erase.Method,
			"chunk_size":        cfg.Erase.ChunkSize,
			"delete_empty_dirs": cfg.Erase.DeleteEmptyDirs,
			"continue_on_error": cfg.Erase.ContinueOnError,
			"max_speed_mbps":    cfg.Erase.MaxSpeedMBps,
			"max_duration":      cfg.Erase.MaxDuration,
		},
		"clean": map[string]interface{}{
			"enabled":          cfg.Clean.Enabled,
			"include_paths":    cfg.Clean.IncludePaths,
			"exclude_paths":    cfg.Clean.ExcludePaths,
			"exclude_patterns": cfg.Clean.ExcludePatterns,
			"max_file_size":    cfg.Clean.MaxFileSize,
			"min_file_age":     cfg.Clean.MinFileAge,
		},
		"logging": map[string]interface{}{
			"level":      cfg.Logging.Level,
			"file":       cfg.Logging.File,
			"structured": cfg.Logging.Structured,
		},
		"reporting": map[string]interface{}{
			"enabled":    cfg.Reporting.Enabled,
			"local_path": cfg.Reporting.LocalPath,
			"format":     cfg.Reporting.Format,
		},
	}
}
