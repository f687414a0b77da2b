package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"wipefile_enterprise/internal/config"
)

// Enterprise логгер с аудитом. Пишет в консоль и, если настроено,
// в файл журнала. Без verbose в консоль попадают только ERROR и FATAL,
// файл получает все записи начиная с настроенного уровня.
type EnterpriseLogger struct {
	zl      *zap.Logger
	file    *os.File
	level   zapcore.Level
	verbose bool
}

func NewEnterpriseLogger(cfg *config.Config, verbose bool) (*EnterpriseLogger, error) {
	level := parseLevel(cfg.Logging.Level)

	consoleLevel := zapcore.ErrorLevel
	if verbose {
		consoleLevel = level
	}

	encoder := newEncoder(cfg.Logging.Structured)

	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), consoleLevel),
	}

	l := &EnterpriseLogger{
		level:   level,
		verbose: verbose,
	}

	// Автоматическое создание директории для логов
	if cfg.Logging.File != "" {
		logDir := filepath.Dir(cfg.Logging.File)
		if err := os.MkdirAll(logDir, 0755); err != nil {
			// Если не можем создать директорию, используем stdout
			fmt.Printf("[WARN] Не удалось создать директорию логов %s: %v\n", logDir, err)
			fmt.Printf("[WARN] Логи будут выводиться в stdout\n")
		} else {
			f, err := os.OpenFile(cfg.Logging.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
			if err != nil {
				fmt.Printf("[WARN] Не удалось открыть файл логов %s: %v\n", cfg.Logging.File, err)
				fmt.Printf("[WARN] Логи будут выводиться в stdout\n")
			} else {
				l.file = f
				cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(f), level))
			}
		}
	}

	l.zl = zap.New(zapcore.NewTee(cores...))
	return l, nil
}

// Log записывает сообщение с уровня level и парами ключ-значение
func (l *EnterpriseLogger) Log(level, message string, fields ...interface{}) {
	zfields := make([]zap.Field, 0, len(fields)/2)
	for i := 0; i+1 < len(fields); i += 2 {
		key, ok := fields[i].(string)
		if !ok {
			key = fmt.Sprintf("field%d", i)
		}
		zfields = append(zfields, zap.Any(key, fields[i+1]))
	}

	switch strings.ToUpper(level) {
	case "DEBUG":
		l.zl.Debug(message, zfields...)
	case "WARN":
		l.zl.Warn(message, zfields...)
	case "ERROR":
		l.zl.Error(message, zfields...)
	case "FATAL":
		// FATAL не завершает процесс: решение об exit code принимает main
		l.zl.Error(message, append(zfields, zap.Bool("fatal", true))...)
	default:
		l.zl.Info(message, zfields...)
	}
}

func (l *EnterpriseLogger) Close() error {
	// Sync возвращает ошибку для stdout на части платформ, игнорируется
	_ = l.zl.Sync()
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

// newEncoder: structured=true даёт JSON для SIEM-систем, иначе
// человекочитаемый консольный формат
func newEncoder(structured bool) zapcore.Encoder {
	if structured {
		encCfg := zap.NewProductionEncoderConfig()
		encCfg.TimeKey = "ts"
		encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		return zapcore.NewJSONEncoder(encCfg)
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05")
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewConsoleEncoder(encCfg)
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return zapcore.DebugLevel
	case "WARN":
		return zapcore.WarnLevel
	case "ERROR":
		return zapcore.ErrorLevel
	case "FATAL":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}
