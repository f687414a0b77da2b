package wipe

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"wipefile_enterprise/internal/logging"
	"wipefile_enterprise/internal/system"
)

// Job одно задание затирания: список целей и параметры. Задание проходит
// ровно одно терминальное состояние (COMPLETED, CANCELLED или FAILED)
// и повторно не запускается.
type Job struct {
	id      string
	targets []string
	options JobOptions
	logger  *logging.EnterpriseLogger

	mu      sync.Mutex
	state   JobState
	result  *JobResult
	started bool
	cancel  context.CancelFunc

	done chan struct{}
}

// JobHandle управление запущенным заданием
type JobHandle struct {
	job *Job
}

// NewJob создает задание. Список целей копируется.
func NewJob(targets []string, options JobOptions, logger *logging.EnterpriseLogger) *Job {
	return &Job{
		id:      uuid.New().String(),
		targets: append([]string(nil), targets...),
		options: options,
		logger:  logger,
		state:   StatePending,
		done:    make(chan struct{}),
	}
}

// Submit запускает задание на выделенном воркере и возвращает handle.
// Колбэки вызываются синхронно на воркере; перенос в другой контекст
// исполнения - забота вызывающей стороны.
func (j *Job) Submit(ctx context.Context, onProgress ProgressFunc, onDone DoneFunc) (*JobHandle, error) {
	if len(j.targets) == 0 {
		return nil, fmt.Errorf("не указаны цели затирания")
	}

	j.mu.Lock()
	if j.started {
		j.mu.Unlock()
		return nil, fmt.Errorf("задание %s уже было запущено", j.id)
	}
	j.started = true
	jobCtx, cancel := context.WithCancel(ctx)
	j.cancel = cancel
	j.mu.Unlock()

	go j.run(jobCtx, onProgress, onDone)

	return &JobHandle{job: j}, nil
}

// Submit создает и запускает задание одним вызовом
func Submit(ctx context.Context, targets []string, options JobOptions, logger *logging.EnterpriseLogger, onProgress ProgressFunc, onDone DoneFunc) (*JobHandle, error) {
	return NewJob(targets, options, logger).Submit(ctx, onProgress, onDone)
}

// ID идентификатор задания
func (j *Job) ID() string { return j.id }

// State текущее состояние задания
func (j *Job) State() JobState {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state
}

// Result итог задания; nil до перехода в терминальное состояние
func (j *Job) Result() *JobResult {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.result
}

func (j *Job) setState(s JobState) {
	j.mu.Lock()
	j.state = s
	j.mu.Unlock()
}

func (j *Job) finish(result *JobResult) {
	j.mu.Lock()
	j.state = result.State
	j.result = result
	j.mu.Unlock()
	close(j.done)
}

// Cancel запрашивает кооперативную отмену. Идемпотентен: повторные
// вызовы и вызовы после завершения безопасны.
func (h *JobHandle) Cancel() {
	h.job.mu.Lock()
	cancel := h.job.cancel
	h.job.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// IsRunning сообщает, выполняется ли задание
func (h *JobHandle) IsRunning() bool {
	return h.job.State() == StateRunning
}

// ID идентификатор задания
func (h *JobHandle) ID() string { return h.job.id }

// State текущее состояние задания
func (h *JobHandle) State() JobState { return h.job.State() }

// Result итог задания; nil до завершения
func (h *JobHandle) Result() *JobResult { return h.job.Result() }

// Wait блокируется до терминального состояния задания или отмены ctx
func (h *JobHandle) Wait(ctx context.Context) (*JobResult, error) {
	select {
	case <-h.job.done:
		return h.job.Result(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// run - воркер задания. Цели обрабатываются строго последовательно
// в порядке, заданном вызывающей стороной.
func (j *Job) run(ctx context.Context, onProgress ProgressFunc, onDone DoneFunc) {
	start := time.Now()
	j.setState(StateRunning)

	j.logger.Log("INFO", "Запуск задания затирания",
		"job_id", j.id,
		"targets", len(j.targets),
		"method", j.options.Method.String(),
		"passes", j.options.Method.PassCount(),
		"delete_empty_dirs", j.options.DeleteEmptyDirs,
		"continue_on_error", j.options.ContinueOnError,
		"dry_run", j.options.DryRun)

	eraser := NewFileEraser(j.logger, j.options.ChunkSize, j.options.MaxSpeedMBps)

	treeOpts := TreeOptions{
		DeleteEmptyDirs: j.options.DeleteEmptyDirs,
		ContinueOnError: j.options.ContinueOnError,
		DryRun:          j.options.DryRun,
	}

	outcomes := make([]EraseOutcome, 0, len(j.targets))
	var firstErr, firstErrPath string
	var firstErrKind system.ErrorKind

	collect := func(out EraseOutcome) {
		outcomes = append(outcomes, out)
		if out.Status == OutcomeFailed && firstErr == "" {
			firstErr = out.Error
			firstErrPath = out.Path
			firstErrKind = out.Kind
		}
	}

	progress := JobProgress{JobID: j.id, TargetCount: len(j.targets)}
	passAdapter := func(pp PassProgress) {
		progress.CurrentPath = pp.Path
		progress.CurrentPass = pp.Pass
		progress.PassCount = pp.PassCount
		progress.PassBytes = pp.PassBytes
		progress.FileSize = pp.FileSize
		if onProgress != nil {
			onProgress(progress)
		}
	}

	cancelled := false

	for i, target := range j.targets {
		if ctx.Err() != nil {
			cancelled = true
			j.markNotProcessed(j.targets[i:], collect)
			break
		}

		progress.TargetIndex = i
		progress.CurrentPath = target

		err := j.processTarget(ctx, eraser, target, treeOpts, collect, passAdapter)
		if err == nil {
			continue
		}

		// Явная отмена приоритетнее fail-fast
		if errors.Is(err, ErrCancelled) || ctx.Err() != nil {
			cancelled = true
			j.markNotProcessed(j.targets[i+1:], collect)
			break
		}

		if !j.options.ContinueOnError {
			j.markNotProcessed(j.targets[i+1:], collect)
			break
		}
	}

	result := j.buildResult(ctx, start, outcomes, cancelled, firstErr, firstErrPath, firstErrKind)
	j.finish(result)

	j.logger.Log("INFO", "Задание затирания завершено",
		"job_id", j.id,
		"state", string(result.State),
		"succeeded", result.Succeeded,
		"failed", result.Failed,
		"skipped", result.Skipped,
		"bytes", result.BytesWiped,
		"speed_mbps", result.SpeedMBps)

	if onDone != nil {
		onDone(*result)
	}
}

// processTarget определяет тип цели на момент обработки и передает её
// файловому eraser или обходчику дерева. Исчезнувшая цель - не ошибка.
// Тип берётся через Lstat: симлинк, переданный как цель, не разыменовывается,
// удаляется только сама запись.
func (j *Job) processTarget(ctx context.Context, eraser *FileEraser, target string, treeOpts TreeOptions, collect TreeEntryFunc, passAdapter PassProgressFunc) error {
	info, err := os.Lstat(target)
	if err != nil {
		if os.IsNotExist(err) {
			collect(EraseOutcome{Path: target, Status: OutcomeSkipped})
			j.logger.Log("INFO", "Цель отсутствует, пропущена", "path", target)
			return nil
		}
		collect(failedOutcome(target, false, 0, err))
		j.logger.Log("ERROR", "Ошибка доступа к цели", "path", target, "error", err.Error())
		if j.options.ContinueOnError {
			return nil
		}
		return err
	}

	switch {
	case info.IsDir():
		return eraser.EraseTree(ctx, target, j.options.Method, treeOpts, collect, passAdapter)

	case info.Mode().IsRegular():
		err = eraser.eraseTreeFile(ctx, target, j.options.Method, treeOpts, collect, passAdapter)

	default:
		err = eraser.removeEntry(target, treeOpts, collect)
	}

	if err != nil && j.options.ContinueOnError && !errors.Is(err, ErrCancelled) {
		return nil
	}
	return err
}

// markNotProcessed фиксирует цели, до которых обработка не дошла
func (j *Job) markNotProcessed(targets []string, collect TreeEntryFunc) {
	for _, t := range targets {
		collect(EraseOutcome{Path: t, Status: OutcomeNotProcessed})
	}
}

func (j *Job) buildResult(ctx context.Context, start time.Time, outcomes []EraseOutcome, cancelled bool, firstErr, firstErrPath string, firstErrKind system.ErrorKind) *JobResult {
	result := &JobResult{
		JobID:          j.id,
		FirstError:     firstErr,
		FirstErrorPath: firstErrPath,
		FirstErrorKind: firstErrKind,
		Duration:       time.Since(start),
		Outcomes:       outcomes,
	}

	for _, out := range outcomes {
		switch out.Status {
		case OutcomeErased:
			result.Succeeded++
		case OutcomeSkipped:
			result.Skipped++
		case OutcomeFailed:
			result.Failed++
		}
		result.BytesWiped += out.Bytes
	}

	switch {
	case cancelled:
		result.State = StateCancelled
		if ctx.Err() == context.DeadlineExceeded {
			result.Warning = "Операция прервана по таймауту"
		} else {
			result.Warning = "Операция отменена пользователем"
		}
	case firstErr != "":
		result.State = StateFailed
	default:
		result.State = StateCompleted
	}

	if sec := result.Duration.Seconds(); sec > 0 {
		result.SpeedMBps = float64(result.BytesWiped) / (1024 * 1024) / sec
	}

	return result
}
