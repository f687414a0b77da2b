package wipe

import (
	"time"

	"wipefile_enterprise/internal/system"
)

// JobState состояние задания затирания
type JobState string

const (
	StatePending   JobState = "PENDING"
	StateRunning   JobState = "RUNNING"
	StateCompleted JobState = "COMPLETED"
	StateCancelled JobState = "CANCELLED"
	StateFailed    JobState = "FAILED"
)

// OutcomeStatus статус обработки одной цели
type OutcomeStatus string

const (
	OutcomeErased       OutcomeStatus = "ERASED"
	OutcomeSkipped      OutcomeStatus = "SKIPPED"
	OutcomeFailed       OutcomeStatus = "FAILED"
	OutcomeNotProcessed OutcomeStatus = "NOT_PROCESSED"
)

// EraseOutcome результат обработки одной цели (файла или директории)
type EraseOutcome struct {
	Path     string
	Status   OutcomeStatus
	IsDir    bool
	Bytes    uint64
	Passes   int
	Duration time.Duration
	Kind     system.ErrorKind // заполняется только для OutcomeFailed
	Error    string
}

// JobOptions параметры задания. Неизменяемы на всё время жизни задания.
type JobOptions struct {
	Method          ErasureMethod
	DeleteEmptyDirs bool
	ContinueOnError bool
	ChunkSize       int // 0 = DefaultChunkSize
	MaxSpeedMBps    float64
	DryRun          bool
}

// JobProgress снимок прогресса. Принадлежит воркеру задания,
// наружу отдаётся только копия.
type JobProgress struct {
	JobID       string
	TargetIndex int
	TargetCount int
	CurrentPath string
	CurrentPass int
	PassCount   int
	PassBytes   uint64
	FileSize    uint64
}

// JobResult итоговая сводка задания
type JobResult struct {
	JobID          string
	State          JobState
	Succeeded      int
	Failed         int
	Skipped        int
	FirstError     string
	FirstErrorPath string
	FirstErrorKind system.ErrorKind
	BytesWiped     uint64
	Duration       time.Duration
	SpeedMBps      float64
	Warning        string
	Outcomes       []EraseOutcome
}

// ProgressFunc вызывается синхронно на воркере после каждого чанка
type ProgressFunc func(JobProgress)

// DoneFunc вызывается один раз при переходе задания в терминальное состояние
type DoneFunc func(JobResult)
