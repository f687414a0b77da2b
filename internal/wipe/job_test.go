package wipe

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wipefile_enterprise/internal/system"
)

func TestJobSingleFileLifecycle(t *testing.T) {
	logger := newTestLogger(t)

	dir := t.TempDir()
	path := writeTestFile(t, dir, "document.pdf", 10000, 0xD0)

	var snapshots []JobProgress
	doneCh := make(chan JobResult, 1)

	handle, err := Submit(context.Background(), []string{path},
		JobOptions{Method: SimpleOverwrite}, logger,
		func(p JobProgress) { snapshots = append(snapshots, p) },
		func(r JobResult) { doneCh <- r })
	require.NoError(t, err)

	result, err := handle.Wait(context.Background())
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, StateCompleted, result.State)
	assert.Equal(t, 1, result.Succeeded)
	assert.Zero(t, result.Failed)
	assert.Zero(t, result.Skipped)
	assert.Equal(t, uint64(10000), result.BytesWiped)
	assert.Empty(t, result.Warning)
	assert.NoFileExists(t, path)

	assert.NoError(t, uuid.Validate(handle.ID()), "job id must be a valid uuid")
	assert.False(t, handle.IsRunning())
	assert.Equal(t, StateCompleted, handle.State())

	done := <-doneCh
	assert.Equal(t, result.JobID, done.JobID)
	assert.Equal(t, StateCompleted, done.State)

	require.NotEmpty(t, snapshots)
	for _, p := range snapshots {
		assert.Equal(t, handle.ID(), p.JobID)
		assert.Equal(t, 0, p.TargetIndex)
		assert.Equal(t, 1, p.TargetCount)
		assert.Equal(t, path, p.CurrentPath)
		assert.Equal(t, uint64(10000), p.FileSize)
	}
	assert.Equal(t, uint64(10000), snapshots[len(snapshots)-1].PassBytes)
}

func TestJobMissingTargetSkipped(t *testing.T) {
	logger := newTestLogger(t)

	missing := filepath.Join(t.TempDir(), "already_gone.tmp")

	handle, err := Submit(context.Background(), []string{missing},
		JobOptions{Method: Dod3Pass}, logger, nil, nil)
	require.NoError(t, err)

	result, err := handle.Wait(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateCompleted, result.State, "absent target is success, not failure")
	assert.Equal(t, 1, result.Skipped)
	assert.Zero(t, result.Succeeded)
	assert.Zero(t, result.Failed)

	require.Len(t, result.Outcomes, 1)
	assert.Equal(t, OutcomeSkipped, result.Outcomes[0].Status)
}

func TestJobDirectoryTarget(t *testing.T) {
	logger := newTestLogger(t)

	root := filepath.Join(t.TempDir(), "workdir")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "empty"), 0755))
	writeTestFile(t, root, "a.dat", 1200, 0x0A)
	writeTestFile(t, root, "b.dat", 3400, 0x0B)

	handle, err := Submit(context.Background(), []string{root},
		JobOptions{Method: SimpleOverwrite, DeleteEmptyDirs: true}, logger, nil, nil)
	require.NoError(t, err)

	result, err := handle.Wait(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateCompleted, result.State)
	assert.Equal(t, 4, result.Succeeded, "2 files + nested dir + root dir")
	assert.Equal(t, uint64(4600), result.BytesWiped)
	assert.NoDirExists(t, root)
}

func TestJobFailFastAbortsBatch(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("ENOTDIR classification differs on windows")
	}

	logger := newTestLogger(t)
	dir := t.TempDir()

	good1 := writeTestFile(t, dir, "first.bin", 500, 0x01)
	blocker := writeTestFile(t, dir, "blocker", 10, 0x02)
	bad := filepath.Join(blocker, "leaf") // stat упирается в обычный файл
	good2 := writeTestFile(t, dir, "third.bin", 500, 0x03)

	handle, err := Submit(context.Background(), []string{good1, bad, good2},
		JobOptions{Method: SimpleOverwrite}, logger, nil, nil)
	require.NoError(t, err)

	result, err := handle.Wait(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateFailed, result.State)
	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, bad, result.FirstErrorPath)
	assert.NotEmpty(t, result.FirstError)
	assert.Equal(t, system.KindIoFailure, result.FirstErrorKind)

	require.Len(t, result.Outcomes, 3)
	assert.Equal(t, OutcomeErased, result.Outcomes[0].Status)
	assert.Equal(t, OutcomeFailed, result.Outcomes[1].Status)
	assert.Equal(t, OutcomeNotProcessed, result.Outcomes[2].Status,
		"targets after the failure are not touched")

	assert.NoFileExists(t, good1, "target before the failure is erased")

	// цель после сбоя осталась нетронутой
	data, readErr := os.ReadFile(good2)
	require.NoError(t, readErr)
	require.Len(t, data, 500)
	assert.Equal(t, byte(0x03), data[0])
}

func TestJobContinueOnErrorProcessesAll(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("ENOTDIR classification differs on windows")
	}

	logger := newTestLogger(t)
	dir := t.TempDir()

	good1 := writeTestFile(t, dir, "first.bin", 300, 0x01)
	blocker := writeTestFile(t, dir, "blocker", 10, 0x02)
	bad := filepath.Join(blocker, "leaf")
	good2 := writeTestFile(t, dir, "third.bin", 300, 0x03)

	handle, err := Submit(context.Background(), []string{good1, bad, good2},
		JobOptions{Method: SimpleOverwrite, ContinueOnError: true}, logger, nil, nil)
	require.NoError(t, err)

	result, err := handle.Wait(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateFailed, result.State, "first error is retained even in keep-going mode")
	assert.Equal(t, 2, result.Succeeded, "remaining targets are still processed")
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, bad, result.FirstErrorPath)

	assert.NoFileExists(t, good1)
	assert.NoFileExists(t, good2)
}

func TestJobCancelInterruptsAndMarksRemaining(t *testing.T) {
	logger := newTestLogger(t)
	dir := t.TempDir()

	// скорость ограничена, чтобы задание гарантированно не успело завершиться
	big := writeTestFile(t, dir, "big.bin", 256*1024, 0x11)
	other := writeTestFile(t, dir, "other.bin", 100, 0x22)

	var once sync.Once
	progressSeen := make(chan struct{})

	handle, err := Submit(context.Background(), []string{big, other},
		JobOptions{Method: Dod7Pass, MaxSpeedMBps: 2},
		logger,
		func(JobProgress) { once.Do(func() { close(progressSeen) }) },
		nil)
	require.NoError(t, err)

	select {
	case <-progressSeen:
	case <-time.After(10 * time.Second):
		t.Fatal("no progress reported")
	}
	handle.Cancel()

	result, err := handle.Wait(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateCancelled, result.State)
	assert.Contains(t, result.Warning, "отменена пользователем")
	assert.Zero(t, result.Succeeded)
	assert.Zero(t, result.Failed, "cancellation is not a failure")

	require.Len(t, result.Outcomes, 2)
	assert.Equal(t, OutcomeNotProcessed, result.Outcomes[0].Status)
	assert.Equal(t, OutcomeNotProcessed, result.Outcomes[1].Status)

	// прерванный файл остаётся на диске с прежним размером
	info, statErr := os.Stat(big)
	require.NoError(t, statErr)
	assert.Equal(t, int64(256*1024), info.Size())

	// до второй цели обработка не дошла
	data, readErr := os.ReadFile(other)
	require.NoError(t, readErr)
	assert.Equal(t, byte(0x22), data[0])

	// повторная отмена безопасна
	handle.Cancel()
	handle.Cancel()
	assert.Equal(t, StateCancelled, handle.State())
}

func TestJobTimeoutReportedAsCancellation(t *testing.T) {
	logger := newTestLogger(t)
	dir := t.TempDir()

	big := writeTestFile(t, dir, "slow.bin", 512*1024, 0x33)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	handle, err := Submit(ctx, []string{big},
		JobOptions{Method: SimpleOverwrite, MaxSpeedMBps: 0.5}, logger, nil, nil)
	require.NoError(t, err)

	result, err := handle.Wait(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateCancelled, result.State)
	assert.Contains(t, result.Warning, "таймауту")
	assert.FileExists(t, big, "interrupted file is never deleted")
}

func TestJobDryRunLeavesEverything(t *testing.T) {
	logger := newTestLogger(t)

	root := filepath.Join(t.TempDir(), "preview")
	require.NoError(t, os.MkdirAll(root, 0755))
	file := writeTestFile(t, root, "ledger.db", 2048, 0x99)

	handle, err := Submit(context.Background(), []string{root},
		JobOptions{Method: Dod3Pass, DeleteEmptyDirs: true, DryRun: true}, logger, nil, nil)
	require.NoError(t, err)

	result, err := handle.Wait(context.Background())
	require.NoError(t, err)

	assert.Equal(t, StateCompleted, result.State)
	assert.Equal(t, 2, result.Succeeded, "file + root dir reported as would-be erased")
	assert.Equal(t, uint64(2048*3), result.BytesWiped, "projected bytes for all passes")

	assert.DirExists(t, root)
	data, readErr := os.ReadFile(file)
	require.NoError(t, readErr)
	assert.Equal(t, byte(0x99), data[0])
}

func TestJobSubmitValidation(t *testing.T) {
	logger := newTestLogger(t)

	_, err := Submit(context.Background(), nil, JobOptions{Method: SimpleOverwrite}, logger, nil, nil)
	assert.Error(t, err, "empty target list is rejected")

	dir := t.TempDir()
	path := writeTestFile(t, dir, "once.bin", 64, 0x01)

	job := NewJob([]string{path}, JobOptions{Method: SimpleOverwrite}, logger)
	handle, err := job.Submit(context.Background(), nil, nil)
	require.NoError(t, err)

	_, err = job.Submit(context.Background(), nil, nil)
	assert.Error(t, err, "job must not be restartable")

	_, err = handle.Wait(context.Background())
	require.NoError(t, err)
}

func TestJobWaitHonorsContext(t *testing.T) {
	logger := newTestLogger(t)
	dir := t.TempDir()

	big := writeTestFile(t, dir, "lingering.bin", 512*1024, 0x44)

	handle, err := Submit(context.Background(), []string{big},
		JobOptions{Method: SimpleOverwrite, MaxSpeedMBps: 0.5}, logger, nil, nil)
	require.NoError(t, err)

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer waitCancel()

	result, err := handle.Wait(waitCtx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Nil(t, result)

	// задание продолжает жить после истёкшего Wait
	handle.Cancel()
	result, err = handle.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateCancelled, result.State)
}
