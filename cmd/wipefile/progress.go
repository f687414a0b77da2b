package main

import (
	"fmt"
	"time"

	"wipefile_enterprise/internal/wipe"
)

// progressPrinter печатает прогресс задания одной обновляемой строкой.
// Колбэки приходят синхронно с воркера задания, поэтому состояние
// принтера не требует синхронизации.
type progressPrinter struct {
	startTime time.Time
	lastPrint time.Time
	printed   bool
}

func newProgressPrinter() *progressPrinter {
	return &progressPrinter{startTime: time.Now()}
}

// onProgress выводит состояние не чаще, чем раз в 200мс, чтобы не
// захлёбываться на мелких чанках
func (pp *progressPrinter) onProgress(p wipe.JobProgress) {
	now := time.Now()
	if pp.printed && now.Sub(pp.lastPrint) < 200*time.Millisecond && p.PassBytes < p.FileSize {
		return
	}
	pp.lastPrint = now
	pp.printed = true

	percent := 0.0
	if p.FileSize > 0 {
		percent = float64(p.PassBytes) / float64(p.FileSize) * 100
	}

	elapsed := time.Since(pp.startTime)

	fmt.Printf("\r[%d/%d] %s | Проход %d/%d | %.1f%% | Прошло: %02d:%02d:%02d",
		p.TargetIndex+1, p.TargetCount, p.CurrentPath,
		p.CurrentPass+1, p.PassCount, percent,
		int(elapsed.Hours()), int(elapsed.Minutes())%60, int(elapsed.Seconds())%60)
}

// finish переводит строку после последнего обновления прогресса
func (pp *progressPrinter) finish() {
	if pp.printed {
		fmt.Println()
	}
}
