package wipe

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"wipefile_enterprise/internal/system"
)

// TreeOptions параметры рекурсивного затирания дерева
type TreeOptions struct {
	// DeleteEmptyDirs удалять ли директории после затирания их содержимого
	DeleteEmptyDirs bool
	// ContinueOnError не останавливать обход на первой ошибке
	ContinueOnError bool
	DryRun          bool
}

// TreeEntryFunc получает результат обработки каждого элемента дерева
type TreeEntryFunc func(EraseOutcome)

// EraseTree рекурсивно затирает дерево каталогов в post-order порядке:
// сначала содержимое, затем сама директория. Директория удаляется только
// когда она доказуемо пуста и только при включённом DeleteEmptyDirs.
// Скрытые элементы обрабатываются наравне с остальными. Символические
// ссылки не разыменовываются - удаляется только сама запись каталога,
// обход не может выйти за пределы дерева.
func (fe *FileEraser) EraseTree(ctx context.Context, root string, method ErasureMethod, opts TreeOptions, onEntry TreeEntryFunc, onProgress PassProgressFunc) error {
	info, err := os.Lstat(root)
	if err != nil {
		if os.IsNotExist(err) {
			emitOutcome(onEntry, EraseOutcome{Path: root, Status: OutcomeSkipped})
			return nil
		}
		out := failedOutcome(root, false, 0, err)
		emitOutcome(onEntry, out)
		if opts.ContinueOnError {
			return nil
		}
		return err
	}

	if !info.IsDir() {
		var err error
		if info.Mode().IsRegular() {
			err = fe.eraseTreeFile(ctx, root, method, opts, onEntry, onProgress)
		} else {
			// Симлинк или спецфайл в роли корня: цель не разыменовывается
			err = fe.removeEntry(root, opts, onEntry)
		}
		if err != nil && opts.ContinueOnError && !errors.Is(err, ErrCancelled) {
			return nil
		}
		return err
	}

	return fe.eraseTreeDir(ctx, root, method, opts, onEntry, onProgress)
}

// eraseTreeDir обрабатывает директорию: дети первыми, директория последней
func (fe *FileEraser) eraseTreeDir(ctx context.Context, dir string, method ErasureMethod, opts TreeOptions, onEntry TreeEntryFunc, onProgress PassProgressFunc) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		emitOutcome(onEntry, failedOutcome(dir, true, 0, err))
		fe.logger.Log("ERROR", "Ошибка чтения директории", "path", dir, "error", err.Error())
		if opts.ContinueOnError {
			return nil
		}
		return fmt.Errorf("ошибка чтения директории %s: %w", dir, err)
	}

	for _, entry := range entries {
		select {
		case <-ctx.Done():
			return ErrCancelled
		default:
		}

		path := filepath.Join(dir, entry.Name())

		switch {
		case entry.IsDir():
			if err := fe.eraseTreeDir(ctx, path, method, opts, onEntry, onProgress); err != nil {
				return err
			}

		case entry.Type().IsRegular():
			err := fe.eraseTreeFile(ctx, path, method, opts, onEntry, onProgress)
			if err != nil {
				if errors.Is(err, ErrCancelled) {
					return err
				}
				if !opts.ContinueOnError {
					return err
				}
			}

		default:
			// Симлинки и спецфайлы: перезаписывать нечего, удаляется
			// только запись каталога, цель ссылки не затрагивается
			if err := fe.removeEntry(path, opts, onEntry); err != nil && !opts.ContinueOnError {
				return err
			}
		}
	}

	if !opts.DeleteEmptyDirs {
		return nil
	}

	if opts.DryRun {
		fe.logger.Log("INFO", "DRY RUN: директория будет удалена", "path", dir)
		emitOutcome(onEntry, EraseOutcome{Path: dir, Status: OutcomeErased, IsDir: true})
		return nil
	}

	if err := os.Remove(dir); err != nil {
		emitOutcome(onEntry, failedOutcome(dir, true, 0, err))
		fe.logger.Log("ERROR", "Ошибка удаления директории", "path", dir, "error", err.Error())
		if opts.ContinueOnError {
			return nil
		}
		return fmt.Errorf("ошибка удаления директории %s: %w", dir, err)
	}

	emitOutcome(onEntry, EraseOutcome{Path: dir, Status: OutcomeErased, IsDir: true})
	fe.logger.Log("DEBUG", "Директория удалена", "path", dir)
	return nil
}

// eraseTreeFile затирает один файл дерева и формирует его итог
func (fe *FileEraser) eraseTreeFile(ctx context.Context, path string, method ErasureMethod, opts TreeOptions, onEntry TreeEntryFunc, onProgress PassProgressFunc) error {
	if opts.DryRun {
		var size uint64
		if info, err := os.Stat(path); err == nil {
			size = uint64(info.Size())
		}
		fe.logger.Log("INFO", "DRY RUN: файл будет затёрт", "path", path, "size", size, "passes", method.PassCount())
		emitOutcome(onEntry, EraseOutcome{
			Path:   path,
			Status: OutcomeErased,
			Bytes:  size * uint64(method.PassCount()),
			Passes: method.PassCount(),
		})
		return nil
	}

	start := time.Now()
	written, err := fe.EraseFile(ctx, path, method, onProgress)
	if err != nil {
		if errors.Is(err, ErrCancelled) {
			emitOutcome(onEntry, EraseOutcome{Path: path, Status: OutcomeNotProcessed, Bytes: written})
			return err
		}
		emitOutcome(onEntry, failedOutcome(path, false, written, err))
		fe.logger.Log("ERROR", "Ошибка затирания файла", "path", path, "error", err.Error())
		return err
	}

	emitOutcome(onEntry, EraseOutcome{
		Path:     path,
		Status:   OutcomeErased,
		Bytes:    written,
		Passes:   method.PassCount(),
		Duration: time.Since(start),
	})
	return nil
}

// removeEntry удаляет неперезаписываемый элемент дерева (симлинк, спецфайл)
func (fe *FileEraser) removeEntry(path string, opts TreeOptions, onEntry TreeEntryFunc) error {
	if opts.DryRun {
		fe.logger.Log("INFO", "DRY RUN: запись будет удалена", "path", path)
		emitOutcome(onEntry, EraseOutcome{Path: path, Status: OutcomeErased})
		return nil
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		emitOutcome(onEntry, failedOutcome(path, false, 0, err))
		fe.logger.Log("ERROR", "Ошибка удаления записи", "path", path, "error", err.Error())
		return fmt.Errorf("ошибка удаления записи %s: %w", path, err)
	}

	emitOutcome(onEntry, EraseOutcome{Path: path, Status: OutcomeErased})
	return nil
}

func emitOutcome(onEntry TreeEntryFunc, out EraseOutcome) {
	if onEntry != nil {
		onEntry(out)
	}
}

func failedOutcome(path string, isDir bool, bytes uint64, err error) EraseOutcome {
	return EraseOutcome{
		Path:   path,
		Status: OutcomeFailed,
		IsDir:  isDir,
		Bytes:  bytes,
		Kind:   system.ClassifyError(err),
		Error:  err.Error(),
	}
}
