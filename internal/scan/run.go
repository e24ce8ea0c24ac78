package scan

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dkotenko/xlfind/internal/match"
	"github.com/dkotenko/xlfind/internal/report"
	"github.com/dkotenko/xlfind/internal/safeio"
	"github.com/dkotenko/xlfind/internal/types"
)

// Callbacks are the one-way notifications to the front-end. Either field
// may be nil.
type Callbacks struct {
	Progress func(percent int)
	Status   func(message string)
}

// Result is the single terminal notification of a scan: the onFinished
// analogue. Exactly one Result is produced per Run call.
type Result struct {
	Success bool
	Message string
}

// Runner owns the long-lived pieces a scan needs.
type Runner struct {
	Scratch     *safeio.Scratch
	ColumnWidth float64
}

// Run executes the whole pipeline: destination validation, term expansion,
// the sequential file scan and the report write. Per-file and per-sheet
// problems become rows in the report; only pre-flight validation and
// persistence failures produce a failed Result.
func (r *Runner) Run(ctx context.Context, req types.SearchRequest, cb Callbacks) (res Result) {
	defer func() {
		if p := recover(); p != nil {
			res = Result{Success: false, Message: fmt.Sprintf("Критическая ошибка: %v", p)}
		}
	}()

	status := cb.Status
	if status == nil {
		status = func(string) {}
	}

	status("Поиск Excel файлов...")
	files := safeio.Discover(req.Dir, status)

	if err := report.ValidateDestination(req.OutputPath, req.Dir, files); err != nil {
		return Result{Success: false, Message: fmt.Sprintf("Ошибка пути: %v", err)}
	}

	if len(files) == 0 {
		return Result{Success: false, Message: ErrNoFiles.Error()}
	}
	status(fmt.Sprintf("Найдено %d Excel файлов", len(files)))

	set := match.BuildSearchSet(req.Terms)
	if len(set) == 0 {
		return Result{Success: false, Message: ErrNoValidTerms.Error()}
	}

	lock, err := r.Scratch.AcquireScanLock()
	if err != nil {
		if errors.Is(err, safeio.ErrScanInProgress) {
			return Result{Success: false, Message: "Поиск уже выполняется"}
		}
		return Result{Success: false, Message: fmt.Sprintf("Критическая ошибка: %v", err)}
	}
	defer lock.Release()

	engine := &Engine{Scratch: r.Scratch, Progress: cb.Progress, Status: cb.Status}
	outcome := engine.Run(ctx, req, set, files)

	return r.finish(req, outcome, status)
}

// finish writes the report when there is anything to write and composes the
// terminal message: match count, error count and the locked-file list, or
// the distinct interrupted wording when the scan was cancelled.
func (r *Runner) finish(req types.SearchRequest, outcome *types.ScanOutcome, status func(string)) Result {
	lockedInfo := ""
	if len(outcome.LockedFiles) > 0 {
		lockedInfo = fmt.Sprintf("\n\nЗанятые файлы (%d):\n%s",
			len(outcome.LockedFiles), strings.Join(outcome.LockedFiles, "\n"))
	}

	if len(outcome.Results) == 0 && len(outcome.Errors) == 0 {
		if outcome.Cancelled {
			return Result{Success: true, Message: "Поиск прерван пользователем. Совпадений не найдено" + lockedInfo}
		}
		return Result{Success: true, Message: "Совпадений не найдено" + lockedInfo}
	}

	if err := report.Write(req, outcome, r.ColumnWidth); err != nil {
		return Result{Success: false, Message: err.Error()}
	}

	status(fmt.Sprintf("Найдено %d совпадений, ошибок: %d, занятых файлов: %d",
		len(outcome.Results), len(outcome.Errors), len(outcome.LockedFiles)))

	head := "Поиск завершен."
	if outcome.Cancelled {
		head = "Поиск прерван пользователем."
	}
	message := fmt.Sprintf("%s\nНайдено: %d совпадений\nОшибок: %d%s",
		head, len(outcome.Results), len(outcome.Errors), lockedInfo)

	return Result{Success: true, Message: message}
}
