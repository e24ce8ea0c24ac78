// Package scan drives the whole search: it walks the discovered files
// sequentially, matches every cell of the target column against the search
// set, and accumulates result and error rows without letting one bad
// workbook abort the batch.
package scan

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dkotenko/xlfind/internal/match"
	"github.com/dkotenko/xlfind/internal/safeio"
	"github.com/dkotenko/xlfind/internal/types"
)

// Engine runs one scan over a fixed list of files. Progress and Status are
// optional one-way notifications to the front-end; both may be nil.
type Engine struct {
	Scratch  *safeio.Scratch
	Progress func(percent int)
	Status   func(message string)
}

func (e *Engine) status(format string, args ...any) {
	if e.Status != nil {
		e.Status(fmt.Sprintf(format, args...))
	}
}

// Run processes every file in order and returns the accumulated outcome.
// Cancellation is cooperative: the context is polled before each file and
// each row, and a cancelled scan keeps everything gathered so far.
func (e *Engine) Run(ctx context.Context, req types.SearchRequest, set []match.SearchTerm, files []string) *types.ScanOutcome {
	outcome := &types.ScanOutcome{}
	total := len(files)
	lastPercent := -1

	// Progress only moves at file boundaries, so recomputing per row would
	// re-emit the same value; duplicates are suppressed.
	progress := func(processed int) {
		if e.Progress == nil || total == 0 {
			return
		}
		percent := processed * 100 / total
		if percent != lastPercent {
			lastPercent = percent
			e.Progress(percent)
		}
	}

	for i, path := range files {
		if ctx.Err() != nil {
			e.status("Поиск прерван пользователем")
			outcome.Cancelled = true
			return outcome
		}

		name := filepath.Base(path)
		e.status("Обработка файла: %s", name)
		progress(i)

		if cancelled := e.scanFile(ctx, req, set, path, outcome); cancelled {
			e.status("Поиск прерван пользователем")
			outcome.Cancelled = true
			return outcome
		}

		outcome.FilesProcessed++
		progress(i + 1)
	}

	return outcome
}

// scanFile owns the workbook handle for one source file: it is opened,
// scanned and released before the next file starts, on every exit path.
// The return value reports cooperative cancellation mid-file.
func (e *Engine) scanFile(ctx context.Context, req types.SearchRequest, set []match.SearchTerm, path string, outcome *types.ScanOutcome) bool {
	name := filepath.Base(path)

	wb, err := e.Scratch.Open(path)
	if err != nil {
		var openErr *safeio.OpenError
		if errors.As(err, &openErr) && openErr.Kind == safeio.OpenLocked {
			outcome.LockedFiles = append(outcome.LockedFiles, name)
			e.recordError(outcome, fmt.Sprintf("Файл %s занят другим процессом", name), name, req)
			return false
		}
		e.recordError(outcome, err.Error(), name, req)
		return false
	}
	defer wb.Close()

	sheets := ResolveSheets(req.Sheets, wb.File.GetSheetList())
	if len(sheets) == 0 {
		e.recordError(outcome, fmt.Sprintf("В файле %s нет указанных листов", name), name, req)
		return false
	}

	for _, sheet := range sheets {
		rows, err := wb.File.GetRows(sheet)
		if err != nil {
			msg := fmt.Sprintf("Ошибка при обработке листа '%s' в файле %s: %v", sheet, name, err)
			e.recordError(outcome, msg, types.Locator(name, sheet), req)
			continue
		}
		if len(rows) == 0 {
			continue
		}

		// No header assumption: row 0 is data like every other row.
		width := 0
		for _, row := range rows {
			if len(row) > width {
				width = len(row)
			}
		}
		if req.SearchColumn > width {
			msg := fmt.Sprintf("В файле %s (лист '%s') нет столбца %d", name, sheet, req.SearchColumn)
			e.recordError(outcome, msg, types.Locator(name, sheet), req)
			continue
		}

		for _, row := range rows {
			if ctx.Err() != nil {
				return true
			}

			cell := cellAt(row, req.SearchColumn)
			if strings.TrimSpace(cell) == "" {
				continue
			}

			for _, term := range match.MatchTerms(cell, set) {
				values := make([]string, len(req.OutputColumns))
				for j, col := range req.OutputColumns {
					values[j] = cellAt(row, col)
				}
				outcome.Results = append(outcome.Results, types.ResultRow{
					Term:   term,
					Values: values,
					Source: types.Locator(name, sheet),
				})
			}
		}
	}

	return false
}

func (e *Engine) recordError(outcome *types.ScanOutcome, message, source string, req types.SearchRequest) {
	e.status("%s", message)
	outcome.Errors = append(outcome.Errors, types.ErrorRow{
		Message: message,
		Values:  types.BlankValues(len(req.OutputColumns)),
		Source:  source,
	})
}

// cellAt reads a 1-based column from a row, blank when the row is shorter.
func cellAt(row []string, col int) string {
	if col < 1 || col > len(row) {
		return ""
	}
	return row[col-1]
}
