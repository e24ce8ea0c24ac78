// Package report validates the output destination against the search set
// and persists the consolidated result table as a workbook.
package report

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"github.com/dkotenko/xlfind/internal/types"
)

// SheetName is the single sheet of the report workbook.
const SheetName = "Результаты"

// DefaultColumnWidth keeps the report readable without per-column fitting.
const DefaultColumnWidth = 30

// ErrInvalidDestination marks pre-flight rejections of the output path.
var ErrInvalidDestination = errors.New("недопустимый путь результатов")

// WriteError is the post-scan persistence failure. Locked means the
// destination is held open by another process.
type WriteError struct {
	Locked bool
	Path   string
	Err    error
}

func (e *WriteError) Error() string {
	if e.Locked {
		return fmt.Sprintf("Ошибка: Файл результатов %s занят. Закройте его и повторите попытку.", e.Path)
	}
	return fmt.Sprintf("Ошибка при сохранении результатов: %v", e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// ValidateDestination rejects an output path inside the source directory or
// equal to any discovered source file. It runs before any scanning and does
// not trust the front-end's own validation.
func ValidateDestination(outputPath, sourceDir string, files []string) error {
	outAbs, err := filepath.Abs(outputPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDestination, err)
	}
	dirAbs, err := filepath.Abs(sourceDir)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDestination, err)
	}

	if filepath.Dir(outAbs) == dirAbs {
		return fmt.Errorf("%w: файл результатов нельзя сохранять в той же папке, где находятся исходные файлы", ErrInvalidDestination)
	}

	for _, file := range files {
		fileAbs, err := filepath.Abs(file)
		if err != nil {
			continue
		}
		if fileAbs == outAbs {
			return fmt.Errorf("%w: файл результатов совпадает с исходным файлом: %s", ErrInvalidDestination, filepath.Base(file))
		}
	}
	return nil
}

// Write persists the outcome as one table: a header row, every ResultRow,
// then every ErrorRow (errors always sort after genuine matches). Column
// headers are the searched values column, one column per requested output
// column, and the source locator. Parent directories are created as needed
// and the workbook lands via a temp file plus rename so a failed write never
// leaves a truncated report.
func Write(req types.SearchRequest, outcome *types.ScanOutcome, columnWidth float64) error {
	if columnWidth <= 0 {
		columnWidth = DefaultColumnWidth
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return &WriteError{Path: req.OutputPath, Err: err}
	}

	header := []any{"Искомые значения"}
	for _, col := range req.OutputColumns {
		header = append(header, fmt.Sprintf("Столбец %d", col))
	}
	header = append(header, "Файл источника")

	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return &WriteError{Path: req.OutputPath, Err: err}
	}

	rowNum := 2
	writeRow := func(first string, values []string, source string) error {
		row := make([]any, 0, len(values)+2)
		row = append(row, first)
		for _, v := range values {
			row = append(row, v)
		}
		row = append(row, source)
		cell, _ := excelize.CoordinatesToCellName(1, rowNum)
		rowNum++
		return f.SetSheetRow(SheetName, cell, &row)
	}

	for _, r := range outcome.Results {
		if err := writeRow(r.Term, r.Values, r.Source); err != nil {
			return &WriteError{Path: req.OutputPath, Err: err}
		}
	}
	for _, r := range outcome.Errors {
		if err := writeRow(r.Message, r.Values, r.Source); err != nil {
			return &WriteError{Path: req.OutputPath, Err: err}
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(header))
	if err != nil {
		return &WriteError{Path: req.OutputPath, Err: err}
	}
	if err := f.SetColWidth(SheetName, "A", lastCol, columnWidth); err != nil {
		return &WriteError{Path: req.OutputPath, Err: err}
	}

	return save(f, req.OutputPath)
}

// save writes the workbook next to the destination and renames it into
// place, so readers never observe a partial report.
func save(f *excelize.File, outputPath string) error {
	dir := filepath.Dir(outputPath)
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return classify(outputPath, err)
		}
	}

	tmp, err := os.CreateTemp(dir, ".xlfind-*.xlsx")
	if err != nil {
		return classify(outputPath, err)
	}
	tmpPath := tmp.Name()
	tmp.Close()

	if err := f.SaveAs(tmpPath); err != nil {
		os.Remove(tmpPath)
		return classify(outputPath, err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return classify(outputPath, err)
	}
	if err := os.Rename(tmpPath, outputPath); err != nil {
		os.Remove(tmpPath)
		return classify(outputPath, err)
	}
	return nil
}

func classify(path string, err error) error {
	return &WriteError{
		Locked: errors.Is(err, fs.ErrPermission),
		Path:   path,
		Err:    err,
	}
}
