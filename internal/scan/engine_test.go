package scan

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/dkotenko/xlfind/internal/match"
	"github.com/dkotenko/xlfind/internal/safeio"
	"github.com/dkotenko/xlfind/internal/types"
)

// writeWorkbook builds a fixture workbook; sheets maps sheet name to rows.
// Sheet order follows the order slice.
func writeWorkbook(t *testing.T, path string, order []string, sheets map[string][][]any) {
	t.Helper()

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName(f.GetSheetName(0), order[0]))
	for _, name := range order[1:] {
		_, err := f.NewSheet(name)
		require.NoError(t, err)
	}
	for name, rows := range sheets {
		for i, row := range rows {
			cell, err := excelize.CoordinatesToCellName(1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetSheetRow(name, cell, &row))
		}
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
}

func writeGarbage(path string) error {
	return os.WriteFile(path, []byte("not a workbook"), 0o644)
}

func newEngine(t *testing.T) *Engine {
	t.Helper()
	return &Engine{Scratch: safeio.NewScratch(t.TempDir())}
}

func baseRequest(dir string) types.SearchRequest {
	return types.SearchRequest{
		Dir:           dir,
		SearchColumn:  2,
		OutputColumns: []int{1, 2},
		Sheets:        types.SheetPolicy{Mode: types.SheetsFirst},
	}
}

func TestEngineFindsTokenMatches(t *testing.T) {
	dir := t.TempDir()
	writeWorkbook(t, filepath.Join(dir, "A.xlsx"), []string{"Sheet1"}, map[string][][]any{
		"Sheet1": {
			{"v1", "100"},
			{"v2", "штук: 100, 200"},
			{"v3", "110055"},
		},
	})

	req := baseRequest(dir)
	set := match.BuildSearchSet([]string{"100"})

	outcome := newEngine(t).Run(context.Background(), req, set, []string{filepath.Join(dir, "A.xlsx")})

	require.False(t, outcome.Cancelled)
	require.Empty(t, outcome.Errors)
	require.Len(t, outcome.Results, 2, "token match must hit the plain and the delimited cell, not the substring")

	require.Equal(t, types.ResultRow{
		Term:   "100",
		Values: []string{"v1", "100"},
		Source: "A.xlsx (лист: Sheet1)",
	}, outcome.Results[0])
	require.Equal(t, []string{"v2", "штук: 100, 200"}, outcome.Results[1].Values)
}

func TestEngineColumnOutOfRange(t *testing.T) {
	dir := t.TempDir()
	writeWorkbook(t, filepath.Join(dir, "narrow.xlsx"), []string{"Sheet1"}, map[string][][]any{
		"Sheet1": {{"only one column"}},
	})

	req := baseRequest(dir)
	req.SearchColumn = 5
	set := match.BuildSearchSet([]string{"100"})

	outcome := newEngine(t).Run(context.Background(), req, set, []string{filepath.Join(dir, "narrow.xlsx")})

	require.Empty(t, outcome.Results)
	require.Len(t, outcome.Errors, 1)
	require.Contains(t, outcome.Errors[0].Message, "нет столбца 5")
	require.Equal(t, "narrow.xlsx (лист: Sheet1)", outcome.Errors[0].Source)
	require.Equal(t, []string{"", ""}, outcome.Errors[0].Values)
	require.Equal(t, 1, outcome.FilesProcessed)
}

func TestEngineMissingSheets(t *testing.T) {
	dir := t.TempDir()
	writeWorkbook(t, filepath.Join(dir, "A.xlsx"), []string{"Sheet1"}, map[string][][]any{
		"Sheet1": {{"a", "100"}},
	})

	req := baseRequest(dir)
	req.Sheets = types.SheetPolicy{Mode: types.SheetsNamed, Names: []string{"Другой"}}
	set := match.BuildSearchSet([]string{"100"})

	outcome := newEngine(t).Run(context.Background(), req, set, []string{filepath.Join(dir, "A.xlsx")})

	require.Empty(t, outcome.Results)
	require.Len(t, outcome.Errors, 1)
	require.Contains(t, outcome.Errors[0].Message, "нет указанных листов")
}

func TestEngineCorruptFileDoesNotAbortBatch(t *testing.T) {
	dir := t.TempDir()
	broken := filepath.Join(dir, "broken.xlsx")
	require.NoError(t, writeGarbage(broken))
	good := filepath.Join(dir, "good.xlsx")
	writeWorkbook(t, good, []string{"Sheet1"}, map[string][][]any{
		"Sheet1": {{"a", "100"}},
	})

	req := baseRequest(dir)
	set := match.BuildSearchSet([]string{"100"})

	outcome := newEngine(t).Run(context.Background(), req, set, []string{broken, good})

	require.Len(t, outcome.Errors, 1)
	require.Contains(t, outcome.Errors[0].Message, "broken.xlsx")
	require.Len(t, outcome.Results, 1, "good file must still be scanned")
	require.Equal(t, 2, outcome.FilesProcessed)
}

func TestEngineLockedFileDoesNotHaltScan(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("file permissions do not restrict root")
	}

	dir := t.TempDir()
	locked := filepath.Join(dir, "locked.xlsx")
	writeWorkbook(t, locked, []string{"Sheet1"}, map[string][][]any{
		"Sheet1": {{"a", "100"}},
	})
	require.NoError(t, os.Chmod(locked, 0o000))
	good := filepath.Join(dir, "open.xlsx")
	writeWorkbook(t, good, []string{"Sheet1"}, map[string][][]any{
		"Sheet1": {{"b", "100"}},
	})

	req := baseRequest(dir)
	set := match.BuildSearchSet([]string{"100"})

	outcome := newEngine(t).Run(context.Background(), req, set, []string{locked, good})

	require.Equal(t, []string{"locked.xlsx"}, outcome.LockedFiles)
	require.Len(t, outcome.Errors, 1)
	require.Contains(t, outcome.Errors[0].Message, "занят другим процессом")
	require.Len(t, outcome.Results, 1, "the next file must still be scanned")
	require.Contains(t, outcome.Results[0].Source, "open.xlsx")
	require.Equal(t, 2, outcome.FilesProcessed)
}

func TestEngineSecondSheetScannedWithAll(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "multi.xlsx")
	writeWorkbook(t, path, []string{"Первый", "Второй"}, map[string][][]any{
		"Первый": {{"a", "nope"}},
		"Второй": {{"b", "100"}},
	})

	req := baseRequest(dir)
	set := match.BuildSearchSet([]string{"100"})

	// First-sheet policy must not see sheet two.
	outcome := newEngine(t).Run(context.Background(), req, set, []string{path})
	require.Empty(t, outcome.Results)

	req.Sheets = types.SheetPolicy{Mode: types.SheetsAll}
	outcome = newEngine(t).Run(context.Background(), req, set, []string{path})
	require.Len(t, outcome.Results, 1)
	require.Equal(t, "multi.xlsx (лист: Второй)", outcome.Results[0].Source)
}

func TestEngineDeterministic(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.xlsx", "b.xlsx"} {
		writeWorkbook(t, filepath.Join(dir, name), []string{"Sheet1"}, map[string][][]any{
			"Sheet1": {{"x", "100"}, {"y", "100"}},
		})
	}
	files := []string{filepath.Join(dir, "a.xlsx"), filepath.Join(dir, "b.xlsx")}

	req := baseRequest(dir)
	set := match.BuildSearchSet([]string{"100"})

	first := newEngine(t).Run(context.Background(), req, set, files)
	second := newEngine(t).Run(context.Background(), req, set, files)

	require.Equal(t, first.Results, second.Results)
	require.Equal(t, first.Errors, second.Errors)
}

func TestEngineCancellationKeepsPartialResults(t *testing.T) {
	dir := t.TempDir()
	var files []string
	for _, name := range []string{"1.xlsx", "2.xlsx", "3.xlsx"} {
		path := filepath.Join(dir, name)
		writeWorkbook(t, path, []string{"Sheet1"}, map[string][][]any{
			"Sheet1": {{"val", "100"}},
		})
		files = append(files, path)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	engine := newEngine(t)
	engine.Status = func(msg string) {
		// Stop as soon as the second file starts.
		if strings.Contains(msg, "2.xlsx") {
			cancel()
		}
	}

	req := baseRequest(dir)
	set := match.BuildSearchSet([]string{"100"})

	outcome := engine.Run(ctx, req, set, files)

	require.True(t, outcome.Cancelled)
	require.Len(t, outcome.Results, 1, "only the first file's matches survive")
	require.Contains(t, outcome.Results[0].Source, "1.xlsx")
}

func TestEngineProgressMonotonic(t *testing.T) {
	dir := t.TempDir()
	var files []string
	for _, name := range []string{"1.xlsx", "2.xlsx"} {
		path := filepath.Join(dir, name)
		writeWorkbook(t, path, []string{"Sheet1"}, map[string][][]any{
			"Sheet1": {{"val", "100"}},
		})
		files = append(files, path)
	}

	engine := newEngine(t)
	var percents []int
	engine.Progress = func(p int) { percents = append(percents, p) }

	req := baseRequest(dir)
	engine.Run(context.Background(), req, match.BuildSearchSet([]string{"100"}), files)

	require.Equal(t, []int{0, 50, 100}, percents)
}
