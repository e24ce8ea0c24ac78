package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/dkotenko/xlfind/internal/types"
)

func TestValidateDestination(t *testing.T) {
	src := t.TempDir()
	other := t.TempDir()
	files := []string{
		filepath.Join(src, "a.xlsx"),
		filepath.Join(src, "b.xlsx"),
	}

	tests := []struct {
		name    string
		output  string
		wantErr bool
	}{
		{"Separate directory", filepath.Join(other, "out.xlsx"), false},
		{"Inside source directory", filepath.Join(src, "out.xlsx"), true},
		{"Equals a source file", filepath.Join(src, "b.xlsx"), true},
		{"Subdirectory of source is allowed", filepath.Join(src, "sub", "out.xlsx"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDestination(tt.output, src, files)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidDestination)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestWriteBuildsReportTable(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "out.xlsx")

	req := types.SearchRequest{
		OutputColumns: []int{1, 3},
		OutputPath:    out,
	}
	outcome := &types.ScanOutcome{
		Results: []types.ResultRow{
			{Term: "100", Values: []string{"v1", "v3"}, Source: "A.xlsx (лист: Sheet1)"},
		},
		Errors: []types.ErrorRow{
			{Message: "В файле B.xlsx нет указанных листов", Values: []string{"", ""}, Source: "B.xlsx"},
		},
	}

	require.NoError(t, Write(req, outcome, 0))

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()

	require.Equal(t, []string{SheetName}, f.GetSheetList())

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Equal(t, [][]string{
		{"Искомые значения", "Столбец 1", "Столбец 3", "Файл источника"},
		{"100", "v1", "v3", "A.xlsx (лист: Sheet1)"},
		{"В файле B.xlsx нет указанных листов", "", "", "B.xlsx"},
	}, rows)

	width, err := f.GetColWidth(SheetName, "A")
	require.NoError(t, err)
	require.InDelta(t, DefaultColumnWidth, width, 0.5)
}

func TestWriteReplacesExistingReportAtomically(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out.xlsx")
	require.NoError(t, os.WriteFile(out, []byte("stale"), 0o644))

	req := types.SearchRequest{OutputColumns: []int{1}, OutputPath: out}
	outcome := &types.ScanOutcome{
		Results: []types.ResultRow{{Term: "x", Values: []string{"1"}, Source: "A.xlsx (лист: Sheet1)"}},
	}

	require.NoError(t, Write(req, outcome, 0))

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "no temp files may be left behind")
}
