package types

import "fmt"

// SheetMode selects which sheets of a workbook are scanned.
type SheetMode int

const (
	SheetsFirst SheetMode = iota
	SheetsAll
	SheetsNamed
)

// SheetPolicy pairs a mode with the explicit names used by SheetsNamed.
type SheetPolicy struct {
	Mode  SheetMode
	Names []string
}

// SearchRequest carries everything a scan needs. Column indices are 1-based.
type SearchRequest struct {
	Terms         []string
	Dir           string
	SearchColumn  int
	OutputColumns []int
	OutputPath    string
	Sheets        SheetPolicy
}

type ResultRow struct {
	Term   string
	Values []string
	Source string
}

type ErrorRow struct {
	Message string
	Values  []string
	Source  string
}

// ScanOutcome is consumed once by the report writer and then discarded.
type ScanOutcome struct {
	Results        []ResultRow
	Errors         []ErrorRow
	LockedFiles    []string
	FilesProcessed int
	Cancelled      bool
}

// Locator formats the file+sheet origin attached to every row.
func Locator(fileName, sheetName string) string {
	return fmt.Sprintf("%s (лист: %s)", fileName, sheetName)
}

// BlankValues returns the placeholder cells an ErrorRow carries in place of
// the requested output columns.
func BlankValues(n int) []string {
	return make([]string, n)
}
