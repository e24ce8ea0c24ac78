// Package safeio keeps the scan from ever touching a live spreadsheet: it
// filters out editor lock files during discovery, reads sources only through
// short-lived scratch copies, and refuses to delete anything that is not
// provably one of its own scratch files.
package safeio

import (
	"os"
	"path/filepath"
	"strings"
)

// ScratchPrefix names every scratch copy so deletion can verify provenance.
const ScratchPrefix = "excel_search_temp_"

// LockMarkerPrefix is the marker spreadsheet editors put on the companion
// file of an open document.
const LockMarkerPrefix = "~$"

// MaxFileSize is the default per-file ceiling; anything larger is rejected
// before copying.
const MaxFileSize = 500 * 1024 * 1024

var spreadsheetExts = map[string]bool{
	".xlsx": true,
	".xls":  true,
	".xlsm": true,
	".xlsb": true,
}

// IsSpreadsheet reports whether the file name carries a supported
// spreadsheet extension.
func IsSpreadsheet(name string) bool {
	return spreadsheetExts[strings.ToLower(filepath.Ext(name))]
}

// Scratch manages the directory scratch copies live in. The zero value is
// not usable; construct with NewScratch.
type Scratch struct {
	root        string
	maxFileSize int64
}

// NewScratch returns a Scratch rooted at dir, defaulting to the system temp
// directory when dir is empty. The per-file ceiling starts at MaxFileSize.
func NewScratch(dir string) *Scratch {
	if dir == "" {
		dir = os.TempDir()
	}
	return &Scratch{root: dir, maxFileSize: MaxFileSize}
}

// Root returns the scratch directory.
func (s *Scratch) Root() string { return s.root }

// SetMaxFileSize overrides the per-file ceiling. Non-positive values keep
// the current ceiling.
func (s *Scratch) SetMaxFileSize(n int64) {
	if n > 0 {
		s.maxFileSize = n
	}
}

// MaxFileSize returns the active per-file ceiling.
func (s *Scratch) MaxFileSize() int64 { return s.maxFileSize }

// IsSafeToDelete re-derives every precondition for removing a scratch copy
// instead of trusting that the path was constructed correctly: the path must
// resolve inside the scratch root, carry the scratch naming prefix, be a
// regular file, and have a spreadsheet extension. Any resolution failure
// answers false.
func (s *Scratch) IsSafeToDelete(path string) bool {
	if path == "" {
		return false
	}

	info, err := os.Lstat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}

	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return false
	}
	resolved, err = filepath.Abs(resolved)
	if err != nil {
		return false
	}

	root, err := filepath.EvalSymlinks(s.root)
	if err != nil {
		return false
	}
	root, err = filepath.Abs(root)
	if err != nil {
		return false
	}

	rel, err := filepath.Rel(root, resolved)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}

	name := filepath.Base(resolved)
	if !strings.HasPrefix(name, ScratchPrefix) {
		return false
	}
	return IsSpreadsheet(name)
}

// Remove deletes a scratch copy, but only after IsSafeToDelete allows it.
// Unsafe paths are left alone without error so cleanup never escalates a
// path-confusion bug into data loss.
func (s *Scratch) Remove(path string) error {
	if !s.IsSafeToDelete(path) {
		return nil
	}
	return os.Remove(path)
}
