package safeio

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// OpenKind classifies why a workbook could not be opened.
type OpenKind int

const (
	// OpenLocked: the source is held by another process or unreadable due
	// to permissions. The scan records the file as locked and continues.
	OpenLocked OpenKind = iota
	// OpenCorrupt: the scratch copy could not be parsed as a workbook.
	OpenCorrupt
	// OpenTooLarge: the source exceeds MaxFileSize.
	OpenTooLarge
)

// OpenError is the per-file failure of Open. It never aborts a scan.
type OpenError struct {
	Kind OpenKind
	File string
	Err  error
}

func (e *OpenError) Error() string {
	name := filepath.Base(e.File)
	switch e.Kind {
	case OpenLocked:
		return fmt.Sprintf("Файл %s занят другим процессом или недостаточно прав", name)
	case OpenTooLarge:
		return fmt.Sprintf("Файл %s слишком большой: %dMB", name, e.sizeMB())
	default:
		return fmt.Sprintf("Ошибка чтения файла %s: %v", name, e.Err)
	}
}

func (e *OpenError) Unwrap() error { return e.Err }

func (e *OpenError) sizeMB() int64 {
	info, err := os.Stat(e.File)
	if err != nil {
		return 0
	}
	return info.Size() / (1024 * 1024)
}

// Workbook is an open, isolated view of one source file. The excelize file
// is backed by a scratch copy, never by the source itself, so the source is
// released the moment the copy completes.
type Workbook struct {
	File    *excelize.File
	scratch *Scratch
	path    string
}

// ScratchPath exposes the backing copy's location, mainly for tests.
func (w *Workbook) ScratchPath() string { return w.path }

// Close releases the workbook and deletes its scratch copy. Safe to call on
// every exit path; deletion is guarded by IsSafeToDelete.
func (w *Workbook) Close() error {
	var closeErr error
	if w.File != nil {
		closeErr = w.File.Close()
		w.File = nil
	}
	if w.path != "" {
		if err := w.scratch.Remove(w.path); err != nil && closeErr == nil {
			closeErr = err
		}
		w.path = ""
	}
	return closeErr
}

// Open validates the source file, copies it byte-for-byte into the scratch
// root under a randomized name, and opens the copy. On any failure the
// scratch copy is removed before returning. Errors are always *OpenError.
func (s *Scratch) Open(path string) (*Workbook, error) {
	name := filepath.Base(path)

	if strings.HasPrefix(name, LockMarkerPrefix) {
		return nil, &OpenError{Kind: OpenCorrupt, File: path,
			Err: fmt.Errorf("файл %s является временным файлом Excel", name)}
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return nil, &OpenError{Kind: OpenLocked, File: path, Err: err}
		}
		return nil, &OpenError{Kind: OpenCorrupt, File: path,
			Err: fmt.Errorf("файл %s не существует", name)}
	}
	if info.Size() > s.maxFileSize {
		return nil, &OpenError{Kind: OpenTooLarge, File: path}
	}

	scratchName := ScratchPrefix + strings.ReplaceAll(uuid.NewString(), "-", "") + strings.ToLower(filepath.Ext(name))
	scratchPath := filepath.Join(s.root, scratchName)

	if err := copyFile(path, scratchPath); err != nil {
		_ = s.Remove(scratchPath)
		if errors.Is(err, fs.ErrPermission) {
			return nil, &OpenError{Kind: OpenLocked, File: path, Err: err}
		}
		return nil, &OpenError{Kind: OpenCorrupt, File: path, Err: err}
	}

	f, err := excelize.OpenFile(scratchPath)
	if err != nil {
		_ = s.Remove(scratchPath)
		return nil, &OpenError{Kind: OpenCorrupt, File: path, Err: err}
	}

	return &Workbook{File: f, scratch: s, path: scratchPath}, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
