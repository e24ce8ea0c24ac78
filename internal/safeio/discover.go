package safeio

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Discover lists the spreadsheet files directly inside dir, in name order.
// Editor lock files (the "~$" companions of open documents), directories and
// other non-regular entries are skipped. Directory-level problems are
// reported through status and an empty list is returned, so the caller can
// still finish with its own "nothing to scan" outcome.
func Discover(dir string, status func(string)) []string {
	if status == nil {
		status = func(string) {}
	}

	info, err := os.Stat(dir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		status(fmt.Sprintf("Директория не существует: %s", dir))
		return nil
	case err != nil:
		status(fmt.Sprintf("Ошибка при чтении директории: %v", err))
		return nil
	case !info.IsDir():
		status(fmt.Sprintf("Указанный путь не является директорией: %s", dir))
		return nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			status(fmt.Sprintf("Нет доступа к директории: %s", dir))
		} else {
			status(fmt.Sprintf("Ошибка при чтении директории: %v", err))
		}
		return nil
	}

	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, LockMarkerPrefix) {
			status(fmt.Sprintf("Пропущен временный файл Excel: %s", name))
			continue
		}
		if !entry.Type().IsRegular() {
			continue
		}
		if IsSpreadsheet(name) {
			files = append(files, filepath.Join(dir, name))
		}
	}

	// os.ReadDir yields entries in name order, so discovery is deterministic.
	return files
}
