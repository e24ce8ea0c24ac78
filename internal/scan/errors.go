package scan

import "errors"

// ErrNoValidTerms means every supplied term was empty after trimming; the
// scan aborts before any file I/O.
var ErrNoValidTerms = errors.New("нет валидных значений для поиска")

// ErrNoFiles means discovery produced nothing to scan.
var ErrNoFiles = errors.New("в указанной директории не найдено Excel файлов")
