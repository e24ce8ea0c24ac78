package safeio

import (
	"errors"
	"path/filepath"

	"github.com/gofrs/flock"
)

// ErrScanInProgress is returned when another process already holds the scan
// lock for the same scratch root.
var ErrScanInProgress = errors.New("поиск уже выполняется")

// ScanLock serializes scans sharing a scratch root. Scratch names are
// randomized so concurrent scans would not collide on files, but the lock
// keeps the "one scan at a time" assumption honest across processes.
type ScanLock struct {
	fl *flock.Flock
}

// AcquireScanLock takes the lock without blocking.
func (s *Scratch) AcquireScanLock() (*ScanLock, error) {
	fl := flock.New(filepath.Join(s.root, "xlfind.lock"))
	ok, err := fl.TryLock()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrScanInProgress
	}
	return &ScanLock{fl: fl}, nil
}

// Release drops the lock. Safe to call once per acquired lock.
func (l *ScanLock) Release() error {
	return l.fl.Unlock()
}
