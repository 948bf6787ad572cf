// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const (
	lockFile     = ".quality-config.lock"
	lockInfoFile = ".quality-config.lock.info"
)

// LockInfo identifies the process holding the advisory lock.
type LockInfo struct {
	PID       int       `json:"pid"`
	Hostname  string    `json:"hostname"`
	StartedAt time.Time `json:"started_at"`
}

// LockedError reports that another invocation holds the project lock.
type LockedError struct {
	Info *LockInfo
}

func (e *LockedError) Error() string {
	if e.Info == nil {
		return "project is locked by another gate-engine invocation"
	}
	return fmt.Sprintf("project is locked by pid %d on %s (since %s)",
		e.Info.PID, e.Info.Hostname, e.Info.StartedAt.Format(time.RFC3339))
}

// Lock is an advisory exclusive lock on a project's quality state. Every
// mutating command takes it so that two concurrent invocations fail
// loudly instead of corrupting the config or baseline files.
type Lock struct {
	fileLock *flock.Flock
	infoPath string
}

// AcquireLock takes the project lock non-blocking. On contention it
// returns a LockedError carrying the holder's info when readable.
//
// The holder info lives in a sidecar file rather than the lock file
// itself: the flock holds the lock file's descriptor exclusively on some
// platforms.
func AcquireLock(root string) (*Lock, error) {
	lockPath := filepath.Join(root, lockFile)
	infoPath := filepath.Join(root, lockInfoFile)

	fileLock := flock.New(lockPath)
	locked, err := fileLock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquiring project lock: %w", err)
	}
	if !locked {
		info, _ := readLockInfo(infoPath)
		return nil, &LockedError{Info: info}
	}

	hostname, _ := os.Hostname()
	info := LockInfo{PID: os.Getpid(), Hostname: hostname, StartedAt: time.Now()}
	data, err := json.Marshal(info)
	if err != nil {
		fileLock.Unlock()
		return nil, fmt.Errorf("marshaling lock info: %w", err)
	}
	if err := os.WriteFile(infoPath, data, 0o644); err != nil {
		fileLock.Unlock()
		return nil, fmt.Errorf("writing lock info: %w", err)
	}

	return &Lock{fileLock: fileLock, infoPath: infoPath}, nil
}

// Release drops the lock and removes the lock files best-effort.
func (l *Lock) Release() error {
	if l.fileLock == nil {
		return nil
	}
	if err := l.fileLock.Unlock(); err != nil {
		return fmt.Errorf("releasing project lock: %w", err)
	}
	os.Remove(l.fileLock.Path())
	os.Remove(l.infoPath)
	l.fileLock = nil
	return nil
}

func readLockInfo(path string) (*LockInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var info LockInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, err
	}
	return &info, nil
}
