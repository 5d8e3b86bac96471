// Package lock keeps a single process of a binary per session.
package lock

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/matheus3301/wtox/internal/errs"
)

// Owner is written into the lock file by the process holding it.
type Owner struct {
	PID    int       `toml:"pid"`
	Binary string    `toml:"binary"`
	Since  time.Time `toml:"since"`
}

// HeldError is returned when another process holds the lock.
type HeldError struct {
	Owner Owner
	Path  string
}

func (e *HeldError) Error() string {
	if e.Owner.PID == 0 {
		return fmt.Sprintf("session lock held (%s)", e.Path)
	}
	return fmt.Sprintf("session lock held by %s PID %d since %s (%s)",
		e.Owner.Binary, e.Owner.PID, e.Owner.Since.Format(time.RFC3339), e.Path)
}

// Unwrap lets errors.Is match errs.ErrSessionLocked.
func (e *HeldError) Unwrap() error { return errs.ErrSessionLocked }

// Lock represents an acquired lock file.
type Lock struct {
	file *os.File
	path string
}

// Acquire takes an exclusive advisory lock on path for binary. It fails with
// a *HeldError when another process has it.
func Acquire(path, binary string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		owner, _ := ReadOwner(path)
		_ = f.Close()
		return nil, &HeldError{Owner: owner, Path: path}
	}

	var buf bytes.Buffer
	owner := Owner{PID: os.Getpid(), Binary: binary, Since: time.Now().UTC().Truncate(time.Second)}
	if err := toml.NewEncoder(&buf).Encode(owner); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := f.Truncate(0); err != nil {
		_ = f.Close()
		return nil, err
	}
	if _, err := f.WriteAt(buf.Bytes(), 0); err != nil {
		_ = f.Close()
		return nil, err
	}

	return &Lock{file: f, path: path}, nil
}

// ReadOwner decodes the owner record of a lock file.
func ReadOwner(path string) (Owner, error) {
	var o Owner
	_, err := toml.DecodeFile(path, &o)
	return o, err
}

// Release releases the lock. Safe to call on a nil receiver and more than
// once.
func (l *Lock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	_ = os.Remove(l.path)
	err := l.file.Close()
	l.file = nil
	return err
}
