package lock

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/matheus3301/wtox/internal/errs"
)

func TestAcquireWritesOwner(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions", "main", "wtoxd.lock")

	l, err := Acquire(path, "wtoxd")
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer func() { _ = l.Release() }()

	owner, err := ReadOwner(path)
	if err != nil {
		t.Fatalf("ReadOwner() error = %v", err)
	}
	if owner.PID != os.Getpid() {
		t.Errorf("pid = %d, want %d", owner.PID, os.Getpid())
	}
	if owner.Binary != "wtoxd" {
		t.Errorf("binary = %q, want wtoxd", owner.Binary)
	}
	if owner.Since.IsZero() {
		t.Error("since is zero")
	}
}

func TestSecondAcquireFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wtoxd.lock")

	l1, err := Acquire(path, "wtoxd")
	if err != nil {
		t.Fatalf("first Acquire() error = %v", err)
	}
	defer func() { _ = l1.Release() }()

	_, err = Acquire(path, "wtoxd")
	if err == nil {
		t.Fatal("second Acquire() should fail")
	}

	var held *HeldError
	if !errors.As(err, &held) {
		t.Fatalf("expected *HeldError, got %T: %v", err, err)
	}
	if held.Owner.PID != os.Getpid() {
		t.Errorf("holder pid = %d, want %d", held.Owner.PID, os.Getpid())
	}
	if !errors.Is(err, errs.ErrSessionLocked) {
		t.Errorf("errors.Is(err, ErrSessionLocked) = false for %v", err)
	}
}

func TestReleaseRemovesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wtoxtui.lock")

	l, err := Acquire(path, "wtoxtui")
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if err := l.Release(); err != nil {
		t.Fatalf("Release() error = %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("lock file still present: %v", err)
	}

	l2, err := Acquire(path, "wtoxtui")
	if err != nil {
		t.Fatalf("Acquire() after release error = %v", err)
	}
	_ = l2.Release()
}

func TestReleaseNilAndTwice(t *testing.T) {
	var nilLock *Lock
	if err := nilLock.Release(); err != nil {
		t.Errorf("nil Release() error = %v", err)
	}

	l, err := Acquire(filepath.Join(t.TempDir(), "x.lock"), "x")
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if err := l.Release(); err != nil {
		t.Errorf("first Release() error = %v", err)
	}
	if err := l.Release(); err != nil {
		t.Errorf("second Release() error = %v", err)
	}
}
