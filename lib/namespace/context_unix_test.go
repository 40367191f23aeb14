//go:build !windows

package namespace

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// TestAbandonedRecovery tests that a lock whose holder goes away without
// releasing can be acquired again. Closing the file handle is what the
// kernel does on the holder's behalf when its process dies.
func TestAbandonedRecovery(t *testing.T) {
	c := testContext(t)
	defer c.Teardown()

	const lockName = Name + `\abandoned-lock`

	l, err := c.AcquireNamed(lockName)
	if err != nil {
		t.Fatalf("AcquireNamed returned error: %v", err)
	}
	l.f.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		l2, err := c.AcquireNamed(lockName)
		if err != nil {
			t.Errorf("AcquireNamed after abandonment returned error: %v", err)
			return
		}
		l2.Release()
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("acquisition after abandonment should succeed, not hang")
	}
}

// TestBoundaryRejectsWritableDir tests that initialization refuses a
// namespace directory other principals could tamper with
func TestBoundaryRejectsWritableDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, Name)
	if err := os.Mkdir(path, 0o700); err != nil {
		t.Fatalf("Mkdir returned error: %v", err)
	}
	if err := os.Chmod(path, 0o777); err != nil {
		t.Fatalf("Chmod returned error: %v", err)
	}

	c := NewContext(Config{RuntimeDir: dir, Logger: zerolog.Nop()})
	err := c.EnsureInitialized()
	if err == nil {
		c.Teardown()
		t.Fatal("EnsureInitialized should fail on a world-writable namespace directory")
	}

	var nsErr *Error
	if !errors.As(err, &nsErr) || nsErr.Code != RetCBoundary {
		t.Errorf("expected RetCBoundary, got %v", err)
	}
}

// TestLockFileName tests that the namespace qualifier is stripped from lock
// file names
func TestLockFileName(t *testing.T) {
	got := lockFileName(Name + `\WireGuard-Name-Mutex-abc`)
	if got != "WireGuard-Name-Mutex-abc" {
		t.Errorf("lockFileName returned %q", got)
	}
}

// TestLockFilesLiveInNamespaceDir tests that acquisitions create their lock
// files inside the namespace directory
func TestLockFilesLiveInNamespaceDir(t *testing.T) {
	dir := t.TempDir()
	c := NewContext(Config{RuntimeDir: dir, Logger: zerolog.Nop()})
	defer c.Teardown()

	l, err := c.AcquireNamed(Name + `\placement-lock`)
	if err != nil {
		t.Fatalf("AcquireNamed returned error: %v", err)
	}
	defer l.Release()

	if _, err := os.Stat(filepath.Join(dir, Name, "placement-lock")); err != nil {
		t.Errorf("lock file not where expected: %v", err)
	}
}
