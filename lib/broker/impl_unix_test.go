//go:build !windows

package broker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/VictoriaMetrics/metrics"
	"github.com/rs/zerolog"

	"github.com/ValentinKolb/nsmutex/lib/namespace"
)

// failingBroker creates a broker whose namespace cannot initialize because
// the namespace directory is world-writable
func failingBroker(t *testing.T) IMutexBroker {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, namespace.Name)
	if err := os.Mkdir(path, 0o700); err != nil {
		t.Fatalf("Mkdir returned error: %v", err)
	}
	if err := os.Chmod(path, 0o777); err != nil {
		t.Fatalf("Chmod returned error: %v", err)
	}

	ctx := namespace.NewContext(namespace.Config{RuntimeDir: dir, Logger: zerolog.Nop()})
	return NewMutexBroker(ctx, zerolog.Nop())
}

// TestAcquirePoolInitFailureCounted tests that pool acquisitions failing in
// namespace initialization surface in the error counter
func TestAcquirePoolInitFailureCounted(t *testing.T) {
	b := failingBroker(t)

	counter := metrics.GetOrCreateCounter(`nsmutex_acquire_errors_total{kind="pool"}`)
	before := counter.Get()

	if _, err := b.AcquirePool("counted-pool"); err == nil {
		t.Fatal("AcquirePool should fail when the namespace cannot initialize")
	}

	if got := counter.Get(); got != before+1 {
		t.Errorf("error counter = %d, want %d", got, before+1)
	}
}

// TestAcquireInstallationInitFailureCounted tests that installation
// acquisitions failing in namespace initialization surface in the error
// counter
func TestAcquireInstallationInitFailureCounted(t *testing.T) {
	b := failingBroker(t)

	counter := metrics.GetOrCreateCounter(`nsmutex_acquire_errors_total{kind="installation"}`)
	before := counter.Get()

	if _, err := b.AcquireInstallation(); err == nil {
		t.Fatal("AcquireInstallation should fail when the namespace cannot initialize")
	}

	if got := counter.Get(); got != before+1 {
		t.Errorf("error counter = %d, want %d", got, before+1)
	}
}
