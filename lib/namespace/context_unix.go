//go:build !windows

package namespace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"
)

// Descriptor carries the permission bits applied to the namespace
// directory. Zero selects the restrictive default (0700). Lock files inside
// the directory are always created 0600; the directory mode is what scopes
// visibility.
type Descriptor = os.FileMode

const defaultDirMode os.FileMode = 0o700

type platformState struct {
	path string   // namespace directory (the boundary)
	dir  *os.File // held directory handle (the namespace)
}

// platformInit creates or opens the namespace directory and verifies that
// it belongs to the expected principal. Called with c.mu held.
//
// The directory plays the role of the isolation boundary: it is created
// with owner-only permissions and its ownership is checked after opening,
// so another principal squatting on the path is detected instead of being
// handed our locks.
func (c *Context) platformInit() error {
	mode := c.cfg.Security
	if mode == 0 {
		mode = defaultDirMode
	}

	// The principal the boundary is scoped to.
	owner := os.Getuid()
	if c.cfg.Privileged {
		owner = 0
	}

	path := filepath.Join(c.runtimeBase(), Name)

	var dir *os.File
	for {
		if err := os.Mkdir(path, mode); err == nil {
			// Mkdir is subject to the umask; pin the mode explicitly.
			if err := os.Chmod(path, mode); err != nil {
				c.log.Error().Err(err).Str("path", path).Msg("failed to restrict namespace directory")
				return NewError(RetCBoundary, "failed to restrict namespace directory", err)
			}
		} else if !errors.Is(err, os.ErrExist) {
			c.log.Error().Err(err).Str("path", path).Msg("failed to create namespace directory")
			return NewError(RetCNamespace, "failed to create namespace directory", err)
		}

		var err error
		dir, err = os.OpenFile(path, os.O_RDONLY|unix.O_DIRECTORY, 0)
		if err == nil {
			break
		}
		// Another process removed the directory between our create-or-open
		// and the open. Benign, retry.
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		c.log.Error().Err(err).Str("path", path).Msg("failed to open namespace directory")
		return NewError(RetCNamespace, "failed to open namespace directory", err)
	}

	if err := verifyBoundary(dir, owner); err != nil {
		dir.Close()
		c.log.Error().Err(err).Str("path", path).Msg("namespace directory failed boundary check")
		return NewError(RetCBoundary, "namespace directory failed boundary check", err)
	}

	c.plat = platformState{path: path, dir: dir}
	return nil
}

// platformTeardown closes the held directory handle. The directory itself
// is left in place; other processes may still be using it. Called with c.mu
// held on an initialized Context.
func (c *Context) platformTeardown() {
	c.plat.dir.Close()
	c.plat = platformState{}
}

// runtimeBase returns the directory the namespace is created under.
func (c *Context) runtimeBase() string {
	if c.cfg.RuntimeDir != "" {
		return c.cfg.RuntimeDir
	}
	if c.cfg.Privileged {
		return "/run"
	}
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return dir
	}
	return os.TempDir()
}

// verifyBoundary checks that the opened namespace directory is owned by the
// expected principal and is not writable by anyone else.
func verifyBoundary(dir *os.File, owner int) error {
	var st unix.Stat_t
	if err := unix.Fstat(int(dir.Fd()), &st); err != nil {
		return err
	}
	if st.Uid != uint32(owner) {
		return fmt.Errorf("directory owned by uid %d, want %d", st.Uid, owner)
	}
	if st.Mode&(unix.S_IWGRP|unix.S_IWOTH) != 0 {
		return fmt.Errorf("directory is group or world writable (mode %o)", st.Mode&0o777)
	}
	return nil
}

// Lock is an acquired named lock: an exclusively flocked file inside the
// namespace directory. The kernel drops an flock when its holder dies, so a
// crashed holder never wedges the pool; the next waiter acquires the lock
// with nothing distinguishing the recovery from a clean acquisition.
type Lock struct {
	name string
	f    *os.File
}

// Name returns the lock-object name the lock was acquired under.
func (l *Lock) Name() string { return l.name }

// Release gives up ownership and closes the underlying object. Must be
// called exactly once per successful acquisition; a second call is
// undefined behavior.
func (l *Lock) Release() {
	_ = unix.Flock(int(l.f.Fd()), unix.LOCK_UN)
	l.f.Close()
}

func (c *Context) acquireNamed(name string) (*Lock, error) {
	path := filepath.Join(c.plat.path, lockFileName(name))

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		c.log.Error().Err(err).Str("mutex", name).Msg("failed to create lock file")
		return nil, NewError(RetCLockCreate, "failed to create lock file for "+name, err)
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX); err != nil {
		f.Close()
		c.log.Error().Err(err).Str("mutex", name).Msg("failed to acquire lock")
		return nil, NewError(RetCWaitFailed, "failed to acquire lock "+name, err)
	}
	return &Lock{name: name, f: f}, nil
}

// lockFileName maps a namespace-qualified lock name to a file name inside
// the namespace directory. The qualifier duplicates what the directory
// already expresses, so it is stripped.
func lockFileName(name string) string {
	return strings.TrimPrefix(name, Name+`\`)
}
