//go:build windows

package namespace

import (
	"runtime"

	"golang.org/x/sys/windows"
)

// Descriptor is the security descriptor applied to the namespace and to
// every mutex created inside it. Supplied by the caller, never derived
// here; nil lets the objects inherit the process defaults.
type Descriptor = *windows.SecurityAttributes

type platformState struct {
	boundary windows.Handle
	ns       windows.Handle
}

// platformInit builds the boundary descriptor and creates or opens the
// private namespace. Called with c.mu held.
func (c *Context) platformInit() error {
	boundaryName, err := windows.UTF16PtrFromString(BoundaryName)
	if err != nil {
		return NewError(RetCBoundary, "invalid boundary name", err)
	}
	nsName, err := windows.UTF16PtrFromString(Name)
	if err != nil {
		return NewError(RetCNamespace, "invalid namespace name", err)
	}

	sidType := windows.WinBuiltinAdministratorsSid
	if c.cfg.Privileged {
		sidType = windows.WinLocalSystemSid
	}
	sid, err := windows.CreateWellKnownSid(sidType)
	if err != nil {
		c.log.Error().Err(err).Msg("failed to create SID")
		return NewError(RetCPrincipal, "failed to create SID", err)
	}

	boundary, err := windows.CreateBoundaryDescriptor(boundaryName, 0)
	if err != nil {
		c.log.Error().Err(err).Msg("failed to create boundary descriptor")
		return NewError(RetCBoundary, "failed to create boundary descriptor", err)
	}
	if err := windows.AddSIDToBoundaryDescriptor(&boundary, sid); err != nil {
		windows.DeleteBoundaryDescriptor(boundary)
		c.log.Error().Err(err).Msg("failed to add SID to boundary descriptor")
		return NewError(RetCBoundary, "failed to add SID to boundary descriptor", err)
	}

	var ns windows.Handle
	for {
		ns, err = windows.CreatePrivateNamespace(c.cfg.Security, boundary, nsName)
		if err == nil {
			break
		}
		if err == windows.ERROR_ALREADY_EXISTS {
			ns, err = windows.OpenPrivateNamespace(boundary, nsName)
			if err == nil {
				break
			}
			// Another process is tearing the namespace down between our
			// create and open. Benign, retry.
			if err == windows.ERROR_PATH_NOT_FOUND {
				continue
			}
			c.log.Error().Err(err).Msg("failed to open private namespace")
			windows.DeleteBoundaryDescriptor(boundary)
			return NewError(RetCNamespace, "failed to open private namespace", err)
		}
		c.log.Error().Err(err).Msg("failed to create private namespace")
		windows.DeleteBoundaryDescriptor(boundary)
		return NewError(RetCNamespace, "failed to create private namespace", err)
	}

	c.plat = platformState{boundary: boundary, ns: ns}
	return nil
}

// platformTeardown releases the namespace handle and the boundary. Called
// with c.mu held on an initialized Context.
func (c *Context) platformTeardown() {
	_ = windows.ClosePrivateNamespace(c.plat.ns, 0)
	windows.DeleteBoundaryDescriptor(c.plat.boundary)
	c.plat = platformState{}
}

// Lock is an acquired named kernel mutex. Mutex ownership is bound to the
// OS thread that waited on it, and goroutines migrate between threads, so
// every acquisition runs on its own OS-locked goroutine; Release signals
// that goroutine to release ownership and close the handle on the thread
// that owns it.
type Lock struct {
	name string
	stop chan struct{}
	done chan struct{}
}

// Name returns the lock-object name the lock was acquired under.
func (l *Lock) Name() string { return l.name }

// Release gives up ownership and closes the underlying mutex. Must be
// called exactly once per successful acquisition; a second call is
// undefined behavior.
func (l *Lock) Release() {
	close(l.stop)
	<-l.done
}

func (c *Context) acquireNamed(name string) (*Lock, error) {
	name16, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return nil, NewError(RetCLockCreate, "invalid mutex name "+name, err)
	}

	l := &Lock{
		name: name,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	acquired := make(chan error)

	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		defer close(l.done)

		// CreateMutexW is create-or-open: when another holder already has
		// the object, the wrapper reports ERROR_ALREADY_EXISTS alongside a
		// valid handle. Only a zero handle is a failure.
		mutex, err := windows.CreateMutex(c.cfg.Security, false, name16)
		if mutex == 0 {
			c.log.Error().Err(err).Str("mutex", name).Msg("failed to create mutex")
			acquired <- NewError(RetCLockCreate, "failed to create mutex "+name, err)
			return
		}

		event, err := windows.WaitForSingleObject(mutex, windows.INFINITE)
		switch event {
		case windows.WAIT_OBJECT_0, windows.WAIT_ABANDONED:
			// An abandoned mutex is a successful acquisition: the previous
			// holder terminated and the kernel recovered the object for us.
		default:
			c.log.Error().Err(err).Uint32("event", event).Str("mutex", name).Msg("failed to acquire mutex")
			windows.CloseHandle(mutex)
			acquired <- NewError(RetCWaitFailed, "failed to acquire mutex "+name, err)
			return
		}

		acquired <- nil
		<-l.stop
		windows.ReleaseMutex(mutex)
		windows.CloseHandle(mutex)
	}()

	if err := <-acquired; err != nil {
		return nil, err
	}
	return l, nil
}
