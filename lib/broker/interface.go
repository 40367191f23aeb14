package broker

import "github.com/ValentinKolb/nsmutex/lib/namespace"

// IMutexBroker defines the interface for a cross-process mutex broker.
type IMutexBroker interface {
	// AcquirePool acquires the cross-process mutex guarding the named pool.
	// The pool name is free-form text; canonically equivalent spellings map
	// to the same mutex. The call blocks indefinitely until ownership is
	// obtained. Recovery from a holder that terminated without releasing is
	// a successful acquisition, indistinguishable from a clean one.
	AcquirePool(poolName string) (lock *namespace.Lock, err error)

	// AcquireInstallation acquires the single installation-wide mutex that
	// serializes driver installation and removal. Same protocol as
	// AcquirePool but against one fixed identity; no hashing is involved.
	AcquireInstallation() (lock *namespace.Lock, err error)

	// Release releases ownership and closes the underlying lock object. It
	// must be called exactly once per successful acquire; calling it twice,
	// or with a lock acquired through a different broker, is undefined
	// behavior.
	Release(lock *namespace.Lock)
}
