// Package broker exposes blocking acquire/release semantics on
// cross-process mutexes identified by free-form pool names. It is the
// coordination point for independent processes (installers, services,
// management tools) that manipulate the same logical resource and must
// serialize without negotiating a shared naming convention themselves.
//
// The broker has no state of its own beyond an in-process guard map; all
// durable coordination lives in the kernel objects managed by the
// namespace package. It is therefore safe to create multiple brokers on
// the same namespace context, as long as every lock is released through
// the broker that acquired it.
//
// Core Functionality:
//   - AcquirePool: canonicalize and hash a pool name into a stable lock
//     identity (package derive) and block until the corresponding kernel
//     object is owned
//   - AcquireInstallation: same protocol against one fixed, well-known
//     identity guarding installation and removal as a whole
//   - Release: give up ownership and close the object, exactly once
//
// Blocking Model:
//
//	Acquisitions wait indefinitely. There is no timeout, no cancellation
//	and no fairness guarantee among waiters; the contract is mutual
//	exclusion only. A holder that terminates without releasing is recovered
//	by the OS and the next waiter acquires normally - the broker cannot
//	judge whether the abandonment corrupted protected state, so it reports
//	nothing.
//
// Same-Process Contention:
//
//	Contenders inside one process are serialized on a per-identity
//	in-process mutex before the kernel object is touched. This keeps the
//	number of kernel waiters to at most one per identity per process and
//	costs nothing when uncontended.
//
// Observability:
//
//	Acquisition counts, error counts and wait durations are published as
//	VictoriaMetrics metrics (nsmutex_acquires_total, nsmutex_releases_total,
//	nsmutex_acquire_errors_total, nsmutex_wait_seconds). Failures are
//	additionally logged through the injected zerolog logger with the pool or
//	mutex name as context.
//
// Usage Example:
//
//	ctx := namespace.NewContext(namespace.Config{Privileged: true})
//	b := broker.NewMutexBroker(ctx, logger)
//
//	lock, err := b.AcquirePool("net-pool-1")
//	if err != nil {
//	    // Handle error
//	}
//	defer b.Release(lock)
//
//	// Critical section: only one process at a time gets here for this pool
package broker
