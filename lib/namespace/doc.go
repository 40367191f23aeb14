// Package namespace owns the privilege-isolated namespace that all lock
// objects live in, and the platform-backed named-lock capability inside it.
//
// A Context is an explicit, process-scoped object with a lazy, idempotent
// initialization lifecycle: the first call to EnsureInitialized opens the
// hash algorithm context, builds the principal identity selected by the
// configuration, creates (or opens) the isolation boundary and the
// privileged namespace, and every later call returns immediately. Teardown
// releases all three resources and returns the Context to the uninitialized
// state, after which it may be initialized again. Either all resources are
// present or none are; no partial state is observable from outside.
//
// Platform Backends:
//
//   - Windows: a boundary descriptor tagged "WireGuard" carrying the SID of
//     either the local-system or the built-in administrators principal, a
//     private namespace created under it, and named kernel mutexes inside
//     that namespace. Only holders of the boundary SID can see or open the
//     objects.
//
//   - Unix: a runtime directory created mode 0700 and verified to be owned
//     by the expected principal (root in privileged mode, the current user
//     otherwise), with blocking flock on identity-named files inside it.
//     The kernel releases an flock when its holder dies, which provides the
//     same abandoned-holder recovery a kernel mutex does.
//
// Acquiring a named lock blocks indefinitely. There is no timeout and no
// cancellation: a blocked acquisition returns only when the current holder
// releases, when the holder's process terminates (recovered silently, by
// design indistinguishable from a clean acquisition), or when the waiting
// process itself terminates.
//
// Concurrent use of a Context while another goroutine runs Teardown is a
// documented precondition violation and is not guarded against.
package namespace
