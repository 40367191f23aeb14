// Package derive turns arbitrary caller-supplied pool names into stable,
// collision-resistant lock-object names. Multiple independent processes that
// manipulate the same logical resource only have to agree on the free-form
// pool name; the derivation guarantees they end up waiting on the same
// kernel object without negotiating a naming convention themselves.
//
// Derivation Scheme:
//
//	The pool name is first canonicalized using Unicode Normalization Form C,
//	so that textually equivalent but differently encoded inputs map to the
//	same identity. A fixed, versioned label and the normalized name are then
//	hashed with SHA-256, each encoded as UTF-16LE including the two-byte
//	null terminator. The 32-byte digest is formatted as 64 lowercase hex
//	characters and appended to a fixed namespace-qualified prefix.
//
//	The UTF-16 encoding is deliberate: identities are defined over the
//	name's UTF-16 code units rather than its UTF-8 bytes, so the same name
//	derives the same lock object on every platform and across process
//	restarts. The encoding is part of the identity format and must never
//	change.
//
// The derivation is pure and deterministic. Nothing is persisted; the
// identity is recomputed on every call.
package derive
