package derive

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"hash"
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const (
	// PoolMutexLabel is the versioned tag hashed ahead of the pool name.
	// It must never change: doing so would silently break mutual exclusion
	// against every process built with the old value.
	PoolMutexLabel = "WireGuard Adapter Name Mutex Stable Suffix v1 jason@zx2c4.com"

	// PoolMutexPrefix is the namespace-qualified prefix the hex digest is
	// appended to.
	PoolMutexPrefix = `WireGuard\WireGuard-Name-Mutex-`

	// InstallationMutexName is the fixed name of the installation-wide lock.
	// It guards a single global serialization point and involves no hashing.
	InstallationMutexName = `WireGuard\WireGuard-Driver-Installation-Mutex`
)

// ErrInvalidPoolName is returned for pool names that are not valid UTF-8 and
// therefore have no canonical form.
var ErrInvalidPoolName = errors.New("pool name is not valid UTF-8")

// MutexName derives the lock-object name for the given label and pool name.
// The pool name is NFC-normalized before hashing, so canonically equivalent
// spellings of the same name yield the same identity. The caller supplies a
// fresh SHA-256 context (see namespace.Context.Hasher).
func MutexName(h hash.Hash, label, pool string) (string, error) {
	if !utf8.ValidString(pool) {
		return "", ErrInvalidPoolName
	}
	hashUTF16(h, label)
	hashUTF16(h, norm.NFC.String(pool))
	return PoolMutexPrefix + hex.EncodeToString(h.Sum(nil)), nil
}

// hashUTF16 feeds the UTF-16LE encoding of s, including the two-byte null
// terminator, into h. The encoding is part of the identity format; changing
// it would change every derived lock name.
func hashUTF16(h hash.Hash, s string) {
	u := utf16.Encode([]rune(s))
	b := make([]byte, (len(u)+1)*2)
	for i, c := range u {
		binary.LittleEndian.PutUint16(b[i*2:], c)
	}
	h.Write(b)
}
