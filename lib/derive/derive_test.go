package derive

import (
	"crypto/sha256"
	"errors"
	"strings"
	"testing"
)

// poolName derives an identity with the standard pool label, failing the
// test on error
func poolName(t *testing.T, pool string) string {
	t.Helper()
	name, err := MutexName(sha256.New(), PoolMutexLabel, pool)
	if err != nil {
		t.Fatalf("MutexName(%q) returned error: %v", pool, err)
	}
	return name
}

// TestMutexNameDeterministic tests that the same pool name always derives
// the same identity across repeated calls
func TestMutexNameDeterministic(t *testing.T) {
	a := poolName(t, `Local\Pool-1`)
	b := poolName(t, `Local\Pool-1`)

	if a != b {
		t.Errorf("identity not deterministic: %q != %q", a, b)
	}
}

// TestMutexNameFormat tests that derived identities are the fixed prefix
// followed by exactly 64 lowercase hex characters
func TestMutexNameFormat(t *testing.T) {
	name := poolName(t, "some pool")

	if !strings.HasPrefix(name, PoolMutexPrefix) {
		t.Fatalf("identity %q does not start with prefix %q", name, PoolMutexPrefix)
	}

	digest := strings.TrimPrefix(name, PoolMutexPrefix)
	if len(digest) != 64 {
		t.Errorf("digest should be 64 characters, got %d", len(digest))
	}
	for _, r := range digest {
		if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'f') {
			t.Errorf("digest contains non-lowercase-hex character %q", r)
		}
	}
}

// TestMutexNameNFCEquivalence tests that canonically equivalent but
// differently encoded pool names derive the same identity
func TestMutexNameNFCEquivalence(t *testing.T) {
	composed := "café-pool"    // precomposed U+00E9
	decomposed := "café-pool" // e + combining acute accent

	if composed == decomposed {
		t.Fatal("test inputs must differ byte-wise")
	}

	if a, b := poolName(t, composed), poolName(t, decomposed); a != b {
		t.Errorf("canonically equivalent names derived different identities:\n%s\n%s", a, b)
	}
}

// TestMutexNameDistinct tests that an adversarial sample of distinct pool
// names derives pairwise distinct identities
func TestMutexNameDistinct(t *testing.T) {
	pools := []string{
		"",
		"a",
		"A",
		"a ",
		" a",
		"aa",
		"a\x00a",
		"pool-1",
		"pool-2",
		`Local\Pool-1`,
		`Local\Pool-1 `,
		"Ethernet",
		"Ethernet 2",
	}

	seen := make(map[string]string, len(pools))
	for _, pool := range pools {
		name := poolName(t, pool)
		if prev, ok := seen[name]; ok {
			t.Errorf("pools %q and %q derived the same identity %s", prev, pool, name)
		}
		seen[name] = pool
	}
}

// TestMutexNameLabelSeparation tests that the same pool name under
// different labels derives different identities
func TestMutexNameLabelSeparation(t *testing.T) {
	a, err := MutexName(sha256.New(), PoolMutexLabel, "pool")
	if err != nil {
		t.Fatalf("MutexName returned error: %v", err)
	}
	b, err := MutexName(sha256.New(), PoolMutexLabel+" v2", "pool")
	if err != nil {
		t.Fatalf("MutexName returned error: %v", err)
	}

	if a == b {
		t.Error("different labels should derive different identities")
	}
}

// TestMutexNameInvalidUTF8 tests that pool names without a canonical form
// are rejected
func TestMutexNameInvalidUTF8(t *testing.T) {
	_, err := MutexName(sha256.New(), PoolMutexLabel, "pool-\xff\xfe")
	if !errors.Is(err, ErrInvalidPoolName) {
		t.Errorf("expected ErrInvalidPoolName, got %v", err)
	}
}
