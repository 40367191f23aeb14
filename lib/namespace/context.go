package namespace

import (
	"crypto/sha256"
	"hash"
	"sync"

	"github.com/rs/zerolog"
)

const (
	// BoundaryName tags the isolation boundary. Fixed for cross-process
	// interoperability.
	BoundaryName = "WireGuard"

	// Name is the privileged namespace created inside the boundary. Lock
	// objects are qualified with it ("WireGuard\...").
	Name = "WireGuard"
)

// Config carries the collaborator inputs the context needs. All fields are
// fixed at construction time.
type Config struct {
	// Privileged selects the principal the namespace is scoped to: the
	// local-system service account (root on Unix) when true, the
	// interactive administrator (current user) otherwise.
	Privileged bool

	// Security is the platform security descriptor applied to the objects
	// the context creates. It is an opaque collaborator input; the zero
	// value selects restrictive platform defaults.
	Security Descriptor

	// RuntimeDir overrides the directory the namespace lives under on
	// non-Windows platforms. Empty selects the platform default. Ignored on
	// Windows.
	RuntimeDir string

	// Logger receives diagnostic messages. The zero value discards them.
	Logger zerolog.Logger
}

// Context holds the process-wide namespace state: the isolation boundary,
// the privileged namespace handle and the hash algorithm context. The state
// is mutated only under the internal lock and is either fully present or
// fully absent.
type Context struct {
	mu      sync.Mutex
	cfg     Config
	log     zerolog.Logger
	newHash func() hash.Hash
	plat    platformState
}

// NewContext creates an uninitialized Context. Initialization happens
// lazily on first use.
func NewContext(cfg Config) *Context {
	return &Context{
		cfg: cfg,
		log: cfg.Logger,
	}
}

// EnsureInitialized initializes the namespace state if it is not already
// initialized. It is idempotent and safe to call from multiple goroutines;
// exactly one full initialization is performed, and every caller observes
// either success or the same class of failure. On failure all partially
// acquired resources are unwound before returning.
func (c *Context) EnsureInitialized() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.newHash != nil {
		return nil
	}

	if err := c.platformInit(); err != nil {
		return err
	}

	// The hash algorithm context is assigned last so that a failed
	// initialization leaves the Context observably uninitialized.
	c.newHash = sha256.New
	return nil
}

// Teardown releases the hash algorithm context, the namespace handle and
// the boundary, and resets the Context to uninitialized. It is a no-op on
// an uninitialized Context. The caller must guarantee no acquisitions are
// in flight.
func (c *Context) Teardown() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.newHash == nil {
		return
	}
	c.newHash = nil
	c.platformTeardown()
}

// Hasher returns a fresh hash context from the initialized algorithm. It
// fails if the Context is uninitialized.
func (c *Context) Hasher() (hash.Hash, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.newHash == nil {
		return nil, NewError(RetCNotInitialized, "namespace context not initialized", nil)
	}
	return c.newHash(), nil
}

// AcquireNamed creates or opens the named lock object inside the namespace
// and blocks indefinitely until ownership is obtained. Recovery from a
// holder that terminated without releasing is treated as a clean
// acquisition. The name must be namespace-qualified (see package derive).
func (c *Context) AcquireNamed(name string) (*Lock, error) {
	if err := c.EnsureInitialized(); err != nil {
		return nil, err
	}
	return c.acquireNamed(name)
}
