package broker

import (
	"sync"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog"

	"github.com/ValentinKolb/nsmutex/lib/derive"
	"github.com/ValentinKolb/nsmutex/lib/namespace"
)

type brokerImpl struct {
	ctx    *namespace.Context
	log    zerolog.Logger
	guards *xsync.MapOf[string, *sync.Mutex]
}

// NewMutexBroker creates a broker on top of the given namespace context.
// The context is initialized lazily on the first acquisition. Multiple
// brokers may share one context; locks must be released through the broker
// that acquired them.
func NewMutexBroker(ctx *namespace.Context, logger zerolog.Logger) IMutexBroker {
	return &brokerImpl{
		ctx:    ctx,
		log:    logger,
		guards: xsync.NewMapOf[string, *sync.Mutex](),
	}
}

func (b *brokerImpl) AcquirePool(poolName string) (*namespace.Lock, error) {
	if err := b.ctx.EnsureInitialized(); err != nil {
		metrics.GetOrCreateCounter(`nsmutex_acquire_errors_total{kind="pool"}`).Inc()
		return nil, err
	}

	h, err := b.ctx.Hasher()
	if err != nil {
		metrics.GetOrCreateCounter(`nsmutex_acquire_errors_total{kind="pool"}`).Inc()
		return nil, err
	}
	name, err := derive.MutexName(h, derive.PoolMutexLabel, poolName)
	if err != nil {
		b.log.Error().Err(err).Str("pool", poolName).Msg("failed to derive mutex name")
		metrics.GetOrCreateCounter(`nsmutex_acquire_errors_total{kind="pool"}`).Inc()
		return nil, err
	}

	return b.acquire(name, "pool")
}

func (b *brokerImpl) AcquireInstallation() (*namespace.Lock, error) {
	if err := b.ctx.EnsureInitialized(); err != nil {
		metrics.GetOrCreateCounter(`nsmutex_acquire_errors_total{kind="installation"}`).Inc()
		return nil, err
	}
	return b.acquire(derive.InstallationMutexName, "installation")
}

func (b *brokerImpl) Release(lock *namespace.Lock) {
	lock.Release()

	// Reverse acquisition order: kernel object first, in-process guard last.
	if guard, ok := b.guards.Load(lock.Name()); ok {
		guard.Unlock()
	}
	metrics.GetOrCreateCounter(`nsmutex_releases_total`).Inc()
}

// acquire serializes same-process contenders on an in-process guard before
// touching the kernel object, so at most one kernel waiter exists per
// identity per process, then blocks on the cross-process lock itself.
func (b *brokerImpl) acquire(name, kind string) (*namespace.Lock, error) {
	guard, _ := b.guards.LoadOrStore(name, &sync.Mutex{})
	guard.Lock()

	start := time.Now()
	lock, err := b.ctx.AcquireNamed(name)
	if err != nil {
		guard.Unlock()
		metrics.GetOrCreateCounter(`nsmutex_acquire_errors_total{kind="` + kind + `"}`).Inc()
		return nil, err
	}

	metrics.GetOrCreateCounter(`nsmutex_acquires_total{kind="` + kind + `"}`).Inc()
	metrics.GetOrCreateHistogram(`nsmutex_wait_seconds{kind="` + kind + `"}`).UpdateDuration(start)
	b.log.Debug().Str("mutex", name).Dur("wait", time.Since(start)).Msg("mutex acquired")
	return lock, nil
}
