// Package pool implements a generic object pool that amortizes the cost of
// constructing expensive objects by recycling them through an explicit
// Allocate/Free handoff.
//
// # Architecture
//
// Three layers, each depending only on the one below:
//
//   - Factory[T]: builds a brand-new T on request. The pool never constructs
//     T any other way.
//   - Pool[T]: owns a LIFO free list of unused instances, falls back to the
//     factory when the list is empty and prewarms at most once per lifetime.
//   - ContainerPool[T]: wraps a Pool for instances that are shown/hidden and
//     reparented by a host runtime. Inactive instances live under a private
//     container; outstanding ones are active and detached from it.
//
// # Ownership
//
// Instances in the free list belong to the pool. Allocate transfers
// ownership to the caller; Free transfers it back. Free does not check where
// an instance came from, so returning a foreign instance is a caller bug.
//
// Basic usage:
//
//	bullets := pool.New[*Bullet](pool.FactoryFunc[*Bullet](newBullet),
//	    pool.WithName("bullets"),
//	    pool.WithLogger(log))
//	if err := bullets.Prewarm(64); err != nil {
//	    log.Warn("prewarm skipped", zap.Error(err))
//	}
//
//	b := bullets.Allocate()
//	// ... use b ...
//	bullets.Free(b)
//
// Container-aware usage:
//
//	sprites := pool.NewContainerPool[*scene.Node](factory, sc,
//	    pool.WithName("sprites"),
//	    pool.WithMode(pool.ModeRuntime))
//	s := sprites.Allocate() // active, detached
//	sprites.Free(s)         // inactive, parked under "[Pool] sprites"
//	sprites.Dispose()       // container destroyed at the host's next flush
//
// # Diagnostics
//
// A second Prewarm during one lifetime is a programmer error but not a fatal
// one: it logs a warning, returns ErrAlreadyPrewarmed and leaves the pool
// untouched. Factory panics are never recovered.
//
// # Concurrency
//
// Pools are single-threaded. Guard the whole acquire/release sequence with a
// mutex if a pool must be shared between goroutines.
package pool
