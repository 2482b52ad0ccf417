package pool

import (
	"go.uber.org/zap"

	"github.com/ajitpratap0/freelist/pkg/errors"
)

var (
	// ErrAlreadyPrewarmed is returned by Prewarm on a pool that was already
	// prewarmed during its current lifetime. The pool stays usable.
	ErrAlreadyPrewarmed = errors.New(errors.ErrorTypeConflict, "pool already prewarmed")

	// ErrNegativeCount is returned when a count argument is below zero.
	ErrNegativeCount = errors.New(errors.ErrorTypeValidation, "count must not be negative")
)

// Allocator is the acquire/release surface shared by Pool and ContainerPool.
type Allocator[T any] interface {
	Prewarm(count int) error
	Allocate() T
	AllocateN(count int) []T
	Free(member T)
	FreeAll(members []T)
	Dispose()
}

// Pool recycles instances of T through an explicit Allocate/Free handoff.
// Instances in the free list are owned by the pool; an allocated instance is
// owned by the caller until it is freed. The free list is LIFO, so the most
// recently freed instance is handed out first.
//
// Pool is not safe for concurrent use. Callers sharing a pool across
// goroutines must guard each Allocate/Free sequence with their own lock.
type Pool[T any] struct {
	name    string
	factory Factory[T]
	recycle func(T)
	// adopt runs on freshly built instances once construction succeeded
	adopt     func(T)
	available []T
	prewarmed bool

	log      *zap.Logger
	observer Observer
	stats    Stats
}

// Stats holds lifetime counters of a pool. Counters survive Dispose.
type Stats struct {
	// Constructed is the number of instances the factory built
	Constructed int64 `json:"constructed"`
	// Allocations is the number of instances handed to callers
	Allocations int64 `json:"allocations"`
	// Hits is the number of allocations served from the free list
	Hits int64 `json:"hits"`
	// Misses is the number of allocations that needed construction
	Misses int64 `json:"misses"`
	// Frees is the number of instances returned to the pool
	Frees int64 `json:"frees"`
	// Available is the current free-list size
	Available int `json:"available"`
	// Outstanding is Allocations minus Frees
	Outstanding int64 `json:"outstanding"`
}

// HitRate returns the share of allocations served from the free list.
func (s Stats) HitRate() float64 {
	if s.Allocations == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.Allocations)
}

// New creates an empty, not yet prewarmed pool backed by factory.
// If factory also implements Recycler, Recycle runs on every Free.
//
// Example:
//
//	widgets := pool.New[*Widget](pool.FactoryFunc[*Widget](NewWidget),
//	    pool.WithName("widgets"))
//	_ = widgets.Prewarm(16)
//	w := widgets.Allocate()
//	defer widgets.Free(w)
func New[T any](factory Factory[T], opts ...Option) *Pool[T] {
	return newPool(factory, recyclerOf(factory), newSettings(opts))
}

func newPool[T any](factory Factory[T], recycle func(T), s settings) *Pool[T] {
	if factory == nil {
		panic("pool: nil factory")
	}
	return &Pool[T]{
		name:      s.name,
		factory:   factory,
		recycle:   recycle,
		available: make([]T, 0, s.capacity),
		log:       s.log,
		observer:  s.observer,
	}
}

// Name returns the pool name.
func (p *Pool[T]) Name() string {
	return p.name
}

// Prewarm fills the free list with count freshly constructed instances, in
// construction order. It runs once per pool lifetime: a second call leaves
// the pool untouched, logs a warning and returns ErrAlreadyPrewarmed.
// A count of zero only marks the pool prewarmed.
//
// If the factory panics, nothing is added and the pool stays unprewarmed.
// Instances built before the panic are dropped without reaching a host.
func (p *Pool[T]) Prewarm(count int) error {
	if p.prewarmed {
		p.log.Warn("pool already prewarmed, prewarming only happens once per lifetime",
			zap.String("pool", p.name),
			zap.Int("requested", count),
			zap.Int("available", len(p.available)))
		p.observer.PrewarmRejected(p.name)
		return errors.Wrap(ErrAlreadyPrewarmed, errors.ErrorTypeConflict, "prewarm ignored").
			WithDetail("pool", p.name).
			WithDetail("requested", count)
	}
	if count < 0 {
		return errors.Wrap(ErrNegativeCount, errors.ErrorTypeValidation, "invalid prewarm count").
			WithDetail("pool", p.name).
			WithDetail("count", count)
	}

	fresh := make([]T, count)
	for i := range fresh {
		fresh[i] = p.construct()
	}
	if p.adopt != nil {
		for _, m := range fresh {
			p.adopt(m)
		}
	}
	p.available = append(p.available, fresh...)
	p.prewarmed = true

	p.log.Debug("pool prewarmed",
		zap.String("pool", p.name),
		zap.Int("count", count))
	p.observer.Levels(p.name, len(p.available), int(p.stats.Outstanding))
	return nil
}

// Allocate hands out the most recently freed instance, or constructs a new
// one when the free list is empty. The caller owns the returned instance
// until it passes it back to Free.
func (p *Pool[T]) Allocate() T {
	var member T
	reused := false
	if n := len(p.available); n > 0 {
		member = p.available[n-1]
		var zero T
		p.available[n-1] = zero
		p.available = p.available[:n-1]
		reused = true
		p.stats.Hits++
	} else {
		member = p.construct()
		if p.adopt != nil {
			p.adopt(member)
		}
		p.stats.Misses++
	}

	p.stats.Allocations++
	p.stats.Outstanding++
	p.observer.Allocated(p.name, reused)
	p.observer.Levels(p.name, len(p.available), int(p.stats.Outstanding))
	return member
}

// AllocateN performs count independent allocations and returns them in call
// order. A count of zero or less yields an empty slice.
func (p *Pool[T]) AllocateN(count int) []T {
	return allocateN[T](p, count)
}

// Free returns member to the pool. The caller must not use member afterwards.
//
// Free does not verify that member came from this pool's factory; handing in
// a foreign instance is a precondition violation whose consequences belong to
// the caller.
func (p *Pool[T]) Free(member T) {
	if p.recycle != nil {
		p.recycle(member)
	}
	p.available = append(p.available, member)

	p.stats.Frees++
	p.stats.Outstanding--
	p.observer.Freed(p.name)
	p.observer.Levels(p.name, len(p.available), int(p.stats.Outstanding))
}

// FreeAll frees every member in order.
func (p *Pool[T]) FreeAll(members []T) {
	for _, m := range members {
		p.Free(m)
	}
}

// Dispose clears the free list and resets the prewarmed flag. Outstanding
// instances are left alone; they remain the callers' responsibility. The
// pool may be used again afterwards and starts empty.
func (p *Pool[T]) Dispose() {
	dropped := len(p.available)
	clear(p.available)
	p.available = p.available[:0]
	p.prewarmed = false

	p.log.Debug("pool disposed",
		zap.String("pool", p.name),
		zap.Int("dropped", dropped),
		zap.Int64("outstanding", p.stats.Outstanding))
	p.observer.Levels(p.name, 0, int(p.stats.Outstanding))
}

// Available returns the number of instances in the free list.
func (p *Pool[T]) Available() int {
	return len(p.available)
}

// IsPrewarmed reports whether Prewarm ran during the current lifetime.
func (p *Pool[T]) IsPrewarmed() bool {
	return p.prewarmed
}

// Stats returns a snapshot of the pool counters.
func (p *Pool[T]) Stats() Stats {
	s := p.stats
	s.Available = len(p.available)
	return s
}

func (p *Pool[T]) construct() T {
	member := p.factory.Create()
	p.stats.Constructed++
	return member
}

func allocateN[T any](a interface{ Allocate() T }, count int) []T {
	if count <= 0 {
		return []T{}
	}
	members := make([]T, count)
	for i := range members {
		members[i] = a.Allocate()
	}
	return members
}
