package pool

import (
	"go.uber.org/zap"
)

// Container is a host-side holding location for inactive pooled instances.
type Container interface {
	Name() string
}

// Host supplies the host-runtime capabilities a ContainerPool relies on but
// does not implement itself.
type Host[T any] interface {
	// SetActive shows or hides member.
	SetActive(member T, active bool)
	// Reparent moves member under parent. A nil parent detaches it.
	Reparent(member T, parent Container)
	// NewContainer creates an empty holding container.
	NewContainer(name string) Container
	// DestroyContainer tears c down together with everything parented under
	// it. When immediate is false the host may defer the work.
	DestroyContainer(c Container, immediate bool)
}

// ContainerPool is a Pool for instances with an active/attached lifecycle.
// Every instance in its free list is inactive and parented under a private
// container; every instance it hands out is active and detached from that
// container.
type ContainerPool[T any] struct {
	base      *Pool[T]
	host      Host[T]
	mode      Mode
	container Container
	log       *zap.Logger
}

// NewContainerPool creates a container-aware pool. Instances built by factory
// are parked in the container before they ever reach the free list, whether
// they come from Prewarm or from an on-demand Allocate. Prewarm parks only
// after the whole batch was built, so a factory panic leaves the container
// untouched.
func NewContainerPool[T any](factory Factory[T], host Host[T], opts ...Option) *ContainerPool[T] {
	if factory == nil {
		panic("pool: nil factory")
	}
	if host == nil {
		panic("pool: nil host")
	}
	s := newSettings(opts)
	cp := &ContainerPool[T]{
		host: host,
		mode: s.mode,
		log:  s.log,
	}
	cp.base = newPool[T](factory, recyclerOf(factory), s)
	cp.base.adopt = cp.park
	return cp
}

// Name returns the pool name.
func (cp *ContainerPool[T]) Name() string {
	return cp.base.Name()
}

// Mode returns the container teardown mode.
func (cp *ContainerPool[T]) Mode() Mode {
	return cp.mode
}

// Prewarm constructs count parked instances once per lifetime.
// See Pool.Prewarm.
func (cp *ContainerPool[T]) Prewarm(count int) error {
	return cp.base.Prewarm(count)
}

// Allocate hands out an instance after activating it and detaching it from
// the container.
func (cp *ContainerPool[T]) Allocate() T {
	member := cp.base.Allocate()
	cp.host.SetActive(member, true)
	cp.host.Reparent(member, nil)
	return member
}

// AllocateN performs count independent allocations in call order.
func (cp *ContainerPool[T]) AllocateN(count int) []T {
	return allocateN[T](cp, count)
}

// Free deactivates member, parks it under the container and returns it to
// the free list.
func (cp *ContainerPool[T]) Free(member T) {
	cp.park(member)
	cp.base.Free(member)
}

// FreeAll frees every member in order.
func (cp *ContainerPool[T]) FreeAll(members []T) {
	for _, m := range members {
		cp.Free(m)
	}
}

// Dispose clears the free list and destroys the container, which takes the
// parked instances with it. In ModeAuthoring the container is destroyed
// immediately, otherwise the host may defer it. A later operation creates a
// fresh container.
func (cp *ContainerPool[T]) Dispose() {
	cp.base.Dispose()
	if cp.container == nil {
		return
	}
	immediate := cp.mode == ModeAuthoring
	cp.host.DestroyContainer(cp.container, immediate)
	cp.log.Debug("pool container destroyed",
		zap.String("pool", cp.base.Name()),
		zap.String("container", cp.container.Name()),
		zap.Bool("immediate", immediate))
	cp.container = nil
}

// Container returns the current holding container, or nil when none has
// been created since the last Dispose.
func (cp *ContainerPool[T]) Container() Container {
	return cp.container
}

// Available returns the number of parked instances.
func (cp *ContainerPool[T]) Available() int {
	return cp.base.Available()
}

// IsPrewarmed reports whether Prewarm ran during the current lifetime.
func (cp *ContainerPool[T]) IsPrewarmed() bool {
	return cp.base.IsPrewarmed()
}

// Stats returns a snapshot of the underlying pool counters.
func (cp *ContainerPool[T]) Stats() Stats {
	return cp.base.Stats()
}

func (cp *ContainerPool[T]) park(member T) {
	cp.host.Reparent(member, cp.ensureContainer())
	cp.host.SetActive(member, false)
}

func (cp *ContainerPool[T]) ensureContainer() Container {
	if cp.container == nil {
		cp.container = cp.host.NewContainer("[Pool] " + cp.base.Name())
	}
	return cp.container
}

var (
	_ Allocator[int] = (*Pool[int])(nil)
	_ Allocator[int] = (*ContainerPool[int])(nil)
)
