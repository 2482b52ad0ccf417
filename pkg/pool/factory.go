package pool

// Factory produces brand-new instances of T. It is the only place a pool
// obtains instances from; the pool never constructs T itself.
//
// Create either returns a usable instance or panics. The pool does not
// recover construction panics, so they surface from Allocate or Prewarm.
type Factory[T any] interface {
	Create() T
}

// Recycler is an optional interface a Factory may implement. When present,
// Recycle is called on every instance handed back through Free, before the
// instance re-enters the free list.
type Recycler[T any] interface {
	Recycle(member T)
}

// FactoryFunc adapts an ordinary function to the Factory interface.
type FactoryFunc[T any] func() T

// Create calls f.
func (f FactoryFunc[T]) Create() T {
	return f()
}

// NewFactory creates a Factory from a construction function and an optional
// reset function. A nil reset yields a factory without recycling.
//
// Example:
//
//	f := pool.NewFactory(
//	    func() *Buffer { return &Buffer{data: make([]byte, 0, 1024)} },
//	    func(b *Buffer) { b.data = b.data[:0] },
//	)
func NewFactory[T any](create func() T, reset func(T)) Factory[T] {
	if reset == nil {
		return FactoryFunc[T](create)
	}
	return &funcFactory[T]{create: create, reset: reset}
}

type funcFactory[T any] struct {
	create func() T
	reset  func(T)
}

func (f *funcFactory[T]) Create() T {
	return f.create()
}

func (f *funcFactory[T]) Recycle(member T) {
	f.reset(member)
}

// recyclerOf returns the recycle function of f, or nil when f does not
// implement Recycler.
func recyclerOf[T any](f Factory[T]) func(T) {
	if r, ok := f.(Recycler[T]); ok {
		return r.Recycle
	}
	return nil
}
