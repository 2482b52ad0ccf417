package pool

// Observer receives pool events. Implementations must be cheap; they run
// inline on every Allocate and Free.
type Observer interface {
	// Allocated reports an instance handed to a caller. reused is false
	// when the factory had to construct it.
	Allocated(pool string, reused bool)
	// Freed reports an instance returned to the free list.
	Freed(pool string)
	// PrewarmRejected reports a Prewarm call on an already prewarmed pool.
	PrewarmRejected(pool string)
	// Levels reports the free-list size and outstanding count after a change.
	Levels(pool string, available, outstanding int)
}

type nopObserver struct{}

func (nopObserver) Allocated(string, bool)  {}
func (nopObserver) Freed(string)            {}
func (nopObserver) PrewarmRejected(string)  {}
func (nopObserver) Levels(string, int, int) {}
