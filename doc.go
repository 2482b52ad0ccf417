// Package freelist provides generic object pools that recycle instances
// through a LIFO free list, plus a container-aware variant that parks free
// instances under a host-owned container.
//
// # Architecture
//
// The module is organized in layers:
//
//   - pkg/pool: Factory, Pool[T] and ContainerPool[T]. A Pool prewarms once,
//     hands out the most recently freed instance first and constructs on
//     demand when the free list is empty. A ContainerPool additionally hides
//     free instances under a lazily created container through a Host and
//     destroys that container on Dispose, immediately in authoring mode and
//     deferred in runtime mode.
//   - pkg/scene: an in-memory node hierarchy that implements pool.Host.
//   - pkg/pqueue: a binary-heap min-priority queue.
//   - pkg/metrics: a Prometheus collector implementing pool.Observer.
//   - pkg/config, pkg/logger, pkg/errors, pkg/observability: configuration,
//     zap logging, typed errors and OpenTelemetry tracing.
//   - internal/sim and cmd/freelist: a spawn/expire simulator and its CLI.
//
// # Quick Start
//
//	import "github.com/ajitpratap0/freelist/pkg/pool"
//
//	bullets := pool.New[*Bullet](pool.NewFactory(NewBullet, (*Bullet).Reset),
//	    pool.WithName("bullets"))
//	if err := bullets.Prewarm(64); err != nil {
//	    return err
//	}
//
//	b := bullets.Allocate()
//	defer bullets.Free(b)
//
// Pools are not safe for concurrent use. Each pool is owned by a single
// goroutine, typically the one running the frame loop.
//
// # Command Line
//
//	freelist simulate --mode authoring --ticks 600 --metrics
//	freelist config > freelist.yaml
package freelist
