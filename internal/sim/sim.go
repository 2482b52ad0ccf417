// Package sim drives a container pool through a spawn/expire workload over a
// scene, the way a game loop would: every tick some sprites are allocated with
// a random lifetime and every sprite whose lifetime ran out is freed.
//
// Expiries are kept in a min-priority queue keyed by tick, so releasing the
// sprites due at a tick costs O(k log n). The container invariant (parked
// sprites are hidden and under the pool container, live sprites are visible
// and detached) is checked after every tick when enabled.
//
// # Basic Usage
//
//	cfg := config.NewSimConfig()
//	s, err := sim.New(cfg, sim.WithLogger(log))
//	if err != nil {
//	    return err
//	}
//	report, err := s.Run(ctx)
package sim

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/shirou/gopsutil/v3/process"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/ajitpratap0/freelist/pkg/config"
	"github.com/ajitpratap0/freelist/pkg/errors"
	"github.com/ajitpratap0/freelist/pkg/logger"
	"github.com/ajitpratap0/freelist/pkg/pool"
	"github.com/ajitpratap0/freelist/pkg/pqueue"
	"github.com/ajitpratap0/freelist/pkg/scene"
)

const tracerName = "github.com/ajitpratap0/freelist/internal/sim"

// Report summarizes a simulation run.
type Report struct {
	Pool               string        `json:"pool"`
	Mode               string        `json:"mode"`
	Ticks              int           `json:"ticks"`
	Spawned            int           `json:"spawned"`
	Released           int           `json:"released"`
	PeakOutstanding    int           `json:"peak_outstanding"`
	ParkedAtEnd        int           `json:"parked_at_end"`
	DestroyedOnDispose int           `json:"destroyed_on_dispose"`
	Stats              pool.Stats    `json:"stats"`
	HitRate            float64       `json:"hit_rate"`
	RSSBytes           uint64        `json:"rss_bytes,omitempty"`
	Duration           time.Duration `json:"duration"`
}

// Option configures a Simulator.
type Option func(*Simulator)

// WithLogger sets the logger for the simulator and its pool.
func WithLogger(l *zap.Logger) Option {
	return func(s *Simulator) {
		s.log = l
	}
}

// WithObserver attaches a pool observer such as a metrics collector.
func WithObserver(o pool.Observer) Option {
	return func(s *Simulator) {
		s.observer = o
	}
}

// WithTracer overrides the tracer used for per-tick spans.
func WithTracer(t trace.Tracer) Option {
	return func(s *Simulator) {
		s.tracer = t
	}
}

type expiry struct {
	tick int
	node *scene.Node
}

// Simulator owns a scene, a sprite pool and the expiry schedule.
type Simulator struct {
	cfg      *config.SimConfig
	log      *zap.Logger
	tracer   trace.Tracer
	observer pool.Observer

	scene    *scene.Scene
	sprites  *pool.ContainerPool[*scene.Node]
	expiries *pqueue.MinQueue[expiry]
	live     map[*scene.Node]struct{}
	rng      *rand.Rand
	serial   int
}

// New validates cfg and builds a simulator with an empty scene.
func New(cfg *config.SimConfig, opts ...Option) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	s := &Simulator{
		cfg:      cfg,
		scene:    scene.New(),
		expiries: pqueue.New(func(a, b expiry) bool { return a.tick < b.tick }),
		live:     make(map[*scene.Node]struct{}),
		rng:      rand.New(rand.NewSource(cfg.Simulation.Seed)), //nolint:gosec // reproducible workload, not security sensitive
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Named("sim")
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(tracerName)
	}

	var reset func(*scene.Node)
	if cfg.Pool.ResetOnFree {
		reset = func(n *scene.Node) { n.SetTag("") }
	}
	poolOpts := []pool.Option{
		pool.WithName(cfg.Pool.Name),
		pool.WithCapacity(cfg.Pool.Capacity),
		pool.WithMode(cfg.PoolMode()),
		pool.WithLogger(s.log.Named("pool")),
	}
	if s.observer != nil {
		poolOpts = append(poolOpts, pool.WithObserver(s.observer))
	}
	s.sprites = pool.NewContainerPool[*scene.Node](
		pool.NewFactory(func() *scene.Node { return s.scene.NewNode("sprite") }, reset),
		s.scene,
		poolOpts...,
	)
	return s, nil
}

// Scene returns the simulated scene.
func (s *Simulator) Scene() *scene.Scene {
	return s.scene
}

// Pool returns the sprite pool.
func (s *Simulator) Pool() *pool.ContainerPool[*scene.Node] {
	return s.sprites
}

// Run executes the configured number of ticks, releases every sprite still
// alive, disposes the pool and flushes the scene. It stops early with the
// context error if ctx is cancelled between ticks.
func (s *Simulator) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	simCfg := s.cfg.Simulation

	ctx, span := s.tracer.Start(ctx, "sim.run", trace.WithAttributes(
		attribute.String("pool", s.sprites.Name()),
		attribute.Int("ticks", simCfg.Ticks),
	))
	defer span.End()

	report := &Report{
		Pool:  s.sprites.Name(),
		Mode:  s.sprites.Mode().String(),
		Ticks: simCfg.Ticks,
	}

	if err := s.sprites.Prewarm(s.cfg.Pool.Prewarm); err != nil {
		// a fresh pool is never prewarmed, so this is a real failure
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	s.log.Info("simulation started",
		zap.String("pool", report.Pool),
		zap.String("mode", report.Mode),
		zap.Int("prewarm", s.cfg.Pool.Prewarm),
		zap.Int("ticks", simCfg.Ticks))

	for tick := 0; tick < simCfg.Ticks; tick++ {
		if err := ctx.Err(); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		released, spawned, err := s.step(ctx, tick)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			return nil, err
		}
		report.Released += released
		report.Spawned += spawned
		if n := len(s.live); n > report.PeakOutstanding {
			report.PeakOutstanding = n
		}
	}

	report.Released += s.releaseUntil(int(^uint(0) >> 1))
	if container, ok := s.sprites.Container().(*scene.Node); ok {
		report.ParkedAtEnd = len(container.Children())
	}
	report.Stats = s.sprites.Stats()
	report.HitRate = report.Stats.HitRate()

	before := s.scene.Len()
	s.sprites.Dispose()
	s.scene.Flush()
	report.DestroyedOnDispose = before - s.scene.Len()

	report.RSSBytes = s.residentMemory()
	report.Duration = time.Since(start)

	s.log.Info("simulation finished",
		zap.Int("spawned", report.Spawned),
		zap.Int("released", report.Released),
		zap.Int("peak_outstanding", report.PeakOutstanding),
		zap.Float64("hit_rate", report.HitRate),
		zap.Duration("duration", report.Duration))
	return report, nil
}

// step releases the sprites due at tick, spawns new ones and optionally
// verifies the container invariant.
func (s *Simulator) step(ctx context.Context, tick int) (released, spawned int, err error) {
	_, span := s.tracer.Start(ctx, "sim.tick", trace.WithAttributes(attribute.Int("tick", tick)))
	defer span.End()

	released = s.releaseUntil(tick)

	spawned = s.cfg.Simulation.SpawnPerTick
	for _, n := range s.sprites.AllocateN(spawned) {
		s.serial++
		n.SetTag(fmt.Sprintf("sprite-%d", s.serial))
		s.live[n] = struct{}{}
		s.expiries.Push(expiry{tick: tick + s.lifetime(), node: n})
	}

	if s.cfg.Simulation.CheckInvariants {
		if err := s.CheckInvariant(); err != nil {
			span.SetStatus(codes.Error, err.Error())
			return 0, 0, errors.Wrap(err, errors.ErrorTypeInternal, "container invariant violated").
				WithDetail("tick", tick)
		}
	}

	span.SetAttributes(
		attribute.Int("released", released),
		attribute.Int("spawned", spawned),
		attribute.Int("outstanding", len(s.live)),
		attribute.Int("available", s.sprites.Available()),
	)
	s.log.Debug("tick",
		zap.Int("tick", tick),
		zap.Int("released", released),
		zap.Int("spawned", spawned),
		zap.Int("outstanding", len(s.live)))
	return released, spawned, nil
}

// releaseUntil frees every sprite whose expiry tick is at or before tick.
func (s *Simulator) releaseUntil(tick int) int {
	var due []*scene.Node
	for s.expiries.Any() {
		next, _ := s.expiries.Peek()
		if next.tick > tick {
			break
		}
		_, _ = s.expiries.Pop()
		delete(s.live, next.node)
		due = append(due, next.node)
	}
	s.sprites.FreeAll(due)
	return len(due)
}

func (s *Simulator) lifetime() int {
	lo, hi := s.cfg.Simulation.MinLifetime, s.cfg.Simulation.MaxLifetime
	return lo + s.rng.Intn(hi-lo+1)
}

// CheckInvariant verifies that parked sprites are inactive and under the pool
// container and that live sprites are active and detached from it.
func (s *Simulator) CheckInvariant() error {
	container, _ := s.sprites.Container().(*scene.Node)
	if container != nil {
		children := container.Children()
		if len(children) != s.sprites.Available() {
			return errors.New(errors.ErrorTypeInternal, "container does not hold the free list").
				WithDetail("children", len(children)).
				WithDetail("available", s.sprites.Available())
		}
		for _, n := range children {
			if n.Active() {
				return errors.New(errors.ErrorTypeInternal, "parked sprite is active").
					WithDetail("sprite", n.Tag())
			}
		}
	}
	for n := range s.live {
		if !n.Active() || (container != nil && n.Parent() == container) {
			return errors.New(errors.ErrorTypeInternal, "live sprite is parked").
				WithDetail("sprite", n.Tag())
		}
	}
	return nil
}

func (s *Simulator) residentMemory() uint64 {
	proc, err := process.NewProcess(int32(os.Getpid())) //nolint:gosec // pid fits in int32
	if err != nil {
		s.log.Debug("process info unavailable", zap.Error(err))
		return 0
	}
	mem, err := proc.MemoryInfo()
	if err != nil {
		s.log.Debug("memory info unavailable", zap.Error(err))
		return 0
	}
	return mem.RSS
}
