package pool

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ajitpratap0/freelist/pkg/errors"
	"github.com/ajitpratap0/freelist/pkg/logger"
)

// Mode selects how a ContainerPool tears its container down on Dispose.
type Mode int

const (
	// ModeRuntime defers container destruction to the host (end of frame).
	ModeRuntime Mode = iota
	// ModeAuthoring destroys the container synchronously.
	ModeAuthoring
)

// String returns the configuration name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeRuntime:
		return "runtime"
	case ModeAuthoring:
		return "authoring"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode parses "runtime" or "authoring" (case-insensitive).
// An empty string selects ModeRuntime.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "runtime":
		return ModeRuntime, nil
	case "authoring":
		return ModeAuthoring, nil
	default:
		return ModeRuntime, errors.New(errors.ErrorTypeValidation, "unknown pool mode").
			WithDetail("mode", s)
	}
}

// Option configures a Pool or ContainerPool.
type Option func(*settings)

type settings struct {
	name     string
	log      *zap.Logger
	observer Observer
	capacity int
	mode     Mode
}

func newSettings(opts []Option) settings {
	s := settings{
		name:     "pool",
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.log == nil {
		s.log = logger.Named("pool")
	}
	return s
}

// WithName sets the pool name used in diagnostics, metrics labels and the
// container name.
func WithName(name string) Option {
	return func(s *settings) {
		if name != "" {
			s.name = name
		}
	}
}

// WithLogger sets the logger that receives pool diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) {
		s.log = l
	}
}

// WithObserver attaches an Observer, typically a metrics collector.
func WithObserver(o Observer) Option {
	return func(s *settings) {
		if o != nil {
			s.observer = o
		}
	}
}

// WithCapacity preallocates room for n free-list entries.
func WithCapacity(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.capacity = n
		}
	}
}

// WithMode sets the container teardown mode. Only ContainerPool uses it.
func WithMode(m Mode) Option {
	return func(s *settings) {
		s.mode = m
	}
}
