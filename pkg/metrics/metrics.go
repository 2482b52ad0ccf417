// Package metrics exposes pool activity as Prometheus metrics.
//
// A Collector implements pool.Observer, so it is attached with
// pool.WithObserver and shared by any number of pools; each pool is told
// apart by the "pool" label.
//
//	reg := prometheus.NewRegistry()
//	collector, err := metrics.NewCollector(reg)
//	if err != nil {
//	    return err
//	}
//	sprites := pool.NewContainerPool[*scene.Node](factory, sc,
//	    pool.WithName("sprites"),
//	    pool.WithObserver(collector))
package metrics

import (
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/ajitpratap0/freelist/pkg/errors"
	"github.com/ajitpratap0/freelist/pkg/pool"
)

const namespace = "freelist"

// Collector records pool events into Prometheus vectors.
type Collector struct {
	allocations     *prometheus.CounterVec
	frees           *prometheus.CounterVec
	prewarmRejected *prometheus.CounterVec
	available       *prometheus.GaugeVec
	outstanding     *prometheus.GaugeVec
}

var _ pool.Observer = (*Collector)(nil)

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		allocations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pool",
				Name:      "allocations_total",
				Help:      "Instances handed out by the pool, by source (reused or constructed)",
			},
			[]string{"pool", "source"},
		),
		frees: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pool",
				Name:      "frees_total",
				Help:      "Instances returned to the pool",
			},
			[]string{"pool"},
		),
		prewarmRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "pool",
				Name:      "prewarm_rejected_total",
				Help:      "Prewarm calls ignored because the pool was already prewarmed",
			},
			[]string{"pool"},
		),
		available: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "pool",
				Name:      "available",
				Help:      "Current free-list size",
			},
			[]string{"pool"},
		),
		outstanding: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "pool",
				Name:      "outstanding",
				Help:      "Instances currently held by callers",
			},
			[]string{"pool"},
		),
	}

	for _, col := range []prometheus.Collector{
		c.allocations, c.frees, c.prewarmRejected, c.available, c.outstanding,
	} {
		if err := reg.Register(col); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to register pool metrics")
		}
	}
	return c, nil
}

// Allocated implements pool.Observer.
func (c *Collector) Allocated(name string, reused bool) {
	source := "constructed"
	if reused {
		source = "reused"
	}
	c.allocations.WithLabelValues(name, source).Inc()
}

// Freed implements pool.Observer.
func (c *Collector) Freed(name string) {
	c.frees.WithLabelValues(name).Inc()
}

// PrewarmRejected implements pool.Observer.
func (c *Collector) PrewarmRejected(name string) {
	c.prewarmRejected.WithLabelValues(name).Inc()
}

// Levels implements pool.Observer.
func (c *Collector) Levels(name string, available, outstanding int) {
	c.available.WithLabelValues(name).Set(float64(available))
	c.outstanding.WithLabelValues(name).Set(float64(outstanding))
}

// Dump writes every metric family gathered from g in the Prometheus text
// exposition format.
func Dump(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "failed to gather metrics")
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return errors.Wrap(err, errors.ErrorTypeInternal, "failed to encode metrics").
				WithDetail("family", mf.GetName())
		}
	}
	return nil
}
