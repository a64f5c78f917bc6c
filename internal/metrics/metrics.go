// Package metrics exposes Prometheus instrumentation for the collection
// core: one counter per (table, operation, outcome) and a counter for
// fallback bindings, so an operator can see how often the dashboard is
// running offline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values.
const (
	OutcomeOK         = "ok"
	OutcomeRejected   = "rejected"
	OutcomeRolledBack = "rolled_back"
)

// Collections holds the metrics shared by all synchronized collections.
// A nil *Collections is valid and records nothing.
type Collections struct {
	ops              *prometheus.CounterVec
	fallbackBindings *prometheus.CounterVec
}

// New registers the collection metrics with reg.
func New(reg prometheus.Registerer) *Collections {
	factory := promauto.With(reg)
	return &Collections{
		ops: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "agentdash_collection_ops_total",
			Help: "Collection operations by table, operation and outcome.",
		}, []string{"table", "op", "outcome"}),
		fallbackBindings: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "agentdash_collection_fallback_bindings_total",
			Help: "Collections that bound to the local fallback store at open.",
		}, []string{"table"}),
	}
}

// ObserveOp records one collection operation.
func (c *Collections) ObserveOp(table, op, outcome string) {
	if c == nil {
		return
	}
	c.ops.WithLabelValues(table, op, outcome).Inc()
}

// ObserveFallbackBinding records a collection binding to the local store.
func (c *Collections) ObserveFallbackBinding(table string) {
	if c == nil {
		return
	}
	c.fallbackBindings.WithLabelValues(table).Inc()
}
