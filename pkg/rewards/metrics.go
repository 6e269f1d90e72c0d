package rewards

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricsNamespace = "rewards_client"
)

// Metrics are the reconciler and claim flow counters
type Metrics struct {
	Cycles       *prometheus.CounterVec
	Discarded    prometheus.Counter
	Degraded     *prometheus.CounterVec
	Claims       *prometheus.CounterVec
	Triggers     *prometheus.CounterVec
	UpdateEvents prometheus.Counter
}

// NewMetrics creates the metrics and registers them on reg if it is not nil
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "reconcile_cycles_total",
			Help:      "Completed reconciliation cycles by resulting status",
		}, []string{"status"}),
		Discarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "reconcile_discarded_total",
			Help:      "Reconciliation results dropped for a stale generation or account",
		}),
		Degraded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "reconcile_degraded_reads_total",
			Help:      "Non-critical reads that failed and were degraded to empty values",
		}, []string{"field"}),
		Claims: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "claims_total",
			Help:      "Claim attempts by result",
		}, []string{"result"}),
		Triggers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "update_triggers_total",
			Help:      "Rewards update requests by result",
		}, []string{"result"}),
		UpdateEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "rewards_update_events_total",
			Help:      "RewardsUpdate events received from the distributor",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Cycles, m.Discarded, m.Degraded, m.Claims, m.Triggers, m.UpdateEvents)
	}
	return m
}
