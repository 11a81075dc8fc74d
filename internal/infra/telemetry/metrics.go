package telemetry

import (
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

// AccessMetrics exposes Prometheus collectors for access resolution.
type AccessMetrics struct {
	decisions    *prometheus.CounterVec
	cacheLookups *prometheus.CounterVec
	sharesPurged prometheus.Counter
}

// NewAccessMetrics constructs and registers the access decision collectors.
func NewAccessMetrics(reg prometheus.Registerer) (*AccessMetrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	decisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "collab",
		Subsystem: "access",
		Name:      "decisions_total",
		Help:      "Total access decisions partitioned by justifying reason and outcome.",
	}, []string{"reason", "allowed"})

	cacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "collab",
		Subsystem: "access",
		Name:      "decision_cache_lookups_total",
		Help:      "Decision cache lookups partitioned by hit/miss.",
	}, []string{"result"})

	sharesPurged := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "collab",
		Subsystem: "shares",
		Name:      "expired_purged_total",
		Help:      "Expired share rows removed by the housekeeping sweep.",
	})

	for _, c := range []prometheus.Collector{decisions, cacheLookups, sharesPurged} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return nil, fmt.Errorf("register access collector: %w", err)
			}
		}
	}

	return &AccessMetrics{
		decisions:    decisions,
		cacheLookups: cacheLookups,
		sharesPurged: sharesPurged,
	}, nil
}

// CountDecision records one resolved access decision.
func (m *AccessMetrics) CountDecision(reason string, allowed bool) {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(reason, strconv.FormatBool(allowed)).Inc()
}

// CountCacheLookup records one decision cache lookup.
func (m *AccessMetrics) CountCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

// CountSharesPurged records housekeeping removals.
func (m *AccessMetrics) CountSharesPurged(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.sharesPurged.Add(float64(n))
}
