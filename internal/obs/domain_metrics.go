package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// CalculationsTotal counts discount computations by outcome.
	CalculationsTotal *prometheus.CounterVec
	// CalculationDuration records computation latency in milliseconds.
	CalculationDuration prometheus.Histogram
	// TableMutationsTotal counts discount table writes by operation and outcome.
	TableMutationsTotal *prometheus.CounterVec
	// CascadeReassignedPartners tracks how many partners each cascade deletion repoints.
	CascadeReassignedPartners prometheus.Histogram
)

// MustRegisterDomainMetrics initialises and registers domain-specific Prometheus collectors.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		CalculationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calculations_total",
			Help:      "Count of progressive discount computations by result.",
		}, []string{"result"})
		CalculationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "calculation_duration_ms",
			Help:      "Latency of discount computations in milliseconds.",
			Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250},
		})
		TableMutationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "table_mutations_total",
			Help:      "Count of discount table mutations by operation and result.",
		}, []string{"op", "result"})
		CascadeReassignedPartners = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cascade_reassigned_partners",
			Help:      "Partners repointed to the base table per cascade deletion.",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100},
		})
		mustRegister(reg, CalculationsTotal, CalculationDuration, TableMutationsTotal, CascadeReassignedPartners)
	})
}
