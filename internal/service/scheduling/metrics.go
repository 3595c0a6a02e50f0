package scheduling

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	verifySuccesses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scheduling_verifications_total",
		Help: "Number of booking plans that passed overlap verification",
	})
	verifyConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scheduling_conflicts_total",
		Help: "Number of overlap conflicts detected during verification",
	})
	planRollbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "scheduling_plan_rollbacks_total",
		Help: "Number of compensating rollbacks after partial plan creation",
	})
)

// RecordRollback counts one compensating rollback of a partially created
// plan.
func RecordRollback() {
	planRollbacks.Inc()
}
