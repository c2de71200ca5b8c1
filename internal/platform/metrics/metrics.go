package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	PurchasesCreated    prometheus.Counter
	PurchasesClosed     prometheus.Counter
	ItemMutations       prometheus.Counter
	AuditRecordsWritten prometheus.Counter
	AuditRecordsDropped prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		PurchasesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tally_purchases_created_total",
			Help: "Total number of purchases created",
		}),
		PurchasesClosed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tally_purchases_closed_total",
			Help: "Total number of purchases closed",
		}),
		ItemMutations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tally_item_mutations_total",
			Help: "Total number of purchase item mutations committed",
		}),
		AuditRecordsWritten: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tally_audit_records_written_total",
			Help: "Total number of audit records persisted",
		}),
		AuditRecordsDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "tally_audit_records_dropped_total",
			Help: "Total number of audit records that failed to persist",
		}),
	}
}
