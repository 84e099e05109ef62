// Package metrics exposes prometheus counters for the invoicing workflow.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/fx"
)

var Module = fx.Module("observability.metrics",
	fx.Provide(New),
)

type Metrics struct {
	InvoicesCreated   prometheus.Counter
	DocumentsRendered prometheus.Counter
	DocumentFailures  *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		InvoicesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fitora_invoices_created_total",
			Help: "Number of invoice records created.",
		}),
		DocumentsRendered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fitora_invoice_documents_rendered_total",
			Help: "Number of invoice documents rendered and uploaded.",
		}),
		DocumentFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fitora_invoice_document_failures_total",
			Help: "Invoice document failures by workflow step.",
		}, []string{"step"}),
	}
}
