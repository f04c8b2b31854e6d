package pipeline

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the pipeline's prometheus collectors.
type Metrics struct {
	DocumentsProcessed *prometheus.CounterVec
	TamperVerdicts     *prometheus.CounterVec
	ExtractionRetries  prometheus.Counter
}

// NewMetrics creates and registers the pipeline metrics.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		DocumentsProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "documents_processed_total",
				Help: "Total number of documents that reached a terminal pipeline outcome.",
			},
			[]string{"outcome"},
		),
		TamperVerdicts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tamper_verdicts_total",
				Help: "Total tamper gate verdicts by status.",
			},
			[]string{"status"},
		),
		ExtractionRetries: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "extraction_retries_total",
				Help: "Total extraction re-runs triggered by classification failures.",
			},
		),
	}
	for _, c := range []prometheus.Collector{m.DocumentsProcessed, m.TamperVerdicts, m.ExtractionRetries} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}
