package delivery

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts records through the pipeline stages. The collectors work
// unregistered; pass a Registerer to expose them.
type Metrics struct {
	Enqueued  prometheus.Counter
	Delivered prometheus.Counter
	Attempts  prometheus.Counter
	Buffered  prometheus.Counter
	Dropped   prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Enqueued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "redarch_logging_records_enqueued_total",
			Help: "Records accepted into the delivery queue.",
		}),
		Delivered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "redarch_logging_records_delivered_total",
			Help: "Records acknowledged by the logging API.",
		}),
		Attempts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "redarch_logging_delivery_attempts_total",
			Help: "Individual HTTP delivery attempts, including failures.",
		}),
		Buffered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "redarch_logging_records_buffered_total",
			Help: "Records persisted to the disk buffer after an exhausted cycle.",
		}),
		Dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "redarch_logging_records_dropped_total",
			Help: "Records permanently dropped after exhausting all retries.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Enqueued, m.Delivered, m.Attempts, m.Buffered, m.Dropped)
	}
	return m
}
