package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements analysis.Metrics using Prometheus.
type Recorder struct {
	vendorRequests *prometheus.CounterVec
	vendorLatency  *prometheus.HistogramVec
}

// New registers the vendor metrics with reg.
func New(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		vendorRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tradingcoach_vendor_requests_total",
				Help: "Total number of chart analysis calls per vendor and outcome",
			},
			[]string{"vendor", "outcome"},
		),
		vendorLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tradingcoach_vendor_duration_seconds",
				Help:    "Duration of chart analysis calls in seconds",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60, 90, 120},
			},
			[]string{"vendor"},
		),
	}
}

// ObserveVendorCall records one finished vendor call.
func (r *Recorder) ObserveVendorCall(vendor, outcome string, elapsed time.Duration) {
	r.vendorRequests.WithLabelValues(vendor, outcome).Inc()
	r.vendorLatency.WithLabelValues(vendor).Observe(elapsed.Seconds())
}
