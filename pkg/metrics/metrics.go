package metrics

import (
	"database/sql"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	InFlightGauge   prometheus.Gauge

	PatientsCreatedTotal       prometheus.Counter
	PredictionsTotal           *prometheus.CounterVec
	ClassifierUnavailableTotal prometheus.Counter

	FailedLoginsTotal prometheus.Counter

	namespace string
}

func NewCollector(serviceName string) *Collector {
	return &Collector{
		namespace: serviceName,

		RequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests by method, path, and status code.",
		}, []string{"method", "path", "status"}),

		RequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: serviceName,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency distribution.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"method", "path", "status"}),

		InFlightGauge: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: serviceName,
			Subsystem: "http",
			Name:      "in_flight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		}),

		PatientsCreatedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "clinical",
			Name:      "patients_created_total",
			Help:      "Total number of patient records created.",
		}),

		PredictionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "clinical",
			Name:      "predictions_total",
			Help:      "Total predictions persisted, by class label.",
		}, []string{"label"}),

		ClassifierUnavailableTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "clinical",
			Name:      "classifier_unavailable_total",
			Help:      "Intakes persisted without a prediction because the classifier was unavailable. Alert if growing.",
		}),

		FailedLoginsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "auth",
			Name:      "failed_logins_total",
			Help:      "Total rejected login attempts.",
		}),
	}
}

// ObserveDBPool exports the connection pool size as a gauge sampled at
// scrape time, so no polling loop is needed.
func (c *Collector) ObserveDBPool(db *sql.DB) {
	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: c.namespace,
		Subsystem: "db",
		Name:      "open_connections",
		Help:      "Current number of open database connections.",
	}, func() float64 {
		return float64(db.Stats().OpenConnections)
	})
}

func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
