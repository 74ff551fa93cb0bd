// Package metrics holds the business counters exposed on /metrics.
// Usecases record here; the HTTP layer has its own request metrics in
// the middleware package.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	consultationsCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "consultations_completed_total",
			Help: "Total number of consultations that reached the pitch stage",
		},
	)

	subscriptionsActivated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "subscriptions_activated_total",
			Help: "Total number of memberships activated by webhook",
		},
	)

	integrationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "integration_errors_total",
			Help: "Total number of third-party integration errors",
		},
		[]string{"service"},
	)
)

func RecordConsultationCompleted() {
	consultationsCompleted.Inc()
}

func RecordSubscriptionActivation() {
	subscriptionsActivated.Inc()
}

func RecordIntegrationError(service string) {
	integrationErrors.WithLabelValues(service).Inc()
}
