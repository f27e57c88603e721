package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	commandHandled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vitameter",
			Name:      "command_handled_total",
			Help:      "Count of handled menu commands by command name.",
		},
		[]string{"command"},
	)

	reportSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vitameter",
			Name:      "report_sent_total",
			Help:      "Count of life reports delivered by source.",
		},
		[]string{"source"},
	)

	deliveryFailed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "vitameter",
			Name:      "delivery_failed_total",
			Help:      "Count of failed outbound deliveries.",
		},
	)

	reminderFired = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "vitameter",
			Name:      "reminder_fired_total",
			Help:      "Count of weekly reminder jobs fired.",
		},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(commandHandled, reportSent, deliveryFailed, reminderFired)
	})
}

func IncCommandHandled(command string) {
	commandHandled.WithLabelValues(command).Inc()
}

func IncReportSent(source string) {
	reportSent.WithLabelValues(source).Inc()
}

func IncDeliveryFailed() {
	deliveryFailed.Inc()
}

func IncReminderFired() {
	reminderFired.Inc()
}
