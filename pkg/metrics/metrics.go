// Package metrics содержит счетчики Prometheus для жизненного цикла заявок и уведомлений.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// OrderTransitions считает успешные переходы статусов заявок.
	OrderTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_order_transitions_total",
			Help: "Количество переходов статусов заявок.",
		},
		[]string{"status"},
	)

	// OrderConflicts считает операции, проигравшие гонку за блокировку.
	OrderConflicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_order_conflicts_total",
			Help: "Операции, завершившиеся ErrConcurrentModification.",
		},
		[]string{"operation"},
	)

	// Notifications считает попытки доставки по типу сообщения и результату.
	Notifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crm_notifications_total",
			Help: "Попытки отправки уведомлений.",
		},
		[]string{"type", "result"},
	)

	NotificationDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "crm_notification_delivery_seconds",
			Help:    "Длительность доставки уведомления.",
			Buckets: prometheus.DefBuckets,
		},
	)

	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

func init() {
	prometheus.MustRegister(
		OrderTransitions, OrderConflicts, Notifications, NotificationDuration,
		HTTPRequests, HTTPLatency,
	)
}

// Result переводит флаг доставки в значение метки.
func Result(ok bool) string {
	if ok {
		return "sent"
	}
	return "failed"
}
