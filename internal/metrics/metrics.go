package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buitransport_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "buitransport_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	BookingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buitransport_bookings_total",
			Help: "Total number of bookings created",
		},
		[]string{"payment_method"},
	)

	BookingTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buitransport_booking_transitions_total",
			Help: "Total number of booking status transitions",
		},
		[]string{"from", "to"},
	)

	SeatsReservedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "buitransport_seats_reserved_total",
			Help: "Total number of seats reserved",
		},
	)

	SeatsReleasedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "buitransport_seats_released_total",
			Help: "Total number of seats released back to inventory",
		},
	)

	CapacityRejectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "buitransport_capacity_rejections_total",
			Help: "Total number of bookings rejected for insufficient seats",
		},
	)

	TransactionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buitransport_transactions_total",
			Help: "Total number of financial transactions by type and terminal status",
		},
		[]string{"type", "status"},
	)

	WalletTopUpsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "buitransport_wallet_topups_total",
			Help: "Total number of wallet top-ups",
		},
	)

	RefundRequestsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "buitransport_refund_requests_total",
			Help: "Total number of refund requests created",
		},
	)

	RefundDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buitransport_refund_decisions_total",
			Help: "Total number of refund request decisions",
		},
		[]string{"decision"},
	)

	NotificationsQueuedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "buitransport_notifications_queued_total",
			Help: "Total number of domain events queued for notification delivery",
		},
		[]string{"event"},
	)

	NotificationQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "buitransport_notification_queue_length",
			Help: "Current length of the notification event queue",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordBooking(paymentMethod string) {
	BookingsTotal.WithLabelValues(paymentMethod).Inc()
}

func RecordBookingTransition(from, to string) {
	BookingTransitionsTotal.WithLabelValues(from, to).Inc()
}

func RecordSeatsReserved(count int) {
	SeatsReservedTotal.Add(float64(count))
}

func RecordSeatsReleased(count int) {
	SeatsReleasedTotal.Add(float64(count))
}

func RecordCapacityRejection() {
	CapacityRejectionsTotal.Inc()
}

func RecordTransaction(txType, status string) {
	TransactionsTotal.WithLabelValues(txType, status).Inc()
}

func RecordWalletTopUp() {
	WalletTopUpsTotal.Inc()
}

func RecordRefundRequest() {
	RefundRequestsTotal.Inc()
}

func RecordRefundDecision(decision string) {
	RefundDecisionsTotal.WithLabelValues(decision).Inc()
}

func RecordNotificationQueued(event string) {
	NotificationsQueuedTotal.WithLabelValues(event).Inc()
}
