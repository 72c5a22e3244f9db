package metrics

import (
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var serviceLabel atomic.Value

// SetServiceLabel sets the "service" label used by the domain recorders below.
func SetServiceLabel(name string) {
	serviceLabel.Store(name)
}

// ServiceLabel returns the current "service" label, "campus-ride" when unset.
func ServiceLabel() string {
	if v, ok := serviceLabel.Load().(string); ok && v != "" {
		return v
	}
	return "campus-ride"
}

var (
	// HTTP metrics
	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"service", "method", "path", "status"},
	)

	HttpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method", "path", "status"},
	)

	HttpRequestsInFlight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current number of HTTP requests being processed",
		},
		[]string{"service"},
	)

	// Business metrics
	RideRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ride_requests_total",
			Help: "Total number of ride requests by resulting status",
		},
		[]string{"service", "status"},
	)

	NegotiationTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "negotiation_transitions_total",
			Help: "Negotiation events appended, by kind and outcome",
		},
		[]string{"service", "kind", "outcome"},
	)

	HeartbeatsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "location_heartbeats_total",
			Help: "Location heartbeats recorded, by source and status",
		},
		[]string{"service", "source", "status"},
	)

	EligibleDriversFound = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eligible_drivers_found",
			Help:    "Number of eligible drivers returned per proximity search",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
		},
		[]string{"service"},
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Notification deliveries by channel and status",
		},
		[]string{"service", "channel", "status"},
	)

	WebSocketConnectionsGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "websocket_connections_total",
			Help: "Current number of active WebSocket connections",
		},
		[]string{"service"},
	)

	SweepsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "expiry_sweep_items_total",
			Help: "Items moved by the expiry sweeper, by kind",
		},
		[]string{"service", "kind"},
	)

	KafkaMessagesConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_consumed_total",
			Help: "Total number of Kafka messages consumed",
		},
		[]string{"service", "topic", "status"},
	)

	DatabaseQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "database_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"service", "operation", "status"},
	)

	DatabaseQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "database_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "operation"},
	)

	RabbitMQMessagesPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rabbitmq_messages_published_total",
			Help: "Total number of messages published to RabbitMQ",
		},
		[]string{"service", "queue", "status"},
	)
)

// RecordHTTPMetrics records HTTP request metrics
func RecordHTTPMetrics(service, method, path string, statusCode int, duration time.Duration) {
	status := strconv.Itoa(statusCode)
	HttpRequestsTotal.WithLabelValues(service, method, path, status).Inc()
	HttpRequestDuration.WithLabelValues(service, method, path, status).Observe(duration.Seconds())
}

// RecordDatabaseQuery records database query metrics
func RecordDatabaseQuery(service, operation string, err error, duration time.Duration) {
	DatabaseQueriesTotal.WithLabelValues(service, operation, statusOf(err)).Inc()
	DatabaseQueryDuration.WithLabelValues(service, operation).Observe(duration.Seconds())
}

// RecordRabbitMQPublish records RabbitMQ publish metrics
func RecordRabbitMQPublish(service, queue string, err error) {
	RabbitMQMessagesPublished.WithLabelValues(service, queue, statusOf(err)).Inc()
}


// RecordNegotiation records one attempted negotiation transition
func RecordNegotiation(kind string, err error) {
	NegotiationTransitionsTotal.WithLabelValues(ServiceLabel(), kind, statusOf(err)).Inc()
}

// RecordHeartbeat records a location heartbeat
func RecordHeartbeat(source string, err error) {
	HeartbeatsTotal.WithLabelValues(ServiceLabel(), source, statusOf(err)).Inc()
}

// RecordNotification records a notification delivery attempt on one channel
func RecordNotification(channel string, err error) {
	NotificationsTotal.WithLabelValues(ServiceLabel(), channel, statusOf(err)).Inc()
}

// RecordKafkaConsume records a consumed Kafka message
func RecordKafkaConsume(topic string, err error) {
	KafkaMessagesConsumed.WithLabelValues(ServiceLabel(), topic, statusOf(err)).Inc()
}

func statusOf(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
