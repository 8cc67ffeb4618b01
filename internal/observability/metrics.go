package observability

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kost_http_requests_total",
			Help: "Total number of HTTP requests processed by the kost service.",
		},
		[]string{"method", "route", "status"},
	)
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kost_http_request_duration_seconds",
			Help:    "HTTP request latencies in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
	grpcServerHandledTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "grpc_server_handled_total",
			Help: "Total number of gRPC requests handled by the server.",
		},
		[]string{"grpc_service", "grpc_method", "grpc_code"},
	)
	wsActiveConnections = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "kost_ws_active_connections",
			Help: "Number of active websocket subscriptions.",
		},
		[]string{"kind"},
	)
	wsEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kost_ws_events_total",
			Help: "Total number of websocket events.",
		},
		[]string{"kind", "event"},
	)
	amqpPublishErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "kost_amqp_publish_errors_total",
			Help: "Total number of AMQP publish errors.",
		},
	)
	bookingsCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "kost_bookings_created_total",
			Help: "Bookings created through the booking flow.",
		},
	)
	bookingTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kost_booking_status_transitions_total",
			Help: "Booking status transitions by target status and outcome.",
		},
		[]string{"to", "outcome"},
	)
	paymentsSettledTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kost_payments_settled_total",
			Help: "Payment confirmation events applied, by resulting status and source.",
		},
		[]string{"status", "source"},
	)
	messagesSentTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "kost_chat_messages_sent_total",
			Help: "Chat messages stored.",
		},
	)
	roomsGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "kost_rooms",
			Help: "Rooms in the catalog by availability.",
		},
		[]string{"availability"},
	)
	roomCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kost_room_cache_lookups_total",
			Help: "Room catalog cache lookups by result.",
		},
		[]string{"result"},
	)
)

func init() {
	prometheus.MustRegister(
		httpRequestsTotal,
		httpRequestDuration,
		grpcServerHandledTotal,
		wsActiveConnections,
		wsEventsTotal,
		amqpPublishErrorsTotal,
		bookingsCreatedTotal,
		bookingTransitionsTotal,
		paymentsSettledTotal,
		messagesSentTotal,
		roomsGauge,
		roomCacheTotal,
	)
}

func HTTPMetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()

		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(status)).Inc()
		httpRequestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

func GRPCServerMetricsUnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		resp, err := handler(ctx, req)
		statusInfo := status.Convert(err)
		service, method := splitFullMethod(info.FullMethod)
		grpcServerHandledTotal.WithLabelValues(service, method, statusInfo.Code().String()).Inc()
		return resp, err
	}
}

func splitFullMethod(fullMethod string) (string, string) {
	parts := strings.Split(fullMethod, "/")
	if len(parts) < 3 {
		return "unknown", "unknown"
	}
	return parts[1], parts[2]
}

func IncWSActive(kind string) {
	wsActiveConnections.WithLabelValues(kind).Inc()
}

func DecWSActive(kind string) {
	wsActiveConnections.WithLabelValues(kind).Dec()
}

func IncWSEvent(kind, event string) {
	wsEventsTotal.WithLabelValues(kind, event).Inc()
}

func IncAMQPPublishError() {
	amqpPublishErrorsTotal.Inc()
}

func IncBookingCreated() {
	bookingsCreatedTotal.Inc()
}

// ObserveTransition records an owner status change attempt.
func ObserveTransition(to, outcome string) {
	bookingTransitionsTotal.WithLabelValues(to, outcome).Inc()
}

func IncPaymentSettled(status, source string) {
	paymentsSettledTotal.WithLabelValues(status, source).Inc()
}

func IncMessageSent() {
	messagesSentTotal.Inc()
}

// SetRoomCounts publishes the current inventory split.
func SetRoomCounts(total, available int) {
	roomsGauge.WithLabelValues("available").Set(float64(available))
	roomsGauge.WithLabelValues("unavailable").Set(float64(total - available))
}

func IncRoomCache(result string) {
	roomCacheTotal.WithLabelValues(result).Inc()
}
