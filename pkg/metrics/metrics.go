package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Результаты бизнес-операций для лейбла result
const (
	ResultCreated   = "created"
	ResultReplayed  = "replayed"
	ResultConflict  = "conflict"
	ResultRejected  = "rejected"
	ResultError     = "error"
	ResultPublished = "published"
	ResultFailed    = "failed"
	ResultSent      = "sent"
	ResultSkipped   = "skipped"
)

// Metrics набор prometheus метрик сервиса.
// Методы Observe* безопасно вызывать на nil (метрики выключены).
type Metrics struct {
	serviceName string

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	DBQueryDuration   *prometheus.HistogramVec
	DBQueryErrors     *prometheus.CounterVec
	DBOpenConnections *prometheus.GaugeVec

	BookingCommits *prometheus.CounterVec
	OutboxEvents   *prometheus.CounterVec
	Notifications  *prometheus.CounterVec
}

// New регистрирует метрики в prometheus.DefaultRegisterer
func New(serviceName string) *Metrics {
	return NewWithRegisterer(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegisterer регистрирует метрики в указанном реестре (в тестах - prometheus.NewRegistry())
func NewWithRegisterer(serviceName string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		serviceName: serviceName,

		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"service", "method", "path", "status"}),

		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"service", "method", "path"}),

		DBQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"service", "operation"}),

		DBQueryErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "db_query_errors_total",
			Help: "Total number of failed database queries",
		}, []string{"service", "operation"}),

		DBOpenConnections: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_connections",
			Help: "Database connection pool state",
		}, []string{"service", "state"}),

		BookingCommits: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_commits_total",
			Help: "Booking commit attempts by result",
		}, []string{"service", "result"}),

		OutboxEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "outbox_events_total",
			Help: "Outbox events processed by relay",
		}, []string{"service", "result"}),

		Notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "notifications_total",
			Help: "Owner notifications by result",
		}, []string{"service", "result"}),
	}
}

// ServiceName возвращает имя сервиса для лейбла service
func (m *Metrics) ServiceName() string {
	if m == nil {
		return ""
	}
	return m.serviceName
}

// ObserveBookingCommit учитывает попытку создания бронирования
func (m *Metrics) ObserveBookingCommit(result string) {
	if m == nil {
		return
	}
	m.BookingCommits.WithLabelValues(m.serviceName, result).Inc()
}

// ObserveOutbox учитывает обработанные relay события
func (m *Metrics) ObserveOutbox(result string, count int) {
	if m == nil || count == 0 {
		return
	}
	m.OutboxEvents.WithLabelValues(m.serviceName, result).Add(float64(count))
}

// ObserveNotification учитывает отправку уведомления владельцу
func (m *Metrics) ObserveNotification(result string) {
	if m == nil {
		return
	}
	m.Notifications.WithLabelValues(m.serviceName, result).Inc()
}
