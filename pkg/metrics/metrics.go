package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics набор Prometheus-метрик сервиса
type Metrics struct {
	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPInFlight        *prometheus.GaugeVec

	// Database
	DBQueryDuration   *prometheus.HistogramVec
	DBQueryErrors     *prometheus.CounterVec
	DBOpenConnections *prometheus.GaugeVec
	DBInUse           *prometheus.GaugeVec
	DBIdle            *prometheus.GaugeVec
	DBWaitCount       *prometheus.GaugeVec

	// Бронирования
	AppointmentsCreated    *prometheus.CounterVec
	BookingConflicts       *prometheus.CounterVec
	AppointmentTransitions *prometheus.CounterVec
	SlotGenerationDuration *prometheus.HistogramVec
	SlotCacheRequests      *prometheus.CounterVec
	OutboxPublished        *prometheus.CounterVec

	serviceName string
}

// New регистрирует метрики в default registry
func New(serviceName string) *Metrics {
	return NewWithRegisterer(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegisterer регистрирует метрики в переданном registry (используется в тестах)
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

		HTTPInFlight: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being served",
		}, []string{"service"}),

		DBQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"service", "operation"}),

		DBQueryErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "db_query_errors_total",
			Help: "Total number of failed database queries",
		}, []string{"service", "operation"}),

		DBOpenConnections: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_open_connections",
			Help: "Number of established database connections",
		}, []string{"service"}),

		DBInUse: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_in_use_connections",
			Help: "Number of database connections currently in use",
		}, []string{"service"}),

		DBIdle: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_idle_connections",
			Help: "Number of idle database connections",
		}, []string{"service"}),

		DBWaitCount: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_wait_count",
			Help: "Total number of connections waited for",
		}, []string{"service"}),

		AppointmentsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "appointments_created_total",
			Help: "Total number of committed appointments",
		}, []string{"service", "source"}),

		BookingConflicts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "booking_conflicts_total",
			Help: "Total number of booking attempts rejected because the slot was taken",
		}, []string{"service", "operation"}),

		AppointmentTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "appointment_transitions_total",
			Help: "Total number of appointment status transitions",
		}, []string{"service", "status"}),

		SlotGenerationDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "slot_generation_duration_seconds",
			Help:    "Duration of available slot computation",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"service"}),

		SlotCacheRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "slot_cache_requests_total",
			Help: "Available slot cache lookups by result",
		}, []string{"service", "result"}),

		OutboxPublished: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "outbox_published_total",
			Help: "Total number of outbox events published to the broker",
		}, []string{"service", "event_type"}),
	}
}

// ServiceName имя сервиса для label
func (m *Metrics) ServiceName() string {
	return m.serviceName
}

// IncAppointmentCreated учитывает созданную запись
func (m *Metrics) IncAppointmentCreated(source string) {
	m.AppointmentsCreated.WithLabelValues(m.serviceName, source).Inc()
}

// IncBookingConflict учитывает конфликт при бронировании
func (m *Metrics) IncBookingConflict(operation string) {
	m.BookingConflicts.WithLabelValues(m.serviceName, operation).Inc()
}

// IncTransition учитывает смену статуса записи
func (m *Metrics) IncTransition(status string) {
	m.AppointmentTransitions.WithLabelValues(m.serviceName, status).Inc()
}

// ObserveSlotGeneration фиксирует длительность расчёта слотов
func (m *Metrics) ObserveSlotGeneration(d time.Duration) {
	m.SlotGenerationDuration.WithLabelValues(m.serviceName).Observe(d.Seconds())
}

// IncSlotCache учитывает обращение к кэшу слотов (hit, miss, error)
func (m *Metrics) IncSlotCache(result string) {
	m.SlotCacheRequests.WithLabelValues(m.serviceName, result).Inc()
}

// IncOutboxPublished учитывает опубликованное событие
func (m *Metrics) IncOutboxPublished(eventType string) {
	m.OutboxPublished.WithLabelValues(m.serviceName, eventType).Inc()
}

// Nop реализация счётчиков бронирования без Prometheus (метрики выключены)
type Nop struct{}

func (Nop) IncAppointmentCreated(string)        {}
func (Nop) IncBookingConflict(string)           {}
func (Nop) IncTransition(string)                {}
func (Nop) ObserveSlotGeneration(time.Duration) {}
func (Nop) IncSlotCache(string)                 {}
func (Nop) IncOutboxPublished(string)           {}
