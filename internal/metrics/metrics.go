package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 通知の結果ラベル
const (
	ResultSent    = "sent"
	ResultDropped = "dropped"
	ResultOffline = "offline"
)

// 遷移の発生元ラベル
const (
	SourceChef  = "chef"
	SourceSweep = "sweep"
	SourceLazy  = "lazy_sweep"
)

// Metrics は専用registryにぶら下げたcollector群。
// nilレシーバでも呼べる（テストで省略できるように）。
type Metrics struct {
	registry *prometheus.Registry

	ordersCreated   prometheus.Counter
	transitions     *prometheus.CounterVec
	notifications   *prometheus.CounterVec
	sweepDuration   prometheus.Histogram
	liveConnections prometheus.Gauge
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		ordersCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "chefconnect_orders_created_total",
			Help: "Orders created",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chefconnect_order_transitions_total",
			Help: "Order status transitions that were committed",
		}, []string{"to", "source"}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "chefconnect_notifications_total",
			Help: "Push notification attempts by result",
		}, []string{"event", "result"}),
		sweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "chefconnect_sweep_duration_seconds",
			Help:    "Duration of one expiry sweep",
			Buckets: prometheus.DefBuckets,
		}),
		liveConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "chefconnect_live_connections",
			Help: "Registered push channels",
		}),
	}

	registry.MustRegister(
		m.ordersCreated,
		m.transitions,
		m.notifications,
		m.sweepDuration,
		m.liveConnections,
	)
	return m
}

// /metrics用
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) OrderCreated() {
	if m == nil {
		return
	}
	m.ordersCreated.Inc()
}

func (m *Metrics) Transition(to string, source string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.transitions.WithLabelValues(to, source).Add(float64(n))
}

func (m *Metrics) Notification(event string, result string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(event, result).Inc()
}

func (m *Metrics) ObserveSweep(d time.Duration) {
	if m == nil {
		return
	}
	m.sweepDuration.Observe(d.Seconds())
}

func (m *Metrics) SetLiveConnections(n int) {
	if m == nil {
		return
	}
	m.liveConnections.Set(float64(n))
}
