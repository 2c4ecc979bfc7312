package render

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics - Prometheus-метрики отрисовки уровней
type Metrics struct {
	duration *prometheus.HistogramVec
	levels   *prometheus.CounterVec
}

// NewMetrics создаёт метрики и регистрирует их в reg.
// Если reg == nil, используется глобальный регистр.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "render_level_duration_seconds",
			Help:    "Время отрисовки одного уровня.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 10),
		}, []string{"dungeon"}),
		levels: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "render_levels_total",
			Help: "Число отрисованных уровней.",
		}, []string{"dungeon", "mode"}),
	}

	reg.MustRegister(m.duration, m.levels)
	return m
}

func (m *Metrics) observe(dungeon, mode string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(dungeon).Observe(elapsed.Seconds())
	m.levels.WithLabelValues(dungeon, mode).Inc()
}
