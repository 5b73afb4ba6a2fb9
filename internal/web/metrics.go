package web

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"nmeafix/internal/gps"
	"nmeafix/internal/nmea"
)

// Metrics is the Prometheus view of ingestion. It owns its registry so tests
// and multiple instances do not collide on the default one.
type Metrics struct {
	reg *prometheus.Registry

	lines     prometheus.Counter
	sentences *prometheus.CounterVec
	errors    *prometheus.CounterVec

	fixValid   prometheus.Gauge
	satsUsed   prometheus.Gauge
	satsInView prometheus.Gauge
	hdop       prometheus.Gauge
	lastLine   prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		lines: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "nmeafix",
			Name:      "lines_total",
			Help:      "Lines read from the receiver.",
		}),
		sentences: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nmeafix",
			Name:      "sentences_total",
			Help:      "Accepted sentences by type.",
		}, []string{"type"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nmeafix",
			Name:      "errors_total",
			Help:      "Rejected lines by error kind.",
		}, []string{"kind"}),
		fixValid: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "nmeafix",
			Name:      "fix_valid",
			Help:      "1 when a usable position is known.",
		}),
		satsUsed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "nmeafix",
			Name:      "satellites_used",
			Help:      "Satellites used in the fix.",
		}),
		satsInView: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "nmeafix",
			Name:      "satellites_in_view",
			Help:      "Satellites in the last completed view.",
		}),
		hdop: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "nmeafix",
			Name:      "hdop",
			Help:      "Horizontal dilution of precision.",
		}),
		lastLine: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "nmeafix",
			Name:      "last_line_timestamp_seconds",
			Help:      "Unix time of the last line read.",
		}),
	}
	m.reg.MustRegister(
		m.lines, m.sentences, m.errors,
		m.fixValid, m.satsUsed, m.satsInView, m.hdop, m.lastLine,
		prometheus.NewGoCollector(),
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
	)
	return m
}

// Observe has the gps.LineHook signature.
func (m *Metrics) Observe(now time.Time, _ string, s nmea.Sentence, err error) {
	m.lines.Inc()
	m.lastLine.Set(float64(now.Unix()) + float64(now.Nanosecond())/1e9)
	if err != nil {
		m.errors.WithLabelValues(nmea.ErrorKind(err)).Inc()
		return
	}
	m.sentences.WithLabelValues(s.Kind().String()).Inc()
}

// SetFix refreshes the fix gauges.
func (m *Metrics) SetFix(snap gps.Snapshot) {
	if snap.Valid {
		m.fixValid.Set(1)
	} else {
		m.fixValid.Set(0)
	}
	if snap.Satellites != nil {
		m.satsUsed.Set(float64(*snap.Satellites))
	}
	m.satsInView.Set(float64(len(snap.SatsInView)))
	if snap.HDOP != nil {
		m.hdop.Set(*snap.HDOP)
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
