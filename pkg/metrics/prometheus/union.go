// Package prometheus provides the Prometheus implementation of
// metrics.UnionMetrics.
package prometheus

import (
	"github.com/algebnaly/xdr-brk-enum/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// Label names.
const (
	LabelUnion     = "union"
	LabelVariant   = "variant"
	LabelOutcome   = "outcome"
	LabelErrorCode = "error_code"
)

const (
	namespace = "xdrenum"
	subsystem = "union"
)

// unionMetrics is the Prometheus implementation of metrics.UnionMetrics.
type unionMetrics struct {
	resolveTotal *prometheus.CounterVec
	encodeTotal  *prometheus.CounterVec
	decodeTotal  *prometheus.CounterVec
	encodeBytes  *prometheus.HistogramVec
	decodeBytes  *prometheus.HistogramVec
	errorsTotal  *prometheus.CounterVec
}

// sizeBuckets cover a bare discriminant up to large opaque payloads.
var sizeBuckets = []float64{
	4,       // discriminant only
	16,      // a few scalars
	64,      // short strings
	256,     // small records
	1024,    // 1KB
	4096,    // 4KB
	65536,   // 64KB
	1048576, // 1MB - maximum opaque length
}

// NewUnionMetrics creates union metrics and registers them with registry.
// If registry is nil the metrics are created but not registered.
func NewUnionMetrics(registry prometheus.Registerer) metrics.UnionMetrics {
	m := &unionMetrics{
		resolveTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "resolve_total",
				Help:      "Total number of union definitions resolved",
			},
			[]string{LabelUnion, LabelOutcome},
		),
		encodeTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "encode_total",
				Help:      "Total number of union values encoded",
			},
			[]string{LabelUnion, LabelVariant, LabelOutcome},
		),
		decodeTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "decode_total",
				Help:      "Total number of union values decoded",
			},
			[]string{LabelUnion, LabelVariant, LabelOutcome},
		),
		encodeBytes: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "encode_bytes",
				Help:      "Size of successfully encoded union values in bytes",
				Buckets:   sizeBuckets,
			},
			[]string{LabelUnion},
		),
		decodeBytes: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "decode_bytes",
				Help:      "Bytes consumed by successfully decoded union values",
				Buckets:   sizeBuckets,
			},
			[]string{LabelUnion},
		),
		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "errors_total",
				Help:      "Total number of union errors by error code",
			},
			[]string{LabelUnion, LabelErrorCode},
		),
	}

	if registry != nil {
		registry.MustRegister(
			m.resolveTotal,
			m.encodeTotal,
			m.decodeTotal,
			m.encodeBytes,
			m.decodeBytes,
			m.errorsTotal,
		)
	}

	return m
}

func (m *unionMetrics) RecordResolve(union string, errorCode string) {
	m.resolveTotal.WithLabelValues(union, metrics.Outcome(errorCode)).Inc()
	m.recordError(union, errorCode)
}

func (m *unionMetrics) RecordEncode(union string, variant string, bytes int, errorCode string) {
	m.encodeTotal.WithLabelValues(union, variant, metrics.Outcome(errorCode)).Inc()
	if errorCode == "" {
		m.encodeBytes.WithLabelValues(union).Observe(float64(bytes))
	}
	m.recordError(union, errorCode)
}

func (m *unionMetrics) RecordDecode(union string, variant string, bytes int, errorCode string) {
	m.decodeTotal.WithLabelValues(union, variant, metrics.Outcome(errorCode)).Inc()
	if errorCode == "" {
		m.decodeBytes.WithLabelValues(union).Observe(float64(bytes))
	}
	m.recordError(union, errorCode)
}

func (m *unionMetrics) recordError(union, errorCode string) {
	if errorCode != "" {
		m.errorsTotal.WithLabelValues(union, errorCode).Inc()
	}
}
