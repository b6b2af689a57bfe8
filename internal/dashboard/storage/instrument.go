package storage

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("finitefield.org/artist-dashboard/internal/dashboard/storage")

var (
	opsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dashboard",
		Subsystem: "storage",
		Name:      "ops_total",
		Help:      "Storage facade operations partitioned by operation and result.",
	}, []string{"op", "result"})

	decodeFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "dashboard",
		Subsystem: "storage",
		Name:      "decode_failures_total",
		Help:      "Persisted JSON values that failed to decode and were replaced by defaults.",
	})
)

// Collectors returns the metrics exported by the storage layer.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{opsTotal, decodeFailures}
}

func startSpan(ctx context.Context, op string, scope string, key Key) (context.Context, trace.Span) {
	return tracer.Start(ctx, "storage."+op, trace.WithAttributes(
		attribute.String("storage.scope", scope),
		attribute.String("storage.key", string(key)),
	))
}

func finishSpan(span trace.Span, op string, err error) {
	result := "ok"
	switch {
	case err == nil:
	case errors.Is(err, ErrQuotaExceeded):
		result = "quota_exceeded"
	default:
		result = "error"
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, result)
	}
	opsTotal.WithLabelValues(op, result).Inc()
	span.End()
}
