package observability

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	eventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hrbots_events_total",
			Help: "Total number of room events dispatched to handlers",
		},
		[]string{"type"},
	)

	storeWritesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hrbots_store_writes_total",
			Help: "Total number of stats increments by metric and status",
		},
		[]string{"metric", "status"},
	)

	weatherLookupsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hrbots_weather_lookups_total",
			Help: "Total number of weather lookups by outcome",
		},
		[]string{"outcome"},
	)

	eventProcessingDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hrbots_event_processing_duration_seconds",
			Help:    "Time spent dispatching one event to all handlers",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status"},
	)

	registerOnce sync.Once
)

// Init registers the collectors and installs a tracer provider. The returned
// function flushes the provider.
func Init(ctx context.Context) (shutdown func(context.Context) error) {
	registerOnce.Do(func() {
		prometheus.MustRegister(eventsTotal, storeWritesTotal, weatherLookupsTotal, eventProcessingDuration)
	})

	tp := trace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	return tp.Shutdown
}

// NewTranscript builds a logger that writes only the message, one per line.
func NewTranscript(w io.Writer) *zap.Logger {
	encoderCfg := zapcore.EncoderConfig{
		MessageKey:     "msg",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderCfg), zapcore.AddSync(w), zapcore.InfoLevel)
	return zap.New(core)
}

func RecordEvent(eventType string) {
	eventsTotal.WithLabelValues(eventType).Inc()
}

func RecordStoreWrite(metric string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	storeWritesTotal.WithLabelValues(metric, status).Inc()
}

func RecordWeatherLookup(outcome string) {
	weatherLookupsTotal.WithLabelValues(outcome).Inc()
}

// StartEventProcessing returns a function to record event processing duration
func StartEventProcessing() func(status string) {
	start := time.Now()
	return func(status string) {
		eventProcessingDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
	}
}
