package observability

import (
	"github.com/smallbiznis/telematch/internal/observability/metrics"
	"github.com/smallbiznis/telematch/internal/observability/tracing"
	"github.com/smallbiznis/telematch/pkg/telemetry"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
)

var Module = fx.Module("observability",
	fx.Provide(
		LoadConfig,
		provideMetricsConfig,
		metrics.NewProvider,
		metrics.New,
		provideTracingConfig,
		tracing.NewTracerProvider,
		telemetry.NewMetrics,
	),
	fx.Invoke(RunMetricsServer),
	fx.Invoke(func(trace.TracerProvider) {}),
)

func provideMetricsConfig(cfg Config) metrics.Config {
	return metrics.Config{
		Enabled:          cfg.OtelEnabled,
		ExporterEndpoint: cfg.OtelExporterEndpoint,
		ExporterProtocol: cfg.OtelExporterProtocol,
		ServiceName:      cfg.ServiceName,
		Environment:      cfg.Environment,
	}
}

func provideTracingConfig(cfg Config) tracing.Config {
	return tracing.Config{
		Enabled:          cfg.OtelEnabled,
		ExporterEndpoint: cfg.OtelExporterEndpoint,
		ExporterProtocol: cfg.OtelExporterProtocol,
		ServiceName:      cfg.ServiceName,
		ServiceVersion:   cfg.Version,
		Environment:      cfg.Environment,
	}
}
