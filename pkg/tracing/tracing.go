package tracing

import (
	"context"
	"fmt"

	"signal_bot/pkg/logger"

	"github.com/opentracing/opentracing-go"
	jCfg "github.com/uber/jaeger-client-go/config"
	"github.com/uber/jaeger-lib/metrics"
)

var (
	serviceName = "default"
)

func SetServiceName(newName string) string {
	oldName := serviceName
	serviceName = newName

	return oldName
}

type Config struct {
	Host string
	Port int
}

func InitTracer(conf Config) (opentracing.Tracer, func(), error) {
	cfg := &jCfg.Configuration{
		ServiceName: serviceName,
		Sampler: &jCfg.SamplerConfig{
			Type:  "const",
			Param: 1,
		},
		Reporter: &jCfg.ReporterConfig{
			LogSpans:           true,
			LocalAgentHostPort: fmt.Sprintf("%s:%d", conf.Host, conf.Port),
		},
	}

	jMetricsFactory := metrics.NullFactory
	tracer, closer, err := cfg.NewTracer(
		jCfg.Metrics(jMetricsFactory),
	)
	if err != nil {
		return nil, nil, err
	}

	opentracing.SetGlobalTracer(tracer)
	return tracer, func() {
		if err := closer.Close(); err != nil {
			logger.Error("Error closing Jaeger tracer: %v", err)
		}
	}, nil
}

// StartSpan без InitTracer работает на noop-трейсере.
func StartSpan(ctx context.Context, op string, tags ...opentracing.Tag) (opentracing.Span, context.Context) {
	span, ctx := opentracing.StartSpanFromContext(ctx, op)
	for _, t := range tags {
		t.Set(span)
	}
	return span, ctx
}

// Finish закрывает спан, помечая ошибку.
func Finish(span opentracing.Span, err error) {
	if err != nil {
		span.SetTag("error", true)
		span.LogKV("error.message", err.Error())
	}
	span.Finish()
}
