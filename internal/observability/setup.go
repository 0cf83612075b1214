package observability

import (
	"context"
	"net/http"

	"github.com/honeynil/SocialWorld-web/internal/infrastructure/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Setup wires logs, metrics and traces. The returned handler serves /metrics.
func Setup(ctx context.Context, serviceName, logLevel, otlpEndpoint string) (func(context.Context) error, http.Handler) {
	observability.InitLogger(logLevel)
	observability.InitMetrics()
	tracerShutdown := observability.InitTracing(ctx, serviceName, otlpEndpoint)
	return tracerShutdown, promhttp.Handler()
}
