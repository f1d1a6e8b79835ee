package httpmiddleware

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Instrument wraps the handler with otelhttp tracing and a request counter.
// operation names the server span, e.g. "audiophile-api".
func Instrument(operation string, opts ...otelhttp.Option) Middleware {
	meter := otel.Meter("github.com/charlz/audiophile-api/pkg/httpmiddleware")
	counter, _ := meter.Int64Counter("http.server.requests",
		metric.WithDescription("Number of HTTP requests handled"))

	return func(next http.Handler) http.Handler {
		counted := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			counter.Add(r.Context(), 1, metric.WithAttributes(
				attribute.String("http.method", r.Method),
			))
			next.ServeHTTP(w, r)
		})
		return otelhttp.NewHandler(counted, operation, opts...)
	}
}
