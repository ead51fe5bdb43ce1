package middleware

import (
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	httpMeter              = otel.Meter("horizon/http")
	httpRequestDuration, _ = httpMeter.Float64Histogram("http.server.request.duration",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	httpRequestTotal, _ = httpMeter.Int64Counter("http.server.request.total",
		metric.WithDescription("Total HTTP requests"),
	)
)

// unmatchedRoute labels requests no route pattern claimed
const unmatchedRoute = "unmatched"

// Tracing opens a server span per request and records request metrics. It must wrap
// the ServeMux directly (or through handlers that pass the request on unchanged) so
// the matched pattern is visible once the mux returns. Spans and metrics are labelled
// by route pattern, never by raw path, and carry the selected bank connection.
func Tracing(next http.Handler) http.Handler {
	tracer := otel.Tracer("horizon/http")
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), r.Method,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(attribute.String("http.method", r.Method)),
		)
		defer span.End()
		if id := RequestID(r.Context()); id != "" {
			span.SetAttributes(attribute.String("http.request_id", id))
		}

		start := time.Now()
		wrapped := wrapResponseWriter(w)
		req := r.WithContext(ctx)
		next.ServeHTTP(wrapped, req)

		route := req.Pattern
		if route == "" {
			route = unmatchedRoute
		}
		span.SetName(route)
		span.SetAttributes(attribute.String("http.route", route))

		if id := connectionID(req); id != "" {
			span.SetAttributes(attribute.String("banking.connection_id", id))
		}

		status := wrapped.status
		if status == 0 {
			status = http.StatusOK
		}
		span.SetAttributes(attribute.Int("http.status_code", status))
		if status >= 500 {
			span.SetStatus(codes.Error, http.StatusText(status))
		}

		attrs := metric.WithAttributes(
			attribute.String("http.method", r.Method),
			attribute.String("http.route", route),
			attribute.Int("http.status_code", status),
		)
		httpRequestDuration.Record(ctx, time.Since(start).Seconds(), attrs)
		httpRequestTotal.Add(ctx, 1, attrs)
	})
}

// connectionID is the connection a request selected, from the {id} path segment
// or the history endpoint's id query parameter.
func connectionID(r *http.Request) string {
	if id := r.PathValue("id"); id != "" {
		return id
	}
	return r.URL.Query().Get("id")
}
