package telemetry

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// Config holds the configuration for the tracing middleware
type Config struct {
	ServiceName string
	Skip        func(*fiber.Ctx) bool
}

// DefaultConfig skips health checks and the scrape endpoint
func DefaultConfig() Config {
	return Config{
		ServiceName: "coffeemode-api",
		Skip: func(c *fiber.Ctx) bool {
			switch c.Path() {
			case "/health", "/health/live", "/health/ready", "/metrics":
				return true
			}
			return false
		},
	}
}

// New traces each request and records the HTTP metrics. Spans and metric
// labels use the matched route template (/api/cafes/:id), never the raw
// path, so cafe ids and place ids do not become label values.
func New(config ...Config) fiber.Handler {
	cfg := DefaultConfig()
	if len(config) > 0 {
		cfg = config[0]
	}

	return func(c *fiber.Ctx) error {
		if cfg.Skip != nil && cfg.Skip(c) {
			return c.Next()
		}

		start := time.Now()
		method := c.Method()
		if HTTPActiveRequests != nil {
			HTTPActiveRequests.Add(c.Context(), 1, metric.WithAttributes(attribute.String("method", method)))
			defer HTTPActiveRequests.Add(c.Context(), -1, metric.WithAttributes(attribute.String("method", method)))
		}

		ctx := otel.GetTextMapPropagator().Extract(c.Context(), propagation.HeaderCarrier(c.GetReqHeaders()))
		ctx, span := otel.GetTracerProvider().Tracer(cfg.ServiceName).Start(ctx, method+" "+c.Path(),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", method),
				attribute.String("http.target", c.Path()),
				attribute.String("net.host.name", c.Hostname()),
				attribute.String("http.user_agent", string(c.Request().Header.UserAgent())),
			),
		)
		defer span.End()

		// handlers pick the span up through c.UserContext()
		c.SetUserContext(ctx)

		err := c.Next()

		route := routeTemplate(c)
		status := c.Response().StatusCode()
		if err != nil {
			// the app error handler has not written the status yet
			status = fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
			span.RecordError(err)
			span.SetAttributes(attribute.Bool("error", true))
		}
		span.SetName(method + " " + route)
		span.SetAttributes(
			attribute.String("http.route", route),
			attribute.Int("http.status_code", status),
		)

		labels := metric.WithAttributes(
			attribute.String("method", method),
			attribute.String("route", route),
			attribute.String("status", strconv.Itoa(status)),
		)
		if HTTPRequestsTotal != nil {
			HTTPRequestsTotal.Add(c.Context(), 1, labels)
		}
		if HTTPRequestDuration != nil {
			HTTPRequestDuration.Record(c.Context(), time.Since(start).Seconds(), labels)
		}

		return err
	}
}

// routeTemplate is the path of the handler that served the request. Requests
// that fell through to the catch-all 404 share one label.
func routeTemplate(c *fiber.Ctx) string {
	if r := c.Route(); r != nil && r.Path != "/" && r.Path != "" {
		return r.Path
	}
	if c.Path() == "/" {
		return "/"
	}
	return "unmatched"
}
