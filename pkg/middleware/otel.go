package middleware

import (
	"context"

	"github.com/vango-dev/deeplink/pkg/deeplink"
	"github.com/vango-dev/deeplink/pkg/pattern"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Default tracer name for deep-link resolution.
const defaultTracerName = "deeplink"

// SpanName is the name of the span created for each resolution.
const SpanName = "deeplink.resolve"

// OTelConfig configures the OpenTelemetry middleware.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "deeplink").
	TracerName string

	// TracerProvider supplies the tracer. If nil, the global provider is used.
	TracerProvider trace.TracerProvider

	// IncludeURL records the full link as a span attribute.
	// Links may carry user identifiers - disabled by default.
	IncludeURL bool

	// Filter determines which resolutions to trace.
	// Return true to trace, false to skip.
	// If nil, every resolution is traced.
	Filter func(res *deeplink.Resolution) bool

	// AttributeExtractor adds custom attributes once the resolution
	// has completed.
	AttributeExtractor func(res *deeplink.Resolution) []attribute.KeyValue
}

// OTelOption configures the OpenTelemetry middleware.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) OTelOption {
	return func(c *OTelConfig) {
		c.TracerProvider = tp
	}
}

// WithIncludeURL enables recording the full link in traces.
func WithIncludeURL(include bool) OTelOption {
	return func(c *OTelConfig) {
		c.IncludeURL = include
	}
}

// WithResolutionFilter sets a filter function for resolutions.
func WithResolutionFilter(filter func(res *deeplink.Resolution) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(res *deeplink.Resolution) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

func defaultOTelConfig() OTelConfig {
	return OTelConfig{
		TracerName: defaultTracerName,
	}
}

// OpenTelemetry creates middleware that traces every resolution.
//
// The span carries the link host, the number of accounts consulted and the
// number that matched. Errors are recorded and set the span status. The
// span context is passed down the chain so inner middleware and the account
// source can create child spans.
//
// Example:
//
//	svc := deeplink.NewService(src,
//	    deeplink.WithMiddleware(middleware.OpenTelemetry(
//	        middleware.WithTracerName("flare"),
//	    )),
//	)
//
// Without WithTracerProvider the global provider is used. Configure it in
// main() before serving:
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	otel.SetTracerProvider(tp)
func OpenTelemetry(opts ...OTelOption) deeplink.Middleware {
	config := defaultOTelConfig()
	for _, opt := range opts {
		opt(&config)
	}

	var tracer trace.Tracer
	if config.TracerProvider != nil {
		tracer = config.TracerProvider.Tracer(config.TracerName)
	} else {
		tracer = otel.Tracer(config.TracerName)
	}

	return func(next deeplink.Handler) deeplink.Handler {
		return func(ctx context.Context, res *deeplink.Resolution) error {
			if config.Filter != nil && !config.Filter(res) {
				return next(ctx, res)
			}

			attrs := []attribute.KeyValue{
				attribute.Int("deeplink.accounts", len(res.Accounts)),
			}
			if req, ok := pattern.ParseRequest(res.URL); ok {
				attrs = append(attrs, attribute.String("deeplink.host", req.Host))
			}
			if config.IncludeURL {
				attrs = append(attrs, attribute.String("deeplink.url", res.URL))
			}

			spanCtx, span := tracer.Start(ctx, SpanName,
				trace.WithSpanKind(trace.SpanKindInternal),
				trace.WithAttributes(attrs...),
			)
			defer span.End()

			err := next(spanCtx, res)

			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			} else {
				span.SetStatus(codes.Ok, "")
			}

			span.SetAttributes(
				attribute.Int("deeplink.matches", len(res.Matches)),
				attribute.Int("deeplink.routes", len(res.Routes)),
			)
			if config.AttributeExtractor != nil {
				span.SetAttributes(config.AttributeExtractor(res)...)
			}
			return err
		}
	}
}
