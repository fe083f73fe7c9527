// Package middleware provides production-grade middleware for deep-link
// resolution.
//
// This package includes:
//   - OpenTelemetry tracing middleware
//   - Prometheus metrics middleware and a registry compile hook
//
// Both wrap the deeplink.Handler chain and are installed with
// deeplink.WithMiddleware.
//
// # OpenTelemetry Middleware
//
// The OpenTelemetry middleware opens a "deeplink.resolve" span around each
// resolution. Spans carry the link host and the account and match counts.
//
//	svc := deeplink.NewService(src,
//	    deeplink.WithMiddleware(middleware.OpenTelemetry()),
//	)
//
// Configure with options:
//
//	middleware.OpenTelemetry(
//	    middleware.WithTracerName("flare"),
//	    middleware.WithResolutionFilter(func(res *deeplink.Resolution) bool {
//	        return len(res.Accounts) > 0
//	    }),
//	)
//
// # Prometheus Metrics
//
// The Prometheus collectors describe resolution traffic:
//   - deeplink_resolutions_total: Resolutions by outcome
//   - deeplink_resolution_duration_seconds: Resolution duration histogram
//   - deeplink_routes_total: Navigation targets produced by route kind
//   - deeplink_pattern_compilations_total: Pattern list compilations
//
//	m := middleware.NewMetrics()
//	reg := deeplink.NewRegistry(nil, deeplink.WithCompileHook(m.CompileHook()))
//	svc := deeplink.NewService(src,
//	    deeplink.WithRegistry(reg),
//	    deeplink.WithMiddleware(m.Middleware()),
//	)
//
// Then expose metrics:
//
//	http.Handle("/metrics", promhttp.Handler())
//
// # Ordering
//
// Middleware added first runs outermost. Add OpenTelemetry before metrics so
// the recorded duration falls inside the span.
package middleware
