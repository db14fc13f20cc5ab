// Package middleware provides production-grade dispatch middleware for
// Wayfare applications.
//
// This package includes:
//   - OpenTelemetry distributed tracing middleware
//   - Prometheus metrics middleware
//
// # OpenTelemetry Middleware
//
// The OpenTelemetry middleware traces every navigation, recording the view
// name, canonical path, and replace flag:
//
//	d := dispatch.New(table)
//	d.Use(middleware.OpenTelemetry())
//
// Configure with options:
//
//	middleware.OpenTelemetry(
//	    middleware.WithTracerName("my-app"),
//	    middleware.WithNavigationFilter(func(nav *dispatch.Navigation) bool {
//	        return nav.Path != "/healthz"
//	    }),
//	)
//
// # Prometheus Metrics
//
// The Prometheus middleware collects metrics about navigations:
//   - wayfare_navigations_total: Total navigations by view and status
//   - wayfare_navigation_duration_seconds: Dispatch duration histogram
//   - wayfare_preload_outcomes_total: Preload outcomes by view
//   - wayfare_active_sessions: Current number of active sessions
//
//	d := dispatch.New(table,
//	    dispatch.WithPreloadObserver(middleware.ObservePreload))
//	d.Use(middleware.Prometheus())
//
// Then expose metrics on the server:
//
//	http.Handle("/metrics", promhttp.Handler())
package middleware
