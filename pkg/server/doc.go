// Package server provides the HTTP and WebSocket server for Wayfare
// applications.
//
// The server owns one validated route table. Each WebSocket client gets a
// Session with its own dispatcher over that table, so current view,
// navigation history, and preload cache are isolated per client. The
// session read loop turns Navigate frames into dispatcher calls; a
// dispatcher subscriber turns each resulting view change into exactly one
// ViewUpdate frame on the wire.
//
// HTTP surface:
//
//	GET /healthz       liveness probe
//	GET /metrics       Prometheus metrics (optional)
//	GET /_wayfare/ws   WebSocket endpoint
//	GET /*             resolve a URL against the table (JSON)
//
// Non-canonical request paths are redirected with 308 so each resource
// has one URL.
package server
