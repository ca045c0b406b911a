// Package server provides the HTTP server for the GradeBoard dashboard and API.
//
// This package is internal to GradeBoard and handles all HTTP concerns:
//
//   - Dashboard serving: Serves the embedded HTML/CSS/JS dashboard at "/"
//   - REST API: "/api/snapshots" and "/api/snapshots/{source}" return chart data as JSON
//   - Server-Sent Events: Real-time snapshot updates at "/api/sse"
//   - Metrics: Prometheus exposition at "/metrics"
//
// The server supports graceful shutdown via context cancellation, with a
// 5-second timeout for in-flight requests.
package server
