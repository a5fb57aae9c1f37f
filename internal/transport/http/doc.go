// Package http implements the HTTP handlers of the CRPD dashboard.
// Handlers stay thin: they parse and validate the request, call the
// dataset service and render either an HTML page, a PNG chart, CSV or a
// JSON response. Errors are rendered as RFC 7807 problem details through
// the shared error handler.
//
// # Request Flow
//
//	HTTP Request → Chi Router → Middleware → Session Gate → Handler → DatasetService
//	                                                            ↓
//	HTTP Response ← Handler ← Summary / View ←──────────────────┘
//
// # Pages
//
// The login and dashboard pages are html/template files embedded from the
// templates directory. The dashboard is a GET form, so every filtered view
// has a shareable URL and the chart image reuses the same query string.
package http
