// Package controller contains the HTTP middlewares shared by every route of
// the web server.
//
//   - WithCORS answers preflight requests and lets browser clients on other
//     origins call the JSON endpoints.
//   - WithLogger attaches a request ID and a request scoped logger, then
//     writes one access log line per request.
//   - WithRecovery turns a handler panic into a 500 response.
//   - PprofMux exposes net/http/pprof under a path prefix.
package controller
