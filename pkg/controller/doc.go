// Package controller contains the net/http middlewares and helper handlers
// wrapped around the API router.
//
// Provided middlewares:
//   - WithCORS: Adds CORS headers, echoing the caller origin, and answers OPTIONS preflight.
//   - WithLogger: Attaches a request-scoped logger and request ID to the context and logs access info.
//
// Provided helpers:
//   - GetClientIP: Resolves the caller address claimed by forwarding headers, for access logs.
//   - RequestID: Returns the request ID set by WithLogger.
//   - PprofMux: Returns a ServeMux exposing net/http/pprof handlers under a prefix.
package controller
