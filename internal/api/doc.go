// Package api provides a typed client for the road-sense REST API.
//
// The REST endpoints seed and refresh the non-live collections that the
// stream's resync events also populate: vehicle roster, recent telemetry
// and the current weather snapshot. Requests retry transient failures with
// exponential backoff and jitter.
package api
