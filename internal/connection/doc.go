// Package connection owns the telemetry stream lifecycle.
//
// Client is a thin wrapper around a single WebSocket session: dial, read
// loop, serialized writes and ping/pong keepalive. Manager layers the
// logical stream on top: it holds at most one live session, exposes
// Connect/Disconnect/Status/Send, and recovers from unexpected closure with
// capped exponential backoff. A manual Disconnect suppresses the retry path
// entirely.
package connection
