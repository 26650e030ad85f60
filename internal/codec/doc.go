// Package codec decodes raw stream frames into typed events.
//
// The decoder is total for recognized structure: a frame that parses as a
// JSON object with a "type" field always yields an Event, falling back to
// Unknown for kinds this client does not handle. Only structurally malformed
// frames return an error, and the error is the caller's signal to drop the
// frame — a single bad frame never terminates the stream.
package codec
