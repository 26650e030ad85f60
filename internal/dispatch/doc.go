// Package dispatch routes decoded stream events to state mutations.
//
// Frames are applied synchronously in arrival order: each frame is fully
// dispatched before the next is handled, so state mutations match the wire
// order. Undecodable frames and unrecognized kinds are counted, logged and
// dropped without affecting the pipeline.
package dispatch
