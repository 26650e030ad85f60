// Package state owns the client-side view of the live session.
//
// A single Store holds the live buffer (bounded, deduplicated by vehicle,
// most-recent-first), the historical telemetry collection, the current
// weather snapshot, recent alerts, and the last-update timestamp. The
// dispatcher is the only writer; views read through copying accessors and
// never mutate.
package state
