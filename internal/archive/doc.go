// Package archive persists live telemetry records to PostgreSQL.
//
// The Writer accepts records through a buffered channel and flushes them in
// batches, either when a batch fills or on a timer. Enqueue never blocks the
// stream path: when the buffer is full the record is dropped and counted.
package archive
