// Package database provides connection pool management for the telemetry
// archive.
//
// The archive lives in PostgreSQL (TimescaleDB in production, where the
// telemetry table is a hypertable partitioned on observed_at).
package database
