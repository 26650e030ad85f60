// Package model defines shared data types used across the telemetry client.
//
// Conventions:
//   - Timestamps: time.Time, decoded from ISO 8601 wire values
//   - Durations (lap and sector times): float64 seconds
//   - IDs: string vehicle identifiers, uuid.UUID for archived rows
package model
