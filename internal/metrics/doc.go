// Package metrics derives aggregate statistics from the obligation pool and
// optionally mirrors selection activity into OpenTelemetry instruments.
package metrics
