// Package observability provides structured logging and metrics for tokengate.
//
// This package implements:
//   - zap logger construction from the configured level and format
//   - Prometheus counters for authentication and role-gate decisions
package observability
