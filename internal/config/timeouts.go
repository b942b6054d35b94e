// Package config provides centralized timeout constants for the application.
//
// These values are tuned for the advising API's workloads: SQLite catalog
// reads, occasional catalog ingestion over HTTP, and LLM narrator calls
// that must never hold up the rule-based response path for long.
package config

import "time"

// HTTP server timeouts
const (
	// HTTPRead is the server read timeout. Advisor requests carry small
	// JSON payloads, so this stays short.
	HTTPRead = 10 * time.Second

	// HTTPWrite is the server write timeout. Must accommodate an LLM
	// narrator call plus response serialization.
	HTTPWrite = 35 * time.Second

	// HTTPIdle is the server idle timeout for keep-alive connections.
	HTTPIdle = 120 * time.Second
)

// Ingest timeouts
const (
	// IngestRequest is the timeout for a single HTTP request to a catalog
	// source. University sites can be slow during peak hours.
	IngestRequest = 60 * time.Second

	// IngestRetryInitial is the initial delay before retrying a failed
	// request. Uses exponential backoff: 2s -> 4s -> 8s -> 16s -> 32s
	IngestRetryInitial = 2 * time.Second

	// IngestRateLimit is the minimum delay between consecutive catalog
	// requests. Prevents overwhelming the source and getting blocked.
	IngestRateLimit = 2 * time.Second
)

// Database timeouts
const (
	// DatabaseBusyTimeout is SQLite busy_timeout pragma value.
	// Handles concurrent write contention during catalog reloads.
	DatabaseBusyTimeout = 30 * time.Second

	// DatabaseConnMaxLifetime is the maximum lifetime of database connections.
	// Prevents stale connections and allows connection pool refresh.
	DatabaseConnMaxLifetime = time.Hour
)

// LLM timeouts
const (
	// NarratorCall is the timeout for a single LLM narration call.
	// The rule-based narrative is used when this elapses.
	NarratorCall = 20 * time.Second
)

// Background job intervals
const (
	// SessionCleanupInterval is how often expired sessions are evicted.
	SessionCleanupInterval = 10 * time.Minute

	// RateLimiterCleanupInterval is how often inactive per-session rate
	// limiters are cleaned.
	RateLimiterCleanupInterval = 5 * time.Minute

	// MetricsUpdateInterval is how often catalog size metrics are updated.
	MetricsUpdateInterval = 5 * time.Minute

	// SnapshotInterval is how often the catalog snapshot is uploaded when
	// snapshots are enabled.
	SnapshotInterval = 24 * time.Hour
)

// Graceful shutdown
const (
	// GracefulShutdown is the timeout for graceful server shutdown.
	// Allows in-flight requests to complete before forceful termination.
	GracefulShutdown = 30 * time.Second
)
