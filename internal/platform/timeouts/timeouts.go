// Package timeouts defines shared timeout constants used across the gateway.
// Centralizing these values prevents drift between the transports and the
// remote client and makes the durations discoverable.
package timeouts

import "time"

// RemoteRequest caps a single non-streaming call to the Flowise API and the
// wait for response headers on a streaming call.
const RemoteRequest = 60 * time.Second

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long an HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second

// OTelShutdown bounds flushing of pending spans on exit.
const OTelShutdown = 5 * time.Second

// SessionIdle closes streamable HTTP sessions that have seen no traffic.
const SessionIdle = 30 * time.Minute

// SessionSweep is how often the HTTP binding drops servers whose sessions
// have all ended.
const SessionSweep = time.Minute
