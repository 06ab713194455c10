// Package timeouts defines shared timeout constants used across services.
// Centralizing these values prevents drift between service boundaries and
// makes the durations discoverable.
package timeouts

import "time"

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long an HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second

// ORCIDRequest caps a single request to the ORCID public API, retries
// included.
const ORCIDRequest = 15 * time.Second

// OAuthExchange caps the authorization-code exchange with ORCID.
const OAuthExchange = 10 * time.Second

// ReadinessProbe caps the database ping behind /readyz.
const ReadinessProbe = 2 * time.Second
