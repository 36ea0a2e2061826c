// Package health implements the operational probes the healthcheck
// command runs: database connectivity, price and index freshness,
// and constituent snapshot integrity.
package health
