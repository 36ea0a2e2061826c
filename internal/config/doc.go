// Package config centralizes application configuration for the index
// batch jobs: database and API credentials loaded from the environment
// or an optional config.yaml, plus the static index definitions
// (basket sizes, rarity allow-lists, liquidity thresholds, maturity
// windows) that drive constituent selection.
//
// Configuration is immutable after Load; components receive the pieces
// they need at construction time.
package config
