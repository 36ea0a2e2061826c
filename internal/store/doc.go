// Package store is the Postgres persistence layer: gorm models for
// the pricing schema plus the adapter the calculation engine and the
// fetch commands write through. All upserts are ON CONFLICT updates
// keyed on the natural primary key, so every batch job is safe to
// re-run for the same date.
package store
