// Package exporter writes index reports to disk: per-index CSV files
// for value history and basket snapshots, and a combined xlsx
// workbook for distribution.
package exporter
