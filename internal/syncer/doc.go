// Package syncer implements the offline-first synchronization engine: the
// coordinator that saves records locally before any network activity,
// opportunistically pushes them when online, reconciles dirty records in
// bulk with partial-failure isolation, derives the process-wide sync
// status, and enforces single-flight per record so no record is ever
// pushed twice concurrently.
package syncer
