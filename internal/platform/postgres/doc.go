// Package postgres provides the PostgreSQL-backed implementation of the
// data storage interfaces defined in the internal/store package. It is the
// server-side deployment alternative to the embedded sqlite store: the same
// RecordStore semantics, selected by configuration.
package postgres
