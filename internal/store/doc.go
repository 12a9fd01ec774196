// Package store defines the persistence contracts the sync engine depends
// on, most importantly the RecordStore that holds syncable records with
// their dirty flags, plus the shared store error taxonomy. Concrete
// implementations live under internal/platform.
package store
