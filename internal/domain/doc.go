// Package domain contains the core business entities, value objects, and
// domain logic of the engine: user profiles, daily activity goals, syncable
// records with dirty tracking, and the derived sync status. It represents
// the heart of the system, independent of any specific infrastructure or
// delivery mechanism.
package domain
