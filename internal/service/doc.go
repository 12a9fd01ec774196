// Package service provides the application-level facade over the goal
// computation and sync engine. Handlers talk to this package only; it
// composes the pure goal orchestrator with the local-first sync
// coordinator and translates their errors into caller-facing conditions.
package service
