// Package api contains the HTTP handlers for the engine: profile and goal
// saves (local-first, with opportunistic sync), goal calculation, manual
// sync, and sync status introspection including the server-sent status
// stream. Handlers validate input, call the engine service, and map its
// errors to sanitized HTTP responses.
package api
