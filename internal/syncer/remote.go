package syncer

import (
	"context"
	"errors"

	"github.com/halcyonfit/halcyon-engine/internal/domain"
)

// RemoteClient pushes a record's current payload version to the remote
// store. The wire protocol is the implementation's concern; the engine only
// sees success or a typed failure.
//
// Remote failures are always recoverable from the engine's point of view:
// the record's dirty flag is the durable note that a retry is needed, and
// reconciliation is the recovery path.
type RemoteClient interface {
	// Push persists the record remotely. A nil return means the remote
	// store accepted this exact payload version.
	Push(ctx context.Context, record *domain.Record) error
}

// Remote failure taxonomy. Both are recoverable; the distinction only
// matters for logging and backoff decisions.
var (
	// ErrRemoteUnavailable indicates a transient condition: the remote
	// store could not be reached or answered with a server-side failure.
	ErrRemoteUnavailable = errors.New("remote store unavailable")

	// ErrRemoteRejected indicates the remote store refused the payload.
	// The record stays dirty; a later reconciliation retries it (the
	// payload may have been corrected by then).
	ErrRemoteRejected = errors.New("remote store rejected record")
)

// ConnectivityObserver reports whether the remote store is reachable. The
// engine treats it as a black box: a current answer plus a stream of
// changes.
type ConnectivityObserver interface {
	// IsOnline returns the current connectivity state. Unknown is a valid
	// answer and is never conflated with offline.
	IsOnline(ctx context.Context) domain.OnlineState

	// Observe returns a channel of connectivity states. Implementations
	// send on every observed change (not every probe) and close the
	// channel when ctx is cancelled.
	Observe(ctx context.Context) <-chan domain.OnlineState
}
