package transport

import "errors"

// Transport errors.
var (
	ErrClosed  = errors.New("transport: connection closed")
	ErrBacklog = errors.New("transport: fragment backlog full")
)

// FragmentHandler is invoked for each polled fragment. The data slice is
// only valid for the duration of the call; implementations must copy
// anything they retain. Returning an error aborts the poll batch.
type FragmentHandler func(data []byte) error

// Image is the inbound side of a connection. Poll is non-blocking and must
// only be called from a single goroutine.
type Image interface {
	// Poll delivers up to fragmentLimit whole fragments to handler and
	// returns the number delivered. A handler error aborts the batch and is
	// returned; the erroring fragment counts as delivered.
	Poll(handler FragmentHandler, fragmentLimit int) (int, error)

	// IsClosed reports whether the connection has ended. Fragments received
	// before the close still drain through Poll.
	IsClosed() bool

	// SourceIdentity identifies the remote end for diagnostics.
	SourceIdentity() string

	// CorrelationID is the identity assigned to the connection at accept.
	CorrelationID() int64
}

// Publication is the outbound side of a connection.
type Publication interface {
	// Offer sends one whole message.
	Offer(data []byte) error

	// Close tears the outbound side down. Safe to call more than once.
	Close() error
}
