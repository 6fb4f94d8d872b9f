// Package transport provides the inbound and outbound stream abstractions
// the control plane is built on.
//
// An Image is the inbound side of a connection: a non-blocking source of
// whole message fragments polled by a single goroutine. A Publication is the
// outbound side. ImageQueue is the in-process implementation backing both
// the WebSocket adapter and the Pipe pair used in tests and embeddings.
package transport
