// Package archive hosts the control plane of the stream archive: the
// conductor that owns every control connection, the sessions established
// over them, and the boundaries where authentication and archive
// operations plug in.
//
// # Architecture
//
// One conductor goroutine drives everything; other goroutines reach it
// only through its task queue:
//
//	              OnControlConnection / admin snapshots
//	                           │ (task queue)
//	         ┌─────────────────▼──────────────────┐
//	         │              Conductor             │
//	         │   demuxers ── one per connection   │
//	         │   sessions ── created on connect   │
//	         └───┬───────────────┬────────────┬───┘
//	             │               │            │
//	      Authenticator       Backend    ResponseProxy
//	      connect/challenge   operation  ControlResponse,
//	      handshake           effects    Challenge out
//
// # Session Lifecycle
//
// A connect request makes the conductor build a Session in pending state
// and run the authenticator. Authenticated sessions turn active and answer
// archive requests until they are closed by the client, time out, or their
// connection dies. Challenged sessions hold until the client answers.
// Sessions past the concurrency cap or with an incompatible protocol
// version are born doomed: their first duty cycle sends the error response
// and tears them down.
//
// # File Structure
//
//   - conductor.go: Conductor, connection adoption, duty cycle, reaping
//   - session.go: Session lifecycle and request handling
//   - auth.go: Authenticator boundary, allow-all and static credentials
//   - backend.go: Backend boundary and the in-memory logging backend
//   - proxy.go: ResponseProxy encoding control responses
package archive
