// Package control implements the inbound half of the archive control plane:
// a demultiplexer that decodes control messages from one connection and
// routes them to the control sessions registered on it.
//
// One Demuxer owns one connection image and the registry of sessions
// established over it. Connect requests go to a SessionFactory; every other
// request resolves its target session by ID and invokes exactly one
// callback on it. The demultiplexer is single-threaded by contract: all
// state is touched only on the goroutine that drives DoWork, so the hot
// path takes no locks.
//
// # Lifecycle
//
//	Active ──── image closed, poll empty ────> Inactive
//	   │                                          │
//	   └────────────── Close ────────────────> Closed
//
// The states are monotonic. Inactive is the demultiplexer asking its
// scheduler to reap it (IsDone reports true); reaching it aborts every
// registered session. Close is terminal and idempotent; a closed
// demultiplexer polls nothing.
//
// # Error handling
//
// Routing errors are deliberately asymmetric. A fragment from the wrong
// schema and a session-scoped request naming an unknown session are fatal
// and propagate out of DoWork. A close or challenge response for a missing
// session is silently tolerated, because clients legitimately race their
// own teardown. An unknown template is skipped for forward compatibility.
package control
