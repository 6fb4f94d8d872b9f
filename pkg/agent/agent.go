// Package agent provides the duty-cycle execution model for the control
// plane: agents do bounded slices of work when polled, an idle strategy
// decides how to wait when there is none, and a Runner drives one agent on
// a dedicated goroutine.
package agent

// Agent is a unit of cooperative work. DoWork is always invoked from a
// single goroutine, so agents need no internal locking for state touched
// only on the duty cycle.
type Agent interface {
	// DoWork performs one duty cycle and returns the amount of work done.
	// Zero means idle. An error does not stop the duty cycle; the runner's
	// error handler decides what happens next.
	DoWork() (int, error)

	// OnClose releases the agent's resources. Called exactly once, after
	// the final DoWork.
	OnClose()

	// RoleName identifies the agent in logs.
	RoleName() string
}
