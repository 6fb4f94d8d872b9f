package agent

import (
	"log/slog"
	"sync/atomic"
)

// ErrorHandler is invoked on the runner goroutine for each error a duty
// cycle returns. The duty cycle continues afterwards.
type ErrorHandler func(err error)

// Runner drives one agent on a dedicated goroutine until closed. DoWork is
// never invoked concurrently with itself, which is the foundation of the
// agents' single-threaded ownership model.
type Runner struct {
	agent   Agent
	idle    IdleStrategy
	onError ErrorHandler
	logger  *slog.Logger

	started    atomic.Bool
	closing    atomic.Bool
	done       chan struct{}
	stopped    chan struct{}
	errorCount atomic.Int64
}

// NewRunner creates a runner for agent. A nil idle strategy defaults to
// yielding; a nil error handler logs and continues.
func NewRunner(a Agent, idle IdleStrategy, onError ErrorHandler, logger *slog.Logger) *Runner {
	if idle == nil {
		idle = YieldingIdleStrategy{}
	}
	r := &Runner{
		agent:   a,
		idle:    idle,
		onError: onError,
		logger:  logger.With("component", "runner", "role", a.RoleName()),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	if r.onError == nil {
		r.onError = func(err error) {
			r.logger.Error("duty cycle error", "error", err)
		}
	}
	return r
}

// Start launches the duty cycle goroutine. Subsequent calls are no-ops.
func (r *Runner) Start() {
	if !r.started.CompareAndSwap(false, true) {
		return
	}
	r.logger.Info("runner started")
	go r.run()
}

func (r *Runner) run() {
	defer close(r.stopped)
	defer r.agent.OnClose()

	for {
		select {
		case <-r.done:
			return
		default:
		}

		n, err := r.agent.DoWork()
		if err != nil {
			r.errorCount.Add(1)
			r.onError(err)
		}
		r.idle.Idle(n)
	}
}

// Close stops the duty cycle and waits for the agent's OnClose to finish.
// Safe to call more than once.
func (r *Runner) Close() {
	if !r.started.Load() {
		return
	}
	first := r.closing.CompareAndSwap(false, true)
	if first {
		close(r.done)
	}
	<-r.stopped
	if first {
		r.logger.Info("runner stopped", "errors", r.errorCount.Load())
	}
}

// ErrorCount returns the number of duty cycle errors seen so far.
func (r *Runner) ErrorCount() int64 {
	return r.errorCount.Load()
}
