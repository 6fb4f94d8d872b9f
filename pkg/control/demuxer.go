package control

import (
	"log/slog"

	"github.com/scribe-dev/scribe/pkg/codec"
	"github.com/scribe-dev/scribe/pkg/metrics"
	"github.com/scribe-dev/scribe/pkg/transport"
)

// FragmentLimit is the most fragments one duty cycle polls, bounding the
// time a busy connection can hold the conductor thread.
const FragmentLimit = 10

type state int32

const (
	stateActive state = iota
	stateInactive
	stateClosed
)

func (s state) String() string {
	switch s {
	case stateActive:
		return "active"
	case stateInactive:
		return "inactive"
	case stateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Demuxer owns the inbound half of one control connection: it polls the
// connection image, decodes each fragment, and routes it to the control
// sessions established over the connection. All state belongs to the
// goroutine driving DoWork.
type Demuxer struct {
	image    transport.Image
	factory  SessionFactory
	decoders *codec.Decoders
	sessions map[int64]ControlSession
	state    state
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

var _ SessionOwner = (*Demuxer)(nil)

// Option configures a Demuxer.
type Option func(*Demuxer)

// WithMetrics records per-template fragment and dispatch error counts.
func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Demuxer) {
		d.metrics = m
	}
}

// NewDemuxer creates a demultiplexer over image, handing connect requests
// to factory. The demultiplexer starts active.
func NewDemuxer(image transport.Image, factory SessionFactory, logger *slog.Logger, opts ...Option) *Demuxer {
	d := &Demuxer{
		image:    image,
		factory:  factory,
		decoders: codec.NewDecoders(),
		sessions: make(map[int64]ControlSession),
		state:    stateActive,
		logger:   logger.With("component", "demuxer", "correlation_id", image.CorrelationID()),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// SessionID identifies the demultiplexer by its connection's correlation ID.
func (d *Demuxer) SessionID() int64 {
	return d.image.CorrelationID()
}

// RoleName identifies the demultiplexer in logs.
func (d *Demuxer) RoleName() string {
	return "control-demuxer"
}

// DoWork polls the image for control messages and returns the fragment
// count. When the connection has closed and drained, the demultiplexer
// turns inactive and aborts every registered session. Fatal protocol
// errors propagate to the caller; the demultiplexer itself stays active
// and leaves the policy to its scheduler.
func (d *Demuxer) DoWork() (int, error) {
	if d.state != stateActive {
		return 0, nil
	}

	n, err := d.image.Poll(d.onFragment, FragmentLimit)
	if err != nil {
		return n, err
	}

	if n == 0 && d.image.IsClosed() {
		d.state = stateInactive
		d.logger.Info("connection drained", "sessions", len(d.sessions))
		for _, session := range d.sessions {
			session.Abort()
		}
	}
	return n, nil
}

// IsDone reports whether the demultiplexer has turned inactive and should
// be reaped by its scheduler.
func (d *Demuxer) IsDone() bool {
	return d.state == stateInactive
}

// Abort marks the demultiplexer inactive so its scheduler reaps it.
func (d *Demuxer) Abort() {
	if d.state == stateActive {
		d.state = stateInactive
	}
}

// Close makes the demultiplexer terminal. Idempotent; a closed
// demultiplexer polls nothing and dispatches nothing.
func (d *Demuxer) Close() {
	if d.state == stateClosed {
		return
	}
	d.state = stateClosed
	d.logger.Info("demuxer closed", "sessions", len(d.sessions))
}

// OnClose satisfies the agent contract.
func (d *Demuxer) OnClose() {
	d.Close()
}

// RemoveSession drops the registry entry for session. Removing a session
// that is not registered is a no-op.
func (d *Demuxer) RemoveSession(session ControlSession) {
	delete(d.sessions, session.SessionID())
}

// SessionCount returns the number of registered sessions.
func (d *Demuxer) SessionCount() int {
	return len(d.sessions)
}

// onFragment decodes one fragment and routes it. Fragment data is only
// valid during the call; decoded values that outlive it are copies.
func (d *Demuxer) onFragment(data []byte) error {
	hdr, err := codec.DecodeHeader(data)
	if err != nil {
		d.metrics.RecordDispatchError("malformed_header")
		return err
	}

	if hdr.SchemaID != codec.ControlSchemaID {
		d.metrics.RecordDispatchError("schema_mismatch")
		return &SchemaMismatchError{
			Expected: codec.ControlSchemaID,
			Actual:   hdr.SchemaID,
			Source:   d.image.SourceIdentity(),
		}
	}

	dispatch, ok := dispatchTable[hdr.TemplateID]
	if !ok {
		// Requests from newer clients and stray response templates land
		// here; both are skipped rather than failing the connection.
		return nil
	}

	d.metrics.RecordFragment(hdr.TemplateID.String())
	return dispatch(d, hdr, data[codec.HeaderLength:])
}

// getSession resolves a session-scoped request. A missing session is fatal:
// the client is either on the wrong connection or using a stale session ID.
func (d *Demuxer) getSession(sessionID, correlationID int64) (ControlSession, error) {
	session, ok := d.sessions[sessionID]
	if !ok {
		d.metrics.RecordDispatchError("unknown_session")
		return nil, &UnknownSessionError{
			SessionID:     sessionID,
			CorrelationID: correlationID,
			Source:        d.image.SourceIdentity(),
		}
	}
	return session, nil
}
