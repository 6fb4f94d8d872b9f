package archive

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/eapache/queue"

	"github.com/scribe-dev/scribe/pkg/codec"
	"github.com/scribe-dev/scribe/pkg/control"
	"github.com/scribe-dev/scribe/pkg/metrics"
	"github.com/scribe-dev/scribe/pkg/transport"
)

// Conductor defaults.
const (
	DefaultMaxSessions    = 64
	DefaultSessionTimeout = 10 * time.Second

	// taskLimit bounds cross-goroutine tasks drained per duty cycle so a
	// burst of admin calls cannot starve connection polling.
	taskLimit = 16
)

// connection is one adopted control connection: its demultiplexer, the
// response proxy sessions publish through, and both transport ends.
type connection struct {
	demuxer     *control.Demuxer
	proxy       *ResponseProxy
	image       transport.Image
	publication transport.Publication
}

// connectionFactory binds the conductor's session construction to one
// connection, so sessions respond on the publication their connect request
// arrived with.
type connectionFactory struct {
	conductor *Conductor
	conn      *connection
}

var _ control.SessionFactory = (*connectionFactory)(nil)

func (f *connectionFactory) NewControlSession(correlationID int64, responseStreamID, version int32,
	responseChannel string, encodedCredentials []byte, owner control.SessionOwner) control.ControlSession {
	return f.conductor.newControlSession(f.conn, correlationID, responseStreamID, version,
		responseChannel, encodedCredentials, owner)
}

// Conductor owns the archive control plane: every adopted connection, its
// demultiplexer, and every control session. One goroutine drives DoWork;
// other goroutines reach the conductor only through the task queue.
type Conductor struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
	backend Backend
	auth    Authenticator

	maxSessions    int
	sessionTimeout time.Duration
	now            func() time.Time

	mu    sync.Mutex
	tasks *queue.Queue

	nextSessionID int64
	connections   []*connection
	sessions      []*Session
}

// Option configures a Conductor.
type Option func(*Conductor)

// WithMetrics records control plane metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Conductor) {
		c.metrics = m
	}
}

// WithAuthenticator replaces the default allow-all authenticator.
func WithAuthenticator(auth Authenticator) Option {
	return func(c *Conductor) {
		c.auth = auth
	}
}

// WithMaxSessions caps concurrent control sessions. Sessions beyond the
// cap are rejected with an error response.
func WithMaxSessions(n int) Option {
	return func(c *Conductor) {
		c.maxSessions = n
	}
}

// WithSessionTimeout sets how long a session survives without activity.
func WithSessionTimeout(d time.Duration) Option {
	return func(c *Conductor) {
		c.sessionTimeout = d
	}
}

// NewConductor creates a conductor applying operations to backend.
func NewConductor(backend Backend, logger *slog.Logger, opts ...Option) *Conductor {
	c := &Conductor{
		logger:         logger.With("component", "conductor"),
		backend:        backend,
		auth:           AllowAll(),
		maxSessions:    DefaultMaxSessions,
		sessionTimeout: DefaultSessionTimeout,
		now:            time.Now,
		tasks:          queue.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RoleName identifies the conductor in logs.
func (c *Conductor) RoleName() string {
	return "archive-conductor"
}

// OnControlConnection hands a freshly accepted duplex connection to the
// conductor. Safe to call from any goroutine; adoption happens on the
// conductor's next duty cycle.
func (c *Conductor) OnControlConnection(image transport.Image, publication transport.Publication) {
	c.enqueue(func() { c.adopt(image, publication) })
}

func (c *Conductor) enqueue(task func()) {
	c.mu.Lock()
	c.tasks.Add(task)
	c.mu.Unlock()
}

func (c *Conductor) drainTasks() int {
	n := 0
	for n < taskLimit {
		c.mu.Lock()
		if c.tasks.Length() == 0 {
			c.mu.Unlock()
			return n
		}
		task := c.tasks.Remove().(func())
		c.mu.Unlock()
		task()
		n++
	}
	return n
}

func (c *Conductor) adopt(image transport.Image, publication transport.Publication) {
	conn := &connection{
		image:       image,
		publication: publication,
		proxy:       NewResponseProxy(publication, c.logger, c.metrics),
	}
	conn.demuxer = control.NewDemuxer(image, &connectionFactory{conductor: c, conn: conn},
		c.logger, control.WithMetrics(c.metrics))
	c.connections = append(c.connections, conn)
	c.metrics.ConnectionOpened()
	c.logger.Info("control connection adopted",
		"correlation_id", image.CorrelationID(), "source", image.SourceIdentity())
}

// DoWork runs one conductor duty cycle: drain queued tasks, poll each
// connection, advance each session, reap what has finished.
func (c *Conductor) DoWork() (int, error) {
	n := c.drainTasks()

	for _, conn := range c.connections {
		work, err := conn.demuxer.DoWork()
		n += work
		if err != nil {
			c.metrics.RecordWorkerError()
			c.logger.Error("control connection failed",
				"correlation_id", conn.image.CorrelationID(), "error", err)
			conn.demuxer.Abort()
		}
	}

	for _, s := range c.sessions {
		n += s.DoWork()
	}

	n += c.reap()
	c.metrics.RecordDutyCycle(n)
	return n, nil
}

// OnClose tears down every connection and session.
func (c *Conductor) OnClose() {
	for _, conn := range c.connections {
		c.closeConnection(conn)
	}
	c.connections = nil
	for _, s := range c.sessions {
		s.Abort()
		s.DoWork()
	}
	c.sessions = nil
	c.logger.Info("conductor closed")
}

func (c *Conductor) closeConnection(conn *connection) {
	conn.demuxer.Close()
	if err := conn.publication.Close(); err != nil {
		c.logger.Warn("publication close failed",
			"correlation_id", conn.image.CorrelationID(), "error", err)
	}
	c.metrics.ConnectionClosed()
	// Sessions stranded on the dead connection go down with it.
	for _, s := range c.sessions {
		if s.proxy == conn.proxy {
			s.Abort()
		}
	}
	c.logger.Info("control connection closed", "correlation_id", conn.image.CorrelationID())
}

func (c *Conductor) reap() int {
	n := 0
	if len(c.connections) > 0 {
		kept := c.connections[:0]
		for _, conn := range c.connections {
			if conn.demuxer.IsDone() {
				c.closeConnection(conn)
				n++
				continue
			}
			kept = append(kept, conn)
		}
		for i := len(kept); i < len(c.connections); i++ {
			c.connections[i] = nil
		}
		c.connections = kept
	}
	if len(c.sessions) > 0 {
		kept := c.sessions[:0]
		for _, s := range c.sessions {
			if s.Closed() {
				n++
				continue
			}
			kept = append(kept, s)
		}
		for i := len(kept); i < len(c.sessions); i++ {
			c.sessions[i] = nil
		}
		c.sessions = kept
	}
	return n
}

func (c *Conductor) newControlSession(conn *connection, correlationID int64, responseStreamID, version int32,
	responseChannel string, encodedCredentials []byte, owner control.SessionOwner) control.ControlSession {
	c.nextSessionID++
	s := &Session{
		id:               c.nextSessionID,
		correlationID:    correlationID,
		responseStreamID: responseStreamID,
		responseChannel:  responseChannel,
		version:          version,
		majorVersion:     codec.SemanticMajor(version),
		state:            statePending,
		owner:            owner,
		proxy:            conn.proxy,
		backend:          c.backend,
		auth:             c.auth,
		timeout:          c.sessionTimeout,
		now:              c.now,
		openedAt:         c.now(),
		logger:           c.logger.With("component", "session", "session_id", c.nextSessionID),
		metrics:          c.metrics,
	}
	s.touch()
	c.sessions = append(c.sessions, s)
	c.metrics.SessionOpened()

	switch {
	case len(c.sessions) > c.maxSessions:
		s.doom(fmt.Sprintf("max concurrent control sessions exceeded: %d", c.maxSessions))
	case version != 0 && s.majorVersion != codec.ProtocolMajorVersion:
		s.doom(fmt.Sprintf("invalid client version %d.%d.%d, archive is %d.%d.%d",
			codec.SemanticMajor(version), codec.SemanticMinor(version), codec.SemanticPatch(version),
			codec.ProtocolMajorVersion, codec.ProtocolMinorVersion, codec.ProtocolPatchVersion))
	default:
		s.authenticate(encodedCredentials)
	}
	return s
}

// Stats summarizes the control plane for the admin API.
type Stats struct {
	Connections    int   `json:"connections"`
	Sessions       int   `json:"sessions"`
	SessionsOpened int64 `json:"sessions_opened"`
}

// ListSessions snapshots every tracked session. The snapshot is taken on
// the conductor goroutine; ctx bounds the wait when the conductor is
// stopped or saturated.
func (c *Conductor) ListSessions(ctx context.Context) ([]SessionInfo, error) {
	reply := make(chan []SessionInfo, 1)
	c.enqueue(func() {
		infos := make([]SessionInfo, 0, len(c.sessions))
		for _, s := range c.sessions {
			infos = append(infos, s.Snapshot())
		}
		reply <- infos
	})
	select {
	case infos := <-reply:
		return infos, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// CurrentStats reports control plane counts, taken on the conductor
// goroutine.
func (c *Conductor) CurrentStats(ctx context.Context) (Stats, error) {
	reply := make(chan Stats, 1)
	c.enqueue(func() {
		reply <- Stats{
			Connections:    len(c.connections),
			Sessions:       len(c.sessions),
			SessionsOpened: c.nextSessionID,
		}
	})
	select {
	case stats := <-reply:
		return stats, nil
	case <-ctx.Done():
		return Stats{}, ctx.Err()
	}
}
