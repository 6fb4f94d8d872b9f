package transport

import (
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/gorilla/websocket"
)

// AcceptFunc receives each accepted control connection. The connection's
// read pump is already running when the callback is invoked.
type AcceptFunc func(conn *WSConn)

// Listener upgrades HTTP requests to control connections. It implements
// http.Handler and can be mounted on any mux.
type Listener struct {
	accept   AcceptFunc
	config   ConnConfig
	logger   *slog.Logger
	upgrader websocket.Upgrader

	nextCorrelationID atomic.Int64
}

// NewListener creates a listener handing accepted connections to accept.
func NewListener(accept AcceptFunc, config ConnConfig, logger *slog.Logger) *Listener {
	return &Listener{
		accept: accept,
		config: config,
		logger: logger.With("component", "listener"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Control clients are daemons, not browsers.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (l *Listener) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := l.upgrader.Upgrade(w, r, nil)
	if err != nil {
		l.logger.Error("upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}

	correlationID := l.nextCorrelationID.Add(1)
	ws := newWSConn(conn, correlationID, l.config, l.logger)

	l.logger.Info("connection accepted",
		"correlation_id", correlationID,
		"remote", conn.RemoteAddr().String())

	go ws.readPump()
	l.accept(ws)
}
