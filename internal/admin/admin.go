package admin

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/scribe-dev/scribe/pkg/archive"
	"github.com/scribe-dev/scribe/pkg/codec"
	"github.com/scribe-dev/scribe/pkg/offload"
)

// DefaultSnapshotTimeout bounds how long a handler waits for the conductor
// to take a snapshot before giving up.
const DefaultSnapshotTimeout = 2 * time.Second

// ControlPlane is the slice of the conductor the admin API reads.
type ControlPlane interface {
	ListSessions(ctx context.Context) ([]archive.SessionInfo, error)
	CurrentStats(ctx context.Context) (archive.Stats, error)
}

// Server serves the archive's admin and observability HTTP API.
type Server struct {
	control  ControlPlane
	logger   *slog.Logger
	name     string
	version  string
	gatherer prometheus.Gatherer
	segments offload.SegmentStore
	timeout  time.Duration
}

// Option configures the admin server.
type Option func(*Server)

// WithName sets the archive instance name reported by /v1/info.
func WithName(name string) Option {
	return func(s *Server) {
		s.name = name
	}
}

// WithVersion sets the daemon version reported by /v1/info.
func WithVersion(version string) Option {
	return func(s *Server) {
		s.version = version
	}
}

// WithGatherer exposes the given Prometheus gatherer on /metrics.
func WithGatherer(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithSegmentStore exposes segment listings on /v1/segments/{recordingID}.
func WithSegmentStore(store offload.SegmentStore) Option {
	return func(s *Server) {
		s.segments = store
	}
}

// WithSnapshotTimeout bounds how long handlers wait for conductor snapshots.
func WithSnapshotTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.timeout = d
	}
}

// New creates an admin server reading from the given control plane.
func New(control ControlPlane, logger *slog.Logger, opts ...Option) *Server {
	s := &Server{
		control: control,
		logger:  logger.With("component", "admin"),
		name:    "scribe",
		version: "dev",
		timeout: DefaultSnapshotTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler builds the admin API router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(Tracing(WithFilter(func(req *http.Request) bool {
		return req.URL.Path != "/healthz" && req.URL.Path != "/metrics"
	})))

	r.Get("/healthz", s.handleHealthz)
	if s.gatherer != nil {
		r.Method(http.MethodGet, "/metrics",
			promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/info", s.handleInfo)
		r.Get("/sessions", s.handleSessions)
		r.Get("/segments/{recordingID}", s.handleSegments)
	})

	return r
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "ok")
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	stats, err := s.control.CurrentStats(ctx)
	if err != nil {
		s.writeError(w, http.StatusServiceUnavailable, "control plane unavailable: "+err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"name":    s.name,
		"version": s.version,
		"protocol_version": fmt.Sprintf("%d.%d.%d",
			codec.ProtocolMajorVersion, codec.ProtocolMinorVersion, codec.ProtocolPatchVersion),
		"stats": stats,
	})
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	sessions, err := s.control.ListSessions(ctx)
	if err != nil {
		s.writeError(w, http.StatusServiceUnavailable, "control plane unavailable: "+err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"count":    len(sessions),
		"sessions": sessions,
	})
}

func (s *Server) handleSegments(w http.ResponseWriter, r *http.Request) {
	if s.segments == nil {
		s.writeError(w, http.StatusNotFound, "segment offload is not configured")
		return
	}

	recordingID, err := strconv.ParseInt(chi.URLParam(r, "recordingID"), 10, 64)
	if err != nil || recordingID < 0 {
		s.writeError(w, http.StatusBadRequest, "recordingID must be a non-negative integer")
		return
	}

	segments, err := s.segments.List(recordingID)
	if err != nil {
		s.logger.Error("segment listing failed", "recording_id", recordingID, "error", err)
		s.writeError(w, http.StatusInternalServerError, "segment listing failed")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"recording_id": recordingID,
		"count":        len(segments),
		"segments":     segments,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encoding failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
