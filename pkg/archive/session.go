package archive

import (
	"errors"
	"log/slog"
	"time"

	"github.com/scribe-dev/scribe/pkg/codec"
	"github.com/scribe-dev/scribe/pkg/control"
	"github.com/scribe-dev/scribe/pkg/metrics"
)

type sessionState int32

const (
	statePending sessionState = iota
	stateChallenged
	stateActive
	stateInactive
	stateClosed
)

func (s sessionState) String() string {
	switch s {
	case statePending:
		return "pending"
	case stateChallenged:
		return "challenged"
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

// SessionInfo is a point-in-time snapshot of one control session, shaped
// for the admin API.
type SessionInfo struct {
	SessionID        int64     `json:"session_id"`
	State            string    `json:"state"`
	ResponseStreamID int32     `json:"response_stream_id"`
	ResponseChannel  string    `json:"response_channel"`
	MajorVersion     int32     `json:"major_version"`
	OpenedAt         time.Time `json:"opened_at"`
	LastActivity     time.Time `json:"last_activity"`
}

// Session is the archive side of one control session. The conductor
// creates it on connect, drives its duty cycle, and reaps it once closed.
// All methods run on the conductor goroutine.
//
// Lifecycle: pending or challenged while authentication is outstanding,
// active once the connect response has gone out, inactive once aborted or
// timed out, closed after the session has removed itself from its
// demultiplexer's registry. An inactive session sends nothing.
type Session struct {
	id               int64
	correlationID    int64
	responseStreamID int32
	responseChannel  string
	version          int32
	majorVersion     int32

	state       sessionState
	doomed      bool
	doomReason  string
	closeReason string

	owner   control.SessionOwner
	proxy   *ResponseProxy
	backend Backend
	auth    Authenticator

	timeout  time.Duration
	now      func() time.Time
	openedAt time.Time
	activity time.Time
	deadline time.Time

	logger  *slog.Logger
	metrics *metrics.Metrics
}

var _ control.ControlSession = (*Session)(nil)

// SessionID returns the archive-assigned session identity.
func (s *Session) SessionID() int64 {
	return s.id
}

// MajorVersion returns the major component of the client's protocol
// version.
func (s *Session) MajorVersion() int32 {
	return s.majorVersion
}

// Closed reports whether the session has fully torn down.
func (s *Session) Closed() bool {
	return s.state == stateClosed
}

// Snapshot captures the session for the admin API.
func (s *Session) Snapshot() SessionInfo {
	return SessionInfo{
		SessionID:        s.id,
		State:            s.state.String(),
		ResponseStreamID: s.responseStreamID,
		ResponseChannel:  s.responseChannel,
		MajorVersion:     s.majorVersion,
		OpenedAt:         s.openedAt,
		LastActivity:     s.activity,
	}
}

// Abort marks the session for teardown without further responses.
func (s *Session) Abort() {
	if s.state == stateInactive || s.state == stateClosed {
		return
	}
	s.transition(stateInactive, "aborted")
}

// DoWork advances the session lifecycle by at most one step.
func (s *Session) DoWork() int {
	switch s.state {
	case statePending, stateChallenged:
		if s.doomed {
			s.reject(s.correlationID, s.doomReason)
			return 1
		}
		if s.now().After(s.deadline) {
			s.logger.Warn("authentication timed out")
			s.transition(stateInactive, "timeout")
			return 1
		}
	case stateActive:
		if s.now().After(s.deadline) {
			s.logger.Warn("session timed out", "timeout", s.timeout)
			s.transition(stateInactive, "timeout")
			return 1
		}
	case stateInactive:
		s.owner.RemoveSession(s)
		s.state = stateClosed
		s.metrics.SessionClosed(s.closeReason)
		s.logger.Info("session closed", "reason", s.closeReason)
		return 1
	}
	return 0
}

// doom marks a pending session for rejection on its next duty cycle.
func (s *Session) doom(reason string) {
	s.doomed = true
	s.doomReason = reason
}

// authenticate runs the connect half of the authenticator handshake.
func (s *Session) authenticate(encodedCredentials []byte) {
	challenge, err := s.auth.OnConnect(s.id, encodedCredentials)
	switch {
	case err != nil:
		s.doom("authentication rejected")
	case challenge != nil:
		s.state = stateChallenged
		if err := s.proxy.SendChallenge(s.id, s.correlationID, challenge); err != nil {
			s.transition(stateInactive, "aborted")
		}
	default:
		s.activate(s.correlationID)
	}
}

// activate sends the connect success response and opens the session for
// archive operations.
func (s *Session) activate(correlationID int64) {
	s.state = stateActive
	s.touch()
	if err := s.proxy.SendOK(s.id, correlationID, s.id); err != nil {
		s.transition(stateInactive, "aborted")
		return
	}
	s.logger.Info("session established",
		"response_stream_id", s.responseStreamID,
		"response_channel", s.responseChannel,
		"major_version", s.majorVersion)
}

// reject responds with an error and tears the session down.
func (s *Session) reject(correlationID int64, reason string) {
	_ = s.proxy.SendError(s.id, correlationID, codec.ResponseCodeError, reason)
	s.logger.Warn("session rejected", "reason", reason)
	s.transition(stateInactive, "rejected")
}

func (s *Session) transition(to sessionState, reason string) {
	s.state = to
	if s.closeReason == "" {
		s.closeReason = reason
	}
}

// touch refreshes the activity deadline.
func (s *Session) touch() {
	s.activity = s.now()
	s.deadline = s.activity.Add(s.timeout)
}

// operational gates archive operations on session state. Requests on a
// session that is not yet authenticated draw an error response; requests
// on a torn-down session are dropped.
func (s *Session) operational(correlationID int64) bool {
	switch s.state {
	case stateActive:
		s.touch()
		return true
	case statePending, stateChallenged:
		_ = s.proxy.SendError(s.id, correlationID, codec.ResponseCodeError,
			"control session not authenticated")
		return false
	default:
		return false
	}
}

// respond turns a backend result into the control response.
func (s *Session) respond(correlationID, relevantID int64, err error) {
	if err != nil {
		s.logger.Warn("operation failed", "correlation_id", correlationID, "error", err)
		if sendErr := s.proxy.SendError(s.id, correlationID, responseCode(err), err.Error()); sendErr != nil {
			s.Abort()
		}
		return
	}
	if sendErr := s.proxy.SendOK(s.id, correlationID, relevantID); sendErr != nil {
		s.Abort()
	}
}

func responseCode(err error) codec.ResponseCode {
	switch {
	case errors.Is(err, ErrRecordingUnknown):
		return codec.ResponseCodeRecordingUnknown
	case errors.Is(err, ErrSubscriptionUnknown):
		return codec.ResponseCodeSubscriptionUnknown
	default:
		return codec.ResponseCodeError
	}
}

// OnKeepAlive refreshes the activity deadline. Keep-alives draw no
// response.
func (s *Session) OnKeepAlive(correlationID int64) {
	if s.state == stateActive {
		s.touch()
	}
}

// OnChallengeResponse completes the authenticator handshake.
func (s *Session) OnChallengeResponse(correlationID int64, encodedCredentials []byte) {
	if s.state != stateChallenged {
		return
	}
	if err := s.auth.OnChallengeResponse(s.id, encodedCredentials); err != nil {
		s.reject(correlationID, "authentication rejected")
		return
	}
	s.activate(correlationID)
}

func (s *Session) OnStartRecording(correlationID int64, streamID int32, sourceLocation codec.SourceLocation, channel string) {
	if !s.operational(correlationID) {
		return
	}
	relevantID, err := s.backend.StartRecording(streamID, sourceLocation, channel)
	s.respond(correlationID, relevantID, err)
}

func (s *Session) OnStopRecording(correlationID int64, streamID int32, channel string) {
	if !s.operational(correlationID) {
		return
	}
	relevantID, err := s.backend.StopRecording(streamID, channel)
	s.respond(correlationID, relevantID, err)
}

func (s *Session) OnExtendRecording(correlationID, recordingID int64, streamID int32, sourceLocation codec.SourceLocation, channel string) {
	if !s.operational(correlationID) {
		return
	}
	relevantID, err := s.backend.ExtendRecording(recordingID, streamID, sourceLocation, channel)
	s.respond(correlationID, relevantID, err)
}

func (s *Session) OnStopRecordingSubscription(correlationID, subscriptionID int64) {
	if !s.operational(correlationID) {
		return
	}
	relevantID, err := s.backend.StopRecordingSubscription(subscriptionID)
	s.respond(correlationID, relevantID, err)
}

func (s *Session) OnStartReplay(correlationID, recordingID, position, length int64, replayStreamID int32, replayChannel string) {
	if !s.operational(correlationID) {
		return
	}
	relevantID, err := s.backend.StartReplay(recordingID, position, length, replayStreamID, replayChannel)
	s.respond(correlationID, relevantID, err)
}

func (s *Session) OnStartBoundedReplay(correlationID, recordingID, position, length int64, limitCounterID, replayStreamID int32, replayChannel string) {
	if !s.operational(correlationID) {
		return
	}
	relevantID, err := s.backend.StartBoundedReplay(recordingID, position, length, limitCounterID, replayStreamID, replayChannel)
	s.respond(correlationID, relevantID, err)
}

func (s *Session) OnStopReplay(correlationID, replaySessionID int64) {
	if !s.operational(correlationID) {
		return
	}
	relevantID, err := s.backend.StopReplay(replaySessionID)
	s.respond(correlationID, relevantID, err)
}

func (s *Session) OnStopAllReplays(correlationID, recordingID int64) {
	if !s.operational(correlationID) {
		return
	}
	relevantID, err := s.backend.StopAllReplays(recordingID)
	s.respond(correlationID, relevantID, err)
}

func (s *Session) OnListRecordings(correlationID, fromRecordingID int64, recordCount int32) {
	if !s.operational(correlationID) {
		return
	}
	relevantID, err := s.backend.ListRecordings(fromRecordingID, recordCount)
	s.respond(correlationID, relevantID, err)
}

func (s *Session) OnListRecordingsForURI(correlationID, fromRecordingID int64, recordCount, streamID int32, channelFragment []byte) {
	if !s.operational(correlationID) {
		return
	}
	relevantID, err := s.backend.ListRecordingsForURI(fromRecordingID, recordCount, streamID, channelFragment)
	s.respond(correlationID, relevantID, err)
}

func (s *Session) OnListRecording(correlationID, recordingID int64) {
	if !s.operational(correlationID) {
		return
	}
	relevantID, err := s.backend.ListRecording(recordingID)
	s.respond(correlationID, relevantID, err)
}

func (s *Session) OnGetRecordingPosition(correlationID, recordingID int64) {
	if !s.operational(correlationID) {
		return
	}
	relevantID, err := s.backend.RecordingPosition(recordingID)
	s.respond(correlationID, relevantID, err)
}

func (s *Session) OnGetStartPosition(correlationID, recordingID int64) {
	if !s.operational(correlationID) {
		return
	}
	relevantID, err := s.backend.StartPosition(recordingID)
	s.respond(correlationID, relevantID, err)
}

func (s *Session) OnGetStopPosition(correlationID, recordingID int64) {
	if !s.operational(correlationID) {
		return
	}
	relevantID, err := s.backend.StopPosition(recordingID)
	s.respond(correlationID, relevantID, err)
}

func (s *Session) OnFindLastMatchingRecording(correlationID, minRecordingID int64, sessionID, streamID int32, channelFragment []byte) {
	if !s.operational(correlationID) {
		return
	}
	relevantID, err := s.backend.FindLastMatchingRecording(minRecordingID, sessionID, streamID, channelFragment)
	s.respond(correlationID, relevantID, err)
}

func (s *Session) OnListRecordingSubscriptions(correlationID int64, pseudoIndex, subscriptionCount int32, applyStreamID bool, streamID int32, channel string) {
	if !s.operational(correlationID) {
		return
	}
	relevantID, err := s.backend.ListRecordingSubscriptions(pseudoIndex, subscriptionCount, applyStreamID, streamID, channel)
	s.respond(correlationID, relevantID, err)
}

func (s *Session) OnTruncateRecording(correlationID, recordingID, position int64) {
	if !s.operational(correlationID) {
		return
	}
	relevantID, err := s.backend.TruncateRecording(recordingID, position)
	s.respond(correlationID, relevantID, err)
}

func (s *Session) OnDetachSegments(correlationID, recordingID, newStartPosition int64) {
	if !s.operational(correlationID) {
		return
	}
	relevantID, err := s.backend.DetachSegments(recordingID, newStartPosition)
	s.respond(correlationID, relevantID, err)
}

func (s *Session) OnDeleteDetachedSegments(correlationID, recordingID int64) {
	if !s.operational(correlationID) {
		return
	}
	relevantID, err := s.backend.DeleteDetachedSegments(recordingID)
	s.respond(correlationID, relevantID, err)
}

func (s *Session) OnPurgeSegments(correlationID, recordingID, newStartPosition int64) {
	if !s.operational(correlationID) {
		return
	}
	relevantID, err := s.backend.PurgeSegments(recordingID, newStartPosition)
	s.respond(correlationID, relevantID, err)
}

func (s *Session) OnAttachSegments(correlationID, recordingID int64) {
	if !s.operational(correlationID) {
		return
	}
	relevantID, err := s.backend.AttachSegments(recordingID)
	s.respond(correlationID, relevantID, err)
}

func (s *Session) OnMigrateSegments(correlationID, srcRecordingID, dstRecordingID int64) {
	if !s.operational(correlationID) {
		return
	}
	relevantID, err := s.backend.MigrateSegments(srcRecordingID, dstRecordingID)
	s.respond(correlationID, relevantID, err)
}

func (s *Session) OnReplicate(correlationID, srcRecordingID, dstRecordingID int64, srcControlStreamID int32, srcControlChannel, liveDestination string) {
	if !s.operational(correlationID) {
		return
	}
	relevantID, err := s.backend.Replicate(srcRecordingID, dstRecordingID, srcControlStreamID, srcControlChannel, liveDestination)
	s.respond(correlationID, relevantID, err)
}

func (s *Session) OnStopReplication(correlationID, replicationID int64) {
	if !s.operational(correlationID) {
		return
	}
	relevantID, err := s.backend.StopReplication(replicationID)
	s.respond(correlationID, relevantID, err)
}
