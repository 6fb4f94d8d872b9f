package control

import "github.com/scribe-dev/scribe/pkg/codec"

// ControlSession handles the decoded operations of one control session.
// The demultiplexer invokes exactly one callback per inbound request, on
// the polling goroutine; implementations must not block. Arguments follow
// wire field order. Byte slice arguments are copies the session may retain.
type ControlSession interface {
	// SessionID returns the archive-assigned session identity.
	SessionID() int64

	// MajorVersion returns the major component of the protocol version the
	// client advertised at connect.
	MajorVersion() int32

	// Abort marks the session for teardown without further responses.
	Abort()

	// Liveness and authentication.
	OnKeepAlive(correlationID int64)
	OnChallengeResponse(correlationID int64, encodedCredentials []byte)

	// Recording control.
	OnStartRecording(correlationID int64, streamID int32, sourceLocation codec.SourceLocation, channel string)
	OnStopRecording(correlationID int64, streamID int32, channel string)
	OnExtendRecording(correlationID, recordingID int64, streamID int32, sourceLocation codec.SourceLocation, channel string)
	OnStopRecordingSubscription(correlationID, subscriptionID int64)

	// Replay control.
	OnStartReplay(correlationID, recordingID, position, length int64, replayStreamID int32, replayChannel string)
	OnStartBoundedReplay(correlationID, recordingID, position, length int64, limitCounterID, replayStreamID int32, replayChannel string)
	OnStopReplay(correlationID, replaySessionID int64)
	OnStopAllReplays(correlationID, recordingID int64)

	// Catalog and position queries.
	OnListRecordings(correlationID, fromRecordingID int64, recordCount int32)
	OnListRecordingsForURI(correlationID, fromRecordingID int64, recordCount, streamID int32, channelFragment []byte)
	OnListRecording(correlationID, recordingID int64)
	OnGetRecordingPosition(correlationID, recordingID int64)
	OnGetStartPosition(correlationID, recordingID int64)
	OnGetStopPosition(correlationID, recordingID int64)
	OnFindLastMatchingRecording(correlationID, minRecordingID int64, sessionID, streamID int32, channelFragment []byte)
	OnListRecordingSubscriptions(correlationID int64, pseudoIndex, subscriptionCount int32, applyStreamID bool, streamID int32, channel string)

	// Segment maintenance.
	OnTruncateRecording(correlationID, recordingID, position int64)
	OnDetachSegments(correlationID, recordingID, newStartPosition int64)
	OnDeleteDetachedSegments(correlationID, recordingID int64)
	OnPurgeSegments(correlationID, recordingID, newStartPosition int64)
	OnAttachSegments(correlationID, recordingID int64)
	OnMigrateSegments(correlationID, srcRecordingID, dstRecordingID int64)

	// Cross-archive replication.
	OnReplicate(correlationID, srcRecordingID, dstRecordingID int64, srcControlStreamID int32, srcControlChannel, liveDestination string)
	OnStopReplication(correlationID, replicationID int64)
}

// SessionFactory creates a control session for each connect request. The
// factory assigns the session its identity; the demultiplexer registers
// the returned session under SessionID. A plain connect passes empty
// non-nil credentials.
type SessionFactory interface {
	NewControlSession(correlationID int64, responseStreamID, version int32,
		responseChannel string, encodedCredentials []byte, owner SessionOwner) ControlSession
}

// SessionOwner is the capability a session holder uses to drop a session
// from its demultiplexer's registry. It grants removal rights and nothing
// else; the session's lifetime belongs to whoever created it.
type SessionOwner interface {
	RemoveSession(session ControlSession)
}
