package codec

// Decoders bundles one flyweight per control request so a demultiplexer can
// decode any fragment without allocating. The scratch buffer backs the body
// rewrite applied to recording requests from schema version 1 clients.
type Decoders struct {
	ConnectRequest                   ConnectRequest
	AuthConnectRequest               AuthConnectRequest
	CloseSessionRequest              CloseSessionRequest
	KeepAliveRequest                 KeepAliveRequest
	ChallengeResponse                ChallengeResponse
	StartRecordingRequest            StartRecordingRequest
	StopRecordingRequest             StopRecordingRequest
	ExtendRecordingRequest           ExtendRecordingRequest
	StopSubscriptionRequest          StopSubscriptionRequest
	ReplayRequest                    ReplayRequest
	BoundedReplayRequest             BoundedReplayRequest
	StopReplayRequest                StopReplayRequest
	StopAllReplaysRequest            StopAllReplaysRequest
	ListRecordingsRequest            ListRecordingsRequest
	ListRecordingsForURIRequest      ListRecordingsForURIRequest
	ListRecordingRequest             ListRecordingRequest
	RecordingPositionRequest         RecordingPositionRequest
	StartPositionRequest             StartPositionRequest
	StopPositionRequest              StopPositionRequest
	FindLastMatchingRecordingRequest FindLastMatchingRecordingRequest
	ListSubscriptionsRequest         ListSubscriptionsRequest
	TruncateRecordingRequest         TruncateRecordingRequest
	DetachSegmentsRequest            DetachSegmentsRequest
	DeleteDetachedSegmentsRequest    DeleteDetachedSegmentsRequest
	PurgeSegmentsRequest             PurgeSegmentsRequest
	AttachSegmentsRequest            AttachSegmentsRequest
	MigrateSegmentsRequest           MigrateSegmentsRequest
	ReplicateRequest                 ReplicateRequest
	StopReplicationRequest           StopReplicationRequest

	scratch []byte
}

// NewDecoders creates a decoder bundle with a scratch buffer sized for
// typical control messages.
func NewDecoders() *Decoders {
	return &Decoders{
		scratch: make([]byte, 512),
	}
}

// Scratch returns a reusable buffer of exactly n bytes. The buffer contents
// are valid until the next call.
func (d *Decoders) Scratch(n int) []byte {
	if cap(d.scratch) < n {
		d.scratch = make([]byte, n)
	}
	return d.scratch[:n]
}
