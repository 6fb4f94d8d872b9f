package codec

// Block lengths for recording control messages. The legacy lengths are what
// schema version 1 writers produced, when source location was a single byte.
const (
	StartRecordingRequestBlockLength        = 24
	StartRecordingRequestLegacyBlockLength  = 21
	StopRecordingRequestBlockLength         = 20
	ExtendRecordingRequestBlockLength       = 32
	ExtendRecordingRequestLegacyBlockLength = 29
	StopSubscriptionRequestBlockLength      = 24
)

// StartRecordingRequest starts recording a stream identified by channel and
// stream ID.
type StartRecordingRequest struct{ body }

func (m *StartRecordingRequest) ControlSessionID() int64 { return m.int64At(0) }
func (m *StartRecordingRequest) CorrelationID() int64    { return m.int64At(8) }
func (m *StartRecordingRequest) StreamID() int32         { return m.int32At(16) }

func (m *StartRecordingRequest) SourceLocation() SourceLocation {
	return SourceLocation(m.int32At(20))
}

// Channel returns the channel URI to record from.
func (m *StartRecordingRequest) Channel() string { return m.varASCII(0) }

// StopRecordingRequest stops an active recording subscription identified by
// channel and stream ID.
type StopRecordingRequest struct{ body }

func (m *StopRecordingRequest) ControlSessionID() int64 { return m.int64At(0) }
func (m *StopRecordingRequest) CorrelationID() int64    { return m.int64At(8) }
func (m *StopRecordingRequest) StreamID() int32         { return m.int32At(16) }
func (m *StopRecordingRequest) Channel() string         { return m.varASCII(0) }

// ExtendRecordingRequest resumes recording into an existing recording.
type ExtendRecordingRequest struct{ body }

func (m *ExtendRecordingRequest) ControlSessionID() int64 { return m.int64At(0) }
func (m *ExtendRecordingRequest) CorrelationID() int64    { return m.int64At(8) }
func (m *ExtendRecordingRequest) RecordingID() int64      { return m.int64At(16) }
func (m *ExtendRecordingRequest) StreamID() int32         { return m.int32At(24) }

func (m *ExtendRecordingRequest) SourceLocation() SourceLocation {
	return SourceLocation(m.int32At(28))
}

// Channel returns the channel URI to record from.
func (m *ExtendRecordingRequest) Channel() string { return m.varASCII(0) }

// StopSubscriptionRequest stops a recording subscription by its ID.
type StopSubscriptionRequest struct{ body }

func (m *StopSubscriptionRequest) ControlSessionID() int64 { return m.int64At(0) }
func (m *StopSubscriptionRequest) CorrelationID() int64    { return m.int64At(8) }
func (m *StopSubscriptionRequest) SubscriptionID() int64   { return m.int64At(16) }
