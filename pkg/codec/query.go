package codec

// Block lengths for catalog and position query messages.
const (
	ListRecordingsRequestBlockLength            = 28
	ListRecordingsForURIRequestBlockLength      = 32
	ListRecordingRequestBlockLength             = 24
	RecordingPositionRequestBlockLength         = 24
	StartPositionRequestBlockLength             = 24
	StopPositionRequestBlockLength              = 24
	FindLastMatchingRecordingRequestBlockLength = 32
	ListSubscriptionsRequestBlockLength         = 32
)

// ListRecordingsRequest lists catalog entries starting from a recording ID.
type ListRecordingsRequest struct{ body }

func (m *ListRecordingsRequest) ControlSessionID() int64 { return m.int64At(0) }
func (m *ListRecordingsRequest) CorrelationID() int64    { return m.int64At(8) }
func (m *ListRecordingsRequest) FromRecordingID() int64  { return m.int64At(16) }
func (m *ListRecordingsRequest) RecordCount() int32      { return m.int32At(24) }

// ListRecordingsForURIRequest lists catalog entries matching a channel
// fragment and stream ID.
type ListRecordingsForURIRequest struct{ body }

func (m *ListRecordingsForURIRequest) ControlSessionID() int64 { return m.int64At(0) }
func (m *ListRecordingsForURIRequest) CorrelationID() int64    { return m.int64At(8) }
func (m *ListRecordingsForURIRequest) FromRecordingID() int64  { return m.int64At(16) }
func (m *ListRecordingsForURIRequest) RecordCount() int32      { return m.int32At(24) }
func (m *ListRecordingsForURIRequest) StreamID() int32         { return m.int32At(28) }

// ChannelFragment returns a copy of the channel URI fragment to match
// against, safe to retain.
func (m *ListRecordingsForURIRequest) ChannelFragment() []byte { return m.varBytes(0) }

// ListRecordingRequest describes a single catalog entry.
type ListRecordingRequest struct{ body }

func (m *ListRecordingRequest) ControlSessionID() int64 { return m.int64At(0) }
func (m *ListRecordingRequest) CorrelationID() int64    { return m.int64At(8) }
func (m *ListRecordingRequest) RecordingID() int64      { return m.int64At(16) }

// RecordingPositionRequest queries the recorded position of an active
// recording.
type RecordingPositionRequest struct{ body }

func (m *RecordingPositionRequest) ControlSessionID() int64 { return m.int64At(0) }
func (m *RecordingPositionRequest) CorrelationID() int64    { return m.int64At(8) }
func (m *RecordingPositionRequest) RecordingID() int64      { return m.int64At(16) }

// StartPositionRequest queries the start position of a recording.
type StartPositionRequest struct{ body }

func (m *StartPositionRequest) ControlSessionID() int64 { return m.int64At(0) }
func (m *StartPositionRequest) CorrelationID() int64    { return m.int64At(8) }
func (m *StartPositionRequest) RecordingID() int64      { return m.int64At(16) }

// StopPositionRequest queries the stop position of a recording, or the null
// value if the recording is still active.
type StopPositionRequest struct{ body }

func (m *StopPositionRequest) ControlSessionID() int64 { return m.int64At(0) }
func (m *StopPositionRequest) CorrelationID() int64    { return m.int64At(8) }
func (m *StopPositionRequest) RecordingID() int64      { return m.int64At(16) }

// FindLastMatchingRecordingRequest finds the most recent recording matching
// a channel fragment, stream ID, and session ID.
type FindLastMatchingRecordingRequest struct{ body }

func (m *FindLastMatchingRecordingRequest) ControlSessionID() int64 { return m.int64At(0) }
func (m *FindLastMatchingRecordingRequest) CorrelationID() int64    { return m.int64At(8) }
func (m *FindLastMatchingRecordingRequest) MinRecordingID() int64   { return m.int64At(16) }
func (m *FindLastMatchingRecordingRequest) SessionID() int32        { return m.int32At(24) }
func (m *FindLastMatchingRecordingRequest) StreamID() int32         { return m.int32At(28) }

// ChannelFragment returns a copy of the channel URI fragment to match
// against, safe to retain.
func (m *FindLastMatchingRecordingRequest) ChannelFragment() []byte { return m.varBytes(0) }

// ListSubscriptionsRequest lists active recording subscriptions.
type ListSubscriptionsRequest struct{ body }

func (m *ListSubscriptionsRequest) ControlSessionID() int64 { return m.int64At(0) }
func (m *ListSubscriptionsRequest) CorrelationID() int64    { return m.int64At(8) }
func (m *ListSubscriptionsRequest) PseudoIndex() int32      { return m.int32At(16) }
func (m *ListSubscriptionsRequest) SubscriptionCount() int32 {
	return m.int32At(20)
}

// ApplyStreamID reports whether the stream ID participates in matching.
func (m *ListSubscriptionsRequest) ApplyStreamID() bool { return m.bool32At(24) }
func (m *ListSubscriptionsRequest) StreamID() int32     { return m.int32At(28) }

// Channel returns the channel URI fragment to match against.
func (m *ListSubscriptionsRequest) Channel() string { return m.varASCII(0) }
