package codec

// Block lengths for replay control messages.
const (
	ReplayRequestBlockLength         = 44
	BoundedReplayRequestBlockLength  = 48
	StopReplayRequestBlockLength     = 24
	StopAllReplaysRequestBlockLength = 24
)

// ReplayRequest starts replaying a recorded stream.
type ReplayRequest struct{ body }

func (m *ReplayRequest) ControlSessionID() int64 { return m.int64At(0) }
func (m *ReplayRequest) CorrelationID() int64    { return m.int64At(8) }
func (m *ReplayRequest) RecordingID() int64      { return m.int64At(16) }
func (m *ReplayRequest) Position() int64         { return m.int64At(24) }
func (m *ReplayRequest) Length() int64           { return m.int64At(32) }
func (m *ReplayRequest) ReplayStreamID() int32   { return m.int32At(40) }

// ReplayChannel returns the channel URI to replay onto.
func (m *ReplayRequest) ReplayChannel() string { return m.varASCII(0) }

// BoundedReplayRequest starts a replay whose position is bounded by a
// counter, for following a live recording without overrunning it.
type BoundedReplayRequest struct{ body }

func (m *BoundedReplayRequest) ControlSessionID() int64 { return m.int64At(0) }
func (m *BoundedReplayRequest) CorrelationID() int64    { return m.int64At(8) }
func (m *BoundedReplayRequest) RecordingID() int64      { return m.int64At(16) }
func (m *BoundedReplayRequest) Position() int64         { return m.int64At(24) }
func (m *BoundedReplayRequest) Length() int64           { return m.int64At(32) }
func (m *BoundedReplayRequest) LimitCounterID() int32   { return m.int32At(40) }
func (m *BoundedReplayRequest) ReplayStreamID() int32   { return m.int32At(44) }

// ReplayChannel returns the channel URI to replay onto.
func (m *BoundedReplayRequest) ReplayChannel() string { return m.varASCII(0) }

// StopReplayRequest stops an active replay session.
type StopReplayRequest struct{ body }

func (m *StopReplayRequest) ControlSessionID() int64 { return m.int64At(0) }
func (m *StopReplayRequest) CorrelationID() int64    { return m.int64At(8) }
func (m *StopReplayRequest) ReplaySessionID() int64  { return m.int64At(16) }

// StopAllReplaysRequest stops every replay of a recording, or of all
// recordings when the recording ID is the null value.
type StopAllReplaysRequest struct{ body }

func (m *StopAllReplaysRequest) ControlSessionID() int64 { return m.int64At(0) }
func (m *StopAllReplaysRequest) CorrelationID() int64    { return m.int64At(8) }
func (m *StopAllReplaysRequest) RecordingID() int64      { return m.int64At(16) }
