package codec

// Block lengths for segment maintenance messages.
const (
	TruncateRecordingRequestBlockLength      = 32
	DetachSegmentsRequestBlockLength         = 32
	DeleteDetachedSegmentsRequestBlockLength = 24
	PurgeSegmentsRequestBlockLength          = 32
	AttachSegmentsRequestBlockLength         = 24
	MigrateSegmentsRequestBlockLength        = 32
)

// TruncateRecordingRequest truncates a stopped recording to a position.
type TruncateRecordingRequest struct{ body }

func (m *TruncateRecordingRequest) ControlSessionID() int64 { return m.int64At(0) }
func (m *TruncateRecordingRequest) CorrelationID() int64    { return m.int64At(8) }
func (m *TruncateRecordingRequest) RecordingID() int64      { return m.int64At(16) }
func (m *TruncateRecordingRequest) Position() int64         { return m.int64At(24) }

// DetachSegmentsRequest detaches segments from the start of a recording up
// to a new start position.
type DetachSegmentsRequest struct{ body }

func (m *DetachSegmentsRequest) ControlSessionID() int64 { return m.int64At(0) }
func (m *DetachSegmentsRequest) CorrelationID() int64    { return m.int64At(8) }
func (m *DetachSegmentsRequest) RecordingID() int64      { return m.int64At(16) }
func (m *DetachSegmentsRequest) NewStartPosition() int64 { return m.int64At(24) }

// DeleteDetachedSegmentsRequest deletes segments previously detached from a
// recording.
type DeleteDetachedSegmentsRequest struct{ body }

func (m *DeleteDetachedSegmentsRequest) ControlSessionID() int64 { return m.int64At(0) }
func (m *DeleteDetachedSegmentsRequest) CorrelationID() int64    { return m.int64At(8) }
func (m *DeleteDetachedSegmentsRequest) RecordingID() int64      { return m.int64At(16) }

// PurgeSegmentsRequest detaches and deletes segments in one operation.
type PurgeSegmentsRequest struct{ body }

func (m *PurgeSegmentsRequest) ControlSessionID() int64 { return m.int64At(0) }
func (m *PurgeSegmentsRequest) CorrelationID() int64    { return m.int64At(8) }
func (m *PurgeSegmentsRequest) RecordingID() int64      { return m.int64At(16) }
func (m *PurgeSegmentsRequest) NewStartPosition() int64 { return m.int64At(24) }

// AttachSegmentsRequest attaches segments that precede the current start of
// a recording.
type AttachSegmentsRequest struct{ body }

func (m *AttachSegmentsRequest) ControlSessionID() int64 { return m.int64At(0) }
func (m *AttachSegmentsRequest) CorrelationID() int64    { return m.int64At(8) }
func (m *AttachSegmentsRequest) RecordingID() int64      { return m.int64At(16) }

// MigrateSegmentsRequest moves segments from a source recording onto the
// end of a destination recording.
type MigrateSegmentsRequest struct{ body }

func (m *MigrateSegmentsRequest) ControlSessionID() int64 { return m.int64At(0) }
func (m *MigrateSegmentsRequest) CorrelationID() int64    { return m.int64At(8) }
func (m *MigrateSegmentsRequest) SrcRecordingID() int64   { return m.int64At(16) }
func (m *MigrateSegmentsRequest) DstRecordingID() int64   { return m.int64At(24) }
