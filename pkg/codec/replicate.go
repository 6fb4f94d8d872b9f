package codec

// Block lengths for cross-archive replication messages.
const (
	ReplicateRequestBlockLength       = 36
	StopReplicationRequestBlockLength = 24
)

// ReplicateRequest replicates a recording from a source archive into this
// one, optionally merging to a live destination.
type ReplicateRequest struct{ body }

func (m *ReplicateRequest) ControlSessionID() int64   { return m.int64At(0) }
func (m *ReplicateRequest) CorrelationID() int64      { return m.int64At(8) }
func (m *ReplicateRequest) SrcRecordingID() int64     { return m.int64At(16) }
func (m *ReplicateRequest) DstRecordingID() int64     { return m.int64At(24) }
func (m *ReplicateRequest) SrcControlStreamID() int32 { return m.int32At(32) }

// SrcControlChannel returns the control channel URI of the source archive.
func (m *ReplicateRequest) SrcControlChannel() string { return m.varASCII(0) }

// LiveDestination returns the live destination channel URI, empty when the
// replication does not merge to a live stream.
func (m *ReplicateRequest) LiveDestination() string { return m.varASCII(1) }

// StopReplicationRequest stops an active replication.
type StopReplicationRequest struct{ body }

func (m *StopReplicationRequest) ControlSessionID() int64 { return m.int64At(0) }
func (m *StopReplicationRequest) CorrelationID() int64    { return m.int64At(8) }
func (m *StopReplicationRequest) ReplicationID() int64    { return m.int64At(16) }
