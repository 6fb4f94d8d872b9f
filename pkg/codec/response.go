package codec

// Block lengths for archive-to-client messages.
const (
	ControlResponseBlockLength = 32
	ChallengeBlockLength       = 16
)

// ControlResponse acknowledges a control request. RelevantID carries the
// operation result: a session ID on connect, a recording or subscription ID
// on success, or an error ID when Code is Error.
type ControlResponse struct{ body }

func (m *ControlResponse) ControlSessionID() int64 { return m.int64At(0) }
func (m *ControlResponse) CorrelationID() int64    { return m.int64At(8) }
func (m *ControlResponse) RelevantID() int64       { return m.int64At(16) }

func (m *ControlResponse) Code() ResponseCode {
	return ResponseCode(m.int32At(24))
}

// Version returns the archive's semantic protocol version.
func (m *ControlResponse) Version() int32 { return m.int32At(28) }

// ErrorMessage returns the error detail, empty when Code is not Error.
func (m *ControlResponse) ErrorMessage() string { return m.varASCII(0) }

// Challenge asks a connecting client to prove its identity before the
// session becomes active.
type Challenge struct{ body }

func (m *Challenge) ControlSessionID() int64 { return m.int64At(0) }
func (m *Challenge) CorrelationID() int64    { return m.int64At(8) }

// EncodedChallenge returns a copy of the challenge data, safe to retain.
func (m *Challenge) EncodedChallenge() []byte { return m.varBytes(0) }
