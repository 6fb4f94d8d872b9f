package codec

// Block lengths for session establishment and liveness messages.
const (
	ConnectRequestBlockLength      = 16
	AuthConnectRequestBlockLength  = 16
	CloseSessionRequestBlockLength = 8
	KeepAliveRequestBlockLength    = 16
	ChallengeResponseBlockLength   = 16
)

// ConnectRequest opens a control session without credentials.
type ConnectRequest struct{ body }

func (m *ConnectRequest) CorrelationID() int64    { return m.int64At(0) }
func (m *ConnectRequest) ResponseStreamID() int32 { return m.int32At(8) }
func (m *ConnectRequest) Version() int32          { return m.int32At(12) }

// ResponseChannel returns the channel URI responses should be published to.
func (m *ConnectRequest) ResponseChannel() string { return m.varASCII(0) }

// AuthConnectRequest opens a control session carrying credentials for the
// archive's authenticator.
type AuthConnectRequest struct{ body }

func (m *AuthConnectRequest) CorrelationID() int64    { return m.int64At(0) }
func (m *AuthConnectRequest) ResponseStreamID() int32 { return m.int32At(8) }
func (m *AuthConnectRequest) Version() int32          { return m.int32At(12) }

// ResponseChannel returns the channel URI responses should be published to.
func (m *AuthConnectRequest) ResponseChannel() string { return m.varASCII(0) }

// EncodedCredentials returns a copy of the credentials, safe to retain.
func (m *AuthConnectRequest) EncodedCredentials() []byte { return m.varBytes(1) }

// CloseSessionRequest closes an established control session.
type CloseSessionRequest struct{ body }

func (m *CloseSessionRequest) ControlSessionID() int64 { return m.int64At(0) }

// KeepAliveRequest signals session liveness between operations.
type KeepAliveRequest struct{ body }

func (m *KeepAliveRequest) ControlSessionID() int64 { return m.int64At(0) }
func (m *KeepAliveRequest) CorrelationID() int64    { return m.int64At(8) }

// ChallengeResponse answers an authentication challenge issued on connect.
type ChallengeResponse struct{ body }

func (m *ChallengeResponse) ControlSessionID() int64 { return m.int64At(0) }
func (m *ChallengeResponse) CorrelationID() int64    { return m.int64At(8) }

// EncodedCredentials returns a copy of the credentials, safe to retain.
func (m *ChallengeResponse) EncodedCredentials() []byte { return m.varBytes(0) }
