package archive

import (
	"crypto/hmac"
	"errors"
)

// ErrAuthRejected is returned by authenticators to refuse a session. The
// session responds with an error and tears itself down.
var ErrAuthRejected = errors.New("archive: authentication rejected")

// Authenticator decides whether a connecting client may hold a control
// session. OnConnect sees the credentials from the connect request; a nil
// challenge with a nil error authenticates immediately, a non-nil
// challenge is sent to the client and the answer comes back through
// OnChallengeResponse. Both run on the conductor goroutine and must not
// block.
type Authenticator interface {
	OnConnect(sessionID int64, encodedCredentials []byte) (challenge []byte, err error)
	OnChallengeResponse(sessionID int64, encodedCredentials []byte) error
}

type allowAll struct{}

func (allowAll) OnConnect(int64, []byte) ([]byte, error) { return nil, nil }
func (allowAll) OnChallengeResponse(int64, []byte) error { return nil }

// AllowAll authenticates every session without credentials. It is the
// default when no authenticator is configured.
func AllowAll() Authenticator {
	return allowAll{}
}

type staticCredentials struct {
	secret    []byte
	challenge []byte
}

// StaticCredentials authenticates sessions against one shared secret. A
// connect that already carries the secret is authenticated immediately;
// any other connect is challenged and must answer with the secret.
func StaticCredentials(secret []byte) Authenticator {
	return &staticCredentials{
		secret:    append([]byte(nil), secret...),
		challenge: []byte("credentials-required"),
	}
}

func (a *staticCredentials) OnConnect(_ int64, encodedCredentials []byte) ([]byte, error) {
	if a.match(encodedCredentials) {
		return nil, nil
	}
	return a.challenge, nil
}

func (a *staticCredentials) OnChallengeResponse(_ int64, encodedCredentials []byte) error {
	if a.match(encodedCredentials) {
		return nil
	}
	return ErrAuthRejected
}

func (a *staticCredentials) match(credentials []byte) bool {
	return hmac.Equal(credentials, a.secret)
}
