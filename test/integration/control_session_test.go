package integration_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/scribe-dev/scribe/pkg/agent"
	"github.com/scribe-dev/scribe/pkg/archive"
	"github.com/scribe-dev/scribe/pkg/codec"
	"github.com/scribe-dev/scribe/pkg/transport"
)

const readTimeout = 5 * time.Second

// archiveFixture is a full archive stack: a conductor driven by its own
// runner goroutine and a control listener mounted on a real HTTP server,
// exercised through actual websocket clients.
type archiveFixture struct {
	srv *httptest.Server
}

func startArchive(t *testing.T, opts ...archive.Option) *archiveFixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	conductor := archive.NewConductor(archive.NewLoggingBackend(logger), logger, opts...)
	listener := transport.NewListener(func(conn *transport.WSConn) {
		conductor.OnControlConnection(conn, conn)
	}, transport.ConnConfig{}, logger)

	// Mount the control listener on a Chi router next to a plain HTTP
	// route, the same shape scribed uses in production.
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok\n"))
	})
	r.Handle("/control", listener)

	srv := httptest.NewServer(r)
	runner := agent.NewRunner(conductor, agent.YieldingIdleStrategy{}, nil, logger)
	runner.Start()

	t.Cleanup(func() {
		srv.Close()
		runner.Close()
	})
	return &archiveFixture{srv: srv}
}

// dial opens a control websocket against the fixture server.
func (f *archiveFixture) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.srv.URL, "http") + "/control"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// send encodes one control message and writes it as a binary frame.
func send(t *testing.T, conn *websocket.Conn, encode func(w *codec.Writer)) {
	t.Helper()
	w := codec.NewWriter()
	encode(w)
	if err := conn.WriteMessage(websocket.BinaryMessage, w.Bytes()); err != nil {
		t.Fatalf("write frame: %v", err)
	}
}

func readFrame(t *testing.T, conn *websocket.Conn) []byte {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(readTimeout))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return data
}

// readResponse reads the next frame and decodes it as a ControlResponse.
func readResponse(t *testing.T, conn *websocket.Conn) *codec.ControlResponse {
	t.Helper()
	data := readFrame(t, conn)
	hdr, err := codec.DecodeHeader(data)
	if err != nil {
		t.Fatalf("decode header: %v", err)
	}
	if hdr.TemplateID != codec.TemplateControlResponse {
		t.Fatalf("template = %s, want ControlResponse", hdr.TemplateID)
	}
	resp := &codec.ControlResponse{}
	resp.Wrap(data[codec.HeaderLength:], hdr.BlockLength, hdr.Version)
	return resp
}

// connect establishes a control session and returns its ID.
func connect(t *testing.T, conn *websocket.Conn, correlationID int64) int64 {
	t.Helper()
	send(t, conn, func(w *codec.Writer) {
		codec.AppendConnectRequest(w, correlationID, 100, codec.ProtocolSemanticVersion, "ws://archive-client:0")
	})
	resp := readResponse(t, conn)
	if resp.Code() != codec.ResponseCodeOK {
		t.Fatalf("connect code = %s, message %q", resp.Code(), resp.ErrorMessage())
	}
	if got := resp.CorrelationID(); got != correlationID {
		t.Fatalf("connect correlationID = %d, want %d", got, correlationID)
	}
	if resp.ControlSessionID() < 1 {
		t.Fatalf("sessionID = %d, want >= 1", resp.ControlSessionID())
	}
	return resp.ControlSessionID()
}

// TestControlSessionLifecycle drives a full client conversation over a
// real websocket: connect, record, query, close.
func TestControlSessionLifecycle(t *testing.T) {
	f := startArchive(t)
	conn := f.dial(t)

	sessionID := connect(t, conn, 1)

	var subscriptionID int64
	t.Run("start recording", func(t *testing.T) {
		send(t, conn, func(w *codec.Writer) {
			codec.AppendStartRecordingRequest(w, sessionID, 2, 7, codec.SourceLocationLocal, "scribe:events?stream=7")
		})
		resp := readResponse(t, conn)
		if resp.Code() != codec.ResponseCodeOK {
			t.Fatalf("code = %s, message %q", resp.Code(), resp.ErrorMessage())
		}
		if resp.CorrelationID() != 2 {
			t.Errorf("correlationID = %d, want 2", resp.CorrelationID())
		}
		subscriptionID = resp.RelevantID()
		if subscriptionID < 1 {
			t.Errorf("subscriptionID = %d, want >= 1", subscriptionID)
		}
	})

	t.Run("list recordings", func(t *testing.T) {
		send(t, conn, func(w *codec.Writer) {
			codec.AppendListRecordingsRequest(w, sessionID, 3, 0, 10)
		})
		resp := readResponse(t, conn)
		if resp.Code() != codec.ResponseCodeOK {
			t.Fatalf("code = %s, message %q", resp.Code(), resp.ErrorMessage())
		}
		if got := resp.RelevantID(); got != 1 {
			t.Errorf("recording count = %d, want 1", got)
		}
	})

	t.Run("stop recording", func(t *testing.T) {
		send(t, conn, func(w *codec.Writer) {
			codec.AppendStopRecordingRequest(w, sessionID, 4, 7, "scribe:events?stream=7")
		})
		resp := readResponse(t, conn)
		if resp.Code() != codec.ResponseCodeOK {
			t.Fatalf("code = %s, message %q", resp.Code(), resp.ErrorMessage())
		}
		if got := resp.RelevantID(); got != subscriptionID {
			t.Errorf("relevantID = %d, want %d", got, subscriptionID)
		}
	})

	t.Run("stop unknown subscription", func(t *testing.T) {
		send(t, conn, func(w *codec.Writer) {
			codec.AppendStopRecordingRequest(w, sessionID, 5, 99, "scribe:missing?stream=99")
		})
		resp := readResponse(t, conn)
		if resp.Code() != codec.ResponseCodeSubscriptionUnknown {
			t.Errorf("code = %s, want SUBSCRIPTION_UNKNOWN", resp.Code())
		}
	})

	t.Run("close and reconnect", func(t *testing.T) {
		// CloseSession draws no response. The connection stays usable and
		// a fresh connect yields a new session.
		send(t, conn, func(w *codec.Writer) {
			codec.AppendCloseSessionRequest(w, sessionID)
		})
		next := connect(t, conn, 6)
		if next <= sessionID {
			t.Errorf("new sessionID = %d, want > %d", next, sessionID)
		}
	})
}

// TestChallengeHandshake covers the credential exchange against an
// archive configured with a shared secret.
func TestChallengeHandshake(t *testing.T) {
	f := startArchive(t, archive.WithAuthenticator(archive.StaticCredentials([]byte("s3cr3t"))))

	t.Run("challenged connect", func(t *testing.T) {
		conn := f.dial(t)

		send(t, conn, func(w *codec.Writer) {
			codec.AppendConnectRequest(w, 10, 100, codec.ProtocolSemanticVersion, "ws://archive-client:0")
		})
		data := readFrame(t, conn)
		hdr, err := codec.DecodeHeader(data)
		if err != nil {
			t.Fatalf("decode header: %v", err)
		}
		if hdr.TemplateID != codec.TemplateChallenge {
			t.Fatalf("template = %s, want Challenge", hdr.TemplateID)
		}
		challenge := &codec.Challenge{}
		challenge.Wrap(data[codec.HeaderLength:], hdr.BlockLength, hdr.Version)
		if got := string(challenge.EncodedChallenge()); got != "credentials-required" {
			t.Errorf("challenge = %q, want %q", got, "credentials-required")
		}
		sessionID := challenge.ControlSessionID()

		send(t, conn, func(w *codec.Writer) {
			codec.AppendChallengeResponse(w, sessionID, 11, []byte("s3cr3t"))
		})
		resp := readResponse(t, conn)
		if resp.Code() != codec.ResponseCodeOK {
			t.Fatalf("code = %s, message %q", resp.Code(), resp.ErrorMessage())
		}
		if resp.CorrelationID() != 11 {
			t.Errorf("correlationID = %d, want 11", resp.CorrelationID())
		}

		// The authenticated session serves requests.
		send(t, conn, func(w *codec.Writer) {
			codec.AppendListRecordingsRequest(w, sessionID, 12, 0, 10)
		})
		resp = readResponse(t, conn)
		if resp.Code() != codec.ResponseCodeOK {
			t.Errorf("list code = %s, message %q", resp.Code(), resp.ErrorMessage())
		}
	})

	t.Run("rejected credentials", func(t *testing.T) {
		conn := f.dial(t)

		send(t, conn, func(w *codec.Writer) {
			codec.AppendConnectRequest(w, 20, 100, codec.ProtocolSemanticVersion, "ws://archive-client:0")
		})
		data := readFrame(t, conn)
		hdr, err := codec.DecodeHeader(data)
		if err != nil {
			t.Fatalf("decode header: %v", err)
		}
		if hdr.TemplateID != codec.TemplateChallenge {
			t.Fatalf("template = %s, want Challenge", hdr.TemplateID)
		}
		challenge := &codec.Challenge{}
		challenge.Wrap(data[codec.HeaderLength:], hdr.BlockLength, hdr.Version)

		send(t, conn, func(w *codec.Writer) {
			codec.AppendChallengeResponse(w, challenge.ControlSessionID(), 21, []byte("wrong"))
		})
		resp := readResponse(t, conn)
		if resp.Code() != codec.ResponseCodeError {
			t.Fatalf("code = %s, want ERROR", resp.Code())
		}
		if got := resp.ErrorMessage(); got != "authentication rejected" {
			t.Errorf("message = %q, want %q", got, "authentication rejected")
		}
	})

	t.Run("credentialed connect skips challenge", func(t *testing.T) {
		conn := f.dial(t)

		send(t, conn, func(w *codec.Writer) {
			codec.AppendAuthConnectRequest(w, 30, 100, codec.ProtocolSemanticVersion, "ws://archive-client:0", []byte("s3cr3t"))
		})
		resp := readResponse(t, conn)
		if resp.Code() != codec.ResponseCodeOK {
			t.Fatalf("code = %s, message %q", resp.Code(), resp.ErrorMessage())
		}
		if resp.CorrelationID() != 30 {
			t.Errorf("correlationID = %d, want 30", resp.CorrelationID())
		}
	})
}

// TestHealthRouteBesideControl confirms plain HTTP routes keep working on
// the same router that carries the websocket listener.
func TestHealthRouteBesideControl(t *testing.T) {
	f := startArchive(t)

	resp, err := http.Get(f.srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("get /healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if got := string(body); got != "ok\n" {
		t.Errorf("body = %q, want %q", got, "ok\n")
	}
}
