package control

import (
	"errors"
	"io"
	"log/slog"
	"reflect"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/scribe-dev/scribe/pkg/agent"
	"github.com/scribe-dev/scribe/pkg/codec"
	"github.com/scribe-dev/scribe/pkg/metrics"
	"github.com/scribe-dev/scribe/pkg/transport"
)

var _ agent.Agent = (*Demuxer)(nil)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// call records one session callback with its decoded arguments.
type call struct {
	op   string
	args []any
}

// fakeSession records every callback the demultiplexer routes to it.
type fakeSession struct {
	id      int64
	major   int32
	aborted bool
	calls   []call
}

func (s *fakeSession) record(op string, args ...any) {
	s.calls = append(s.calls, call{op: op, args: args})
}

func (s *fakeSession) SessionID() int64    { return s.id }
func (s *fakeSession) MajorVersion() int32 { return s.major }
func (s *fakeSession) Abort()              { s.aborted = true }

func (s *fakeSession) OnKeepAlive(correlationID int64) {
	s.record("OnKeepAlive", correlationID)
}

func (s *fakeSession) OnChallengeResponse(correlationID int64, encodedCredentials []byte) {
	s.record("OnChallengeResponse", correlationID, encodedCredentials)
}

func (s *fakeSession) OnStartRecording(correlationID int64, streamID int32, sourceLocation codec.SourceLocation, channel string) {
	s.record("OnStartRecording", correlationID, streamID, sourceLocation, channel)
}

func (s *fakeSession) OnStopRecording(correlationID int64, streamID int32, channel string) {
	s.record("OnStopRecording", correlationID, streamID, channel)
}

func (s *fakeSession) OnExtendRecording(correlationID, recordingID int64, streamID int32, sourceLocation codec.SourceLocation, channel string) {
	s.record("OnExtendRecording", correlationID, recordingID, streamID, sourceLocation, channel)
}

func (s *fakeSession) OnStopRecordingSubscription(correlationID, subscriptionID int64) {
	s.record("OnStopRecordingSubscription", correlationID, subscriptionID)
}

func (s *fakeSession) OnStartReplay(correlationID, recordingID, position, length int64, replayStreamID int32, replayChannel string) {
	s.record("OnStartReplay", correlationID, recordingID, position, length, replayStreamID, replayChannel)
}

func (s *fakeSession) OnStartBoundedReplay(correlationID, recordingID, position, length int64, limitCounterID, replayStreamID int32, replayChannel string) {
	s.record("OnStartBoundedReplay", correlationID, recordingID, position, length, limitCounterID, replayStreamID, replayChannel)
}

func (s *fakeSession) OnStopReplay(correlationID, replaySessionID int64) {
	s.record("OnStopReplay", correlationID, replaySessionID)
}

func (s *fakeSession) OnStopAllReplays(correlationID, recordingID int64) {
	s.record("OnStopAllReplays", correlationID, recordingID)
}

func (s *fakeSession) OnListRecordings(correlationID, fromRecordingID int64, recordCount int32) {
	s.record("OnListRecordings", correlationID, fromRecordingID, recordCount)
}

func (s *fakeSession) OnListRecordingsForURI(correlationID, fromRecordingID int64, recordCount, streamID int32, channelFragment []byte) {
	s.record("OnListRecordingsForURI", correlationID, fromRecordingID, recordCount, streamID, channelFragment)
}

func (s *fakeSession) OnListRecording(correlationID, recordingID int64) {
	s.record("OnListRecording", correlationID, recordingID)
}

func (s *fakeSession) OnGetRecordingPosition(correlationID, recordingID int64) {
	s.record("OnGetRecordingPosition", correlationID, recordingID)
}

func (s *fakeSession) OnGetStartPosition(correlationID, recordingID int64) {
	s.record("OnGetStartPosition", correlationID, recordingID)
}

func (s *fakeSession) OnGetStopPosition(correlationID, recordingID int64) {
	s.record("OnGetStopPosition", correlationID, recordingID)
}

func (s *fakeSession) OnFindLastMatchingRecording(correlationID, minRecordingID int64, sessionID, streamID int32, channelFragment []byte) {
	s.record("OnFindLastMatchingRecording", correlationID, minRecordingID, sessionID, streamID, channelFragment)
}

func (s *fakeSession) OnListRecordingSubscriptions(correlationID int64, pseudoIndex, subscriptionCount int32, applyStreamID bool, streamID int32, channel string) {
	s.record("OnListRecordingSubscriptions", correlationID, pseudoIndex, subscriptionCount, applyStreamID, streamID, channel)
}

func (s *fakeSession) OnTruncateRecording(correlationID, recordingID, position int64) {
	s.record("OnTruncateRecording", correlationID, recordingID, position)
}

func (s *fakeSession) OnDetachSegments(correlationID, recordingID, newStartPosition int64) {
	s.record("OnDetachSegments", correlationID, recordingID, newStartPosition)
}

func (s *fakeSession) OnDeleteDetachedSegments(correlationID, recordingID int64) {
	s.record("OnDeleteDetachedSegments", correlationID, recordingID)
}

func (s *fakeSession) OnPurgeSegments(correlationID, recordingID, newStartPosition int64) {
	s.record("OnPurgeSegments", correlationID, recordingID, newStartPosition)
}

func (s *fakeSession) OnAttachSegments(correlationID, recordingID int64) {
	s.record("OnAttachSegments", correlationID, recordingID)
}

func (s *fakeSession) OnMigrateSegments(correlationID, srcRecordingID, dstRecordingID int64) {
	s.record("OnMigrateSegments", correlationID, srcRecordingID, dstRecordingID)
}

func (s *fakeSession) OnReplicate(correlationID, srcRecordingID, dstRecordingID int64, srcControlStreamID int32, srcControlChannel, liveDestination string) {
	s.record("OnReplicate", correlationID, srcRecordingID, dstRecordingID, srcControlStreamID, srcControlChannel, liveDestination)
}

func (s *fakeSession) OnStopReplication(correlationID, replicationID int64) {
	s.record("OnStopReplication", correlationID, replicationID)
}

// fakeFactory assigns session IDs from 1001 and keeps what it was handed.
type fakeFactory struct {
	nextID   int64
	sessions []*fakeSession

	lastCorrelationID    int64
	lastResponseStreamID int32
	lastVersion          int32
	lastResponseChannel  string
	lastCredentials      []byte
	lastOwner            SessionOwner
}

func (f *fakeFactory) NewControlSession(correlationID int64, responseStreamID, version int32,
	responseChannel string, encodedCredentials []byte, owner SessionOwner) ControlSession {
	f.nextID++
	f.lastCorrelationID = correlationID
	f.lastResponseStreamID = responseStreamID
	f.lastVersion = version
	f.lastResponseChannel = responseChannel
	f.lastCredentials = encodedCredentials
	f.lastOwner = owner
	s := &fakeSession{id: f.nextID, major: codec.SemanticMajor(version)}
	f.sessions = append(f.sessions, s)
	return s
}

func newTestDemuxer(t *testing.T) (*Demuxer, *fakeFactory, *transport.ImageQueue, transport.Publication) {
	t.Helper()
	image, pub := transport.Pipe(77, "test-client:1", 64)
	factory := &fakeFactory{nextID: 1000}
	return NewDemuxer(image, factory, testLogger()), factory, image, pub
}

func offer(t *testing.T, pub transport.Publication, w *codec.Writer) {
	t.Helper()
	if err := pub.Offer(w.Bytes()); err != nil {
		t.Fatalf("Offer() error: %v", err)
	}
}

// connectSession establishes one session and drains the connect fragment.
func connectSession(t *testing.T, d *Demuxer, pub transport.Publication, f *fakeFactory, correlationID int64) *fakeSession {
	t.Helper()
	w := codec.NewWriter()
	codec.AppendConnectRequest(w, correlationID, 101, codec.ProtocolSemanticVersion, "scribe:reply?socket=a")
	offer(t, pub, w)
	n, err := d.DoWork()
	if n != 1 || err != nil {
		t.Fatalf("DoWork() = (%d, %v), want (1, nil)", n, err)
	}
	return f.sessions[len(f.sessions)-1]
}

func lastCall(t *testing.T, s *fakeSession) call {
	t.Helper()
	if len(s.calls) == 0 {
		t.Fatal("no session callbacks recorded")
	}
	return s.calls[len(s.calls)-1]
}

func TestConnectEstablishesSession(t *testing.T) {
	d, f, _, pub := newTestDemuxer(t)

	sess := connectSession(t, d, pub, f, 42)

	if f.lastCorrelationID != 42 {
		t.Errorf("correlationID = %d, want 42", f.lastCorrelationID)
	}
	if f.lastResponseStreamID != 101 {
		t.Errorf("responseStreamID = %d, want 101", f.lastResponseStreamID)
	}
	if f.lastVersion != codec.ProtocolSemanticVersion {
		t.Errorf("version = %#x, want %#x", f.lastVersion, codec.ProtocolSemanticVersion)
	}
	if f.lastResponseChannel != "scribe:reply?socket=a" {
		t.Errorf("responseChannel = %q", f.lastResponseChannel)
	}
	if f.lastCredentials == nil || len(f.lastCredentials) != 0 {
		t.Errorf("credentials = %v, want empty non-nil", f.lastCredentials)
	}
	if f.lastOwner != SessionOwner(d) {
		t.Error("owner is not the demuxer")
	}
	if sess.major != codec.ProtocolMajorVersion {
		t.Errorf("major version = %d, want %d", sess.major, codec.ProtocolMajorVersion)
	}
	if d.SessionCount() != 1 {
		t.Errorf("SessionCount() = %d, want 1", d.SessionCount())
	}

	// The registered session receives follow-up requests.
	w := codec.NewWriter()
	codec.AppendKeepAliveRequest(w, sess.id, 43)
	offer(t, pub, w)
	if n, err := d.DoWork(); n != 1 || err != nil {
		t.Fatalf("DoWork() = (%d, %v), want (1, nil)", n, err)
	}
	got := lastCall(t, sess)
	want := call{op: "OnKeepAlive", args: []any{int64(43)}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("call = %+v, want %+v", got, want)
	}
}

func TestAuthConnectPassesCredentials(t *testing.T) {
	d, f, _, pub := newTestDemuxer(t)

	w := codec.NewWriter()
	codec.AppendAuthConnectRequest(w, 7, 9, codec.ProtocolSemanticVersion,
		"scribe:reply?socket=b", []byte("secret-token"))
	offer(t, pub, w)
	if n, err := d.DoWork(); n != 1 || err != nil {
		t.Fatalf("DoWork() = (%d, %v), want (1, nil)", n, err)
	}

	if string(f.lastCredentials) != "secret-token" {
		t.Errorf("credentials = %q, want %q", f.lastCredentials, "secret-token")
	}
	if d.SessionCount() != 1 {
		t.Errorf("SessionCount() = %d, want 1", d.SessionCount())
	}
}

func TestDispatchRoutesRequests(t *testing.T) {
	const sid = int64(1001)

	cases := []struct {
		name   string
		encode func(w *codec.Writer)
		want   call
	}{
		{
			name:   "keep alive",
			encode: func(w *codec.Writer) { codec.AppendKeepAliveRequest(w, sid, 201) },
			want:   call{op: "OnKeepAlive", args: []any{int64(201)}},
		},
		{
			name: "challenge response",
			encode: func(w *codec.Writer) {
				codec.AppendChallengeResponse(w, sid, 202, []byte("answer"))
			},
			want: call{op: "OnChallengeResponse", args: []any{int64(202), []byte("answer")}},
		},
		{
			name: "start recording",
			encode: func(w *codec.Writer) {
				codec.AppendStartRecordingRequest(w, sid, 203, 6, codec.SourceLocationRemote, "scribe:stream?alias=orders")
			},
			want: call{op: "OnStartRecording", args: []any{int64(203), int32(6), codec.SourceLocationRemote, "scribe:stream?alias=orders"}},
		},
		{
			name: "stop recording",
			encode: func(w *codec.Writer) {
				codec.AppendStopRecordingRequest(w, sid, 204, 6, "scribe:stream?alias=orders")
			},
			want: call{op: "OnStopRecording", args: []any{int64(204), int32(6), "scribe:stream?alias=orders"}},
		},
		{
			name: "extend recording",
			encode: func(w *codec.Writer) {
				codec.AppendExtendRecordingRequest(w, sid, 205, 17, 6, codec.SourceLocationLocal, "scribe:stream?alias=orders")
			},
			want: call{op: "OnExtendRecording", args: []any{int64(205), int64(17), int32(6), codec.SourceLocationLocal, "scribe:stream?alias=orders"}},
		},
		{
			name:   "stop subscription",
			encode: func(w *codec.Writer) { codec.AppendStopSubscriptionRequest(w, sid, 206, 99) },
			want:   call{op: "OnStopRecordingSubscription", args: []any{int64(206), int64(99)}},
		},
		{
			name: "replay",
			encode: func(w *codec.Writer) {
				codec.AppendReplayRequest(w, sid, 207, 17, 4096, -1, 1201, "scribe:replay?socket=r")
			},
			want: call{op: "OnStartReplay", args: []any{int64(207), int64(17), int64(4096), int64(-1), int32(1201), "scribe:replay?socket=r"}},
		},
		{
			name: "bounded replay",
			encode: func(w *codec.Writer) {
				codec.AppendBoundedReplayRequest(w, sid, 208, 17, 0, 1<<20, 33, 1202, "scribe:replay?socket=r")
			},
			want: call{op: "OnStartBoundedReplay", args: []any{int64(208), int64(17), int64(0), int64(1 << 20), int32(33), int32(1202), "scribe:replay?socket=r"}},
		},
		{
			name:   "stop replay",
			encode: func(w *codec.Writer) { codec.AppendStopReplayRequest(w, sid, 209, 555) },
			want:   call{op: "OnStopReplay", args: []any{int64(209), int64(555)}},
		},
		{
			name:   "stop all replays",
			encode: func(w *codec.Writer) { codec.AppendStopAllReplaysRequest(w, sid, 210, 17) },
			want:   call{op: "OnStopAllReplays", args: []any{int64(210), int64(17)}},
		},
		{
			name:   "list recordings",
			encode: func(w *codec.Writer) { codec.AppendListRecordingsRequest(w, sid, 211, 0, 10) },
			want:   call{op: "OnListRecordings", args: []any{int64(211), int64(0), int32(10)}},
		},
		{
			name: "list recordings for uri",
			encode: func(w *codec.Writer) {
				codec.AppendListRecordingsForURIRequest(w, sid, 212, 0, 10, 6, []byte("alias=orders"))
			},
			want: call{op: "OnListRecordingsForURI", args: []any{int64(212), int64(0), int32(10), int32(6), []byte("alias=orders")}},
		},
		{
			name:   "list recording",
			encode: func(w *codec.Writer) { codec.AppendListRecordingRequest(w, sid, 213, 17) },
			want:   call{op: "OnListRecording", args: []any{int64(213), int64(17)}},
		},
		{
			name:   "recording position",
			encode: func(w *codec.Writer) { codec.AppendRecordingPositionRequest(w, sid, 214, 17) },
			want:   call{op: "OnGetRecordingPosition", args: []any{int64(214), int64(17)}},
		},
		{
			name:   "start position",
			encode: func(w *codec.Writer) { codec.AppendStartPositionRequest(w, sid, 215, 17) },
			want:   call{op: "OnGetStartPosition", args: []any{int64(215), int64(17)}},
		},
		{
			name:   "stop position",
			encode: func(w *codec.Writer) { codec.AppendStopPositionRequest(w, sid, 216, 17) },
			want:   call{op: "OnGetStopPosition", args: []any{int64(216), int64(17)}},
		},
		{
			name: "find last matching recording",
			encode: func(w *codec.Writer) {
				codec.AppendFindLastMatchingRecordingRequest(w, sid, 217, 0, 42, 6, []byte("alias=orders"))
			},
			want: call{op: "OnFindLastMatchingRecording", args: []any{int64(217), int64(0), int32(42), int32(6), []byte("alias=orders")}},
		},
		{
			name: "list subscriptions",
			encode: func(w *codec.Writer) {
				codec.AppendListSubscriptionsRequest(w, sid, 218, 0, 5, true, 6, "alias=orders")
			},
			want: call{op: "OnListRecordingSubscriptions", args: []any{int64(218), int32(0), int32(5), true, int32(6), "alias=orders"}},
		},
		{
			name:   "truncate recording",
			encode: func(w *codec.Writer) { codec.AppendTruncateRecordingRequest(w, sid, 219, 17, 8192) },
			want:   call{op: "OnTruncateRecording", args: []any{int64(219), int64(17), int64(8192)}},
		},
		{
			name:   "detach segments",
			encode: func(w *codec.Writer) { codec.AppendDetachSegmentsRequest(w, sid, 220, 17, 1<<20) },
			want:   call{op: "OnDetachSegments", args: []any{int64(220), int64(17), int64(1 << 20)}},
		},
		{
			name:   "delete detached segments",
			encode: func(w *codec.Writer) { codec.AppendDeleteDetachedSegmentsRequest(w, sid, 221, 17) },
			want:   call{op: "OnDeleteDetachedSegments", args: []any{int64(221), int64(17)}},
		},
		{
			name:   "purge segments",
			encode: func(w *codec.Writer) { codec.AppendPurgeSegmentsRequest(w, sid, 222, 17, 1<<21) },
			want:   call{op: "OnPurgeSegments", args: []any{int64(222), int64(17), int64(1 << 21)}},
		},
		{
			name:   "attach segments",
			encode: func(w *codec.Writer) { codec.AppendAttachSegmentsRequest(w, sid, 223, 17) },
			want:   call{op: "OnAttachSegments", args: []any{int64(223), int64(17)}},
		},
		{
			name:   "migrate segments",
			encode: func(w *codec.Writer) { codec.AppendMigrateSegmentsRequest(w, sid, 224, 17, 18) },
			want:   call{op: "OnMigrateSegments", args: []any{int64(224), int64(17), int64(18)}},
		},
		{
			name: "replicate",
			encode: func(w *codec.Writer) {
				codec.AppendReplicateRequest(w, sid, 225, 17, 18, 1301, "scribe:control?host=src", "scribe:live?socket=l")
			},
			want: call{op: "OnReplicate", args: []any{int64(225), int64(17), int64(18), int32(1301), "scribe:control?host=src", "scribe:live?socket=l"}},
		},
		{
			name:   "stop replication",
			encode: func(w *codec.Writer) { codec.AppendStopReplicationRequest(w, sid, 226, 777) },
			want:   call{op: "OnStopReplication", args: []any{int64(226), int64(777)}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d, f, _, pub := newTestDemuxer(t)
			sess := connectSession(t, d, pub, f, 42)
			if sess.id != sid {
				t.Fatalf("session id = %d, want %d", sess.id, sid)
			}

			w := codec.NewWriter()
			tc.encode(w)
			offer(t, pub, w)
			if n, err := d.DoWork(); n != 1 || err != nil {
				t.Fatalf("DoWork() = (%d, %v), want (1, nil)", n, err)
			}

			got := lastCall(t, sess)
			if got.op != tc.want.op {
				t.Fatalf("op = %s, want %s", got.op, tc.want.op)
			}
			if !reflect.DeepEqual(got.args, tc.want.args) {
				t.Errorf("args = %v, want %v", got.args, tc.want.args)
			}
		})
	}
}

func TestUnknownTemplateIgnored(t *testing.T) {
	d, f, _, pub := newTestDemuxer(t)
	sess := connectSession(t, d, pub, f, 42)

	// A template from some future schema revision.
	w := codec.NewWriter()
	w.WriteHeader(8, codec.TemplateID(999))
	w.WriteInt64(123)
	offer(t, pub, w)

	// A response template the archive itself would emit.
	w2 := codec.NewWriter()
	codec.AppendControlResponse(w2, sess.id, 43, 0, codec.ResponseCodeOK, codec.ProtocolSemanticVersion, "")
	offer(t, pub, w2)

	n, err := d.DoWork()
	if n != 2 || err != nil {
		t.Fatalf("DoWork() = (%d, %v), want (2, nil)", n, err)
	}
	if len(sess.calls) != 0 {
		t.Errorf("callbacks = %+v, want none", sess.calls)
	}
}

func TestSchemaMismatchIsFatal(t *testing.T) {
	d, f, _, pub := newTestDemuxer(t)

	w := codec.NewWriter()
	w.WriteUint16(codec.ConnectRequestBlockLength)
	w.WriteUint16(uint16(codec.TemplateConnectRequest))
	w.WriteUint16(9) // not the control schema
	w.WriteUint16(codec.ControlSchemaVersion)
	w.WriteInt64(42)
	w.WriteInt32(101)
	w.WriteInt32(codec.ProtocolSemanticVersion)
	w.WriteASCII("scribe:reply?socket=a")
	offer(t, pub, w)

	n, err := d.DoWork()
	if n != 1 {
		t.Errorf("DoWork() n = %d, want 1", n)
	}
	if !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("DoWork() error = %v, want ErrSchemaMismatch", err)
	}
	var mismatch *SchemaMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("error %T is not *SchemaMismatchError", err)
	}
	if mismatch.Expected != codec.ControlSchemaID || mismatch.Actual != 9 {
		t.Errorf("schema ids = (%d, %d), want (%d, 9)", mismatch.Expected, mismatch.Actual, codec.ControlSchemaID)
	}
	if mismatch.Source != "test-client:1" {
		t.Errorf("source = %q, want %q", mismatch.Source, "test-client:1")
	}
	if len(f.sessions) != 0 {
		t.Errorf("sessions created = %d, want 0", len(f.sessions))
	}

	// The demuxer itself stays active; its scheduler decides the policy.
	connectSession(t, d, pub, f, 44)
}

func TestUnknownSessionIsFatal(t *testing.T) {
	cases := []struct {
		name   string
		encode func(w *codec.Writer)
	}{
		{
			name: "start recording",
			encode: func(w *codec.Writer) {
				codec.AppendStartRecordingRequest(w, 9999, 7, 6, codec.SourceLocationLocal, "ch")
			},
		},
		{
			name:   "keep alive",
			encode: func(w *codec.Writer) { codec.AppendKeepAliveRequest(w, 9999, 7) },
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d, f, _, pub := newTestDemuxer(t)
			sess := connectSession(t, d, pub, f, 42)

			w := codec.NewWriter()
			tc.encode(w)
			offer(t, pub, w)

			_, err := d.DoWork()
			if !errors.Is(err, ErrUnknownSession) {
				t.Fatalf("DoWork() error = %v, want ErrUnknownSession", err)
			}
			var unknown *UnknownSessionError
			if !errors.As(err, &unknown) {
				t.Fatalf("error %T is not *UnknownSessionError", err)
			}
			if unknown.SessionID != 9999 || unknown.CorrelationID != 7 {
				t.Errorf("ids = (%d, %d), want (9999, 7)", unknown.SessionID, unknown.CorrelationID)
			}
			wantMsg := "control: unknown controlSessionId=9999 for correlationId=7 from source=test-client:1"
			if err.Error() != wantMsg {
				t.Errorf("message = %q, want %q", err, wantMsg)
			}
			if len(sess.calls) != 0 {
				t.Errorf("callbacks on live session = %+v, want none", sess.calls)
			}
		})
	}
}

func TestCloseSessionAbortsAndToleratesUnknown(t *testing.T) {
	d, f, _, pub := newTestDemuxer(t)
	sess := connectSession(t, d, pub, f, 42)

	w := codec.NewWriter()
	codec.AppendCloseSessionRequest(w, sess.id)
	offer(t, pub, w)
	if n, err := d.DoWork(); n != 1 || err != nil {
		t.Fatalf("DoWork() = (%d, %v), want (1, nil)", n, err)
	}
	if !sess.aborted {
		t.Error("session not aborted by close request")
	}
	// Reaping is the conductor's job; the registry entry stays.
	if d.SessionCount() != 1 {
		t.Errorf("SessionCount() = %d, want 1", d.SessionCount())
	}

	w2 := codec.NewWriter()
	codec.AppendCloseSessionRequest(w2, 5555)
	offer(t, pub, w2)
	if n, err := d.DoWork(); n != 1 || err != nil {
		t.Errorf("DoWork() = (%d, %v), want (1, nil) for unknown close", n, err)
	}
}

func TestChallengeResponseToleratesUnknownSession(t *testing.T) {
	d, f, _, pub := newTestDemuxer(t)
	sess := connectSession(t, d, pub, f, 42)

	w := codec.NewWriter()
	codec.AppendChallengeResponse(w, 8888, 9, []byte("answer"))
	offer(t, pub, w)
	if n, err := d.DoWork(); n != 1 || err != nil {
		t.Fatalf("DoWork() = (%d, %v), want (1, nil)", n, err)
	}
	if len(sess.calls) != 0 {
		t.Errorf("callbacks = %+v, want none", sess.calls)
	}
}

func TestRemoveSession(t *testing.T) {
	d, f, _, pub := newTestDemuxer(t)
	first := connectSession(t, d, pub, f, 42)
	second := connectSession(t, d, pub, f, 43)

	if d.SessionCount() != 2 {
		t.Fatalf("SessionCount() = %d, want 2", d.SessionCount())
	}

	d.RemoveSession(first)
	if d.SessionCount() != 1 {
		t.Errorf("SessionCount() = %d, want 1", d.SessionCount())
	}

	// Removal is idempotent.
	d.RemoveSession(first)
	if d.SessionCount() != 1 {
		t.Errorf("SessionCount() after repeat = %d, want 1", d.SessionCount())
	}

	// Requests for the removed session are now unknown.
	w := codec.NewWriter()
	codec.AppendKeepAliveRequest(w, first.id, 50)
	offer(t, pub, w)
	if _, err := d.DoWork(); !errors.Is(err, ErrUnknownSession) {
		t.Errorf("DoWork() error = %v, want ErrUnknownSession", err)
	}

	// The surviving session is untouched.
	w2 := codec.NewWriter()
	codec.AppendKeepAliveRequest(w2, second.id, 51)
	offer(t, pub, w2)
	if n, err := d.DoWork(); n != 1 || err != nil {
		t.Fatalf("DoWork() = (%d, %v), want (1, nil)", n, err)
	}
	if got := lastCall(t, second); got.op != "OnKeepAlive" {
		t.Errorf("op = %s, want OnKeepAlive", got.op)
	}
}

func TestClosedImageTurnsInactive(t *testing.T) {
	d, f, image, pub := newTestDemuxer(t)
	sess := connectSession(t, d, pub, f, 42)

	image.Close()

	n, err := d.DoWork()
	if n != 0 || err != nil {
		t.Fatalf("DoWork() = (%d, %v), want (0, nil)", n, err)
	}
	if !d.IsDone() {
		t.Error("IsDone() = false after image closed and drained")
	}
	if !sess.aborted {
		t.Error("session not aborted on inactive transition")
	}
	if d.SessionCount() != 1 {
		t.Errorf("SessionCount() = %d, want 1 (reaping is external)", d.SessionCount())
	}

	// Inactive duty cycles are no-ops.
	if n, err := d.DoWork(); n != 0 || err != nil {
		t.Errorf("DoWork() = (%d, %v) while inactive, want (0, nil)", n, err)
	}
}

func TestPendingFragmentsDrainBeforeInactive(t *testing.T) {
	d, f, image, pub := newTestDemuxer(t)
	sess := connectSession(t, d, pub, f, 42)

	for i := 0; i < 2; i++ {
		w := codec.NewWriter()
		codec.AppendKeepAliveRequest(w, sess.id, int64(60+i))
		offer(t, pub, w)
	}
	image.Close()

	n, err := d.DoWork()
	if n != 2 || err != nil {
		t.Fatalf("DoWork() = (%d, %v), want (2, nil)", n, err)
	}
	if d.IsDone() {
		t.Error("IsDone() = true while the cycle still delivered fragments")
	}
	if len(sess.calls) != 2 {
		t.Errorf("callbacks = %d, want 2", len(sess.calls))
	}

	if n, err := d.DoWork(); n != 0 || err != nil {
		t.Fatalf("DoWork() = (%d, %v), want (0, nil)", n, err)
	}
	if !d.IsDone() {
		t.Error("IsDone() = false after drain")
	}
}

func TestCloseIsTerminal(t *testing.T) {
	d, f, _, pub := newTestDemuxer(t)
	sess := connectSession(t, d, pub, f, 42)

	w := codec.NewWriter()
	codec.AppendKeepAliveRequest(w, sess.id, 70)
	offer(t, pub, w)

	d.Close()
	d.Close() // idempotent

	if n, err := d.DoWork(); n != 0 || err != nil {
		t.Errorf("DoWork() = (%d, %v) after Close, want (0, nil)", n, err)
	}
	if len(sess.calls) != 0 {
		t.Errorf("callbacks after Close = %+v, want none", sess.calls)
	}
	// Closed is not the reapable state.
	if d.IsDone() {
		t.Error("IsDone() = true after Close")
	}
	// Abort cannot resurrect or demote a closed demuxer.
	d.Abort()
	if d.IsDone() {
		t.Error("IsDone() = true after Abort on closed demuxer")
	}
}

func TestAbortTurnsInactive(t *testing.T) {
	d, _, _, _ := newTestDemuxer(t)

	d.Abort()
	if !d.IsDone() {
		t.Fatal("IsDone() = false after Abort")
	}
	if n, err := d.DoWork(); n != 0 || err != nil {
		t.Errorf("DoWork() = (%d, %v), want (0, nil)", n, err)
	}
}

func TestFragmentLimitBoundsDutyCycle(t *testing.T) {
	d, f, _, pub := newTestDemuxer(t)
	sess := connectSession(t, d, pub, f, 42)

	for i := 0; i < 15; i++ {
		w := codec.NewWriter()
		codec.AppendKeepAliveRequest(w, sess.id, int64(100+i))
		offer(t, pub, w)
	}

	n, err := d.DoWork()
	if n != FragmentLimit || err != nil {
		t.Fatalf("DoWork() = (%d, %v), want (%d, nil)", n, err, FragmentLimit)
	}
	n, err = d.DoWork()
	if n != 5 || err != nil {
		t.Fatalf("DoWork() = (%d, %v), want (5, nil)", n, err)
	}
	if len(sess.calls) != 15 {
		t.Errorf("callbacks = %d, want 15", len(sess.calls))
	}
}

func TestShortFragmentIsFatal(t *testing.T) {
	d, _, _, pub := newTestDemuxer(t)

	if err := pub.Offer([]byte{1, 2, 3, 4}); err != nil {
		t.Fatalf("Offer() error: %v", err)
	}
	_, err := d.DoWork()
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("DoWork() error = %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestMetricsCountFragmentsAndErrors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(metrics.WithRegistry(reg))

	image, pub := transport.Pipe(77, "test-client:1", 64)
	factory := &fakeFactory{nextID: 1000}
	d := NewDemuxer(image, factory, testLogger(), WithMetrics(m))

	w := codec.NewWriter()
	codec.AppendConnectRequest(w, 42, 101, codec.ProtocolSemanticVersion, "ch")
	offer(t, pub, w)
	if _, err := d.DoWork(); err != nil {
		t.Fatalf("DoWork() error: %v", err)
	}

	bad := codec.NewWriter()
	bad.WriteUint16(codec.KeepAliveRequestBlockLength)
	bad.WriteUint16(uint16(codec.TemplateKeepAliveRequest))
	bad.WriteUint16(3) // wrong schema
	bad.WriteUint16(codec.ControlSchemaVersion)
	bad.WriteInt64(1001)
	bad.WriteInt64(43)
	offer(t, pub, bad)
	if _, err := d.DoWork(); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("DoWork() error = %v, want ErrSchemaMismatch", err)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	got := map[string]float64{}
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			key := mf.GetName()
			for _, label := range metric.GetLabel() {
				key += "/" + label.GetValue()
			}
			got[key] = metric.GetCounter().GetValue()
		}
	}
	if got["scribe_control_fragments_total/ConnectRequest"] != 1 {
		t.Errorf("fragments_total(ConnectRequest) = %v, want 1", got["scribe_control_fragments_total/ConnectRequest"])
	}
	if got["scribe_control_dispatch_errors_total/schema_mismatch"] != 1 {
		t.Errorf("dispatch_errors_total(schema_mismatch) = %v, want 1", got["scribe_control_dispatch_errors_total/schema_mismatch"])
	}
}

func FuzzOnFragment(f *testing.F) {
	seed := func(fn func(w *codec.Writer)) []byte {
		w := codec.NewWriter()
		fn(w)
		return append([]byte(nil), w.Bytes()...)
	}
	f.Add(seed(func(w *codec.Writer) {
		codec.AppendConnectRequest(w, 1, 2, codec.ProtocolSemanticVersion, "ch")
	}))
	f.Add(seed(func(w *codec.Writer) {
		codec.AppendStartRecordingRequest(w, 1001, 3, 4, codec.SourceLocationRemote, "ch")
	}))
	f.Add(seed(func(w *codec.Writer) {
		codec.AppendReplicateRequest(w, 1001, 5, 6, 7, 8, "src", "live")
	}))
	f.Add([]byte{})
	f.Add([]byte{0x15, 0x00, 0x04, 0x00, 0x07, 0x00, 0x01, 0x00})

	f.Fuzz(func(t *testing.T, data []byte) {
		image, _ := transport.Pipe(1, "fuzz", 1)
		d := NewDemuxer(image, &fakeFactory{nextID: 1000}, testLogger())
		// Every input must decode or fail cleanly, never panic.
		_ = d.onFragment(data)
	})
}

func BenchmarkDemuxerKeepAlive(b *testing.B) {
	image, pub := transport.Pipe(77, "bench", 4)
	factory := &fakeFactory{nextID: 1000}
	d := NewDemuxer(image, factory, testLogger())

	w := codec.NewWriter()
	codec.AppendConnectRequest(w, 1, 2, codec.ProtocolSemanticVersion, "ch")
	if err := pub.Offer(w.Bytes()); err != nil {
		b.Fatal(err)
	}
	if _, err := d.DoWork(); err != nil {
		b.Fatal(err)
	}

	w.Reset()
	codec.AppendKeepAliveRequest(w, 1001, 2)
	frame := w.Bytes()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := pub.Offer(frame); err != nil {
			b.Fatal(err)
		}
		if _, err := d.DoWork(); err != nil {
			b.Fatal(err)
		}
	}
}
