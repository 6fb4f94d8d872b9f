package control

import "github.com/scribe-dev/scribe/pkg/codec"

// dispatchFunc routes one fragment body to a session callback. body holds
// the bytes after the message header; hdr carries the acting block length
// and schema version the decoder wraps with.
type dispatchFunc func(d *Demuxer, hdr codec.Header, body []byte) error

// dispatchTable maps each request template to its route. Response
// templates the archive itself emits are absent, so an inbound copy is
// skipped like any template from a newer protocol.
var dispatchTable = map[codec.TemplateID]dispatchFunc{
	codec.TemplateConnectRequest:                   dispatchConnect,
	codec.TemplateAuthConnectRequest:               dispatchAuthConnect,
	codec.TemplateCloseSessionRequest:              dispatchCloseSession,
	codec.TemplateChallengeResponse:                dispatchChallengeResponse,
	codec.TemplateKeepAliveRequest:                 dispatchKeepAlive,
	codec.TemplateStartRecordingRequest:            dispatchStartRecording,
	codec.TemplateStopRecordingRequest:             dispatchStopRecording,
	codec.TemplateExtendRecordingRequest:           dispatchExtendRecording,
	codec.TemplateStopSubscriptionRequest:          dispatchStopSubscription,
	codec.TemplateReplayRequest:                    dispatchReplay,
	codec.TemplateBoundedReplayRequest:             dispatchBoundedReplay,
	codec.TemplateStopReplayRequest:                dispatchStopReplay,
	codec.TemplateStopAllReplaysRequest:            dispatchStopAllReplays,
	codec.TemplateListRecordingsRequest:            dispatchListRecordings,
	codec.TemplateListRecordingsForURIRequest:      dispatchListRecordingsForURI,
	codec.TemplateListRecordingRequest:             dispatchListRecording,
	codec.TemplateRecordingPositionRequest:         dispatchRecordingPosition,
	codec.TemplateStartPositionRequest:             dispatchStartPosition,
	codec.TemplateStopPositionRequest:              dispatchStopPosition,
	codec.TemplateFindLastMatchingRecordingRequest: dispatchFindLastMatchingRecording,
	codec.TemplateListSubscriptionsRequest:         dispatchListSubscriptions,
	codec.TemplateTruncateRecordingRequest:         dispatchTruncateRecording,
	codec.TemplateDetachSegmentsRequest:            dispatchDetachSegments,
	codec.TemplateDeleteDetachedSegmentsRequest:    dispatchDeleteDetachedSegments,
	codec.TemplatePurgeSegmentsRequest:             dispatchPurgeSegments,
	codec.TemplateAttachSegmentsRequest:            dispatchAttachSegments,
	codec.TemplateMigrateSegmentsRequest:           dispatchMigrateSegments,
	codec.TemplateReplicateRequest:                 dispatchReplicate,
	codec.TemplateStopReplicationRequest:           dispatchStopReplication,
}

// emptyCredentials is what a plain connect hands the factory. Empty rather
// than nil so session code can treat credentials as always present.
var emptyCredentials = []byte{}

func dispatchConnect(d *Demuxer, hdr codec.Header, body []byte) error {
	m := &d.decoders.ConnectRequest
	m.Wrap(body, hdr.BlockLength, hdr.Version)
	session := d.factory.NewControlSession(
		m.CorrelationID(), m.ResponseStreamID(), m.Version(),
		m.ResponseChannel(), emptyCredentials, d)
	d.sessions[session.SessionID()] = session
	return nil
}

func dispatchAuthConnect(d *Demuxer, hdr codec.Header, body []byte) error {
	m := &d.decoders.AuthConnectRequest
	m.Wrap(body, hdr.BlockLength, hdr.Version)
	session := d.factory.NewControlSession(
		m.CorrelationID(), m.ResponseStreamID(), m.Version(),
		m.ResponseChannel(), m.EncodedCredentials(), d)
	d.sessions[session.SessionID()] = session
	return nil
}

// dispatchCloseSession aborts the named session. A close for a session
// already gone is the normal shutdown race and draws no complaint.
func dispatchCloseSession(d *Demuxer, hdr codec.Header, body []byte) error {
	m := &d.decoders.CloseSessionRequest
	m.Wrap(body, hdr.BlockLength, hdr.Version)
	if session, ok := d.sessions[m.ControlSessionID()]; ok {
		session.Abort()
	}
	return nil
}

// dispatchChallengeResponse is tolerant like close: the conductor may have
// reaped a timed-out session before the client answered its challenge.
func dispatchChallengeResponse(d *Demuxer, hdr codec.Header, body []byte) error {
	m := &d.decoders.ChallengeResponse
	m.Wrap(body, hdr.BlockLength, hdr.Version)
	if session, ok := d.sessions[m.ControlSessionID()]; ok {
		session.OnChallengeResponse(m.CorrelationID(), m.EncodedCredentials())
	}
	return nil
}

func dispatchKeepAlive(d *Demuxer, hdr codec.Header, body []byte) error {
	m := &d.decoders.KeepAliveRequest
	m.Wrap(body, hdr.BlockLength, hdr.Version)
	session, err := d.getSession(m.ControlSessionID(), m.CorrelationID())
	if err != nil {
		return err
	}
	session.OnKeepAlive(m.CorrelationID())
	return nil
}

func dispatchStartRecording(d *Demuxer, hdr codec.Header, body []byte) error {
	m := &d.decoders.StartRecordingRequest
	m.Wrap(body, hdr.BlockLength, hdr.Version)
	session, err := d.getSession(m.ControlSessionID(), m.CorrelationID())
	if err != nil {
		return err
	}
	// Session and correlation IDs sit before the widened field, so the
	// lookup above reads the same bytes either way.
	if hdr.BlockLength == codec.StartRecordingRequestLegacyBlockLength &&
		len(body) >= codec.StartRecordingRequestLegacyBlockLength {
		body = reshapeLegacyBody(d.decoders.Scratch(len(body)+legacyPadLength),
			body, codec.StartRecordingRequestLegacyBlockLength)
		m.Wrap(body, codec.StartRecordingRequestBlockLength, codec.ControlSchemaVersion)
	}
	session.OnStartRecording(m.CorrelationID(), m.StreamID(), m.SourceLocation(), m.Channel())
	return nil
}

func dispatchStopRecording(d *Demuxer, hdr codec.Header, body []byte) error {
	m := &d.decoders.StopRecordingRequest
	m.Wrap(body, hdr.BlockLength, hdr.Version)
	session, err := d.getSession(m.ControlSessionID(), m.CorrelationID())
	if err != nil {
		return err
	}
	session.OnStopRecording(m.CorrelationID(), m.StreamID(), m.Channel())
	return nil
}

func dispatchExtendRecording(d *Demuxer, hdr codec.Header, body []byte) error {
	m := &d.decoders.ExtendRecordingRequest
	m.Wrap(body, hdr.BlockLength, hdr.Version)
	session, err := d.getSession(m.ControlSessionID(), m.CorrelationID())
	if err != nil {
		return err
	}
	if hdr.BlockLength == codec.ExtendRecordingRequestLegacyBlockLength &&
		len(body) >= codec.ExtendRecordingRequestLegacyBlockLength {
		body = reshapeLegacyBody(d.decoders.Scratch(len(body)+legacyPadLength),
			body, codec.ExtendRecordingRequestLegacyBlockLength)
		m.Wrap(body, codec.ExtendRecordingRequestBlockLength, codec.ControlSchemaVersion)
	}
	session.OnExtendRecording(m.CorrelationID(), m.RecordingID(), m.StreamID(),
		m.SourceLocation(), m.Channel())
	return nil
}

func dispatchStopSubscription(d *Demuxer, hdr codec.Header, body []byte) error {
	m := &d.decoders.StopSubscriptionRequest
	m.Wrap(body, hdr.BlockLength, hdr.Version)
	session, err := d.getSession(m.ControlSessionID(), m.CorrelationID())
	if err != nil {
		return err
	}
	session.OnStopRecordingSubscription(m.CorrelationID(), m.SubscriptionID())
	return nil
}

func dispatchReplay(d *Demuxer, hdr codec.Header, body []byte) error {
	m := &d.decoders.ReplayRequest
	m.Wrap(body, hdr.BlockLength, hdr.Version)
	session, err := d.getSession(m.ControlSessionID(), m.CorrelationID())
	if err != nil {
		return err
	}
	session.OnStartReplay(m.CorrelationID(), m.RecordingID(), m.Position(),
		m.Length(), m.ReplayStreamID(), m.ReplayChannel())
	return nil
}

func dispatchBoundedReplay(d *Demuxer, hdr codec.Header, body []byte) error {
	m := &d.decoders.BoundedReplayRequest
	m.Wrap(body, hdr.BlockLength, hdr.Version)
	session, err := d.getSession(m.ControlSessionID(), m.CorrelationID())
	if err != nil {
		return err
	}
	session.OnStartBoundedReplay(m.CorrelationID(), m.RecordingID(), m.Position(),
		m.Length(), m.LimitCounterID(), m.ReplayStreamID(), m.ReplayChannel())
	return nil
}

func dispatchStopReplay(d *Demuxer, hdr codec.Header, body []byte) error {
	m := &d.decoders.StopReplayRequest
	m.Wrap(body, hdr.BlockLength, hdr.Version)
	session, err := d.getSession(m.ControlSessionID(), m.CorrelationID())
	if err != nil {
		return err
	}
	session.OnStopReplay(m.CorrelationID(), m.ReplaySessionID())
	return nil
}

func dispatchStopAllReplays(d *Demuxer, hdr codec.Header, body []byte) error {
	m := &d.decoders.StopAllReplaysRequest
	m.Wrap(body, hdr.BlockLength, hdr.Version)
	session, err := d.getSession(m.ControlSessionID(), m.CorrelationID())
	if err != nil {
		return err
	}
	session.OnStopAllReplays(m.CorrelationID(), m.RecordingID())
	return nil
}

func dispatchListRecordings(d *Demuxer, hdr codec.Header, body []byte) error {
	m := &d.decoders.ListRecordingsRequest
	m.Wrap(body, hdr.BlockLength, hdr.Version)
	session, err := d.getSession(m.ControlSessionID(), m.CorrelationID())
	if err != nil {
		return err
	}
	session.OnListRecordings(m.CorrelationID(), m.FromRecordingID(), m.RecordCount())
	return nil
}

func dispatchListRecordingsForURI(d *Demuxer, hdr codec.Header, body []byte) error {
	m := &d.decoders.ListRecordingsForURIRequest
	m.Wrap(body, hdr.BlockLength, hdr.Version)
	session, err := d.getSession(m.ControlSessionID(), m.CorrelationID())
	if err != nil {
		return err
	}
	session.OnListRecordingsForURI(m.CorrelationID(), m.FromRecordingID(),
		m.RecordCount(), m.StreamID(), m.ChannelFragment())
	return nil
}

func dispatchListRecording(d *Demuxer, hdr codec.Header, body []byte) error {
	m := &d.decoders.ListRecordingRequest
	m.Wrap(body, hdr.BlockLength, hdr.Version)
	session, err := d.getSession(m.ControlSessionID(), m.CorrelationID())
	if err != nil {
		return err
	}
	session.OnListRecording(m.CorrelationID(), m.RecordingID())
	return nil
}

func dispatchRecordingPosition(d *Demuxer, hdr codec.Header, body []byte) error {
	m := &d.decoders.RecordingPositionRequest
	m.Wrap(body, hdr.BlockLength, hdr.Version)
	session, err := d.getSession(m.ControlSessionID(), m.CorrelationID())
	if err != nil {
		return err
	}
	session.OnGetRecordingPosition(m.CorrelationID(), m.RecordingID())
	return nil
}

func dispatchStartPosition(d *Demuxer, hdr codec.Header, body []byte) error {
	m := &d.decoders.StartPositionRequest
	m.Wrap(body, hdr.BlockLength, hdr.Version)
	session, err := d.getSession(m.ControlSessionID(), m.CorrelationID())
	if err != nil {
		return err
	}
	session.OnGetStartPosition(m.CorrelationID(), m.RecordingID())
	return nil
}

func dispatchStopPosition(d *Demuxer, hdr codec.Header, body []byte) error {
	m := &d.decoders.StopPositionRequest
	m.Wrap(body, hdr.BlockLength, hdr.Version)
	session, err := d.getSession(m.ControlSessionID(), m.CorrelationID())
	if err != nil {
		return err
	}
	session.OnGetStopPosition(m.CorrelationID(), m.RecordingID())
	return nil
}

func dispatchFindLastMatchingRecording(d *Demuxer, hdr codec.Header, body []byte) error {
	m := &d.decoders.FindLastMatchingRecordingRequest
	m.Wrap(body, hdr.BlockLength, hdr.Version)
	session, err := d.getSession(m.ControlSessionID(), m.CorrelationID())
	if err != nil {
		return err
	}
	session.OnFindLastMatchingRecording(m.CorrelationID(), m.MinRecordingID(),
		m.SessionID(), m.StreamID(), m.ChannelFragment())
	return nil
}

func dispatchListSubscriptions(d *Demuxer, hdr codec.Header, body []byte) error {
	m := &d.decoders.ListSubscriptionsRequest
	m.Wrap(body, hdr.BlockLength, hdr.Version)
	session, err := d.getSession(m.ControlSessionID(), m.CorrelationID())
	if err != nil {
		return err
	}
	session.OnListRecordingSubscriptions(m.CorrelationID(), m.PseudoIndex(),
		m.SubscriptionCount(), m.ApplyStreamID(), m.StreamID(), m.Channel())
	return nil
}

func dispatchTruncateRecording(d *Demuxer, hdr codec.Header, body []byte) error {
	m := &d.decoders.TruncateRecordingRequest
	m.Wrap(body, hdr.BlockLength, hdr.Version)
	session, err := d.getSession(m.ControlSessionID(), m.CorrelationID())
	if err != nil {
		return err
	}
	session.OnTruncateRecording(m.CorrelationID(), m.RecordingID(), m.Position())
	return nil
}

func dispatchDetachSegments(d *Demuxer, hdr codec.Header, body []byte) error {
	m := &d.decoders.DetachSegmentsRequest
	m.Wrap(body, hdr.BlockLength, hdr.Version)
	session, err := d.getSession(m.ControlSessionID(), m.CorrelationID())
	if err != nil {
		return err
	}
	session.OnDetachSegments(m.CorrelationID(), m.RecordingID(), m.NewStartPosition())
	return nil
}

func dispatchDeleteDetachedSegments(d *Demuxer, hdr codec.Header, body []byte) error {
	m := &d.decoders.DeleteDetachedSegmentsRequest
	m.Wrap(body, hdr.BlockLength, hdr.Version)
	session, err := d.getSession(m.ControlSessionID(), m.CorrelationID())
	if err != nil {
		return err
	}
	session.OnDeleteDetachedSegments(m.CorrelationID(), m.RecordingID())
	return nil
}

func dispatchPurgeSegments(d *Demuxer, hdr codec.Header, body []byte) error {
	m := &d.decoders.PurgeSegmentsRequest
	m.Wrap(body, hdr.BlockLength, hdr.Version)
	session, err := d.getSession(m.ControlSessionID(), m.CorrelationID())
	if err != nil {
		return err
	}
	session.OnPurgeSegments(m.CorrelationID(), m.RecordingID(), m.NewStartPosition())
	return nil
}

func dispatchAttachSegments(d *Demuxer, hdr codec.Header, body []byte) error {
	m := &d.decoders.AttachSegmentsRequest
	m.Wrap(body, hdr.BlockLength, hdr.Version)
	session, err := d.getSession(m.ControlSessionID(), m.CorrelationID())
	if err != nil {
		return err
	}
	session.OnAttachSegments(m.CorrelationID(), m.RecordingID())
	return nil
}

func dispatchMigrateSegments(d *Demuxer, hdr codec.Header, body []byte) error {
	m := &d.decoders.MigrateSegmentsRequest
	m.Wrap(body, hdr.BlockLength, hdr.Version)
	session, err := d.getSession(m.ControlSessionID(), m.CorrelationID())
	if err != nil {
		return err
	}
	session.OnMigrateSegments(m.CorrelationID(), m.SrcRecordingID(), m.DstRecordingID())
	return nil
}

func dispatchReplicate(d *Demuxer, hdr codec.Header, body []byte) error {
	m := &d.decoders.ReplicateRequest
	m.Wrap(body, hdr.BlockLength, hdr.Version)
	session, err := d.getSession(m.ControlSessionID(), m.CorrelationID())
	if err != nil {
		return err
	}
	session.OnReplicate(m.CorrelationID(), m.SrcRecordingID(), m.DstRecordingID(),
		m.SrcControlStreamID(), m.SrcControlChannel(), m.LiveDestination())
	return nil
}

func dispatchStopReplication(d *Demuxer, hdr codec.Header, body []byte) error {
	m := &d.decoders.StopReplicationRequest
	m.Wrap(body, hdr.BlockLength, hdr.Version)
	session, err := d.getSession(m.ControlSessionID(), m.CorrelationID())
	if err != nil {
		return err
	}
	session.OnStopReplication(m.CorrelationID(), m.ReplicationID())
	return nil
}
