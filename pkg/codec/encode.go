package codec

// Append functions encode complete messages, header included, in schema
// field order. They are the write-side counterpart of the flyweight
// decoders and are used by the archive's response proxy, by clients, and
// by tests.

// AppendControlResponse appends a ControlResponse message.
func AppendControlResponse(w *Writer, controlSessionID, correlationID, relevantID int64, code ResponseCode, version int32, errorMessage string) {
	w.WriteHeader(ControlResponseBlockLength, TemplateControlResponse)
	w.WriteInt64(controlSessionID)
	w.WriteInt64(correlationID)
	w.WriteInt64(relevantID)
	w.WriteInt32(int32(code))
	w.WriteInt32(version)
	w.WriteASCII(errorMessage)
}

// AppendChallenge appends a Challenge message.
func AppendChallenge(w *Writer, controlSessionID, correlationID int64, encodedChallenge []byte) {
	w.WriteHeader(ChallengeBlockLength, TemplateChallenge)
	w.WriteInt64(controlSessionID)
	w.WriteInt64(correlationID)
	w.WriteVarData(encodedChallenge)
}

// AppendConnectRequest appends a ConnectRequest message.
func AppendConnectRequest(w *Writer, correlationID int64, responseStreamID, version int32, responseChannel string) {
	w.WriteHeader(ConnectRequestBlockLength, TemplateConnectRequest)
	w.WriteInt64(correlationID)
	w.WriteInt32(responseStreamID)
	w.WriteInt32(version)
	w.WriteASCII(responseChannel)
}

// AppendAuthConnectRequest appends an AuthConnectRequest message.
func AppendAuthConnectRequest(w *Writer, correlationID int64, responseStreamID, version int32, responseChannel string, encodedCredentials []byte) {
	w.WriteHeader(AuthConnectRequestBlockLength, TemplateAuthConnectRequest)
	w.WriteInt64(correlationID)
	w.WriteInt32(responseStreamID)
	w.WriteInt32(version)
	w.WriteASCII(responseChannel)
	w.WriteVarData(encodedCredentials)
}

// AppendCloseSessionRequest appends a CloseSessionRequest message.
func AppendCloseSessionRequest(w *Writer, controlSessionID int64) {
	w.WriteHeader(CloseSessionRequestBlockLength, TemplateCloseSessionRequest)
	w.WriteInt64(controlSessionID)
}

// AppendKeepAliveRequest appends a KeepAliveRequest message.
func AppendKeepAliveRequest(w *Writer, controlSessionID, correlationID int64) {
	w.WriteHeader(KeepAliveRequestBlockLength, TemplateKeepAliveRequest)
	w.WriteInt64(controlSessionID)
	w.WriteInt64(correlationID)
}

// AppendChallengeResponse appends a ChallengeResponse message.
func AppendChallengeResponse(w *Writer, controlSessionID, correlationID int64, encodedCredentials []byte) {
	w.WriteHeader(ChallengeResponseBlockLength, TemplateChallengeResponse)
	w.WriteInt64(controlSessionID)
	w.WriteInt64(correlationID)
	w.WriteVarData(encodedCredentials)
}

// AppendStartRecordingRequest appends a StartRecordingRequest message.
func AppendStartRecordingRequest(w *Writer, controlSessionID, correlationID int64, streamID int32, sourceLocation SourceLocation, channel string) {
	w.WriteHeader(StartRecordingRequestBlockLength, TemplateStartRecordingRequest)
	w.WriteInt64(controlSessionID)
	w.WriteInt64(correlationID)
	w.WriteInt32(streamID)
	w.WriteInt32(int32(sourceLocation))
	w.WriteASCII(channel)
}

// AppendStopRecordingRequest appends a StopRecordingRequest message.
func AppendStopRecordingRequest(w *Writer, controlSessionID, correlationID int64, streamID int32, channel string) {
	w.WriteHeader(StopRecordingRequestBlockLength, TemplateStopRecordingRequest)
	w.WriteInt64(controlSessionID)
	w.WriteInt64(correlationID)
	w.WriteInt32(streamID)
	w.WriteASCII(channel)
}

// AppendExtendRecordingRequest appends an ExtendRecordingRequest message.
func AppendExtendRecordingRequest(w *Writer, controlSessionID, correlationID, recordingID int64, streamID int32, sourceLocation SourceLocation, channel string) {
	w.WriteHeader(ExtendRecordingRequestBlockLength, TemplateExtendRecordingRequest)
	w.WriteInt64(controlSessionID)
	w.WriteInt64(correlationID)
	w.WriteInt64(recordingID)
	w.WriteInt32(streamID)
	w.WriteInt32(int32(sourceLocation))
	w.WriteASCII(channel)
}

// AppendStopSubscriptionRequest appends a StopSubscriptionRequest message.
func AppendStopSubscriptionRequest(w *Writer, controlSessionID, correlationID, subscriptionID int64) {
	w.WriteHeader(StopSubscriptionRequestBlockLength, TemplateStopSubscriptionRequest)
	w.WriteInt64(controlSessionID)
	w.WriteInt64(correlationID)
	w.WriteInt64(subscriptionID)
}

// AppendReplayRequest appends a ReplayRequest message.
func AppendReplayRequest(w *Writer, controlSessionID, correlationID, recordingID, position, length int64, replayStreamID int32, replayChannel string) {
	w.WriteHeader(ReplayRequestBlockLength, TemplateReplayRequest)
	w.WriteInt64(controlSessionID)
	w.WriteInt64(correlationID)
	w.WriteInt64(recordingID)
	w.WriteInt64(position)
	w.WriteInt64(length)
	w.WriteInt32(replayStreamID)
	w.WriteASCII(replayChannel)
}

// AppendBoundedReplayRequest appends a BoundedReplayRequest message.
func AppendBoundedReplayRequest(w *Writer, controlSessionID, correlationID, recordingID, position, length int64, limitCounterID, replayStreamID int32, replayChannel string) {
	w.WriteHeader(BoundedReplayRequestBlockLength, TemplateBoundedReplayRequest)
	w.WriteInt64(controlSessionID)
	w.WriteInt64(correlationID)
	w.WriteInt64(recordingID)
	w.WriteInt64(position)
	w.WriteInt64(length)
	w.WriteInt32(limitCounterID)
	w.WriteInt32(replayStreamID)
	w.WriteASCII(replayChannel)
}

// AppendStopReplayRequest appends a StopReplayRequest message.
func AppendStopReplayRequest(w *Writer, controlSessionID, correlationID, replaySessionID int64) {
	w.WriteHeader(StopReplayRequestBlockLength, TemplateStopReplayRequest)
	w.WriteInt64(controlSessionID)
	w.WriteInt64(correlationID)
	w.WriteInt64(replaySessionID)
}

// AppendStopAllReplaysRequest appends a StopAllReplaysRequest message.
func AppendStopAllReplaysRequest(w *Writer, controlSessionID, correlationID, recordingID int64) {
	w.WriteHeader(StopAllReplaysRequestBlockLength, TemplateStopAllReplaysRequest)
	w.WriteInt64(controlSessionID)
	w.WriteInt64(correlationID)
	w.WriteInt64(recordingID)
}

// AppendListRecordingsRequest appends a ListRecordingsRequest message.
func AppendListRecordingsRequest(w *Writer, controlSessionID, correlationID, fromRecordingID int64, recordCount int32) {
	w.WriteHeader(ListRecordingsRequestBlockLength, TemplateListRecordingsRequest)
	w.WriteInt64(controlSessionID)
	w.WriteInt64(correlationID)
	w.WriteInt64(fromRecordingID)
	w.WriteInt32(recordCount)
}

// AppendListRecordingsForURIRequest appends a ListRecordingsForURIRequest
// message.
func AppendListRecordingsForURIRequest(w *Writer, controlSessionID, correlationID, fromRecordingID int64, recordCount, streamID int32, channelFragment []byte) {
	w.WriteHeader(ListRecordingsForURIRequestBlockLength, TemplateListRecordingsForURIRequest)
	w.WriteInt64(controlSessionID)
	w.WriteInt64(correlationID)
	w.WriteInt64(fromRecordingID)
	w.WriteInt32(recordCount)
	w.WriteInt32(streamID)
	w.WriteVarData(channelFragment)
}

// AppendListRecordingRequest appends a ListRecordingRequest message.
func AppendListRecordingRequest(w *Writer, controlSessionID, correlationID, recordingID int64) {
	w.WriteHeader(ListRecordingRequestBlockLength, TemplateListRecordingRequest)
	w.WriteInt64(controlSessionID)
	w.WriteInt64(correlationID)
	w.WriteInt64(recordingID)
}

// AppendRecordingPositionRequest appends a RecordingPositionRequest message.
func AppendRecordingPositionRequest(w *Writer, controlSessionID, correlationID, recordingID int64) {
	w.WriteHeader(RecordingPositionRequestBlockLength, TemplateRecordingPositionRequest)
	w.WriteInt64(controlSessionID)
	w.WriteInt64(correlationID)
	w.WriteInt64(recordingID)
}

// AppendStartPositionRequest appends a StartPositionRequest message.
func AppendStartPositionRequest(w *Writer, controlSessionID, correlationID, recordingID int64) {
	w.WriteHeader(StartPositionRequestBlockLength, TemplateStartPositionRequest)
	w.WriteInt64(controlSessionID)
	w.WriteInt64(correlationID)
	w.WriteInt64(recordingID)
}

// AppendStopPositionRequest appends a StopPositionRequest message.
func AppendStopPositionRequest(w *Writer, controlSessionID, correlationID, recordingID int64) {
	w.WriteHeader(StopPositionRequestBlockLength, TemplateStopPositionRequest)
	w.WriteInt64(controlSessionID)
	w.WriteInt64(correlationID)
	w.WriteInt64(recordingID)
}

// AppendFindLastMatchingRecordingRequest appends a
// FindLastMatchingRecordingRequest message.
func AppendFindLastMatchingRecordingRequest(w *Writer, controlSessionID, correlationID, minRecordingID int64, sessionID, streamID int32, channelFragment []byte) {
	w.WriteHeader(FindLastMatchingRecordingRequestBlockLength, TemplateFindLastMatchingRecordingRequest)
	w.WriteInt64(controlSessionID)
	w.WriteInt64(correlationID)
	w.WriteInt64(minRecordingID)
	w.WriteInt32(sessionID)
	w.WriteInt32(streamID)
	w.WriteVarData(channelFragment)
}

// AppendListSubscriptionsRequest appends a ListSubscriptionsRequest message.
func AppendListSubscriptionsRequest(w *Writer, controlSessionID, correlationID int64, pseudoIndex, subscriptionCount int32, applyStreamID bool, streamID int32, channel string) {
	w.WriteHeader(ListSubscriptionsRequestBlockLength, TemplateListSubscriptionsRequest)
	w.WriteInt64(controlSessionID)
	w.WriteInt64(correlationID)
	w.WriteInt32(pseudoIndex)
	w.WriteInt32(subscriptionCount)
	w.WriteBool32(applyStreamID)
	w.WriteInt32(streamID)
	w.WriteASCII(channel)
}

// AppendTruncateRecordingRequest appends a TruncateRecordingRequest message.
func AppendTruncateRecordingRequest(w *Writer, controlSessionID, correlationID, recordingID, position int64) {
	w.WriteHeader(TruncateRecordingRequestBlockLength, TemplateTruncateRecordingRequest)
	w.WriteInt64(controlSessionID)
	w.WriteInt64(correlationID)
	w.WriteInt64(recordingID)
	w.WriteInt64(position)
}

// AppendDetachSegmentsRequest appends a DetachSegmentsRequest message.
func AppendDetachSegmentsRequest(w *Writer, controlSessionID, correlationID, recordingID, newStartPosition int64) {
	w.WriteHeader(DetachSegmentsRequestBlockLength, TemplateDetachSegmentsRequest)
	w.WriteInt64(controlSessionID)
	w.WriteInt64(correlationID)
	w.WriteInt64(recordingID)
	w.WriteInt64(newStartPosition)
}

// AppendDeleteDetachedSegmentsRequest appends a
// DeleteDetachedSegmentsRequest message.
func AppendDeleteDetachedSegmentsRequest(w *Writer, controlSessionID, correlationID, recordingID int64) {
	w.WriteHeader(DeleteDetachedSegmentsRequestBlockLength, TemplateDeleteDetachedSegmentsRequest)
	w.WriteInt64(controlSessionID)
	w.WriteInt64(correlationID)
	w.WriteInt64(recordingID)
}

// AppendPurgeSegmentsRequest appends a PurgeSegmentsRequest message.
func AppendPurgeSegmentsRequest(w *Writer, controlSessionID, correlationID, recordingID, newStartPosition int64) {
	w.WriteHeader(PurgeSegmentsRequestBlockLength, TemplatePurgeSegmentsRequest)
	w.WriteInt64(controlSessionID)
	w.WriteInt64(correlationID)
	w.WriteInt64(recordingID)
	w.WriteInt64(newStartPosition)
}

// AppendAttachSegmentsRequest appends an AttachSegmentsRequest message.
func AppendAttachSegmentsRequest(w *Writer, controlSessionID, correlationID, recordingID int64) {
	w.WriteHeader(AttachSegmentsRequestBlockLength, TemplateAttachSegmentsRequest)
	w.WriteInt64(controlSessionID)
	w.WriteInt64(correlationID)
	w.WriteInt64(recordingID)
}

// AppendMigrateSegmentsRequest appends a MigrateSegmentsRequest message.
func AppendMigrateSegmentsRequest(w *Writer, controlSessionID, correlationID, srcRecordingID, dstRecordingID int64) {
	w.WriteHeader(MigrateSegmentsRequestBlockLength, TemplateMigrateSegmentsRequest)
	w.WriteInt64(controlSessionID)
	w.WriteInt64(correlationID)
	w.WriteInt64(srcRecordingID)
	w.WriteInt64(dstRecordingID)
}

// AppendReplicateRequest appends a ReplicateRequest message.
func AppendReplicateRequest(w *Writer, controlSessionID, correlationID, srcRecordingID, dstRecordingID int64, srcControlStreamID int32, srcControlChannel, liveDestination string) {
	w.WriteHeader(ReplicateRequestBlockLength, TemplateReplicateRequest)
	w.WriteInt64(controlSessionID)
	w.WriteInt64(correlationID)
	w.WriteInt64(srcRecordingID)
	w.WriteInt64(dstRecordingID)
	w.WriteInt32(srcControlStreamID)
	w.WriteASCII(srcControlChannel)
	w.WriteASCII(liveDestination)
}

// AppendStopReplicationRequest appends a StopReplicationRequest message.
func AppendStopReplicationRequest(w *Writer, controlSessionID, correlationID, replicationID int64) {
	w.WriteHeader(StopReplicationRequestBlockLength, TemplateStopReplicationRequest)
	w.WriteInt64(controlSessionID)
	w.WriteInt64(correlationID)
	w.WriteInt64(replicationID)
}
