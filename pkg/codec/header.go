package codec

import (
	"encoding/binary"
	"io"
)

// Schema constants.
const (
	// HeaderLength is the size of the message header in bytes.
	HeaderLength = 8

	// ControlSchemaID identifies the Scribe control schema.
	ControlSchemaID = 7

	// ControlSchemaVersion is the schema version current encoders write.
	ControlSchemaVersion = 2

	// NullValue is the wire encoding for an absent ID or position.
	NullValue = -1
)

// Protocol semantic version, negotiated at connect time.
const (
	ProtocolMajorVersion = 2
	ProtocolMinorVersion = 1
	ProtocolPatchVersion = 0

	// ProtocolSemanticVersion is the composed version current clients send.
	ProtocolSemanticVersion = ProtocolMajorVersion<<16 | ProtocolMinorVersion<<8 | ProtocolPatchVersion
)

// SemanticVersion composes a protocol version from its components.
func SemanticVersion(major, minor, patch uint8) int32 {
	return int32(major)<<16 | int32(minor)<<8 | int32(patch)
}

// SemanticMajor extracts the major component of a semantic version.
func SemanticMajor(version int32) int32 {
	return (version >> 16) & 0xFF
}

// SemanticMinor extracts the minor component of a semantic version.
func SemanticMinor(version int32) int32 {
	return (version >> 8) & 0xFF
}

// SemanticPatch extracts the patch component of a semantic version.
func SemanticPatch(version int32) int32 {
	return version & 0xFF
}

// TemplateID identifies a control message type within the schema.
type TemplateID uint16

const (
	TemplateControlResponse                  TemplateID = 1
	TemplateConnectRequest                   TemplateID = 2
	TemplateCloseSessionRequest              TemplateID = 3
	TemplateStartRecordingRequest            TemplateID = 4
	TemplateStopRecordingRequest             TemplateID = 5
	TemplateReplayRequest                    TemplateID = 6
	TemplateStopReplayRequest                TemplateID = 7
	TemplateListRecordingsRequest            TemplateID = 8
	TemplateListRecordingsForURIRequest      TemplateID = 9
	TemplateListRecordingRequest             TemplateID = 10
	TemplateExtendRecordingRequest           TemplateID = 11
	TemplateRecordingPositionRequest         TemplateID = 12
	TemplateTruncateRecordingRequest         TemplateID = 13
	TemplateStopSubscriptionRequest          TemplateID = 14
	TemplateStopPositionRequest              TemplateID = 15
	TemplateFindLastMatchingRecordingRequest TemplateID = 16
	TemplateListSubscriptionsRequest         TemplateID = 17
	TemplateBoundedReplayRequest             TemplateID = 18
	TemplateStopAllReplaysRequest            TemplateID = 19
	TemplateChallenge                        TemplateID = 20
	TemplateChallengeResponse                TemplateID = 21
	TemplateKeepAliveRequest                 TemplateID = 22
	TemplateAuthConnectRequest               TemplateID = 23
	TemplateReplicateRequest                 TemplateID = 24
	TemplateStopReplicationRequest           TemplateID = 25
	TemplateStartPositionRequest             TemplateID = 26
	TemplateDetachSegmentsRequest            TemplateID = 27
	TemplateDeleteDetachedSegmentsRequest    TemplateID = 28
	TemplatePurgeSegmentsRequest             TemplateID = 29
	TemplateAttachSegmentsRequest            TemplateID = 30
	TemplateMigrateSegmentsRequest           TemplateID = 31
)

// String returns the message name for the template ID.
func (t TemplateID) String() string {
	switch t {
	case TemplateControlResponse:
		return "ControlResponse"
	case TemplateConnectRequest:
		return "ConnectRequest"
	case TemplateCloseSessionRequest:
		return "CloseSessionRequest"
	case TemplateStartRecordingRequest:
		return "StartRecordingRequest"
	case TemplateStopRecordingRequest:
		return "StopRecordingRequest"
	case TemplateReplayRequest:
		return "ReplayRequest"
	case TemplateStopReplayRequest:
		return "StopReplayRequest"
	case TemplateListRecordingsRequest:
		return "ListRecordingsRequest"
	case TemplateListRecordingsForURIRequest:
		return "ListRecordingsForURIRequest"
	case TemplateListRecordingRequest:
		return "ListRecordingRequest"
	case TemplateExtendRecordingRequest:
		return "ExtendRecordingRequest"
	case TemplateRecordingPositionRequest:
		return "RecordingPositionRequest"
	case TemplateTruncateRecordingRequest:
		return "TruncateRecordingRequest"
	case TemplateStopSubscriptionRequest:
		return "StopSubscriptionRequest"
	case TemplateStopPositionRequest:
		return "StopPositionRequest"
	case TemplateFindLastMatchingRecordingRequest:
		return "FindLastMatchingRecordingRequest"
	case TemplateListSubscriptionsRequest:
		return "ListSubscriptionsRequest"
	case TemplateBoundedReplayRequest:
		return "BoundedReplayRequest"
	case TemplateStopAllReplaysRequest:
		return "StopAllReplaysRequest"
	case TemplateChallenge:
		return "Challenge"
	case TemplateChallengeResponse:
		return "ChallengeResponse"
	case TemplateKeepAliveRequest:
		return "KeepAliveRequest"
	case TemplateAuthConnectRequest:
		return "AuthConnectRequest"
	case TemplateReplicateRequest:
		return "ReplicateRequest"
	case TemplateStopReplicationRequest:
		return "StopReplicationRequest"
	case TemplateStartPositionRequest:
		return "StartPositionRequest"
	case TemplateDetachSegmentsRequest:
		return "DetachSegmentsRequest"
	case TemplateDeleteDetachedSegmentsRequest:
		return "DeleteDetachedSegmentsRequest"
	case TemplatePurgeSegmentsRequest:
		return "PurgeSegmentsRequest"
	case TemplateAttachSegmentsRequest:
		return "AttachSegmentsRequest"
	case TemplateMigrateSegmentsRequest:
		return "MigrateSegmentsRequest"
	default:
		return "Unknown"
	}
}

// Header is the fixed message header preceding every control message.
type Header struct {
	BlockLength uint16
	TemplateID  TemplateID
	SchemaID    uint16
	Version     uint16
}

// DecodeHeader decodes the message header at the start of data.
func DecodeHeader(data []byte) (Header, error) {
	if len(data) < HeaderLength {
		return Header{}, io.ErrUnexpectedEOF
	}
	return Header{
		BlockLength: binary.LittleEndian.Uint16(data[0:2]),
		TemplateID:  TemplateID(binary.LittleEndian.Uint16(data[2:4])),
		SchemaID:    binary.LittleEndian.Uint16(data[4:6]),
		Version:     binary.LittleEndian.Uint16(data[6:8]),
	}, nil
}
