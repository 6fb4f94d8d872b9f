package codec

import (
	"io"
	"testing"
)

func TestDecodeHeader(t *testing.T) {
	w := NewWriter()
	w.WriteHeader(StartRecordingRequestBlockLength, TemplateStartRecordingRequest)

	hdr, err := DecodeHeader(w.Bytes())
	if err != nil {
		t.Fatalf("DecodeHeader() error = %v", err)
	}
	if hdr.BlockLength != StartRecordingRequestBlockLength {
		t.Errorf("BlockLength = %d, want %d", hdr.BlockLength, StartRecordingRequestBlockLength)
	}
	if hdr.TemplateID != TemplateStartRecordingRequest {
		t.Errorf("TemplateID = %v, want TemplateStartRecordingRequest", hdr.TemplateID)
	}
	if hdr.SchemaID != ControlSchemaID {
		t.Errorf("SchemaID = %d, want %d", hdr.SchemaID, ControlSchemaID)
	}
	if hdr.Version != ControlSchemaVersion {
		t.Errorf("Version = %d, want %d", hdr.Version, ControlSchemaVersion)
	}
}

func TestDecodeHeaderByteOrder(t *testing.T) {
	// Little-endian: 0x0102 encodes as 0x02, 0x01.
	data := []byte{0x18, 0x00, 0x04, 0x00, 0x07, 0x00, 0x02, 0x00}

	hdr, err := DecodeHeader(data)
	if err != nil {
		t.Fatalf("DecodeHeader() error = %v", err)
	}
	if hdr.BlockLength != 24 {
		t.Errorf("BlockLength = %d, want 24", hdr.BlockLength)
	}
	if hdr.TemplateID != TemplateStartRecordingRequest {
		t.Errorf("TemplateID = %v, want TemplateStartRecordingRequest", hdr.TemplateID)
	}
	if hdr.SchemaID != 7 {
		t.Errorf("SchemaID = %d, want 7", hdr.SchemaID)
	}
	if hdr.Version != 2 {
		t.Errorf("Version = %d, want 2", hdr.Version)
	}
}

func TestDecodeHeaderShort(t *testing.T) {
	for _, n := range []int{0, 1, 7} {
		_, err := DecodeHeader(make([]byte, n))
		if err != io.ErrUnexpectedEOF {
			t.Errorf("DecodeHeader(%d bytes) error = %v, want io.ErrUnexpectedEOF", n, err)
		}
	}
}

func TestTemplateIDString(t *testing.T) {
	tests := []struct {
		id   TemplateID
		want string
	}{
		{TemplateControlResponse, "ControlResponse"},
		{TemplateConnectRequest, "ConnectRequest"},
		{TemplateCloseSessionRequest, "CloseSessionRequest"},
		{TemplateStartRecordingRequest, "StartRecordingRequest"},
		{TemplateExtendRecordingRequest, "ExtendRecordingRequest"},
		{TemplateChallenge, "Challenge"},
		{TemplateAuthConnectRequest, "AuthConnectRequest"},
		{TemplateMigrateSegmentsRequest, "MigrateSegmentsRequest"},
		{TemplateID(0), "Unknown"},
		{TemplateID(999), "Unknown"},
	}

	for _, tc := range tests {
		if got := tc.id.String(); got != tc.want {
			t.Errorf("TemplateID(%d).String() = %q, want %q", uint16(tc.id), got, tc.want)
		}
	}
}

func TestSemanticVersion(t *testing.T) {
	v := SemanticVersion(2, 1, 0)
	if v != 0x020100 {
		t.Errorf("SemanticVersion(2,1,0) = %#x, want 0x020100", v)
	}
	if got := SemanticMajor(v); got != 2 {
		t.Errorf("SemanticMajor(%#x) = %d, want 2", v, got)
	}
	if got := SemanticMajor(SemanticVersion(1, 9, 12)); got != 1 {
		t.Errorf("SemanticMajor(1.9.12) = %d, want 1", got)
	}
	if ProtocolSemanticVersion != SemanticVersion(ProtocolMajorVersion, ProtocolMinorVersion, ProtocolPatchVersion) {
		t.Errorf("ProtocolSemanticVersion = %#x, want composed %#x",
			ProtocolSemanticVersion,
			SemanticVersion(ProtocolMajorVersion, ProtocolMinorVersion, ProtocolPatchVersion))
	}
}
