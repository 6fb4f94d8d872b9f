package codec

// SourceLocation indicates where the archive should record a stream from.
type SourceLocation int32

const (
	// SourceLocationLocal records from a publication local to the archive.
	SourceLocationLocal SourceLocation = 0

	// SourceLocationRemote records from a remote publication.
	SourceLocationRemote SourceLocation = 1
)

// String returns the string representation of the source location.
func (s SourceLocation) String() string {
	switch s {
	case SourceLocationLocal:
		return "Local"
	case SourceLocationRemote:
		return "Remote"
	default:
		return "Unknown"
	}
}

// ResponseCode indicates the outcome of a control request.
type ResponseCode int32

const (
	// ResponseCodeOK indicates the request succeeded.
	ResponseCodeOK ResponseCode = 0

	// ResponseCodeError indicates the request failed; the response carries
	// an error message and a relevant error ID.
	ResponseCodeError ResponseCode = 1

	// ResponseCodeRecordingUnknown indicates the referenced recording does
	// not exist in the catalog.
	ResponseCodeRecordingUnknown ResponseCode = 2

	// ResponseCodeSubscriptionUnknown indicates the referenced recording
	// subscription does not exist.
	ResponseCodeSubscriptionUnknown ResponseCode = 3
)

// String returns the string representation of the response code.
func (c ResponseCode) String() string {
	switch c {
	case ResponseCodeOK:
		return "OK"
	case ResponseCodeError:
		return "Error"
	case ResponseCodeRecordingUnknown:
		return "RecordingUnknown"
	case ResponseCodeSubscriptionUnknown:
		return "SubscriptionUnknown"
	default:
		return "Unknown"
	}
}
