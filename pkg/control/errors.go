package control

import (
	"errors"
	"fmt"
)

// Sentinel errors for control protocol violations.
var (
	// ErrSchemaMismatch is returned when a fragment carries a schema ID
	// other than the control schema.
	ErrSchemaMismatch = errors.New("control: schema mismatch")

	// ErrUnknownSession is returned when a session-scoped request names a
	// control session that is not registered.
	ErrUnknownSession = errors.New("control: unknown control session")
)

// SchemaMismatchError reports a fragment that does not belong to the
// control schema. Nothing past the header is decoded from such fragments.
type SchemaMismatchError struct {
	Expected uint16
	Actual   uint16
	Source   string
}

// Error returns the error message with the offending schema and source.
func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("control: expected schemaId=%d, actual=%d from source=%s",
		e.Expected, e.Actual, e.Source)
}

// Unwrap returns ErrSchemaMismatch for errors.Is.
func (e *SchemaMismatchError) Unwrap() error {
	return ErrSchemaMismatch
}

// UnknownSessionError reports a session-scoped request whose control
// session is not registered with the demultiplexer that received it.
type UnknownSessionError struct {
	SessionID     int64
	CorrelationID int64
	Source        string
}

// Error returns the error message with the request identifiers.
func (e *UnknownSessionError) Error() string {
	return fmt.Sprintf("control: unknown controlSessionId=%d for correlationId=%d from source=%s",
		e.SessionID, e.CorrelationID, e.Source)
}

// Unwrap returns ErrUnknownSession for errors.Is.
func (e *UnknownSessionError) Unwrap() error {
	return ErrUnknownSession
}
