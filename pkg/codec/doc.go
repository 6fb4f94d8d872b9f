// Package codec implements the Scribe control protocol wire format.
//
// The control protocol carries archive control requests (connect, start and
// stop recording, replay, catalog queries, segment maintenance) from clients
// to the archive conductor, and responses back. Messages are fixed-layout
// binary records designed for decode without allocation on the hot path.
//
// # Wire Format
//
// Every message begins with an 8-byte header, little-endian throughout:
//
//	┌──────────────┬──────────────┬──────────────┬──────────────┐
//	│ Block Length │ Template ID  │ Schema ID    │ Version      │
//	│ (2 bytes)    │ (2 bytes)    │ (2 bytes)    │ (2 bytes)    │
//	└──────────────┴──────────────┴──────────────┴──────────────┘
//
// The fixed block of the message follows the header. Fields live at fixed
// offsets within the block. Variable-length fields (channel URIs, credentials)
// follow the block, each prefixed with a 4-byte length:
//
//	┌──────────────┬─────────────────────────────────────────────┐
//	│ Length (u32) │ Data (length bytes)                         │
//	└──────────────┴─────────────────────────────────────────────┘
//
// # Decoding
//
// Decoders are flyweights: Wrap re-points a decoder at a message body (the
// bytes after the header) without copying, and accessors read fields on
// demand. A field outside the acting block, as written by an older client,
// reads as its zero value. Accessors that return byte slices copy; string
// accessors copy by construction.
//
//	var hdr, err = codec.DecodeHeader(data)
//	var req codec.StartRecordingRequest
//	req.Wrap(data[codec.HeaderLength:], hdr.BlockLength, hdr.Version)
//	id := req.CorrelationID()
//
// # Encoding
//
// Messages are written with an appending Writer and per-message Append
// functions that emit the header, fixed block, and variable-length fields in
// schema order:
//
//	w := codec.NewWriter()
//	codec.AppendConnectRequest(w, correlationID, streamID,
//	    codec.ProtocolSemanticVersion, "scribe:control")
//	pub.Offer(w.Bytes())
//
// # Versioning
//
// Clients advertise a semantic protocol version (major<<16 | minor<<8 |
// patch) at connect time. Schema version 1 writers used a one-byte source
// location in the recording requests; current decoders handle those bodies
// after the demultiplexer rewrites them to the version 2 layout.
//
// # File Structure
//
//   - header.go: message header, template IDs, protocol version
//   - writer.go: little-endian appending writer
//   - flyweight.go: shared decoder state and field readers
//   - enums.go: source location, response code
//   - connect.go: session establishment and liveness messages
//   - recording.go: recording control messages
//   - replay.go: replay control messages
//   - query.go: catalog and position query messages
//   - segments.go: segment maintenance messages
//   - replicate.go: cross-archive replication messages
//   - response.go: control response and challenge messages
//   - encode.go: per-message append functions
//   - decoders.go: decoder bundle for the demultiplexer
package codec
