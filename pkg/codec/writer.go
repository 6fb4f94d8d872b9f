package codec

import "encoding/binary"

// Writer is a binary writer that appends little-endian data to an internal
// buffer. It is designed for encoding control messages without allocations
// once the buffer has grown to a working size.
type Writer struct {
	buf []byte
}

// NewWriter creates a new writer with a default initial capacity.
func NewWriter() *Writer {
	return &Writer{
		buf: make([]byte, 0, 256),
	}
}

// NewWriterWithCap creates a new writer with the specified initial capacity.
func NewWriterWithCap(cap int) *Writer {
	return &Writer{
		buf: make([]byte, 0, cap),
	}
}

// Reset resets the writer to empty state, reusing the underlying buffer.
func (w *Writer) Reset() {
	w.buf = w.buf[:0]
}

// Bytes returns the encoded bytes. The returned slice is valid until the
// next call to Reset or any Write method.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the number of bytes currently encoded.
func (w *Writer) Len() int {
	return len(w.buf)
}

// WriteUint8 appends a single byte.
func (w *Writer) WriteUint8(v uint8) {
	w.buf = append(w.buf, v)
}

// WriteBytes appends raw bytes.
func (w *Writer) WriteBytes(b []byte) {
	w.buf = append(w.buf, b...)
}

// WriteUint16 appends a uint16 in little-endian byte order.
func (w *Writer) WriteUint16(v uint16) {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
}

// WriteUint32 appends a uint32 in little-endian byte order.
func (w *Writer) WriteUint32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

// WriteUint64 appends a uint64 in little-endian byte order.
func (w *Writer) WriteUint64(v uint64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
}

// WriteInt32 appends an int32 in little-endian byte order.
func (w *Writer) WriteInt32(v int32) {
	w.WriteUint32(uint32(v))
}

// WriteInt64 appends an int64 in little-endian byte order.
func (w *Writer) WriteInt64(v int64) {
	w.WriteUint64(uint64(v))
}

// WriteBool32 appends a boolean as a 4-byte little-endian value (0 or 1).
func (w *Writer) WriteBool32(v bool) {
	if v {
		w.WriteUint32(1)
	} else {
		w.WriteUint32(0)
	}
}

// WriteVarData appends a length-prefixed variable field.
// Format: u32 length + bytes.
func (w *Writer) WriteVarData(b []byte) {
	w.WriteUint32(uint32(len(b)))
	w.buf = append(w.buf, b...)
}

// WriteASCII appends a length-prefixed ASCII string.
// Format: u32 length + string bytes.
func (w *Writer) WriteASCII(s string) {
	w.WriteUint32(uint32(len(s)))
	w.buf = append(w.buf, s...)
}

// WriteHeader appends a message header for the current schema version.
func (w *Writer) WriteHeader(blockLength uint16, id TemplateID) {
	w.WriteUint16(blockLength)
	w.WriteUint16(uint16(id))
	w.WriteUint16(ControlSchemaID)
	w.WriteUint16(ControlSchemaVersion)
}
