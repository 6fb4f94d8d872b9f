package codec

import "encoding/binary"

// body is the shared flyweight state for control message decoders. A decoder
// wraps the bytes that follow the message header and reads fixed fields at
// known offsets within the acting block; variable-length fields follow the
// block, each with a u32 length prefix.
//
// Field accessors are bounds checked. A fixed field that falls outside the
// acting block, as written by an older client, or outside the buffer reads
// as its zero value. A variable field the buffer does not contain reads as
// nil or the empty string.
type body struct {
	buf         []byte
	blockLength int
	version     uint16
}

// Wrap points the decoder at a message body (the bytes after the header)
// using the acting block length and schema version from the header. The
// decoder aliases buf until the next Wrap.
func (b *body) Wrap(buf []byte, actingBlockLength, actingVersion uint16) {
	b.buf = buf
	b.blockLength = int(actingBlockLength)
	b.version = actingVersion
}

// ActingVersion returns the schema version the message was encoded with.
func (b *body) ActingVersion() uint16 {
	return b.version
}

func (b *body) int64At(off int) int64 {
	if off+8 > b.blockLength || off+8 > len(b.buf) {
		return 0
	}
	return int64(binary.LittleEndian.Uint64(b.buf[off:]))
}

func (b *body) int32At(off int) int32 {
	if off+4 > b.blockLength || off+4 > len(b.buf) {
		return 0
	}
	return int32(binary.LittleEndian.Uint32(b.buf[off:]))
}

func (b *body) bool32At(off int) bool {
	return b.int32At(off) == 1
}

// varData returns the n-th variable-length field after the fixed block, or
// nil if the buffer does not contain it. The returned slice aliases the
// wrapped buffer.
func (b *body) varData(n int) []byte {
	p := b.blockLength
	for {
		if p+4 > len(b.buf) {
			return nil
		}
		length := int(binary.LittleEndian.Uint32(b.buf[p:]))
		p += 4
		if length < 0 || p+length > len(b.buf) {
			return nil
		}
		if n == 0 {
			return b.buf[p : p+length]
		}
		p += length
		n--
	}
}

// varASCII returns the n-th variable-length field as a string.
func (b *body) varASCII(n int) string {
	return string(b.varData(n))
}

// varBytes returns a copy of the n-th variable-length field, safe to retain
// after the wrapped buffer is reused.
func (b *body) varBytes(n int) []byte {
	v := b.varData(n)
	if v == nil {
		return nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out
}
