package control

// legacyPadLength is how much the recording request bodies grew between
// schema versions: the one-byte source location became a four-byte value,
// so three zero bytes go in after it.
const legacyPadLength = 3

// reshapeLegacyBody rewrites a schema version 1 request body into the
// current layout. The fixed block through the one-byte source location is
// copied as-is, three zero bytes widen the field, and the variable-length
// tail follows. With little-endian encoding the widened field is
// value-equal to the legacy byte.
//
// body must be at least legacyBlockLength long and dst must hold
// len(body)+legacyPadLength bytes. Returns dst.
func reshapeLegacyBody(dst, body []byte, legacyBlockLength int) []byte {
	n := copy(dst, body[:legacyBlockLength])
	for i := 0; i < legacyPadLength; i++ {
		dst[n+i] = 0
	}
	copy(dst[n+legacyPadLength:], body[legacyBlockLength:])
	return dst
}
