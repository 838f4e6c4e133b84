package hpack

// Integer codec: RFC 7541 §5.1 N-bit prefixed variable-length integers
// (spec.md §4.1, component C1).
//
// Decoding here is expressed as a pure function over an already-buffered
// byte slice rather than a byte-at-a-time state machine: the decoder FSM
// (decoder.go) accumulates input across calls itself (the same "append new
// bytes, parse as far as possible, keep the remainder" approach
// golang.org/x/net/http2/hpack's Decoder.Write uses) so this codec never
// needs to persist a partial accumulator of its own between calls — when
// there isn't enough buffered data yet, decodeInt just reports that and the
// caller decides BLK vs TRU.

// maxRepresentableInt is the integer ceiling spec.md §4.1 imposes: the
// codec caps representable integers at UINT16_MAX because the table size
// the integer codec most often carries is itself bounded that way.
const maxRepresentableInt = 0xffff

// encodeInt appends the RFC 7541 §5.1 encoding of value, using the low
// prefixBits of the first byte (ORed with prefixBits's high bits already
// set by the caller in firstByte), to dst. It never fails.
func encodeInt(dst []byte, value int, prefixBits uint8, firstByte byte) []byte {
	max := (1 << prefixBits) - 1

	if value < max {
		return append(dst, firstByte|byte(value))
	}

	dst = append(dst, firstByte|byte(max))
	value -= max
	for value >= 128 {
		dst = append(dst, byte(value%128)|0x80)
		value /= 128
	}
	return append(dst, byte(value))
}

// decodeInt decodes one RFC 7541 §5.1 integer starting at data[pos], using
// a prefixBits-bit prefix (the first byte's low prefixBits bits; the caller
// has already stripped/inspected any high bits used for representation
// dispatch).
//
// Returns the decoded value, the number of bytes consumed, and ok=true on
// success. ok=false with err=nil means data did not contain a complete
// integer yet (the caller decides whether that is BLK or TRU). ok=false
// with err!=nil means the integer itself is malformed (INT: the value would
// exceed maxRepresentableInt).
func decodeInt(data []byte, pos int, prefixBits uint8) (value, consumed int, ok bool, err error) {
	if pos >= len(data) {
		return 0, 0, false, nil
	}

	mask := byte((1 << prefixBits) - 1)
	max := int(mask)
	value = int(data[pos] & mask)
	if value < max {
		return value, 1, true, nil
	}

	shift := uint(0)
	i := pos + 1
	for {
		if i >= len(data) {
			return 0, 0, false, nil
		}
		b := data[i]
		i++
		value += int(b&0x7f) << shift
		if value > maxRepresentableInt {
			return 0, 0, false, newErrf(INT, "hpack: integer %d exceeds the 16-bit representable range", value)
		}
		shift += 7
		if b&0x80 == 0 {
			break
		}
		if shift > 21 {
			// No valid 16-bit-capped integer needs more than three
			// continuation bytes; further bytes can only overflow.
			return 0, 0, false, newErrf(INT, "hpack: integer encoding too long")
		}
	}

	return value, i - pos, true, nil
}
