package hpack

// Limits bundles the construction-time parameters that govern one codec
// instance, the way http2.ConnectionConfig bundles the knobs for an HTTP/2
// connection. There is no network configuration to parse here — the codec
// is transport-agnostic (spec.md §1) — so this is the whole config surface.
type Limits struct {
	// MaxTableSize is the initial dynamic table maximum (spec.md's `max`),
	// in bytes. Must be <= MaxTableSizeLimit (UINT16_MAX per spec.md §4.1).
	MaxTableSize uint32

	// MaxStringLength caps the advertised on-the-wire length of any single
	// name or value string a decoder reads (for a Huffman string, its
	// encoded length, not its decoded length). Guards a decoder against a
	// peer advertising an enormous string length and forcing a
	// correspondingly enormous allocation. Zero means use
	// DefaultMaxStringLength.
	MaxStringLength int
}

// MaxTableSizeLimit is the largest table size the codec can represent
// (spec.md §4.1: "the codec caps representable integers at UINT16_MAX
// because the table size is so bounded").
const MaxTableSizeLimit = 1<<16 - 1

// DefaultMaxStringLength bounds a single decoded string absent an explicit
// Limits.MaxStringLength, matching the teacher decoder's 16 MiB default.
const DefaultMaxStringLength = 16 * 1024 * 1024

// DefaultLimits returns the default Limits: a 4096-byte dynamic table (the
// RFC 7541 / HTTP/2 SETTINGS_HEADER_TABLE_SIZE default) and the default
// string length cap.
func DefaultLimits() Limits {
	return Limits{
		MaxTableSize:    4096,
		MaxStringLength: DefaultMaxStringLength,
	}
}

// Validate checks l for internal consistency, filling in zero-valued fields
// with their defaults the way http2.ConnectionConfig.Validate does, and
// erroring only where a value is outright illegal rather than merely unset.
func (l *Limits) Validate() error {
	if l.MaxTableSize > MaxTableSizeLimit {
		return newErrf(ARG, "hpack: max table size %d exceeds limit %d", l.MaxTableSize, MaxTableSizeLimit)
	}
	if l.MaxStringLength == 0 {
		l.MaxStringLength = DefaultMaxStringLength
	}
	if l.MaxStringLength < 0 {
		return newErrf(ARG, "hpack: negative max string length %d", l.MaxStringLength)
	}
	return nil
}
