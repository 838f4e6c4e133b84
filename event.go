package hpack

// EventKind identifies one callback fired while decoding a header block
// (spec.md §4.5, §6 "Callbacks"). Encoder.Encode emits no events: it only
// hands the rendered bytes to its flush function. Events for a single
// field fire strictly in the order listed in spec.md §5 "Ordering": FIELD,
// [NEVER], NAME (+ DATA), VALUE (+ DATA), [INDEX]; TABLE fires on its own
// whenever a size update is processed.
type EventKind uint8

const (
	EventField EventKind = iota // a new field representation has begun
	EventNever                  // the field is a Literal Never Indexed representation
	EventName                   // name decoded: Event.Str whole, or nil with Event.Len set
	EventValue                  // value decoded: same shape as EventName
	EventData                   // follow-up bytes for a NAME/VALUE that arrived as nil+length
	EventIndex                  // Event.Field was just inserted into the dynamic table
	EventTable                  // the dynamic table's limit changed to Event.Size
)

func (k EventKind) String() string {
	switch k {
	case EventField:
		return "field"
	case EventNever:
		return "never-indexed"
	case EventName:
		return "name"
	case EventValue:
		return "value"
	case EventData:
		return "data"
	case EventIndex:
		return "index"
	case EventTable:
		return "table"
	default:
		return "unknown-event"
	}
}

// Event is the payload delivered to a Callback. Only the fields relevant to
// Kind are populated; the rest are zero.
//
// The RFC 7541 "streaming contract" spec.md §4.5 describes — callers never
// need to buffer a string across calls — is expressed here as: when a
// string arrives whole and un-Huffman-encoded, its one EventName/EventValue
// carries Str directly; when it was Huffman-decoded, the EventName/EventValue
// carries Str == "" and Len == the total decoded length, followed by exactly
// one EventData carrying the decoded bytes. A C implementation streams
// Huffman output across many small EventData calls as each input byte
// decodes a symbol; this codec decodes a string's already-buffered bytes in
// one pass (see huffman.go) and so only ever emits a single EventData per
// Huffman string — callers still never see a partial string, which is the
// contract that matters, but they will not observe a multi-chunk EventData
// sequence (DESIGN.md records this as a deliberate simplification).
type Event struct {
	Kind EventKind

	Str string // EventName/EventValue whole-string case
	Len int    // EventName/EventValue total length when Str == "" pending EventData
	Data []byte // EventData payload

	Field HeaderField // EventIndex: the entry just inserted
	Size  uint32      // EventTable: the new dynamic table limit
}

// Callback receives one Event at a time, synchronously, on the caller's
// stack (spec.md §5 "Operations never block on I/O"). Go closures make the
// C API's opaque `priv` parameter unnecessary — a caller that needs state
// simply closes over it in the callback literal.
type Callback func(Event)

// Representation names the four RFC 7541 field representations a
// FieldDescriptor selects (spec.md §4.6, §9 "Dynamic dispatch on
// representation... as a tagged variant, not subclassing"). The fifth
// on-the-wire encoding, the dynamic table size update, is not selectable
// here; the encoder emits it for pending Resize, Limit and Trim calls.
type Representation uint8

const (
	// Indexed selects the Indexed Header Field representation (§6.1): both
	// name and value come from the table at Index. Name/Value/Huffman*
	// flags are ignored.
	Indexed Representation = iota

	// WithIndexing selects Literal with Incremental Indexing (§6.2.1): the
	// field is also inserted into the dynamic table.
	WithIndexing

	// WithoutIndexing selects Literal without Indexing (§6.2.2).
	WithoutIndexing

	// NeverIndexed selects Literal Never Indexed (§6.2.3): semantically
	// identical on the wire to WithoutIndexing except for the
	// representation's high bits, which signal to intermediaries that the
	// value must never be indexed even when re-encoding.
	NeverIndexed
)

// FieldDescriptor describes one field for Encoder.Encode (spec.md §4.6).
type FieldDescriptor struct {
	Representation Representation

	// Index is the absolute table index (1..61 static, 62.. dynamic) to
	// use. For Indexed it supplies both name and value. For the literal
	// representations, Index > 0 reuses that entry's name (an "indexed
	// name" literal) and Name is ignored; Index == 0 means Name carries a
	// literal name.
	Index int

	Name  string
	Value string

	HuffmanName  bool
	HuffmanValue bool
}
