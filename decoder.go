package hpack

import (
	"log/slog"

	"github.com/google/uuid"
)

// Decoder is the decoding half of the codec instance described in spec.md
// §3: it owns a dynamic table and a resumable parse position, and walks an
// HPACK header block one representation at a time (spec.md §4.5,
// component C5).
//
// Unlike the C source this package is modeled on, Decoder does not persist
// a bit-level resumable accumulator across calls. Instead — the same
// approach golang.org/x/net/http2/hpack's Decoder.Write takes — it
// concatenates any left-over bytes from a truncated representation onto
// the front of the next call's input and reparses from there. This gives
// the same externally observable resumability (spec.md §8 "Resumability")
// with a much smaller state machine: see DESIGN.md for the tradeoff.
type Decoder struct {
	id    uuid.UUID
	limits Limits
	table *table
	log   *slog.Logger

	pending     []byte   // undigested tail of a representation split across calls
	canUpdate   bool     // spec.md's `can_upd`: a size update is still legal here
	obligations []uint32 // remaining required size-update values at the block head

	defunct bool
}

// NewDecoder constructs a decoder whose dynamic table starts at
// limits.MaxTableSize (spec.md §9: "lim = max on construction").
func NewDecoder(limits Limits) (*Decoder, error) {
	if err := limits.Validate(); err != nil {
		return nil, err
	}
	id := uuid.New()
	log := slog.Default().With("component", "hpack.decoder", "instance", id.String())
	return &Decoder{
		id:        id,
		limits:    limits,
		table:     newTable(limits.MaxTableSize, log),
		log:       log,
		canUpdate: true,
	}, nil
}

// ID returns the decoder's correlation id, for attaching to a caller's own
// log lines.
func (d *Decoder) ID() uuid.UUID { return d.id }

func (d *Decoder) busy() bool { return len(d.pending) > 0 }

// Resize enqueues a future dynamic table limit (spec.md §4.7): the next
// block's head must carry the matching size-update representation(s) before
// Decode will accept a non-update representation (spec.md §4.5 "Size-update
// policy"). newLimit can never exceed the table's negotiated ceiling
// (invariant I1, lim <= max): max itself does not move after construction.
func (d *Decoder) Resize(newLimit uint32) error {
	if d.defunct {
		return newErr(ARG, nil)
	}
	if d.busy() {
		return newErr(BSY, nil)
	}
	if newLimit > d.table.dyn.max {
		return newErrf(ARG, "hpack: resize target %d exceeds negotiated max %d", newLimit, d.table.dyn.max)
	}
	d.table.dyn.enqueueResize(newLimit)
	return nil
}

// Foreach iterates the dynamic table newest-to-oldest (spec.md §4.4
// "Iterate").
func (d *Decoder) Foreach(fn func(HeaderField)) error {
	if d.defunct {
		return newErr(ARG, nil)
	}
	if d.busy() {
		return newErr(BSY, nil)
	}
	d.table.dyn.foreach(func(hf HeaderField, _ int) { fn(hf) })
	return nil
}

// DynamicTableLen returns the dynamic table's current byte usage.
func (d *Decoder) DynamicTableLen() int { return d.table.dyn.len }

// DynamicTableLimit returns the dynamic table's current enforced limit.
func (d *Decoder) DynamicTableLimit() uint32 { return d.table.dyn.lim }

// Close marks the decoder defunct (spec.md §4.7 free()); no further Decode,
// Resize, or Foreach call is legal on it afterward.
func (d *Decoder) Close() error {
	d.defunct = true
	return nil
}

// Decode parses as much of data as forms complete representations,
// invoking cb for each event in order (spec.md §4.5, §5 "Ordering").
//
// When cut is true, a representation truncated at the end of data is not
// an error: Decode returns (BLK, nil) and the remainder is held internally
// so the next Decode call resumes seamlessly (spec.md §4.5
// "Resumability"). When cut is false, the same truncation is fatal (TRU)
// and the decoder becomes defunct (spec.md §7).
func (d *Decoder) Decode(data []byte, cut bool, cb Callback) (Code, error) {
	if d.defunct {
		return ARG, newErr(ARG, nil)
	}

	blockStarting := !d.busy()

	buf := make([]byte, 0, len(d.pending)+len(data))
	buf = append(buf, d.pending...)
	buf = append(buf, data...)
	d.pending = nil

	if blockStarting {
		d.canUpdate = true
		d.obligations = d.obligations[:0]
		if !d.table.dyn.queueEmpty() {
			if d.table.dyn.queueMin == d.table.dyn.queueNxt {
				d.obligations = append(d.obligations, uint32(d.table.dyn.queueNxt))
			} else {
				d.obligations = append(d.obligations, uint32(d.table.dyn.queueMin), uint32(d.table.dyn.queueNxt))
			}
		}
	}

	pos := 0
	for pos < len(buf) {
		b := buf[pos]

		var (
			consumed int
			ok       bool
			err      error
		)

		// Cases are ordered by tag specificity (0x80, 0x40, 0x20, 0x10, then
		// the 0000xxxx default), not numerically: several representations'
		// first bytes have more than one of these bits set (e.g. indexed
		// field index 62 is 0xBE, which has both 0x80 and 0x20 set), so a
		// lower-specificity test tried first would misroute them.
		switch {
		case b&0x80 != 0: // Indexed Header Field (§6.1)
			if err = d.checkObligations(); err == nil {
				d.canUpdate = false
				consumed, ok, err = d.parseIndexed(buf, pos, cb)
			}

		case b&0x40 != 0: // Literal with Incremental Indexing (§6.2.1)
			if err = d.checkObligations(); err == nil {
				d.canUpdate = false
				consumed, ok, err = d.parseLiteral(buf, pos, cb, WithIndexing)
			}

		case b&0x20 != 0: // Dynamic Table Size Update (§6.3)
			if !d.canUpdate {
				err = newErrf(UPD, "hpack: size update after a non-update representation")
				break
			}
			consumed, ok, err = d.parseSizeUpdate(buf, pos, cb)

		case b&0x10 != 0: // Literal Never Indexed (§6.2.3)
			if err = d.checkObligations(); err == nil {
				d.canUpdate = false
				consumed, ok, err = d.parseLiteral(buf, pos, cb, NeverIndexed)
			}

		default: // Literal without Indexing (§6.2.2)
			if err = d.checkObligations(); err == nil {
				d.canUpdate = false
				consumed, ok, err = d.parseLiteral(buf, pos, cb, WithoutIndexing)
			}
		}

		if err != nil {
			code := CodeOf(err)
			d.defunct = true
			d.log.Warn("hpack: decoder going defunct", "code", code.String())
			return code, err
		}
		if !ok {
			break
		}
		pos += consumed
	}

	remainder := buf[pos:]
	if len(remainder) == 0 {
		return OK, nil
	}

	if cut {
		d.pending = append([]byte(nil), remainder...)
		return BLK, nil
	}

	d.defunct = true
	err := newErrf(TRU, "hpack: %d bytes truncated without cut decoding", len(remainder))
	d.log.Warn("hpack: decoder going defunct", "code", TRU.String())
	return TRU, err
}

// DecodeFields is a non-streaming convenience wrapper around Decode, in the
// spirit of the teacher package's original Decoder.Decode: it assembles the
// NAME/VALUE/DATA event stream for a complete, non-cut block into a plain
// []HeaderField, for callers that do not need the callback-level contract.
func (d *Decoder) DecodeFields(data []byte) ([]HeaderField, error) {
	var (
		fields                []HeaderField
		name, value           string
		pendingName, pendingV bool
	)

	_, err := d.Decode(data, false, func(ev Event) {
		switch ev.Kind {
		case EventField:
			name, value = "", ""
			pendingName, pendingV = false, false
		case EventName:
			if ev.Str == "" && ev.Len > 0 {
				pendingName = true
			} else {
				name = ev.Str
			}
		case EventValue:
			if ev.Str == "" && ev.Len > 0 {
				pendingV = true
			} else {
				value = ev.Str
				fields = append(fields, HeaderField{Name: name, Value: value})
			}
		case EventData:
			if pendingName {
				name = string(ev.Data)
				pendingName = false
			} else if pendingV {
				value = string(ev.Data)
				pendingV = false
				fields = append(fields, HeaderField{Name: name, Value: value})
			}
		}
	})
	if err != nil {
		return nil, err
	}
	return fields, nil
}

// checkObligations reports RSZ if a required size-update representation is
// still owed at the block head (spec.md §4.5 "Size-update policy"): any
// non-update representation before those updates are satisfied is fatal,
// regardless of which one it is.
func (d *Decoder) checkObligations() error {
	if len(d.obligations) > 0 {
		return newErrf(RSZ, "hpack: non-update representation before required size update")
	}
	return nil
}

func (d *Decoder) parseIndexed(buf []byte, start int, cb Callback) (int, bool, error) {
	index, n, ok, err := decodeInt(buf, start, 7)
	if err != nil || !ok {
		return 0, ok, err
	}
	if index == 0 {
		return 0, false, newErrf(IDX, "hpack: indexed header field index 0 is invalid")
	}
	hf, found := d.table.get(index)
	if !found {
		return 0, false, newErrf(IDX, "hpack: index %d out of range", index)
	}

	cb(Event{Kind: EventField})
	emitString(cb, EventName, hf.Name, false)
	emitString(cb, EventValue, hf.Value, false)
	return n, true, nil
}

func (d *Decoder) parseLiteral(buf []byte, start int, cb Callback, rep Representation) (int, bool, error) {
	prefix := uint8(6)
	if rep != WithIndexing {
		prefix = 4
	}

	nameIndex, n1, ok, err := decodeInt(buf, start, prefix)
	if err != nil || !ok {
		return 0, ok, err
	}
	pos := start + n1

	var name string
	var nameHuffman bool
	if nameIndex == 0 {
		s, huff, n2, ok2, err2 := decodeString(buf, pos, d.limits.MaxStringLength)
		if err2 != nil || !ok2 {
			return 0, ok2, err2
		}
		if verr := validateName(s); verr != nil {
			return 0, false, verr
		}
		name, nameHuffman = s, huff
		pos += n2
	} else {
		hf, found := d.table.get(nameIndex)
		if !found {
			return 0, false, newErrf(IDX, "hpack: name index %d out of range", nameIndex)
		}
		name = hf.Name
	}

	value, valHuffman, n3, ok3, err3 := decodeString(buf, pos, d.limits.MaxStringLength)
	if err3 != nil || !ok3 {
		return 0, ok3, err3
	}
	if verr := validateValue(value); verr != nil {
		return 0, false, verr
	}
	pos += n3

	cb(Event{Kind: EventField})
	if rep == NeverIndexed {
		cb(Event{Kind: EventNever})
	}
	emitString(cb, EventName, name, nameIndex == 0 && nameHuffman)
	emitString(cb, EventValue, value, valHuffman)

	if rep == WithIndexing {
		if inserted := d.table.dyn.insert(name, value); inserted {
			cb(Event{Kind: EventIndex, Field: HeaderField{Name: name, Value: value}})
		}
	}

	return pos - start, true, nil
}

func (d *Decoder) parseSizeUpdate(buf []byte, start int, cb Callback) (int, bool, error) {
	value, n, ok, err := decodeInt(buf, start, 5)
	if err != nil || !ok {
		return 0, ok, err
	}
	if value > int(d.table.dyn.max) {
		return 0, false, newErrf(LEN, "hpack: size update %d exceeds max %d", value, d.table.dyn.max)
	}

	if len(d.obligations) > 0 {
		if uint32(value) != d.obligations[0] {
			return 0, false, newErrf(RSZ, "hpack: size update %d does not match required %d", value, d.obligations[0])
		}
		d.obligations = d.obligations[1:]
		if len(d.obligations) == 0 {
			d.table.dyn.clearQueue()
		}
	}

	d.table.dyn.setLim(uint32(value))
	cb(Event{Kind: EventTable, Size: uint32(value)})
	return n, true, nil
}

// emitString emits kind with the whole-string shape when huffman is false,
// or the nil+length / EventData pair when it is true (see event.go's
// Event doc comment).
func emitString(cb Callback, kind EventKind, s string, huffman bool) {
	if huffman {
		cb(Event{Kind: kind, Len: len(s)})
		cb(Event{Kind: EventData, Data: []byte(s)})
		return
	}
	cb(Event{Kind: kind, Str: s})
}

// decodeString decodes one RFC 7541 §5.2 string: an H-flagged length prefix
// followed by that many raw or Huffman-encoded bytes. Returns ok=false,
// err=nil when buf does not yet contain the whole string.
func decodeString(buf []byte, start int, maxLen int) (s string, huffman bool, consumed int, ok bool, err error) {
	if start >= len(buf) {
		return "", false, 0, false, nil
	}
	huffman = buf[start]&0x80 != 0

	length, n, ok, err := decodeInt(buf, start, 7)
	if err != nil || !ok {
		return "", false, 0, ok, err
	}
	if length > maxLen {
		return "", false, 0, false, newErrf(BIG, "hpack: string length %d exceeds limit %d", length, maxLen)
	}

	dataStart := start + n
	if dataStart+length > len(buf) {
		return "", false, 0, false, nil
	}
	raw := buf[dataStart : dataStart+length]

	if huffman {
		decoded, derr := huffmanDecode(raw)
		if derr != nil {
			return "", false, 0, false, derr
		}
		s = decoded
	} else {
		s = bytesToString(raw)
	}

	return s, huffman, n + length, true, nil
}
