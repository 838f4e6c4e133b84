package hpack

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/valyala/bytebufferpool"
)

// Encoder is the encoding half of the codec instance (spec.md §4.6,
// component C6) plus the lifecycle operations of component C7: Resize,
// Limit, Trim, and Close.
//
// Encode never performs I/O itself (spec.md §5 "Operations never block on
// I/O"): it renders a batch of fields into a scratch buffer and hands the
// result to a caller-supplied flush function. The scratch buffer is drawn
// from a package-level bytebufferpool.Pool — the teacher module's go.mod
// requires bytebufferpool but no file in it actually imports the package;
// this is where that dependency gets exercised (see DESIGN.md).
type Encoder struct {
	id     uuid.UUID
	limits Limits
	table  *table
	log    *slog.Logger

	buf *bytebufferpool.ByteBuffer

	defunct bool
}

var encoderBufPool bytebufferpool.Pool

// NewEncoder constructs an encoder whose dynamic table starts at
// limits.MaxTableSize.
func NewEncoder(limits Limits) (*Encoder, error) {
	if err := limits.Validate(); err != nil {
		return nil, err
	}
	id := uuid.New()
	log := slog.Default().With("component", "hpack.encoder", "instance", id.String())
	return &Encoder{
		id:     id,
		limits: limits,
		table:  newTable(limits.MaxTableSize, log),
		log:    log,
		buf:    encoderBufPool.Get(),
	}, nil
}

// ID returns the encoder's correlation id.
func (e *Encoder) ID() uuid.UUID { return e.id }

// Resize enqueues a new dynamic table limit; the matching size-update
// representation(s) are written at the head of the next Encode call, in the
// same min-then-nxt order a peer's Decoder expects (spec.md §4.7). newLimit
// can never exceed the table's negotiated ceiling (invariant I1, lim <=
// max): max itself does not move after construction.
func (e *Encoder) Resize(newLimit uint32) error {
	if e.defunct {
		return newErr(ARG, nil)
	}
	if newLimit > e.table.dyn.max {
		return newErrf(ARG, "hpack: resize target %d exceeds negotiated max %d", newLimit, e.table.dyn.max)
	}
	e.table.dyn.enqueueResize(newLimit)
	return nil
}

// Limit voluntarily caps the dynamic table below its negotiated maximum —
// an encoder choosing to spend less memory than a peer's SETTINGS value
// would allow. It is implemented as an ordinary Resize to min(newLimit,
// max): the peer's decoder must still see the matching wire update.
func (e *Encoder) Limit(newLimit uint32) error {
	if e.defunct {
		return newErr(ARG, nil)
	}
	if newLimit > e.table.dyn.max {
		newLimit = e.table.dyn.max
	}
	e.table.dyn.enqueueResize(newLimit)
	return nil
}

// Trim enqueues a size update to zero followed by one back to max, the only
// RFC 7541-legal way to clear the dynamic table (spec.md §4.7); the table is
// emptied when the next Encode call writes those updates at the block head.
// If a Resize or Limit value is already pending, that value keeps the first
// queue slot, so the updates written are that value then max and the table
// is only shrunk to that value, not emptied. max is never mutated by
// enqueueResize, so it is safe to read twice without capturing it in a
// local first.
func (e *Encoder) Trim() error {
	if e.defunct {
		return newErr(ARG, nil)
	}
	e.table.dyn.enqueueResize(0)
	e.table.dyn.enqueueResize(e.table.dyn.max)
	return nil
}

// Close releases the scratch buffer and marks the encoder defunct.
func (e *Encoder) Close() error {
	if e.buf != nil {
		encoderBufPool.Put(e.buf)
		e.buf = nil
	}
	e.defunct = true
	return nil
}

// Encode renders fields into a header block and passes the completed bytes
// to flush exactly once. The slice handed to flush is only valid for the
// duration of the call — copy it if it must outlive flush returning.
func (e *Encoder) Encode(fields []FieldDescriptor, flush func([]byte) error) error {
	if e.defunct {
		return newErr(ARG, nil)
	}

	e.buf.Reset()

	if err := e.flushQueuedResizes(); err != nil {
		e.goDefunct(err)
		return err
	}

	for i := range fields {
		if err := e.encodeField(&fields[i]); err != nil {
			e.goDefunct(err)
			return err
		}
	}

	if err := flush(e.buf.B); err != nil {
		return err
	}
	return nil
}

func (e *Encoder) goDefunct(err error) {
	code := CodeOf(err)
	if code.Fatal() {
		e.defunct = true
		e.log.Warn("hpack: encoder going defunct", "code", code.String())
	}
}

// flushQueuedResizes writes the representations for any pending Resize,
// Limit, or Trim calls at the head of the block (spec.md §4.7), in the same
// min-then-nxt order spec.md §8 E5 requires a decoder to observe.
func (e *Encoder) flushQueuedResizes() error {
	dt := e.table.dyn
	if dt.queueEmpty() {
		return nil
	}

	values := []uint32{uint32(dt.queueNxt)}
	if dt.queueMin != dt.queueNxt {
		values = []uint32{uint32(dt.queueMin), uint32(dt.queueNxt)}
	}

	for _, v := range values {
		e.buf.B = encodeInt(e.buf.B, int(v), 5, 0x20)
		dt.setLim(v)
	}
	dt.clearQueue()
	return nil
}

func (e *Encoder) encodeField(fd *FieldDescriptor) error {
	switch fd.Representation {
	case Indexed:
		return e.encodeIndexed(fd)
	case WithIndexing:
		return e.encodeLiteral(fd, 0x40, 6, true)
	case WithoutIndexing:
		return e.encodeLiteral(fd, 0x00, 4, false)
	case NeverIndexed:
		return e.encodeLiteral(fd, 0x10, 4, false)
	default:
		return newErrf(ARG, "hpack: unknown representation %d", fd.Representation)
	}
}

func (e *Encoder) encodeIndexed(fd *FieldDescriptor) error {
	if fd.Index <= 0 {
		return newErrf(ARG, "hpack: indexed representation needs a positive Index")
	}
	if _, ok := e.table.get(fd.Index); !ok {
		return newErrf(IDX, "hpack: index %d out of range", fd.Index)
	}
	e.buf.B = encodeInt(e.buf.B, fd.Index, 7, 0x80)
	return nil
}

func (e *Encoder) encodeLiteral(fd *FieldDescriptor, firstByte byte, prefix uint8, indexing bool) error {
	name := fd.Name

	if fd.Index > 0 {
		hf, ok := e.table.get(fd.Index)
		if !ok {
			return newErrf(IDX, "hpack: name index %d out of range", fd.Index)
		}
		name = hf.Name
		e.buf.B = encodeInt(e.buf.B, fd.Index, prefix, firstByte)
	} else {
		if err := validateName(fd.Name); err != nil {
			return err
		}
		e.buf.B = encodeInt(e.buf.B, 0, prefix, firstByte)
		e.encodeString(fd.Name, fd.HuffmanName)
	}

	if err := validateValue(fd.Value); err != nil {
		return err
	}
	e.encodeString(fd.Value, fd.HuffmanValue)

	if indexing {
		e.table.dyn.insert(name, fd.Value)
	}
	return nil
}

func (e *Encoder) encodeString(s string, huffman bool) {
	if huffman {
		encoded := huffmanEncode(s)
		e.buf.B = encodeInt(e.buf.B, len(encoded), 7, 0x80)
		e.buf.B = append(e.buf.B, encoded...)
		return
	}
	e.buf.B = encodeInt(e.buf.B, len(s), 7, 0x00)
	e.buf.B = append(e.buf.B, stringToBytes(s)...)
}
