package hpack

import (
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// Code is a result code returned by codec operations (spec.md §6, §7).
//
// OK, BLK and SKP are not failures: OK means the call completed normally,
// BLK means a cut decode stopped at a representation boundary and can resume
// from a later call (spec.md §4.5 "Resumability"), and SKP reports a skipped
// insertion. Every other code is fatal (see Fatal): when Encode or Decode
// returns one, the instance transitions to defunct (§7) and only Close
// remains legal on it.
type Code uint8

// Result codes, mirroring the wire contract of spec.md §6.
const (
	OK  Code = iota // call completed normally
	BLK             // cut decode stopped at a representation boundary; resumable
	ARG             // programmer error: bad argument, or instance already defunct
	BUF             // integer or string decode ran out of input; Decode reports this as BLK or TRU, never BUF
	INT             // decoded integer would exceed the 16-bit representable range
	LEN             // size update advertises more than the agreed maximum
	HUF             // malformed Huffman code: bad padding, embedded EOS, or invalid prefix
	CHR             // header name or value contains a disallowed octet
	IDX             // indexed representation referenced an out-of-range table index
	UPD             // size-update representation appeared after a non-update representation
	RSZ             // required size update missing at the head of the block
	OOM             // allocator could not satisfy a growth request
	TRU             // representation truncated and the caller did not request cut decoding
	BSY             // instance is mid-block (ctx.res == BLK); only Decode may be called
	BIG             // a string or field exceeded a configured limit
	REA             // operation attempted during an already-aborted representation
	SKP             // insertion skipped: entry cost exceeds the table's limit (not an error)
)

func (c Code) String() string {
	switch c {
	case OK:
		return "ok"
	case BLK:
		return "block continues: input truncated at a representation boundary"
	case ARG:
		return "invalid argument, or instance is defunct"
	case BUF:
		return "input ended in the middle of an integer or string"
	case INT:
		return "decoded integer exceeds the 16-bit representable range"
	case LEN:
		return "size update exceeds the advertised maximum table size"
	case HUF:
		return "malformed Huffman-encoded string"
	case CHR:
		return "header name or value contains a disallowed character"
	case IDX:
		return "header table index out of range"
	case UPD:
		return "dynamic table size update is not legal at this point in the block"
	case RSZ:
		return "block is missing a required dynamic table size update"
	case OOM:
		return "allocator exhausted"
	case TRU:
		return "block truncated without a cut decode"
	case BSY:
		return "instance has a decode in progress (BLK) and is busy"
	case BIG:
		return "string or field exceeds a configured limit"
	case REA:
		return "operation attempted on a representation already aborted by an earlier error"
	case SKP:
		return "insertion skipped: entry is larger than the table limit"
	default:
		return fmt.Sprintf("hpack: unknown result code %d", uint8(c))
	}
}

// Fatal reports whether c marks an instance defunct when returned from
// Encode or Decode. OK, BLK, and SKP never do; every other code does.
func (c Code) Fatal() bool {
	switch c {
	case OK, BLK, SKP:
		return false
	default:
		return true
	}
}

// Error wraps a Code with the name/value/index that triggered it, matching
// the shape of http2.ConnectionError in the teacher package: a typed code
// plus an optional underlying cause.
type Error struct {
	Code Code
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return "hpack: " + e.Code.String() + ": " + e.Err.Error()
	}
	return "hpack: " + e.Code.String()
}

func (e *Error) Unwrap() error { return e.Err }

// newErr builds a *Error for a fatal code, attaching a stack trace via
// pkg/errors the way rfc6242/decoder.go wraps io.ErrUnexpectedEOF: once an
// instance goes defunct the trace is the only breadcrumb a caller's logs
// will have pointing at the representation that desynced the table.
func newErr(code Code, cause error) *Error {
	if cause == nil {
		cause = pkgerrors.New(code.String())
	} else if code.Fatal() {
		cause = pkgerrors.WithStack(cause)
	}
	return &Error{Code: code, Err: cause}
}

// newErrf is newErr with a formatted cause.
func newErrf(code Code, format string, args ...any) *Error {
	return newErr(code, fmt.Errorf(format, args...))
}

// CodeOf extracts the Code carried by err, or OK if err is nil, or ARG if
// err does not originate from this package (strerror's programmatic twin).
func CodeOf(err error) Code {
	if err == nil {
		return OK
	}
	var e *Error
	if pkgerrors.As(err, &e) {
		return e.Code
	}
	return ARG
}

// Strerror returns the human-readable description for a result code,
// exactly as spec.md §6's strerror(result) entry point requires.
func Strerror(code Code) string { return code.String() }
