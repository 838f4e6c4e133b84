package hpack

import "unsafe"

// bytesToString borrows b as a string with zero allocation. The result must
// never outlive b, and b must not be written to while the string is held —
// this package only calls it on a locally-owned decode buffer that is never
// mutated once a representation has finished parsing (see decoder.go).
//
//go:inline
func bytesToString(b []byte) string {
	return unsafe.String(unsafe.SliceData(b), len(b))
}

// stringToBytes borrows s as a []byte with zero allocation. The returned
// slice must never be written to — strings are immutable and the runtime
// assumes it. Used by the encoder to append a header name or value to the
// pooled buffer's byte slice without an intermediate copy.
//
//go:inline
func stringToBytes(s string) []byte {
	return unsafe.Slice(unsafe.StringData(s), len(s))
}
