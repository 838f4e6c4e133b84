// Package hpack implements HPACK, the header-compression format defined by
// RFC 7541 and used by HTTP/2 (and, via the same static table and Huffman
// alphabet, QPACK's HTTP/3 ancestor) to compress request and response header
// lists.
//
// The package provides two symmetric operations: Encoder.Encode compresses a
// list of header fields into an opaque byte block, and Decoder.Decode walks
// such a block back into (name, value) pairs. Both sides maintain a
// per-connection dynamic table that must stay in lockstep with a peer doing
// the same; this package never performs the HTTP/2 framing or I/O that would
// deliver header blocks between the two ends of a connection, and it never
// allocates strings on the caller's behalf beyond what decoding a field
// requires.
package hpack
