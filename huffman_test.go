package hpack

import (
	"bytes"
	"testing"
)

// RFC 7541 C.4 vectors.
func TestHuffmanEncodeRFCVectors(t *testing.T) {
	tests := []struct {
		input    string
		expected []byte
	}{
		{"", nil},
		{"www.example.com", []byte{
			0xf1, 0xe3, 0xc2, 0xe5, 0xf2, 0x3a, 0x6b, 0xa0,
			0xab, 0x90, 0xf4, 0xff,
		}},
		{"no-cache", []byte{0xa8, 0xeb, 0x10, 0x64, 0x9c, 0xbf}},
		{"custom-key", []byte{0x25, 0xa8, 0x49, 0xe9, 0x5b, 0xa9, 0x7d, 0x7f}},
		{"custom-value", []byte{0x25, 0xa8, 0x49, 0xe9, 0x5b, 0xb8, 0xe8, 0xb4, 0xbf}},
	}

	for _, tt := range tests {
		got := huffmanEncode(tt.input)
		if !bytes.Equal(got, tt.expected) {
			t.Errorf("huffmanEncode(%q) = %x, want %x", tt.input, got, tt.expected)
		}
	}
}

func TestHuffmanDecodeRFCVectors(t *testing.T) {
	tests := []struct {
		input    []byte
		expected string
	}{
		{nil, ""},
		{[]byte{0xf1, 0xe3, 0xc2, 0xe5, 0xf2, 0x3a, 0x6b, 0xa0, 0xab, 0x90, 0xf4, 0xff}, "www.example.com"},
		{[]byte{0xa8, 0xeb, 0x10, 0x64, 0x9c, 0xbf}, "no-cache"},
		{[]byte{0x25, 0xa8, 0x49, 0xe9, 0x5b, 0xa9, 0x7d, 0x7f}, "custom-key"},
		{[]byte{0x25, 0xa8, 0x49, 0xe9, 0x5b, 0xb8, 0xe8, 0xb4, 0xbf}, "custom-value"},
	}

	for _, tt := range tests {
		got, err := huffmanDecode(tt.input)
		if err != nil {
			t.Errorf("huffmanDecode(%x) error: %v", tt.input, err)
			continue
		}
		if got != tt.expected {
			t.Errorf("huffmanDecode(%x) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestHuffmanRoundTrip(t *testing.T) {
	tests := []string{
		"", "hello", "www.example.com", ":method", "GET",
		"application/json", "Mozilla/5.0", "a", "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
	}

	for _, original := range tests {
		encoded := huffmanEncode(original)
		decoded, err := huffmanDecode(encoded)
		if err != nil {
			t.Errorf("huffmanDecode error for %q: %v", original, err)
			continue
		}
		if decoded != original {
			t.Errorf("round trip failed: %q -> %x -> %q", original, encoded, decoded)
		}
	}
}

func TestHuffmanDecodeRejectsEmbeddedEOS(t *testing.T) {
	// The all-1s 30-bit EOS code followed by enough padding to fill a byte.
	data := []byte{0xff, 0xff, 0xff, 0xff}
	_, err := huffmanDecode(data)
	if err == nil {
		t.Fatal("expected an error decoding an embedded EOS symbol")
	}
	if CodeOf(err) != HUF {
		t.Errorf("CodeOf(err) = %v, want HUF", CodeOf(err))
	}
}

func TestHuffmanDecodeRejectsBadPadding(t *testing.T) {
	// '0' is {0x0, 5} = 00000; padding the last 3 bits with 010 (not all 1s)
	// yields 00000010, which is not a valid EOS prefix.
	data := []byte{0x02}
	_, err := huffmanDecode(data)
	if err == nil {
		t.Fatal("expected an error decoding invalid padding")
	}
	if CodeOf(err) != HUF {
		t.Errorf("CodeOf(err) = %v, want HUF", CodeOf(err))
	}
}
