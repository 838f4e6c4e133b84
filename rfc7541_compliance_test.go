package hpack

import "testing"

// TestRFC7541_C3_1_LiteralAndIndexedFields is RFC 7541 C.3.1: a first
// request encoded without Huffman, mixing indexed static-table fields with
// one literal that reuses a static name.
func TestRFC7541_C3_1_LiteralAndIndexedFields(t *testing.T) {
	wire := []byte{
		0x82, 0x86, 0x84, 0x41, 0x0f,
		'w', 'w', 'w', '.', 'e', 'x', 'a', 'm', 'p', 'l', 'e', '.', 'c', 'o', 'm',
	}

	dec, err := NewDecoder(DefaultLimits())
	if err != nil {
		t.Fatalf("NewDecoder: %v", err)
	}
	got, err := dec.DecodeFields(wire)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}

	want := []HeaderField{
		{":method", "GET"},
		{":scheme", "http"},
		{":path", "/"},
		{":authority", "www.example.com"},
	}
	if len(got) != len(want) {
		t.Fatalf("decoded %d fields, want %d: %+v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("field %d = %+v, want %+v", i, got[i], want[i])
		}
	}

	if dec.table.dyn.count != 1 {
		t.Fatalf("dynamic table should hold the inserted :authority entry, count = %d", dec.table.dyn.count)
	}
	hf, _ := dec.table.dyn.get(1)
	if hf != (HeaderField{":authority", "www.example.com"}) {
		t.Errorf("inserted entry = %+v", hf)
	}
}

// TestRFC7541_E5_RequiredSizeUpdateSequence exercises spec.md's worked
// example: calling Resize(128) then Resize(64) on a decoder must be
// satisfied by two size-update representations in that order — 128 first,
// even though 64 is smaller and would alone be enough to reach the final
// state.
func TestRFC7541_E5_RequiredSizeUpdateSequence(t *testing.T) {
	dec, _ := NewDecoder(DefaultLimits())
	if err := dec.Resize(128); err != nil {
		t.Fatalf("Resize(128): %v", err)
	}
	if err := dec.Resize(64); err != nil {
		t.Fatalf("Resize(64): %v", err)
	}

	// A single update straight to 64 does not satisfy the requirement that
	// 128 be observed first.
	wrongOrder := encodeInt(nil, 64, 5, 0x20)
	dec2, _ := NewDecoder(DefaultLimits())
	dec2.Resize(128)
	dec2.Resize(64)
	_, err := dec2.Decode(wrongOrder, false, func(Event) {})
	if CodeOf(err) != RSZ {
		t.Fatalf("single update straight to 64: code = %v, want RSZ", CodeOf(err))
	}

	var wire []byte
	wire = encodeInt(wire, 128, 5, 0x20)
	wire = encodeInt(wire, 64, 5, 0x20)
	wire = append(wire, 0x82) // :method: GET, now legal once both updates land

	var sizes []uint32
	_, err = dec.Decode(wire, false, func(ev Event) {
		if ev.Kind == EventTable {
			sizes = append(sizes, ev.Size)
		}
	})
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if len(sizes) != 2 || sizes[0] != 128 || sizes[1] != 64 {
		t.Errorf("observed size updates = %v, want [128 64]", sizes)
	}
	if dec.table.dyn.lim != 64 {
		t.Errorf("dyn.lim = %d, want 64", dec.table.dyn.lim)
	}
}

// TestRFC7541_E6_SizeUpdateAfterFieldIsFatal: byte 0x82 (an indexed field)
// followed by 0x28 (a size update) must fail with UPD — once any non-update
// representation has been seen, the block's update window is closed.
func TestRFC7541_E6_SizeUpdateAfterFieldIsFatal(t *testing.T) {
	dec, _ := NewDecoder(DefaultLimits())
	_, err := dec.Decode([]byte{0x82, 0x28}, false, func(Event) {})
	if err == nil {
		t.Fatal("expected an error")
	}
	if CodeOf(err) != UPD {
		t.Errorf("CodeOf(err) = %v, want UPD", CodeOf(err))
	}
	if !dec.defunct {
		t.Error("decoder should be defunct after UPD")
	}
}

// TestRFC7541_SizeUpdateAlone is the companion legal case: a block
// consisting solely of a size update is well-formed on its own.
func TestRFC7541_SizeUpdateAlone(t *testing.T) {
	dec, _ := NewDecoder(DefaultLimits())
	wire := encodeInt(nil, 8, 5, 0x20)
	_, err := dec.Decode(wire, false, func(Event) {})
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if dec.table.dyn.lim != 8 {
		t.Errorf("dyn.lim = %d, want 8", dec.table.dyn.lim)
	}
}

// TestRFC7541_SizeUpdateExceedingMaxIsFatal: a size update above the
// negotiated maximum is always fatal LEN, obligation or not.
func TestRFC7541_SizeUpdateExceedingMaxIsFatal(t *testing.T) {
	dec, _ := NewDecoder(Limits{MaxTableSize: 256})
	wire := encodeInt(nil, 512, 5, 0x20)
	_, err := dec.Decode(wire, false, func(Event) {})
	if CodeOf(err) != LEN {
		t.Fatalf("code = %v, want LEN", CodeOf(err))
	}
}
