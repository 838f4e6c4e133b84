package hpack

import "testing"

func encodeAll(t *testing.T, enc *Encoder, fields []FieldDescriptor) []byte {
	t.Helper()
	var out []byte
	err := enc.Encode(fields, func(p []byte) error {
		out = append(out, p...)
		return nil
	})
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	return out
}

func TestEncoderIndexedStaticField(t *testing.T) {
	enc, err := NewEncoder(DefaultLimits())
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	out := encodeAll(t, enc, []FieldDescriptor{
		{Representation: Indexed, Index: 2}, // :method: GET
	})
	if len(out) != 1 || out[0] != 0x82 {
		t.Errorf("encode(Indexed,2) = %x, want [82]", out)
	}
}

func TestEncoderLiteralWithIndexingInsertsEntry(t *testing.T) {
	enc, err := NewEncoder(DefaultLimits())
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	encodeAll(t, enc, []FieldDescriptor{
		{Representation: WithIndexing, Name: "custom-key", Value: "custom-value"},
	})
	if enc.table.dyn.count != 1 {
		t.Fatalf("dynamic table count = %d, want 1", enc.table.dyn.count)
	}
	hf, _ := enc.table.dyn.get(1)
	if hf.Name != "custom-key" || hf.Value != "custom-value" {
		t.Errorf("inserted entry = %+v", hf)
	}
}

func TestEncoderRejectsInvalidName(t *testing.T) {
	enc, _ := NewEncoder(DefaultLimits())
	err := enc.Encode([]FieldDescriptor{
		{Representation: WithoutIndexing, Name: "Bad-Name", Value: "v"},
	}, func([]byte) error { return nil })
	if err == nil {
		t.Fatal("expected an error for an uppercase header name")
	}
	if CodeOf(err) != CHR {
		t.Errorf("CodeOf(err) = %v, want CHR", CodeOf(err))
	}
	if !enc.defunct {
		t.Error("encoder should be defunct after a fatal error")
	}
}

func TestEncoderResizeEmitsSizeUpdate(t *testing.T) {
	enc, _ := NewEncoder(DefaultLimits())
	if err := enc.Resize(128); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	out := encodeAll(t, enc, []FieldDescriptor{
		{Representation: Indexed, Index: 2},
	})
	// 0x3f prefix-5 marker with continuation for 128, then the indexed byte.
	if len(out) < 2 || out[0]&0x20 == 0 {
		t.Fatalf("expected a leading size-update representation, got %x", out)
	}
	if enc.table.dyn.lim != 128 {
		t.Errorf("dyn.lim = %d, want 128", enc.table.dyn.lim)
	}
}

func TestEncoderAfterCloseIsDefunct(t *testing.T) {
	enc, _ := NewEncoder(DefaultLimits())
	enc.Close()
	err := enc.Encode(nil, func([]byte) error { return nil })
	if CodeOf(err) != ARG {
		t.Errorf("Encode after Close: code = %v, want ARG", CodeOf(err))
	}
}
