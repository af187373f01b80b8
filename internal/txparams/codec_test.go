package txparams

import "testing"

func TestEncodeDecodeUint64(t *testing.T) {
	framed, err := Encode(Amount, uint64(1234567))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	v, err := Decode(Amount, framed)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v.(uint64) != 1234567 {
		t.Errorf("got %v, want 1234567", v)
	}
}

func TestEncodeDecodeBool(t *testing.T) {
	framed, err := Encode(IsSender, true)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	v, err := Decode(IsSender, framed)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v.(bool) != true {
		t.Errorf("got %v, want true", v)
	}
}

func TestEncodeDecodeString(t *testing.T) {
	framed, err := Encode(Message, "hello")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	v, err := Decode(Message, framed)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v.(string) != "hello" {
		t.Errorf("got %v, want hello", v)
	}
}

func TestEncodeDecodeUint64List(t *testing.T) {
	want := []uint64{10, 20, 30}
	framed, err := Encode(AmountList, want)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	v, err := Decode(AmountList, framed)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	got := v.([]uint64)
	if len(got) != len(want) {
		t.Fatalf("got %d elements, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("element %d: got %d, want %d", i, got[i], want[i])
		}
	}
}

func TestDecodeRejectsTruncatedBuffer(t *testing.T) {
	if _, err := Decode(Amount, []byte{0, 0}); err == nil {
		t.Errorf("expected an error decoding a 2-byte buffer")
	}
}

func TestDecodeRejectsLengthMismatch(t *testing.T) {
	framed, err := Encode(Amount, uint64(1))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	framed = append(framed, 0xFF)
	if _, err := Decode(Amount, framed); err == nil {
		t.Errorf("expected an error decoding a buffer whose prefix no longer matches its length")
	}
}

func TestUnknownIDFallsBackToBytesCodec(t *testing.T) {
	unknown := ID(999999)
	want := []byte{1, 2, 3}
	framed, err := Encode(unknown, want)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	v, err := Decode(unknown, framed)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	got := v.([]byte)
	if len(got) != len(want) {
		t.Fatalf("got %d bytes, want %d", len(got), len(want))
	}
}
