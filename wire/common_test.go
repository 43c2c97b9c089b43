package wire

import (
	"bytes"
	"testing"
)

func TestVarIntWire(t *testing.T) {
	tests := []struct {
		val  uint64
		buf  []byte
		size int
	}{
		{0, []byte{0x00}, 1},
		{0xfc, []byte{0xfc}, 1},
		{0xfd, []byte{0xfd, 0xfd, 0x00}, 3},
		{0xffff, []byte{0xfd, 0xff, 0xff}, 3},
		{0x10000, []byte{0xfe, 0x00, 0x00, 0x01, 0x00}, 5},
		{0xffffffff, []byte{0xfe, 0xff, 0xff, 0xff, 0xff}, 5},
		{0x100000000, []byte{0xff, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00}, 9},
	}

	for _, test := range tests {
		if got := VarIntSerializeSize(test.val); got != test.size {
			t.Errorf("VarIntSerializeSize(%d): got %d, want %d", test.val, got, test.size)
		}

		var buf bytes.Buffer
		if err := WriteVarInt(&buf, test.val); err != nil {
			t.Fatalf("WriteVarInt(%d): %s", test.val, err)
		}
		if !bytes.Equal(buf.Bytes(), test.buf) {
			t.Errorf("WriteVarInt(%d): got %x, want %x", test.val, buf.Bytes(), test.buf)
		}

		got, err := ReadVarInt(bytes.NewReader(test.buf))
		if err != nil {
			t.Fatalf("ReadVarInt(%x): %s", test.buf, err)
		}
		if got != test.val {
			t.Errorf("ReadVarInt(%x): got %d, want %d", test.buf, got, test.val)
		}
	}
}

func TestReadVarIntShortRead(t *testing.T) {
	buf := []byte{0xfd, 0x01}
	if _, err := ReadVarInt(bytes.NewReader(buf)); err == nil {
		t.Error("ReadVarInt: expected error on truncated varint, got nil")
	}
}

func TestReadWriteElement(t *testing.T) {
	var buf bytes.Buffer
	want := uint32(123456)
	if err := writeElement(&buf, want); err != nil {
		t.Fatalf("writeElement: %s", err)
	}

	var got uint32
	if err := readElement(&buf, &got); err != nil {
		t.Fatalf("readElement: %s", err)
	}
	if got != want {
		t.Errorf("readElement: got %d, want %d", got, want)
	}
}

func TestVarBytes(t *testing.T) {
	want := []byte{0x01, 0x02, 0x03, 0x04}

	var buf bytes.Buffer
	if err := writeVarBytes(&buf, want); err != nil {
		t.Fatalf("writeVarBytes: %s", err)
	}

	got, err := readVarBytes(&buf, MaxMessagePayload, "test")
	if err != nil {
		t.Fatalf("readVarBytes: %s", err)
	}
	if !bytes.Equal(got, want) {
		t.Errorf("readVarBytes: got %x, want %x", got, want)
	}
}

func TestVarBytesExceedsMax(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteVarInt(&buf, 100); err != nil {
		t.Fatalf("WriteVarInt: %s", err)
	}
	buf.Write(make([]byte, 10))

	if _, err := readVarBytes(&buf, 50, "test"); err == nil {
		t.Error("readVarBytes: expected error when declared length exceeds max, got nil")
	}
}
