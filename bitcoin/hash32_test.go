package bitcoin

import (
	"bytes"
	"testing"
)

func Test_Hash32_SetString_WrongSize(t *testing.T) {
	h := &Hash32{}
	if err := h.SetString("abcd"); err == nil {
		t.Fatalf("expected error for short hex string")
	}
}

func Test_Hash32_RoundTrip(t *testing.T) {
	text := "000000000019d6689c085ae165831e934ff763ae46a2a6c172b3f1b60a8ce26f"

	hash, err := NewHash32FromStr(text)
	if err != nil {
		t.Fatalf("NewHash32FromStr failed : %s", err)
	}

	got := hash.String()
	if got != text {
		t.Errorf("wrong string : got %s want %s", got, text)
	}

	other, err := NewHash32FromStr(text)
	if err != nil {
		t.Fatalf("NewHash32FromStr failed : %s", err)
	}
	if !hash.Equal(other) {
		t.Errorf("expected equal hashes")
	}
}

func Test_Hash32_Bytes_Reverse(t *testing.T) {
	var h Hash32
	for i := range h {
		h[i] = byte(i)
	}

	rev := h.ReverseBytes()
	if !bytes.Equal(rev, reverseCopy(h[:])) {
		t.Errorf("ReverseBytes mismatch")
	}
}

func reverseCopy(b []byte) []byte {
	r := make([]byte, len(b))
	for i, v := range b {
		r[len(b)-1-i] = v
	}
	return r
}
