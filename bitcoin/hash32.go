package bitcoin

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/pkg/errors"
)

const (
	// Hash32Size is the size in bytes of a Hash32.
	Hash32Size = 32
)

// Hash32 is a 32 byte hash in little endian format, used for tx ids, block
// ids, and merkle roots.
type Hash32 [Hash32Size]byte

// NewHash32 creates a hash from little endian bytes.
func NewHash32(b []byte) (*Hash32, error) {
	if len(b) != Hash32Size {
		return nil, errors.Wrapf(ErrWrongSize, "got %d, want %d", len(b), Hash32Size)
	}
	result := Hash32{}
	copy(result[:], b)
	return &result, nil
}

// NewHash32FromStr creates a little endian hash from a big endian hex string,
// the form used by block explorers and RPC output.
func NewHash32FromStr(s string) (*Hash32, error) {
	result := &Hash32{}
	if err := result.SetString(s); err != nil {
		return nil, err
	}
	return result, nil
}

// Bytes returns the data for the hash, little endian.
func (h Hash32) Bytes() []byte {
	return h[:]
}

// ReverseBytes returns the bytes in reverse order (big endian), the form
// used by hex string representations of hashes.
func (h Hash32) ReverseBytes() []byte {
	b := make([]byte, Hash32Size)
	for i, v := range h[:] {
		b[Hash32Size-1-i] = v
	}
	return b
}

// SetBytes sets the value of the hash from little endian bytes.
func (h *Hash32) SetBytes(b []byte) error {
	if len(b) != Hash32Size {
		return errors.Wrapf(ErrWrongSize, "got %d, want %d", len(b), Hash32Size)
	}
	copy(h[:], b)
	return nil
}

// SetString sets the value of the hash from a big endian hex string.
func (h *Hash32) SetString(s string) error {
	b, err := hex.DecodeString(s)
	if err != nil {
		return errors.Wrap(err, "hex")
	}
	if len(b) != Hash32Size {
		return errors.Wrapf(ErrWrongSize, "hex: got %d, want %d", len(b), Hash32Size)
	}

	for i, v := range b {
		h[Hash32Size-1-i] = v
	}
	return nil
}

// String returns the big endian hex representation of the hash.
func (h Hash32) String() string {
	return hex.EncodeToString(h.ReverseBytes())
}

// Equal returns true if the parameter has the same value. Either receiver
// may be nil.
func (h *Hash32) Equal(o *Hash32) bool {
	if h == nil {
		return o == nil
	}
	if o == nil {
		return false
	}
	return bytes.Equal(h[:], o[:])
}

// Copy returns a copy of the hash.
func (h Hash32) Copy() Hash32 {
	var c Hash32
	copy(c[:], h[:])
	return c
}

// IsZero returns true if the hash is all zero bytes.
func (h Hash32) IsZero() bool {
	var zero Hash32
	return h.Equal(&zero)
}

// Serialize writes the hash's little endian bytes to w.
func (h Hash32) Serialize(w io.Writer) error {
	_, err := w.Write(h[:])
	return err
}

// Deserialize reads the hash's little endian bytes from r.
func (h *Hash32) Deserialize(r io.Reader) error {
	_, err := io.ReadFull(r, h[:])
	return err
}

// MarshalText implements encoding.TextMarshaler.
func (h Hash32) MarshalText() ([]byte, error) {
	return []byte(h.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Hash32) UnmarshalText(text []byte) error {
	return h.SetString(string(text))
}

// GoString implements fmt.GoStringer for readable test failure output.
func (h Hash32) GoString() string {
	return fmt.Sprintf("bitcoin.Hash32(%q)", h.String())
}
