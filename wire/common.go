// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/btcp2p/conn/bitcoin"
)

// MaxMessagePayload is the maximum allowed size of a message payload this
// codec will decode. It exists to keep a malformed length-prefixed field
// from forcing an unbounded allocation.
const MaxMessagePayload = 32 * 1024 * 1024

var endian = binary.LittleEndian

// errNonCanonicalVarInt is the common format string used for non-canonically
// encoded variable length integer errors.
var errNonCanonicalVarInt = "non-canonical varint %x - discriminant %x must " +
	"encode a value greater than %x"

// readElement reads the next sequence of bytes from r using little endian
// depending on the concrete type of element pointed to.
func readElement(r io.Reader, element interface{}) error {
	switch e := element.(type) {
	case *uint32:
		var rv uint32
		if err := binary.Read(r, endian, &rv); err != nil {
			return err
		}
		*e = rv
		return nil

	case *uint64:
		var rv uint64
		if err := binary.Read(r, endian, &rv); err != nil {
			return err
		}
		*e = rv
		return nil

	case *[4]byte:
		_, err := io.ReadFull(r, e[:])
		return err

	case *[CommandSize]byte:
		_, err := io.ReadFull(r, e[:])
		return err

	case *[16]byte:
		_, err := io.ReadFull(r, e[:])
		return err

	case *bitcoin.Hash32:
		_, err := io.ReadFull(r, e[:])
		return err

	case *InvType:
		var rv uint32
		if err := binary.Read(r, endian, &rv); err != nil {
			return err
		}
		*e = InvType(rv)
		return nil
	}

	return binary.Read(r, endian, element)
}

// readElements reads multiple items from r. It is equivalent to multiple
// calls to readElement.
func readElements(r io.Reader, elements ...interface{}) error {
	for _, element := range elements {
		if err := readElement(r, element); err != nil {
			return err
		}
	}
	return nil
}

// writeElement writes the little endian representation of element to w.
func writeElement(w io.Writer, element interface{}) error {
	switch e := element.(type) {
	case uint32:
		return binary.Write(w, endian, e)

	case uint64:
		return binary.Write(w, endian, e)

	case [4]byte:
		_, err := w.Write(e[:])
		return err

	case [CommandSize]byte:
		_, err := w.Write(e[:])
		return err

	case [16]byte:
		_, err := w.Write(e[:])
		return err

	case *bitcoin.Hash32:
		_, err := w.Write(e[:])
		return err

	case InvType:
		return binary.Write(w, endian, uint32(e))
	}

	return binary.Write(w, endian, element)
}

// writeElements writes multiple items to w. It is equivalent to multiple
// calls to writeElement.
func writeElements(w io.Writer, elements ...interface{}) error {
	for _, element := range elements {
		if err := writeElement(w, element); err != nil {
			return err
		}
	}
	return nil
}

// ReadVarInt reads a variable length integer from r and returns it as a uint64.
func ReadVarInt(r io.Reader) (uint64, error) {
	var discriminant uint8
	if err := binary.Read(r, endian, &discriminant); err != nil {
		return 0, err
	}

	switch discriminant {
	case 0xff:
		var sv uint64
		if err := binary.Read(r, endian, &sv); err != nil {
			return 0, err
		}
		min := uint64(0x100000000)
		if sv < min {
			return 0, messageError("ReadVarInt", fmt.Sprintf(errNonCanonicalVarInt, sv, discriminant, min))
		}
		return sv, nil

	case 0xfe:
		var sv uint32
		if err := binary.Read(r, endian, &sv); err != nil {
			return 0, err
		}
		min := uint32(0x10000)
		if sv < min {
			return 0, messageError("ReadVarInt", fmt.Sprintf(errNonCanonicalVarInt, sv, discriminant, min))
		}
		return uint64(sv), nil

	case 0xfd:
		var sv uint16
		if err := binary.Read(r, endian, &sv); err != nil {
			return 0, err
		}
		min := uint16(0xfd)
		if sv < min {
			return 0, messageError("ReadVarInt", fmt.Sprintf(errNonCanonicalVarInt, sv, discriminant, min))
		}
		return uint64(sv), nil

	default:
		return uint64(discriminant), nil
	}
}

// WriteVarInt serializes val to w using the minimal number of bytes its
// value allows.
func WriteVarInt(w io.Writer, val uint64) error {
	if val < 0xfd {
		return binary.Write(w, endian, uint8(val))
	}

	if val <= math.MaxUint16 {
		if err := binary.Write(w, endian, uint8(0xfd)); err != nil {
			return err
		}
		return binary.Write(w, endian, uint16(val))
	}

	if val <= math.MaxUint32 {
		if err := binary.Write(w, endian, uint8(0xfe)); err != nil {
			return err
		}
		return binary.Write(w, endian, uint32(val))
	}

	if err := binary.Write(w, endian, uint8(0xff)); err != nil {
		return err
	}
	return binary.Write(w, endian, val)
}

// VarIntSerializeSize returns the number of bytes it would take to serialize
// val as a variable length integer.
func VarIntSerializeSize(val uint64) int {
	if val < 0xfd {
		return 1
	}
	if val <= math.MaxUint16 {
		return 3
	}
	if val <= math.MaxUint32 {
		return 5
	}
	return 9
}

// readVarBytes reads a variable length byte array: a varint length followed
// by that many bytes. maxAllowed guards against a malformed length forcing
// an unbounded allocation.
func readVarBytes(r io.Reader, maxAllowed uint64, fieldName string) ([]byte, error) {
	count, err := ReadVarInt(r)
	if err != nil {
		return nil, err
	}
	if count > maxAllowed {
		return nil, messageError("readVarBytes", fmt.Sprintf(
			"%s is too long [count %d, max %d]", fieldName, count, maxAllowed))
	}

	buf := make([]byte, count)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// writeVarBytes serializes b to w as a varint length followed by the bytes
// themselves.
func writeVarBytes(w io.Writer, b []byte) error {
	if err := WriteVarInt(w, uint64(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}
