package peer

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/btcp2p/conn/bitcoin"
	"github.com/btcp2p/conn/wire"

	"github.com/pkg/errors"
)

// writeFrame envelopes command/payload and writes it to w: magic, command,
// length, an optional checksum gated by withChecksum, then the payload.
func writeFrame(w io.Writer, network bitcoin.Network, command string, payload []byte, withChecksum bool) error {
	if len(command) > wire.CommandSize {
		return errors.Errorf("command too long: %q exceeds %d bytes", command, wire.CommandSize)
	}

	var buf bytes.Buffer
	magic := network.Bytes()
	buf.Write(magic[:])

	var commandBytes [wire.CommandSize]byte
	copy(commandBytes[:], command)
	buf.Write(commandBytes[:])

	var lenBytes [4]byte
	binary.LittleEndian.PutUint32(lenBytes[:], uint32(len(payload)))
	buf.Write(lenBytes[:])

	if withChecksum {
		sum := bitcoin.DoubleSha256(payload)
		buf.Write(sum[:4])
	}

	buf.Write(payload)

	_, err := w.Write(buf.Bytes())
	return err
}

// encodePayload serializes msg's wire payload to a byte slice, the form
// writeFrame needs.
func encodePayload(msg wire.Message) ([]byte, error) {
	var buf bytes.Buffer
	if err := msg.Encode(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
