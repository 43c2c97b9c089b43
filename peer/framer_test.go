package peer

import (
	"bufio"
	"bytes"
	"io"
	"testing"

	"github.com/btcp2p/conn/bitcoin"
	"github.com/btcp2p/conn/wire"

	"github.com/pkg/errors"
)

func TestScanForMagicSkipsGarbage(t *testing.T) {
	net := bitcoin.MainNet
	magic := net.Bytes()

	var buf bytes.Buffer
	garbage := []byte{0x01, 0x02, 0x03, 0x04, 0x05}
	buf.Write(garbage)
	buf.Write(magic[:])

	skipped, err := scanForMagic(bufio.NewReader(&buf), net)
	if err != nil {
		t.Fatalf("scanForMagic: %s", err)
	}
	if skipped != len(garbage) {
		t.Errorf("skipped: got %d, want %d", skipped, len(garbage))
	}
}

func TestScanForMagicNoGarbage(t *testing.T) {
	net := bitcoin.MainNet
	magic := net.Bytes()

	skipped, err := scanForMagic(bufio.NewReader(bytes.NewReader(magic[:])), net)
	if err != nil {
		t.Fatalf("scanForMagic: %s", err)
	}
	if skipped != 0 {
		t.Errorf("skipped: got %d, want 0", skipped)
	}
}

func newTestConnection() *Connection {
	return newConnection(bitcoin.MainNet, "test", false, wire.ProtocolVersion, 1)
}

func TestReadFrameRoundTrip(t *testing.T) {
	var wireBuf bytes.Buffer
	payload := []byte{0x01, 0x02, 0x03}
	if err := writeFrame(&wireBuf, bitcoin.MainNet, wire.CmdPing, payload, true); err != nil {
		t.Fatalf("writeFrame: %s", err)
	}

	c := newTestConnection()
	f, err := c.readFrame(bufio.NewReader(&wireBuf), true)
	if err != nil {
		t.Fatalf("readFrame: %s", err)
	}
	if f.command != wire.CmdPing {
		t.Errorf("command: got %q, want %q", f.command, wire.CmdPing)
	}
	if !bytes.Equal(f.payload, payload) {
		t.Errorf("payload: got %x, want %x", f.payload, payload)
	}
}

func TestReadFrameNoChecksum(t *testing.T) {
	var wireBuf bytes.Buffer
	payload := []byte{0xaa}
	if err := writeFrame(&wireBuf, bitcoin.MainNet, wire.CmdPing, payload, false); err != nil {
		t.Fatalf("writeFrame: %s", err)
	}

	c := newTestConnection()
	f, err := c.readFrame(bufio.NewReader(&wireBuf), false)
	if err != nil {
		t.Fatalf("readFrame: %s", err)
	}
	if !bytes.Equal(f.payload, payload) {
		t.Errorf("payload: got %x, want %x", f.payload, payload)
	}
}

func TestReadFrameChecksumMismatch(t *testing.T) {
	var wireBuf bytes.Buffer
	if err := writeFrame(&wireBuf, bitcoin.MainNet, wire.CmdPing, []byte{0x01}, true); err != nil {
		t.Fatalf("writeFrame: %s", err)
	}

	raw := wireBuf.Bytes()
	raw[len(raw)-2] ^= 0xff // corrupt a checksum byte so it no longer matches the payload

	c := newTestConnection()
	_, err := c.readFrame(bufio.NewReader(bytes.NewReader(raw)), true)
	if errors.Cause(err) != ErrChecksum {
		t.Errorf("expected ErrChecksum, got %v", err)
	}
}

// zeroReader yields an endless stream of zero bytes, standing in for a
// peer's oversized payload without actually allocating it.
type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = 0
	}
	return len(p), nil
}

func TestReadFrameLengthExceeded(t *testing.T) {
	var header bytes.Buffer
	magic := bitcoin.MainNet.Bytes()
	header.Write(magic[:])

	var commandBytes [wire.CommandSize]byte
	copy(commandBytes[:], wire.CmdTx)
	header.Write(commandBytes[:])

	header.Write([]byte{0x10, 0x00, 0x00, 0x02}) // little endian, well over maxFramePayload

	c := newTestConnection()
	_, err := c.readFrame(bufio.NewReader(io.MultiReader(&header, zeroReader{})), false)
	if errors.Cause(err) != ErrFrameLength {
		t.Errorf("expected ErrFrameLength, got %v", err)
	}
}

func TestReadFrameTruncatedPayload(t *testing.T) {
	var wireBuf bytes.Buffer
	magic := bitcoin.MainNet.Bytes()
	wireBuf.Write(magic[:])

	var commandBytes [wire.CommandSize]byte
	copy(commandBytes[:], wire.CmdPing)
	wireBuf.Write(commandBytes[:])

	lenBytes := []byte{0x08, 0x00, 0x00, 0x00} // declares 8 bytes, but none follow
	wireBuf.Write(lenBytes)

	c := newTestConnection()
	_, err := c.readFrame(bufio.NewReader(&wireBuf), false)
	if errors.Cause(err) != ErrFrameLength {
		t.Errorf("expected ErrFrameLength, got %v", err)
	}
}
