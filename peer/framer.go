package peer

import (
	"bufio"
	"encoding/binary"
	"io"

	"github.com/btcp2p/conn/bitcoin"
	"github.com/btcp2p/conn/wire"

	"github.com/pkg/errors"
)

// maxFramePayload bounds a single frame's declared length. A peer claiming
// more than this is either malicious or confused; the bytes are still
// consumed and discarded to keep the framer synchronized with the stream,
// but they are never decoded.
const maxFramePayload = 32 * 1024 * 1024

// ErrFrameLength is a frame-level error: the declared payload length was
// unreasonable, or fewer bytes arrived than were declared before the stream
// ended. The offending frame is discarded; the connection is not torn down.
var ErrFrameLength = errors.New("frame length error")

// ErrChecksum is a frame-level error: the payload's checksum did not match
// the one declared in the header. The offending frame is discarded; the
// connection is not torn down.
var ErrChecksum = errors.New("checksum mismatch")

// frame is one parsed envelope: a command name and its raw payload. The
// checksum itself is not retained past verification.
type frame struct {
	command string
	payload []byte
}

// readFrame implements the byte-stream framer: scan for magic, read the
// header, read the payload, verify the checksum if recvVer requires one.
// recvVer is read fresh by the caller for every call so that a version
// negotiated mid-connection takes effect on the very next frame.
//
// A returned error of type *wire.MessageError or one wrapping
// ErrFrameLength/ErrChecksum is a frame-level error: log it and call
// readFrame again for the next frame. Any other error is a transport error:
// the connection is over.
func (c *Connection) readFrame(r *bufio.Reader, recvVerChecksummed bool) (*frame, error) {
	garbage, err := scanForMagic(r, c.network)
	if err != nil {
		return nil, err
	}
	if garbage > 0 {
		c.emit(c.ctx, EventGarbage, Event{Conn: c, Peer: c.peer, GarbageLen: garbage})
	}

	var commandBytes [wire.CommandSize]byte
	if _, err := io.ReadFull(r, commandBytes[:]); err != nil {
		return nil, err
	}
	command := commandString(commandBytes)

	var lenBytes [4]byte
	if _, err := io.ReadFull(r, lenBytes[:]); err != nil {
		return nil, err
	}
	payloadLen := binary.LittleEndian.Uint32(lenBytes[:])

	var checksum [4]byte
	if recvVerChecksummed {
		if _, err := io.ReadFull(r, checksum[:]); err != nil {
			return nil, err
		}
	}

	if uint64(payloadLen) > maxFramePayload {
		// Still consume the declared length so the stream stays
		// synchronized for the next frame.
		if _, err := io.CopyN(io.Discard, r, int64(payloadLen)); err != nil {
			return nil, err
		}
		return nil, errors.Wrapf(ErrFrameLength, "%s: declared length %d exceeds max %d",
			command, payloadLen, maxFramePayload)
	}

	payload := make([]byte, payloadLen)
	if _, err := io.ReadFull(r, payload); err != nil {
		if err == io.ErrUnexpectedEOF || err == io.EOF {
			return nil, errors.Wrapf(ErrFrameLength, "%s: %s", command, err)
		}
		return nil, err
	}

	if recvVerChecksummed {
		sum := bitcoin.DoubleSha256(payload)
		if sum[0] != checksum[0] || sum[1] != checksum[1] || sum[2] != checksum[2] || sum[3] != checksum[3] {
			return nil, errors.Wrapf(ErrChecksum, "%s", command)
		}
	}

	return &frame{command: command, payload: payload}, nil
}

// scanForMagic consumes bytes until net's 4-byte magic is observed as a
// contiguous sequence, returning the count of bytes skipped before it.
func scanForMagic(r *bufio.Reader, net bitcoin.Network) (int, error) {
	magic := net.Bytes()
	var window [4]byte
	count := 0

	for {
		b, err := r.ReadByte()
		if err != nil {
			return count - min(count, 4), err
		}
		count++

		window[0], window[1], window[2] = window[1], window[2], window[3]
		window[3] = b

		if count >= 4 && window == magic {
			return count - 4, nil
		}
	}
}

// commandString strips trailing NUL padding and decodes the remainder as
// ASCII.
func commandString(b [wire.CommandSize]byte) string {
	n := len(b)
	for n > 0 && b[n-1] == 0 {
		n--
	}
	return string(b[:n])
}
