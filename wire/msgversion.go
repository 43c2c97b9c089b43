package wire

import (
	"bytes"
	"fmt"
	"io"
)

// ProtocolVersion is the version this codec advertises in outbound version
// messages.
const ProtocolVersion = 70001

// MaxSubVersionLen bounds the NUL-terminated sub-version string so a
// malformed peer can't force an unbounded read.
const MaxSubVersionLen = 256

// MsgVersion is a peer's self-announcement, exchanged once at the start of
// a connection to negotiate the protocol version used for everything after.
type MsgVersion struct {
	Version     uint32
	Services    uint64
	Timestamp   uint64
	AddrMe      NetAddress
	AddrYou     NetAddress
	Nonce       uint64
	SubVersion  string
	StartHeight uint32
}

func (msg *MsgVersion) Decode(r io.Reader) error {
	if err := readElements(r, &msg.Version, &msg.Services, &msg.Timestamp); err != nil {
		return err
	}

	if err := readNetAddress(r, &msg.AddrMe, false); err != nil {
		return err
	}
	if err := readNetAddress(r, &msg.AddrYou, false); err != nil {
		return err
	}

	if err := readElement(r, &msg.Nonce); err != nil {
		return err
	}

	sub, err := readNulTerminatedString(r, MaxSubVersionLen)
	if err != nil {
		return err
	}
	msg.SubVersion = sub

	return readElement(r, &msg.StartHeight)
}

func (msg *MsgVersion) Encode(w io.Writer) error {
	if len(msg.SubVersion) >= MaxSubVersionLen {
		return messageError("MsgVersion.Encode", fmt.Sprintf(
			"sub-version too long [len %d, max %d]", len(msg.SubVersion), MaxSubVersionLen))
	}

	if err := writeElements(w, msg.Version, msg.Services, msg.Timestamp); err != nil {
		return err
	}

	if err := writeNetAddress(w, &msg.AddrMe, false); err != nil {
		return err
	}
	if err := writeNetAddress(w, &msg.AddrYou, false); err != nil {
		return err
	}

	if err := writeElement(w, msg.Nonce); err != nil {
		return err
	}

	if _, err := w.Write(append([]byte(msg.SubVersion), 0x00)); err != nil {
		return err
	}

	return writeElement(w, msg.StartHeight)
}

func (msg *MsgVersion) Command() string { return CmdVersion }

// readNulTerminatedString reads bytes one at a time until (and including) a
// NUL byte, returning everything before it. This is the pre-varstring
// encoding the version message's sub-version field uses.
func readNulTerminatedString(r io.Reader, maxLen int) (string, error) {
	var buf bytes.Buffer
	var b [1]byte
	for {
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return "", err
		}
		if b[0] == 0x00 {
			return buf.String(), nil
		}
		if buf.Len() >= maxLen {
			return "", messageError("readNulTerminatedString", fmt.Sprintf(
				"string exceeds max length %d without a NUL terminator", maxLen))
		}
		buf.WriteByte(b[0])
	}
}
