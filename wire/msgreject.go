package wire

import (
	"encoding/binary"
	"io"

	"github.com/btcp2p/conn/bitcoin"
)

// RejectCode represents the reason a message was rejected.
type RejectCode uint8

// Reject codes.
const (
	RejectMalformed   RejectCode = 0x01
	RejectInvalid     RejectCode = 0x10
	RejectObsolete    RejectCode = 0x11
	RejectDuplicate   RejectCode = 0x12
	RejectNonstandard RejectCode = 0x40
	RejectCheckpoint  RejectCode = 0x43
)

const maxRejectMessageLen = 12
const maxRejectReasonLen = 256

// MsgReject reports to a peer why a prior message of theirs was refused.
// Data names the offending object (a tx or block hash) when the rejected
// message was one of those; it is absent otherwise.
type MsgReject struct {
	Message string
	Code    RejectCode
	Reason  string
	Data    *bitcoin.Hash32
}

func (msg *MsgReject) Decode(r io.Reader) error {
	message, err := readVarBytes(r, maxRejectMessageLen, "reject message")
	if err != nil {
		return err
	}
	msg.Message = string(message)

	var code uint8
	if err := binary.Read(r, endian, &code); err != nil {
		return err
	}
	msg.Code = RejectCode(code)

	reason, err := readVarBytes(r, maxRejectReasonLen, "reject reason")
	if err != nil {
		return err
	}
	msg.Reason = string(reason)

	if msg.Message == CmdTx || msg.Message == CmdBlock {
		hash := &bitcoin.Hash32{}
		if _, err := io.ReadFull(r, hash[:]); err != nil {
			return err
		}
		msg.Data = hash
	} else {
		msg.Data = nil
	}

	return nil
}

func (msg *MsgReject) Encode(w io.Writer) error {
	if err := writeVarBytes(w, []byte(msg.Message)); err != nil {
		return err
	}

	if err := binary.Write(w, endian, uint8(msg.Code)); err != nil {
		return err
	}

	if err := writeVarBytes(w, []byte(msg.Reason)); err != nil {
		return err
	}

	if msg.Data != nil {
		if _, err := w.Write(msg.Data[:]); err != nil {
			return err
		}
	}

	return nil
}

func (msg *MsgReject) Command() string { return CmdReject }
