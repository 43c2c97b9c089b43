package wire

import (
	"fmt"
	"io"
)

// MsgNotFound is the reply to a getdata request for an object the peer no
// longer has or never had. Same wire shape as inv/getdata.
type MsgNotFound struct {
	InvList []*InvVect
}

func (msg *MsgNotFound) AddInvVect(iv *InvVect) error {
	if len(msg.InvList)+1 > MaxInvPerMsg {
		return messageError("MsgNotFound.AddInvVect", fmt.Sprintf(
			"too many inv vectors for message [max %d]", MaxInvPerMsg))
	}
	msg.InvList = append(msg.InvList, iv)
	return nil
}

func (msg *MsgNotFound) Decode(r io.Reader) error {
	count, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	if count > MaxInvPerMsg {
		return messageError("MsgNotFound.Decode", fmt.Sprintf(
			"too many inv vectors [count %d, max %d]", count, MaxInvPerMsg))
	}

	msg.InvList = make([]*InvVect, 0, count)
	for i := uint64(0); i < count; i++ {
		iv := &InvVect{}
		if err := readInvVect(r, iv); err != nil {
			return err
		}
		msg.InvList = append(msg.InvList, iv)
	}
	return nil
}

func (msg *MsgNotFound) Encode(w io.Writer) error {
	if len(msg.InvList) > MaxInvPerMsg {
		return messageError("MsgNotFound.Encode", fmt.Sprintf(
			"too many inv vectors for message [max %d]", MaxInvPerMsg))
	}

	if err := WriteVarInt(w, uint64(len(msg.InvList))); err != nil {
		return err
	}
	for _, iv := range msg.InvList {
		if err := writeInvVect(w, iv); err != nil {
			return err
		}
	}
	return nil
}

func (msg *MsgNotFound) Command() string { return CmdNotFound }

func NewMsgNotFound() *MsgNotFound {
	return &MsgNotFound{InvList: make([]*InvVect, 0, 1)}
}
