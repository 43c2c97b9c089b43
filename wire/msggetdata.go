package wire

import (
	"fmt"
	"io"
)

// MsgGetData requests the full objects named by a prior inv announcement.
type MsgGetData struct {
	InvList []*InvVect
}

func (msg *MsgGetData) AddInvVect(iv *InvVect) error {
	if len(msg.InvList)+1 > MaxInvPerMsg {
		return messageError("MsgGetData.AddInvVect", fmt.Sprintf(
			"too many inv vectors for message [max %d]", MaxInvPerMsg))
	}
	msg.InvList = append(msg.InvList, iv)
	return nil
}

func (msg *MsgGetData) Decode(r io.Reader) error {
	count, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	if count > MaxInvPerMsg {
		return messageError("MsgGetData.Decode", fmt.Sprintf(
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

func (msg *MsgGetData) Encode(w io.Writer) error {
	if len(msg.InvList) > MaxInvPerMsg {
		return messageError("MsgGetData.Encode", fmt.Sprintf(
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

func (msg *MsgGetData) Command() string { return CmdGetData }

func NewMsgGetData() *MsgGetData {
	return &MsgGetData{InvList: make([]*InvVect, 0, 1)}
}
