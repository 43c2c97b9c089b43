package wire

import (
	"fmt"
	"io"
)

// MaxInvPerMsg is the maximum number of inventory vectors this codec will
// decode out of a single inv/getdata/notfound payload. It bounds the
// allocation a malformed count field could otherwise force.
const MaxInvPerMsg = 50000

// MsgInv announces objects the sender claims to have available.
type MsgInv struct {
	InvList []*InvVect
}

func (msg *MsgInv) AddInvVect(iv *InvVect) error {
	if len(msg.InvList)+1 > MaxInvPerMsg {
		return messageError("MsgInv.AddInvVect", fmt.Sprintf(
			"too many inv vectors for message [max %d]", MaxInvPerMsg))
	}
	msg.InvList = append(msg.InvList, iv)
	return nil
}

func (msg *MsgInv) Decode(r io.Reader) error {
	count, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	if count > MaxInvPerMsg {
		return messageError("MsgInv.Decode", fmt.Sprintf(
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

func (msg *MsgInv) Encode(w io.Writer) error {
	if len(msg.InvList) > MaxInvPerMsg {
		return messageError("MsgInv.Encode", fmt.Sprintf(
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

func (msg *MsgInv) Command() string { return CmdInv }

// NewMsgInv returns a new empty inv message ready to have inventory vectors
// added via AddInvVect.
func NewMsgInv() *MsgInv {
	return &MsgInv{InvList: make([]*InvVect, 0, 1)}
}
