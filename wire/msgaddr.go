package wire

import (
	"fmt"
	"io"
)

// MaxAddrPerMsg is the maximum number of addresses this codec will retain
// out of a single addr message. A peer may declare more than this; every
// declared entry is still read off the wire to keep the framer in sync, but
// only the first MaxAddrPerMsg are kept.
const MaxAddrPerMsg = 1000

// MsgAddr is a list of known active peers, advertised in response to
// getaddr or gossiped unsolicited.
type MsgAddr struct {
	AddrList []*NetAddress
}

func (msg *MsgAddr) AddAddress(na *NetAddress) error {
	if len(msg.AddrList)+1 > MaxAddrPerMsg {
		return messageError("MsgAddr.AddAddress", fmt.Sprintf(
			"too many addresses for message [max %d]", MaxAddrPerMsg))
	}
	msg.AddrList = append(msg.AddrList, na)
	return nil
}

func (msg *MsgAddr) Decode(r io.Reader) error {
	count, err := ReadVarInt(r)
	if err != nil {
		return err
	}

	// The declared count may exceed what we keep. Every declared entry is
	// still read off the wire so the framer stays in sync with the next
	// frame; only the first MaxAddrPerMsg survive into AddrList.
	keep := count
	if keep > MaxAddrPerMsg {
		keep = MaxAddrPerMsg
	}
	msg.AddrList = make([]*NetAddress, 0, keep)
	for i := uint64(0); i < count; i++ {
		na := &NetAddress{}
		if err := readNetAddress(r, na, true); err != nil {
			return err
		}
		if uint64(len(msg.AddrList)) < MaxAddrPerMsg {
			msg.AddrList = append(msg.AddrList, na)
		}
	}
	return nil
}

func (msg *MsgAddr) Encode(w io.Writer) error {
	count := len(msg.AddrList)
	if count > MaxAddrPerMsg {
		return messageError("MsgAddr.Encode", fmt.Sprintf(
			"too many addresses for message [max %d]", MaxAddrPerMsg))
	}

	if err := WriteVarInt(w, uint64(count)); err != nil {
		return err
	}
	for _, na := range msg.AddrList {
		if err := writeNetAddress(w, na, true); err != nil {
			return err
		}
	}
	return nil
}

func (msg *MsgAddr) Command() string { return CmdAddr }

func NewMsgAddr() *MsgAddr {
	return &MsgAddr{AddrList: make([]*NetAddress, 0, 1)}
}
