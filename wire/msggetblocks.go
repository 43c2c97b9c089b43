package wire

import (
	"fmt"
	"io"

	"github.com/btcp2p/conn/bitcoin"
)

// MaxBlockLocatorsPerMsg is the maximum number of block locator hashes this
// codec will decode out of a single getblocks payload.
const MaxBlockLocatorsPerMsg = 500

// MsgGetBlocks requests an inv of blocks starting after the first hash in
// Locator the peer recognizes, up to Stop (or 500 blocks, whichever is
// first).
type MsgGetBlocks struct {
	ProtocolVersion uint32
	Locator         []*bitcoin.Hash32
	Stop            bitcoin.Hash32
}

func (msg *MsgGetBlocks) AddLocatorHash(hash *bitcoin.Hash32) error {
	if len(msg.Locator)+1 > MaxBlockLocatorsPerMsg {
		return messageError("MsgGetBlocks.AddLocatorHash", fmt.Sprintf(
			"too many block locator hashes for message [max %d]", MaxBlockLocatorsPerMsg))
	}
	msg.Locator = append(msg.Locator, hash)
	return nil
}

func (msg *MsgGetBlocks) Decode(r io.Reader) error {
	if err := readElement(r, &msg.ProtocolVersion); err != nil {
		return err
	}

	count, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	if count > MaxBlockLocatorsPerMsg {
		return messageError("MsgGetBlocks.Decode", fmt.Sprintf(
			"too many block locator hashes [count %d, max %d]", count, MaxBlockLocatorsPerMsg))
	}

	msg.Locator = make([]*bitcoin.Hash32, 0, count)
	for i := uint64(0); i < count; i++ {
		hash := &bitcoin.Hash32{}
		if err := readElement(r, hash); err != nil {
			return err
		}
		msg.Locator = append(msg.Locator, hash)
	}

	return readElement(r, &msg.Stop)
}

func (msg *MsgGetBlocks) Encode(w io.Writer) error {
	count := len(msg.Locator)
	if count > MaxBlockLocatorsPerMsg {
		return messageError("MsgGetBlocks.Encode", fmt.Sprintf(
			"too many block locator hashes for message [max %d]", MaxBlockLocatorsPerMsg))
	}

	if err := writeElement(w, msg.ProtocolVersion); err != nil {
		return err
	}

	if err := WriteVarInt(w, uint64(count)); err != nil {
		return err
	}
	for _, hash := range msg.Locator {
		if err := writeElement(w, hash); err != nil {
			return err
		}
	}

	return writeElement(w, &msg.Stop)
}

func (msg *MsgGetBlocks) Command() string { return CmdGetBlocks }

func NewMsgGetBlocks(stop *bitcoin.Hash32) *MsgGetBlocks {
	return &MsgGetBlocks{
		ProtocolVersion: ProtocolVersion,
		Locator:         make([]*bitcoin.Hash32, 0, MaxBlockLocatorsPerMsg),
		Stop:            *stop,
	}
}
