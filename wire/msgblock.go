package wire

import (
	"fmt"
	"io"

	"github.com/btcp2p/conn/bitcoin"
)

// maxTxPerBlock bounds how many transactions this codec will decode out of
// a single block payload.
const maxTxPerBlock = MaxMessagePayload / minTxPayload

// minTxPayload is the smallest a serialized transaction can be: version (4)
// + two single-byte varint counts + lock_time (4).
const minTxPayload = 10

// BlockHeader is the fixed-size portion of a block: everything but the
// transaction list.
type BlockHeader struct {
	Version    uint32
	PrevHash   bitcoin.Hash32
	MerkleRoot bitcoin.Hash32
	Timestamp  uint32
	Bits       uint32
	Nonce      uint32
}

func (h *BlockHeader) decode(r io.Reader) error {
	return readElements(r, &h.Version, &h.PrevHash, &h.MerkleRoot, &h.Timestamp, &h.Bits, &h.Nonce)
}

func (h *BlockHeader) encode(w io.Writer) error {
	return writeElements(w, h.Version, &h.PrevHash, &h.MerkleRoot, h.Timestamp, h.Bits, h.Nonce)
}

// MsgBlock is a full block: a header plus the transactions it contains.
// This codec only structurally parses a block; it does not verify the
// merkle root or proof of work.
type MsgBlock struct {
	BlockHeader
	Transactions []*MsgTx

	// Size is the payload's byte length, stamped in by DecodePayload since
	// the wire format itself carries no such field. Zero on a block built
	// locally and not yet encoded.
	Size uint32
}

func (msg *MsgBlock) Decode(r io.Reader) error {
	if err := msg.BlockHeader.decode(r); err != nil {
		return err
	}

	count, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	if count > maxTxPerBlock {
		return messageError("MsgBlock.Decode", fmt.Sprintf(
			"too many transactions to fit into a block [count %d, max %d]", count, maxTxPerBlock))
	}

	msg.Transactions = make([]*MsgTx, 0, count)
	for i := uint64(0); i < count; i++ {
		tx := &MsgTx{}
		if err := tx.Decode(r); err != nil {
			return err
		}
		msg.Transactions = append(msg.Transactions, tx)
	}

	return nil
}

func (msg *MsgBlock) Encode(w io.Writer) error {
	if err := msg.BlockHeader.encode(w); err != nil {
		return err
	}

	if err := WriteVarInt(w, uint64(len(msg.Transactions))); err != nil {
		return err
	}
	for _, tx := range msg.Transactions {
		if err := tx.Encode(w); err != nil {
			return err
		}
	}
	return nil
}

func (msg *MsgBlock) Command() string { return CmdBlock }

func (msg *MsgBlock) AddTransaction(tx *MsgTx) error {
	if len(msg.Transactions)+1 > maxTxPerBlock {
		return messageError("MsgBlock.AddTransaction", fmt.Sprintf(
			"too many transactions for block [max %d]", maxTxPerBlock))
	}
	msg.Transactions = append(msg.Transactions, tx)
	return nil
}

func NewMsgBlock(header *BlockHeader) *MsgBlock {
	return &MsgBlock{
		BlockHeader:  *header,
		Transactions: make([]*MsgTx, 0, 256),
	}
}
