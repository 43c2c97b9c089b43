// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"fmt"
	"io"

	"github.com/btcp2p/conn/bitcoin"
)

// maxTxScriptSize bounds a single input/output script so a malformed
// varint-prefixed length can't force an unbounded allocation.
const maxTxScriptSize = MaxMessagePayload

// maxTxInOutPerMessage bounds how many inputs or outputs this codec will
// decode out of a single transaction.
const maxTxInOutPerMessage = MaxMessagePayload / 9

// OutPoint identifies a transaction output being spent: the transaction
// that created it and which of its outputs.
type OutPoint struct {
	Hash  bitcoin.Hash32
	Index uint32
}

func readOutPoint(r io.Reader, op *OutPoint) error {
	return readElements(r, &op.Hash, &op.Index)
}

func writeOutPoint(w io.Writer, op *OutPoint) error {
	return writeElements(w, &op.Hash, op.Index)
}

// TxIn is a transaction input: a reference to a previous output plus the
// unlocking script that spends it.
type TxIn struct {
	PreviousOutPoint OutPoint
	SignatureScript  []byte
	Sequence         uint32
}

func (t *TxIn) decode(r io.Reader) error {
	if err := readOutPoint(r, &t.PreviousOutPoint); err != nil {
		return err
	}

	script, err := readVarBytes(r, maxTxScriptSize, "signature script")
	if err != nil {
		return err
	}
	t.SignatureScript = script

	return readElement(r, &t.Sequence)
}

func (t *TxIn) encode(w io.Writer) error {
	if err := writeOutPoint(w, &t.PreviousOutPoint); err != nil {
		return err
	}
	if err := writeVarBytes(w, t.SignatureScript); err != nil {
		return err
	}
	return writeElement(w, t.Sequence)
}

// TxOut is a transaction output: an amount and the locking script that
// constrains who can later spend it.
type TxOut struct {
	Value    uint64
	PkScript []byte
}

func (t *TxOut) decode(r io.Reader) error {
	if err := readElement(r, &t.Value); err != nil {
		return err
	}

	script, err := readVarBytes(r, maxTxScriptSize, "public key script")
	if err != nil {
		return err
	}
	t.PkScript = script
	return nil
}

func (t *TxOut) encode(w io.Writer) error {
	if err := writeElement(w, t.Value); err != nil {
		return err
	}
	return writeVarBytes(w, t.PkScript)
}

// MsgTx is a bitcoin transaction: a set of inputs spending prior outputs
// and a set of new outputs they create.
type MsgTx struct {
	Version  uint32
	TxIn     []*TxIn
	TxOut    []*TxOut
	LockTime uint32
}

// SerializeSize returns the payload length of the transaction's wire
// encoding, recomputing it directly from the struct rather than trusting a
// cached value.
func (msg *MsgTx) SerializeSize() int {
	n := 4 + 4 // version + lock_time
	n += VarIntSerializeSize(uint64(len(msg.TxIn)))
	for _, ti := range msg.TxIn {
		n += bitcoin.Hash32Size + 4 + 4 // outpoint hash + index + sequence
		n += VarIntSerializeSize(uint64(len(ti.SignatureScript)))
		n += len(ti.SignatureScript)
	}
	n += VarIntSerializeSize(uint64(len(msg.TxOut)))
	for _, to := range msg.TxOut {
		n += 8
		n += VarIntSerializeSize(uint64(len(to.PkScript)))
		n += len(to.PkScript)
	}
	return n
}

func (msg *MsgTx) Decode(r io.Reader) error {
	if err := readElement(r, &msg.Version); err != nil {
		return err
	}

	inCount, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	if inCount > maxTxInOutPerMessage {
		return messageError("MsgTx.Decode", fmt.Sprintf(
			"too many transaction inputs [count %d, max %d]", inCount, maxTxInOutPerMessage))
	}

	msg.TxIn = make([]*TxIn, 0, inCount)
	for i := uint64(0); i < inCount; i++ {
		ti := &TxIn{}
		if err := ti.decode(r); err != nil {
			return err
		}
		msg.TxIn = append(msg.TxIn, ti)
	}

	outCount, err := ReadVarInt(r)
	if err != nil {
		return err
	}
	if outCount > maxTxInOutPerMessage {
		return messageError("MsgTx.Decode", fmt.Sprintf(
			"too many transaction outputs [count %d, max %d]", outCount, maxTxInOutPerMessage))
	}

	msg.TxOut = make([]*TxOut, 0, outCount)
	for i := uint64(0); i < outCount; i++ {
		to := &TxOut{}
		if err := to.decode(r); err != nil {
			return err
		}
		msg.TxOut = append(msg.TxOut, to)
	}

	return readElement(r, &msg.LockTime)
}

func (msg *MsgTx) Encode(w io.Writer) error {
	if err := writeElement(w, msg.Version); err != nil {
		return err
	}

	if err := WriteVarInt(w, uint64(len(msg.TxIn))); err != nil {
		return err
	}
	for _, ti := range msg.TxIn {
		if err := ti.encode(w); err != nil {
			return err
		}
	}

	if err := WriteVarInt(w, uint64(len(msg.TxOut))); err != nil {
		return err
	}
	for _, to := range msg.TxOut {
		if err := to.encode(w); err != nil {
			return err
		}
	}

	return writeElement(w, msg.LockTime)
}

func (msg *MsgTx) Command() string { return CmdTx }

func NewMsgTx() *MsgTx {
	return &MsgTx{
		Version: TxVersion,
		TxIn:    make([]*TxIn, 0, defaultTxInOutAlloc),
		TxOut:   make([]*TxOut, 0, defaultTxInOutAlloc),
	}
}

// TxVersion is the transaction version this codec produces by default.
const TxVersion = 1

// defaultTxInOutAlloc sizes the backing array for a new transaction's
// inputs/outputs to avoid reallocating for typical transaction sizes.
const defaultTxInOutAlloc = 15
