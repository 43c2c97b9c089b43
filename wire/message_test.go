package wire

import (
	"bytes"
	"testing"

	"github.com/btcp2p/conn/bitcoin"

	"github.com/davecgh/go-spew/spew"
	"github.com/go-test/deep"
)

func assertRoundTrip(t *testing.T, msg Message, want Message) {
	t.Helper()

	var buf bytes.Buffer
	if err := msg.Encode(&buf); err != nil {
		t.Fatalf("%s: Encode: %s", msg.Command(), err)
	}

	decoded, err := MakeEmptyMessage(msg.Command())
	if err != nil {
		t.Fatalf("%s: MakeEmptyMessage: %s", msg.Command(), err)
	}
	if err := decoded.Decode(&buf); err != nil {
		t.Fatalf("%s: Decode: %s", msg.Command(), err)
	}

	if diff := deep.Equal(decoded, want); diff != nil {
		t.Errorf("%s: round trip mismatch: %v\ngot:  %s\nwant: %s",
			msg.Command(), diff, spew.Sdump(decoded), spew.Sdump(want))
	}
}

func TestMsgVersionRoundTrip(t *testing.T) {
	msg := &MsgVersion{
		Version:     ProtocolVersion,
		Services:    1,
		Timestamp:   1732000000,
		Nonce:       123456789,
		SubVersion:  "/btcp2p:0.1.0/",
		StartHeight: 500000,
	}
	assertRoundTrip(t, msg, msg)
}

func TestMsgVersionSubVersionTooLong(t *testing.T) {
	msg := &MsgVersion{SubVersion: string(make([]byte, MaxSubVersionLen))}
	var buf bytes.Buffer
	if err := msg.Encode(&buf); err == nil {
		t.Error("Encode: expected error for over-long sub-version, got nil")
	}
}

func TestMsgVerAckRoundTrip(t *testing.T) {
	assertRoundTrip(t, &MsgVerAck{}, &MsgVerAck{})
}

func TestMsgPingPongRoundTrip(t *testing.T) {
	assertRoundTrip(t, &MsgPing{HasNonce: true, Nonce: 42}, &MsgPing{HasNonce: true, Nonce: 42})
	assertRoundTrip(t, &MsgPong{Nonce: 42}, &MsgPong{Nonce: 42})
}

// TestMsgPingLegacyNoNonce verifies a pre-BIP0031 ping, with no nonce
// payload at all, decodes to HasNonce false rather than erroring.
func TestMsgPingLegacyNoNonce(t *testing.T) {
	var buf bytes.Buffer
	msg := &MsgPing{}
	if err := msg.Encode(&buf); err != nil {
		t.Fatalf("Encode: %s", err)
	}
	if buf.Len() != 0 {
		t.Errorf("legacy ping payload length: got %d, want 0", buf.Len())
	}

	decoded := &MsgPing{}
	if err := decoded.Decode(&buf); err != nil {
		t.Fatalf("Decode: %s", err)
	}
	if decoded.HasNonce {
		t.Error("expected HasNonce false for an empty ping payload")
	}
}

func TestMsgGetAddrRoundTrip(t *testing.T) {
	assertRoundTrip(t, &MsgGetAddr{}, &MsgGetAddr{})
}

func TestMsgAddrRoundTrip(t *testing.T) {
	msg := NewMsgAddr()
	for i := 0; i < 3; i++ {
		na := &NetAddress{Time: uint32(i), Services: 1, Port: uint16(8333 + i)}
		if err := msg.AddAddress(na); err != nil {
			t.Fatalf("AddAddress: %s", err)
		}
	}
	assertRoundTrip(t, msg, msg)
}

// TestMsgAddrClamp verifies that a declared count over MaxAddrPerMsg is
// still fully consumed off the wire, but only the first MaxAddrPerMsg
// entries are kept.
func TestMsgAddrClamp(t *testing.T) {
	const declared = MaxAddrPerMsg + 10

	var buf bytes.Buffer
	if err := WriteVarInt(&buf, declared); err != nil {
		t.Fatalf("WriteVarInt: %s", err)
	}
	for i := 0; i < declared; i++ {
		na := &NetAddress{Services: 1, Port: uint16(i % 65536)}
		if err := writeNetAddress(&buf, na, true); err != nil {
			t.Fatalf("writeNetAddress %d: %s", i, err)
		}
	}

	msg := &MsgAddr{}
	if err := msg.Decode(&buf); err != nil {
		t.Fatalf("Decode: %s", err)
	}

	if len(msg.AddrList) != MaxAddrPerMsg {
		t.Errorf("AddrList length: got %d, want %d", len(msg.AddrList), MaxAddrPerMsg)
	}
	if buf.Len() != 0 {
		t.Errorf("trailing unread bytes after clamp: %d", buf.Len())
	}
}

func TestMsgGetBlocksRoundTrip(t *testing.T) {
	var stop bitcoin.Hash32
	for i := range stop {
		stop[i] = byte(i)
	}

	msg := NewMsgGetBlocks(&stop)
	for i := 0; i < 2; i++ {
		var h bitcoin.Hash32
		h[0] = byte(i + 1)
		if err := msg.AddLocatorHash(&h); err != nil {
			t.Fatalf("AddLocatorHash: %s", err)
		}
	}
	assertRoundTrip(t, msg, msg)
}

func TestMsgInvRoundTrip(t *testing.T) {
	msg := NewMsgInv()
	var h bitcoin.Hash32
	h[0] = 0xaa
	if err := msg.AddInvVect(&InvVect{Type: InvTypeTx, Hash: h}); err != nil {
		t.Fatalf("AddInvVect: %s", err)
	}
	assertRoundTrip(t, msg, msg)
}

func TestMsgTxRoundTrip(t *testing.T) {
	var prevHash bitcoin.Hash32
	prevHash[0] = 0x01

	msg := NewMsgTx()
	msg.Version = TxVersion
	msg.TxIn = append(msg.TxIn, &TxIn{
		PreviousOutPoint: OutPoint{Hash: prevHash, Index: 0},
		SignatureScript:  []byte{0x01, 0x02},
		Sequence:         0xffffffff,
	})
	msg.TxOut = append(msg.TxOut, &TxOut{
		Value:    5000000000,
		PkScript: []byte{0x76, 0xa9, 0x14},
	})

	assertRoundTrip(t, msg, msg)
}

func TestMsgBlockRoundTrip(t *testing.T) {
	header := &BlockHeader{
		Version: 1,
		Bits:    0x1d00ffff,
		Nonce:   2083236893,
	}
	msg := NewMsgBlock(header)

	tx := NewMsgTx()
	tx.Version = TxVersion
	tx.TxOut = append(tx.TxOut, &TxOut{Value: 5000000000, PkScript: []byte{0x51}})
	msg.AddTransaction(tx)

	var buf bytes.Buffer
	if err := msg.Encode(&buf); err != nil {
		t.Fatalf("Encode: %s", err)
	}

	decoded := &MsgBlock{}
	if err := decoded.Decode(&buf); err != nil {
		t.Fatalf("Decode: %s", err)
	}

	if diff := deep.Equal(decoded.BlockHeader, msg.BlockHeader); diff != nil {
		t.Errorf("header mismatch: %v", diff)
	}
	if len(decoded.Transactions) != 1 {
		t.Fatalf("transaction count: got %d, want 1", len(decoded.Transactions))
	}
}

func TestDecodePayloadStampsBlockSize(t *testing.T) {
	header := &BlockHeader{Version: 1}
	msg := NewMsgBlock(header)

	var buf bytes.Buffer
	if err := msg.Encode(&buf); err != nil {
		t.Fatalf("Encode: %s", err)
	}
	payload := buf.Bytes()

	decoded, err := DecodePayload(CmdBlock, payload)
	if err != nil {
		t.Fatalf("DecodePayload: %s", err)
	}

	block, ok := decoded.(*MsgBlock)
	if !ok {
		t.Fatalf("DecodePayload: got %T, want *MsgBlock", decoded)
	}
	if block.Size != uint32(len(payload)) {
		t.Errorf("block size: got %d, want %d", block.Size, len(payload))
	}
}

func TestDecodePayloadUnknownCommand(t *testing.T) {
	if _, err := DecodePayload("bogus", nil); err == nil {
		t.Error("DecodePayload: expected error for unknown command, got nil")
	}
}

func TestMsgRejectRoundTrip(t *testing.T) {
	var txid bitcoin.Hash32
	txid[0] = 0x07

	msg := &MsgReject{
		Message: CmdTx,
		Code:    RejectDuplicate,
		Reason:  "already have transaction",
		Data:    &txid,
	}
	assertRoundTrip(t, msg, msg)
}
