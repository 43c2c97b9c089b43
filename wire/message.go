// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"io"

	"github.com/pkg/errors"
)

// CommandSize is the fixed size of all commands in the message header.
// Shorter commands are zero padded on the right.
const CommandSize = 12

// Recognized commands. Anything else decodes to (nil, ErrUnknownCommand) and
// the caller drops it without emitting an event.
const (
	CmdVersion  = "version"
	CmdVerAck   = "verack"
	CmdGetAddr  = "getaddr"
	CmdAddr     = "addr"
	CmdGetBlocks = "getblocks"
	CmdInv      = "inv"
	CmdGetData  = "getdata"
	CmdNotFound = "notfound"
	CmdBlock    = "block"
	CmdTx       = "tx"
	CmdPing     = "ping"
	CmdPong     = "pong"
	CmdReject   = "reject"
)

// ErrUnknownCommand is returned by MakeEmptyMessage when the command string
// does not name one of the recognized commands. It is not a protocol error:
// the caller logs it at debug level and moves on without tearing down the
// connection.
var ErrUnknownCommand = errors.New("unknown command")

// Message is a type that can read and write its own wire payload. Decode and
// Encode operate on the payload only; framing (magic, command, length,
// checksum) is the connection layer's job, not the codec's.
type Message interface {
	// Decode populates the receiver from its wire payload, as read from r.
	Decode(r io.Reader) error

	// Encode writes the receiver's wire payload to w.
	Encode(w io.Writer) error

	// Command returns the literal command string used in the header.
	Command() string
}

// MakeEmptyMessage returns a zero-value Message for the given command, ready
// to have Decode called on it. It is the codec's dispatch table: the framer
// hands it a command string, this turns that into something with Decode.
func MakeEmptyMessage(command string) (Message, error) {
	switch command {
	case CmdVersion:
		return &MsgVersion{}, nil
	case CmdVerAck:
		return &MsgVerAck{}, nil
	case CmdGetAddr:
		return &MsgGetAddr{}, nil
	case CmdAddr:
		return &MsgAddr{}, nil
	case CmdGetBlocks:
		return &MsgGetBlocks{}, nil
	case CmdInv:
		return &MsgInv{}, nil
	case CmdGetData:
		return &MsgGetData{}, nil
	case CmdNotFound:
		return &MsgNotFound{}, nil
	case CmdBlock:
		return &MsgBlock{}, nil
	case CmdTx:
		return &MsgTx{}, nil
	case CmdPing:
		return &MsgPing{}, nil
	case CmdPong:
		return &MsgPong{}, nil
	case CmdReject:
		return &MsgReject{}, nil
	}

	return nil, errors.Wrap(ErrUnknownCommand, command)
}

// DecodePayload turns a framed (command, payload) pair into a typed Message.
// It is the entry point the connection layer calls once a frame has cleared
// the checksum check: construct the empty value for the command, decode the
// payload into it, and (for block) stamp the payload length that isn't
// otherwise present on the wire.
func DecodePayload(command string, payload []byte) (Message, error) {
	msg, err := MakeEmptyMessage(command)
	if err != nil {
		return nil, err
	}

	if err := msg.Decode(bytes.NewReader(payload)); err != nil {
		return nil, errors.Wrapf(err, "decode %s", command)
	}

	if block, ok := msg.(*MsgBlock); ok {
		block.Size = uint32(len(payload))
	}

	return msg, nil
}
