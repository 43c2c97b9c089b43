package wire

import "io"

// MsgPong replies to a ping carrying a nonce, letting the sender correlate
// the reply with a specific probe.
type MsgPong struct {
	Nonce uint64
}

func (msg *MsgPong) Decode(r io.Reader) error {
	return readElement(r, &msg.Nonce)
}

func (msg *MsgPong) Encode(w io.Writer) error {
	return writeElement(w, msg.Nonce)
}

func (msg *MsgPong) Command() string { return CmdPong }
