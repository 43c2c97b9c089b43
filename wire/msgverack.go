package wire

import "io"

// MsgVerAck acknowledges a version exchange. It carries no payload; sending
// it is what arms the Active state.
type MsgVerAck struct{}

func (msg *MsgVerAck) Decode(r io.Reader) error { return nil }
func (msg *MsgVerAck) Encode(w io.Writer) error { return nil }
func (msg *MsgVerAck) Command() string          { return CmdVerAck }
