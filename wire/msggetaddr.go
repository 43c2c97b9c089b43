package wire

import "io"

// MsgGetAddr requests a list of known active peers from the remote node.
// It carries no payload.
type MsgGetAddr struct{}

func (msg *MsgGetAddr) Decode(r io.Reader) error { return nil }
func (msg *MsgGetAddr) Encode(w io.Writer) error { return nil }
func (msg *MsgGetAddr) Command() string          { return CmdGetAddr }
