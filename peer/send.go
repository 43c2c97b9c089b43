package peer

import (
	"time"

	"github.com/btcp2p/conn/bitcoin"
	"github.com/btcp2p/conn/wire"

	"github.com/pkg/errors"
)

// sendVersion sends the local version announcement. Per the wire format,
// addr_me and addr_you are left as zero addresses: this codec doesn't track
// the local or remote socket address beyond the peer string used for
// connection identity.
func (c *Connection) sendVersion() error {
	msg := &wire.MsgVersion{
		Version:     c.localVersion,
		Services:    1,
		Timestamp:   uint64(time.Now().Unix()),
		Nonce:       c.localNonce,
		SubVersion:  c.localUserAgent,
		StartHeight: c.localStartHeight,
	}
	return c.sendMessage(msg)
}

// SendGetBlocks requests an inv of blocks following the caller's locator,
// stopping at stop (or after 500 blocks). Each locator hash must be exactly
// 32 bytes.
func (c *Connection) SendGetBlocks(locator []*bitcoin.Hash32, stop *bitcoin.Hash32) error {
	msg := wire.NewMsgGetBlocks(stop)
	msg.ProtocolVersion = c.SendVersion()
	for _, hash := range locator {
		if err := msg.AddLocatorHash(hash); err != nil {
			return err
		}
	}
	return c.sendMessage(msg)
}

// SendGetData requests the full objects named by invs.
func (c *Connection) SendGetData(invs []*wire.InvVect) error {
	msg := wire.NewMsgGetData()
	for _, iv := range invs {
		if err := msg.AddInvVect(iv); err != nil {
			return err
		}
	}
	return c.sendMessage(msg)
}

// SendGetAddr requests the peer's known address list.
func (c *Connection) SendGetAddr() error {
	c.stateLock.Lock()
	c.getaddrSent = true
	c.stateLock.Unlock()
	return c.sendMessage(&wire.MsgGetAddr{})
}

// GetAddrSent reports whether SendGetAddr has been called on this
// connection.
func (c *Connection) GetAddrSent() bool {
	c.stateLock.Lock()
	defer c.stateLock.Unlock()
	return c.getaddrSent
}

// SendInv announces objects this node has available.
func (c *Connection) SendInv(items []*wire.InvVect) error {
	msg := wire.NewMsgInv()
	for _, iv := range items {
		if err := msg.AddInvVect(iv); err != nil {
			return err
		}
	}
	return c.sendMessage(msg)
}

// SendTx sends a single transaction.
func (c *Connection) SendTx(tx *wire.MsgTx) error {
	return c.sendMessage(tx)
}

// SendBlock sends a full block.
func (c *Connection) SendBlock(block *wire.MsgBlock) error {
	return c.sendMessage(block)
}

// SendPing sends a keepalive probe. The nonce is only put on the wire if
// the peer's negotiated version supports BIP-31; pre-BIP0031 peers get a
// bare, payload-less ping, matching what they expect.
func (c *Connection) SendPing(nonce uint64) error {
	msg := &wire.MsgPing{}
	if c.SendVersion() >= wire.BIP0031Version {
		msg.HasNonce = true
		msg.Nonce = nonce
	}
	return c.sendMessage(msg)
}

// SendPong replies to a ping with the given nonce.
func (c *Connection) SendPong(nonce uint64) error {
	return c.sendMessage(&wire.MsgPong{Nonce: nonce})
}

// SendNotFound replies to a getdata request for objects this node doesn't
// have.
func (c *Connection) SendNotFound(invs []*wire.InvVect) error {
	msg := wire.NewMsgNotFound()
	for _, iv := range invs {
		if err := msg.AddInvVect(iv); err != nil {
			return err
		}
	}
	return c.sendMessage(msg)
}

// SendReject reports why a prior message from this peer was refused.
func (c *Connection) SendReject(reject *wire.MsgReject) error {
	return c.sendMessage(reject)
}

// SendMessage sends an arbitrary already-built Message. Serialization
// errors are returned to the caller rather than torn down into the
// connection: per the spec's error-handling design, a failed send stays
// local.
func (c *Connection) SendMessage(msg wire.Message) error {
	if msg == nil {
		return errors.New("nil message")
	}
	return c.sendMessage(msg)
}
