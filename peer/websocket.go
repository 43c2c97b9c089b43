package peer

import (
	"context"
	"io"

	"github.com/btcp2p/conn/bitcoin"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

// wsConn adapts a *websocket.Conn to io.ReadWriteCloser, the collaborator
// interface the framer and frame writer consume. Each binary websocket
// frame is treated as a chunk of the same byte stream the TCP transport
// would have produced; message boundaries on the wire protocol still come
// from magic-scanning, not from websocket frame boundaries.
type wsConn struct {
	conn    *websocket.Conn
	reader  io.Reader
}

func newWSConn(conn *websocket.Conn) *wsConn {
	return &wsConn{conn: conn}
}

func (w *wsConn) Read(p []byte) (int, error) {
	for {
		if w.reader != nil {
			n, err := w.reader.Read(p)
			if err == io.EOF {
				w.reader = nil
				if n > 0 {
					return n, nil
				}
				continue
			}
			return n, err
		}

		msgType, r, err := w.conn.NextReader()
		if err != nil {
			return 0, err
		}
		if msgType != websocket.BinaryMessage {
			continue
		}
		w.reader = r
	}
}

func (w *wsConn) Write(p []byte) (int, error) {
	if err := w.conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (w *wsConn) Close() error {
	return w.conn.Close()
}

// DialWebSocket opens an outbound connection over a websocket instead of a
// raw TCP socket, for peers exposed behind an HTTP(S) front end. Everything
// above the transport -- framing, the codec, the handshake -- is unchanged.
func DialWebSocket(ctx context.Context, network bitcoin.Network, url string, localVersion uint32,
	localNonce uint64, opts ...Option) (*Connection, error) {

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "dial websocket")
	}

	c := newConnection(network, url, false, localVersion, localNonce, opts...)
	c.start(ctx, newWSConn(conn))

	if err := c.sendVersion(); err != nil {
		c.Close()
		return nil, errors.Wrap(err, "send version")
	}
	c.emit(c.ctx, EventConnect, Event{Conn: c, Peer: c.peer})

	return c, nil
}
