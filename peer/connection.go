package peer

import (
	"bufio"
	"context"
	"io"
	"net"
	"sync"

	"github.com/btcp2p/conn/bitcoin"
	"github.com/btcp2p/conn/threads"
	"github.com/btcp2p/conn/wire"
	"github.com/btcp2p/conn/wirelog"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// checksumVersion is the protocol version at and after which frames carry a
// checksum, on both receive and send.
const checksumVersion = 209

// SubSystem identifies this package's log entries to wirelog.Config.EnableSubSystem.
const SubSystem = "Peer"

// State is the handshake state of a Connection.
type State int

const (
	StateFresh State = iota
	StateVersionExchanged
	StateActive
)

func (s State) String() string {
	switch s {
	case StateFresh:
		return "fresh"
	case StateVersionExchanged:
		return "version_exchanged"
	case StateActive:
		return "active"
	default:
		return "unknown"
	}
}

// Connection is a session with one remote peer: the framer, the codec, the
// handshake state machine, and the event dispatcher all operate on it. All
// inbound bytes for a Connection are processed on a single goroutine; all
// outbound sends serialize through writeLock.
type Connection struct {
	ID      uuid.UUID
	peer    string
	inbound bool
	network bitcoin.Network

	localVersion     uint32
	localNonce       uint64
	localUserAgent   string
	localStartHeight uint32

	rw io.ReadWriteCloser

	handlersLock sync.Mutex
	handlers     map[string][]Handler

	stateLock sync.Mutex
	state     State
	recvVer   uint32
	sendVer   uint32
	active    bool
	bestHeight uint32
	getaddrSent bool

	// expectVerackRaisesRecvVer arms the deferred recvVer update: once the
	// peer's version is >= checksumVersion, recvVer is NOT bumped until
	// verack arrives, so checksums don't turn on until the handshake
	// actually finishes.
	expectVerackRaisesRecvVer bool
	pendingRecvVer            uint32

	writeLock sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	closed *threads.AtomicFlag
}

// Option configures a Connection at construction time.
type Option func(*Connection)

// WithInitialVersion sets recvVer and sendVer to v from the moment the
// Connection is created, instead of the 0 default. Only use this when every
// peer this Connection will ever talk to is known to speak protocol v or
// newer: if a legacy peer connects, recvVer would have to move backward to
// honor its version, violating the non-decreasing invariant.
func WithInitialVersion(v uint32) Option {
	return func(c *Connection) {
		c.recvVer = v
		c.sendVer = v
	}
}

// WithUserAgent overrides the sub-version string sent in the outbound
// version message. Default is empty.
func WithUserAgent(ua string) Option {
	return func(c *Connection) { c.localUserAgent = ua }
}

// WithStartHeight overrides the claimed chain tip sent in the outbound
// version message. Default is the spec's placeholder sentinel value of 10.
func WithStartHeight(h uint32) Option {
	return func(c *Connection) { c.localStartHeight = h }
}

func newConnection(network bitcoin.Network, peerAddr string, inbound bool, localVersion uint32,
	localNonce uint64, opts ...Option) *Connection {

	c := &Connection{
		ID:               uuid.New(),
		peer:             peerAddr,
		inbound:          inbound,
		network:          network,
		localVersion:     localVersion,
		localNonce:       localNonce,
		localStartHeight: 10, // spec sentinel; override with WithStartHeight
		handlers:         make(map[string][]Handler),
		done:             make(chan struct{}),
		closed:           threads.NewAtomicFlag(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Dial opens an outbound TCP connection to addr and starts the connection's
// read loop. The local version message is sent before Dial returns; the
// EventConnect handlers fire after it's on the wire.
func Dial(ctx context.Context, network bitcoin.Network, addr string, localVersion uint32,
	localNonce uint64, opts ...Option) (*Connection, error) {

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, errors.Wrap(err, "dial")
	}

	c := newConnection(network, addr, false, localVersion, localNonce, opts...)
	c.start(ctx, conn)

	if err := c.sendVersion(); err != nil {
		c.Close()
		return nil, errors.Wrap(err, "send version")
	}
	c.emit(c.ctx, EventConnect, Event{Conn: c, Peer: c.peer})

	return c, nil
}

// Accept wraps an already-accepted inbound net.Conn as a Connection and
// starts its read loop. The caller is responsible for listening and
// accepting; Accept only takes over the resulting socket. Like Dial, it
// sends the local version message before returning so either side of the
// handshake can initiate.
func Accept(ctx context.Context, network bitcoin.Network, conn net.Conn, localVersion uint32,
	localNonce uint64, opts ...Option) (*Connection, error) {

	c := newConnection(network, conn.RemoteAddr().String(), true, localVersion, localNonce, opts...)
	c.start(ctx, conn)

	if err := c.sendVersion(); err != nil {
		c.Close()
		return nil, errors.Wrap(err, "send version")
	}
	c.emit(c.ctx, EventConnect, Event{Conn: c, Peer: c.peer})

	return c, nil
}

func (c *Connection) start(ctx context.Context, rw io.ReadWriteCloser) {
	c.rw = rw
	ctx = wirelog.ContextWithLogSubSystem(ctx, SubSystem)
	ctx = wirelog.ContextWithLogFields(ctx, wirelog.String("peer", c.peer))
	c.ctx, c.cancel = context.WithCancel(ctx)
	go c.readLoop()
}

// Close ends the connection's socket and read loop. Safe to call more than
// once: the atomic flag guards the underlying socket close against being
// issued twice.
func (c *Connection) Close() {
	if c.closed.IsSet() {
		return
	}
	c.closed.Set()
	c.cancel()
	c.rw.Close()
}

// Stop implements threads.Stopper so a Connection can be added to a
// threads.StopCombiner alongside a process's other stoppable resources.
func (c *Connection) Stop(ctx context.Context) {
	c.Close()
}

// Done returns a channel that's closed once the read loop has exited.
func (c *Connection) Done() <-chan struct{} { return c.done }

// Peer returns the remote address identifying this session.
func (c *Connection) Peer() string { return c.peer }

// Inbound reports whether the remote end initiated this connection.
func (c *Connection) Inbound() bool { return c.inbound }

func (c *Connection) readLoop() {
	defer close(c.done)

	reader := bufio.NewReader(c.rw)
	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		checksummed := c.recvVerChecksummed()

		f, err := c.readFrame(reader, checksummed)
		if err != nil {
			if isFrameError(err) {
				wirelog.Warn(c.ctx, "frame error: %s", err)
				c.emit(c.ctx, EventFrameError, Event{Conn: c, Peer: c.peer, Err: err})
				continue
			}

			// Transport error: the connection is over. A clean EOF carries a
			// nil Err on the disconnect event; anything else carries the
			// triggering error so a caller can tell "peer hung up" from
			// "read error" without also registering an EventError handler.
			c.emit(c.ctx, EventError, Event{Conn: c, Peer: c.peer, Err: err})
			disconnectErr := err
			if errors.Cause(err) == io.EOF {
				disconnectErr = nil
			}
			c.emit(c.ctx, EventDisconnect, Event{Conn: c, Peer: c.peer, Err: disconnectErr})
			c.Close()
			return
		}

		c.handleFrame(f)
	}
}

func isFrameError(err error) bool {
	cause := errors.Cause(err)
	return cause == ErrFrameLength || cause == ErrChecksum
}

func (c *Connection) recvVerChecksummed() bool {
	c.stateLock.Lock()
	defer c.stateLock.Unlock()
	return c.recvVer >= checksumVersion
}

func (c *Connection) sendVerChecksummed() bool {
	c.stateLock.Lock()
	defer c.stateLock.Unlock()
	return c.sendVer >= checksumVersion
}

// handleFrame decodes one frame's payload and either drives the handshake
// state machine (version/verack) or dispatches a plain command event.
// Decode errors and unknown commands are logged and otherwise swallowed:
// the connection continues per the codec's error-handling contract.
func (c *Connection) handleFrame(f *frame) {
	msg, err := wire.DecodePayload(f.command, f.payload)
	if err != nil {
		fields := []wirelog.Field{wirelog.String("command", f.command)}
		if errors.Cause(err) == wire.ErrUnknownCommand {
			wirelog.DebugWithFields(c.ctx, fields, "dropping unknown command")
			return
		}
		wirelog.WarnWithFields(c.ctx, fields, "codec error: %s", err)
		return
	}

	switch m := msg.(type) {
	case *wire.MsgVersion:
		c.handleVersion(m)
	case *wire.MsgVerAck:
		c.handleVerAck()
	}

	c.emit(c.ctx, f.command, Event{Conn: c, Peer: c.peer, Message: msg})
}

// handleVersion implements the version half of §4.4's state transitions.
func (c *Connection) handleVersion(msg *wire.MsgVersion) {
	negotiated := msg.Version
	if c.localVersion < negotiated {
		negotiated = c.localVersion
	}

	c.stateLock.Lock()
	c.sendVer = negotiated
	c.bestHeight = msg.StartHeight
	if c.state == StateFresh {
		c.state = StateVersionExchanged
	}

	legacy := msg.Version < checksumVersion
	if legacy {
		c.recvVer = negotiated
	} else {
		c.expectVerackRaisesRecvVer = true
		c.pendingRecvVer = negotiated
	}
	c.stateLock.Unlock()

	if !legacy {
		if err := c.sendMessage(&wire.MsgVerAck{}); err != nil {
			wirelog.Warn(c.ctx, "send verack: %s", err)
		}
	}
}

// handleVerAck implements the verack half of §4.4. The spec's source
// material reads recvVer from the verack message itself, which carries no
// version field; this sets recvVer to the value negotiated during the
// version exchange instead (the same value as sendVer).
func (c *Connection) handleVerAck() {
	c.stateLock.Lock()
	if c.expectVerackRaisesRecvVer {
		c.recvVer = c.pendingRecvVer
		c.expectVerackRaisesRecvVer = false
	} else {
		c.recvVer = c.sendVer
	}
	c.active = true
	c.state = StateActive
	c.stateLock.Unlock()
}

// State returns the current handshake state.
func (c *Connection) State() State {
	c.stateLock.Lock()
	defer c.stateLock.Unlock()
	return c.state
}

// Active reports whether verack has been received from the peer.
func (c *Connection) Active() bool {
	c.stateLock.Lock()
	defer c.stateLock.Unlock()
	return c.active
}

// RecvVersion returns the protocol version used to interpret inbound
// messages.
func (c *Connection) RecvVersion() uint32 {
	c.stateLock.Lock()
	defer c.stateLock.Unlock()
	return c.recvVer
}

// SendVersion returns the protocol version used for outbound messages.
func (c *Connection) SendVersion() uint32 {
	c.stateLock.Lock()
	defer c.stateLock.Unlock()
	return c.sendVer
}

// BestHeight returns the peer's claimed chain height from its version
// message. Zero before the version message has been received.
func (c *Connection) BestHeight() uint32 {
	c.stateLock.Lock()
	defer c.stateLock.Unlock()
	return c.bestHeight
}

// sendMessage encodes msg, frames it, and writes it to the socket. Sends
// serialize through writeLock, matching the spec's outbound ordering
// guarantee: frames hit the wire in call order.
func (c *Connection) sendMessage(msg wire.Message) error {
	payload, err := encodePayload(msg)
	if err != nil {
		return errors.Wrapf(err, "encode %s", msg.Command())
	}

	c.writeLock.Lock()
	defer c.writeLock.Unlock()

	return writeFrame(c.rw, c.network, msg.Command(), payload, c.sendVerChecksummed())
}
