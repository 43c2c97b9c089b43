package peer

import (
	"context"

	"github.com/btcp2p/conn/wire"
)

// Reserved event names that are not wire commands. A received frame's
// command string is itself an event name (see RegisterHandler).
const (
	EventConnect    = "connect"
	EventDisconnect = "disconnect"
	EventError      = "error"

	// EventGarbage fires once per contiguous run of non-magic bytes the
	// framer skips while resynchronizing. It's diagnostic only.
	EventGarbage = "garbage"

	// EventFrameError fires when a framed payload fails its length or
	// checksum check. The frame is discarded; the connection continues.
	EventFrameError = "frameerror"
)

// Event is delivered to a registered Handler. Message is populated for
// command events; Err is populated for EventError, EventFrameError, and
// EventDisconnect (nil on EventDisconnect for a clean EOF); GarbageLen is
// populated for EventGarbage.
type Event struct {
	Conn    *Connection
	Peer    string
	Message wire.Message
	Err     error

	GarbageLen int
}

// Handler is a listener for one event name. Handlers for a given event fire
// synchronously, in registration order, on the connection's single parse
// loop -- this is what guarantees delivery order equals on-wire order.
type Handler func(ctx context.Context, event Event)

// RegisterHandler adds a listener for the named event. name is either a
// reserved event (EventConnect, EventDisconnect, EventError, EventGarbage,
// EventFrameError) or a wire command string (wire.CmdVersion, wire.CmdTx,
// ...), in which case the handler fires once per successfully decoded
// inbound message of that command.
func (c *Connection) RegisterHandler(name string, handler Handler) {
	c.handlersLock.Lock()
	defer c.handlersLock.Unlock()
	c.handlers[name] = append(c.handlers[name], handler)
}

// emit invokes every handler registered for name, in registration order.
func (c *Connection) emit(ctx context.Context, name string, event Event) {
	c.handlersLock.Lock()
	handlers := make([]Handler, len(c.handlers[name]))
	copy(handlers, c.handlers[name])
	c.handlersLock.Unlock()

	for _, h := range handlers {
		h(ctx, event)
	}
}
