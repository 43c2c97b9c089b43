package peer

import (
	"bufio"
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/btcp2p/conn/bitcoin"
	"github.com/btcp2p/conn/wire"
)

// waitFor polls cond until it's true or the timeout elapses.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("timed out waiting for condition")
}

func pipeConnections(ctx context.Context, localVer, remoteVer uint32) (*Connection, *Connection) {
	a, b := net.Pipe()

	local := newConnection(bitcoin.MainNet, "remote-addr", false, localVer, 1)
	local.start(ctx, a)

	remote := newConnection(bitcoin.MainNet, "local-addr", true, remoteVer, 2)
	remote.start(ctx, b)

	return local, remote
}

// TestHandshakeModernBothSides exercises the >=209 handshake: both sides
// exchange version, both send verack, checksums turn on once each side's
// recvVer reflects the peer's negotiated version.
func TestHandshakeModernBothSides(t *testing.T) {
	ctx := context.Background()
	local, remote := pipeConnections(ctx, wire.ProtocolVersion, wire.ProtocolVersion)
	defer local.Close()
	defer remote.Close()

	if err := local.sendVersion(); err != nil {
		t.Fatalf("local sendVersion: %s", err)
	}
	if err := remote.sendVersion(); err != nil {
		t.Fatalf("remote sendVersion: %s", err)
	}

	waitFor(t, 2*time.Second, func() bool {
		return local.Active() && remote.Active()
	})

	if local.State() != StateActive {
		t.Errorf("local state: got %s, want %s", local.State(), StateActive)
	}
	if remote.State() != StateActive {
		t.Errorf("remote state: got %s, want %s", remote.State(), StateActive)
	}
	if local.RecvVersion() < checksumVersion {
		t.Errorf("local recvVer: got %d, want >= %d", local.RecvVersion(), checksumVersion)
	}
	if !local.recvVerChecksummed() || !remote.recvVerChecksummed() {
		t.Error("expected both sides checksummed after a modern handshake")
	}
}

// TestHandshakeLegacyPeer exercises the <209 handshake: no verack is
// expected, and the connection never turns checksums on.
func TestHandshakeLegacyPeer(t *testing.T) {
	ctx := context.Background()
	const legacyVersion = 106

	local, remote := pipeConnections(ctx, legacyVersion, legacyVersion)
	defer local.Close()
	defer remote.Close()

	if err := local.sendVersion(); err != nil {
		t.Fatalf("local sendVersion: %s", err)
	}
	if err := remote.sendVersion(); err != nil {
		t.Fatalf("remote sendVersion: %s", err)
	}

	waitFor(t, 2*time.Second, func() bool {
		return local.State() == StateVersionExchanged && remote.State() == StateVersionExchanged
	})

	if local.Active() || remote.Active() {
		t.Error("a legacy handshake never receives verack, so Active should stay false")
	}
	if local.recvVerChecksummed() || remote.recvVerChecksummed() {
		t.Error("a legacy handshake should never turn checksums on")
	}
}

// TestRecvVerDoesNotRaiseUntilVerack verifies the deferred recvVer update
// directly against the state machine: a peer declaring a modern version
// arms expectVerackRaisesRecvVer but must not raise recvVer itself until
// handleVerAck actually runs.
func TestRecvVerDoesNotRaiseUntilVerack(t *testing.T) {
	a, b := net.Pipe()
	go io.Copy(io.Discard, b)

	c := newConnection(bitcoin.MainNet, "peer", false, wire.ProtocolVersion, 1)
	c.start(context.Background(), a)
	defer c.Close()

	c.handleVersion(&wire.MsgVersion{Version: wire.ProtocolVersion})

	if c.State() != StateVersionExchanged {
		t.Errorf("state: got %s, want %s", c.State(), StateVersionExchanged)
	}
	if c.recvVerChecksummed() {
		t.Error("recvVer should not be checksummed before verack arrives")
	}

	c.handleVerAck()

	if !c.Active() {
		t.Error("expected Active() to be true after verack")
	}
	if c.RecvVersion() != wire.ProtocolVersion {
		t.Errorf("recvVer after verack: got %d, want %d", c.RecvVersion(), wire.ProtocolVersion)
	}
	if !c.recvVerChecksummed() {
		t.Error("expected recvVer to be checksummed once verack has arrived")
	}
}

// TestAcceptSendsVersion verifies Accept, the inbound counterpart to Dial,
// also sends its own version message before returning rather than only
// waiting passively for the remote side to speak first.
func TestAcceptSendsVersion(t *testing.T) {
	a, b := net.Pipe()
	defer b.Close()

	ctx := context.Background()

	type acceptResult struct {
		conn *Connection
		err  error
	}
	results := make(chan acceptResult, 1)
	go func() {
		conn, err := Accept(ctx, bitcoin.MainNet, a, wire.ProtocolVersion, 7)
		results <- acceptResult{conn, err}
	}()

	reader := bufio.NewReader(b)
	observer := newTestConnection()
	f, err := observer.readFrame(reader, false)
	if err != nil {
		t.Fatalf("reading version frame off the wire: %s", err)
	}
	if f.command != wire.CmdVersion {
		t.Errorf("command: got %q, want %q", f.command, wire.CmdVersion)
	}

	res := <-results
	if res.err != nil {
		t.Fatalf("Accept: %s", res.err)
	}
	defer res.conn.Close()

	if !res.conn.Inbound() {
		t.Error("expected an accepted connection to report Inbound() true")
	}
}

func TestSendAndReceivePing(t *testing.T) {
	ctx := context.Background()
	local, remote := pipeConnections(ctx, wire.ProtocolVersion, wire.ProtocolVersion)
	defer local.Close()
	defer remote.Close()

	if err := local.sendVersion(); err != nil {
		t.Fatalf("local sendVersion: %s", err)
	}
	if err := remote.sendVersion(); err != nil {
		t.Fatalf("remote sendVersion: %s", err)
	}
	waitFor(t, 2*time.Second, func() bool { return local.Active() && remote.Active() })

	received := make(chan uint64, 1)
	remote.RegisterHandler(wire.CmdPing, func(ctx context.Context, event Event) {
		received <- event.Message.(*wire.MsgPing).Nonce
	})

	const nonce = 42
	if err := local.SendPing(nonce); err != nil {
		t.Fatalf("SendPing: %s", err)
	}

	select {
	case got := <-received:
		if got != nonce {
			t.Errorf("ping nonce: got %d, want %d", got, nonce)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for ping")
	}
}
