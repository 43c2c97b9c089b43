// Command wireconnect dials a single peer, completes the version
// handshake, and logs the events it sees.
package main

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/btcp2p/conn/peer"
	"github.com/btcp2p/conn/threads"
	"github.com/btcp2p/conn/wire"
	"github.com/btcp2p/conn/wireconfig"
	"github.com/btcp2p/conn/wirelog"

	"github.com/kelseyhightower/envconfig"
)

// pingInterval is how often the keepalive task probes the peer.
const pingInterval = 2 * time.Minute

func randomNonce() (uint64, error) {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

func main() {
	logConfig := wirelog.NewDevelopmentConfig()
	ctx := wirelog.ContextWithLogConfig(context.Background(), logConfig)

	var envCfg wireconfig.EnvConfig
	if err := envconfig.Process("", &envCfg); err != nil {
		wirelog.Fatal(ctx, "parse config: %s", err)
		return
	}

	cfg, err := envCfg.Convert()
	if err != nil {
		wirelog.Fatal(ctx, "resolve config: %s", err)
		return
	}

	var conn *peer.Connection
	opts := []peer.Option{
		peer.WithUserAgent(cfg.UserAgent),
		peer.WithStartHeight(cfg.StartHeight),
	}

	if cfg.PeerWebSocketURL != "" {
		conn, err = peer.DialWebSocket(ctx, cfg.Network, cfg.PeerWebSocketURL, cfg.ProtocolVersion, cfg.Nonce, opts...)
	} else {
		conn, err = peer.Dial(ctx, cfg.Network, cfg.PeerAddress, cfg.ProtocolVersion, cfg.Nonce, opts...)
	}
	if err != nil {
		wirelog.Fatal(ctx, "dial peer: %s", err)
		return
	}

	conn.RegisterHandler(peer.EventDisconnect, func(ctx context.Context, event peer.Event) {
		wirelog.Info(ctx, "disconnected from %s", event.Peer)
	})
	conn.RegisterHandler(peer.EventError, func(ctx context.Context, event peer.Event) {
		wirelog.Warn(ctx, "connection error from %s: %s", event.Peer, event.Err)
	})
	conn.RegisterHandler(peer.EventGarbage, func(ctx context.Context, event peer.Event) {
		wirelog.Debug(ctx, "skipped %d bytes of garbage from %s", event.GarbageLen, event.Peer)
	})
	conn.RegisterHandler(wire.CmdVerAck, func(ctx context.Context, event peer.Event) {
		wirelog.Info(ctx, "handshake complete with %s at protocol %d", event.Peer, conn.RecvVersion())
		if err := conn.SendGetAddr(); err != nil {
			wirelog.Warn(ctx, "send getaddr to %s: %s", event.Peer, err)
		}
	})
	conn.RegisterHandler(wire.CmdAddr, func(ctx context.Context, event peer.Event) {
		addr := event.Message.(*wire.MsgAddr)
		wirelog.Info(ctx, "received %d addresses from %s", len(addr.AddrList), event.Peer)
	})
	conn.RegisterHandler(wire.CmdPing, func(ctx context.Context, event peer.Event) {
		ping := event.Message.(*wire.MsgPing)
		if !ping.HasNonce {
			return
		}
		if err := conn.SendPong(ping.Nonce); err != nil {
			wirelog.Warn(ctx, "send pong to %s: %s", event.Peer, err)
		}
	})

	wirelog.Info(ctx, "dialing %s on %s", cfg.PeerAddress, cfg.Network)

	// Keep the connection alive with a periodic ping; SendPing itself is
	// just the building block (see SPEC_FULL.md's supplemented idle/
	// keepalive feature) and this periodic task is the policy around it.
	pingTask := threads.NewPeriodicTask("ping", pingInterval, func(ctx context.Context) error {
		nonce, err := randomNonce()
		if err != nil {
			return err
		}
		return conn.SendPing(nonce)
	})
	pingTask.Start(ctx)

	var stopper threads.StopCombiner
	stopper.Add(conn)
	stopper.Add(pingTask)

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)

	select {
	case <-signals:
		wirelog.Info(ctx, "shutting down")
		stopper.Stop(ctx)
	case <-conn.Done():
		wirelog.Info(ctx, "connection closed")
		stopper.Stop(ctx)
	}
}
