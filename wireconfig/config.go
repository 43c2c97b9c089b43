// Package wireconfig converts process environment variables into the
// values a Connection needs: which network's magic bytes to use, the
// local node's handshake identity, and where to dial.
package wireconfig

import (
	"github.com/btcp2p/conn/bitcoin"

	"github.com/pkg/errors"
)

// EnvConfig is the flat, envconfig-tagged shape read directly from the
// process environment.
type EnvConfig struct {
	Network          string `default:"mainnet" envconfig:"BITCOIN_NETWORK" json:"BITCOIN_NETWORK"`
	PeerAddress      string `envconfig:"PEER_ADDRESS" json:"PEER_ADDRESS"`
	PeerWebSocketURL string `envconfig:"PEER_WEBSOCKET_URL" json:"PEER_WEBSOCKET_URL"`

	ProtocolVersion uint32 `default:"70001" envconfig:"PROTOCOL_VERSION" json:"PROTOCOL_VERSION"`
	UserAgent       string `default:"/btcp2p:0.1.0/" envconfig:"USER_AGENT" json:"USER_AGENT"`
	StartHeight     uint32 `default:"0" envconfig:"START_HEIGHT" json:"START_HEIGHT"`
	Nonce           uint64 `envconfig:"NONCE" json:"NONCE"`
}

// Config is EnvConfig after its string fields have been resolved into the
// types the peer package actually consumes.
type Config struct {
	Network          bitcoin.Network
	PeerAddress      string
	PeerWebSocketURL string

	ProtocolVersion uint32
	UserAgent       string
	StartHeight     uint32
	Nonce           uint64
}

// Convert resolves e into a Config, rejecting an unrecognized network name
// and a missing dial target.
func (e *EnvConfig) Convert() (*Config, error) {
	network := bitcoin.NetworkFromString(e.Network)
	if network == bitcoin.InvalidNet {
		return nil, errors.Errorf("unknown network: %q", e.Network)
	}

	if e.PeerAddress == "" && e.PeerWebSocketURL == "" {
		return nil, errors.New("one of PEER_ADDRESS or PEER_WEBSOCKET_URL is required")
	}

	return &Config{
		Network:          network,
		PeerAddress:      e.PeerAddress,
		PeerWebSocketURL: e.PeerWebSocketURL,
		ProtocolVersion:  e.ProtocolVersion,
		UserAgent:        e.UserAgent,
		StartHeight:      e.StartHeight,
		Nonce:            e.Nonce,
	}, nil
}
