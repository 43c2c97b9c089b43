package bitcoin

import (
	"encoding/binary"

	"github.com/btcsuite/btcd/chaincfg"
	btcdwire "github.com/btcsuite/btcd/wire"
)

// Network identifies which Bitcoin-style network a connection's magic bytes
// belong to.
type Network uint32

const (
	MainNet    Network = Network(btcdwire.MainNet)
	TestNet    Network = Network(btcdwire.TestNet3)
	RegTestNet Network = Network(btcdwire.TestNet)
	InvalidNet Network = 0x00000000
)

// NetworkFromString resolves a network name, as would come from config, to
// its magic value.
func NetworkFromString(name string) Network {
	switch name {
	case "mainnet":
		return MainNet
	case "testnet":
		return TestNet
	case "regtest":
		return RegTestNet
	}
	return InvalidNet
}

// NetworkName returns the canonical name for a network's magic value.
func NetworkName(net Network) string {
	switch net {
	case MainNet:
		return "mainnet"
	case TestNet:
		return "testnet"
	case RegTestNet:
		return "regtest"
	}
	return "unknown"
}

// Bytes returns the network's 4 magic bytes as they appear on the wire,
// little endian, the form the framer scans for between frames.
func (net Network) Bytes() [4]byte {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(net))
	return b
}

// DefaultPort returns the standard P2P listening port for a network, reusing
// btcd's chain parameter tables instead of hand-maintaining another copy of
// them.
func DefaultPort(net Network) string {
	switch net {
	case MainNet:
		return chaincfg.MainNetParams.DefaultPort
	case TestNet:
		return chaincfg.TestNet3Params.DefaultPort
	case RegTestNet:
		return chaincfg.RegressionNetParams.DefaultPort
	}
	return ""
}
