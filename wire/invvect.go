package wire

import (
	"io"

	"github.com/btcp2p/conn/bitcoin"
)

// InvType represents the allowed types of inventory vectors.
type InvType uint32

// Inventory vector types.
const (
	InvTypeTx    InvType = 1
	InvTypeBlock InvType = 2
)

func (t InvType) String() string {
	switch t {
	case InvTypeTx:
		return "MSG_TX"
	case InvTypeBlock:
		return "MSG_BLOCK"
	default:
		return "UNKNOWN"
	}
}

// InvVect identifies an advertised or requested piece of data: a 32-byte
// hash tagged with the kind of object it names.
type InvVect struct {
	Type InvType
	Hash bitcoin.Hash32
}

func readInvVect(r io.Reader, iv *InvVect) error {
	return readElements(r, &iv.Type, &iv.Hash)
}

func writeInvVect(w io.Writer, iv *InvVect) error {
	return writeElements(w, iv.Type, &iv.Hash)
}
