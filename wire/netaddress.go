package wire

import "io"

// NetAddress represents a peer address as advertised in the addr message and,
// without its Time field, embedded raw in the version message.
type NetAddress struct {
	// Time this address was last seen. Only present on the wire when the
	// containing message includes a timestamp (the addr message); the
	// version message's embedded addresses omit it entirely.
	Time uint32

	Services uint64
	IP       [16]byte
	Port     uint16 // big endian on the wire, unlike every other integer field
}

func readNetAddress(r io.Reader, na *NetAddress, hasTimestamp bool) error {
	if hasTimestamp {
		if err := readElement(r, &na.Time); err != nil {
			return err
		}
	}

	if err := readElements(r, &na.Services, &na.IP); err != nil {
		return err
	}

	// Port is encoded big endian, unlike every other integer in the
	// protocol.
	var port [2]byte
	if _, err := io.ReadFull(r, port[:]); err != nil {
		return err
	}
	na.Port = uint16(port[0])<<8 | uint16(port[1])

	return nil
}

func writeNetAddress(w io.Writer, na *NetAddress, hasTimestamp bool) error {
	if hasTimestamp {
		if err := writeElement(w, na.Time); err != nil {
			return err
		}
	}

	if err := writeElements(w, na.Services, na.IP); err != nil {
		return err
	}

	port := [2]byte{byte(na.Port >> 8), byte(na.Port)}
	_, err := w.Write(port[:])
	return err
}
