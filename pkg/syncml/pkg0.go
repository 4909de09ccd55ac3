package syncml

import (
	"encoding/binary"
	"fmt"
)

// Package0 is the server-initiated session trigger: a small fixed header
// followed by an opaque management payload the session itself parses.
// The wire layout is: 1 byte flags, 4 bytes big-endian SessionID, 2 bytes
// big-endian ServerID length, ServerID bytes, then the payload.
type Package0 struct {
	Flags      byte
	ServerID   string
	SessionID  int
	BodyOffset int
}

const package0MinLen = 1 + 4 + 2

// DecodePackage0 parses a Package 0 notification, extracting the fields
// SessionStartOnAlert needs before it can touch the DM tree: the server
// identity, session ID, flags, and the offset where the management payload
// begins.
func DecodePackage0(data []byte) (*Package0, error) {
	if len(data) < package0MinLen {
		return nil, fmt.Errorf("syncml: package 0 too short: %d bytes", len(data))
	}

	flags := data[0]
	sessionID := binary.BigEndian.Uint32(data[1:5])
	serverIDLen := int(binary.BigEndian.Uint16(data[5:7]))

	offset := package0MinLen + serverIDLen
	if offset > len(data) {
		return nil, fmt.Errorf("syncml: package 0 serverID length %d exceeds payload", serverIDLen)
	}

	return &Package0{
		Flags:      flags,
		ServerID:   string(data[package0MinLen:offset]),
		SessionID:  int(sessionID),
		BodyOffset: offset,
	}, nil
}
