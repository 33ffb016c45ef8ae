// Package wire - see messages.go, codec.go.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package wire

import (
	"hash/crc32"

	"github.com/pierrec/lz4/v3"
	"github.com/tinylib/msgp/msgp"

	"github.com/fcopy-dev/fcopy/cmn/xerr"
)

// payload is implemented by every concrete message type in messages.go.
type payload interface {
	MarshalMsg([]byte) ([]byte, error)
	UnmarshalMsg([]byte) ([]byte, error)
}

// ProtocolMessage is the one framed unit that crosses the wire: a type tag
// plus the msgp-encoded form of the matching payload. serialize∘
// deserialize must be the identity for it (§8).
type ProtocolMessage struct {
	Type    MsgType
	Payload []byte
}

// Encode wraps p into a ProtocolMessage and marshals the envelope.
func Encode(t MsgType, p payload) ([]byte, error) {
	raw, err := p.MarshalMsg(nil)
	if err != nil {
		return nil, xerr.Wrap(xerr.Other, "", err, "marshal payload")
	}
	pm := ProtocolMessage{Type: t, Payload: raw}
	return pm.MarshalMsg(nil)
}

func (pm *ProtocolMessage) MarshalMsg(b []byte) ([]byte, error) {
	b = msgp.AppendArrayHeader(b, 2)
	b = msgp.AppendUint8(b, uint8(pm.Type))
	b = msgp.AppendBytes(b, pm.Payload)
	return b, nil
}

func (pm *ProtocolMessage) UnmarshalMsg(b []byte) ([]byte, error) {
	var err error
	if _, b, err = msgp.ReadArrayHeaderBytes(b); err != nil {
		return b, err
	}
	var t uint8
	if t, b, err = msgp.ReadUint8Bytes(b); err != nil {
		return b, err
	}
	pm.Type = MsgType(t)
	if pm.Payload, b, err = msgp.ReadBytesBytes(b, nil); err != nil {
		return b, err
	}
	return b, nil
}

// Decode unmarshals a framed ProtocolMessage and returns an empty payload
// of the matching concrete type, ready for the caller to UnmarshalMsg
// pm.Payload into.
func Decode(b []byte) (ProtocolMessage, payload, error) {
	var pm ProtocolMessage
	if _, err := pm.UnmarshalMsg(b); err != nil {
		return pm, nil, xerr.Wrap(xerr.Other, "", err, "unmarshal envelope")
	}
	var p payload
	switch pm.Type {
	case MsgHandshake:
		p = &Handshake{}
	case MsgTransferRequest:
		p = &TransferRequest{}
	case MsgTransferResponse:
		p = &TransferResponse{}
	case MsgDataChunk:
		p = &DataChunk{}
	case MsgProgress:
		p = &Progress{}
	case MsgError:
		p = &Error{}
	case MsgHeartbeat:
		p = &Heartbeat{}
	case MsgComplete:
		p = &Complete{}
	case MsgResume:
		p = &Resume{}
	default:
		return pm, nil, xerr.New(xerr.Other, "", nil)
	}
	if _, err := p.UnmarshalMsg(pm.Payload); err != nil {
		return pm, nil, xerr.Wrap(xerr.Other, "", err, "unmarshal payload")
	}
	return pm, p, nil
}

// ChecksumChunk computes the CRC32 a DataChunk carries, per §6's per-chunk
// integrity requirement.
func ChecksumChunk(data []byte) uint32 { return crc32.ChecksumIEEE(data) }

// VerifyChunk reports whether chunk's declared CRC32 matches its bytes
// (§8: crc32(chunk.bytes) == chunk.crc32 for any chunk written then read
// back).
func VerifyChunk(chunk *DataChunk) bool { return ChecksumChunk(chunk.Bytes) == chunk.CRC32 }

// Compress/Decompress are the optional compression collaborator §8
// requires a round-trip law for: compress ∘ decompress = identity.
func Compress(data []byte) []byte {
	buf := make([]byte, lz4.CompressBlockBound(len(data)))
	var ht [1 << 16]int
	n, err := lz4.CompressBlock(data, buf, ht[:])
	if err != nil || n == 0 {
		// incompressible or too small for the LZ4 block format: return nil,
		// and the caller sends the data uncompressed. Decompress does not
		// accept this nil result.
		return nil
	}
	return buf[:n]
}

// Decompress expands compressed (as produced by Compress) back to
// originalLen bytes.
func Decompress(compressed []byte, originalLen int) ([]byte, error) {
	out := make([]byte, originalLen)
	n, err := lz4.UncompressBlock(compressed, out)
	if err != nil {
		return nil, xerr.Wrap(xerr.CompressionError, "", err, "lz4 decompress")
	}
	return out[:n], nil
}
