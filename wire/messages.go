// Package wire defines the network transport contract the core consumes
// (§6): framed message types, per-chunk CRC32 integrity, and idempotent
// resume by (request_id, offset). The core does not mandate the framing
// codec; this package supplies one concrete msgp-based codec plus
// optional lz4 compression for callers that choose to use it.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package wire

//go:generate msgp

// MsgType tags a ProtocolMessage's payload kind.
type MsgType uint8

const (
	MsgHandshake MsgType = iota + 1
	MsgTransferRequest
	MsgTransferResponse
	MsgDataChunk
	MsgProgress
	MsgError
	MsgHeartbeat
	MsgComplete
	MsgResume
)

// Handshake opens a transfer session.
type Handshake struct {
	ProtocolVersion uint32 `msg:"protocol_version"`
	ClientID        string `msg:"client_id"`
}

// TransferRequest proposes a single-file or tree transfer.
type TransferRequest struct {
	RequestID       string `msg:"request_id"`
	SourcePath      string `msg:"source_path"`
	DestinationPath string `msg:"destination_path"`
	FileSize        int64  `msg:"file_size"`
	AllowCompress   bool   `msg:"allow_compress"`
}

// TransferResponse acknowledges or rejects a TransferRequest, optionally
// naming a resume offset (§6 "idempotent resume by (request_id, offset)").
type TransferResponse struct {
	RequestID   string `msg:"request_id"`
	Accepted    bool   `msg:"accepted"`
	ResumeAt    int64  `msg:"resume_at"`
	RejectCause string `msg:"reject_cause"`
}

// DataChunk is one wire-level chunk of file content.
type DataChunk struct {
	RequestID string `msg:"request_id"`
	Seq       uint64 `msg:"seq"`
	Offset    int64  `msg:"offset"`
	Bytes     []byte `msg:"bytes"`
	CRC32     uint32 `msg:"crc32"`
	Compressed bool  `msg:"compressed"`
}

// Progress mirrors a subset of progress.ProgressSample across the wire.
type Progress struct {
	RequestID     string  `msg:"request_id"`
	BytesDone     int64   `msg:"bytes_done"`
	BytesTotal    int64   `msg:"bytes_total"`
	TransferRate  float64 `msg:"transfer_rate"`
}

// Error carries a taxonomy kind and message across the wire.
type Error struct {
	RequestID string `msg:"request_id"`
	Kind      string `msg:"kind"`
	Message   string `msg:"message"`
}

// Heartbeat keeps an idle session alive.
type Heartbeat struct {
	RequestID string `msg:"request_id"`
	At        int64  `msg:"at"` // unix nanos
}

// Complete signals a transfer finished successfully.
type Complete struct {
	RequestID   string `msg:"request_id"`
	BytesTotal  int64  `msg:"bytes_total"`
}

// Resume requests restarting RequestID from Offset, per the idempotent
// resume contract.
type Resume struct {
	RequestID string `msg:"request_id"`
	Offset    int64  `msg:"offset"`
}
