// Package wire - see messages.go for the message types.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package wire

import (
	"github.com/tinylib/msgp/msgp"
)

// Each concrete message type is encoded as a fixed-length msgpack array
// (field order, not field names) - cheaper to hand-encode than a map and
// just as round-trippable, which is all §8's serialize∘deserialize law
// requires.

func (m *Handshake) MarshalMsg(b []byte) ([]byte, error) {
	b = msgp.AppendArrayHeader(b, 2)
	b = msgp.AppendUint32(b, m.ProtocolVersion)
	b = msgp.AppendString(b, m.ClientID)
	return b, nil
}

func (m *Handshake) UnmarshalMsg(b []byte) ([]byte, error) {
	var err error
	if _, b, err = msgp.ReadArrayHeaderBytes(b); err != nil {
		return b, err
	}
	if m.ProtocolVersion, b, err = msgp.ReadUint32Bytes(b); err != nil {
		return b, err
	}
	if m.ClientID, b, err = msgp.ReadStringBytes(b); err != nil {
		return b, err
	}
	return b, nil
}

func (m *TransferRequest) MarshalMsg(b []byte) ([]byte, error) {
	b = msgp.AppendArrayHeader(b, 5)
	b = msgp.AppendString(b, m.RequestID)
	b = msgp.AppendString(b, m.SourcePath)
	b = msgp.AppendString(b, m.DestinationPath)
	b = msgp.AppendInt64(b, m.FileSize)
	b = msgp.AppendBool(b, m.AllowCompress)
	return b, nil
}

func (m *TransferRequest) UnmarshalMsg(b []byte) ([]byte, error) {
	var err error
	if _, b, err = msgp.ReadArrayHeaderBytes(b); err != nil {
		return b, err
	}
	if m.RequestID, b, err = msgp.ReadStringBytes(b); err != nil {
		return b, err
	}
	if m.SourcePath, b, err = msgp.ReadStringBytes(b); err != nil {
		return b, err
	}
	if m.DestinationPath, b, err = msgp.ReadStringBytes(b); err != nil {
		return b, err
	}
	if m.FileSize, b, err = msgp.ReadInt64Bytes(b); err != nil {
		return b, err
	}
	if m.AllowCompress, b, err = msgp.ReadBoolBytes(b); err != nil {
		return b, err
	}
	return b, nil
}

func (m *TransferResponse) MarshalMsg(b []byte) ([]byte, error) {
	b = msgp.AppendArrayHeader(b, 4)
	b = msgp.AppendString(b, m.RequestID)
	b = msgp.AppendBool(b, m.Accepted)
	b = msgp.AppendInt64(b, m.ResumeAt)
	b = msgp.AppendString(b, m.RejectCause)
	return b, nil
}

func (m *TransferResponse) UnmarshalMsg(b []byte) ([]byte, error) {
	var err error
	if _, b, err = msgp.ReadArrayHeaderBytes(b); err != nil {
		return b, err
	}
	if m.RequestID, b, err = msgp.ReadStringBytes(b); err != nil {
		return b, err
	}
	if m.Accepted, b, err = msgp.ReadBoolBytes(b); err != nil {
		return b, err
	}
	if m.ResumeAt, b, err = msgp.ReadInt64Bytes(b); err != nil {
		return b, err
	}
	if m.RejectCause, b, err = msgp.ReadStringBytes(b); err != nil {
		return b, err
	}
	return b, nil
}

func (m *DataChunk) MarshalMsg(b []byte) ([]byte, error) {
	b = msgp.AppendArrayHeader(b, 6)
	b = msgp.AppendString(b, m.RequestID)
	b = msgp.AppendUint64(b, m.Seq)
	b = msgp.AppendInt64(b, m.Offset)
	b = msgp.AppendBytes(b, m.Bytes)
	b = msgp.AppendUint32(b, m.CRC32)
	b = msgp.AppendBool(b, m.Compressed)
	return b, nil
}

func (m *DataChunk) UnmarshalMsg(b []byte) ([]byte, error) {
	var err error
	if _, b, err = msgp.ReadArrayHeaderBytes(b); err != nil {
		return b, err
	}
	if m.RequestID, b, err = msgp.ReadStringBytes(b); err != nil {
		return b, err
	}
	if m.Seq, b, err = msgp.ReadUint64Bytes(b); err != nil {
		return b, err
	}
	if m.Offset, b, err = msgp.ReadInt64Bytes(b); err != nil {
		return b, err
	}
	if m.Bytes, b, err = msgp.ReadBytesBytes(b, nil); err != nil {
		return b, err
	}
	if m.CRC32, b, err = msgp.ReadUint32Bytes(b); err != nil {
		return b, err
	}
	if m.Compressed, b, err = msgp.ReadBoolBytes(b); err != nil {
		return b, err
	}
	return b, nil
}

func (m *Progress) MarshalMsg(b []byte) ([]byte, error) {
	b = msgp.AppendArrayHeader(b, 4)
	b = msgp.AppendString(b, m.RequestID)
	b = msgp.AppendInt64(b, m.BytesDone)
	b = msgp.AppendInt64(b, m.BytesTotal)
	b = msgp.AppendFloat64(b, m.TransferRate)
	return b, nil
}

func (m *Progress) UnmarshalMsg(b []byte) ([]byte, error) {
	var err error
	if _, b, err = msgp.ReadArrayHeaderBytes(b); err != nil {
		return b, err
	}
	if m.RequestID, b, err = msgp.ReadStringBytes(b); err != nil {
		return b, err
	}
	if m.BytesDone, b, err = msgp.ReadInt64Bytes(b); err != nil {
		return b, err
	}
	if m.BytesTotal, b, err = msgp.ReadInt64Bytes(b); err != nil {
		return b, err
	}
	if m.TransferRate, b, err = msgp.ReadFloat64Bytes(b); err != nil {
		return b, err
	}
	return b, nil
}

func (m *Error) MarshalMsg(b []byte) ([]byte, error) {
	b = msgp.AppendArrayHeader(b, 3)
	b = msgp.AppendString(b, m.RequestID)
	b = msgp.AppendString(b, m.Kind)
	b = msgp.AppendString(b, m.Message)
	return b, nil
}

func (m *Error) UnmarshalMsg(b []byte) ([]byte, error) {
	var err error
	if _, b, err = msgp.ReadArrayHeaderBytes(b); err != nil {
		return b, err
	}
	if m.RequestID, b, err = msgp.ReadStringBytes(b); err != nil {
		return b, err
	}
	if m.Kind, b, err = msgp.ReadStringBytes(b); err != nil {
		return b, err
	}
	if m.Message, b, err = msgp.ReadStringBytes(b); err != nil {
		return b, err
	}
	return b, nil
}

func (m *Heartbeat) MarshalMsg(b []byte) ([]byte, error) {
	b = msgp.AppendArrayHeader(b, 2)
	b = msgp.AppendString(b, m.RequestID)
	b = msgp.AppendInt64(b, m.At)
	return b, nil
}

func (m *Heartbeat) UnmarshalMsg(b []byte) ([]byte, error) {
	var err error
	if _, b, err = msgp.ReadArrayHeaderBytes(b); err != nil {
		return b, err
	}
	if m.RequestID, b, err = msgp.ReadStringBytes(b); err != nil {
		return b, err
	}
	if m.At, b, err = msgp.ReadInt64Bytes(b); err != nil {
		return b, err
	}
	return b, nil
}

func (m *Complete) MarshalMsg(b []byte) ([]byte, error) {
	b = msgp.AppendArrayHeader(b, 2)
	b = msgp.AppendString(b, m.RequestID)
	b = msgp.AppendInt64(b, m.BytesTotal)
	return b, nil
}

func (m *Complete) UnmarshalMsg(b []byte) ([]byte, error) {
	var err error
	if _, b, err = msgp.ReadArrayHeaderBytes(b); err != nil {
		return b, err
	}
	if m.RequestID, b, err = msgp.ReadStringBytes(b); err != nil {
		return b, err
	}
	if m.BytesTotal, b, err = msgp.ReadInt64Bytes(b); err != nil {
		return b, err
	}
	return b, nil
}

func (m *Resume) MarshalMsg(b []byte) ([]byte, error) {
	b = msgp.AppendArrayHeader(b, 2)
	b = msgp.AppendString(b, m.RequestID)
	b = msgp.AppendInt64(b, m.Offset)
	return b, nil
}

func (m *Resume) UnmarshalMsg(b []byte) ([]byte, error) {
	var err error
	if _, b, err = msgp.ReadArrayHeaderBytes(b); err != nil {
		return b, err
	}
	if m.RequestID, b, err = msgp.ReadStringBytes(b); err != nil {
		return b, err
	}
	if m.Offset, b, err = msgp.ReadInt64Bytes(b); err != nil {
		return b, err
	}
	return b, nil
}
