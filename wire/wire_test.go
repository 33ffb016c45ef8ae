package wire_test

import (
	"bytes"
	"testing"

	"github.com/fcopy-dev/fcopy/wire"
)

func TestProtocolMessageRoundTrip(t *testing.T) {
	chunk := &wire.DataChunk{
		RequestID: "req-1",
		Seq:       42,
		Offset:    4096,
		Bytes:     []byte("hello world"),
	}
	chunk.CRC32 = wire.ChecksumChunk(chunk.Bytes)

	framed, err := wire.Encode(wire.MsgDataChunk, chunk)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	_, p, err := wire.Decode(framed)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	got, ok := p.(*wire.DataChunk)
	if !ok {
		t.Fatalf("expected *DataChunk, got %T", p)
	}
	if got.RequestID != chunk.RequestID || got.Seq != chunk.Seq || got.Offset != chunk.Offset {
		t.Fatalf("round trip mismatch: %+v vs %+v", got, chunk)
	}
	if !bytes.Equal(got.Bytes, chunk.Bytes) {
		t.Fatalf("bytes mismatch: %q vs %q", got.Bytes, chunk.Bytes)
	}
	if !wire.VerifyChunk(got) {
		t.Fatal("expected CRC32 to verify after round trip")
	}
}

func TestTransferRequestRoundTrip(t *testing.T) {
	req := &wire.TransferRequest{
		RequestID:       "req-2",
		SourcePath:      "/src/a",
		DestinationPath: "/dst/a",
		FileSize:        123456,
		AllowCompress:   true,
	}
	framed, err := wire.Encode(wire.MsgTransferRequest, req)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	_, p, err := wire.Decode(framed)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	got := p.(*wire.TransferRequest)
	if *got != *req {
		t.Fatalf("round trip mismatch: %+v vs %+v", got, req)
	}
}

func TestCompressDecompressRoundTrip(t *testing.T) {
	data := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog "), 200)
	compressed := wire.Compress(data)
	if compressed == nil {
		t.Fatal("expected compressible data to compress")
	}
	got, err := wire.Decompress(compressed, len(data))
	if err != nil {
		t.Fatalf("Decompress: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Fatal("compress/decompress round trip mismatch")
	}
}
