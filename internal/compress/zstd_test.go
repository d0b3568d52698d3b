package compress

import (
	"bytes"
	"errors"
	"testing"
)

func lumaRamp(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i % 256)
	}
	return data
}

func TestCompressDecompress(t *testing.T) {
	frame := lumaRamp(64 * 48)

	packed, err := Compress(frame)
	if err != nil {
		t.Fatalf("Compress failed: %v", err)
	}
	if !IsZstd(packed) {
		t.Fatal("Expected compressed payload to carry the zstd magic")
	}
	if len(packed) >= len(frame) {
		t.Errorf("Expected a ramp to compress, got %d >= %d bytes", len(packed), len(frame))
	}

	out, err := Decompress(packed, int64(len(frame)))
	if err != nil {
		t.Fatalf("Decompress failed: %v", err)
	}
	if !bytes.Equal(out, frame) {
		t.Error("Decompressed frame differs from the original")
	}
}

func TestDecompress_Limit(t *testing.T) {
	packed, err := Compress(lumaRamp(4096))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := Decompress(packed, 4095); !errors.Is(err, ErrTooLarge) {
		t.Errorf("Expected ErrTooLarge, got %v", err)
	}
	if _, err := Decompress(packed, 0); err != nil {
		t.Errorf("Expected unlimited decode to succeed, got %v", err)
	}
}

func TestDecompress_Garbage(t *testing.T) {
	if _, err := Decompress([]byte("not a zstd stream"), 0); err == nil {
		t.Error("Expected error for non-zstd input")
	}
}

func TestIsZstd(t *testing.T) {
	if IsZstd([]byte{0x28, 0xb5}) {
		t.Error("Short prefix should not match")
	}
	if IsZstd(lumaRamp(16)) {
		t.Error("Raw luma should not match")
	}
}
