// Package compress inflates zstd-compressed frame buffers.
package compress

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// ErrTooLarge is returned when an inflated payload exceeds the caller's limit.
var ErrTooLarge = errors.New("decompressed frame exceeds size limit")

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

var encoderPool = sync.Pool{
	New: func() any {
		enc, _ := zstd.NewWriter(nil)
		return enc
	},
}

var decoderPool = sync.Pool{
	New: func() any {
		dec, _ := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
		return dec
	},
}

// IsZstd reports whether data starts with a zstd frame header.
func IsZstd(data []byte) bool {
	return bytes.HasPrefix(data, zstdMagic)
}

// Compress encodes data as a single zstd stream.
func Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	enc := encoderPool.Get().(*zstd.Encoder)
	defer encoderPool.Put(enc)
	enc.Reset(&buf)

	if _, err := enc.Write(data); err != nil {
		_ = enc.Close()
		return nil, fmt.Errorf("zstd encode: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("zstd encode: %w", err)
	}
	return buf.Bytes(), nil
}

// Decompress inflates a zstd payload. A limit <= 0 means no limit.
func Decompress(data []byte, limit int64) ([]byte, error) {
	return DecompressReader(bytes.NewReader(data), limit)
}

// DecompressReader inflates a zstd stream read from r, refusing to produce
// more than limit bytes. A limit <= 0 means no limit.
func DecompressReader(r io.Reader, limit int64) ([]byte, error) {
	dec := decoderPool.Get().(*zstd.Decoder)
	defer func() {
		_ = dec.Reset(nil)
		decoderPool.Put(dec)
	}()

	if err := dec.Reset(r); err != nil {
		return nil, fmt.Errorf("zstd decode: %w", err)
	}

	var src io.Reader = dec
	if limit > 0 {
		src = io.LimitReader(dec, limit+1)
	}

	var out bytes.Buffer
	if _, err := out.ReadFrom(src); err != nil {
		return nil, fmt.Errorf("zstd decode: %w", err)
	}
	if limit > 0 && int64(out.Len()) > limit {
		return nil, ErrTooLarge
	}
	return out.Bytes(), nil
}
