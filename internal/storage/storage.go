// Package storage fetches raw frame buffers and encoded stills from the
// configured backend.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// FrameFetcher returns the bytes referenced by ref. Implementations never
// return more than their configured size limit.
type FrameFetcher interface {
	FetchFrame(ctx context.Context, ref string) ([]byte, error)
}

var (
	// ErrFrameNotFound indicates the backend has nothing stored under the reference
	ErrFrameNotFound = errors.New("frame not found")

	// ErrFrameTooLarge indicates the stored frame exceeds the size limit
	ErrFrameTooLarge = errors.New("frame exceeds size limit")

	// ErrInvalidReference indicates a reference the backend cannot resolve
	ErrInvalidReference = errors.New("invalid frame reference")
)

// readLimited reads r fully, failing with ErrFrameTooLarge once more than
// limit bytes arrive.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read frame: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w (limit %d bytes)", ErrFrameTooLarge, limit)
	}
	return data, nil
}
