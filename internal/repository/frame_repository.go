package repository

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/anime-shed/frame-inspector-go/internal/storage"
	"github.com/anime-shed/frame-inspector-go/pkg/models"
)

// SourceValidator validates remote source URLs.
type SourceValidator interface {
	ValidateSourceURL(sourceURL string) error
}

// StoreFrameRepository implements FrameRepository on top of a storage backend
type StoreFrameRepository struct {
	fetcher   storage.FrameFetcher
	validator SourceValidator
}

// NewStoreFrameRepository creates a frame repository. A nil validator accepts
// any non-empty reference, which is what the local directory backend wants.
func NewStoreFrameRepository(fetcher storage.FrameFetcher, validator SourceValidator) FrameRepository {
	return &StoreFrameRepository{
		fetcher:   fetcher,
		validator: validator,
	}
}

func (r *StoreFrameRepository) ValidateFrameRef(ref string) error {
	if strings.TrimSpace(ref) == "" {
		return fmt.Errorf("%w: empty reference", ErrInvalidFrameRef)
	}
	if r.validator == nil {
		return nil
	}
	if err := r.validator.ValidateSourceURL(ref); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidFrameRef, err)
	}
	return nil
}

func (r *StoreFrameRepository) FetchFrame(ctx context.Context, ref string) ([]byte, error) {
	return r.fetcher.FetchFrame(ctx, ref)
}

func (r *StoreFrameRepository) FetchStill(ctx context.Context, ref string) (*image.Gray, *models.StillMetadata, error) {
	data, err := r.fetcher.FetchFrame(ctx, ref)
	if err != nil {
		return nil, nil, err
	}

	gray, format, err := storage.DecodeLuma(data)
	if err != nil {
		return nil, nil, err
	}
	return gray, &models.StillMetadata{Format: format, Bytes: len(data)}, nil
}
