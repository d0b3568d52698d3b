package repository

import (
	"context"
	"image"

	"github.com/anime-shed/frame-inspector-go/pkg/models"
)

// FrameRepository defines the data access operations for frames
type FrameRepository interface {
	// ValidateFrameRef checks a reference before anything is fetched
	ValidateFrameRef(ref string) error

	// FetchFrame retrieves a raw luma buffer
	FetchFrame(ctx context.Context, ref string) ([]byte, error)

	// FetchStill retrieves an encoded still and decodes it to a luma plane
	FetchStill(ctx context.Context, ref string) (*image.Gray, *models.StillMetadata, error)
}

// AnalysisRepository keeps recent analysis records
type AnalysisRepository interface {
	SaveAnalysis(ctx context.Context, record *models.AnalysisRecord) error
	GetAnalysis(ctx context.Context, id string) (*models.AnalysisRecord, error)
	ListRecent(ctx context.Context, limit int) ([]*models.AnalysisRecord, error)
}
