package service

import (
	"context"
	"errors"

	"github.com/anime-shed/frame-inspector-go/internal/analyzer"
	apperrors "github.com/anime-shed/frame-inspector-go/internal/errors"
	"github.com/anime-shed/frame-inspector-go/internal/repository"
	"github.com/anime-shed/frame-inspector-go/internal/storage"
	"github.com/anime-shed/frame-inspector-go/pkg/validation"
)

// classifyFrameError maps an analysis failure onto an AppError. The message
// is the bare reason so callers can render it as boundary text.
func classifyFrameError(err error) *apperrors.AppError {
	var short *validation.BufferTooSmallError
	switch {
	case errors.As(err, &short):
		return apperrors.NewBufferSizeError(err.Error(), short.Actual, short.Expected, err)
	case errors.Is(err, validation.ErrInvalidDimensions),
		errors.Is(err, validation.ErrStrideTooSmall),
		errors.Is(err, validation.ErrBufferTooSmall):
		return apperrors.NewGeometryError(err.Error(), err)
	case errors.Is(err, analyzer.ErrFrameTooSmallForGrid):
		return apperrors.NewProcessingError(err.Error(), err)
	default:
		return apperrors.NewInternalError(err.Error(), err)
	}
}

// classifyFetchError maps a storage failure onto an AppError.
func classifyFetchError(err error) *apperrors.AppError {
	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.NewTimeoutError("Frame fetch timeout", err)
	case errors.Is(err, repository.ErrInvalidFrameRef),
		errors.Is(err, storage.ErrInvalidReference):
		return apperrors.NewValidationError("Invalid frame reference", err)
	case errors.Is(err, storage.ErrFrameNotFound):
		return apperrors.NewNotFoundError("Frame not found", err)
	case errors.Is(err, storage.ErrFrameTooLarge):
		return apperrors.NewTooLargeError("Frame exceeds size limit", 0, err)
	case errors.Is(err, storage.ErrUnsupportedImage):
		return apperrors.NewProcessingError("Unsupported image format", err)
	default:
		return apperrors.NewNetworkError("Failed to fetch frame", err)
	}
}
