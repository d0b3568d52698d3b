package repository

import "errors"

var (
	// ErrInvalidFrameRef indicates a frame reference that failed validation
	ErrInvalidFrameRef = errors.New("invalid frame reference")

	// ErrAnalysisNotFound indicates the analysis record was not found
	ErrAnalysisNotFound = errors.New("analysis record not found")
)
