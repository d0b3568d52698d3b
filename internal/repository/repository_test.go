package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"testing"

	"github.com/anime-shed/frame-inspector-go/pkg/models"
	"github.com/anime-shed/frame-inspector-go/pkg/validation"
)

type stubFetcher struct {
	data map[string][]byte
}

func (s *stubFetcher) FetchFrame(ctx context.Context, ref string) ([]byte, error) {
	data, ok := s.data[ref]
	if !ok {
		return nil, fmt.Errorf("no frame at %s", ref)
	}
	return data, nil
}

func TestStoreFrameRepository_ValidateFrameRef(t *testing.T) {
	withURLs := NewStoreFrameRepository(&stubFetcher{}, validation.NewURLValidator())
	local := NewStoreFrameRepository(&stubFetcher{}, nil)

	tests := []struct {
		name    string
		repo    FrameRepository
		ref     string
		wantErr bool
	}{
		{"http url", withURLs, "https://cdn.example.com/f.y8", false},
		{"bare name needs url", withURLs, "cam1/f.y8", true},
		{"ftp scheme", withURLs, "ftp://cdn.example.com/f.y8", true},
		{"empty", withURLs, "", true},
		{"local name", local, "cam1/f.y8", false},
		{"local blank", local, "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.repo.ValidateFrameRef(tt.ref)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateFrameRef(%q) error = %v, wantErr %v", tt.ref, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidFrameRef) {
				t.Errorf("Expected ErrInvalidFrameRef, got %v", err)
			}
		})
	}
}

func TestStoreFrameRepository_FetchStill(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewGray(image.Rect(0, 0, 20, 10))); err != nil {
		t.Fatal(err)
	}
	repo := NewStoreFrameRepository(&stubFetcher{data: map[string][]byte{
		"still.png": buf.Bytes(),
		"raw.y8":    make([]byte, 16),
	}}, nil)

	gray, meta, err := repo.FetchStill(context.Background(), "still.png")
	if err != nil {
		t.Fatalf("FetchStill failed: %v", err)
	}
	if gray.Bounds().Dx() != 20 || gray.Bounds().Dy() != 10 {
		t.Errorf("unexpected bounds %v", gray.Bounds())
	}
	if meta.Format != "png" || meta.Bytes != buf.Len() {
		t.Errorf("unexpected metadata %+v", meta)
	}

	if _, _, err := repo.FetchStill(context.Background(), "raw.y8"); err == nil {
		t.Error("Expected decode error for raw luma bytes")
	}
	if _, _, err := repo.FetchStill(context.Background(), "missing.png"); err == nil {
		t.Error("Expected fetch error")
	}
}

func TestMemoryAnalysisRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryAnalysisRepository(3)

	for i := 1; i <= 4; i++ {
		rec := &models.AnalysisRecord{ID: fmt.Sprintf("id-%d", i), Mode: "histogram"}
		if err := repo.SaveAnalysis(ctx, rec); err != nil {
			t.Fatalf("SaveAnalysis failed: %v", err)
		}
	}

	if _, err := repo.GetAnalysis(ctx, "id-1"); !errors.Is(err, ErrAnalysisNotFound) {
		t.Errorf("Expected id-1 to be evicted, got %v", err)
	}

	rec, err := repo.GetAnalysis(ctx, "id-4")
	if err != nil {
		t.Fatalf("GetAnalysis failed: %v", err)
	}
	rec.Mode = "mutated"
	again, _ := repo.GetAnalysis(ctx, "id-4")
	if again.Mode != "histogram" {
		t.Error("GetAnalysis must return a copy")
	}

	recent, err := repo.ListRecent(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	var ids []string
	for _, r := range recent {
		ids = append(ids, r.ID)
	}
	if fmt.Sprint(ids) != "[id-4 id-3 id-2]" {
		t.Errorf("Expected newest first, got %v", ids)
	}

	two, _ := repo.ListRecent(ctx, 2)
	if len(two) != 2 || two[0].ID != "id-4" {
		t.Errorf("unexpected limited listing %v", two)
	}

	if err := repo.SaveAnalysis(ctx, &models.AnalysisRecord{}); err == nil {
		t.Error("Expected error for record without id")
	}
}
