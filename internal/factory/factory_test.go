package factory

import (
	"testing"
	"time"

	"github.com/anime-shed/frame-inspector-go/internal/analyzer"
	"github.com/anime-shed/frame-inspector-go/internal/config"
	"github.com/anime-shed/frame-inspector-go/internal/storage"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		FrameFetchTimeout:   time.Second,
		MaxRequestBodySize:  1024,
		AzureStorageAccount: "frames",
		AzureStorageKey:     "c2VjcmV0",
		LocalFrameDir:       t.TempDir(),
	}
}

func TestStorageFactory_CreateStorage(t *testing.T) {
	f := NewStorageFactory(testConfig(t))

	fetcher, err := f.CreateStorage(HTTPStorage)
	if err != nil {
		t.Fatalf("http storage: %v", err)
	}
	if _, ok := fetcher.(*storage.HTTPFrameFetcher); !ok {
		t.Errorf("Expected *storage.HTTPFrameFetcher, got %T", fetcher)
	}

	fetcher, err = f.CreateStorage(LocalStorage)
	if err != nil {
		t.Fatalf("local storage: %v", err)
	}
	if _, ok := fetcher.(*storage.LocalFrameStore); !ok {
		t.Errorf("Expected *storage.LocalFrameStore, got %T", fetcher)
	}

	fetcher, err = f.CreateStorage(AzureStorage)
	if err != nil {
		t.Fatalf("azure storage: %v", err)
	}
	if _, ok := fetcher.(*storage.AzureFrameStore); !ok {
		t.Errorf("Expected *storage.AzureFrameStore, got %T", fetcher)
	}

	if _, err := f.CreateStorage("s3"); err == nil {
		t.Error("Expected error for unsupported storage type")
	}
}

func TestStorageFactory_CreateFrameRepository(t *testing.T) {
	f := NewStorageFactory(testConfig(t))

	local, err := f.CreateFrameRepository(LocalStorage)
	if err != nil {
		t.Fatal(err)
	}
	if err := local.ValidateFrameRef("cam1/000001.y8"); err != nil {
		t.Errorf("local repository should accept names, got %v", err)
	}

	azure, err := f.CreateFrameRepository(AzureStorage)
	if err != nil {
		t.Fatal(err)
	}
	if err := azure.ValidateFrameRef("https://frames.blob.core.windows.net/c/f.y8"); err != nil {
		t.Errorf("azure repository should accept its account, got %v", err)
	}
	if err := azure.ValidateFrameRef("https://cdn.example.com/f.y8"); err == nil {
		t.Error("azure repository should reject foreign hosts")
	}

	remote, err := f.CreateFrameRepository(HTTPStorage)
	if err != nil {
		t.Fatal(err)
	}
	if err := remote.ValidateFrameRef("cam1/000001.y8"); err == nil {
		t.Error("http repository should require a URL")
	}
}

func TestStrategyFactory(t *testing.T) {
	f := NewComponentFactory(testConfig(t)).StrategyFactory
	for _, mode := range analyzer.Modes() {
		s, err := f.CreateStrategy(mode)
		if err != nil {
			t.Fatalf("CreateStrategy(%s): %v", mode, err)
		}
		if s.GetStrategyName() != string(mode) {
			t.Errorf("Expected %s, got %s", mode, s.GetStrategyName())
		}
	}
}
