package factory

import (
	"fmt"

	"github.com/anime-shed/frame-inspector-go/internal/analyzer"
	"github.com/anime-shed/frame-inspector-go/internal/config"
	"github.com/anime-shed/frame-inspector-go/internal/repository"
	"github.com/anime-shed/frame-inspector-go/internal/storage"
	"github.com/anime-shed/frame-inspector-go/internal/strategy"
	"github.com/anime-shed/frame-inspector-go/pkg/validation"
)

// StorageType represents different types of storage backends
type StorageType string

const (
	HTTPStorage  StorageType = config.StorageHTTP
	AzureStorage StorageType = config.StorageAzure
	LocalStorage StorageType = config.StorageLocal
)

// StrategyFactory creates analysis strategies
type StrategyFactory interface {
	CreateStrategy(mode analyzer.Mode) (strategy.AnalysisStrategy, error)
}

// StorageFactory creates frame fetchers and the repository in front of them
type StorageFactory interface {
	CreateStorage(storageType StorageType) (storage.FrameFetcher, error)
	CreateFrameRepository(storageType StorageType) (repository.FrameRepository, error)
}

type strategyFactory struct{}

// NewStrategyFactory creates a new strategy factory
func NewStrategyFactory() StrategyFactory {
	return &strategyFactory{}
}

func (f *strategyFactory) CreateStrategy(mode analyzer.Mode) (strategy.AnalysisStrategy, error) {
	return strategy.ForMode(mode)
}

type storageFactory struct {
	cfg *config.Config
}

// NewStorageFactory creates a new storage factory
func NewStorageFactory(cfg *config.Config) StorageFactory {
	return &storageFactory{cfg: cfg}
}

// CreateStorage creates a storage implementation based on the specified type
func (f *storageFactory) CreateStorage(storageType StorageType) (storage.FrameFetcher, error) {
	switch storageType {
	case HTTPStorage:
		return storage.NewHTTPFrameFetcher(f.cfg.MaxRequestBodySize, f.cfg.FrameFetchTimeout), nil
	case AzureStorage:
		return storage.NewAzureFrameStore(f.cfg.AzureStorageAccount, f.cfg.AzureStorageKey, f.cfg.MaxRequestBodySize)
	case LocalStorage:
		return storage.NewLocalFrameStore(f.cfg.LocalFrameDir, f.cfg.MaxRequestBodySize)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", storageType)
	}
}

// CreateFrameRepository pairs the fetcher with the reference validation that
// suits it. Remote backends accept only URLs; the local backend takes names.
func (f *storageFactory) CreateFrameRepository(storageType StorageType) (repository.FrameRepository, error) {
	fetcher, err := f.CreateStorage(storageType)
	if err != nil {
		return nil, err
	}

	switch storageType {
	case LocalStorage:
		return repository.NewStoreFrameRepository(fetcher, nil), nil
	case AzureStorage:
		hosts := f.cfg.AllowedHosts
		if len(hosts) == 0 {
			hosts = []string{f.cfg.AzureStorageAccount + ".blob.core.windows.net"}
		}
		return repository.NewStoreFrameRepository(fetcher,
			validation.NewURLValidatorWithOptions([]string{"https"}, hosts)), nil
	default:
		return repository.NewStoreFrameRepository(fetcher,
			validation.NewURLValidatorWithOptions([]string{"http", "https"}, f.cfg.AllowedHosts)), nil
	}
}

// ComponentFactory combines all factories
type ComponentFactory struct {
	StrategyFactory StrategyFactory
	StorageFactory  StorageFactory
}

// NewComponentFactory creates a new component factory
func NewComponentFactory(cfg *config.Config) *ComponentFactory {
	return &ComponentFactory{
		StrategyFactory: NewStrategyFactory(),
		StorageFactory:  NewStorageFactory(cfg),
	}
}
