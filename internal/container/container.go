package container

import (
	"fmt"
	"net/http"

	"github.com/anime-shed/frame-inspector-go/internal/analyzer"
	"github.com/anime-shed/frame-inspector-go/internal/config"
	"github.com/anime-shed/frame-inspector-go/internal/factory"
	"github.com/anime-shed/frame-inspector-go/internal/logger"
	"github.com/anime-shed/frame-inspector-go/internal/observer"
	"github.com/anime-shed/frame-inspector-go/internal/repository"
	"github.com/anime-shed/frame-inspector-go/internal/service"
	"github.com/anime-shed/frame-inspector-go/internal/transport"
)

// recentAnalyses is how many analysis records are kept for lookup by id.
const recentAnalyses = 4096

// Container holds all application dependencies
type Container struct {
	config               *config.Config
	frameRepository      repository.FrameRepository
	analysisRepository   repository.AnalysisRepository
	publisher            *observer.EventPublisher
	metrics              *observer.MetricsObserver
	pool                 *analyzer.WorkerPool
	frameAnalysisService service.FrameAnalysisService
	handler              http.Handler
}

// NewContainer creates a new dependency injection container
func NewContainer(cfg *config.Config) (*Container, error) {
	components := factory.NewComponentFactory(cfg)

	frameRepository, err := components.StorageFactory.CreateFrameRepository(factory.StorageType(cfg.FrameStorage))
	if err != nil {
		return nil, fmt.Errorf("failed to create frame storage: %w", err)
	}
	analysisRepository := repository.NewMemoryAnalysisRepository(recentAnalyses)

	metrics := observer.NewMetricsObserver(observer.DefaultLatencyWindow)
	publisher := observer.NewEventPublisher()
	publisher.Subscribe(observer.NewLoggingObserver(logger.Logger))
	publisher.Subscribe(metrics)

	pool := analyzer.NewWorkerPool(cfg.BatchWorkers)
	pool.Start()

	frameAnalysisService := service.NewFrameAnalysisService(
		frameRepository,
		analysisRepository,
		publisher,
		pool,
		service.Options{
			MaxBatchSize: cfg.MaxBatchSize,
			FetchTimeout: cfg.FrameFetchTimeout,
			Strategies:   components.StrategyFactory.CreateStrategy,
		},
	)
	handler := transport.NewHandler(frameAnalysisService, metrics, pool, cfg)

	return &Container{
		config:               cfg,
		frameRepository:      frameRepository,
		analysisRepository:   analysisRepository,
		publisher:            publisher,
		metrics:              metrics,
		pool:                 pool,
		frameAnalysisService: frameAnalysisService,
		handler:              handler,
	}, nil
}

// Handler returns the HTTP handler
func (c *Container) Handler() http.Handler {
	return c.handler
}

// Config returns the configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Close stops the batch worker pool. Queued jobs still run.
func (c *Container) Close() {
	c.pool.Close()
}
