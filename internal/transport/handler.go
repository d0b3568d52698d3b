package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/anime-shed/frame-inspector-go/internal/analyzer"
	"github.com/anime-shed/frame-inspector-go/internal/config"
	apperrors "github.com/anime-shed/frame-inspector-go/internal/errors"
	"github.com/anime-shed/frame-inspector-go/internal/logger"
	"github.com/anime-shed/frame-inspector-go/internal/observer"
	"github.com/anime-shed/frame-inspector-go/internal/service"
	"github.com/anime-shed/frame-inspector-go/pkg/models"
)

// EngineStatus is the readiness text served by the engine status route.
const EngineStatus = "Frame engine: ready"

const version = "1.0.0"

type handler struct {
	svc     service.FrameAnalysisService
	metrics *observer.MetricsObserver
	pool    *analyzer.WorkerPool
	cfg     *config.Config
}

// NewHandler builds the HTTP API. metrics and pool may be nil, in which case
// /metrics reports only what is available.
func NewHandler(svc service.FrameAnalysisService, metrics *observer.MetricsObserver, pool *analyzer.WorkerPool, cfg *config.Config) http.Handler {
	h := &handler{svc: svc, metrics: metrics, pool: pool, cfg: cfg}

	r := gin.New()
	r.Use(
		gin.Recovery(),
		requestLogger(),
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	r.GET("/health", healthCheck)
	r.GET("/metrics", h.getMetrics)

	v1 := r.Group("/v1")
	v1.GET("/engine/status", engineStatus)

	frames := v1.Group("/frames")
	frames.POST("/batch", h.analyzeBatch)
	frames.POST("/:mode", zstdBody(cfg.MaxRequestBodySize), h.analyzeRaw)
	frames.POST("/:mode/remote", h.analyzeRemote)

	v1.POST("/images/:mode", h.analyzeStill)

	v1.GET("/analyses", h.listAnalyses)
	v1.GET("/analyses/:id", h.getAnalysis)

	return r
}

func (h *handler) analyzeRaw(c *gin.Context) {
	mode, ok := parseModeParam(c)
	if !ok {
		return
	}

	width, err1 := queryInt32(c, "width")
	height, err2 := queryInt32(c, "height")
	stride, err3 := queryInt32(c, "stride")
	if err := errors.Join(err1, err2, err3); err != nil {
		respondError(c, http.StatusBadRequest, "invalid frame geometry", apperrors.NewValidationError("Invalid query parameters", err))
		return
	}

	data, err := readBody(c)
	if err != nil {
		respondError(c, apperrors.GetStatusCode(err), "failed to read frame", err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.RequestTimeout)
	defer cancel()

	rec, err := h.svc.AnalyzeRaw(ctx, mode, data, width, height, stride)
	if err != nil {
		respondError(c, apperrors.GetStatusCode(err), "frame analysis failed", err)
		return
	}
	respondText(c, rec)
}

func (h *handler) analyzeRemote(c *gin.Context) {
	mode, ok := parseModeParam(c)
	if !ok {
		return
	}

	var req models.RemoteFrameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request format", err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.RequestTimeout)
	defer cancel()

	rec, err := h.svc.AnalyzeRemote(ctx, mode, req)
	if err != nil {
		respondError(c, apperrors.GetStatusCode(err), "remote frame analysis failed", err)
		return
	}
	respondText(c, rec)
}

func (h *handler) analyzeStill(c *gin.Context) {
	mode, ok := parseModeParam(c)
	if !ok {
		return
	}

	var req models.StillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request format", err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.RequestTimeout)
	defer cancel()

	rec, err := h.svc.AnalyzeStill(ctx, mode, req)
	if err != nil {
		respondError(c, apperrors.GetStatusCode(err), "image analysis failed", err)
		return
	}
	respondText(c, rec)
}

func (h *handler) analyzeBatch(c *gin.Context) {
	var req models.BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request format", err)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.RequestTimeout)
	defer cancel()

	resp, err := h.svc.AnalyzeBatch(ctx, req)
	if err != nil {
		respondError(c, apperrors.GetStatusCode(err), "batch analysis failed", err)
		return
	}

	logger.WithFields(logrus.Fields{
		"frames":             len(resp.Results),
		"succeeded":          resp.Succeeded,
		"failed":             resp.Failed,
		"processing_time_ms": int64(resp.ProcessingTimeSec * 1000),
	}).Info("Batch analysis completed")

	c.JSON(http.StatusOK, resp)
}

func (h *handler) getAnalysis(c *gin.Context) {
	rec, err := h.svc.GetAnalysis(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, apperrors.GetStatusCode(err), "analysis lookup failed", err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (h *handler) listAnalyses(c *gin.Context) {
	limit := 50
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			respondError(c, http.StatusBadRequest, "invalid limit", apperrors.NewValidationError("limit must be a positive integer", err))
			return
		}
		limit = n
	}

	recs, err := h.svc.RecentAnalyses(c.Request.Context(), limit)
	if err != nil {
		respondError(c, apperrors.GetStatusCode(err), "analysis listing failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"analyses": recs})
}

func (h *handler) getMetrics(c *gin.Context) {
	body := gin.H{}
	if h.metrics != nil {
		body["analysis"] = h.metrics.Snapshot()
	}
	if h.pool != nil {
		body["worker_pool"] = h.pool.GetStats()
	}
	c.JSON(http.StatusOK, body)
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": version,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func engineStatus(c *gin.Context) {
	c.String(http.StatusOK, EngineStatus)
}

func parseModeParam(c *gin.Context) (analyzer.Mode, bool) {
	mode, err := analyzer.ParseMode(c.Param("mode"))
	if err != nil {
		respondError(c, http.StatusNotFound, "unknown analysis mode", apperrors.NewNotFoundError(err.Error(), err))
		return "", false
	}
	return mode, true
}

// queryInt32 reads an optional int32 query parameter. Missing parameters read
// as 0 so the geometry check reports them.
func queryInt32(c *gin.Context, key string) (int32, error) {
	v := c.Query(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(v, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return int32(n), nil
}

// respondText writes the boundary text of rec with its status code.
func respondText(c *gin.Context, rec *models.AnalysisRecord) {
	c.Header("X-Analysis-ID", rec.ID)
	c.String(rec.StatusCode, rec.Result)
}
