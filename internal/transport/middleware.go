package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/anime-shed/frame-inspector-go/internal/compress"
	apperrors "github.com/anime-shed/frame-inspector-go/internal/errors"
	"github.com/anime-shed/frame-inspector-go/internal/logger"
	"github.com/anime-shed/frame-inspector-go/pkg/models"
)

const bodyKey = "frame_body"

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := logger.WithFields(logrus.Fields{
			"method":      c.Request.Method,
			"path":        c.Request.URL.Path,
			"status_code": c.Writer.Status(),
			"duration_ms": time.Since(start).Milliseconds(),
			"ip":          c.ClientIP(),
			"user_agent":  c.Request.UserAgent(),
		})
		if id := c.Writer.Header().Get("X-Analysis-ID"); id != "" {
			entry = entry.WithField("analysis_id", id)
		}
		entry.Debug("Request handled")
	}
}

func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// zstdBody reads the request body, inflating it when sent with
// Content-Encoding: zstd, and stores the bytes for readBody.
func zstdBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		encoding := strings.ToLower(strings.TrimSpace(c.GetHeader("Content-Encoding")))

		var (
			data []byte
			err  error
		)
		switch encoding {
		case "", "identity":
			data, err = io.ReadAll(c.Request.Body)
		case "zstd":
			data, err = compress.DecompressReader(c.Request.Body, maxBytes)
		default:
			respondError(c, http.StatusUnsupportedMediaType, "unsupported content encoding",
				apperrors.NewValidationError(fmt.Sprintf("Content-Encoding %q not supported", encoding), nil))
			return
		}

		if err != nil {
			respondError(c, bodyErrorStatus(err), "failed to read frame", err)
			return
		}
		c.Set(bodyKey, data)
		c.Next()
	}
}

func bodyErrorStatus(err error) int {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) || errors.Is(err, compress.ErrTooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}

// bodyLimit returns the limit a MaxBytesReader enforced, or 0.
func bodyLimit(err error) int64 {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return maxErr.Limit
	}
	return 0
}

func readBody(c *gin.Context) ([]byte, error) {
	if v, ok := c.Get(bodyKey); ok {
		if data, ok := v.([]byte); ok {
			return data, nil
		}
	}
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		if bodyErrorStatus(err) == http.StatusRequestEntityTooLarge {
			return nil, apperrors.NewTooLargeError("Request body too large", bodyLimit(err), err)
		}
		return nil, apperrors.NewValidationError("Failed to read request body", err)
	}
	return data, nil
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()
			respondError(c, determineStatusCode(err.Err), "request processing failed", err.Err)
		}
	}
}

func determineStatusCode(err error) int {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, code int, message string, err error) {
	entry := logger.WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	})
	if err != nil {
		entry = entry.WithError(err)
	}
	var detailed *apperrors.AppError
	if errors.As(err, &detailed) && detailed.Details != "" {
		entry = entry.WithField("details", detailed.Details)
	}
	if code >= http.StatusInternalServerError {
		entry.Error("Request failed")
	} else {
		entry.Warn("Request rejected")
	}

	detail := message
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		detail = fmt.Sprintf("%s: %s", message, appErr.Message)
	} else if err != nil {
		detail = fmt.Sprintf("%s: %v", message, err)
	}

	c.AbortWithStatusJSON(code, models.ErrorResponse{
		Error:   http.StatusText(code),
		Message: detail,
	})
}
