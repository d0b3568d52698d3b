package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/anime-shed/frame-inspector-go/internal/compress"
)

const fetchAttempts = 3

// HTTPFrameFetcher downloads frames over HTTP(S) with retries on transient
// failures. zstd encoded bodies are inflated before being returned.
type HTTPFrameFetcher struct {
	client   *http.Client
	maxBytes int64
	backoff  time.Duration
}

// HTTPFetcherOption customizes an HTTPFrameFetcher.
type HTTPFetcherOption func(*HTTPFrameFetcher)

// WithRetryBackoff sets the base delay between attempts. Attempt n waits n*d.
func WithRetryBackoff(d time.Duration) HTTPFetcherOption {
	return func(f *HTTPFrameFetcher) {
		f.backoff = d
	}
}

// NewHTTPFrameFetcher creates an HTTP frame fetcher capped at maxBytes per frame
func NewHTTPFrameFetcher(maxBytes int64, timeout time.Duration, opts ...HTTPFetcherOption) *HTTPFrameFetcher {
	transport := &http.Transport{
		MaxIdleConns:        32,
		MaxIdleConnsPerHost: 8, // batch requests often hit one origin
		IdleConnTimeout:     30 * time.Second,

		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,

		MaxResponseHeaderBytes: 4096,
	}

	f := &HTTPFrameFetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("too many redirects (limit: 3)")
				}
				return nil
			},
		},
		maxBytes: maxBytes,
		backoff:  time.Second,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (h *HTTPFrameFetcher) FetchFrame(ctx context.Context, frameURL string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt < fetchAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * h.backoff):
			}
		}

		data, retry, err := h.fetchOnce(ctx, frameURL)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if !retry {
			break
		}
	}

	return nil, fmt.Errorf("failed to fetch frame after %d attempts: %w", fetchAttempts, lastErr)
}

// fetchOnce performs a single request and reports whether a failure is worth
// another attempt. Only transport errors and 5xx responses are retried.
func (h *HTTPFrameFetcher) fetchOnce(ctx context.Context, frameURL string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, frameURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrInvalidReference, err)
	}
	req.Header.Set("Accept", "application/octet-stream, image/*, */*")
	req.Header.Set("Accept-Encoding", "zstd, identity")
	req.Header.Set("User-Agent", "Frame-Inspector/1.0")

	resp, err := h.client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, false, err
		}
		return nil, true, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return nil, false, fmt.Errorf("%w: client error: status code %d", ErrFrameNotFound, resp.StatusCode)
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, false, fmt.Errorf("client error: status code %d", resp.StatusCode)
	case resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("server error: status code %d", resp.StatusCode)
	default:
		return nil, false, fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	if resp.ContentLength > h.maxBytes && !isZstdEncoded(resp.Header) {
		return nil, false, fmt.Errorf("%w (limit %d bytes)", ErrFrameTooLarge, h.maxBytes)
	}

	body, err := readLimited(resp.Body, h.maxBytes)
	if err != nil {
		return nil, false, err
	}

	declared := isZstdEncoded(resp.Header)
	if !declared && !compress.IsZstd(body) {
		return body, false, nil
	}

	inflated, err := compress.Decompress(body, h.maxBytes)
	switch {
	case errors.Is(err, compress.ErrTooLarge):
		return nil, false, fmt.Errorf("%w (limit %d bytes)", ErrFrameTooLarge, h.maxBytes)
	case err != nil && declared:
		return nil, false, err
	case err != nil:
		// Raw luma that merely starts with the zstd magic.
		return body, false, nil
	}
	return inflated, false, nil
}

func isZstdEncoded(h http.Header) bool {
	return strings.EqualFold(strings.TrimSpace(h.Get("Content-Encoding")), "zstd")
}
