// Package downloader streams media over HTTP with retries, size ceilings
// and atomic part-file writes.
package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrTooLarge is returned when the payload would exceed the size ceiling.
	ErrTooLarge = errors.New("downloader: payload exceeds size limit")
	// ErrPlaceholder is returned when the request URL is not a direct media URL.
	ErrPlaceholder = errors.New("downloader: format has no direct stream url")
)

const defaultChunkSize = 256 * 1024

// Request describes a single media transfer.
type Request struct {
	URL        string
	OutputPath string

	// MaxBytes caps the payload size. Zero means no ceiling.
	MaxBytes int64

	ChunkSize int
	Headers   http.Header

	Progress            ProgressFunc
	ProgressInterval    time.Duration
	ProgressEveryChunks int

	Transport TransportConfig

	// Placeholder marks a synthesized format whose URL is a watch page,
	// not a media stream. Such requests are refused up front.
	Placeholder bool
}

// Outcome reports a completed transfer.
type Outcome struct {
	OutputPath string
	Bytes      int64
}

// Transfer downloads req.URL into req.OutputPath. The payload is written to
// a temporary part file which is renamed into place only after the full body
// arrived; a failed or aborted transfer leaves no file behind.
func Transfer(ctx context.Context, client *http.Client, req Request) (*Outcome, error) {
	if req.Placeholder {
		return nil, ErrPlaceholder
	}
	if req.URL == "" {
		return nil, errors.New("downloader: empty url")
	}
	if req.OutputPath == "" {
		return nil, errors.New("downloader: empty output path")
	}
	if client == nil {
		client = http.DefaultClient
	}
	cfg := normalizeTransportConfig(req.Transport)

	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := cfg.backoffFor(attempt - 1)
			var statusErr *transferHTTPStatusError
			if errors.As(lastErr, &statusErr) && statusErr.RetryAfter > backoff {
				backoff = statusErr.RetryAfter
			}
			if err := waitBackoff(ctx, backoff); err != nil {
				return nil, err
			}
		}
		outcome, err := transferOnce(ctx, client, req)
		if err == nil {
			return outcome, nil
		}
		lastErr = err
		if !isRetryableError(err, cfg) {
			return nil, err
		}
	}
	return nil, fmt.Errorf("downloader: transfer failed after %d attempts: %w", cfg.MaxRetries+1, lastErr)
}

func transferOnce(ctx context.Context, client *http.Client, req Request) (*Outcome, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("downloader: build request: %w", err)
	}
	for key, values := range req.Headers {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("downloader: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		return nil, &transferHTTPStatusError{
			StatusCode: resp.StatusCode,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
		}
	}

	total := resp.ContentLength
	if req.MaxBytes > 0 && total > req.MaxBytes {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooLarge, total, req.MaxBytes)
	}

	if dir := filepath.Dir(req.OutputPath); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("downloader: create output dir: %w", err)
		}
	}
	partPath := req.OutputPath + ".part-" + uuid.NewString()
	out, err := os.Create(partPath)
	if err != nil {
		return nil, fmt.Errorf("downloader: create part file: %w", err)
	}

	written, err := copyBody(ctx, out, resp.Body, req, total)
	closeErr := out.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && total > 0 && written != total {
		err = fmt.Errorf("downloader: truncated body: got %d of %d bytes", written, total)
	}
	if err != nil {
		os.Remove(partPath)
		return nil, err
	}
	if err := os.Rename(partPath, req.OutputPath); err != nil {
		os.Remove(partPath)
		return nil, fmt.Errorf("downloader: finalize output: %w", err)
	}
	return &Outcome{OutputPath: req.OutputPath, Bytes: written}, nil
}

func copyBody(ctx context.Context, out io.Writer, body io.Reader, req Request, total int64) (int64, error) {
	chunkSize := req.ChunkSize
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	meter := newProgressMeter(req.Progress, total, req.ProgressInterval, req.ProgressEveryChunks)
	buf := make([]byte, chunkSize)
	var written int64
	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		n, readErr := body.Read(buf)
		if n > 0 {
			if req.MaxBytes > 0 && written+int64(n) > req.MaxBytes {
				return written, fmt.Errorf("%w: ceiling %d crossed mid-stream", ErrTooLarge, req.MaxBytes)
			}
			wn, writeErr := out.Write(buf[:n])
			written += int64(wn)
			if writeErr != nil {
				return written, fmt.Errorf("downloader: write: %w", writeErr)
			}
			meter.add(int64(n))
		}
		if readErr == io.EOF {
			meter.finish()
			return written, nil
		}
		if readErr != nil {
			return written, fmt.Errorf("downloader: read body: %w", readErr)
		}
	}
}
