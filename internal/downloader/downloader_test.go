package downloader

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func payloadServer(t *testing.T, body []byte) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", fmt.Sprint(len(body)))
		w.WriteHeader(http.StatusOK)
		w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestTransferWritesFullPayload(t *testing.T) {
	body := []byte(strings.Repeat("abcdefgh", 4096))
	srv := payloadServer(t, body)

	var snapshots []Progress
	out := filepath.Join(t.TempDir(), "media.mp4")
	outcome, err := Transfer(context.Background(), srv.Client(), Request{
		URL:              srv.URL,
		OutputPath:       out,
		ChunkSize:        1024,
		Progress:         func(p Progress) { snapshots = append(snapshots, p) },
		ProgressInterval: time.Millisecond,
	})
	if err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	if outcome.Bytes != int64(len(body)) {
		t.Fatalf("bytes = %d, want %d", outcome.Bytes, len(body))
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if len(data) != len(body) {
		t.Fatalf("output size = %d, want %d", len(data), len(body))
	}
	if len(snapshots) == 0 {
		t.Fatal("expected at least one progress snapshot")
	}
	last := snapshots[len(snapshots)-1]
	if last.BytesWritten != int64(len(body)) {
		t.Fatalf("last snapshot bytes = %d, want %d", last.BytesWritten, len(body))
	}
	if last.Percent != 100 {
		t.Fatalf("last snapshot percent = %v, want 100", last.Percent)
	}
}

func TestTransferRefusesPlaceholder(t *testing.T) {
	_, err := Transfer(context.Background(), nil, Request{
		URL:         "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		OutputPath:  filepath.Join(t.TempDir(), "x.mp4"),
		Placeholder: true,
	})
	if !errors.Is(err, ErrPlaceholder) {
		t.Fatalf("err = %v, want ErrPlaceholder", err)
	}
}

func TestTransferTooLargeAnnounced(t *testing.T) {
	srv := payloadServer(t, make([]byte, 4096))
	_, err := Transfer(context.Background(), srv.Client(), Request{
		URL:        srv.URL,
		OutputPath: filepath.Join(t.TempDir(), "x.mp4"),
		MaxBytes:   1024,
	})
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("err = %v, want ErrTooLarge", err)
	}
}

func TestTransferTooLargeMidStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Chunked response: no Content-Length, the ceiling must trip mid-stream.
		flusher := w.(http.Flusher)
		chunk := make([]byte, 1024)
		for i := 0; i < 8; i++ {
			w.Write(chunk)
			flusher.Flush()
		}
	}))
	defer srv.Close()

	out := filepath.Join(t.TempDir(), "x.mp4")
	_, err := Transfer(context.Background(), srv.Client(), Request{
		URL:        srv.URL,
		OutputPath: out,
		MaxBytes:   2048,
		ChunkSize:  1024,
	})
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("err = %v, want ErrTooLarge", err)
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Fatalf("output file should not exist, stat err = %v", statErr)
	}
}

func TestTransferTruncatedBodyLeavesNoFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "8192")
		w.WriteHeader(http.StatusOK)
		w.Write(make([]byte, 1024))
		// Hijack and drop the connection so the body ends short.
		conn, _, err := w.(http.Hijacker).Hijack()
		if err == nil {
			conn.Close()
		}
	}))
	defer srv.Close()

	out := filepath.Join(t.TempDir(), "x.mp4")
	_, err := Transfer(context.Background(), srv.Client(), Request{
		URL:        srv.URL,
		OutputPath: out,
	})
	if err == nil {
		t.Fatal("expected error for truncated body")
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Fatalf("output file should not exist, stat err = %v", statErr)
	}
	entries, readErr := os.ReadDir(filepath.Dir(out))
	if readErr != nil {
		t.Fatalf("read dir: %v", readErr)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no leftover part files, found %d entries", len(entries))
	}
}

func TestTransferRetriesRetryableStatus(t *testing.T) {
	body := []byte("hello media payload")
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Length", fmt.Sprint(len(body)))
		w.Write(body)
	}))
	defer srv.Close()

	outcome, err := Transfer(context.Background(), srv.Client(), Request{
		URL:        srv.URL,
		OutputPath: filepath.Join(t.TempDir(), "x.mp4"),
		Transport: TransportConfig{
			MaxRetries:     2,
			InitialBackoff: time.Millisecond,
			MaxBackoff:     2 * time.Millisecond,
		},
	})
	if err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want 2", calls)
	}
	if outcome.Bytes != int64(len(body)) {
		t.Fatalf("bytes = %d, want %d", outcome.Bytes, len(body))
	}
}

func TestTransferStopsOnTerminalStatus(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := Transfer(context.Background(), srv.Client(), Request{
		URL:        srv.URL,
		OutputPath: filepath.Join(t.TempDir(), "x.mp4"),
		Transport: TransportConfig{
			MaxRetries:     3,
			InitialBackoff: time.Millisecond,
		},
	})
	if err == nil {
		t.Fatal("expected error for 403")
	}
	var statusErr *transferHTTPStatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusForbidden {
		t.Fatalf("err = %v, want status error 403", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestTransferCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	srv := payloadServer(t, []byte("data"))
	_, err := Transfer(ctx, srv.Client(), Request{
		URL:        srv.URL,
		OutputPath: filepath.Join(t.TempDir(), "x.mp4"),
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestBackoffForCapsAtMax(t *testing.T) {
	cfg := normalizeTransportConfig(TransportConfig{
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     time.Second,
		JitterFraction: -1, // normalized, but Rand is nil so no jitter applies
	})
	if got := cfg.backoffFor(0); got != 100*time.Millisecond {
		t.Fatalf("backoffFor(0) = %v", got)
	}
	if got := cfg.backoffFor(2); got != 400*time.Millisecond {
		t.Fatalf("backoffFor(2) = %v", got)
	}
	if got := cfg.backoffFor(10); got != time.Second {
		t.Fatalf("backoffFor(10) = %v, want cap", got)
	}
}

func TestParseRetryAfter(t *testing.T) {
	cases := []struct {
		raw  string
		want time.Duration
	}{
		{"", 0},
		{"3", 3 * time.Second},
		{"-1", 0},
		{"garbage", 0},
	}
	for _, tc := range cases {
		if got := parseRetryAfter(tc.raw); got != tc.want {
			t.Fatalf("parseRetryAfter(%q) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}
