package client

import (
	"math/rand"
	"net/http"
	"time"

	"github.com/ytgrab/ytgrab/internal/netid"
)

// DefaultMaxFileBytes caps downloads at 50 MiB, the payload ceiling of the
// messaging transports this library was built to feed.
const DefaultMaxFileBytes int64 = 50 << 20

// Config holds configuration for the grabber client.
type Config struct {
	// HTTPClient is the client used for all upstream requests.
	// If nil, one is built from ProxyURL (or http.DefaultClient).
	HTTPClient *http.Client

	// ProxyURL routes all traffic through a proxy when ProxyEnabled is set.
	// Ignored when HTTPClient is provided.
	ProxyURL string

	// ProxyEnabled turns on proxy routing and pre-flight proxy health checks.
	ProxyEnabled bool

	// BaseURL overrides the upstream host (default: https://www.youtube.com).
	// Used by tests to point resolution at a fixture server.
	BaseURL string

	// DownloadDir is where media files are written. Default is the
	// current working directory.
	DownloadDir string

	// MaxFileBytes caps the size of a single download.
	// Zero means DefaultMaxFileBytes; negative means no ceiling.
	MaxFileBytes int64

	// RequestTimeout bounds each metadata/page request.
	RequestTimeout time.Duration

	// MaxResolveRetries is the retry budget for a full resolution sweep.
	MaxResolveRetries int

	// MaxDownloadRetries is the retry budget for a single media transfer.
	MaxDownloadRetries int

	// InitialBackoff and MaxBackoff bound the jittered exponential backoff
	// used by both resolution and transfer retries.
	InitialBackoff time.Duration
	MaxBackoff     time.Duration

	// ChunkSize is the transfer read size. Zero selects the package default.
	ChunkSize int

	// ProgressInterval throttles progress callbacks. Zero means one second.
	ProgressInterval time.Duration

	// IdentityPool is the set of browser identities rotated across requests.
	// If nil, a default desktop pool is used.
	IdentityPool netid.Pool

	// Rand seeds identity rotation and backoff jitter: the client draws
	// one seed from it and builds its own lock-backed source, so the
	// injected instance is never shared across goroutines. If nil, a
	// time-based seed is used. Inject a fixed seed in tests.
	Rand *rand.Rand

	// DisableLibraryResolver turns off the third-party extraction fallback.
	// Used by tests that must not reach the real upstream.
	DisableLibraryResolver bool

	// Logger receives non-fatal warnings. If nil, warnings are dropped.
	Logger Logger
}

func (c Config) maxFileBytes() int64 {
	switch {
	case c.MaxFileBytes == 0:
		return DefaultMaxFileBytes
	case c.MaxFileBytes < 0:
		return 0
	default:
		return c.MaxFileBytes
	}
}
