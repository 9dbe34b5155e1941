// Package resolve turns a content identifier into validated metadata and a
// ranked list of playable formats, using several independent extraction
// strategies with graceful degradation.
package resolve

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/ytgrab/ytgrab/internal/mediafmt"
)

// Partial is the result of one strategy: whatever metadata and formats it
// could recover. Any field may be empty.
type Partial struct {
	Title        string
	Uploader     string
	DurationSec  int64
	ThumbnailURL string
	Formats      []mediafmt.Format
}

// Resolver is one independent method of obtaining metadata or formats for
// a video ID. Implementations return a typed Failure, never panic, and
// are idempotent for the same ID.
type Resolver interface {
	Name() string
	Resolve(ctx context.Context, videoID string) (*Partial, *Failure)
}

// Result is the merged outcome of a resolution sweep.
type Result struct {
	VideoID          string
	Title            string
	Uploader         string
	DurationSec      int64
	ThumbnailURL     string
	Formats          []mediafmt.Format
	Strategy         string
	HasDirectFormats bool
}

// Logger is the optional warning sink for non-fatal strategy failures.
type Logger interface {
	Warnf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Warnf(string, ...any) {}

// Config bounds the orchestrator's retry behavior. The random source
// drives backoff jitter and is injectable for deterministic tests.
type Config struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	Rand           *rand.Rand
	Logger         Logger
}

// Orchestrator runs resolvers in priority order, merges partial results,
// and classifies terminal vs. retryable failures.
type Orchestrator struct {
	resolvers      []Resolver
	maxRetries     int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	logger         Logger

	// rngMu serializes jitter draws: Resolve may run concurrently on one
	// orchestrator and the injected source is not safe to share bare.
	rngMu sync.Mutex
	rng   *rand.Rand
}

func NewOrchestrator(resolvers []Resolver, cfg Config) *Orchestrator {
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 500 * time.Millisecond
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 5 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = nopLogger{}
	}
	return &Orchestrator{
		resolvers:      resolvers,
		maxRetries:     cfg.MaxRetries,
		initialBackoff: cfg.InitialBackoff,
		maxBackoff:     cfg.MaxBackoff,
		rng:            cfg.Rand,
		logger:         cfg.Logger,
	}
}

// Resolve sweeps the strategies, retrying retryable failures with
// jittered exponential backoff. Terminal kinds surface immediately:
// retrying does not fix policy-based blocks.
func (o *Orchestrator) Resolve(ctx context.Context, videoID string) (*Result, *Failure) {
	var last *Failure
	for attempt := 0; attempt <= o.maxRetries; attempt++ {
		if attempt > 0 {
			if err := sleepCtx(ctx, o.backoffFor(attempt-1)); err != nil {
				return nil, wrapf(KindTransport, err, "resolution aborted")
			}
		}

		res, fail := o.sweep(ctx, videoID)
		if fail == nil {
			return res, nil
		}
		if !fail.Kind.Retryable() {
			return nil, fail
		}
		last = fail
		o.logger.Warnf("resolution attempt %d for %s failed: %v", attempt+1, videoID, fail)
	}
	return nil, last
}

func (o *Orchestrator) sweep(ctx context.Context, videoID string) (*Result, *Failure) {
	res := &Result{VideoID: videoID}
	var firstFailure *Failure

	for _, r := range o.resolvers {
		if err := ctx.Err(); err != nil {
			return nil, wrapf(KindTransport, err, "resolution aborted")
		}

		partial, fail := r.Resolve(ctx, videoID)
		if fail != nil {
			if !fail.Kind.Retryable() {
				return nil, fail
			}
			o.logger.Warnf("strategy %s failed for %s: %v", r.Name(), videoID, fail)
			if firstFailure == nil {
				firstFailure = fail
			}
			continue
		}
		if partial == nil {
			continue
		}

		merge(res, partial, r.Name())
		if len(partial.Formats) > 0 {
			// Formats are strictly more valuable than metadata-only
			// results; stop the sweep here.
			res.Strategy = r.Name()
			break
		}
	}

	if res.Title == "" {
		if firstFailure != nil {
			return nil, firstFailure
		}
		return nil, failf(KindExtractionFailed, "no strategy produced metadata for %s", videoID)
	}

	res.Formats = mediafmt.Order(mediafmt.DedupeByItag(res.Formats))
	res.HasDirectFormats = len(res.Formats) > 0
	return res, nil
}

func merge(res *Result, p *Partial, strategy string) {
	if res.Title == "" && p.Title != "" {
		res.Title = p.Title
		if res.Strategy == "" {
			res.Strategy = strategy
		}
	}
	if res.Uploader == "" {
		res.Uploader = p.Uploader
	}
	if res.DurationSec == 0 {
		res.DurationSec = p.DurationSec
	}
	if res.ThumbnailURL == "" {
		res.ThumbnailURL = p.ThumbnailURL
	}
	res.Formats = append(res.Formats, p.Formats...)
}

func (o *Orchestrator) backoffFor(attempt int) time.Duration {
	backoff := o.initialBackoff
	for i := 0; i < attempt; i++ {
		backoff *= 2
		if backoff >= o.maxBackoff {
			backoff = o.maxBackoff
			break
		}
	}
	if o.rng != nil {
		// +/- 25% jitter to avoid pattern-based detection upstream.
		o.rngMu.Lock()
		draw := o.rng.Float64()
		o.rngMu.Unlock()
		backoff += time.Duration((draw - 0.5) * 0.5 * float64(backoff))
	}
	if backoff < 0 {
		backoff = 0
	}
	return backoff
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
