// Package client is the public facade: it resolves YouTube links into
// metadata and ranked formats and transfers selected formats to disk.
package client

import (
	"context"
	"math/rand"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/ytgrab/ytgrab/internal/downloader"
	"github.com/ytgrab/ytgrab/internal/mediafmt"
	"github.com/ytgrab/ytgrab/internal/netid"
	"github.com/ytgrab/ytgrab/internal/proxycheck"
	"github.com/ytgrab/ytgrab/internal/randsync"
	"github.com/ytgrab/ytgrab/internal/resolve"
)

// Video is the result of resolving a link: validated metadata plus a
// ranked list of formats.
type Video struct {
	ID           string
	Title        string
	Uploader     string
	DurationSec  int64
	ThumbnailURL string
	Formats      []Format
	Strategy     string

	// HasDirectFormats is false when every entry in Formats is a
	// synthesized placeholder.
	HasDirectFormats bool
}

// Client resolves video links and downloads media streams.
type Client struct {
	cfg        Config
	httpClient *http.Client
	orch       *resolve.Orchestrator
	checker    *proxycheck.Checker
	pool       netid.Pool
	logger     Logger

	// rng is backed by a locked source and safe to share across requests.
	rng *rand.Rand
}

// New builds a Client from cfg. The zero Config is usable.
func New(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		proxyURL := ""
		if cfg.ProxyEnabled {
			proxyURL = cfg.ProxyURL
		}
		httpClient = buildHTTPClient(proxyURL)
	}
	seed := time.Now().UnixNano()
	if cfg.Rand != nil {
		seed = cfg.Rand.Int63()
	}
	rng := randsync.New(seed)
	pool := cfg.IdentityPool
	if pool == nil {
		pool = netid.DefaultPool()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = nopLogger{}
	}

	c := &Client{
		cfg:        cfg,
		httpClient: httpClient,
		checker:    proxycheck.New(),
		pool:       pool,
		logger:     logger,
		rng:        rng,
	}

	fetcher := &resolve.PageFetcher{
		Client:   httpClient,
		BaseURL:  cfg.BaseURL,
		Timeout:  cfg.RequestTimeout,
		Identity: c.identity,
	}
	resolvers := []resolve.Resolver{
		&resolve.OEmbedResolver{Fetcher: fetcher},
		&resolve.ScrapeResolver{Fetcher: fetcher},
		&resolve.PageConfigResolver{Fetcher: fetcher},
	}
	if !cfg.DisableLibraryResolver {
		resolvers = append(resolvers, &resolve.LibraryResolver{HTTPClient: httpClient})
	}
	c.orch = resolve.NewOrchestrator(resolvers, resolve.Config{
		MaxRetries:     cfg.MaxResolveRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxBackoff:     cfg.MaxBackoff,
		Rand:           rng,
		Logger:         logger,
	})
	return c
}

func (c *Client) pickIdentity() netid.Identity {
	return c.pool.Pick(c.rng)
}

func (c *Client) identity() resolve.IdentityHeaders {
	return c.pickIdentity()
}

// Resolve turns a video link or raw id into metadata and ranked formats.
// When no strategy yields direct stream URLs, the format list is filled
// with placeholders so callers can still present quality choices.
func (c *Client) Resolve(ctx context.Context, input string) (*Video, error) {
	videoID, err := ExtractVideoID(input)
	if err != nil {
		return nil, err
	}
	if err := c.checkProxy(ctx); err != nil {
		return nil, err
	}

	res, fail := c.orch.Resolve(ctx, videoID)
	if fail != nil {
		return nil, mapFailure(fail)
	}

	formats := res.Formats
	if !res.HasDirectFormats {
		formats = mediafmt.Synthesize(videoID)
	}
	return &Video{
		ID:               res.VideoID,
		Title:            res.Title,
		Uploader:         res.Uploader,
		DurationSec:      res.DurationSec,
		ThumbnailURL:     res.ThumbnailURL,
		Formats:          fromInternalSlice(formats),
		Strategy:         res.Strategy,
		HasDirectFormats: res.HasDirectFormats,
	}, nil
}

// SelectFormat picks the best transferable format of the wanted type,
// closest to desiredHeight for video. Placeholders are never returned.
func (c *Client) SelectFormat(v *Video, want StreamType, desiredHeight int) (Format, error) {
	if v == nil || len(v.Formats) == 0 {
		return Format{}, ErrNoWorkingFormat
	}
	best, ok := mediafmt.Select(toInternalSlice(v.Formats), mediafmt.StreamType(want), desiredHeight)
	if !ok {
		return Format{}, ErrNoWorkingFormat
	}
	return fromInternal(best), nil
}

// Progress is a point-in-time transfer snapshot.
type Progress = downloader.Progress

// DownloadOptions tune a single transfer.
type DownloadOptions struct {
	// OutputPath overrides the deterministic default name.
	OutputPath string
	// Progress receives throttled transfer snapshots.
	Progress func(Progress)
}

// Download transfers f to disk and returns the written path. A format
// without a direct stream URL is refused with ErrNoWorkingFormat.
func (c *Client) Download(ctx context.Context, videoID string, f Format, opts DownloadOptions) (string, error) {
	if f.Placeholder || f.URL == "" {
		return "", ErrNoWorkingFormat
	}
	if err := c.checkProxy(ctx); err != nil {
		return "", err
	}

	outputPath := opts.OutputPath
	if outputPath == "" {
		outputPath = filepath.Join(c.cfg.DownloadDir, OutputName(videoID, f))
	}

	headers := make(http.Header)
	headers.Set("Accept", "*/*")
	id := c.pickIdentity()
	if id.UserAgent != "" {
		headers.Set("User-Agent", id.UserAgent)
	}
	if id.AcceptLanguage != "" {
		headers.Set("Accept-Language", id.AcceptLanguage)
	}

	outcome, err := downloader.Transfer(ctx, c.httpClient, downloader.Request{
		URL:              f.URL,
		OutputPath:       outputPath,
		MaxBytes:         c.cfg.maxFileBytes(),
		ChunkSize:        c.cfg.ChunkSize,
		Headers:          headers,
		Progress:         opts.Progress,
		ProgressInterval: c.cfg.ProgressInterval,
		Transport: downloader.TransportConfig{
			MaxRetries:     c.cfg.MaxDownloadRetries,
			InitialBackoff: c.cfg.InitialBackoff,
			MaxBackoff:     c.cfg.MaxBackoff,
			Rand:           c.rng,
		},
	})
	if err != nil {
		return "", mapTransferError(err)
	}
	return outcome.OutputPath, nil
}

func (c *Client) checkProxy(ctx context.Context) error {
	if !c.cfg.ProxyEnabled || c.cfg.ProxyURL == "" {
		return nil
	}
	if err := c.checker.Check(ctx, c.cfg.ProxyURL); err != nil {
		return mapTransferError(err)
	}
	return nil
}

// OutputName returns the deterministic file name for a video/format pair:
// "<id>_v<height>.<ext>" for video, "<id>_a<kbps>.<ext>" for audio.
func OutputName(videoID string, f Format) string {
	ext := f.Extension
	if ext == "" || ext == "unknown" {
		ext = "bin"
	}
	if f.Type == StreamAudio {
		return videoID + "_a" + strconv.Itoa(f.AverageBitrate/1000) + "." + ext
	}
	return videoID + "_v" + strconv.Itoa(f.Height) + "." + ext
}

// QualityChoices returns the distinct video heights available, highest
// first and at most six entries, plus whether an audio-only choice exists.
func QualityChoices(formats []Format) (heights []int, hasAudio bool) {
	seen := make(map[int]bool)
	for _, f := range formats {
		switch f.Type {
		case StreamVideo:
			if f.Height > 0 && !seen[f.Height] {
				seen[f.Height] = true
				heights = append(heights, f.Height)
			}
		case StreamAudio:
			hasAudio = true
		}
	}
	// Formats arrive ordered by descending height, so seen-order is sorted.
	if len(heights) > 6 {
		heights = heights[:6]
	}
	return heights, hasAudio
}

// FormatDuration renders seconds as "M:SS" or "H:MM:SS".
func FormatDuration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return strconv.FormatInt(h, 10) + ":" + pad(m) + ":" + pad(s)
	}
	return strconv.FormatInt(m, 10) + ":" + pad(s)
}

func pad(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}
