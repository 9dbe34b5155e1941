package resolve

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"time"
)

const maxPageBytes = 8 << 20

// PageFetcher retrieves upstream pages with a bounded timeout and a
// caller-selected client identity applied to every request.
type PageFetcher struct {
	Client   *http.Client
	BaseURL  string
	Timeout  time.Duration
	Identity func() IdentityHeaders
}

// IdentityHeaders is the subset of a client identity a fetch needs.
type IdentityHeaders interface {
	Apply(req *http.Request)
}

func (f *PageFetcher) base() string {
	if f.BaseURL != "" {
		return f.BaseURL
	}
	return "https://www.youtube.com"
}

// WatchPage fetches the watch page for a video ID and returns its body.
func (f *PageFetcher) WatchPage(ctx context.Context, videoID string) (string, *Failure) {
	return f.get(ctx, f.base()+"/watch?v="+url.QueryEscape(videoID)+"&hl=en")
}

// OEmbed fetches the oEmbed JSON document for a video ID.
func (f *PageFetcher) OEmbed(ctx context.Context, videoID string) (string, *Failure) {
	watch := url.QueryEscape(f.base() + "/watch?v=" + videoID)
	return f.get(ctx, f.base()+"/oembed?url="+watch+"&format=json")
}

func (f *PageFetcher) get(ctx context.Context, rawURL string) (string, *Failure) {
	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", wrapf(KindTransport, err, "build request")
	}
	if f.Identity != nil {
		f.Identity().Apply(req)
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", wrapf(KindTransport, err, "fetch %s", rawURL)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return "", failf(KindUnavailable, "upstream status %d", resp.StatusCode)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return "", failf(KindLoginRequired, "upstream status %d", resp.StatusCode)
	default:
		return "", failf(KindTransport, "upstream status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", wrapf(KindTransport, err, "read body")
	}
	return string(body), nil
}
