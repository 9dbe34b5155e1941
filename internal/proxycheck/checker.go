// Package proxycheck probes proxy endpoints for liveness and caches verdicts.
package proxycheck

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// ErrProxyDown is returned when the configured proxy fails its liveness probe.
var ErrProxyDown = errors.New("proxycheck: proxy failed liveness probe")

const (
	defaultProbeURL = "https://www.gstatic.com/generate_204"
	defaultTTL      = 5 * time.Minute
	defaultTimeout  = 10 * time.Second
)

type verdict struct {
	healthy   bool
	checkedAt time.Time
	err       error
}

// Checker verifies that a proxy forwards traffic before it is trusted for
// media transfers. Verdicts are cached per proxy URL for a TTL.
type Checker struct {
	// ProbeURL is fetched through the proxy. A 204 or 200 marks it healthy.
	ProbeURL string
	// TTL bounds how long a cached verdict stays valid.
	TTL time.Duration
	// Timeout applies to each probe request.
	Timeout time.Duration

	// now is swapped in tests.
	now func() time.Time

	mu    sync.RWMutex
	cache map[string]verdict
}

// New returns a Checker with default probe target and cache TTL.
func New() *Checker {
	return &Checker{
		ProbeURL: defaultProbeURL,
		TTL:      defaultTTL,
		Timeout:  defaultTimeout,
		now:      time.Now,
		cache:    make(map[string]verdict),
	}
}

// Check probes proxyURL, reusing a cached verdict when fresh. It returns
// ErrProxyDown (wrapping the probe failure) when the proxy is unhealthy.
func (c *Checker) Check(ctx context.Context, proxyURL string) error {
	if proxyURL == "" {
		return errors.New("proxycheck: empty proxy url")
	}
	now := c.now()

	c.mu.RLock()
	v, ok := c.cache[proxyURL]
	c.mu.RUnlock()
	if ok && now.Sub(v.checkedAt) < c.TTL {
		if v.healthy {
			return nil
		}
		return v.err
	}

	err := c.probe(ctx, proxyURL)
	if err != nil && !errors.Is(err, ErrProxyDown) {
		// The caller's context died, which says nothing about the proxy.
		return err
	}
	v = verdict{healthy: err == nil, checkedAt: now, err: err}

	c.mu.Lock()
	c.cache[proxyURL] = v
	c.mu.Unlock()
	return err
}

// Invalidate drops any cached verdict for proxyURL, forcing a fresh probe.
func (c *Checker) Invalidate(proxyURL string) {
	c.mu.Lock()
	delete(c.cache, proxyURL)
	c.mu.Unlock()
}

func (c *Checker) probe(ctx context.Context, proxyURL string) error {
	parsed, err := url.Parse(proxyURL)
	if err != nil {
		return fmt.Errorf("%w: invalid proxy url: %v", ErrProxyDown, err)
	}
	client := &http.Client{
		Transport: &http.Transport{Proxy: http.ProxyURL(parsed)},
		Timeout:   c.Timeout,
	}
	defer client.CloseIdleConnections()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ProbeURL, nil)
	if err != nil {
		return fmt.Errorf("%w: build probe: %v", ErrProxyDown, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrProxyDown, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: probe status %d", ErrProxyDown, resp.StatusCode)
	}
	return nil
}
