// Package netid supplies randomized but realistic browser identities for
// upstream requests. Selection is a pure function over a provided pool and
// random source so callers can pin it down in tests.
package netid

import (
	"math/rand"
	"net/http"
)

// Identity is one client identity: a User-Agent plus the headers a real
// browser would send alongside it.
type Identity struct {
	UserAgent      string
	AcceptLanguage string
}

// Pool is an ordered set of identities to pick from.
type Pool []Identity

// DefaultPool returns a small set of common desktop browser identities.
func DefaultPool() Pool {
	return Pool{
		{
			UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
			AcceptLanguage: "en-US,en;q=0.9",
		},
		{
			UserAgent:      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36",
			AcceptLanguage: "en-US,en;q=0.8",
		},
		{
			UserAgent:      "Mozilla/5.0 (X11; Linux x86_64; rv:125.0) Gecko/20100101 Firefox/125.0",
			AcceptLanguage: "en-US,en;q=0.5",
		},
		{
			UserAgent:      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
			AcceptLanguage: "en-US,en;q=0.9",
		},
	}
}

// Pick selects one identity from the pool using r. An empty pool yields a
// zero identity; Apply treats that as "send nothing extra".
func (p Pool) Pick(r *rand.Rand) Identity {
	if len(p) == 0 {
		return Identity{}
	}
	if r == nil {
		return p[0]
	}
	return p[r.Intn(len(p))]
}

// Apply sets the identity headers on req, plus the static headers a
// browser page load carries.
func (id Identity) Apply(req *http.Request) {
	if id.UserAgent != "" {
		req.Header.Set("User-Agent", id.UserAgent)
	}
	if id.AcceptLanguage != "" {
		req.Header.Set("Accept-Language", id.AcceptLanguage)
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	}
}
