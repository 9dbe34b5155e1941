package client

import (
	"net/http"
	"net/url"
	"strings"
)

// buildHTTPClient returns http.DefaultClient when no valid proxy is
// configured. A parseable proxy URL always yields a proxied client, even
// when http.DefaultTransport has been replaced with a custom RoundTripper.
func buildHTTPClient(proxyURL string) *http.Client {
	if strings.TrimSpace(proxyURL) == "" {
		return http.DefaultClient
	}
	parsed, err := url.Parse(proxyURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return http.DefaultClient
	}
	transport, ok := http.DefaultTransport.(*http.Transport)
	if ok {
		transport = transport.Clone()
	} else {
		transport = &http.Transport{}
	}
	transport.Proxy = http.ProxyURL(parsed)
	return &http.Client{Transport: transport}
}
