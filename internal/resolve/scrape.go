package resolve

import (
	"context"
	"html"
	"regexp"
	"strconv"
)

// ScrapeResolver is the page-scraping strategy: it recovers title,
// uploader and duration from the watch page by pattern search without
// parsing the player configuration. It never yields formats.
type ScrapeResolver struct {
	Fetcher *PageFetcher
}

func (r *ScrapeResolver) Name() string { return "scrape" }

var (
	metaTitlePattern  = regexp.MustCompile(`<meta\s+name="title"\s+content="([^"]*)"`)
	ogTitlePattern    = regexp.MustCompile(`<meta\s+property="og:title"\s+content="([^"]*)"`)
	pageTitlePattern  = regexp.MustCompile(`<title>(.*?)(?:\s+-\s+YouTube)?</title>`)
	ownerNamePattern  = regexp.MustCompile(`"ownerChannelName"\s*:\s*"((?:[^"\\]|\\.)*)"`)
	authorPattern     = regexp.MustCompile(`"author"\s*:\s*"((?:[^"\\]|\\.)*)"`)
	lengthSecPattern  = regexp.MustCompile(`"lengthSeconds"\s*:\s*"(\d+)"`)
	ogImagePattern    = regexp.MustCompile(`<meta\s+property="og:image"\s+content="([^"]*)"`)
)

func (r *ScrapeResolver) Resolve(ctx context.Context, videoID string) (*Partial, *Failure) {
	page, fail := r.Fetcher.WatchPage(ctx, videoID)
	if fail != nil {
		return nil, fail
	}

	if kind, ok := ClassifyMarkers(page); ok {
		return nil, failf(kind, "watch page carries a %s marker", kind)
	}

	p := &Partial{
		Title:        firstGroup(page, metaTitlePattern, ogTitlePattern, pageTitlePattern),
		Uploader:     unescapeJSON(firstGroup(page, ownerNamePattern, authorPattern)),
		ThumbnailURL: firstGroup(page, ogImagePattern),
	}
	p.Title = html.UnescapeString(p.Title)
	if m := lengthSecPattern.FindStringSubmatch(page); m != nil {
		p.DurationSec, _ = strconv.ParseInt(m[1], 10, 64)
	}

	if p.Title == "" {
		return nil, failf(KindExtractionFailed, "scrape: no title pattern matched")
	}
	return p, nil
}

func firstGroup(page string, patterns ...*regexp.Regexp) string {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(page); m != nil && m[1] != "" {
			return m[1]
		}
	}
	return ""
}

// unescapeJSON undoes JSON string escapes found inside scraped script
// blobs. Input that does not unquote cleanly is returned as-is.
func unescapeJSON(s string) string {
	if s == "" {
		return s
	}
	unquoted, err := strconv.Unquote(`"` + s + `"`)
	if err != nil {
		return s
	}
	return unquoted
}
