package resolve

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/ytgrab/ytgrab/internal/mediafmt"
)

// PageConfigResolver is the page-configuration strategy. It locates the
// player response embedded in the watch page behind one of several known
// variable-assignment markers, parses it, and yields a full, codec-tagged
// format list. It is the only hand-rolled strategy that produces formats.
type PageConfigResolver struct {
	Fetcher *PageFetcher
}

func (r *PageConfigResolver) Name() string { return "pageconfig" }

// Ordered assignment markers; newest page layout first.
var playerResponseMarkers = []string{
	"var ytInitialPlayerResponse = ",
	`window["ytInitialPlayerResponse"] = `,
	"ytInitialPlayerResponse = ",
}

// playerResponse is the subset of the embedded player configuration the
// resolver consumes.
type playerResponse struct {
	PlayabilityStatus playabilityStatus `json:"playabilityStatus"`
	StreamingData     streamingData     `json:"streamingData"`
	VideoDetails      videoDetails      `json:"videoDetails"`
}

type playabilityStatus struct {
	Status string `json:"status"`
	Reason string `json:"reason"`
}

func (p playabilityStatus) ok() bool {
	return p.Status == "" || p.Status == "OK"
}

type streamingData struct {
	Formats         []pageFormat `json:"formats"`
	AdaptiveFormats []pageFormat `json:"adaptiveFormats"`
}

type pageFormat struct {
	Itag            int    `json:"itag"`
	URL             string `json:"url"`
	MimeType        string `json:"mimeType"`
	Bitrate         int    `json:"bitrate"`
	AverageBitrate  int    `json:"averageBitrate"`
	Width           int    `json:"width"`
	Height          int    `json:"height"`
	FPS             int    `json:"fps"`
	ContentLength   string `json:"contentLength"`
	QualityLabel    string `json:"qualityLabel"`
	AudioQuality    string `json:"audioQuality"`
	SignatureCipher string `json:"signatureCipher"`
	Cipher          string `json:"cipher"`
}

type videoDetails struct {
	VideoID       string           `json:"videoId"`
	Title         string           `json:"title"`
	Author        string           `json:"author"`
	LengthSeconds string           `json:"lengthSeconds"`
	IsLiveContent bool             `json:"isLiveContent"`
	IsPrivate     bool             `json:"isPrivate"`
	Thumbnail     thumbnailDetails `json:"thumbnail"`
}

type thumbnailDetails struct {
	Thumbnails []thumbnail `json:"thumbnails"`
}

type thumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

func (r *PageConfigResolver) Resolve(ctx context.Context, videoID string) (*Partial, *Failure) {
	page, fail := r.Fetcher.WatchPage(ctx, videoID)
	if fail != nil {
		return nil, fail
	}

	resp, ok := parsePlayerResponse(page)
	if !ok {
		// No marker parsed: degrade to "no formats", not an error.
		return &Partial{}, nil
	}

	if resp.VideoDetails.IsPrivate {
		return nil, failf(KindUnavailable, "private video")
	}
	if !resp.PlayabilityStatus.ok() {
		kind := ClassifyPlayability(resp.PlayabilityStatus.Status, resp.PlayabilityStatus.Reason)
		return nil, failf(kind, "playability %s: %s", resp.PlayabilityStatus.Status, resp.PlayabilityStatus.Reason)
	}
	if resp.VideoDetails.IsLiveContent {
		return nil, failf(KindLiveUnsupported, "live streams are not supported")
	}

	p := &Partial{
		Title:    resp.VideoDetails.Title,
		Uploader: resp.VideoDetails.Author,
	}
	p.DurationSec, _ = strconv.ParseInt(resp.VideoDetails.LengthSeconds, 10, 64)
	if thumbs := resp.VideoDetails.Thumbnail.Thumbnails; len(thumbs) > 0 {
		p.ThumbnailURL = thumbs[len(thumbs)-1].URL
	}

	p.Formats = collectFormats(resp.StreamingData)
	return p, nil
}

// parsePlayerResponse tries each marker in order; the first one whose
// extracted object parses wins.
func parsePlayerResponse(page string) (*playerResponse, bool) {
	for _, marker := range playerResponseMarkers {
		blob, ok := extractJSONObject(page, marker)
		if !ok {
			continue
		}
		var resp playerResponse
		if err := json.Unmarshal([]byte(blob), &resp); err != nil {
			continue
		}
		return &resp, true
	}
	return nil, false
}

// extractJSONObject locates marker in page and returns the balanced JSON
// object that follows it. Pure function over the page text.
func extractJSONObject(page, marker string) (string, bool) {
	idx := strings.Index(page, marker)
	if idx < 0 {
		return "", false
	}
	rest := page[idx+len(marker):]
	start := strings.IndexByte(rest, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(rest); i++ {
		c := rest[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return rest[start : i+1], true
			}
		}
	}
	return "", false
}

// collectFormats normalizes progressive then adaptive entries. Entries
// carrying only a ciphered signature are dropped: deciphering is not this
// resolver's contract.
func collectFormats(sd streamingData) []mediafmt.Format {
	out := make([]mediafmt.Format, 0, len(sd.Formats)+len(sd.AdaptiveFormats))

	add := func(raw pageFormat, hint mediafmt.StreamType) {
		if raw.URL == "" {
			// Ciphered or otherwise unresolvable; drop, never crash.
			return
		}
		contentLength, _ := strconv.ParseInt(raw.ContentLength, 10, 64)
		f, ok := mediafmt.Normalize(mediafmt.RawFormat{
			Itag:           raw.Itag,
			URL:            raw.URL,
			MimeType:       raw.MimeType,
			Width:          raw.Width,
			Height:         raw.Height,
			FPS:            raw.FPS,
			Bitrate:        raw.Bitrate,
			AverageBitrate: raw.AverageBitrate,
			ContentLength:  contentLength,
		}, hint)
		if ok {
			out = append(out, f)
		}
	}

	for _, raw := range sd.Formats {
		add(raw, mediafmt.StreamVideo)
	}
	for _, raw := range sd.AdaptiveFormats {
		hint := mediafmt.StreamVideo
		if strings.HasPrefix(raw.MimeType, "audio/") || raw.AudioQuality != "" && raw.Height == 0 {
			hint = mediafmt.StreamAudio
		}
		add(raw, hint)
	}

	return mediafmt.Order(mediafmt.DedupeByItag(out))
}
