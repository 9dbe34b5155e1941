package resolve

import (
	"context"
	"net/http"

	youtube "github.com/kkdai/youtube/v2"

	"github.com/ytgrab/ytgrab/internal/mediafmt"
)

// LibraryResolver is the strategy of last resort: it delegates to the
// kkdai/youtube client, which maintains its own extraction pipeline
// (including URL resolution for entries the page strategies must drop).
type LibraryResolver struct {
	HTTPClient *http.Client
}

func (r *LibraryResolver) Name() string { return "library" }

func (r *LibraryResolver) Resolve(ctx context.Context, videoID string) (*Partial, *Failure) {
	client := youtube.Client{HTTPClient: r.HTTPClient}

	video, err := client.GetVideoContext(ctx, videoID)
	if err != nil {
		if kind, ok := ClassifyMarkers(err.Error()); ok {
			return nil, wrapf(kind, err, "library resolver")
		}
		return nil, wrapf(KindExtractionFailed, err, "library resolver")
	}

	p := &Partial{
		Title:       video.Title,
		Uploader:    video.Author,
		DurationSec: int64(video.Duration.Seconds()),
	}
	if len(video.Thumbnails) > 0 {
		p.ThumbnailURL = video.Thumbnails[len(video.Thumbnails)-1].URL
	}

	for i := range video.Formats {
		f := video.Formats[i]
		streamURL := f.URL
		if streamURL == "" {
			resolved, err := client.GetStreamURLContext(ctx, video, &f)
			if err != nil {
				// Unresolvable entry; drop it rather than failing the
				// whole strategy.
				continue
			}
			streamURL = resolved
		}

		hint := mediafmt.StreamVideo
		if f.AudioQuality != "" && f.Height == 0 {
			hint = mediafmt.StreamAudio
		}
		normalized, ok := mediafmt.Normalize(mediafmt.RawFormat{
			Itag:           f.ItagNo,
			URL:            streamURL,
			MimeType:       f.MimeType,
			Width:          f.Width,
			Height:         f.Height,
			FPS:            f.FPS,
			Bitrate:        f.Bitrate,
			AverageBitrate: f.AverageBitrate,
			ContentLength:  f.ContentLength,
		}, hint)
		if ok {
			p.Formats = append(p.Formats, normalized)
		}
	}

	p.Formats = mediafmt.Order(mediafmt.DedupeByItag(p.Formats))
	return p, nil
}
