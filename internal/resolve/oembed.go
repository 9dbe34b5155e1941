package resolve

import (
	"context"
	"encoding/json"
)

// OEmbedResolver is the lightweight embed-metadata strategy: one small
// JSON endpoint, title and uploader only, never formats. Its error
// surface is too coarse to classify policy blocks, so every failure is a
// plain retryable strategy failure.
type OEmbedResolver struct {
	Fetcher *PageFetcher
}

func (r *OEmbedResolver) Name() string { return "oembed" }

type oembedDocument struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ThumbnailURL string `json:"thumbnail_url"`
}

func (r *OEmbedResolver) Resolve(ctx context.Context, videoID string) (*Partial, *Failure) {
	body, fail := r.Fetcher.OEmbed(ctx, videoID)
	if fail != nil {
		if !fail.Kind.Retryable() {
			return nil, failf(KindExtractionFailed, "oembed: %s", fail.Message)
		}
		return nil, fail
	}

	var doc oembedDocument
	if err := json.Unmarshal([]byte(body), &doc); err != nil {
		return nil, wrapf(KindExtractionFailed, err, "oembed: decode")
	}
	if doc.Title == "" {
		return nil, failf(KindExtractionFailed, "oembed: empty title")
	}

	return &Partial{
		Title:        doc.Title,
		Uploader:     doc.AuthorName,
		ThumbnailURL: doc.ThumbnailURL,
	}, nil
}
