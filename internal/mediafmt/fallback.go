package mediafmt

// Synthesize fabricates a small catalog of historically common itags so a
// selection menu can still be populated when no resolver produced usable
// links. Every entry is a placeholder: the URL points back at the watch
// page, not at media, and selection must reject these.
func Synthesize(videoID string) []Format {
	watchURL := "https://www.youtube.com/watch?v=" + videoID
	return []Format{
		{
			Itag:        22,
			Type:        StreamVideo,
			Extension:   "mp4",
			Width:       1280,
			Height:      720,
			VideoCodec:  "avc1.64001F",
			AudioCodec:  "mp4a.40.2",
			URL:         watchURL,
			Placeholder: true,
		},
		{
			Itag:        18,
			Type:        StreamVideo,
			Extension:   "mp4",
			Width:       640,
			Height:      360,
			VideoCodec:  "avc1.42001E",
			AudioCodec:  "mp4a.40.2",
			URL:         watchURL,
			Placeholder: true,
		},
		{
			Itag:           140,
			Type:           StreamAudio,
			Extension:      "m4a",
			AverageBitrate: 128000,
			AudioCodec:     "mp4a.40.2",
			URL:            watchURL,
			Placeholder:    true,
		},
	}
}
