package client

import "github.com/ytgrab/ytgrab/internal/mediafmt"

// StreamType says whether a format carries video or audio.
type StreamType string

const (
	StreamVideo StreamType = StreamType(mediafmt.StreamVideo)
	StreamAudio StreamType = StreamType(mediafmt.StreamAudio)
)

// Format is one downloadable stream variant of a resolved video.
type Format struct {
	Itag           int
	Type           StreamType
	Extension      string
	Width          int
	Height         int
	FPS            int
	AverageBitrate int
	VideoCodec     string
	AudioCodec     string
	ContentLength  int64
	URL            string

	// Placeholder marks a synthesized entry whose URL is the watch page,
	// not a direct stream. Placeholders cannot be downloaded.
	Placeholder bool
}

func fromInternal(f mediafmt.Format) Format {
	return Format{
		Itag:           f.Itag,
		Type:           StreamType(f.Type),
		Extension:      f.Extension,
		Width:          f.Width,
		Height:         f.Height,
		FPS:            f.FPS,
		AverageBitrate: f.AverageBitrate,
		VideoCodec:     f.VideoCodec,
		AudioCodec:     f.AudioCodec,
		ContentLength:  f.ContentLength,
		URL:            f.URL,
		Placeholder:    f.Placeholder,
	}
}

func toInternal(f Format) mediafmt.Format {
	return mediafmt.Format{
		Itag:           f.Itag,
		Type:           mediafmt.StreamType(f.Type),
		Extension:      f.Extension,
		Width:          f.Width,
		Height:         f.Height,
		FPS:            f.FPS,
		AverageBitrate: f.AverageBitrate,
		VideoCodec:     f.VideoCodec,
		AudioCodec:     f.AudioCodec,
		ContentLength:  f.ContentLength,
		URL:            f.URL,
		Placeholder:    f.Placeholder,
	}
}

func fromInternalSlice(in []mediafmt.Format) []Format {
	out := make([]Format, len(in))
	for i, f := range in {
		out[i] = fromInternal(f)
	}
	return out
}

func toInternalSlice(in []Format) []mediafmt.Format {
	out := make([]mediafmt.Format, len(in))
	for i, f := range in {
		out[i] = toInternal(f)
	}
	return out
}
