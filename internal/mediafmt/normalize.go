package mediafmt

import (
	"mime"
	"strings"
)

var extensionByMediaType = map[string]string{
	"video/mp4":   "mp4",
	"video/webm":  "webm",
	"video/3gpp":  "3gp",
	"video/x-flv": "flv",
	"audio/mp4":   "m4a",
	"audio/webm":  "weba",
	"audio/mpeg":  "mp3",
}

var videoCodecPrefixes = []string{"avc1", "av01", "vp09", "vp9", "vp8", "hev1", "hvc1", "mp4v"}

var audioCodecPrefixes = []string{"mp4a", "opus", "vorbis", "ec-3", "ac-3", "dtse"}

// Normalize converts a raw strategy descriptor into a canonical Format.
// The hinted stream type is used when the MIME type carries no usable
// media class. Entries without a resolvable URL are dropped (ok=false),
// never reported as an error.
func Normalize(raw RawFormat, hinted StreamType) (Format, bool) {
	if strings.TrimSpace(raw.URL) == "" {
		return Format{}, false
	}

	mediaType, params, err := mime.ParseMediaType(raw.MimeType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(raw.MimeType))
		params = nil
	}

	streamType := hinted
	switch {
	case strings.HasPrefix(mediaType, "video/"):
		streamType = StreamVideo
	case strings.HasPrefix(mediaType, "audio/"):
		streamType = StreamAudio
	}
	if streamType == "" {
		return Format{}, false
	}

	f := Format{
		Itag:           raw.Itag,
		Type:           streamType,
		Extension:      extensionFor(mediaType, streamType),
		Width:          raw.Width,
		Height:         raw.Height,
		FPS:            raw.FPS,
		AverageBitrate: raw.AverageBitrate,
		ContentLength:  raw.ContentLength,
		URL:            raw.URL,
	}
	if f.AverageBitrate == 0 {
		f.AverageBitrate = raw.Bitrate
	}

	for _, codec := range splitCodecs(params["codecs"]) {
		switch classifyCodec(codec) {
		case StreamVideo:
			if f.VideoCodec == "" {
				f.VideoCodec = codec
			}
		case StreamAudio:
			if f.AudioCodec == "" {
				f.AudioCodec = codec
			}
		default:
			// Unknown codec strings classify by the stream slot they
			// would fill, not by failing the whole format.
			if streamType == StreamVideo && f.VideoCodec == "" {
				f.VideoCodec = "unknown"
			} else if f.AudioCodec == "" {
				f.AudioCodec = "unknown"
			}
		}
	}

	return f, true
}

func extensionFor(mediaType string, streamType StreamType) string {
	if ext, ok := extensionByMediaType[mediaType]; ok {
		return ext
	}
	if streamType == StreamAudio {
		return "m4a"
	}
	return "mp4"
}

func splitCodecs(codecs string) []string {
	if strings.TrimSpace(codecs) == "" {
		return nil
	}
	parts := strings.Split(codecs, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func classifyCodec(codec string) StreamType {
	lower := strings.ToLower(codec)
	for _, prefix := range videoCodecPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return StreamVideo
		}
	}
	for _, prefix := range audioCodecPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return StreamAudio
		}
	}
	return ""
}
