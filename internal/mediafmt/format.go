package mediafmt

// StreamType classifies what a format carries.
type StreamType string

const (
	StreamVideo StreamType = "video"
	StreamAudio StreamType = "audio"
)

// Format is one playable or downloadable stream variant. Formats are
// immutable once constructed; placeholders are synthesized entries that
// were never confirmed against the upstream and must not be transferred.
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
	Placeholder    bool
}

// RawFormat is a strategy-provided descriptor prior to normalization.
type RawFormat struct {
	Itag           int
	URL            string
	MimeType       string
	Width          int
	Height         int
	FPS            int
	Bitrate        int
	AverageBitrate int
	ContentLength  int64
}
