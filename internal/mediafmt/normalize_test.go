package mediafmt

import (
	"strings"
	"testing"
)

func TestNormalize_ProgressiveMP4(t *testing.T) {
	raw := RawFormat{
		Itag:     22,
		URL:      "https://cdn.example.com/v?itag=22",
		MimeType: `video/mp4; codecs="avc1.64001F, mp4a.40.2"`,
		Width:    1280,
		Height:   720,
		FPS:      30,
		Bitrate:  1800000,
	}

	f, ok := Normalize(raw, StreamVideo)
	if !ok {
		t.Fatal("Normalize() dropped a format with a URL")
	}
	if f.Type != StreamVideo {
		t.Fatalf("type = %q, want video", f.Type)
	}
	if f.Extension != "mp4" {
		t.Fatalf("extension = %q, want mp4", f.Extension)
	}
	if !strings.HasPrefix(f.VideoCodec, "avc1") {
		t.Fatalf("video codec = %q, want avc1 prefix", f.VideoCodec)
	}
	if !strings.HasPrefix(f.AudioCodec, "mp4a") {
		t.Fatalf("audio codec = %q, want mp4a prefix", f.AudioCodec)
	}
	if f.AverageBitrate != 1800000 {
		t.Fatalf("average bitrate = %d, want bitrate fallback 1800000", f.AverageBitrate)
	}
}

func TestNormalize_AdaptiveAudio(t *testing.T) {
	raw := RawFormat{
		Itag:           251,
		URL:            "https://cdn.example.com/v?itag=251",
		MimeType:       `audio/webm; codecs="opus"`,
		AverageBitrate: 142000,
		ContentLength:  3145728,
	}

	f, ok := Normalize(raw, StreamAudio)
	if !ok {
		t.Fatal("Normalize() dropped a format with a URL")
	}
	if f.Type != StreamAudio {
		t.Fatalf("type = %q, want audio", f.Type)
	}
	if f.Extension != "weba" {
		t.Fatalf("extension = %q, want weba", f.Extension)
	}
	if f.AudioCodec != "opus" {
		t.Fatalf("audio codec = %q, want opus", f.AudioCodec)
	}
	if f.ContentLength != 3145728 {
		t.Fatalf("content length = %d, want 3145728", f.ContentLength)
	}
}

func TestNormalize_MissingURLDropped(t *testing.T) {
	raw := RawFormat{Itag: 137, MimeType: `video/mp4; codecs="avc1.640028"`}
	if _, ok := Normalize(raw, StreamVideo); ok {
		t.Fatal("Normalize() kept a format without a URL")
	}
}

func TestNormalize_UnknownCodecClassifiesAsUnknown(t *testing.T) {
	raw := RawFormat{
		Itag:     999,
		URL:      "https://cdn.example.com/v?itag=999",
		MimeType: `video/mp4; codecs="xyzc.1.2"`,
		Height:   480,
	}

	f, ok := Normalize(raw, StreamVideo)
	if !ok {
		t.Fatal("Normalize() dropped a format with an unknown codec")
	}
	if f.VideoCodec != "unknown" {
		t.Fatalf("video codec = %q, want unknown", f.VideoCodec)
	}
}

func TestNormalize_MalformedMimeFallsBackToHint(t *testing.T) {
	raw := RawFormat{Itag: 140, URL: "https://cdn.example.com/v?itag=140", MimeType: ";;;"}

	f, ok := Normalize(raw, StreamAudio)
	if !ok {
		t.Fatal("Normalize() dropped a format with a malformed MIME type")
	}
	if f.Type != StreamAudio {
		t.Fatalf("type = %q, want hinted audio", f.Type)
	}
	if f.Extension != "m4a" {
		t.Fatalf("extension = %q, want default m4a", f.Extension)
	}
}
