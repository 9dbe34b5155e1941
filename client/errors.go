package client

import (
	"errors"

	"github.com/ytgrab/ytgrab/internal/downloader"
	"github.com/ytgrab/ytgrab/internal/proxycheck"
	"github.com/ytgrab/ytgrab/internal/resolve"
)

var (
	// ErrInvalidInput indicates malformed input (not a video ID/url).
	ErrInvalidInput = errors.New("invalid input")
	// ErrUnavailable indicates the video is private, removed or gone.
	ErrUnavailable = errors.New("video unavailable")
	// ErrGeoRestricted indicates the video is blocked for this region.
	ErrGeoRestricted = errors.New("video geo-restricted")
	// ErrLoginRequired indicates an authenticated session is required.
	ErrLoginRequired = errors.New("login required")
	// ErrLiveUnsupported indicates live streams cannot be downloaded.
	ErrLiveUnsupported = errors.New("live stream not supported")
	// ErrExtraction indicates all extraction strategies failed.
	ErrExtraction = errors.New("extraction failed")
	// ErrTransport indicates a network-level failure.
	ErrTransport = errors.New("network error")
	// ErrTooLarge indicates the media exceeds the configured size limit.
	ErrTooLarge = errors.New("file too large")
	// ErrNoWorkingFormat indicates no transferable format matched the request.
	ErrNoWorkingFormat = errors.New("no working format")
	// ErrProxyDown indicates the configured proxy failed its health check.
	ErrProxyDown = errors.New("proxy unavailable")
)

func mapFailure(f *resolve.Failure) error {
	if f == nil {
		return nil
	}
	var sentinel error
	switch f.Kind {
	case resolve.KindInvalidURL:
		sentinel = ErrInvalidInput
	case resolve.KindGeoRestricted:
		sentinel = ErrGeoRestricted
	case resolve.KindLoginRequired:
		sentinel = ErrLoginRequired
	case resolve.KindUnavailable:
		sentinel = ErrUnavailable
	case resolve.KindLiveUnsupported:
		sentinel = ErrLiveUnsupported
	case resolve.KindTransport:
		sentinel = ErrTransport
	case resolve.KindTooLarge:
		sentinel = ErrTooLarge
	case resolve.KindNoWorkingFormat:
		sentinel = ErrNoWorkingFormat
	default:
		sentinel = ErrExtraction
	}
	return &clientError{sentinel: sentinel, cause: f}
}

func mapTransferError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, downloader.ErrTooLarge):
		return &clientError{sentinel: ErrTooLarge, cause: err}
	case errors.Is(err, downloader.ErrPlaceholder):
		return &clientError{sentinel: ErrNoWorkingFormat, cause: err}
	case errors.Is(err, proxycheck.ErrProxyDown):
		return &clientError{sentinel: ErrProxyDown, cause: err}
	default:
		return &clientError{sentinel: ErrTransport, cause: err}
	}
}

type clientError struct {
	sentinel error
	cause    error
}

func (e *clientError) Error() string {
	return e.sentinel.Error() + ": " + e.cause.Error()
}

func (e *clientError) Is(target error) bool {
	return errors.Is(e.sentinel, target)
}

func (e *clientError) Unwrap() error {
	return e.cause
}

// UserMessage renders err as a short sentence suitable for end users. Every
// sentinel has a distinct message; unknown errors get a generic one.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidInput):
		return "That doesn't look like a valid video link."
	case errors.Is(err, ErrUnavailable):
		return "This video is private or has been removed."
	case errors.Is(err, ErrGeoRestricted):
		return "This video is not available in your region."
	case errors.Is(err, ErrLoginRequired):
		return "This video requires signing in to watch."
	case errors.Is(err, ErrLiveUnsupported):
		return "Live streams can't be downloaded."
	case errors.Is(err, ErrTooLarge):
		return "This file is too large to download."
	case errors.Is(err, ErrNoWorkingFormat):
		return "No downloadable format was found for this video."
	case errors.Is(err, ErrProxyDown):
		return "The proxy is not responding. Try again later."
	case errors.Is(err, ErrTransport):
		return "A network error occurred. Please try again."
	case errors.Is(err, ErrExtraction):
		return "Couldn't read this video's details. Please try again."
	default:
		return "Something went wrong. Please try again."
	}
}
