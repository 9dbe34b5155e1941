package resolve

import (
	"fmt"
	"strings"
)

// Kind classifies a resolution failure into an actionable category.
type Kind int

const (
	KindUnknown Kind = iota
	KindInvalidURL
	KindGeoRestricted
	KindLoginRequired
	KindUnavailable
	KindLiveUnsupported
	KindExtractionFailed
	KindTransport
	KindTooLarge
	KindNoWorkingFormat
)

func (k Kind) String() string {
	switch k {
	case KindInvalidURL:
		return "invalid_url"
	case KindGeoRestricted:
		return "geo_restricted"
	case KindLoginRequired:
		return "login_required"
	case KindUnavailable:
		return "unavailable"
	case KindLiveUnsupported:
		return "live_unsupported"
	case KindExtractionFailed:
		return "extraction_failed"
	case KindTransport:
		return "transport_error"
	case KindTooLarge:
		return "too_large"
	case KindNoWorkingFormat:
		return "no_working_format"
	default:
		return "unknown"
	}
}

// Retryable reports whether another attempt could plausibly change the
// outcome. Policy-based and content-state kinds are never retried.
func (k Kind) Retryable() bool {
	switch k {
	case KindExtractionFailed, KindTransport, KindUnknown:
		return true
	default:
		return false
	}
}

// Failure is a typed strategy or orchestrator failure. Nothing crosses the
// orchestrator boundary unclassified.
type Failure struct {
	Kind    Kind
	Message string
	Cause   error
}

func (f *Failure) Error() string {
	if f.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", f.Kind, f.Message, f.Cause)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Message)
}

func (f *Failure) Unwrap() error {
	return f.Cause
}

func failf(kind Kind, format string, args ...any) *Failure {
	return &Failure{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func wrapf(kind Kind, cause error, format string, args ...any) *Failure {
	return &Failure{Kind: kind, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Upstream pages and playability reasons carry free-text policy markers.
// Matching is substring-based, like the source responses themselves.
var (
	unavailableMarkers = []string{
		"private video",
		"video unavailable",
		"this video has been removed",
		"this video is no longer available",
		"account associated with this video has been terminated",
	}
	geoMarkers = []string{
		"not available in your country",
		"the uploader has not made this video available in your country",
		"blocked it in your country",
	}
	loginMarkers = []string{
		"sign in to confirm your age",
		"sign in to confirm you",
		"sign in if you",
		"join this channel to get access",
		"log in to watch",
	}
)

// ClassifyMarkers scans free text for known policy markers. The bool
// result reports whether any marker matched.
func ClassifyMarkers(text string) (Kind, bool) {
	lower := strings.ToLower(text)
	for _, m := range loginMarkers {
		if strings.Contains(lower, m) {
			return KindLoginRequired, true
		}
	}
	for _, m := range geoMarkers {
		if strings.Contains(lower, m) {
			return KindGeoRestricted, true
		}
	}
	for _, m := range unavailableMarkers {
		if strings.Contains(lower, m) {
			return KindUnavailable, true
		}
	}
	return KindUnknown, false
}

// ClassifyPlayability maps a player-config playability status and reason
// to a failure kind. Status values are the upstream enum; the reason is
// free text and is checked for policy markers first.
func ClassifyPlayability(status, reason string) Kind {
	if kind, ok := ClassifyMarkers(status + " " + reason); ok {
		return kind
	}
	switch strings.ToUpper(strings.TrimSpace(status)) {
	case "LOGIN_REQUIRED":
		return KindLoginRequired
	case "UNPLAYABLE", "ERROR":
		return KindUnavailable
	case "LIVE_STREAM_OFFLINE":
		return KindLiveUnsupported
	default:
		return KindExtractionFailed
	}
}
