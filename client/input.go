package client

import (
	"regexp"
	"strings"
)

var videoIDPattern = regexp.MustCompile(`^[0-9A-Za-z_-]{11}$`)

// urlMatchers are tried in order; the first capturing match wins.
var urlMatchers = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com|youtube-nocookie\.com)/watch\?(?:[^#\s]*&)?v=([0-9A-Za-z_-]{11})`),
	regexp.MustCompile(`youtu\.be/([0-9A-Za-z_-]{11})`),
	regexp.MustCompile(`(?:youtube\.com|youtube-nocookie\.com)/embed/([0-9A-Za-z_-]{11})`),
	regexp.MustCompile(`youtube\.com/shorts/([0-9A-Za-z_-]{11})`),
	regexp.MustCompile(`youtube\.com/live/([0-9A-Za-z_-]{11})`),
}

// ExtractVideoID accepts either a raw 11-character id or common YouTube URL
// shapes (watch, youtu.be, embed, shorts, live) and returns the canonical id.
func ExtractVideoID(input string) (string, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return "", ErrInvalidInput
	}
	if videoIDPattern.MatchString(s) {
		return s, nil
	}
	for _, m := range urlMatchers {
		if groups := m.FindStringSubmatch(s); len(groups) == 2 {
			return groups[1], nil
		}
	}
	return "", ErrInvalidInput
}
