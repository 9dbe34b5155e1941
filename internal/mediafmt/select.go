package mediafmt

const (
	preferredVideoExtension = "mp4"
	preferredAudioExtension = "m4a"

	videoContainerBonus = 50
	audioContainerBonus = 100
)

// Select picks the best match for the desired stream type and quality
// hint. Video candidates score 1000 minus the height distance to the
// desired height plus a container bonus; audio candidates score by raw
// bitrate plus a container bonus. Ties keep the first-seen entry.
// Placeholder formats are never selectable.
func Select(formats []Format, want StreamType, desiredHeight int) (Format, bool) {
	best := Format{}
	bestScore := 0
	found := false

	for _, f := range formats {
		if f.Placeholder || f.Type != want {
			continue
		}
		score := scoreFormat(f, want, desiredHeight)
		if !found || score > bestScore {
			best = f
			bestScore = score
			found = true
		}
	}
	return best, found
}

func scoreFormat(f Format, want StreamType, desiredHeight int) int {
	if want == StreamAudio {
		score := f.AverageBitrate / 1000
		if f.Extension == preferredAudioExtension {
			score += audioContainerBonus
		}
		return score
	}

	score := 1000 - abs(f.Height-desiredHeight)
	if f.Extension == preferredVideoExtension {
		score += videoContainerBonus
	}
	return score
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
