package mediafmt

import "sort"

// Order arranges formats as video-then-audio: video entries by descending
// height, audio entries by descending average bitrate. Sorting is stable
// so equal entries keep their discovery order.
func Order(formats []Format) []Format {
	var video, audio []Format
	for _, f := range formats {
		if f.Type == StreamAudio {
			audio = append(audio, f)
			continue
		}
		video = append(video, f)
	}
	sort.SliceStable(video, func(i, j int) bool {
		if video[i].Height != video[j].Height {
			return video[i].Height > video[j].Height
		}
		return video[i].AverageBitrate > video[j].AverageBitrate
	})
	sort.SliceStable(audio, func(i, j int) bool {
		return audio[i].AverageBitrate > audio[j].AverageBitrate
	})
	return append(video, audio...)
}

// DedupeByItag keeps the first occurrence of each itag.
func DedupeByItag(formats []Format) []Format {
	seen := make(map[int]struct{}, len(formats))
	out := make([]Format, 0, len(formats))
	for _, f := range formats {
		if _, exists := seen[f.Itag]; exists {
			continue
		}
		seen[f.Itag] = struct{}{}
		out = append(out, f)
	}
	return out
}
