package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	charmlog "github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"github.com/ytgrab/ytgrab/client"
)

func main() {
	var (
		url     = flag.String("url", "", "YouTube link or video ID")
		quality = flag.Int("quality", 720, "Desired video height")
		audio   = flag.Bool("audio", false, "Download audio only")
		list    = flag.Bool("list", false, "List available formats and exit")
		output  = flag.String("o", "", "Output file path (default: deterministic name)")
		outDir  = flag.String("dir", "", "Download directory")
		proxy   = flag.String("proxy", "", "Proxy URL (overrides YTGRAB_PROXY_URL)")
		timeout = flag.Duration("timeout", 10*time.Minute, "Overall operation timeout")
	)
	flag.Parse()

	// .env is optional; environment variables win over flags' empty defaults.
	_ = godotenv.Load()

	logger := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		ReportTimestamp: true,
		Prefix:          "ytgrab",
	})

	if *url == "" {
		fmt.Println("Usage: ytgrab -url <link or id> [-quality 720] [-audio] [-list] [-o file] [-proxy url]")
		flag.PrintDefaults()
		os.Exit(1)
	}

	proxyURL := *proxy
	if proxyURL == "" {
		proxyURL = os.Getenv("YTGRAB_PROXY_URL")
	}

	c := client.New(client.Config{
		ProxyURL:     proxyURL,
		ProxyEnabled: proxyURL != "",
		DownloadDir:  *outDir,
		Logger:       warnLogger{logger},
	})

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	video, err := c.Resolve(ctx, *url)
	if err != nil {
		logger.Error(client.UserMessage(err), "err", err)
		os.Exit(1)
	}

	fmt.Printf("%s | %s [%s]\n", video.Title, video.Uploader, client.FormatDuration(video.DurationSec))

	if *list {
		printFormats(video)
		return
	}
	if !video.HasDirectFormats {
		logger.Error("No downloadable streams were found for this video.")
		os.Exit(1)
	}

	want := client.StreamVideo
	if *audio {
		want = client.StreamAudio
	}
	format, err := c.SelectFormat(video, want, *quality)
	if err != nil {
		logger.Error(client.UserMessage(err), "err", err)
		os.Exit(1)
	}

	path, err := c.Download(ctx, video.ID, format, client.DownloadOptions{
		OutputPath: *output,
		Progress: func(p client.Progress) {
			fmt.Fprintf(os.Stderr, "\r%s    ", p)
		},
	})
	fmt.Fprintln(os.Stderr)
	if err != nil {
		logger.Error(client.UserMessage(err), "err", err)
		os.Exit(1)
	}
	logger.Info("download complete", "path", path)
}

func printFormats(video *client.Video) {
	heights, hasAudio := client.QualityChoices(video.Formats)
	fmt.Printf("Qualities: %v (audio: %v)\n", heights, hasAudio)
	for _, f := range video.Formats {
		switch f.Type {
		case client.StreamAudio:
			fmt.Printf("[%d] audio %d kbps %s (%s)\n", f.Itag, f.AverageBitrate/1000, f.Extension, f.AudioCodec)
		default:
			fmt.Printf("[%d] %dx%d@%d %s (%s)\n", f.Itag, f.Width, f.Height, f.FPS, f.Extension, f.VideoCodec)
		}
	}
}

type warnLogger struct {
	l *charmlog.Logger
}

func (w warnLogger) Warnf(format string, args ...any) {
	w.l.Warnf(format, args...)
}
