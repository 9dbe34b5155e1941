package downloader

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/time/rate"
)

// Progress is a point-in-time snapshot of a running transfer.
type Progress struct {
	BytesWritten int64
	TotalBytes   int64
	Percent      float64
	BytesPerSec  float64
	ETA          time.Duration
}

func (p Progress) String() string {
	if p.TotalBytes > 0 {
		return fmt.Sprintf("%s / %s (%.1f%%) at %s/s",
			humanize.Bytes(uint64(p.BytesWritten)),
			humanize.Bytes(uint64(p.TotalBytes)),
			p.Percent,
			humanize.Bytes(uint64(p.BytesPerSec)))
	}
	return fmt.Sprintf("%s at %s/s",
		humanize.Bytes(uint64(p.BytesWritten)),
		humanize.Bytes(uint64(p.BytesPerSec)))
}

// ProgressFunc receives transfer snapshots. Calls are sequential.
type ProgressFunc func(Progress)

type progressMeter struct {
	fn          ProgressFunc
	total       int64
	written     int64
	chunks      int
	everyChunks int
	limiter     *rate.Limiter
	started     time.Time
}

func newProgressMeter(fn ProgressFunc, total int64, interval time.Duration, everyChunks int) *progressMeter {
	if fn == nil {
		return nil
	}
	if interval <= 0 {
		interval = time.Second
	}
	if everyChunks <= 0 {
		everyChunks = 1
	}
	return &progressMeter{
		fn:          fn,
		total:       total,
		everyChunks: everyChunks,
		limiter:     rate.NewLimiter(rate.Every(interval), 1),
		started:     time.Now(),
	}
}

func (m *progressMeter) add(n int64) {
	if m == nil {
		return
	}
	m.written += n
	m.chunks++
	if m.chunks%m.everyChunks != 0 {
		return
	}
	if !m.limiter.Allow() {
		return
	}
	m.fn(m.snapshot())
}

func (m *progressMeter) finish() {
	if m == nil {
		return
	}
	m.fn(m.snapshot())
}

func (m *progressMeter) snapshot() Progress {
	p := Progress{
		BytesWritten: m.written,
		TotalBytes:   m.total,
	}
	if m.total > 0 {
		p.Percent = float64(m.written) / float64(m.total) * 100
	}
	elapsed := time.Since(m.started).Seconds()
	if elapsed > 0 {
		p.BytesPerSec = float64(m.written) / elapsed
	}
	if p.BytesPerSec > 0 && m.total > m.written {
		p.ETA = time.Duration(float64(m.total-m.written)/p.BytesPerSec) * time.Second
	}
	return p
}
