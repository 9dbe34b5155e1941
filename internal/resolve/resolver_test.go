package resolve

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/ytgrab/ytgrab/internal/mediafmt"
)

type stubResolver struct {
	name    string
	partial *Partial
	fail    *Failure
	calls   int
}

func (s *stubResolver) Name() string { return s.name }

func (s *stubResolver) Resolve(context.Context, string) (*Partial, *Failure) {
	s.calls++
	return s.partial, s.fail
}

func newTestOrchestrator(resolvers ...Resolver) *Orchestrator {
	return NewOrchestrator(resolvers, Config{
		MaxRetries:     0,
		InitialBackoff: time.Millisecond,
		Rand:           rand.New(rand.NewSource(1)),
	})
}

func TestResolve_MetadataOnlyMeansNoDirectFormats(t *testing.T) {
	meta := &stubResolver{name: "oembed", partial: &Partial{Title: "a title", Uploader: "someone"}}
	empty := &stubResolver{name: "scrape", partial: &Partial{}}
	noFormats := &stubResolver{name: "pageconfig", partial: &Partial{}}

	res, fail := newTestOrchestrator(meta, empty, noFormats).Resolve(context.Background(), "dQw4w9WgXcQ")
	if fail != nil {
		t.Fatalf("Resolve() failed: %v", fail)
	}
	if res.HasDirectFormats {
		t.Fatal("HasDirectFormats = true with no formats resolved")
	}
	if res.Title != "a title" || res.Uploader != "someone" {
		t.Fatalf("metadata not merged: %+v", res)
	}
	if res.Strategy != "oembed" {
		t.Fatalf("strategy = %q, want oembed", res.Strategy)
	}
}

func TestResolve_FormatsShortCircuitRemainingStrategies(t *testing.T) {
	meta := &stubResolver{name: "oembed", partial: &Partial{Title: "t"}}
	withFormats := &stubResolver{name: "pageconfig", partial: &Partial{
		Title:   "t",
		Formats: []mediafmt.Format{{Itag: 22, Type: mediafmt.StreamVideo, Height: 720, URL: "https://cdn/x"}},
	}}
	last := &stubResolver{name: "library", partial: &Partial{Title: "t"}}

	res, fail := newTestOrchestrator(meta, withFormats, last).Resolve(context.Background(), "dQw4w9WgXcQ")
	if fail != nil {
		t.Fatalf("Resolve() failed: %v", fail)
	}
	if !res.HasDirectFormats {
		t.Fatal("HasDirectFormats = false, want true")
	}
	if res.Strategy != "pageconfig" {
		t.Fatalf("strategy = %q, want pageconfig", res.Strategy)
	}
	if last.calls != 0 {
		t.Fatalf("later strategy ran %d times after formats were found", last.calls)
	}
}

func TestResolve_TerminalFailureAbortsSweep(t *testing.T) {
	blocked := &stubResolver{name: "scrape", fail: failf(KindUnavailable, "private video")}
	never := &stubResolver{name: "pageconfig", partial: &Partial{Title: "t"}}

	_, fail := newTestOrchestrator(blocked, never).Resolve(context.Background(), "dQw4w9WgXcQ")
	if fail == nil || fail.Kind != KindUnavailable {
		t.Fatalf("Resolve() = %v, want unavailable failure", fail)
	}
	if never.calls != 0 {
		t.Fatal("strategy ran after a terminal failure")
	}
}

func TestResolve_RetryableStrategyFailureContinuesSweep(t *testing.T) {
	flaky := &stubResolver{name: "oembed", fail: failf(KindExtractionFailed, "parse error")}
	good := &stubResolver{name: "scrape", partial: &Partial{Title: "t"}}

	res, fail := newTestOrchestrator(flaky, good).Resolve(context.Background(), "dQw4w9WgXcQ")
	if fail != nil {
		t.Fatalf("Resolve() failed: %v", fail)
	}
	if res.Title != "t" {
		t.Fatalf("title = %q", res.Title)
	}
}

type flakyStub struct {
	stubResolver
	failuresLeft int
}

func (s *flakyStub) Resolve(ctx context.Context, id string) (*Partial, *Failure) {
	s.calls++
	if s.failuresLeft > 0 {
		s.failuresLeft--
		return nil, failf(KindExtractionFailed, "transient")
	}
	return &Partial{Title: "recovered"}, nil
}

func TestResolve_RetriesTransientFailures(t *testing.T) {
	flaky := &flakyStub{stubResolver: stubResolver{name: "scrape"}, failuresLeft: 2}
	o := NewOrchestrator([]Resolver{flaky}, Config{
		MaxRetries:     3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		Rand:           rand.New(rand.NewSource(7)),
	})

	res, fail := o.Resolve(context.Background(), "dQw4w9WgXcQ")
	if fail != nil {
		t.Fatalf("Resolve() failed after retries: %v", fail)
	}
	if res.Title != "recovered" {
		t.Fatalf("title = %q", res.Title)
	}
	if flaky.calls != 3 {
		t.Fatalf("strategy ran %d times, want 3", flaky.calls)
	}
}

func TestResolve_RetryBudgetExhausted(t *testing.T) {
	flaky := &stubResolver{name: "scrape", fail: failf(KindExtractionFailed, "always")}
	o := NewOrchestrator([]Resolver{flaky}, Config{
		MaxRetries:     2,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
		Rand:           rand.New(rand.NewSource(7)),
	})

	_, fail := o.Resolve(context.Background(), "dQw4w9WgXcQ")
	if fail == nil || fail.Kind != KindExtractionFailed {
		t.Fatalf("failure = %v, want extraction_failed", fail)
	}
	if flaky.calls != 3 {
		t.Fatalf("strategy ran %d times, want 3 (1 + 2 retries)", flaky.calls)
	}
}

func TestResolve_FormatsOrderedAndDeduped(t *testing.T) {
	withFormats := &stubResolver{name: "pageconfig", partial: &Partial{
		Title: "t",
		Formats: []mediafmt.Format{
			{Itag: 140, Type: mediafmt.StreamAudio, AverageBitrate: 128000, URL: "u"},
			{Itag: 18, Type: mediafmt.StreamVideo, Height: 360, URL: "u"},
			{Itag: 18, Type: mediafmt.StreamVideo, Height: 360, URL: "u"},
			{Itag: 22, Type: mediafmt.StreamVideo, Height: 720, URL: "u"},
		},
	}}

	res, fail := newTestOrchestrator(withFormats).Resolve(context.Background(), "dQw4w9WgXcQ")
	if fail != nil {
		t.Fatalf("Resolve() failed: %v", fail)
	}
	wantItags := []int{22, 18, 140}
	if len(res.Formats) != len(wantItags) {
		t.Fatalf("got %d formats, want %d", len(res.Formats), len(wantItags))
	}
	for i, itag := range wantItags {
		if res.Formats[i].Itag != itag {
			t.Fatalf("position %d: itag=%d, want %d", i, res.Formats[i].Itag, itag)
		}
	}
}

func TestResolve_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	never := &stubResolver{name: "scrape", partial: &Partial{Title: "t"}}
	_, fail := newTestOrchestrator(never).Resolve(ctx, "dQw4w9WgXcQ")
	if fail == nil || fail.Kind != KindTransport {
		t.Fatalf("failure = %v, want transport failure on cancellation", fail)
	}
}

type failingResolver struct{}

func (failingResolver) Name() string { return "scrape" }

func (failingResolver) Resolve(context.Context, string) (*Partial, *Failure) {
	return nil, failf(KindExtractionFailed, "transient")
}

func TestResolve_ConcurrentSweepsShareRandomSource(t *testing.T) {
	o := NewOrchestrator([]Resolver{failingResolver{}}, Config{
		MaxRetries:     2,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
		Rand:           rand.New(rand.NewSource(1)),
	})

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, fail := o.Resolve(context.Background(), "dQw4w9WgXcQ")
			if fail == nil || fail.Kind != KindExtractionFailed {
				t.Errorf("failure = %v, want extraction_failed", fail)
			}
		}()
	}
	wg.Wait()
}

func TestBackoffFor_BoundedWithJitter(t *testing.T) {
	o := NewOrchestrator(nil, Config{
		MaxRetries:     3,
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     time.Second,
		Rand:           rand.New(rand.NewSource(99)),
	})

	for attempt := 0; attempt < 10; attempt++ {
		d := o.backoffFor(attempt)
		if d < 0 {
			t.Fatalf("backoffFor(%d) = %v, negative", attempt, d)
		}
		// Cap plus maximum jitter margin.
		if d > time.Second+250*time.Millisecond {
			t.Fatalf("backoffFor(%d) = %v, exceeds cap with jitter", attempt, d)
		}
	}
}
