package pipeline

import (
	"context"
	"fmt"
	"runtime"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ctmes/ProfTwo/internal/analyze"
	"github.com/ctmes/ProfTwo/internal/config"
	"github.com/ctmes/ProfTwo/internal/events"
	"github.com/ctmes/ProfTwo/internal/library"
	"github.com/ctmes/ProfTwo/internal/models"
	"github.com/ctmes/ProfTwo/internal/storage"
)

type stubEnhancer struct {
	out  string
	err  error
	gate chan struct{} // when set, Enhance blocks until the gate closes
}

func (s *stubEnhancer) Enhance(ctx context.Context, transcript string) (string, error) {
	if s.gate != nil {
		<-s.gate
	}
	return s.out, s.err
}

type stubAnalyzer struct {
	result *analyze.Result
	err    error
}

func (s *stubAnalyzer) Analyze(ctx context.Context, text string) (*analyze.Result, error) {
	return s.result, s.err
}

// SetupPipeline wires a processor against a fresh in-memory DB and a
// throwaway local storage root.
func SetupPipeline(t *testing.T, enhancer Enhancer, analyzer Analyzer) (*Processor, *library.Store, *storage.Client) {
	t.Helper()

	d, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	d.AutoMigrate(&models.Lecture{}, &models.Slide{}, &models.TranscriptSegment{})
	store := library.New(d)

	cfg := &config.Config{}
	cfg.Server.TempDir = t.TempDir()
	cfg.Storage.Provider = "local"
	cfg.Storage.LocalRoot = t.TempDir()
	cfg.Storage.BucketUploads = "uploads"
	cfg.Storage.BucketAssets = "assets"
	cfg.Pipeline.TickMs = 1
	cfg.Pipeline.StageStep = 50
	cfg.Pipeline.AIStageStep = 33
	cfg.Pipeline.SegmentSeconds = 6
	cfg.Pipeline.SlideCount = 3

	assets := storage.New(cfg)
	return NewProcessor(cfg, store, assets, enhancer, analyzer, events.NewBus()), store, assets
}

// stageDeck puts a fake slide deck into the uploads bucket.
func stageDeck(t *testing.T, assets *storage.Client, key string) {
	t.Helper()
	if err := assets.PutUpload(key, strings.NewReader("%PDF-1.4 fake deck"), "application/pdf"); err != nil {
		t.Fatalf("stage deck: %v", err)
	}
}

// stepUntilDone drives the run synchronously, yielding so that in-flight
// stub calls get a chance to resolve.
func stepUntilDone(t *testing.T, p *Processor, id string) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if p.Step(id) {
			return
		}
		runtime.Gosched()
	}
	t.Fatal("run did not terminate in time")
}

func TestRunCompletesThroughAllStages(t *testing.T) {
	enhancer := &stubEnhancer{out: "First idea. Second idea. Third idea."}
	analyzer := &stubAnalyzer{result: &analyze.Result{
		Summary:   "Three ideas.",
		Topics:    []string{"ideas"},
		Sentiment: "positive",
	}}
	p, store, assets := SetupPipeline(t, enhancer, analyzer)
	stageDeck(t, assets, "staging/alice/b1/slides.pdf")

	r, err := p.Begin(Input{
		OwnerID:        "alice",
		SlidesFilename: "calculus-week3.pdf",
		SlidesKey:      "staging/alice/b1/slides.pdf",
		RawTranscript:  "first idea second idea third idea",
	})
	if err != nil {
		t.Fatalf("begin: %v", err)
	}

	stepUntilDone(t, p, r.ID)

	snap, ok := p.Snapshot(r.ID)
	if !ok || snap.State != "done" {
		t.Fatalf("expected done, got %q", snap.State)
	}
	for _, st := range snap.Stages {
		if !st.Complete || st.Progress != 100 {
			t.Errorf("stage %q not complete: %d%%", st.Name, st.Progress)
		}
	}

	rec := snap.Record
	if rec == nil {
		t.Fatal("expected a lecture record")
	}
	if rec.Title != "calculus week3" {
		t.Errorf("expected title from slides filename, got %q", rec.Title)
	}
	if rec.OwnerID != "alice" {
		t.Errorf("expected owner alice, got %q", rec.OwnerID)
	}
	if len(rec.Transcript) != 3 {
		t.Fatalf("expected 3 segments from the enhanced text, got %d", len(rec.Transcript))
	}
	if rec.Duration != 18 {
		t.Errorf("expected 18s duration (3 segments x 6s), got %.0f", rec.Duration)
	}
	if rec.Summary != "Three ideas." || rec.Topics != "ideas" || rec.Sentiment != "positive" {
		t.Errorf("enrichment not applied: %q / %q / %q", rec.Summary, rec.Topics, rec.Sentiment)
	}
	if len(rec.Slides) != 3 {
		t.Errorf("expected 3 slide entries, got %d", len(rec.Slides))
	}
	deckKey := fmt.Sprintf("lectures/%s/deck.pdf", rec.ID)
	if obj, err := assets.GetAsset(deckKey); err != nil {
		t.Errorf("published deck missing behind the slide URLs: %v", err)
	} else {
		obj.Body.Close()
	}
	if rec.AudioURL == "" {
		t.Error("expected a narration audio URL")
	}

	if store.Count() != 1 {
		t.Errorf("expected 1 persisted lecture, got %d", store.Count())
	}
}

func TestAIStageHoldsAtNinetyNineUntilCallResolves(t *testing.T) {
	gate := make(chan struct{})
	enhancer := &stubEnhancer{out: "Edited.", gate: gate}
	analyzer := &stubAnalyzer{result: &analyze.Result{}}
	p, _, _ := SetupPipeline(t, enhancer, analyzer)

	r, _ := p.Begin(Input{OwnerID: "alice", RawTranscript: "raw words"})

	// Plenty of ticks: upload completes, then enhancement should pin at 99.
	for i := 0; i < 50; i++ {
		p.Step(r.ID)
	}

	snap, _ := p.Snapshot(r.ID)
	if snap.State != "enhancing" {
		t.Fatalf("expected the run to sit in enhancing, got %q", snap.State)
	}
	if got := snap.Stages[1].Progress; got != 99 {
		t.Errorf("expected enhancement held at 99%%, got %d%%", got)
	}
	if snap.Stages[1].Complete {
		t.Error("enhancement must not complete before the call resolves")
	}

	close(gate)
	stepUntilDone(t, p, r.ID)

	snap, _ = p.Snapshot(r.ID)
	if snap.State != "done" {
		t.Fatalf("expected done after the gate opened, got %q", snap.State)
	}
}

func TestInterruptDiscardsEverything(t *testing.T) {
	enhancer := &stubEnhancer{out: "Edited.", gate: make(chan struct{})}
	p, store, _ := SetupPipeline(t, enhancer, &stubAnalyzer{result: &analyze.Result{}})

	r, _ := p.Begin(Input{OwnerID: "alice", RawTranscript: "raw words"})
	for i := 0; i < 10; i++ {
		p.Step(r.ID)
	}

	if !p.Interrupt(r.ID) {
		t.Fatal("expected interrupt to land on a live run")
	}

	snap, _ := p.Snapshot(r.ID)
	if snap.State != "idle" {
		t.Errorf("expected idle after interrupt, got %q", snap.State)
	}
	for _, st := range snap.Stages {
		if st.Progress != 0 || st.Complete {
			t.Errorf("stage %q not reset: %d%% complete=%v", st.Name, st.Progress, st.Complete)
		}
	}
	if snap.Record != nil {
		t.Error("interrupted run must not carry a record")
	}
	if store.Count() != 0 {
		t.Errorf("interrupted run must persist nothing, got %d lectures", store.Count())
	}

	// An idle run no longer advances.
	if !p.Step(r.ID) {
		t.Error("expected Step on an idle run to report terminated")
	}
	if p.Interrupt(r.ID) {
		t.Error("expected a second interrupt to be a no-op")
	}
}

func TestStaleEnhancementResponseIsDropped(t *testing.T) {
	gate := make(chan struct{})
	enhancer := &stubEnhancer{out: "Edited.", gate: gate}
	p, store, _ := SetupPipeline(t, enhancer, &stubAnalyzer{result: &analyze.Result{}})

	r, _ := p.Begin(Input{OwnerID: "alice", RawTranscript: "raw words"})

	// Step into the enhancing stage so the call is in flight, then abort.
	for i := 0; i < 10; i++ {
		p.Step(r.ID)
	}
	p.Interrupt(r.ID)

	// Let the orphaned call land on the bumped generation.
	close(gate)
	time.Sleep(50 * time.Millisecond)

	r.mu.Lock()
	edited, resolved := r.editedText, r.enhanceResolved
	r.mu.Unlock()
	if edited != "" || resolved {
		t.Error("response from before the interrupt must be discarded")
	}
	if store.Count() != 0 {
		t.Errorf("nothing may be persisted, got %d lectures", store.Count())
	}
}

func TestAnalysisWaitsForEnhancement(t *testing.T) {
	// The enhancer resolves instantly here; the property under test is that
	// the analyzer only ever sees the edited text, never the raw upload.
	var seen string
	enhancer := &stubEnhancer{out: "Edited text."}
	analyzer := &analyzerFunc{fn: func(text string) (*analyze.Result, error) {
		seen = text
		return &analyze.Result{}, nil
	}}
	p, _, _ := SetupPipeline(t, enhancer, analyzer)

	r, _ := p.Begin(Input{OwnerID: "alice", RawTranscript: "raw words"})
	stepUntilDone(t, p, r.ID)

	if seen != "Edited text." {
		t.Errorf("analysis ran on %q, want the enhanced transcript", seen)
	}
}

type analyzerFunc struct {
	fn func(text string) (*analyze.Result, error)
}

func (a *analyzerFunc) Analyze(ctx context.Context, text string) (*analyze.Result, error) {
	return a.fn(text)
}

func TestFailedEnhancementSkipsAnalysis(t *testing.T) {
	called := false
	enhancer := &stubEnhancer{err: context.DeadlineExceeded}
	analyzer := &analyzerFunc{fn: func(text string) (*analyze.Result, error) {
		called = true
		return &analyze.Result{}, nil
	}}
	p, store, _ := SetupPipeline(t, enhancer, analyzer)

	r, _ := p.Begin(Input{OwnerID: "alice", RawTranscript: "raw words. more words."})
	stepUntilDone(t, p, r.ID)

	if called {
		t.Error("analysis must be skipped when there is no enhanced transcript")
	}

	snap, _ := p.Snapshot(r.ID)
	if snap.State != "done" {
		t.Fatalf("run must still complete, got %q", snap.State)
	}
	if snap.Record == nil || len(snap.Record.Transcript) != 2 {
		t.Fatal("expected the raw transcript to back the lecture")
	}
	if store.Count() != 1 {
		t.Errorf("expected the degraded lecture persisted, got %d", store.Count())
	}
}

func TestRunWithoutDeckEmitsNoSlideEntries(t *testing.T) {
	enhancer := &stubEnhancer{out: "One. Two. Three."}
	p, store, _ := SetupPipeline(t, enhancer, &stubAnalyzer{result: &analyze.Result{}})

	r, _ := p.Begin(Input{OwnerID: "alice", RawTranscript: "one two three"})
	stepUntilDone(t, p, r.ID)

	snap, _ := p.Snapshot(r.ID)
	if snap.State != "done" || snap.Record == nil {
		t.Fatalf("expected a completed run, got %q", snap.State)
	}

	// No staged deck means no pages to anchor: slide URLs pointing at an
	// asset that was never stored must not be fabricated.
	if n := len(snap.Record.Slides); n != 0 {
		t.Errorf("expected 0 slide entries without a deck, got %d", n)
	}
	if snap.Record.SlideCount != 0 {
		t.Errorf("SlideCount = %d, want 0", snap.Record.SlideCount)
	}
	if snap.Record.ThumbnailURL != "" {
		t.Errorf("unexpected thumbnail %q", snap.Record.ThumbnailURL)
	}
	if store.Count() != 1 {
		t.Errorf("the transcript-only lecture must still persist, got %d", store.Count())
	}
}

func TestBeginRejectsEmptyTranscript(t *testing.T) {
	p, _, _ := SetupPipeline(t, &stubEnhancer{}, &stubAnalyzer{})
	if _, err := p.Begin(Input{OwnerID: "alice"}); err == nil {
		t.Error("expected an error for a missing transcript")
	}
}
