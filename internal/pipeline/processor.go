package pipeline

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ctmes/ProfTwo/internal/analyze"
	"github.com/ctmes/ProfTwo/internal/config"
	"github.com/ctmes/ProfTwo/internal/events"
	"github.com/ctmes/ProfTwo/internal/library"
	"github.com/ctmes/ProfTwo/internal/models"
	"github.com/ctmes/ProfTwo/internal/storage"
	"github.com/ctmes/ProfTwo/internal/synthesis"
	"github.com/ctmes/ProfTwo/internal/utils"
)

// Enhancer edits a raw transcript for readability.
type Enhancer interface {
	Enhance(ctx context.Context, transcript string) (string, error)
}

// Analyzer runs text intelligence over the edited transcript.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (*analyze.Result, error)
}

// Input describes one processing request: where the uploads live and who
// owns the result.
type Input struct {
	OwnerID        string
	Title          string
	SlidesFilename string
	SlidesKey      string // uploads-bucket key of the deck
	TranscriptKey  string // uploads-bucket key of the raw transcript
	RawTranscript  string
	SlideCount     int
}

// Run is one processing job. All mutable fields are guarded by mu; the tick
// loop, interrupt, and AI-call completions all contend for it.
type Run struct {
	ID    string
	input Input

	mu        sync.Mutex
	state     State
	stages    [5]Stage
	startedAt time.Time
	entered   [5]time.Time // stage entry times for the duration metric

	// gen increments on every interrupt. An AI response carrying a stale
	// generation is discarded, never applied.
	gen int

	enhanceStarted  bool
	enhanceResolved bool
	editedText      string

	analyzeStarted  bool
	analyzeResolved bool
	analysis        *analyze.Result

	record *models.Lecture
}

// Snapshot is the run's externally visible state.
type Snapshot struct {
	ID        string          `json:"id"`
	State     string          `json:"state"`
	Stages    []Stage         `json:"stages"`
	StartedAt time.Time       `json:"started_at"`
	Record    *models.Lecture `json:"record,omitempty"`
}

// Processor owns every run in the process. It advances them tick by tick,
// fires the two external calls at the right stage transitions, and turns a
// finished run into a persisted Lecture.
type Processor struct {
	tick           time.Duration
	stageStep      int
	aiStageStep    int
	segmentSeconds int
	slideCount     int
	tempDir        string

	store    *library.Store
	assets   *storage.Client
	enhancer Enhancer
	analyzer Analyzer
	bus      *events.Bus

	mu   sync.Mutex
	runs map[string]*Run
}

func NewProcessor(cfg *config.Config, store *library.Store, assets *storage.Client,
	enhancer Enhancer, analyzer Analyzer, bus *events.Bus) *Processor {
	return &Processor{
		tick:           time.Duration(cfg.Pipeline.TickMs) * time.Millisecond,
		stageStep:      cfg.Pipeline.StageStep,
		aiStageStep:    cfg.Pipeline.AIStageStep,
		segmentSeconds: cfg.Pipeline.SegmentSeconds,
		slideCount:     cfg.Pipeline.SlideCount,
		tempDir:        cfg.Server.TempDir,
		store:          store,
		assets:         assets,
		enhancer:       enhancer,
		analyzer:       analyzer,
		bus:            bus,
		runs:           make(map[string]*Run),
	}
}

// Begin registers a new run in its first stage. The caller decides how it
// is driven: Drive for the real-time ticker, Step for tests and dry runs.
func (p *Processor) Begin(in Input) (*Run, error) {
	if in.RawTranscript == "" {
		return nil, fmt.Errorf("a transcript is required")
	}
	if in.SlideCount <= 0 {
		in.SlideCount = p.slideCount
	}

	r := &Run{
		ID:        uuid.NewString(),
		input:     in,
		state:     StateUploading,
		stages:    freshStages(),
		startedAt: time.Now(),
	}
	r.entered[0] = time.Now()

	p.mu.Lock()
	p.runs[r.ID] = r
	p.mu.Unlock()

	runsStarted.Inc()
	log.Printf("▶️  Processing run %s started (%s)", r.ID, in.Title)
	return r, nil
}

// Drive advances the run on the configured tick until it terminates.
func (p *Processor) Drive(id string) {
	r := p.run(id)
	if r == nil {
		return
	}

	ticker := time.NewTicker(p.tick)
	defer ticker.Stop()

	for range ticker.C {
		if done := p.Step(id); done {
			return
		}
	}
}

// Step advances one tick and reports whether the run has terminated.
func (p *Processor) Step(id string) bool {
	r := p.run(id)
	if r == nil {
		return true
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	idx, active := r.state.stageIndex()
	if !active {
		return true
	}

	st := &r.stages[idx]

	// A stage that completed on an earlier tick hands over to the next
	// stage now; progress never moves on the handover tick.
	if st.Complete {
		p.advanceLocked(r, idx)
		return r.state.terminal()
	}

	// Entering an AI stage fires exactly one outbound call.
	switch r.state {
	case StateEnhancing:
		if !r.enhanceStarted {
			r.enhanceStarted = true
			go p.runEnhance(r, r.gen, r.input.RawTranscript)
		}
	case StateAnalyzing:
		// Analysis strictly follows the enhancement result. The guard is
		// re-evaluated every tick, so ordering is eventual, not immediate.
		if !r.analyzeStarted && r.enhanceResolved {
			r.analyzeStarted = true
			if r.editedText == "" {
				// Enhancement failed: nothing to analyze, stage degrades.
				r.analyzeResolved = true
				st.Note = "skipped: no enhanced transcript"
			} else {
				go p.runAnalyze(r, r.gen, r.editedText)
			}
		}
	}

	step := p.stageStep
	limit := 100
	if r.state == StateEnhancing || r.state == StateAnalyzing {
		step = p.aiStageStep
		// The bar must never claim a result that has not arrived: AI
		// stages hold at 99 until their call resolves either way.
		resolved := (r.state == StateEnhancing && r.enhanceResolved) ||
			(r.state == StateAnalyzing && r.analyzeResolved)
		if !resolved {
			limit = 99
		}
	}

	st.Progress += step
	if st.Progress > limit {
		st.Progress = limit
	}

	if st.Progress >= 100 {
		st.Progress = 100
		st.Complete = true
		stageDuration.WithLabelValues(st.Name).Observe(time.Since(r.entered[idx]).Seconds())
	}

	p.publishProgressLocked(r)
	return false
}

// advanceLocked moves past a completed stage: either into the next stage or,
// after the final one, through finalization into Done.
func (p *Processor) advanceLocked(r *Run, idx int) {
	if next, ok := nextState[r.state]; ok {
		r.state = next
		nextIdx, _ := next.stageIndex()
		r.entered[nextIdx] = time.Now()
		p.publishProgressLocked(r)
		return
	}

	// Final stage complete: build and persist the lecture.
	p.completeLocked(r)
}

// Interrupt aborts the run from any non-terminal state and resets it to
// Idle. All stage state is discarded and nothing is persisted; responses
// from in-flight calls land on a stale generation and are dropped.
func (p *Processor) Interrupt(id string) bool {
	r := p.run(id)
	if r == nil {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state.terminal() {
		return false
	}

	r.gen++
	r.state = StateInterrupted
	p.bus.Publish(events.Event{Type: events.TypeRunInterrupt, RunID: r.ID})
	runsInterrupted.Inc()
	log.Printf("🛑 Run %s interrupted", r.ID)

	// Reset: back to Idle with fresh stage state and no cached results.
	r.stages = freshStages()
	r.enhanceStarted, r.enhanceResolved = false, false
	r.analyzeStarted, r.analyzeResolved = false, false
	r.editedText = ""
	r.analysis = nil
	r.record = nil
	r.state = StateIdle
	return true
}

// Snapshot returns a copy of the run's visible state.
func (p *Processor) Snapshot(id string) (Snapshot, bool) {
	r := p.run(id)
	if r == nil {
		return Snapshot{}, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked(), true
}

func (r *Run) snapshotLocked() Snapshot {
	stages := make([]Stage, len(r.stages))
	copy(stages, r.stages[:])
	return Snapshot{
		ID:        r.ID,
		State:     r.state.String(),
		Stages:    stages,
		StartedAt: r.startedAt,
		Record:    r.record,
	}
}

func (p *Processor) run(id string) *Run {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.runs[id]
}

func (p *Processor) publishProgressLocked(r *Run) {
	p.bus.Publish(events.Event{
		Type:    events.TypeStageProgress,
		RunID:   r.ID,
		Payload: r.snapshotLocked(),
	})
}

// --- External calls ---

func (p *Processor) runEnhance(r *Run, gen int, transcript string) {
	edited, err := p.enhancer.Enhance(context.Background(), transcript)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.gen != gen {
		log.Printf("Run %s: discarding enhancement response from an interrupted run", r.ID)
		return
	}

	if err != nil {
		// Best effort: log, leave the enrichment absent, keep going.
		log.Printf("⚠️ Run %s: enhancement failed: %v", r.ID, err)
		aiCalls.WithLabelValues("enhance", "error").Inc()
		r.stages[1].Note = "enhancement failed, using raw transcript"
	} else {
		aiCalls.WithLabelValues("enhance", "ok").Inc()
		r.editedText = edited
	}
	r.enhanceResolved = true
}

func (p *Processor) runAnalyze(r *Run, gen int, edited string) {
	result, err := p.analyzer.Analyze(context.Background(), edited)

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.gen != gen {
		log.Printf("Run %s: discarding analysis response from an interrupted run", r.ID)
		return
	}

	if err != nil {
		log.Printf("⚠️ Run %s: analysis failed: %v", r.ID, err)
		aiCalls.WithLabelValues("analyze", "error").Inc()
		r.stages[2].Note = "analysis failed, lecture ships without enrichment"
	} else {
		aiCalls.WithLabelValues("analyze", "ok").Inc()
		r.analysis = result
	}
	r.analyzeResolved = true
}

// --- Completion ---

func (p *Processor) completeLocked(r *Run) {
	record := p.buildRecordLocked(r)

	if err := p.store.Append(record); err != nil {
		log.Printf("❌ Run %s: failed to persist lecture: %v", r.ID, err)
		r.stages[4].Note = "lecture could not be saved"
	}

	r.record = record
	r.state = StateDone
	runsCompleted.Inc()
	log.Printf("✅ Run %s complete: lecture %s (%s)", r.ID, record.ID, record.Title)

	p.bus.Publish(events.Event{
		Type:    events.TypeRunCompleted,
		RunID:   r.ID,
		Payload: r.snapshotLocked(),
	})
}

func (p *Processor) buildRecordLocked(r *Run) *models.Lecture {
	id := uuid.NewString()

	title := r.input.Title
	if title == "" {
		title = utils.CleanFilename(r.input.SlidesFilename)
	}
	if title == "" {
		title = "Generated Lecture"
	}

	// The enhanced text narrates the lecture; fall back to the raw upload
	// when the enhancement call failed.
	text := r.editedText
	if text == "" {
		text = r.input.RawTranscript
	}
	transcript := segmentText(text, p.segmentSeconds)

	var duration float64
	if n := len(transcript); n > 0 {
		duration = transcript[n-1].EndTime
	}

	lec := &models.Lecture{
		ID:          id,
		OwnerID:     r.input.OwnerID,
		Title:       title,
		Duration:    duration,
		SlideCount:  r.input.SlideCount,
		AudioFormat: "mp3",
		Summary:     "",
		Transcript:  transcript,
	}
	if r.analysis != nil {
		lec.Summary = r.analysis.Summary
		lec.Topics = r.analysis.TopicsCSV()
		lec.Sentiment = r.analysis.Sentiment
	}

	p.publishSlides(lec, r)
	p.publishNarration(lec, title, duration)

	return lec
}

// publishSlides copies the uploaded deck into the assets bucket and points
// one slide entry at each page. The deck is never parsed (pages are view
// anchors, not rendered images). Without a staged deck there is nothing to
// point at, so the lecture carries zero slides rather than dangling URLs.
func (p *Processor) publishSlides(lec *models.Lecture, r *Run) {
	if r.input.SlidesKey == "" {
		lec.SlideCount = 0
		return
	}

	deckKey := fmt.Sprintf("lectures/%s/deck%s", lec.ID, filepath.Ext(r.input.SlidesFilename))
	if err := p.copyUploadToAsset(r.input.SlidesKey, deckKey); err != nil {
		log.Printf("⚠️ Run %s: deck publish failed: %v", r.ID, err)
	}

	deckURL := p.assets.AssetURL(deckKey)
	for i := 0; i < lec.SlideCount; i++ {
		lec.Slides = append(lec.Slides, models.Slide{
			SlideID:  fmt.Sprintf("%d", i+1),
			Position: i,
			URL:      fmt.Sprintf("%s#page=%d", deckURL, i+1),
		})
	}
	if len(lec.Slides) > 0 {
		lec.ThumbnailURL = lec.Slides[0].URL
	}
}

// publishNarration renders, tags, verifies, and stores the narration MP3.
// Any failure leaves AudioURL empty; the run still completes.
func (p *Processor) publishNarration(lec *models.Lecture, title string, duration float64) {
	if duration <= 0 {
		return
	}

	tmp, err := os.CreateTemp(p.tempDir, "proftwo-narration-*.mp3")
	if err != nil {
		log.Printf("⚠️ Narration temp file failed: %v", err)
		return
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)

	if err := synthesis.Render(tmpPath, duration); err != nil {
		log.Printf("⚠️ Narration render failed: %v", err)
		return
	}
	if err := synthesis.Stamp(tmpPath, title, "ProfTwo AI", "ProfTwo Lectures"); err != nil {
		log.Printf("⚠️ Narration tagging failed: %v", err)
		return
	}
	if _, err := synthesis.Verify(tmpPath); err != nil {
		log.Printf("⚠️ Narration verification failed: %v", err)
		return
	}

	f, err := os.Open(tmpPath)
	if err != nil {
		log.Printf("⚠️ Narration reopen failed: %v", err)
		return
	}
	defer f.Close()

	key := fmt.Sprintf("lectures/%s/narration.mp3", lec.ID)
	if err := p.assets.PutAsset(key, f, "audio/mpeg", "public, max-age=86400"); err != nil {
		log.Printf("⚠️ Narration upload failed: %v", err)
		return
	}

	lec.AudioKey = key
	lec.AudioURL = p.assets.AssetURL(key)
}

func (p *Processor) copyUploadToAsset(uploadKey, assetKey string) error {
	obj, err := p.assets.GetUpload(uploadKey)
	if err != nil {
		return err
	}
	defer obj.Body.Close()

	// Provider Put wants a ReadSeeker; spool through a temp file.
	tmp, err := os.CreateTemp(p.tempDir, "proftwo-deck-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, obj.Body); err != nil {
		tmp.Close()
		return err
	}
	if _, err := tmp.Seek(0, 0); err != nil {
		tmp.Close()
		return err
	}
	defer tmp.Close()

	return p.assets.PutAsset(assetKey, tmp, obj.ContentType, "")
}
