package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ctmes/ProfTwo/internal/analyze"
	"github.com/ctmes/ProfTwo/internal/config"
	database "github.com/ctmes/ProfTwo/internal/db"
	"github.com/ctmes/ProfTwo/internal/enhance"
	"github.com/ctmes/ProfTwo/internal/events"
	"github.com/ctmes/ProfTwo/internal/library"
	"github.com/ctmes/ProfTwo/internal/pipeline"
	"github.com/ctmes/ProfTwo/internal/storage"
)

// echoEnhancer stands in for the real editor when no API key is configured:
// it tidies whitespace and leaves the text otherwise untouched.
type echoEnhancer struct{}

func (echoEnhancer) Enhance(ctx context.Context, transcript string) (string, error) {
	return strings.Join(strings.Fields(transcript), " "), nil
}

type noopAnalyzer struct{}

func (noopAnalyzer) Analyze(ctx context.Context, text string) (*analyze.Result, error) {
	return &analyze.Result{Summary: "(analysis disabled in simulation)"}, nil
}

func main() {
	// 1. Parse Flags
	simulate := flag.Bool("simulate", false, "Dry run: stub AI clients, throwaway DB, output to stdout")
	transcriptPath := flag.String("transcript", "", "Path to a transcript .txt file (required)")
	title := flag.String("title", "", "Lecture title (defaults to the transcript filename)")
	slides := flag.Int("slides", 0, "Slide count override")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if *transcriptPath == "" {
		log.Fatal("Usage: pipeline -transcript lecture.txt [-simulate] [-title ...] [-slides N]")
	}

	raw, err := os.ReadFile(*transcriptPath)
	if err != nil {
		log.Fatalf("❌ Cannot read transcript: %v", err)
	}

	// 2. Load Config
	cfg := config.Load()

	// 3. Apply Simulation Overrides
	if *simulate {
		log.Println("🧪 MODE: DRY RUN / SIMULATION")
		log.Println("   - Stub AI clients (no external calls)")
		log.Println("   - Throwaway database and storage")
		cfg.Database.Driver = "sqlite"
		cfg.Database.Path = ":memory:"
		tmp, err := os.MkdirTemp("", "proftwo-sim-*")
		if err != nil {
			log.Fatalf("❌ Cannot create simulation dir: %v", err)
		}
		defer os.RemoveAll(tmp)
		cfg.Storage.Provider = "local"
		cfg.Storage.LocalRoot = tmp
		cfg.Server.TempDir = tmp
	} else {
		log.Println("🚀 Running the processing pipeline against the live config...")
	}

	// 4. Init Infrastructure
	db := database.New(cfg)
	db.AutoMigrate()
	store := storage.New(cfg)
	lib := library.New(db.DB)
	bus := events.NewBus()

	// 5. Pick AI clients
	var enhancer pipeline.Enhancer = enhance.New(cfg)
	var analyzer pipeline.Analyzer = analyze.New(cfg)
	if *simulate {
		enhancer = echoEnhancer{}
		analyzer = noopAnalyzer{}
	}

	proc := pipeline.NewProcessor(cfg, lib, store, enhancer, analyzer, bus)

	in := pipeline.Input{
		OwnerID:        "cli",
		Title:          *title,
		SlidesFilename: filepath.Base(*transcriptPath),
		RawTranscript:  string(raw),
		SlideCount:     *slides,
	}

	// 6. Run
	if err := proc.Simulate(in); err != nil {
		log.Fatalf("❌ Pipeline failed: %v", err)
	}
}
