package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"tradingcoach/internal/analysis"
	"tradingcoach/internal/config"
	"tradingcoach/internal/model"
	"tradingcoach/pkg/llm"

	"github.com/gabriel-vasile/mimetype"
	"github.com/joho/godotenv"
)

func main() {
	godotenv.Load()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	cfg := config.Load()

	imagePath := flag.String("image", "", "path to the chart screenshot")
	profilePath := flag.String("profile", "", "path to a trader profile JSON file")
	timeout := flag.Duration("timeout", cfg.VendorTimeout, "per-vendor timeout")
	flag.Parse()

	if *imagePath == "" {
		log.Fatalf("-image is required")
	}

	image, err := os.ReadFile(*imagePath)
	if err != nil {
		log.Fatalf("error reading image: %v", err)
	}

	mediaType := mimetype.Detect(image)
	if !mimetype.EqualsAny(mediaType.String(), "image/png", "image/jpeg", "image/gif", "image/webp") {
		log.Fatalf("unsupported image type %s", mediaType.String())
	}

	profile := "{}"
	if *profilePath != "" {
		raw, err := os.ReadFile(*profilePath)
		if err != nil {
			log.Fatalf("error reading profile: %v", err)
		}
		if !json.Valid(raw) {
			log.Fatalf("profile %s is not valid JSON", *profilePath)
		}
		profile = string(raw)
	}

	var analyzers []llm.ChartAnalyzer
	if cfg.OpenAIKey != "" {
		analyzers = append(analyzers, llm.NewOpenAIClient(cfg.OpenAIKey))
	}
	if cfg.ClaudeKey != "" {
		analyzers = append(analyzers, llm.NewAnthropicClient(cfg.ClaudeKey))
	}
	if cfg.GeminiKey != "" {
		gemini, err := llm.NewGeminiClient(context.Background(), cfg.GeminiKey)
		if err != nil {
			log.Fatalf("error creating Gemini client: %v", err)
		}
		analyzers = append(analyzers, gemini)
	}
	if len(analyzers) == 0 {
		log.Fatalf("no vision vendor configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	dispatcher := analysis.NewDispatcher(analyzers, *timeout, nil)

	slog.Info("analyzing chart", "image", *imagePath, "media_type", mediaType.String(), "vendors", dispatcher.Sources())

	input := llm.ChartInput{
		Image:     image,
		MediaType: mediaType.String(),
		Profile:   profile,
	}

	enc := json.NewEncoder(os.Stdout)
	start := time.Now()
	failed := 0

	for r := range dispatcher.Stream(ctx, input) {
		if r.Err != nil {
			failed++
			enc.Encode(model.VendorError{
				Error:  "Error analyzing with " + r.Source + ": " + r.Err.Error(),
				Source: r.Source,
			})
			continue
		}
		enc.Encode(r.Analysis)
	}

	slog.Info("analysis finished", "vendors", len(analyzers), "failed", failed, "elapsed", time.Since(start))

	if failed == len(analyzers) {
		stop()
		os.Exit(1)
	}
}
