package main

import (
	"context"
	"log"
	"log/slog"
	"time"

	"tradingcoach/db"
	"tradingcoach/internal/analysis"
	"tradingcoach/internal/config"
	"tradingcoach/internal/handler"
	"tradingcoach/internal/metrics"
	"tradingcoach/internal/repository"
	"tradingcoach/pkg/llm"
	"tradingcoach/pkg/quote"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {

	godotenv.Load()

	cfg := config.Load()

	store, closeStore := openStore(cfg)
	defer closeStore()

	storage := repository.NewClientStorage(store)

	var (
		analyzers []llm.ChartAnalyzer
		openAI    *llm.OpenAIClient
		claude    *llm.AnthropicClient
	)

	if cfg.OpenAIKey != "" {
		openAI = llm.NewOpenAIClient(cfg.OpenAIKey)
		analyzers = append(analyzers, openAI)
	} else {
		slog.Warn("OPENAI_API_KEY not set, OpenAI vendor disabled")
	}

	if cfg.ClaudeKey != "" {
		claude = llm.NewAnthropicClient(cfg.ClaudeKey)
		analyzers = append(analyzers, claude)
	} else {
		slog.Warn("CLAUDE_API_KEY not set, Claude vendor disabled")
	}

	if cfg.GeminiKey != "" {
		gemini, err := llm.NewGeminiClient(context.Background(), cfg.GeminiKey)
		if err != nil {
			log.Fatalf("error creating Gemini client: %v", err)
		}
		analyzers = append(analyzers, gemini)
	} else {
		slog.Warn("GEMINI_API_KEY not set, Gemini vendor disabled")
	}

	if len(analyzers) == 0 {
		log.Fatalf("no vision vendor configured, set at least one of OPENAI_API_KEY, CLAUDE_API_KEY, GEMINI_API_KEY")
	}

	var coach llm.CoachClient
	switch {
	case cfg.CoachVendor == "claude" && claude != nil:
		coach = claude
	case openAI != nil:
		coach = openAI
	case claude != nil:
		coach = claude
	default:
		log.Fatalf("coach chat needs OPENAI_API_KEY or CLAUDE_API_KEY")
	}

	var quoter quote.Quoter
	if cfg.FinnhubKey != "" {
		quoter = quote.NewFinnHubClient(cfg.FinnhubKey)
	}

	recorder := metrics.New(prometheus.DefaultRegisterer)
	dispatcher := analysis.NewDispatcher(analyzers, cfg.VendorTimeout, recorder)

	analyzeHandler := handler.NewAnalyzeHandler(dispatcher, storage, quoter, cfg.MaxUploadBytes)
	chatHandler := handler.NewChatHandler(coach, storage)
	storageHandler := handler.NewStorageHandler(storage, storage)
	healthHandler := handler.NewHealthHandler(storage, dispatcher.Sources())

	slog.Info("vendors configured", "vision", dispatcher.Sources(), "coach", coach.Name(), "timeout", cfg.VendorTimeout)

	r := gin.Default()
	r.MaxMultipartMemory = cfg.MaxUploadBytes

	allowedOrigins := []string{"http://localhost:3000"}

	if cfg.FrontendURL != "" {
		allowedOrigins = append(allowedOrigins, cfg.FrontendURL)
	}

	slog.Info("AllowOrigins URL:", "urls", allowedOrigins)

	r.Use(cors.New(cors.Config{
		AllowOrigins:  allowedOrigins,
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", handler.ClientIDHeader},
		ExposeHeaders: []string{handler.EntryIDHeader},
	}))

	api := r.Group("/api", handler.ClientIdentity())
	api.POST("/analyze", analyzeHandler.Analyze)
	api.POST("/analyze/:vendor", analyzeHandler.AnalyzeVendor)
	api.POST("/chat", chatHandler.Chat)
	api.GET("/chat/history", chatHandler.GetTranscript)
	api.DELETE("/chat/history", chatHandler.ClearTranscript)
	api.GET("/profile", storageHandler.GetProfile)
	api.PUT("/profile", storageHandler.SaveProfile)
	api.DELETE("/profile", storageHandler.RemoveProfile)
	api.GET("/history", storageHandler.GetHistory)
	api.DELETE("/history", storageHandler.ClearHistory)
	api.GET("/history/:id", storageHandler.GetEntry)
	api.DELETE("/history/:id", storageHandler.DeleteEntry)

	r.GET("/health", healthHandler.GetHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	err := r.Run(":" + cfg.Port)
	if err != nil {
		log.Fatalf("error starting server: %v", err)
	}
}

// openStore connects the configured storage backend and returns its closer.
func openStore(cfg config.Config) (repository.KeyValueStore, func()) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch cfg.StorageBackend {
	case config.StorageRedis:
		if err := db.ConnectRedis(ctx, cfg.RedisURL); err != nil {
			log.Fatalf("error connecting to Redis: %v", err)
		}
		slog.Info("using redis storage")
		return repository.NewRedisStore(db.Redis, db.KeyPrefix), db.CloseRedis

	case config.StoragePostgres:
		if err := db.Connect(cfg.DatabaseURL); err != nil {
			log.Fatalf("error connecting to DB: %v", err)
		}
		store := repository.NewPostgresStore(db.DB)
		if err := store.EnsureSchema(ctx); err != nil {
			db.Close()
			log.Fatalf("error preparing client storage table: %v", err)
		}
		slog.Info("using postgres storage")
		return store, db.Close

	case config.StorageMemory:
		slog.Warn("using in-memory storage, data is lost on restart")
		return repository.NewMemoryStore(), func() {}

	default:
		log.Fatalf("unknown STORAGE_BACKEND %q", cfg.StorageBackend)
		return nil, nil
	}
}
