package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/vladimiradmaev/glucose-insights/internal/api"
	"github.com/vladimiradmaev/glucose-insights/internal/bot"
	"github.com/vladimiradmaev/glucose-insights/internal/bot/handlers"
	"github.com/vladimiradmaev/glucose-insights/internal/bot/state"
	"github.com/vladimiradmaev/glucose-insights/internal/config"
	"github.com/vladimiradmaev/glucose-insights/internal/database"
	"github.com/vladimiradmaev/glucose-insights/internal/domain"
	"github.com/vladimiradmaev/glucose-insights/internal/logger"
	"github.com/vladimiradmaev/glucose-insights/internal/metrics"
	"github.com/vladimiradmaev/glucose-insights/internal/repository"
	"github.com/vladimiradmaev/glucose-insights/internal/services"
)

const shutdownTimeout = 10 * time.Second

func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", "error", err)
	}

	if err := logger.InitWithConfig(logger.Config{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	}); err != nil {
		logger.Fatal("Failed to initialize logger", "error", err)
	}
	log := logger.GetLogger()
	if envErr != nil {
		log.Debug("No .env file loaded", "error", envErr)
	}
	log.Info("Starting glucose insights", "store", cfg.StoreDriver, "http_addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store domain.RecordStore
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		store = repository.NewMemoryStore()
		log.Warn("Using in-memory store; records are lost on restart")
	default:
		db, err := database.NewPostgresDB(cfg.DB, log)
		if err != nil {
			logger.Fatal("Failed to connect to database", "error", err)
		}
		store = repository.NewGormStore(db)
	}

	m := metrics.NewCollector()

	var extractor services.ChartExtractor
	if cfg.GeminiAPIKey != "" {
		gemini, err := services.NewGeminiChartExtractor(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Fatal("Failed to create Gemini client", "error", err)
		}
		defer gemini.Close()
		extractor = gemini
	} else {
		log.Warn("GEMINI_API_KEY not set; chart digitization disabled")
	}

	// Initialize services
	analysisService := services.NewAnalysisService(store, services.AnalysisOptions{
		Days:    cfg.Analysis.WindowDays,
		Target:  domain.TargetRange{Low: cfg.Analysis.TargetLow, High: cfg.Analysis.TargetHigh},
		Metrics: m,
	}, log)
	subjectService := services.NewSubjectService(store, log)
	trackingService := services.NewTrackingService(store, log)
	importService := services.NewImportService(store, m, log)
	chartService := services.NewChartService(extractor, store, m, log)
	chatService := services.NewChatService(analysisService, store, log)
	log.Info("Services initialized successfully")

	router := api.NewRouter(api.Dependencies{
		Subjects: subjectService,
		Tracking: trackingService,
		Analysis: analysisService,
		Import:   importService,
		Chart:    chartService,
		Chat:     chatService,
	}, m, log)
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info("HTTP server listening", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server stopped with error", "error", err)
			stop()
		}
	}()

	if cfg.TelegramToken != "" {
		stateManager := newStateManager(cfg, log)
		telegramBot, err := bot.NewBot(cfg.TelegramToken, handlers.Dependencies{
			Subjects: subjectService,
			Tracking: trackingService,
			Analysis: analysisService,
			Import:   importService,
			Chart:    chartService,
			Chat:     chatService,
			Metrics:  m,
		}, stateManager)
		if err != nil {
			logger.Fatal("Failed to create bot", "error", err)
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("Bot stopped with error", "error", err)
				stop()
			}
		}()
	} else {
		log.Warn("TELEGRAM_BOT_TOKEN not set; running HTTP API only")
	}

	<-ctx.Done()
	log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", "error", err)
	}
	wg.Wait()
	log.Info("Stopped")
}

// newStateManager uses redis when REDIS_HOST is set, falling back to memory
func newStateManager(cfg *config.Config, log *slog.Logger) state.StateManager {
	if !cfg.Redis.Enabled() {
		return state.NewManager()
	}
	redisManager, err := state.NewRedisManager(cfg.Redis.Host, cfg.Redis.Port)
	if err != nil {
		log.Warn("Redis unavailable, using in-memory chat state", "error", err)
		return state.NewManager()
	}
	return redisManager
}
