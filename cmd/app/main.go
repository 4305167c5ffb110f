// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"ai-debate-orchestrator/internal/config"
	"ai-debate-orchestrator/internal/domain/ports/adapter"
	"ai-debate-orchestrator/internal/domain/ports/repository"
	aiAdapters "ai-debate-orchestrator/internal/infra/adapters/ai"
	mem "ai-debate-orchestrator/internal/infra/db/memory"
	pg "ai-debate-orchestrator/internal/infra/db/postgres"
	"ai-debate-orchestrator/internal/infra/logging"
	"ai-debate-orchestrator/internal/infra/metrics"
	red "ai-debate-orchestrator/internal/infra/redis"
	"ai-debate-orchestrator/internal/infra/sched"
	"ai-debate-orchestrator/internal/infra/web"
	"ai-debate-orchestrator/internal/infra/worker"
	"ai-debate-orchestrator/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "developer mode: canned AI responses, console logs")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Info().Msg("developer mode enabled")
	}

	metrics.MustRegister()

	// ---- Redis (optional) ----
	var (
		redisClient red.RedisClient
		rateLimiter *red.RateLimiter
	)
	if cfg.Redis.URL != "" {
		redisClient, err = red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer redisClient.Close()
		rateLimiter = red.NewRateLimiter(redisClient)
	}

	// ---- Template store: Postgres when configured, in-memory otherwise ----
	var store repository.TemplateStore
	if cfg.Database.URL != "" {
		pool, err := pg.Connect(ctx, cfg.Database.URL)
		if err != nil {
			log.Fatalf("postgres: %v", err)
		}
		defer pool.Close()
		store = pg.NewPostgresTemplateRepo(pool)
		if redisClient != nil {
			store = pg.NewTemplateRepoCacheDecorator(store, redisClient)
		}
	} else {
		logger.Warn().Msg("database.url not set; templates are in-memory only")
		store = mem.NewTemplateStore()
	}

	// ---- AI adapters ----
	ai := buildAI(ctx, cfg, logger)
	ai = aiAdapters.NewInstrumentedAI(ai, nil)
	ai = aiAdapters.NewLimitedAI(ai, cfg.AI.ConcurrentLimit)

	// ---- Worker pool: hard cap on concurrently running debates ----
	pool := worker.NewPool(cfg.Debate.MaxConcurrentSessions, logger)
	pool.Start(ctx)
	defer pool.Stop()

	// ---- Use cases ----
	templateUC := usecase.NewTemplateUseCase(store)
	debateUC := usecase.NewDebateUseCase(
		usecase.DebateSettings{
			DefaultMaxRounds:     cfg.Debate.DefaultMaxRounds,
			MinRounds:            cfg.Debate.MinRounds,
			EarlyStopOnAgreement: cfg.Debate.EarlyStopOnAgreement,
			InterjectionHorizon:  cfg.Debate.InterjectionHorizon,
			MaxRetries:           cfg.Debate.MaxRetries,
			RetryBackoff:         cfg.Debate.RetryBackoff,
			SynthesisModel:       cfg.Debate.SynthesisModel,
		},
		ai,
		nil, // default keyword analyzer
		templateUC,
		pool,
		nil, // default rate table
		logger,
	)

	reaper := sched.NewSessionReaper(cfg.Debate.ReapInterval, cfg.Debate.SessionRetention, debateUC, logger)
	go func() { _ = reaper.Run(ctx) }()

	// ---- HTTP ----
	authMgr := web.NewAuthManager(cfg.Server.JWTSecret, cfg.Server.TokenTTL)
	server := web.NewServer(&cfg.Server, debateUC, templateUC, authMgr, rateLimiter, logger)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server stopped")
			cancel()
		}
	}()

	// ---- Shutdown ----
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case s := <-sig:
		logger.Info().Str("signal", s.String()).Msg("shutting down")
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
	cancel()
}

// buildAI selects providers from config. Dev mode runs entirely on canned
// responses; otherwise every configured provider is routed by model name.
func buildAI(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) adapter.AIServiceAdapter {
	if cfg.Runtime.Dev {
		logger.Info().Msg("AI adapter: noop (dev mode)")
		return aiAdapters.NewNoopAIAdapter()
	}

	providers := map[string]adapter.AIServiceAdapter{}
	if cfg.AI.OpenAIKey != "" {
		oa, err := aiAdapters.NewOpenAIAdapter(cfg.AI.OpenAIKey, "", cfg.AI.DefaultModel, cfg.AI.MaxOutputTokens)
		if err != nil {
			log.Fatalf("openai adapter: %v", err)
		}
		providers["openai"] = oa
		logger.Info().Str("model", cfg.AI.DefaultModel).Msg("AI adapter: OpenAI")
	}
	if cfg.AI.GeminiKey != "" {
		ga, err := aiAdapters.NewGeminiAdapter(ctx, cfg.AI.GeminiKey, cfg.AI.GeminiURL, "", cfg.AI.MaxOutputTokens)
		if err != nil {
			log.Fatalf("gemini adapter: %v", err)
		}
		providers["gemini"] = ga
		logger.Info().Str("base", cfg.AI.GeminiURL).Msg("AI adapter: Gemini")
	}
	switch len(providers) {
	case 0:
		log.Fatalf("no AI provider configured: set ai.openai_key or ai.gemini_key, or run with -dev")
		return nil
	case 1:
		for _, a := range providers {
			return a
		}
		return nil
	default:
		defaultProvider := "openai"
		if _, ok := providers["openai"]; !ok {
			defaultProvider = "gemini"
		}
		return aiAdapters.NewMultiAIAdapter(defaultProvider, providers, nil)
	}
}
