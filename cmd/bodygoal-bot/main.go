package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"bodygoal/internal/artifact"
	"bodygoal/internal/config"
	"bodygoal/internal/database"
	"bodygoal/internal/engine"
	"bodygoal/internal/llm"
	"bodygoal/internal/metrics"
	"bodygoal/internal/profileapi"
	"bodygoal/internal/telegram"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.NewFromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	ctx := context.Background()

	textGen, err := newTextGenerator(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create generation client")
	}
	if c, ok := textGen.(llm.Closer); ok {
		defer c.Close()
	}

	db, err := database.NewDB(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer db.Close()

	store, err := artifact.NewCachedStore(artifact.NewRepository(db.SQL), 1024)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize artifact store")
	}
	metricsStore := metrics.NewStore(db.SQL)
	checkins := telegram.NewCheckinRepository(db.SQL)
	profiles := profileapi.NewClient(cfg.ProfileAPIURL, cfg.ProfileAPIKey)

	eng := engine.NewEngine(store, textGen, metricsStore, cfg.PlanTTL, cfg.GenerationTimeout, log.Logger)
	coach := engine.NewCoach(textGen, cfg.GenerationTimeout, log.Logger)

	bot, err := telegram.NewBot(cfg, eng, coach, profiles, checkins, metricsStore)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telegram bot")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	bot.RegisterHandlers()

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: nil,
	}

	go func() {
		log.Info().Str("port", port).Msg("telegram bot server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exiting")
}

func newTextGenerator(ctx context.Context, cfg *config.Config) (llm.TextGenerator, error) {
	if cfg.LLMProvider == config.ProviderGroq {
		return llm.NewGroqClient(cfg), nil
	}
	return llm.NewGeminiClient(ctx, cfg)
}
