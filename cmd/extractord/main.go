package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/cvparse/resume-extractor/internal/billing"
	"github.com/cvparse/resume-extractor/internal/common"
	"github.com/cvparse/resume-extractor/internal/export"
	"github.com/cvparse/resume-extractor/internal/extract"
	"github.com/cvparse/resume-extractor/internal/llm/openai"
	"github.com/cvparse/resume-extractor/internal/pipeline"
	"github.com/cvparse/resume-extractor/internal/repository"
	"github.com/cvparse/resume-extractor/internal/server"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gdb, pool, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("open db", "error", err)
		os.Exit(1)
	}
	defer repository.Close(pool, logger)

	if err := repository.HealthCheck(ctx, pool, logger); err != nil {
		logger.Error("db health check failed", "error", err)
		os.Exit(1)
	}
	if err := repository.Migrate(gdb, logger); err != nil {
		logger.Error("schema migration failed", "error", err)
		os.Exit(1)
	}

	users := repository.NewUserRepository(gdb, logger)
	files := repository.NewFileRepository(gdb, logger)
	resumes := repository.NewResumeRepository(gdb, logger)
	history := repository.NewHistoryRepository(gdb, logger)

	textExtractor := extract.NewPDFTextExtractor(cfg.Extract.TextTimeout, logger)
	rasterizer := extract.NewPDFRasterizer(cfg.Extract.MaxImageBytes, logger)
	client := openai.NewClient(openai.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		TextModel:   cfg.LLM.TextModel,
		VisionModel: cfg.LLM.VisionModel,
		Timeout:     cfg.LLM.Timeout,
	}, logger)
	p := pipeline.New(pipeline.Config{MinTextChars: cfg.Extract.MinTextChars},
		textExtractor, rasterizer, client, logger)

	ledger := billing.NewLedger(users, cfg.Billing, logger)
	exporter := export.NewService(history, logger)

	srv := server.New(p, users, files, resumes, history, ledger, exporter, cfg.Billing, logger)
	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: srv.Router(),
	}

	go func() {
		logger.Info("http serving", "addr", cfg.Server.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", "error", err)
	}
	logger.Info("stopped")
}
