package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/cvparse/resume-extractor/internal/common"
	"github.com/cvparse/resume-extractor/internal/extract"
	"github.com/cvparse/resume-extractor/internal/llm/openai"
	"github.com/cvparse/resume-extractor/internal/pipeline"
)

// One-shot extraction of a local PDF, printing the normalized JSON to stdout.
// Useful for prompt and threshold tuning without a running server.
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	if len(os.Args) != 2 {
		logger.Error("usage", "cmd", "extract <resume.pdf>")
		os.Exit(2)
	}

	cfg := common.LoadConfig()
	if cfg.LLM.APIKey == "" {
		logger.Error("OPENAI_API_KEY required")
		os.Exit(1)
	}

	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		logger.Error("read file", "path", os.Args[1], "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

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

	start := time.Now()
	result, err := p.Run(ctx, data)
	if err != nil {
		logger.Error("extraction failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		os.Exit(1)
	}

	out, err := json.MarshalIndent(result.Data, "", "  ")
	if err != nil {
		logger.Error("marshal result", "error", err)
		os.Exit(1)
	}
	fmt.Println(string(out))

	logger.Info("extraction OK",
		"model", result.Model,
		"image_based", result.ImageBased,
		"degenerate", result.Degenerate,
		"duration_ms", time.Since(start).Milliseconds(),
	)
}
