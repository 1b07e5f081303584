// Package pipeline consolidates the historically duplicated upload/extract
// flows into one configurable sequence: text extraction, the OCR fallback
// decision, prompt construction, the LLM call, and normalization.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cvparse/resume-extractor/constants"
	"github.com/cvparse/resume-extractor/internal/extract"
	"github.com/cvparse/resume-extractor/internal/llm"
	"github.com/cvparse/resume-extractor/internal/resume"
)

// Config holds the fallback threshold. The image ceiling lives in the
// rasterizer; the prompt budget lives in the prompt builder.
type Config struct {
	MinTextChars int // default constants.MinTextChars
}

// Result is what one upload produces.
type Result struct {
	Data       resume.ResumeData
	RawJSON    []byte
	Model      string
	ImageBased bool // the OCR path was taken
	Degenerate bool // LLM content collapsed to the empty object
}

type Pipeline struct {
	cfg       Config
	text      extract.TextExtractor
	raster    extract.Rasterizer
	extractor llm.FieldExtractor
	logger    *slog.Logger
}

func New(cfg Config, text extract.TextExtractor, raster extract.Rasterizer, fe llm.FieldExtractor, logger *slog.Logger) *Pipeline {
	if cfg.MinTextChars <= 0 {
		cfg.MinTextChars = constants.MinTextChars
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{cfg: cfg, text: text, raster: raster, extractor: fe, logger: logger}
}

// Run executes the full sequence for one PDF. Text extraction faults are
// recoverable (they trigger the OCR fallback); a rasterization fault or an
// oversized image is fatal because no further fallback exists.
func (p *Pipeline) Run(ctx context.Context, data []byte) (Result, error) {
	start := time.Now()

	text := p.text.Text(ctx, data)
	req := llm.ExtractRequest{Text: text}

	if len(text) < p.cfg.MinTextChars {
		p.logger.Info("pipeline.ocr_fallback",
			"text_len", len(text),
			"threshold", p.cfg.MinTextChars,
		)
		dataURL, err := p.raster.FirstPageDataURL(ctx, data)
		if err != nil {
			return Result{}, fmt.Errorf("PDF appears to be image-based but could not be processed: %w", err)
		}
		req = llm.ExtractRequest{ImageDataURL: dataURL, ImageBased: true}
	}

	res, err := p.extractor.ExtractFields(ctx, req)
	if err != nil {
		return Result{}, fmt.Errorf("llm extract: %w", err)
	}

	p.logger.Info("pipeline.ok",
		"image_based", req.ImageBased,
		"model", res.Model,
		"degenerate", res.Degenerate,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return Result{
		Data:       res.Data,
		RawJSON:    res.RawJSON,
		Model:      res.Model,
		ImageBased: req.ImageBased,
		Degenerate: res.Degenerate,
	}, nil
}
