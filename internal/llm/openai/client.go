package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cvparse/resume-extractor/internal/llm"
	"github.com/cvparse/resume-extractor/internal/resume"
)

// ExtractFields implements llm.FieldExtractor against an OpenAI-compatible
// chat/completions endpoint. The model is chosen by input kind: the lighter
// text model for extracted text, the vision model for page images.
//
// Empty or unparsable response content collapses to "{}" rather than an
// error: a mostly-empty schema back to the user beats failing the request.
// The Degenerate flag on the result records that this happened.
func (c *Client) ExtractFields(ctx context.Context, req llm.ExtractRequest) (llm.Result, error) {
	rid := uuid.New().String()
	start := time.Now()

	model := c.cfg.TextModel
	if req.ImageBased {
		model = c.cfg.VisionModel
	}

	c.logger.Info("llm.extract.start",
		"req_id", rid,
		"model", model,
		"image_based", req.ImageBased,
		"text_len", len(req.Text),
		"image_bytes", len(req.ImageDataURL),
	)

	body := map[string]any{
		"model":           model,
		"response_format": map[string]any{"type": "json_object"},
		"messages":        llm.BuildMessages(req),
	}

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	raw, err := c.post(ctx, endpoint, body)
	if err != nil {
		c.logger.Error("llm.extract.http_error",
			"req_id", rid, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.Result{}, err
	}

	var cc struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &cc); err != nil {
		c.logger.Error("llm.extract.decode_error",
			"req_id", rid, "error", err, "raw_bytes", len(raw),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return llm.Result{}, fmt.Errorf("decode completion response: %w", err)
	}

	content := ""
	if len(cc.Choices) > 0 {
		content = strings.TrimSpace(cc.Choices[0].Message.Content)
	}

	degenerate := false
	if content == "" || !json.Valid([]byte(content)) {
		c.logger.Warn("llm.extract.empty_or_invalid_content",
			"req_id", rid, "content_len", len(content),
		)
		content = "{}"
		degenerate = true
	} else if err := llm.ValidateResumeJSON([]byte(content)); err != nil {
		// Advisory only: the normalizer repairs shape issues downstream.
		c.logger.Warn("llm.extract.schema_mismatch", "req_id", rid, "error", err)
	}

	data := resume.Normalize([]byte(content))

	c.logger.Info("llm.extract.ok",
		"req_id", rid,
		"model", model,
		"degenerate", degenerate,
		"work_experiences", len(data.WorkExperiences),
		"educations", len(data.Educations),
		"skills", len(data.Skills),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return llm.Result{
		Data:       data,
		RawJSON:    []byte(content),
		Model:      model,
		Degenerate: degenerate,
	}, nil
}

func (c *Client) post(ctx context.Context, url string, body map[string]any) ([]byte, error) {
	b, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("completion http error: %w", err)
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			c.logger.Warn("completion response body close error", "error", err)
		}
	}(resp.Body)

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("completion status %d: %s", resp.StatusCode, string(raw))
	}
	return raw, nil
}
