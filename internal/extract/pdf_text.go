package extract

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"

	"github.com/cvparse/resume-extractor/constants"
)

// PDFTextExtractor reads PDF text in memory. Each attempt is bounded by a
// wall-clock timeout; on timeout the attempt is abandoned (the goroutine is
// left to finish on its own) and the result is empty text.
type PDFTextExtractor struct {
	timeout time.Duration
	logger  *slog.Logger
}

func NewPDFTextExtractor(timeout time.Duration, logger *slog.Logger) *PDFTextExtractor {
	if timeout <= 0 {
		timeout = constants.TextExtractTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFTextExtractor{timeout: timeout, logger: logger}
}

// Text returns the trimmed plain text of all pages, or "" on any fault.
func (e *PDFTextExtractor) Text(ctx context.Context, data []byte) string {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	start := time.Now()
	done := make(chan string, 1)
	go func() {
		done <- readAllText(data)
	}()

	select {
	case text := <-done:
		e.logger.Debug("pdf.text.ok",
			"bytes", len(data),
			"text_len", len(text),
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return text
	case <-ctx.Done():
		e.logger.Warn("pdf.text.timeout",
			"bytes", len(data),
			"timeout", e.timeout,
		)
		return ""
	}
}

// readAllText never returns an error: the pdf reader is known to panic on
// some malformed files, so faults of every kind collapse to empty text.
func readAllText(data []byte) (text string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("pdf.text.panic", "recovered", fmt.Sprint(r))
			text = ""
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ""
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil {
			// Keep going: partial text still beats the OCR path.
			continue
		}
		b.WriteString(pageText)
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}
