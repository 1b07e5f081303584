package extract

import (
	"context"
	"errors"
)

// TextExtractor obtains a plain-text rendering of a PDF. A parsing fault is
// never fatal: implementations return "" and let the caller decide on the
// OCR fallback.
type TextExtractor interface {
	Text(ctx context.Context, data []byte) string
}

// Rasterizer renders the first page of a PDF as a base64 data URL for the
// vision model. Subsequent pages are never rasterized.
type Rasterizer interface {
	FirstPageDataURL(ctx context.Context, data []byte) (string, error)
}

var (
	// ErrImageTooLarge means the encoded first-page image exceeds the
	// configured ceiling. Fatal to the request: no further fallback exists.
	ErrImageTooLarge = errors.New("image too large")

	// ErrNoImage means no renderable image could be produced from page 1.
	ErrNoImage = errors.New("no image extracted from PDF")
)
