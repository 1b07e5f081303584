package extract

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/cvparse/resume-extractor/constants"
)

// PDFRasterizer pulls the page-1 image out of a scanned PDF in memory. For
// image-only resumes the page content is a single embedded bitmap, which is
// exactly what the vision model needs.
type PDFRasterizer struct {
	maxBytes int
	logger   *slog.Logger
}

func NewPDFRasterizer(maxBytes int, logger *slog.Logger) *PDFRasterizer {
	if maxBytes <= 0 {
		maxBytes = constants.MaxImageBytes
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFRasterizer{maxBytes: maxBytes, logger: logger}
}

// FirstPageDataURL returns a base64 data URL for the first image on page 1.
// The encoded size is gated against the ceiling; exceeding it is fatal.
func (r *PDFRasterizer) FirstPageDataURL(ctx context.Context, data []byte) (string, error) {
	start := time.Now()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	pages, err := api.ExtractImagesRaw(bytes.NewReader(data), []string{"1"}, conf)
	if err != nil {
		return "", fmt.Errorf("extract page image: %w", err)
	}

	img, ok := firstImage(pages)
	if !ok {
		return "", ErrNoImage
	}
	raw, err := io.ReadAll(img)
	if err != nil {
		return "", fmt.Errorf("read page image: %w", err)
	}
	if len(raw) == 0 {
		return "", ErrNoImage
	}

	dataURL := "data:" + mimeForFileType(img.FileType) + ";base64," +
		base64.StdEncoding.EncodeToString(raw)

	if len(dataURL) > r.maxBytes {
		r.logger.Warn("pdf.raster.too_large",
			"encoded_bytes", len(dataURL),
			"max_bytes", r.maxBytes,
		)
		return "", fmt.Errorf("%w: %dKB base64 exceeds %dKB ceiling",
			ErrImageTooLarge, len(dataURL)/1024, r.maxBytes/1024)
	}

	r.logger.Debug("pdf.raster.ok",
		"file_type", img.FileType,
		"encoded_bytes", len(dataURL),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return dataURL, nil
}

// firstImage picks one image from the extraction result. Each entry maps PDF
// object numbers to images for one selected page; the lowest object number
// wins so repeated runs on the same file pick the same image.
func firstImage(pages []map[int]model.Image) (model.Image, bool) {
	var img model.Image
	objNr := -1
	for _, page := range pages {
		for nr, im := range page {
			if objNr == -1 || nr < objNr {
				objNr = nr
				img = im
			}
		}
	}
	return img, objNr != -1
}

func mimeForFileType(ft string) string {
	switch ft {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "tiff", "tif":
		return "image/tiff"
	case "png":
		return "image/png"
	default:
		return "image/png"
	}
}
