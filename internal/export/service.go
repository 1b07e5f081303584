package export

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/cvparse/resume-extractor/internal/repository"
)

// Service is a thin layer over the history repository that produces XLSX
// bytes for downloads.
type Service struct {
	history repository.HistoryRepository
	logger  *slog.Logger
}

func NewService(history repository.HistoryRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{history: history, logger: logger}
}

// HistoryXLSX returns an XLSX workbook (as bytes) with one row per history
// entry for the given user, oldest first.
func (s *Service) HistoryXLSX(ctx context.Context, userID uuid.UUID) ([]byte, error) {
	start := time.Now()

	entries, err := s.history.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}

	f := excelize.NewFile()
	const sheet = "History"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	headers := []string{
		"Date",
		"File ID",
		"Action",
		"Status",
		"Message",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return nil, err
		}
	}

	for row, e := range entries {
		values := []any{
			e.CreatedAt.UTC().Format(time.RFC3339),
			e.FileID.String(),
			string(e.Action),
			string(e.Status),
			e.Message,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, err
			}
		}
	}

	// Drop the default sheet so the workbook opens on History.
	if index, _ := f.GetSheetIndex("Sheet1"); index != -1 {
		_ = f.DeleteSheet("Sheet1")
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}

	s.logger.Info("export.history.ok",
		"user_id", userID,
		"rows", len(entries),
		"bytes", buf.Len(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}
