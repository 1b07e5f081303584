package repository

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cvparse/resume-extractor/constants"
	"github.com/cvparse/resume-extractor/internal/entity"
)

type HistoryRepository interface {
	Append(ctx context.Context, userID, fileID uuid.UUID, action constants.HistoryAction, status constants.HistoryStatus, message string) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.HistoryEntry, error)
	DeleteByFileID(ctx context.Context, fileID uuid.UUID) error
}

type historyRepo struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewHistoryRepository(db *gorm.DB, logger *slog.Logger) HistoryRepository {
	return &historyRepo{db: db, logger: logger}
}

// Append is best-effort bookkeeping: callers log failures but do not abort
// the request over a missing audit row.
func (r *historyRepo) Append(ctx context.Context, userID, fileID uuid.UUID, action constants.HistoryAction, status constants.HistoryStatus, message string) error {
	entry := &entity.HistoryEntry{
		ID:      uuid.New(),
		UserID:  userID,
		FileID:  fileID,
		Action:  action,
		Status:  status,
		Message: message,
	}
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		r.logger.Error("failed to append history entry",
			"user_id", userID, "file_id", fileID, "action", action, "error", err)
		return err
	}
	return nil
}

func (r *historyRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]entity.HistoryEntry, error) {
	var entries []entity.HistoryEntry
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&entries).Error; err != nil {
		r.logger.Error("failed to list history", "user_id", userID, "error", err)
		return nil, err
	}
	return entries, nil
}

func (r *historyRepo) DeleteByFileID(ctx context.Context, fileID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.HistoryEntry{}, "file_id = ?", fileID).Error
}
