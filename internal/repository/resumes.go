package repository

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/cvparse/resume-extractor/internal/common"
	"github.com/cvparse/resume-extractor/internal/entity"
)

type ResumeRepository interface {
	Create(ctx context.Context, userID, fileID uuid.UUID, data []byte) (*entity.ResumeRecord, error)
	GetByFileID(ctx context.Context, fileID uuid.UUID) (*entity.ResumeRecord, error)
	DeleteByFileID(ctx context.Context, fileID uuid.UUID) error
}

type resumeRepo struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewResumeRepository(db *gorm.DB, logger *slog.Logger) ResumeRepository {
	return &resumeRepo{db: db, logger: logger}
}

// Create stores the normalized JSON verbatim. The document is opaque to the
// store; field order is preserved exactly as the normalizer emitted it.
func (r *resumeRepo) Create(ctx context.Context, userID, fileID uuid.UUID, data []byte) (*entity.ResumeRecord, error) {
	rec := &entity.ResumeRecord{
		ID:     uuid.New(),
		UserID: userID,
		FileID: fileID,
		Data:   datatypes.JSON(data),
	}
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		r.logger.Error("failed to create resume record", "user_id", userID, "file_id", fileID, "error", err)
		return nil, err
	}
	return rec, nil
}

func (r *resumeRepo) GetByFileID(ctx context.Context, fileID uuid.UUID) (*entity.ResumeRecord, error) {
	var rec entity.ResumeRecord
	if err := r.db.WithContext(ctx).First(&rec, "file_id = ?", fileID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (r *resumeRepo) DeleteByFileID(ctx context.Context, fileID uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.ResumeRecord{}, "file_id = ?", fileID).Error
}
