package repository

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/cvparse/resume-extractor/constants"
	"github.com/cvparse/resume-extractor/internal/common"
	"github.com/cvparse/resume-extractor/internal/entity"
)

type FileRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entity.File, error)
	Create(ctx context.Context, userID uuid.UUID, fileName string, fileSize int, fileType string) (*entity.File, error)
	SetStatus(ctx context.Context, id uuid.UUID, status constants.FileStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type fileRepo struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewFileRepository(db *gorm.DB, logger *slog.Logger) FileRepository {
	return &fileRepo{db: db, logger: logger}
}

func (r *fileRepo) GetByID(ctx context.Context, id uuid.UUID) (*entity.File, error) {
	var f entity.File
	if err := r.db.WithContext(ctx).First(&f, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

func (r *fileRepo) Create(ctx context.Context, userID uuid.UUID, fileName string, fileSize int, fileType string) (*entity.File, error) {
	if fileType == "" {
		fileType = "application/pdf"
	}
	f := &entity.File{
		ID:       uuid.New(),
		UserID:   userID,
		FileName: fileName,
		FileSize: fileSize,
		FileType: fileType,
		Status:   constants.FileStatusProcessing,
	}
	if err := r.db.WithContext(ctx).Create(f).Error; err != nil {
		r.logger.Error("failed to create file record", "user_id", userID, "file_name", fileName, "error", err)
		return nil, err
	}
	return f, nil
}

func (r *fileRepo) SetStatus(ctx context.Context, id uuid.UUID, status constants.FileStatus) error {
	res := r.db.WithContext(ctx).Model(&entity.File{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		r.logger.Error("failed to set file status", "file_id", id, "status", status, "error", res.Error)
		return res.Error
	}
	if res.RowsAffected == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *fileRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.File{}, "id = ?", id).Error
}
