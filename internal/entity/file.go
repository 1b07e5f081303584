package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/cvparse/resume-extractor/constants"
)

// File tracks one uploaded PDF and the state of its extraction.
type File struct {
	ID        uuid.UUID            `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID            `gorm:"type:uuid;index;not null" json:"userId"`
	FileName  string               `gorm:"not null" json:"fileName"`
	FileSize  int                  `gorm:"not null" json:"fileSize"`
	FileType  string               `gorm:"not null;default:application/pdf" json:"fileType"`
	Status    constants.FileStatus `gorm:"type:varchar(16);not null" json:"status"`
	CreatedAt time.Time            `json:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt"`
}

// TableName keeps the historical table name.
func (File) TableName() string { return "files" }
